package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewLevels(t *testing.T) {
	log, err := New("warn")
	if err != nil {
		t.Fatalf("New(warn): %v", err)
	}
	if log.Core().Enabled(zapcore.InfoLevel) {
		t.Error("info should be below the warn threshold")
	}
	if !log.Core().Enabled(zapcore.WarnLevel) {
		t.Error("warn should be enabled")
	}
}

func TestNewUnknownLevelFallsBackToInfo(t *testing.T) {
	log, err := New("verbose")
	if err != nil {
		t.Fatalf("New(verbose): %v", err)
	}
	if !log.Core().Enabled(zapcore.InfoLevel) {
		t.Error("unknown level should fall back to info")
	}
	if log.Core().Enabled(zapcore.DebugLevel) {
		t.Error("debug should stay disabled on the fallback")
	}
}
