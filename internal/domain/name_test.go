package domain

import (
	"strings"
	"testing"
)

func TestValidateEventName(t *testing.T) {
	if msg := ValidateEventName("ab"); msg != "" {
		t.Errorf("two ASCII letters should pass, got %q", msg)
	}
	if msg := ValidateEventName("喝水"); msg != "" {
		t.Errorf("two CJK characters should pass, got %q", msg)
	}
	if msg := ValidateEventName("morning run_2-b"); msg != "" {
		t.Errorf("space/underscore/hyphen/digits should pass, got %q", msg)
	}

	if msg := ValidateEventName("a"); msg == "" {
		t.Error("single character should fail")
	}
	if msg := ValidateEventName("水"); msg == "" {
		t.Error("single CJK character should fail")
	}
	if msg := ValidateEventName(strings.Repeat("a", 21)); msg == "" {
		t.Error("21 characters should fail")
	}
	if msg := ValidateEventName(strings.Repeat("水", 20)); msg != "" {
		t.Errorf("20 CJK characters should pass (rune count, not bytes), got %q", msg)
	}
}

func TestValidateEventNameReportsOffendingChars(t *testing.T) {
	msg := ValidateEventName("a!b")
	if msg == "" {
		t.Fatal("name with ! should fail")
	}
	if !strings.Contains(msg, `"!"`) {
		t.Errorf("error should name the offending character, got %q", msg)
	}

	// Deduplicated, first-seen order.
	msg = ValidateEventName("a!b?c!")
	bang := strings.Index(msg, `"!"`)
	quest := strings.Index(msg, `"?"`)
	if bang < 0 || quest < 0 {
		t.Fatalf("error should list both characters, got %q", msg)
	}
	if bang > quest {
		t.Errorf("characters should appear in first-seen order, got %q", msg)
	}
	if strings.Count(msg, `"!"`) != 1 {
		t.Errorf("repeated character should be reported once, got %q", msg)
	}
}
