package domain

import "testing"

func TestShareCodeRoundTrip(t *testing.T) {
	eventID := "0f2d9c64-90f8-44af-92b0-58e3be39a0f1"
	code := EncodeShareCode(eventID)
	got, err := DecodeShareCode(code)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != eventID {
		t.Fatalf("round trip mismatch: %q", got)
	}
}

func TestDecodeShareCodeInvalid(t *testing.T) {
	if _, err := DecodeShareCode("not base64 !!!"); err == nil {
		t.Fatal("garbage share code should not decode")
	}
}
