package service

import (
	"regexp"
	"testing"
	"time"
)

func TestNewBookingCode_Format(t *testing.T) {
	pattern := regexp.MustCompile(`^PK-[0-9A-Z]{6}$`)
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code := NewBookingCode()
		if !pattern.MatchString(code) {
			t.Fatalf("unexpected booking code %q", code)
		}
		seen[code] = true
	}
	if len(seen) < 95 {
		t.Errorf("expected mostly distinct codes, got %d of 100", len(seen))
	}
}

func TestNewTransactionID_Format(t *testing.T) {
	now := time.UnixMilli(1741597200000)
	id := NewTransactionID(now)
	if !regexp.MustCompile(`^TXN-1741597200000-[0-9A-Z]{6}$`).MatchString(id) {
		t.Errorf("unexpected transaction id %q", id)
	}
}
