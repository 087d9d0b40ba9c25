package ratelimit

import (
	"testing"
	"time"
)

func TestLimiterExhaustsAndRefills(t *testing.T) {
	l := New()
	for i := 0; i < 3; i++ {
		if !l.Allow("10.0.0.1", 3, 100) {
			t.Fatalf("attempt %d denied within capacity", i)
		}
	}
	if l.Allow("10.0.0.1", 3, 100) {
		t.Fatalf("allowed past capacity")
	}

	// High refill rate: a short wait restores at least one token.
	time.Sleep(50 * time.Millisecond)
	if !l.Allow("10.0.0.1", 3, 100) {
		t.Fatalf("bucket never refilled")
	}
}

func TestLimiterKeysAreIndependent(t *testing.T) {
	l := New()
	if !l.Allow("a", 1, 0.001) {
		t.Fatalf("first token for a denied")
	}
	if l.Allow("a", 1, 0.001) {
		t.Fatalf("a exceeded its bucket")
	}
	if !l.Allow("b", 1, 0.001) {
		t.Fatalf("b throttled by a's bucket")
	}
}
