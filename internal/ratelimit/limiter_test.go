package ratelimit

import (
	"testing"
	"time"
)

// fixedClock lets tests advance time deterministically.
type fixedClock struct {
	t time.Time
}

func (c *fixedClock) now() time.Time          { return c.t }
func (c *fixedClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(rate float64, burst int) (*Limiter, *fixedClock) {
	clock := &fixedClock{t: time.Unix(1000, 0)}
	l := New(rate, burst)
	l.now = clock.now
	return l, clock
}

func TestAllowConsumesBurst(t *testing.T) {
	l, _ := newTestLimiter(1, 3)

	for i := 0; i < 3; i++ {
		if !l.Allow("tool") {
			t.Fatalf("request %d should be allowed within the burst", i+1)
		}
	}
	if l.Allow("tool") {
		t.Error("request beyond the burst should be rejected")
	}
}

func TestAllowRefills(t *testing.T) {
	l, clock := newTestLimiter(2, 2)

	l.Allow("tool")
	l.Allow("tool")
	if l.Allow("tool") {
		t.Fatal("bucket should be empty")
	}

	// 2 tokens/s for half a second refills one token.
	clock.advance(500 * time.Millisecond)
	if !l.Allow("tool") {
		t.Error("refilled token should be available")
	}
	if l.Allow("tool") {
		t.Error("only one token should have refilled")
	}
}

func TestRefillCapsAtBurst(t *testing.T) {
	l, clock := newTestLimiter(10, 2)

	l.Allow("tool")
	clock.advance(time.Minute)

	// A long idle period refills to the burst cap, no further.
	if !l.Allow("tool") || !l.Allow("tool") {
		t.Fatal("burst capacity should be available after idling")
	}
	if l.Allow("tool") {
		t.Error("tokens must not accumulate past the burst")
	}
}

func TestKeysAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(1, 1)

	if !l.Allow("alpha") {
		t.Fatal("first request for alpha should pass")
	}
	if l.Allow("alpha") {
		t.Error("alpha should be exhausted")
	}
	if !l.Allow("beta") {
		t.Error("beta has its own bucket")
	}
}

func TestCheck(t *testing.T) {
	l, _ := newTestLimiter(1, 1)

	if err := l.Check("tool"); err != nil {
		t.Fatalf("first check: %v", err)
	}
	if err := l.Check("tool"); err == nil {
		t.Error("exhausted bucket should return an error")
	}
}
