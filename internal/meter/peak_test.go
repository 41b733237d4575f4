package meter

import (
	"testing"
	"time"
)

func TestPeakIsMonotonicBetweenResets(t *testing.T) {
	p := NewPeakTracker(time.Now())
	speeds := []float64{0.5, 2.0, 1.0, 1.9, 3.5, 0.1}
	prev := 0.0
	for _, s := range speeds {
		p.Observe(s)
		if p.Max() < prev {
			t.Fatalf("peak decreased from %v to %v", prev, p.Max())
		}
		prev = p.Max()
	}
	if p.Max() != 3.5 {
		t.Fatalf("peak = %v, want 3.5", p.Max())
	}
}

func TestResetZeroesPeakAndIsIdempotent(t *testing.T) {
	p := NewPeakTracker(time.Now())
	p.Observe(4.2)

	now := time.Now()
	p.Reset(now)
	if p.Max() != 0 {
		t.Fatalf("peak after reset = %v, want 0", p.Max())
	}
	if !p.SinceReset().Equal(now) {
		t.Fatalf("sinceReset = %v, want %v", p.SinceReset(), now)
	}

	p.Reset(now)
	if p.Max() != 0 || !p.SinceReset().Equal(now) {
		t.Fatalf("second reset changed state: max=%v since=%v", p.Max(), p.SinceReset())
	}
}
