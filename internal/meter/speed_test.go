package meter

import (
	"math"
	"testing"
	"time"

	"mousemeter/internal/model"
)

func TestIngestComputesCalibratedSpeed(t *testing.T) {
	c := NewSpeedCalculator()
	base := time.Now()

	if _, ok := c.Ingest(model.RawSample{Time: base, DX: 0, DY: 0}, 1000); !ok {
		t.Fatalf("first sample rejected")
	}
	point, ok := c.Ingest(model.RawSample{Time: base.Add(10 * time.Millisecond), DX: 0, DY: 1000}, 1000)
	if !ok {
		t.Fatalf("second sample rejected")
	}
	// 1000 counts at 1000 DPI is one inch; one inch in 10ms is 2.54 m/s.
	want := 2.54
	if math.Abs(point.Speed-want) > 1e-9 {
		t.Fatalf("speed = %v, want %v", point.Speed, want)
	}
	if c.CurrentSpeed() != point.Speed {
		t.Fatalf("CurrentSpeed = %v, want %v", c.CurrentSpeed(), point.Speed)
	}
}

func TestIngestDiscardsNonMonotonicTimestamps(t *testing.T) {
	c := NewSpeedCalculator()
	base := time.Now()

	c.Ingest(model.RawSample{Time: base, DX: 1, DY: 0}, 800)
	before := c.CurrentSpeed()

	if _, ok := c.Ingest(model.RawSample{Time: base.Add(-time.Millisecond), DX: 5, DY: 5}, 800); ok {
		t.Fatalf("accepted sample with earlier timestamp")
	}
	if _, ok := c.Ingest(model.RawSample{Time: base, DX: 5, DY: 5}, 800); ok {
		t.Fatalf("accepted sample with duplicate timestamp")
	}
	if c.CurrentSpeed() != before {
		t.Fatalf("discarded sample mutated state")
	}
	if got := len(c.WindowPoints(base, time.Second)); got != 1 {
		t.Fatalf("window has %d points, want 1", got)
	}
}

func TestWindowedAverageExcludesOldPoints(t *testing.T) {
	c := NewSpeedCalculator()
	base := time.Now()
	window := 100 * time.Millisecond

	for i := 0; i < 10; i++ {
		c.Ingest(model.RawSample{Time: base.Add(time.Duration(i) * 50 * time.Millisecond), DX: 100, DY: 0}, 1600)
	}
	now := base.Add(500 * time.Millisecond)
	c.WindowedAverage(now, window)
	for _, p := range c.WindowPoints(now, window) {
		if p.Time.Before(now.Add(-window)) {
			t.Fatalf("window kept point at %v, older than cutoff %v", p.Time, now.Add(-window))
		}
	}
}

func TestWindowedAverageEmptyWindow(t *testing.T) {
	c := NewSpeedCalculator()
	if avg := c.WindowedAverage(time.Now(), time.Second); avg != 0 {
		t.Fatalf("empty window average = %v, want 0", avg)
	}

	base := time.Now()
	c.Ingest(model.RawSample{Time: base, DX: 10, DY: 10}, 1600)
	if avg := c.WindowedAverage(base.Add(time.Hour), time.Second); avg != 0 {
		t.Fatalf("fully-aged window average = %v, want 0", avg)
	}
}

func TestWindowedAverageIsArithmeticMean(t *testing.T) {
	c := NewSpeedCalculator()
	base := time.Now()

	var want float64
	var points []model.CalibratedPoint
	for i := 1; i <= 4; i++ {
		p, ok := c.Ingest(model.RawSample{Time: base.Add(time.Duration(i) * time.Millisecond), DX: int32(i * 10), DY: 0}, 1600)
		if !ok {
			t.Fatalf("sample %d rejected", i)
		}
		points = append(points, p)
		want += p.Speed
	}
	want /= float64(len(points))

	got := c.WindowedAverage(base.Add(5*time.Millisecond), time.Second)
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("average = %v, want %v", got, want)
	}
}

func TestRestartBaselineTimesLikeFirstSample(t *testing.T) {
	c := NewSpeedCalculator()
	base := time.Now()

	c.Ingest(model.RawSample{Time: base, DX: 1, DY: 0}, 1600)
	c.RestartBaseline()

	p, ok := c.Ingest(model.RawSample{Time: base.Add(10 * time.Second), DX: 1600, DY: 0}, 1600)
	if !ok {
		t.Fatalf("sample after baseline restart rejected")
	}
	// One inch over the nominal first-sample interval, not over the gap.
	want := metersPerInch / firstSampleElapsed.Seconds()
	if math.Abs(p.Speed-want) > 1e-9 {
		t.Fatalf("speed = %v, want %v", p.Speed, want)
	}
}
