package meter

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"mousemeter/internal/model"
)

type fixedSettings struct {
	dpi        float64
	window     time.Duration
	staleAfter time.Duration
}

func (s fixedSettings) CurrentDPI() float64              { return s.dpi }
func (s fixedSettings) CurrentWindow() time.Duration     { return s.window }
func (s fixedSettings) CurrentStaleAfter() time.Duration { return s.staleAfter }

func testSettings() fixedSettings {
	return fixedSettings{dpi: 1600, window: 500 * time.Millisecond, staleAfter: 500 * time.Millisecond}
}

func TestControllerStateTransitions(t *testing.T) {
	base := time.Now()
	c := NewController(testSettings(), base)

	if c.State() != model.StateIdle {
		t.Fatalf("initial state = %v, want idle", c.State())
	}

	c.Ingest(model.RawSample{Time: base, DX: 1, DY: 0})
	if c.State() != model.StateActive {
		t.Fatalf("state after first sample = %v, want active", c.State())
	}

	// Quiet stream past the threshold flips to stale on snapshot.
	snap := c.Snapshot(base.Add(2 * time.Second))
	if snap.State != model.StateStale {
		t.Fatalf("state after quiet period = %v, want stale", snap.State)
	}
	if snap.RateKnown {
		t.Fatalf("stale snapshot reports a rate")
	}

	// Next sample resumes activity.
	c.Ingest(model.RawSample{Time: base.Add(3 * time.Second), DX: 1, DY: 0})
	if c.State() != model.StateActive {
		t.Fatalf("state after resume = %v, want active", c.State())
	}
}

func TestControllerDiscardsNonMonotonicSamples(t *testing.T) {
	base := time.Now()
	c := NewController(testSettings(), base)

	c.Ingest(model.RawSample{Time: base, DX: 10, DY: 0})
	c.Ingest(model.RawSample{Time: base.Add(time.Millisecond), DX: 10, DY: 0})
	before := c.Snapshot(base.Add(2 * time.Millisecond))

	c.Ingest(model.RawSample{Time: base, DX: 9999, DY: 9999})
	after := c.Snapshot(base.Add(2 * time.Millisecond))

	if after.Discarded != before.Discarded+1 {
		t.Fatalf("discarded = %d, want %d", after.Discarded, before.Discarded+1)
	}
	if after.Samples != before.Samples {
		t.Fatalf("discarded sample was counted as ingested")
	}
	if len(after.Points) != len(before.Points) {
		t.Fatalf("discarded sample entered the window")
	}
	if after.PeakSpeed != before.PeakSpeed {
		t.Fatalf("discarded sample moved the peak")
	}
	if after.LastDX != 10 || after.LastDY != 0 {
		t.Fatalf("discarded sample updated the delta readout")
	}
}

func TestControllerResetPeak(t *testing.T) {
	base := time.Now()
	c := NewController(testSettings(), base)

	c.Ingest(model.RawSample{Time: base, DX: 100, DY: 100})
	c.Ingest(model.RawSample{Time: base.Add(time.Millisecond), DX: 200, DY: 200})
	if snap := c.Snapshot(base.Add(2 * time.Millisecond)); snap.PeakSpeed == 0 {
		t.Fatalf("peak not recorded")
	}

	resetAt := base.Add(5 * time.Millisecond)
	c.ResetPeak(resetAt)
	snap := c.Snapshot(base.Add(6 * time.Millisecond))
	if snap.PeakSpeed != 0 {
		t.Fatalf("peak after reset = %v, want 0", snap.PeakSpeed)
	}
	if !snap.PeakSince.Equal(resetAt) {
		t.Fatalf("peakSince = %v, want %v", snap.PeakSince, resetAt)
	}
}

type scriptedSource struct {
	samples []model.RawSample
	err     error
	pos     int
}

func (s *scriptedSource) Next() (model.RawSample, error) {
	if s.pos >= len(s.samples) {
		return model.RawSample{}, s.err
	}
	sample := s.samples[s.pos]
	s.pos++
	return sample, nil
}

func TestIngestLoopFailsOnStreamError(t *testing.T) {
	base := time.Now()
	c := NewController(testSettings(), base)
	streamErr := errors.New("device vanished")
	src := &scriptedSource{
		samples: []model.RawSample{
			{Time: base, DX: 1, DY: 1},
			{Time: base.Add(time.Millisecond), DX: 2, DY: 2},
		},
		err: streamErr,
	}

	err := c.IngestLoop(context.Background(), src)
	if !errors.Is(err, streamErr) {
		t.Fatalf("IngestLoop error = %v, want %v", err, streamErr)
	}
	snap := c.Snapshot(base.Add(2 * time.Millisecond))
	if snap.State != model.StateFailed {
		t.Fatalf("state = %v, want failed", snap.State)
	}
	if !errors.Is(snap.Err, streamErr) {
		t.Fatalf("snapshot error = %v, want %v", snap.Err, streamErr)
	}
	if snap.Samples != 2 {
		t.Fatalf("samples before failure = %d, want 2", snap.Samples)
	}
}

func TestIngestLoopStopsCleanlyOnCancel(t *testing.T) {
	base := time.Now()
	c := NewController(testSettings(), base)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &scriptedSource{err: errors.New("closed")}
	if err := c.IngestLoop(ctx, src); err != nil {
		t.Fatalf("IngestLoop after cancel = %v, want nil", err)
	}
	if c.State() == model.StateFailed {
		t.Fatalf("cancellation marked the pipeline failed")
	}
}

func TestConcurrentIngestAndSnapshot(t *testing.T) {
	base := time.Now()
	c := NewController(fixedSettings{dpi: 1600, window: time.Minute, staleAfter: time.Minute}, base)

	const n = 5000
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			c.Ingest(model.RawSample{Time: base.Add(time.Duration(i) * time.Millisecond), DX: 3, DY: 4})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < n/10; i++ {
			snap := c.Snapshot(base.Add(time.Duration(i*10) * time.Millisecond))
			// Every point in a snapshot is fully applied: with constant
			// deltas all speeds are positive and ordered by time.
			for j, p := range snap.Points {
				if p.Speed <= 0 {
					t.Errorf("snapshot point %d has speed %v", j, p.Speed)
					return
				}
				if j > 0 && p.Time.Before(snap.Points[j-1].Time) {
					t.Errorf("snapshot points out of order at %d", j)
					return
				}
			}
			if i%100 == 0 {
				c.ResetPeak(base.Add(time.Duration(i*10) * time.Millisecond))
			}
		}
	}()
	wg.Wait()

	snap := c.Snapshot(base.Add(n * time.Millisecond))
	if snap.Samples+snap.Discarded != n {
		t.Fatalf("samples+discarded = %d, want %d", snap.Samples+snap.Discarded, n)
	}
}
