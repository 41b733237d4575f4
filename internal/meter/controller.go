package meter

import (
	"context"
	"sync"
	"time"

	"mousemeter/internal/model"
)

// Settings exposes the live-tunable configuration the pipeline reads on
// every sample. Implementations must be safe for concurrent use; the
// values are owned and mutated by the control surface, last write wins.
type Settings interface {
	CurrentDPI() float64
	CurrentWindow() time.Duration
	CurrentStaleAfter() time.Duration
}

// SampleSource produces raw motion samples, blocking until the next one
// is available. Next returns an error when the stream ends; a source is
// not restartable once it has returned an error.
type SampleSource interface {
	Next() (model.RawSample, error)
}

// Controller owns the shared pipeline state and reconciles the
// event-driven ingest path with the periodic snapshot consumer. All
// methods are safe for concurrent use; the internal lock is held only for
// in-memory updates, never across blocking I/O.
type Controller struct {
	settings Settings

	mu        sync.Mutex
	state     model.State
	speed     *SpeedCalculator
	rate      *RateEstimator
	peak      *PeakTracker
	lastDX    int32
	lastDY    int32
	samples   int64
	discarded int64
	failErr   error
}

// NewController builds an idle controller reading live values from
// settings.
func NewController(settings Settings, now time.Time) *Controller {
	return &Controller{
		settings: settings,
		state:    model.StateIdle,
		speed:    NewSpeedCalculator(),
		rate:     NewRateEstimator(),
		peak:     NewPeakTracker(now),
	}
}

// Ingest folds one raw sample into the pipeline. Samples with
// non-monotonic timestamps are counted and discarded without mutating the
// window, the rate estimate, or the peak.
func (c *Controller) Ingest(sample model.RawSample) {
	dpi := c.settings.CurrentDPI()
	staleAfter := c.settings.CurrentStaleAfter()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == model.StateFailed {
		return
	}

	if last := c.rate.LastSeen(); !last.IsZero() && sample.Time.Sub(last) > staleAfter {
		// The stream went quiet past the staleness threshold; the next
		// interval must not be measured across the gap.
		c.speed.RestartBaseline()
	}

	point, ok := c.speed.Ingest(sample, dpi)
	if !ok {
		c.discarded++
		return
	}
	c.rate.Record(sample.Time, staleAfter)
	c.peak.Observe(point.Speed)
	c.lastDX, c.lastDY = sample.DX, sample.DY
	c.samples++
	c.state = model.StateActive
}

// Snapshot assembles a consistent view of the pipeline for rendering.
// Staleness is evaluated here opportunistically, so the rate estimate
// reads as unknown while the stream is quiet even if no sample arrives to
// trigger the transition.
func (c *Controller) Snapshot(now time.Time) model.Snapshot {
	window := c.settings.CurrentWindow()
	staleAfter := c.settings.CurrentStaleAfter()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == model.StateActive {
		if last := c.rate.LastSeen(); !last.IsZero() && now.Sub(last) > staleAfter {
			c.state = model.StateStale
		}
	}

	snap := model.Snapshot{
		Time:      now,
		State:     c.state,
		LiveSpeed: c.speed.CurrentSpeed(),
		AvgSpeed:  c.speed.WindowedAverage(now, window),
		PeakSpeed: c.peak.Max(),
		PeakSince: c.peak.SinceReset(),
		LastDX:    c.lastDX,
		LastDY:    c.lastDY,
		Samples:   c.samples,
		Discarded: c.discarded,
		Points:    c.speed.WindowPoints(now, window),
		Err:       c.failErr,
	}
	if c.state == model.StateActive {
		snap.RateHz, snap.RateKnown = c.rate.RateHz()
	}
	return snap
}

// ResetPeak zeroes the session maximum.
func (c *Controller) ResetPeak(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.peak.Reset(now)
}

// State returns the current pipeline state.
func (c *Controller) State() model.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IngestLoop consumes src until it ends or ctx is canceled. A source
// error after cancellation is treated as a clean shutdown; any other
// error marks the pipeline failed and is returned.
func (c *Controller) IngestLoop(ctx context.Context, src SampleSource) error {
	for {
		sample, err := src.Next()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.fail(err)
			return err
		}
		if ctx.Err() != nil {
			return nil
		}
		c.Ingest(sample)
	}
}

func (c *Controller) fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = model.StateFailed
	c.failErr = err
}
