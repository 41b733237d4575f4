// Package meter implements the motion measurement pipeline: speed
// calibration, windowed averaging, polling-rate estimation, and peak
// tracking behind a single controller.
package meter

import (
	"math"
	"time"

	"mousemeter/internal/model"
)

// metersPerInch converts sensor counts to physical distance once divided
// by DPI.
const metersPerInch = 0.0254

// firstSampleElapsed stands in for the unknowable interval before the
// first sample of a burst.
const firstSampleElapsed = time.Millisecond

// SpeedCalculator converts raw motion samples into calibrated speeds and
// keeps a sliding time window of recent points. Not safe for concurrent
// use; the Controller serializes access.
type SpeedCalculator struct {
	points []model.CalibratedPoint
	head   int

	prevTime  time.Time
	lastSpeed float64
}

// NewSpeedCalculator returns an empty calculator.
func NewSpeedCalculator() *SpeedCalculator {
	return &SpeedCalculator{
		points: make([]model.CalibratedPoint, 0, 256),
	}
}

// Ingest calibrates a sample against the DPI current at call time and
// appends it to the window. It returns false when the sample's timestamp
// is not after the previous one; such samples are discarded without
// touching any state.
func (c *SpeedCalculator) Ingest(sample model.RawSample, dpi float64) (model.CalibratedPoint, bool) {
	if !c.prevTime.IsZero() && !sample.Time.After(c.prevTime) {
		return model.CalibratedPoint{}, false
	}

	elapsed := firstSampleElapsed
	if !c.prevTime.IsZero() {
		elapsed = sample.Time.Sub(c.prevTime)
	}

	distance := math.Hypot(float64(sample.DX), float64(sample.DY)) * metersPerInch / dpi
	point := model.CalibratedPoint{
		Time:  sample.Time,
		Speed: distance / elapsed.Seconds(),
	}

	c.points = append(c.points, point)
	c.prevTime = sample.Time
	c.lastSpeed = point.Speed
	return point, true
}

// WindowedAverage prunes points older than now-window and returns the
// arithmetic mean of the remaining per-sample speeds, or 0 for an empty
// window.
func (c *SpeedCalculator) WindowedAverage(now time.Time, window time.Duration) float64 {
	c.prune(now.Add(-window))
	n := len(c.points) - c.head
	if n == 0 {
		return 0
	}
	var sum float64
	for _, p := range c.points[c.head:] {
		sum += p.Speed
	}
	return sum / float64(n)
}

// CurrentSpeed returns the most recent instantaneous speed, independent of
// the averaging window.
func (c *SpeedCalculator) CurrentSpeed() float64 {
	return c.lastSpeed
}

// WindowPoints prunes and copies the current window, oldest first.
func (c *SpeedCalculator) WindowPoints(now time.Time, window time.Duration) []model.CalibratedPoint {
	c.prune(now.Add(-window))
	out := make([]model.CalibratedPoint, len(c.points)-c.head)
	copy(out, c.points[c.head:])
	return out
}

// RestartBaseline forgets the previous sample time so the next sample is
// timed like the first of a burst instead of across an idle gap. The
// window itself is untouched; stale points age out on the next prune.
func (c *SpeedCalculator) RestartBaseline() {
	c.prevTime = time.Time{}
}

// prune advances the head past points older than the cutoff and compacts
// the backing slice once the dead prefix dominates it.
func (c *SpeedCalculator) prune(cutoff time.Time) {
	for c.head < len(c.points) && c.points[c.head].Time.Before(cutoff) {
		c.head++
	}
	if c.head > 0 && c.head*2 >= len(c.points) {
		c.points = append(c.points[:0:0], c.points[c.head:]...)
		c.head = 0
	}
}
