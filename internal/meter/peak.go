package meter

import "time"

// PeakTracker keeps the highest speed observed since the last reset. Not
// safe for concurrent use.
type PeakTracker struct {
	max        float64
	sinceReset time.Time
}

// NewPeakTracker returns a tracker with its reset point stamped at now.
func NewPeakTracker(now time.Time) *PeakTracker {
	return &PeakTracker{sinceReset: now}
}

// Observe raises the tracked maximum if speed exceeds it.
func (p *PeakTracker) Observe(speed float64) {
	if speed > p.max {
		p.max = speed
	}
}

// Reset zeroes the maximum and stamps the reset time. Idempotent aside
// from the timestamp.
func (p *PeakTracker) Reset(now time.Time) {
	p.max = 0
	p.sinceReset = now
}

// Max returns the highest observed speed since the last reset.
func (p *PeakTracker) Max() float64 {
	return p.max
}

// SinceReset returns the time of the last reset.
func (p *PeakTracker) SinceReset() time.Time {
	return p.sinceReset
}
