package meter

import "time"

// ewmaAlpha weights a new inter-arrival interval against the smoothed
// history. Higher values track rate switches faster at the cost of jitter.
const ewmaAlpha = 0.2

// minRateIntervals is how many valid intervals an epoch needs before the
// estimate is reported.
const minRateIntervals = 2

// RateEstimator derives the device polling rate from inter-sample arrival
// times. A gap longer than staleAfter starts a fresh measurement epoch, so
// focus loss or idle periods never blend into the estimate. Not safe for
// concurrent use.
type RateEstimator struct {
	lastTime  time.Time
	interval  float64 // smoothed inter-arrival, seconds
	intervals int     // valid intervals in the current epoch
}

// NewRateEstimator returns an estimator with no recorded samples.
func NewRateEstimator() *RateEstimator {
	return &RateEstimator{}
}

// Record folds a sample arrival time into the estimate. Gaps above
// staleAfter discard the current epoch instead of smoothing across it.
func (e *RateEstimator) Record(t time.Time, staleAfter time.Duration) {
	if e.lastTime.IsZero() {
		e.lastTime = t
		return
	}
	gap := t.Sub(e.lastTime)
	e.lastTime = t
	if gap <= 0 {
		return
	}
	if gap > staleAfter {
		e.interval = 0
		e.intervals = 0
		return
	}
	seconds := gap.Seconds()
	if e.intervals == 0 {
		e.interval = seconds
	} else {
		e.interval = ewmaAlpha*seconds + (1-ewmaAlpha)*e.interval
	}
	e.intervals++
}

// RateHz returns the estimated polling rate, or ok=false while the current
// epoch has fewer than two valid intervals.
func (e *RateEstimator) RateHz() (float64, bool) {
	if e.intervals < minRateIntervals || e.interval <= 0 {
		return 0, false
	}
	return 1 / e.interval, true
}

// LastSeen returns the most recent recorded arrival time, zero if none.
func (e *RateEstimator) LastSeen() time.Time {
	return e.lastTime
}
