// Package model defines shared data structures.
package model

import "time"

// RawSample is a single hardware-reported relative motion event.
type RawSample struct {
	Time time.Time
	DX   int32
	DY   int32
}

// CalibratedPoint is a motion sample converted to physical speed (m/s).
type CalibratedPoint struct {
	Time  time.Time
	Speed float64
}

// State describes the controller's view of the input stream.
type State int

const (
	StateIdle State = iota
	StateActive
	StateStale
	StateFailed
)

// String returns a display label for the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActive:
		return "active"
	case StateStale:
		return "stale"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Snapshot is an immutable aggregate of the meter state, produced once per
// render tick. Points holds a copy of the current averaging window, oldest
// first.
type Snapshot struct {
	Time      time.Time
	State     State
	LiveSpeed float64
	AvgSpeed  float64
	PeakSpeed float64
	PeakSince time.Time

	RateHz    float64
	RateKnown bool

	LastDX int32
	LastDY int32

	Samples   int64
	Discarded int64

	Points []CalibratedPoint

	Err error
}

// SessionStats captures a completed metering session for persistence.
type SessionStats struct {
	StartedAt  time.Time
	EndedAt    time.Time
	Device     string
	DPI        float64
	WindowMs   int64
	DurationMs int64
	Samples    int64
	Discarded  int64
	PeakSpeed  float64
	AvgSpeed   float64
	AvgRateHz  float64
}

// SessionAggregate summarizes a stored session for reporting.
type SessionAggregate struct {
	SessionID  int64
	EndedAt    time.Time
	Device     string
	DPI        float64
	DurationMs int64
	Samples    int64
	PeakSpeed  float64
	AvgSpeed   float64
	AvgRateHz  float64
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Device      string
	Since       *time.Time
	Last        int
	CurveWindow int
}
