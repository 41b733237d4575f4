package config

import (
	"math"
	"sync/atomic"
	"time"
)

// Defaults for live settings.
const (
	DefaultDPI        = 1600.0
	DefaultWindow     = 500 * time.Millisecond
	DefaultStaleAfter = 500 * time.Millisecond
	DefaultPlotSpan   = 5 * time.Second
)

// Live holds the settings the meter reads on every sample. Values are
// stored atomically: writers (TUI inputs, config-file watcher) win in
// arrival order and readers always see a complete value. Implements
// meter.Settings.
type Live struct {
	dpi        atomic.Uint64 // float64 bits
	window     atomic.Int64  // nanoseconds
	staleAfter atomic.Int64  // nanoseconds
	plotSpan   atomic.Int64  // nanoseconds
}

// NewLive returns live settings populated with defaults.
func NewLive() *Live {
	l := &Live{}
	l.SetDPI(DefaultDPI)
	l.SetWindow(DefaultWindow)
	l.SetStaleAfter(DefaultStaleAfter)
	l.SetPlotSpan(DefaultPlotSpan)
	return l
}

// CurrentDPI returns the DPI value current at call time.
func (l *Live) CurrentDPI() float64 {
	return math.Float64frombits(l.dpi.Load())
}

// SetDPI stores a new DPI; non-positive values are ignored.
func (l *Live) SetDPI(dpi float64) {
	if dpi <= 0 {
		return
	}
	l.dpi.Store(math.Float64bits(dpi))
}

// CurrentWindow returns the averaging window duration.
func (l *Live) CurrentWindow() time.Duration {
	return time.Duration(l.window.Load())
}

// SetWindow stores a new averaging window; non-positive values are ignored.
func (l *Live) SetWindow(d time.Duration) {
	if d <= 0 {
		return
	}
	l.window.Store(int64(d))
}

// CurrentStaleAfter returns the staleness threshold.
func (l *Live) CurrentStaleAfter() time.Duration {
	return time.Duration(l.staleAfter.Load())
}

// SetStaleAfter stores a new staleness threshold; non-positive values are
// ignored.
func (l *Live) SetStaleAfter(d time.Duration) {
	if d <= 0 {
		return
	}
	l.staleAfter.Store(int64(d))
}

// CurrentPlotSpan returns the plot history span.
func (l *Live) CurrentPlotSpan() time.Duration {
	return time.Duration(l.plotSpan.Load())
}

// SetPlotSpan stores a new plot history span; non-positive values are
// ignored.
func (l *Live) SetPlotSpan(d time.Duration) {
	if d <= 0 {
		return
	}
	l.plotSpan.Store(int64(d))
}

// ApplyFile folds the set fields of a loaded config file into the live
// settings.
func (l *Live) ApplyFile(cfg FileConfig) {
	if cfg.Meter.DPI != nil {
		l.SetDPI(*cfg.Meter.DPI)
	}
	if cfg.Meter.WindowMs != nil {
		l.SetWindow(time.Duration(*cfg.Meter.WindowMs) * time.Millisecond)
	}
	if cfg.Meter.StaleMs != nil {
		l.SetStaleAfter(time.Duration(*cfg.Meter.StaleMs) * time.Millisecond)
	}
	if cfg.Meter.PlotSpanMs != nil {
		l.SetPlotSpan(time.Duration(*cfg.Meter.PlotSpanMs) * time.Millisecond)
	}
}
