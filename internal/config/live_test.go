package config

import (
	"testing"
	"time"
)

func TestLiveDefaults(t *testing.T) {
	l := NewLive()
	if l.CurrentDPI() != DefaultDPI {
		t.Fatalf("dpi = %v, want %v", l.CurrentDPI(), DefaultDPI)
	}
	if l.CurrentWindow() != DefaultWindow {
		t.Fatalf("window = %v, want %v", l.CurrentWindow(), DefaultWindow)
	}
	if l.CurrentStaleAfter() != DefaultStaleAfter {
		t.Fatalf("staleAfter = %v, want %v", l.CurrentStaleAfter(), DefaultStaleAfter)
	}
}

func TestLiveRejectsNonPositiveValues(t *testing.T) {
	l := NewLive()
	l.SetDPI(800)
	l.SetDPI(0)
	l.SetDPI(-100)
	if l.CurrentDPI() != 800 {
		t.Fatalf("dpi = %v, want 800", l.CurrentDPI())
	}
	l.SetWindow(time.Second)
	l.SetWindow(0)
	if l.CurrentWindow() != time.Second {
		t.Fatalf("window = %v, want 1s", l.CurrentWindow())
	}
}

func TestApplyFileFoldsOnlySetFields(t *testing.T) {
	l := NewLive()
	dpi := 3200.0
	windowMs := int64(250)
	l.ApplyFile(FileConfig{Meter: MeterConfig{DPI: &dpi, WindowMs: &windowMs}})

	if l.CurrentDPI() != 3200 {
		t.Fatalf("dpi = %v, want 3200", l.CurrentDPI())
	}
	if l.CurrentWindow() != 250*time.Millisecond {
		t.Fatalf("window = %v, want 250ms", l.CurrentWindow())
	}
	if l.CurrentStaleAfter() != DefaultStaleAfter {
		t.Fatalf("unset field overwritten: staleAfter = %v", l.CurrentStaleAfter())
	}
}
