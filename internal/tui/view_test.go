package tui

import (
	"strings"
	"testing"
	"time"

	"mousemeter/internal/model"
)

func TestFormatRate(t *testing.T) {
	if got := formatRate(998.6, true); got != "999 Hz" {
		t.Fatalf("formatRate = %q, want %q", got, "999 Hz")
	}
	if got := formatRate(0, false); got != "—" {
		t.Fatalf("unknown rate = %q, want em dash", got)
	}
}

func TestFormatSpeed(t *testing.T) {
	if got := formatSpeed(2.54); got != "2.540 m/s" {
		t.Fatalf("formatSpeed = %q, want %q", got, "2.540 m/s")
	}
}

func TestRenderFooterSegments(t *testing.T) {
	m := &Model{startedAt: time.Now()}
	m.snap = model.Snapshot{Samples: 1234}
	out := m.renderFooter()
	if !strings.Contains(out, "samples 1234") {
		t.Fatalf("footer missing sample count: %s", out)
	}
	if strings.Contains(out, "discarded") {
		t.Fatalf("footer shows discarded with none dropped: %s", out)
	}

	m.snap.Discarded = 2
	out = m.renderFooter()
	if !strings.Contains(out, "discarded 2") {
		t.Fatalf("footer missing discarded count: %s", out)
	}
}

func TestPruneHist(t *testing.T) {
	base := time.Now()
	hist := []histPoint{
		{t: base, v: 1},
		{t: base.Add(time.Second), v: 2},
		{t: base.Add(2 * time.Second), v: 3},
	}
	pruned := pruneHist(hist, base.Add(1500*time.Millisecond))
	if len(pruned) != 1 || pruned[0].v != 3 {
		t.Fatalf("pruned = %+v, want single newest point", pruned)
	}
	same := pruneHist(pruned, base)
	if len(same) != 1 {
		t.Fatalf("prune with old cutoff dropped points: %+v", same)
	}
}
