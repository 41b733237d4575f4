package stats

import (
	"context"
	"fmt"
	"io"
	"time"

	"mousemeter/internal/model"
	"mousemeter/internal/store"
)

// Report contains precomputed data for stats rendering.
type Report struct {
	Sessions []model.SessionAggregate
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig) (Report, error) {
	sessions, err := st.ListSessions(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	if cfg.Last > 0 && len(sessions) > cfg.Last {
		sessions = sessions[len(sessions)-cfg.Last:]
	}
	return Report{Sessions: sessions}, nil
}

// RenderSummary prints aggregate numbers for the stored sessions.
func RenderSummary(w io.Writer, sessions []model.SessionAggregate) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	s := Summarize(sessions)
	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d", s.Sessions),
		fmt.Sprintf("Best peak: %.3f m/s", s.BestPeak),
		fmt.Sprintf("Avg peak: %.3f m/s", s.AvgPeak),
		fmt.Sprintf("Avg speed: %.3f m/s", s.AvgSpeed),
		fmt.Sprintf("Avg polling rate: %.0f Hz", s.AvgRateHz),
		fmt.Sprintf("Total time: %s", (time.Duration(s.TotalDuration) * time.Millisecond).Round(time.Second)),
		fmt.Sprintf("Total samples: %d", s.TotalSamples),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderSessionTable prints one row per stored session, newest last.
func RenderSessionTable(w io.Writer, sessions []model.SessionAggregate) error {
	if len(sessions) == 0 {
		return nil
	}
	headers := []string{"Ended", "Device", "DPI", "Duration", "Samples", "Peak m/s", "Avg m/s", "Rate Hz"}
	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		rate := "-"
		if s.AvgRateHz > 0 {
			rate = fmt.Sprintf("%.0f", s.AvgRateHz)
		}
		rows = append(rows, []string{
			s.EndedAt.Local().Format("2006-01-02 15:04"),
			s.Device,
			fmt.Sprintf("%.0f", s.DPI),
			(time.Duration(s.DurationMs) * time.Millisecond).Round(time.Second).String(),
			fmt.Sprintf("%d", s.Samples),
			fmt.Sprintf("%.3f", s.PeakSpeed),
			fmt.Sprintf("%.3f", s.AvgSpeed),
			rate,
		})
	}
	rightAlign := map[int]bool{2: true, 3: true, 4: true, 5: true, 6: true, 7: true}
	if _, err := fmt.Fprintln(w, "Sessions"); err != nil {
		return err
	}
	for _, line := range formatTable(headers, rows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderCurves prints peak and average speed trends across sessions,
// smoothed with a moving average.
func RenderCurves(w io.Writer, sessions []model.SessionAggregate, window, width, height int) error {
	if len(sessions) == 0 {
		return nil
	}
	peaks := make([]float64, len(sessions))
	avgs := make([]float64, len(sessions))
	for i, s := range sessions {
		peaks[i] = s.PeakSpeed
		avgs[i] = s.AvgSpeed
	}
	peaks = MovingAverage(peaks, window)
	avgs = MovingAverage(avgs, window)

	plot := Plot{Width: width, Height: height}
	sections := []struct {
		title  string
		values []float64
	}{
		{"Peak speed (m/s)", peaks},
		{"Average speed (m/s)", avgs},
	}
	for _, sec := range sections {
		if _, err := fmt.Fprintln(w, sec.title); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, plot.Render(sec.values)); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, ""); err != nil {
			return err
		}
	}
	return nil
}
