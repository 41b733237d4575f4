package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"mousemeter/internal/model"
	"mousemeter/internal/stats"
)

const plotHeight = 7

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	cardStyle  = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	plotTitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	plotStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	labelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))

	stateStyles = map[model.State]lipgloss.Style{
		model.StateIdle:   lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C")),
		model.StateActive: lipgloss.NewStyle().Foreground(lipgloss.Color("#3AC864")),
		model.StateStale:  lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")),
		model.StateFailed: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")),
	}
)

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 {
		return ""
	}

	var sections []string
	sections = append(sections, m.renderHeader())
	if m.snap.State == model.StateFailed {
		sections = append(sections, errorStyle.Render(fmt.Sprintf("input stream failed: %v", m.snap.Err)))
		sections = append(sections, footerStyle.Render("q quit"))
		return strings.Join(sections, "\n\n")
	}
	sections = append(sections, m.renderCards())
	sections = append(sections, m.renderInputs())
	sections = append(sections, m.renderPlots())
	sections = append(sections, m.renderFooter())
	return strings.Join(sections, "\n")
}

func (m *Model) renderHeader() string {
	state := stateStyles[m.snap.State].Render(m.snap.State.String())
	title := titleStyle.Render("mousemeter")
	device := labelStyle.Render(m.device)
	return fmt.Sprintf("%s  %s  %s", title, device, state)
}

func (m *Model) renderCards() string {
	cards := []string{
		renderCard("speed", formatSpeed(m.snap.AvgSpeed)),
		renderCard("peak", formatSpeed(m.snap.PeakSpeed)),
		renderCard("polling", formatRate(m.snap.RateHz, m.snap.RateKnown)),
		renderCard("delta", fmt.Sprintf("%+d / %+d", m.snap.LastDX, m.snap.LastDY)),
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func renderCard(title, value string) string {
	content := cardTitleStyle.Render(title) + "\n" + cardValueStyle.Render(value)
	return cardStyle.Render(content)
}

func (m *Model) renderInputs() string {
	parts := []string{
		labelStyle.Render("dpi") + " " + m.inputs[inputDPI].View(),
		labelStyle.Render("window ms") + " " + m.inputs[inputWindow].View(),
	}
	line := strings.Join(parts, "   ")
	if m.inputErr != "" {
		line += "   " + errorStyle.Render(m.inputErr)
	}
	return line
}

func (m *Model) renderPlots() string {
	plotWidth := m.width/2 - 10
	if plotWidth < 10 {
		plotWidth = 10
	}
	plot := stats.Plot{Width: plotWidth, Height: plotHeight}

	speed := plotTitleStyle.Render("speed m/s") + "\n" + plotStyle.Render(plot.Render(histValues(m.speedHist)))
	rate := plotTitleStyle.Render("polling Hz") + "\n" + plotStyle.Render(plot.Render(histValues(m.rateHist)))
	return lipgloss.JoinHorizontal(lipgloss.Top, speed, "    ", rate)
}

func (m *Model) renderFooter() string {
	elapsed := time.Since(m.startedAt).Round(time.Second)
	segments := []string{fmt.Sprintf("samples %d", m.snap.Samples)}
	if m.snap.Discarded > 0 {
		segments = append(segments, fmt.Sprintf("discarded %d", m.snap.Discarded))
	}
	segments = append(segments,
		fmt.Sprintf("elapsed %s", elapsed),
		"tab edit",
		"r reset peak",
		"q quit",
	)
	return footerStyle.Render(strings.Join(segments, " · "))
}

func histValues(hist []histPoint) []float64 {
	out := make([]float64, len(hist))
	for i, p := range hist {
		out[i] = p.v
	}
	return out
}

func formatSpeed(v float64) string {
	return fmt.Sprintf("%.3f m/s", v)
}

func formatRate(hz float64, known bool) string {
	if !known {
		return "—"
	}
	return fmt.Sprintf("%.0f Hz", hz)
}
