// Package tui provides the Bubble Tea live meter interface.
package tui

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"mousemeter/internal/config"
	"mousemeter/internal/meter"
	"mousemeter/internal/model"
	"mousemeter/internal/store"
)

const tickInterval = 50 * time.Millisecond

const (
	inputDPI = iota
	inputWindow
	inputCount
)

type tickMsg time.Time

type histPoint struct {
	t time.Time
	v float64
}

// Model implements the Bubble Tea live meter UI.
type Model struct {
	controller *meter.Controller
	live       *config.Live
	store      *store.Store
	device     string

	startedAt time.Time
	snap      model.Snapshot

	speedHist []histPoint
	rateHist  []histPoint

	sessionPeak float64
	speedSum    float64
	speedTicks  int64
	rateSum     float64
	rateTicks   int64

	inputs   [inputCount]textinput.Model
	focused  int // -1 when no input has focus
	inputErr string

	width  int
	height int
}

// NewModel constructs the live meter model. store may be nil, in which
// case the session is not persisted on exit.
func NewModel(controller *meter.Controller, live *config.Live, st *store.Store, device string) *Model {
	m := &Model{
		controller: controller,
		live:       live,
		store:      st,
		device:     device,
		startedAt:  time.Now(),
		focused:    -1,
	}

	dpi := textinput.New()
	dpi.Placeholder = "dpi"
	dpi.CharLimit = 8
	dpi.Width = 8
	dpi.SetValue(strconv.FormatFloat(live.CurrentDPI(), 'f', -1, 64))
	m.inputs[inputDPI] = dpi

	window := textinput.New()
	window.Placeholder = "ms"
	window.CharLimit = 8
	window.Width = 8
	window.SetValue(strconv.FormatInt(live.CurrentWindow().Milliseconds(), 10))
	m.inputs[inputWindow] = window

	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		m.refresh(time.Time(msg))
		return m, tick()
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.finishSession()
		return m, tea.Quit
	case tea.KeyTab:
		m.cycleFocus()
		return m, nil
	case tea.KeyEsc:
		m.blurInputs()
		return m, nil
	case tea.KeyEnter:
		if m.focused >= 0 {
			m.applyInput(m.focused)
			m.blurInputs()
		}
		return m, nil
	}

	if m.focused >= 0 {
		var cmd tea.Cmd
		m.inputs[m.focused], cmd = m.inputs[m.focused].Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q":
		m.finishSession()
		return m, tea.Quit
	case "r":
		m.controller.ResetPeak(time.Now())
	}
	return m, nil
}

func (m *Model) cycleFocus() {
	next := m.focused + 1
	if next >= inputCount {
		m.blurInputs()
		return
	}
	m.blurInputs()
	m.focused = next
	m.inputs[next].Focus()
}

func (m *Model) blurInputs() {
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
	m.focused = -1
}

// applyInput validates and commits an edited setting. Invalid values are
// reported and the field is restored to the live value.
func (m *Model) applyInput(idx int) {
	m.inputErr = ""
	raw := m.inputs[idx].Value()
	switch idx {
	case inputDPI:
		dpi, err := strconv.ParseFloat(raw, 64)
		if err != nil || dpi <= 0 {
			m.inputErr = fmt.Sprintf("invalid dpi %q", raw)
			m.inputs[idx].SetValue(strconv.FormatFloat(m.live.CurrentDPI(), 'f', -1, 64))
			return
		}
		m.live.SetDPI(dpi)
	case inputWindow:
		ms, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || ms <= 0 {
			m.inputErr = fmt.Sprintf("invalid window %q", raw)
			m.inputs[idx].SetValue(strconv.FormatInt(m.live.CurrentWindow().Milliseconds(), 10))
			return
		}
		m.live.SetWindow(time.Duration(ms) * time.Millisecond)
	}
}

// refresh pulls a snapshot and rolls the plot histories forward.
func (m *Model) refresh(now time.Time) {
	m.snap = m.controller.Snapshot(now)

	m.speedHist = append(m.speedHist, histPoint{t: now, v: m.snap.AvgSpeed})
	rate := 0.0
	if m.snap.RateKnown {
		rate = m.snap.RateHz
	}
	m.rateHist = append(m.rateHist, histPoint{t: now, v: rate})

	span := m.live.CurrentPlotSpan()
	m.speedHist = pruneHist(m.speedHist, now.Add(-span))
	m.rateHist = pruneHist(m.rateHist, now.Add(-span))

	if m.snap.PeakSpeed > m.sessionPeak {
		m.sessionPeak = m.snap.PeakSpeed
	}
	if m.snap.State == model.StateActive {
		m.speedSum += m.snap.AvgSpeed
		m.speedTicks++
	}
	if m.snap.RateKnown {
		m.rateSum += m.snap.RateHz
		m.rateTicks++
	}
}

func pruneHist(hist []histPoint, cutoff time.Time) []histPoint {
	drop := 0
	for drop < len(hist) && hist[drop].t.Before(cutoff) {
		drop++
	}
	if drop == 0 {
		return hist
	}
	return append(hist[:0:0], hist[drop:]...)
}

// finishSession persists the session summary, best effort.
func (m *Model) finishSession() {
	if m.store == nil {
		return
	}
	endedAt := time.Now()
	stats := model.SessionStats{
		StartedAt:  m.startedAt,
		EndedAt:    endedAt,
		Device:     m.device,
		DPI:        m.live.CurrentDPI(),
		WindowMs:   m.live.CurrentWindow().Milliseconds(),
		DurationMs: endedAt.Sub(m.startedAt).Milliseconds(),
		Samples:    m.snap.Samples,
		Discarded:  m.snap.Discarded,
		PeakSpeed:  m.sessionPeak,
	}
	if m.speedTicks > 0 {
		stats.AvgSpeed = m.speedSum / float64(m.speedTicks)
	}
	if m.rateTicks > 0 {
		stats.AvgRateHz = m.rateSum / float64(m.rateTicks)
	}
	if stats.Samples == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := m.store.InsertSession(ctx, stats); err != nil {
		logErrf("failed to save session: %v\n", err)
	}
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
