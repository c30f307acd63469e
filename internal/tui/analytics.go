package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/ascend/internal/clock"
	"github.com/sadopc/ascend/internal/tracker"
)

const maxChartBars = 8

type analyticsModel struct {
	tracker *tracker.Tracker
	clock   clock.Clock
	width   int
	height  int

	offset     int // days back from today (0 = today)
	laneBuffer time.Duration
	timeline   tracker.Timeline

	chart barchart.Model
}

func newAnalyticsModel(tr *tracker.Tracker, c clock.Clock, laneBuffer time.Duration) analyticsModel {
	return analyticsModel{
		tracker:    tr,
		clock:      c,
		laneBuffer: laneBuffer,
		chart:      barchart.New(60, 10),
	}
}

func (r *analyticsModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

type analyticsDataMsg struct {
	timeline tracker.Timeline
}

func (r analyticsModel) day() time.Time {
	return r.clock.Now().AddDate(0, 0, -r.offset)
}

func (r analyticsModel) refresh() tea.Cmd {
	tr, day, buf := r.tracker, r.day(), r.laneBuffer
	return func() tea.Msg {
		return analyticsDataMsg{timeline: tr.Timeline(day, buf)}
	}
}

func (r analyticsModel) update(msg tea.Msg) (analyticsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case analyticsDataMsg:
		r.timeline = msg.timeline
		r.buildChart()
		return r, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			r.offset++
			return r, r.refresh()
		case key.Matches(msg, keys.Right):
			if r.offset > 0 {
				r.offset--
			}
			return r, r.refresh()
		}
	}
	return r, nil
}

func (r *analyticsModel) buildChart() {
	chartWidth := max(20, r.width-8)
	chartHeight := 10
	if r.height > 40 {
		chartHeight = 14
	}
	r.chart = barchart.New(chartWidth, chartHeight)

	var bars []barchart.BarData
	for i, t := range r.timeline.Totals {
		if i == maxChartBars {
			break
		}
		style := lipgloss.NewStyle().Foreground(entryColor(t.Kind, t.Activity))
		bars = append(bars, barchart.BarData{
			Label: truncate(t.Label, 8),
			Values: []barchart.BarValue{{
				Name:  t.Label,
				Value: float64(t.Duration) / 3600.0,
				Style: style,
			}},
		})
	}
	if len(bars) == 0 {
		bars = []barchart.BarData{{
			Label:  "",
			Values: []barchart.BarValue{{Name: "", Value: 0, Style: lipgloss.NewStyle().Foreground(colorSubtle)}},
		}}
	}

	r.chart.PushAll(bars)
	r.chart.Draw()
}

func (r analyticsModel) view() string {
	w := r.width - 4

	dayLabel := r.timeline.DayStart.Format("Mon Jan 02, 2006")
	if r.offset == 0 {
		dayLabel += " (today)"
	}
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Analytics"), "  ", mutedStyle.Render(dayLabel),
	)

	nav := mutedStyle.Render("  ←/→: previous/next day  e: export this day")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "",
			r.renderLanes(w-6), "",
			r.renderBreakdown(w-6), "",
			r.chart.View(), "",
			nav,
		),
	)
}

// renderLanes draws the 24 h window, one row per lane.
func (r analyticsModel) renderLanes(w int) string {
	const gutter = 4
	cols := max(24, w-gutter)

	ruler := make([]rune, cols)
	for i := range ruler {
		ruler[i] = ' '
	}
	for h := 0; h < 24; h += 6 {
		label := fmt.Sprintf("%02d", h)
		pos := h * cols / 24
		for j, c := range label {
			if pos+j < cols {
				ruler[pos+j] = c
			}
		}
	}
	lines := []string{strings.Repeat(" ", gutter) + mutedStyle.Render(string(ruler))}

	if len(r.timeline.Entries) == 0 {
		lines = append(lines, mutedStyle.Render("    Nothing recorded on this day"))
		return strings.Join(lines, "\n")
	}

	for lane := 0; lane < r.timeline.Lanes; lane++ {
		owner := make([]int, cols)
		for i := range owner {
			owner[i] = -1
		}
		for idx, e := range r.timeline.Entries {
			if e.Lane != lane {
				continue
			}
			from, to := r.column(e.Start, cols), r.column(e.End, cols)
			if to <= from {
				to = from + 1
			}
			for c := from; c < to && c < cols; c++ {
				owner[c] = idx
			}
		}
		lines = append(lines, mutedStyle.Render(fmt.Sprintf("L%-2d ", lane+1))+r.paintLane(owner))
	}
	return strings.Join(lines, "\n")
}

func (r analyticsModel) column(t time.Time, cols int) int {
	span := r.timeline.DayEnd.Sub(r.timeline.DayStart)
	if span <= 0 {
		return 0
	}
	off := t.Sub(r.timeline.DayStart)
	off = max(0, min(off, span))
	return int(int64(off) * int64(cols) / int64(span))
}

// paintLane renders runs of columns owned by the same entry in that
// entry's color.
func (r analyticsModel) paintLane(owner []int) string {
	var b strings.Builder
	for start := 0; start < len(owner); {
		end := start
		for end < len(owner) && owner[end] == owner[start] {
			end++
		}
		n := end - start
		if owner[start] < 0 {
			b.WriteString(lipgloss.NewStyle().Foreground(colorSubtle).Render(strings.Repeat("·", n)))
		} else {
			e := r.timeline.Entries[owner[start]]
			b.WriteString(lipgloss.NewStyle().Foreground(entryColor(e.Kind, e.Activity)).Render(strings.Repeat("█", n)))
		}
		start = end
	}
	return b.String()
}

func (r analyticsModel) renderBreakdown(w int) string {
	if len(r.timeline.Totals) == 0 {
		return mutedStyle.Render("  No data for this day")
	}

	var focus, wellness, drift int64
	for _, t := range r.timeline.Totals {
		switch {
		case t.Kind == tracker.EntryFocus:
			focus += t.Duration
		case t.Activity == tracker.ActivityDrift:
			drift += t.Duration
		default:
			wellness += t.Duration
		}
	}

	var rows []string
	rows = append(rows, fmt.Sprintf("  %s %s   %s %s   %s %s",
		titleStyle.Render("Focus"), highlightStyle.Render(formatSeconds(focus)),
		titleStyle.Render("Wellness"), successStyle.Render(formatSeconds(wellness)),
		titleStyle.Render("Drift"), accentStyle.Render(formatSeconds(drift)),
	))
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-24s %-9s %10s %8s", "Label", "Kind", "Duration", "Count")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-2, 54))))
	for _, t := range r.timeline.Totals {
		dot := lipgloss.NewStyle().Foreground(entryColor(t.Kind, t.Activity)).Render("●")
		rows = append(rows, fmt.Sprintf("  %s %-22s %-9s %10s %8d",
			dot, truncate(t.Label, 22), t.Kind, formatSeconds(t.Duration), t.Count,
		))
	}
	return strings.Join(rows, "\n")
}
