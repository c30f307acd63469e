package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/ascend/internal/clock"
	"github.com/sadopc/ascend/internal/tracker"
)

const quoteInterval = 20 * time.Second

var quotes = []string{
	"Focus on the step, not the mountain.",
	"Consistency is the companion of success.",
	"Your future self will thank you.",
	"One thing at a time.",
	"Deep work, great results.",
	"Progress over perfection.",
	"Quiet the mind and the soul will speak.",
	"The secret of getting ahead is getting started.",
}

type focusPhase int

const (
	focusClosed focusPhase = iota
	focusSetup
	focusRunning
)

type focusModel struct {
	tracker *tracker.Tracker
	clock   clock.Clock
	width   int
	height  int

	defaultLength time.Duration

	phase        focusPhase
	taskTitle    string
	subtaskTitle string
	length       time.Duration
	countdown    *tracker.Countdown

	quoteIdx int
	quoteAt  time.Time
}

func newFocusModel(tr *tracker.Tracker, c clock.Clock, length time.Duration) focusModel {
	return focusModel{
		tracker:       tr,
		clock:         c,
		defaultLength: tracker.ClampFocusDuration(length),
	}
}

func (f *focusModel) setSize(w, h int) {
	f.width = w
	f.height = h
}

func (f focusModel) open() bool { return f.phase != focusClosed }

// begin claims the activity gate for the subtask and shows the length
// picker. It fails when another activity holds the gate.
func (f focusModel) begin(taskID, subtaskTitle string) (focusModel, bool) {
	if !f.tracker.StartFocusTimer(taskID, subtaskTitle) {
		return f, false
	}
	task, _ := f.tracker.Task(taskID)
	f.phase = focusSetup
	f.taskTitle = task.Title
	f.subtaskTitle = subtaskTitle
	f.length = f.defaultLength
	f.countdown = nil
	return f, true
}

func (f focusModel) update(msg tea.Msg) (focusModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		return f.tick()

	case tea.KeyMsg:
		switch f.phase {
		case focusSetup:
			return f.updateSetup(msg)
		case focusRunning:
			return f.updateRunning(msg)
		}
	}
	return f, nil
}

func (f focusModel) updateSetup(msg tea.KeyMsg) (focusModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Right):
		f.length = tracker.ClampFocusDuration(f.length + time.Minute)
	case key.Matches(msg, keys.Left):
		f.length = tracker.ClampFocusDuration(f.length - time.Minute)
	case key.Matches(msg, keys.Up):
		f.length = tracker.ClampFocusDuration(f.length + 5*time.Minute)
	case key.Matches(msg, keys.Down):
		f.length = tracker.ClampFocusDuration(f.length - 5*time.Minute)
	case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Toggle):
		f.countdown = tracker.NewCountdown(f.clock, f.length)
		f.countdown.Start()
		f.phase = focusRunning
		f.quoteIdx = 0
		f.quoteAt = f.clock.Now()
	case key.Matches(msg, keys.Back), key.Matches(msg, keys.Stop):
		return f.finish()
	}
	return f, nil
}

func (f focusModel) updateRunning(msg tea.KeyMsg) (focusModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Toggle):
		f.countdown.Toggle()
	case key.Matches(msg, keys.Stop), key.Matches(msg, keys.Enter), key.Matches(msg, keys.Back):
		return f.finish()
	}
	return f, nil
}

// finish releases the gate, crediting whatever the countdown measured.
func (f focusModel) finish() (focusModel, tea.Cmd) {
	var secs int64
	if f.countdown != nil {
		secs = f.countdown.ElapsedSeconds()
	}
	f.tracker.StopFocusTimer(secs)
	f.phase = focusClosed
	f.countdown = nil
	return f, func() tea.Msg { return focusStoppedMsg{seconds: secs} }
}

func (f focusModel) tick() (focusModel, tea.Cmd) {
	if f.phase != focusRunning {
		return f, nil
	}
	now := f.clock.Now()
	if now.Sub(f.quoteAt) >= quoteInterval {
		f.quoteIdx = (f.quoteIdx + 1) % len(quotes)
		f.quoteAt = now
	}
	if f.countdown.Tick() {
		return f, status("Focus complete! \a", false)
	}
	return f, nil
}

// elapsed is the running total for the footer.
func (f focusModel) elapsed() time.Duration {
	if f.countdown == nil {
		return 0
	}
	return f.countdown.Elapsed()
}

func (f focusModel) view() string {
	w := f.width - 4

	if f.phase == focusClosed {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Center,
			titleStyle.Render("Focus"),
			"",
			mutedStyle.Render("No focus session. Pick a subtask in the Pipeline and press f."),
		))
	}

	target := highlightStyle.Render(f.subtaskTitle)
	if f.taskTitle != "" && f.taskTitle != f.subtaskTitle {
		target = mutedStyle.Render(f.taskTitle+" / ") + target
	}
	header := lipgloss.JoinVertical(lipgloss.Center, mutedStyle.Render("FOCUSING ON"), target)

	if f.phase == focusSetup {
		return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Center,
			header,
			"",
			timerStyle.Width(w-6).Render(fmt.Sprintf("%dm", int(f.length/time.Minute))),
			"",
			mutedStyle.Render("←/→: ±1m  ↑/↓: ±5m  enter: start  esc: cancel"),
		))
	}

	remaining := f.countdown.Remaining()
	var clockLine, stateLine string
	switch {
	case f.countdown.Expired():
		clockLine = timerStyle.Width(w - 6).Render(formatClock(0))
		stateLine = successStyle.Bold(true).Render("COMPLETED")
	case f.countdown.Paused():
		clockLine = timerPausedStyle.Width(w - 6).Render(formatClock(remaining))
		stateLine = warningStyle.Render("⏸  PAUSED")
	default:
		clockLine = timerRunningStyle.Width(w - 6).Render(formatClock(remaining))
		stateLine = successStyle.Render("●  RUNNING")
	}

	pct := 0
	if l := f.countdown.Length(); l > 0 {
		pct = int(f.countdown.Elapsed() * 100 / l)
	}
	bar := highlightStyle.Render(progressBar(pct, max(10, min(w-10, 60))))

	controls := mutedStyle.Render("space: pause/resume  x: finish")
	if f.countdown.Expired() {
		controls = mutedStyle.Render("enter: done")
	}

	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Center,
		header,
		"",
		clockLine,
		stateLine,
		"",
		bar,
		"",
		subtitleStyle.Render(fmt.Sprintf("%q", quotes[f.quoteIdx])),
		"",
		controls,
	))
}
