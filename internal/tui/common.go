package tui

import (
	"fmt"
	"time"
)

// viewState represents the currently active view.
type viewState int

const (
	viewPipeline viewState = iota
	viewFocus
	viewAnalytics
	viewSettings
)

var viewNames = []string{"Pipeline", "Focus", "Analytics", "Settings"}

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

// focusRequestMsg asks the app to open the focus view for a subtask.
type focusRequestMsg struct {
	taskID       string
	subtaskTitle string
}

type focusStoppedMsg struct {
	seconds int64
}

type suggestionsMsg struct {
	taskID string
	titles []string
}

type exportDoneMsg struct {
	path string
}

type settingsSavedMsg struct{}

// --- Helpers ---

func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func formatSeconds(secs int64) string {
	return formatDuration(time.Duration(secs) * time.Second)
}

func formatHours(secs int64) string {
	h := float64(secs) / 3600
	return fmt.Sprintf("%.1fh", h)
}

// formatClock renders mm:ss, minutes unbounded.
func formatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d", m, s)
}

// progressBar draws a fixed-width bar for pct in 0..100.
func progressBar(pct, width int) string {
	if width < 1 {
		return ""
	}
	filled := pct * width / 100
	filled = max(0, min(filled, width))
	bar := ""
	for i := 0; i < width; i++ {
		if i < filled {
			bar += "█"
		} else {
			bar += "░"
		}
	}
	return bar
}
