package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/ascend/internal/tracker"
)

type palette struct {
	primary, secondary, accent, muted lipgloss.Color
	success, warning, error, fg       lipgloss.Color
	subtle, highlight                 lipgloss.Color
}

var darkPalette = palette{
	primary:   "#6C63FF",
	secondary: "#2EC4B6",
	accent:    "#FF6B6B",
	muted:     "#666666",
	success:   "#2ECC71",
	warning:   "#F39C12",
	error:     "#E74C3C",
	fg:        "#C0CAF5",
	subtle:    "#414868",
	highlight: "#7AA2F7",
}

var lightPalette = palette{
	primary:   "#4F46E5",
	secondary: "#0F766E",
	accent:    "#DC2626",
	muted:     "#64748B",
	success:   "#059669",
	warning:   "#B45309",
	error:     "#B91C1C",
	fg:        "#0F172A",
	subtle:    "#CBD5E1",
	highlight: "#2563EB",
}

// Color palette, set by applyTheme.
var (
	colorPrimary   lipgloss.Color
	colorSecondary lipgloss.Color
	colorAccent    lipgloss.Color
	colorMuted     lipgloss.Color
	colorSuccess   lipgloss.Color
	colorWarning   lipgloss.Color
	colorError     lipgloss.Color
	colorFg        lipgloss.Color
	colorSubtle    lipgloss.Color
	colorHighlight lipgloss.Color
)

// Styles
var (
	activeTabStyle    lipgloss.Style
	inactiveTabStyle  lipgloss.Style
	panelStyle        lipgloss.Style
	activePanelStyle  lipgloss.Style
	alertPanelStyle   lipgloss.Style
	timerStyle        lipgloss.Style
	timerRunningStyle lipgloss.Style
	timerPausedStyle  lipgloss.Style
	titleStyle        lipgloss.Style
	subtitleStyle     lipgloss.Style
	accentStyle       lipgloss.Style
	successStyle      lipgloss.Style
	warningStyle      lipgloss.Style
	errorStyle        lipgloss.Style
	mutedStyle        lipgloss.Style
	highlightStyle    lipgloss.Style
	headerStyle       lipgloss.Style
	footerStyle       lipgloss.Style
	selectedItemStyle lipgloss.Style
	normalItemStyle   lipgloss.Style
)

var currentTheme string

func init() {
	applyTheme(tracker.ThemeLight)
}

// applyTheme swaps the palette and rebuilds every style. Unknown names
// fall back to light.
func applyTheme(name string) {
	p := lightPalette
	if name == tracker.ThemeDark {
		p = darkPalette
	} else {
		name = tracker.ThemeLight
	}
	currentTheme = name

	colorPrimary, colorSecondary, colorAccent, colorMuted = p.primary, p.secondary, p.accent, p.muted
	colorSuccess, colorWarning, colorError, colorFg = p.success, p.warning, p.error, p.fg
	colorSubtle, colorHighlight = p.subtle, p.highlight

	activeTabStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(colorPrimary).
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(colorPrimary).
		Padding(0, 2)
	inactiveTabStyle = lipgloss.NewStyle().
		Foreground(colorMuted).
		Padding(0, 2)

	panelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorSubtle).
		Padding(1, 2)
	activePanelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorPrimary).
		Padding(1, 2)
	alertPanelStyle = lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(colorWarning).
		Padding(0, 2)

	timerStyle = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Align(lipgloss.Center)
	timerRunningStyle = lipgloss.NewStyle().Bold(true).Foreground(colorSuccess).Align(lipgloss.Center)
	timerPausedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorWarning).Align(lipgloss.Center)

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorFg)
	subtitleStyle = lipgloss.NewStyle().Foreground(colorMuted).Italic(true)
	accentStyle = lipgloss.NewStyle().Foreground(colorAccent)
	successStyle = lipgloss.NewStyle().Foreground(colorSuccess)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning)
	errorStyle = lipgloss.NewStyle().Foreground(colorError)
	mutedStyle = lipgloss.NewStyle().Foreground(colorMuted)
	highlightStyle = lipgloss.NewStyle().Foreground(colorHighlight)

	headerStyle = lipgloss.NewStyle().Padding(0, 1)
	footerStyle = lipgloss.NewStyle().Foreground(colorMuted).Padding(0, 1)

	selectedItemStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	normalItemStyle = lipgloss.NewStyle().Foreground(colorFg)
}

// entryColor picks the timeline color for a focus session or activity kind.
func entryColor(kind tracker.EntryKind, act tracker.ActivityType) lipgloss.Color {
	if kind == tracker.EntryFocus {
		return colorPrimary
	}
	switch act {
	case tracker.ActivityFood:
		return colorWarning
	case tracker.ActivityNap:
		return colorHighlight
	case tracker.ActivityRest:
		return colorSecondary
	case tracker.ActivityBreak:
		return colorSuccess
	case tracker.ActivityDrift:
		return colorAccent
	}
	return colorMuted
}
