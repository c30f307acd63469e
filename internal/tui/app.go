package tui

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/ascend/internal/clock"
	"github.com/sadopc/ascend/internal/export"
	"github.com/sadopc/ascend/internal/store"
	"github.com/sadopc/ascend/internal/suggest"
	"github.com/sadopc/ascend/internal/tracker"
)

// Options wires the App to its collaborators.
type Options struct {
	Tracker   *tracker.Tracker
	Store     *store.Store
	Suggester suggest.Suggester
	Clock     clock.Clock
	Logger    *slog.Logger

	// ExportDir receives exported files.
	ExportDir string
	// FocusLength and LaneBuffer apply until the settings table overrides them.
	FocusLength time.Duration
	LaneBuffer  time.Duration
	// Info is shown read-only in the Settings view.
	Info []InfoLine
}

// App is the root Bubble Tea model.
type App struct {
	tracker   *tracker.Tracker
	store     *store.Store
	clock     clock.Clock
	logger    *slog.Logger
	exportDir string

	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	pipeline  pipelineModel
	focus     focusModel
	analytics analyticsModel
	settings  settingsModel

	help   help.Model
	status string
	isErr  bool
}

func NewApp(o Options) App {
	if o.Clock == nil {
		o.Clock = clock.Real{}
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	if o.Suggester == nil {
		o.Suggester = suggest.Noop{}
	}
	applyTheme(o.Tracker.Theme())

	h := help.New()
	h.ShowAll = false

	settings := newSettingsModel(o.Store, o.Tracker, o.FocusLength, o.LaneBuffer, o.Info)

	return App{
		tracker:    o.Tracker,
		store:      o.Store,
		clock:      o.Clock,
		logger:     o.Logger,
		exportDir:  o.ExportDir,
		activeView: viewPipeline,
		pipeline:   newPipelineModel(o.Tracker, o.Suggester),
		focus:      newFocusModel(o.Tracker, o.Clock, settings.focusLength),
		analytics:  newAnalyticsModel(o.Tracker, o.Clock, settings.laneBuffer),
		settings:   settings,
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.analytics.refresh(),
		tickCmd(),
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.pipeline.setSize(a.width, contentHeight)
		a.focus.setSize(a.width, contentHeight)
		a.analytics.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, a.analytics.refresh()

	case tea.KeyMsg:
		return a.handleKey(msg)

	case tickMsg:
		cmds := []tea.Cmd{tickCmd()}
		if res := a.tracker.Tick(); res.DriftAlert {
			a.setStatus("Drift detected \a", false)
		}
		var cmd tea.Cmd
		a.focus, cmd = a.focus.update(msg)
		cmds = append(cmds, cmd)
		return a, tea.Batch(cmds...)

	case focusRequestMsg:
		f, ok := a.focus.begin(msg.taskID, msg.subtaskTitle)
		if !ok {
			a.setStatus("Another activity is running", true)
			return a, nil
		}
		a.focus = f
		a.activeView = viewFocus
		return a, nil

	case focusStoppedMsg:
		a.activeView = viewPipeline
		if msg.seconds > 0 {
			a.setStatus("Logged "+formatSeconds(msg.seconds)+" of focus", false)
		} else {
			a.setStatus("Focus closed", false)
		}
		return a, a.analytics.refresh()

	case suggestionsMsg:
		var cmd tea.Cmd
		a.pipeline, cmd = a.pipeline.update(msg)
		return a, cmd

	case settingsSavedMsg:
		applyTheme(a.tracker.Theme())
		a.focus.defaultLength = a.settings.focusLength
		a.analytics.laneBuffer = a.settings.laneBuffer
		a.setStatus("Settings saved", false)
		return a, a.analytics.refresh()

	case statusMsg:
		a.setStatus(msg.text, msg.isError)
		return a, nil

	case exportDoneMsg:
		a.setStatus("Exported to "+msg.path, false)
		a.exportPicking = false
		return a, nil
	}

	return a.updateActiveView(msg)
}

func (a *App) setStatus(text string, isErr bool) {
	a.status = text
	a.isErr = isErr
	if isErr {
		a.logger.Debug("status", "text", text)
	}
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.exportPicking {
		return a.updateExportPicker(msg)
	}

	// If a child view is capturing input (form, search), delegate first.
	if a.isFormActive() {
		return a.updateActiveView(msg)
	}

	if a.tracker.DriftAlertVisible() {
		switch {
		case key.Matches(msg, keys.Break):
			if a.tracker.TakeBreak() {
				a.setStatus("Break started", false)
			}
			return a, a.analytics.refresh()
		case key.Matches(msg, keys.Back):
			a.tracker.DismissDrift()
			a.setStatus("Drift dismissed", false)
			return a, nil
		}
	}

	switch {
	case key.Matches(msg, keys.Stop) && a.tracker.Active().Wellness != nil:
		if sess, ok := a.tracker.StopWellnessActivity(); ok {
			a.setStatus(fmt.Sprintf("%s logged (%s)", sess.Type.Label(), formatSeconds(sess.Duration)), false)
		}
		return a, a.analytics.refresh()
	case key.Matches(msg, keys.Export):
		a.exportPicking = true
		a.exportCursor = 0
		return a, nil
	case key.Matches(msg, keys.Quit):
		a.closeActivities()
		return a, tea.Quit
	case key.Matches(msg, keys.Help):
		a.showHelp = !a.showHelp
		a.help.ShowAll = a.showHelp
		return a, nil
	case key.Matches(msg, keys.Theme):
		next := tracker.ThemeDark
		if currentTheme == tracker.ThemeDark {
			next = tracker.ThemeLight
		}
		a.tracker.SetTheme(next)
		applyTheme(next)
		return a, a.analytics.refresh()
	case key.Matches(msg, keys.Tab1):
		a.activeView = viewPipeline
		return a, nil
	case key.Matches(msg, keys.Tab2):
		a.activeView = viewFocus
		return a, nil
	case key.Matches(msg, keys.Tab3):
		a.activeView = viewAnalytics
		return a, a.analytics.refresh()
	case key.Matches(msg, keys.Tab4):
		a.activeView = viewSettings
		return a, a.settings.refresh()
	case key.Matches(msg, keys.Tab):
		a.activeView = (a.activeView + 1) % viewState(len(viewNames))
		return a, a.refreshCurrentView()
	}

	return a.updateActiveView(msg)
}

// closeActivities records whatever is running before the program exits;
// gate state does not survive a restart.
func (a *App) closeActivities() {
	if a.focus.open() {
		a.focus, _ = a.focus.finish()
	}
	a.tracker.StopWellnessActivity()
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewPipeline:
		a.pipeline, cmd = a.pipeline.update(msg)
	case viewFocus:
		a.focus, cmd = a.focus.update(msg)
	case viewAnalytics:
		a.analytics, cmd = a.analytics.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewPipeline:
		return a.pipeline.capturing()
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewAnalytics:
		return a.analytics.refresh()
	case viewSettings:
		return a.settings.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()
	banner := a.renderDriftBanner()

	var content string
	switch a.activeView {
	case viewPipeline:
		content = a.pipeline.view()
	case viewFocus:
		content = a.focus.view()
	case viewAnalytics:
		content = a.analytics.view()
	case viewSettings:
		content = a.settings.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if banner != "" {
		contentHeight -= lipgloss.Height(banner)
	}
	if contentHeight < 1 {
		contentHeight = 1
	}

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		MaxHeight(contentHeight).
		Render(content)

	parts := []string{header}
	if banner != "" {
		parts = append(parts, banner)
	}
	parts = append(parts, content, footer)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("ascend")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderDriftBanner() string {
	if !a.tracker.DriftAlertVisible() {
		return ""
	}
	idle := a.tracker.DriftIdle().Truncate(time.Minute)
	msg := warningStyle.Bold(true).Render(fmt.Sprintf("You've been drifting for %d minutes.", int(idle/time.Minute)))
	hint := mutedStyle.Render("  Make it an official break?  b: take break  esc: dismiss")
	return alertPanelStyle.Width(a.width - 2).Render(msg + hint)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		style := mutedStyle
		if a.isErr {
			style = errorStyle
		}
		status = style.Render(" " + a.status)
	}

	left := footerStyle.Render(helpView)
	right := a.activityIndicator() + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

// activityIndicator shows what holds the gate, or the idle time.
func (a App) activityIndicator() string {
	active := a.tracker.Active()
	switch {
	case active.Focus != nil:
		if a.focus.countdown != nil && a.focus.countdown.Paused() {
			return warningStyle.Render(" ⏸ " + active.Focus.SubtaskTitle + " " + formatDuration(a.focus.elapsed()))
		}
		return successStyle.Render(" ● " + active.Focus.SubtaskTitle + " " + formatDuration(a.focus.elapsed()))
	case active.Wellness != nil:
		elapsed := a.clock.Now().Sub(active.Wellness.StartTime)
		style := lipgloss.NewStyle().Foreground(entryColor(tracker.EntryActivity, active.Wellness.Type))
		return style.Render(" ● " + active.Wellness.Type.Label() + " " + formatDuration(elapsed))
	}
	return mutedStyle.Render(" idle " + formatDuration(a.tracker.DriftIdle()))
}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export " + a.exportDay().Format("Jan 02") + " timeline")
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range export.Formats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+string(f)))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(export.Formats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(export.Formats[a.exportCursor])
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

// exportDay is the day on screen in Analytics, otherwise today.
func (a App) exportDay() time.Time {
	if a.activeView == viewAnalytics {
		return a.analytics.day()
	}
	return a.clock.Now()
}

func (a App) doExport(f export.Format) tea.Cmd {
	tl := a.tracker.Timeline(a.exportDay(), a.analytics.laneBuffer)
	dir, logger := a.exportDir, a.logger
	return func() tea.Msg {
		path, err := export.Write(tl, f, dir, "")
		if err != nil {
			logger.Warn("export", "format", f, "err", err)
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}
		logger.Info("export", "format", f, "path", path, "entries", len(tl.Entries))
		return exportDoneMsg{path: path}
	}
}
