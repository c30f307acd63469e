package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/ascend/internal/store"
	"github.com/sadopc/ascend/internal/tracker"
)

// InfoLine is a read-only row shown under the editable settings, such as
// values that come from the config file.
type InfoLine struct {
	Label string
	Value string
}

type settingsModel struct {
	store   *store.Store
	tracker *tracker.Tracker
	width   int
	height  int

	focusDefault time.Duration
	laneDefault  time.Duration
	info         []InfoLine

	focusLength time.Duration
	laneBuffer  time.Duration
	// focusSaved and laneSaved mark values read from the settings table
	// rather than the config file.
	focusSaved bool
	laneSaved  bool
	lastSaved  time.Time

	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	focusMinutes *string
	laneMinutes  *string
	theme        *string
}

func newSettingsModel(s *store.Store, tr *tracker.Tracker, focusDefault, laneDefault time.Duration, info []InfoLine) settingsModel {
	fm, lm, th := "", "", ""
	m := settingsModel{
		store:        s,
		tracker:      tr,
		focusDefault: focusDefault,
		laneDefault:  laneDefault,
		info:         info,
		focusMinutes: &fm,
		laneMinutes:  &lm,
		theme:        &th,
	}
	m.load()
	return m
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

func (s *settingsModel) load() {
	s.focusLength = tracker.ClampFocusDuration(s.store.FocusLength(s.focusDefault))
	s.laneBuffer = s.store.LaneBuffer(s.laneDefault)

	s.focusSaved, s.laneSaved = false, false
	if over, err := s.store.Overrides(); err == nil {
		s.focusSaved = over[store.SettingFocusMinutes]
		s.laneSaved = over[store.SettingLaneBufferSeconds]
	}

	s.lastSaved = time.Time{}
	if t, err := s.store.DocumentUpdatedAt(); err == nil {
		s.lastSaved = t
	}
}

type settingsDataMsg struct {
	focusLength time.Duration
	laneBuffer  time.Duration
	focusSaved  bool
	laneSaved   bool
	lastSaved   time.Time
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		s.load()
		return settingsDataMsg{
			focusLength: s.focusLength,
			laneBuffer:  s.laneBuffer,
			focusSaved:  s.focusSaved,
			laneSaved:   s.laneSaved,
			lastSaved:   s.lastSaved,
		}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.focusLength = msg.focusLength
		s.laneBuffer = msg.laneBuffer
		s.focusSaved = msg.focusSaved
		s.laneSaved = msg.laneSaved
		s.lastSaved = msg.lastSaved
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.New):
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.focusMinutes = strconv.Itoa(int(s.focusLength / time.Minute))
	*s.laneMinutes = strconv.Itoa(int(s.laneBuffer / time.Minute))
	*s.theme = s.tracker.Theme()
	if *s.theme == "" {
		*s.theme = tracker.ThemeLight
	}

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Focus length (min, 1-120)").Value(s.focusMinutes).Validate(validateMinutes(1, 120)),
			huh.NewInput().Title("Timeline lane buffer (min, 0-5)").Value(s.laneMinutes).Validate(validateMinutes(0, 5)),
			huh.NewSelect[string]().Title("Theme").
				Options(
					huh.NewOption("Light", tracker.ThemeLight),
					huh.NewOption("Dark", tracker.ThemeDark),
				).Value(s.theme),
		).Title("Preferences"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func validateMinutes(lo, hi int) func(string) error {
	return func(v string) error {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("enter a whole number")
		}
		if n < lo || n > hi {
			return fmt.Errorf("must be between %d and %d", lo, hi)
		}
		return nil
	}
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		if err := s.saveSettings(); err != nil {
			return s, status(fmt.Sprintf("Settings error: %v", err), true)
		}
		s.load()
		return s, func() tea.Msg { return settingsSavedMsg{} }
	}

	return s, cmd
}

// saveSettings writes only the values the user changed, so untouched
// preferences keep following the config file.
func (s settingsModel) saveSettings() error {
	if n, err := strconv.Atoi(strings.TrimSpace(*s.focusMinutes)); err == nil {
		if d := tracker.ClampFocusDuration(time.Duration(n) * time.Minute); d != s.focusLength {
			if err := s.store.SetFocusLength(d); err != nil {
				return err
			}
		}
	}
	if n, err := strconv.Atoi(strings.TrimSpace(*s.laneMinutes)); err == nil && n != int(s.laneBuffer/time.Minute) {
		if err := s.store.SetLaneBuffer(time.Duration(n) * time.Minute); err != nil {
			return err
		}
	}
	s.tracker.SetTheme(*s.theme)
	return nil
}

func (s settingsModel) view() string {
	w := s.width - 4
	title := titleStyle.Render("Settings")

	if s.formActive && s.form != nil {
		return activePanelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	theme := s.tracker.Theme()
	if theme == "" {
		theme = tracker.ThemeLight
	}

	rows := []string{title, ""}
	rows = append(rows, settingRow("Focus length", fmt.Sprintf("%d min", int(s.focusLength/time.Minute))+source(s.focusSaved)))
	rows = append(rows, settingRow("Lane buffer", formatBuffer(s.laneBuffer)+source(s.laneSaved)))
	rows = append(rows, settingRow("Theme", theme))
	lastSaved := "never"
	if !s.lastSaved.IsZero() {
		lastSaved = s.lastSaved.Local().Format("Jan 02 15:04:05")
	}
	rows = append(rows, settingRow("Last saved", lastSaved))
	if len(s.info) > 0 {
		rows = append(rows, "", mutedStyle.Render("From config file"))
		for _, l := range s.info {
			rows = append(rows, settingRow(l.Label, l.Value))
		}
	}
	rows = append(rows, "", mutedStyle.Render("Press enter to edit preferences"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func source(saved bool) string {
	if saved {
		return mutedStyle.Render("  (saved)")
	}
	return mutedStyle.Render("  (config)")
}

func formatBuffer(d time.Duration) string {
	if d%time.Minute == 0 {
		return fmt.Sprintf("%d min", int(d/time.Minute))
	}
	return d.String()
}

func settingRow(label, value string) string {
	return fmt.Sprintf("  %s %s", lipgloss.NewStyle().Width(24).Render(label), highlightStyle.Render(value))
}
