package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/ascend/internal/suggest"
	"github.com/sadopc/ascend/internal/tracker"
)

const progressStep = 10

// pipelineRow is one selectable line: a task, or one of its subtasks.
type pipelineRow struct {
	task    tracker.Task
	subtask *tracker.Subtask
}

type pipelineModel struct {
	tracker   *tracker.Tracker
	suggester suggest.Suggester
	width     int
	height    int

	cursor int
	query  string
	sort   tracker.SortOption

	searching bool
	search    textinput.Model

	pickingWellness bool
	wellnessCursor  int

	suggesting string // task ID awaiting suggestions

	formActive bool
	form       *huh.Form
	formKind   string // "task", "subtask"
	formTaskID string

	// Form field pointers (survive value copies)
	formTitle *string
	formDesc  *string
}

func newPipelineModel(tr *tracker.Tracker, s suggest.Suggester) pipelineModel {
	ti := textinput.New()
	ti.Placeholder = "filter by title"
	ti.Prompt = "/ "
	ti.CharLimit = 64

	title, desc := "", ""
	return pipelineModel{
		tracker:   tr,
		suggester: s,
		sort:      tracker.SortNewest,
		search:    ti,
		formTitle: &title,
		formDesc:  &desc,
	}
}

func (p *pipelineModel) setSize(w, h int) {
	p.width = w
	p.height = h
	p.search.Width = max(10, w/3)
}

// capturing reports whether keystrokes belong to an input inside the view.
func (p pipelineModel) capturing() bool {
	return p.formActive || p.searching || p.pickingWellness
}

func (p pipelineModel) rows() []pipelineRow {
	var rows []pipelineRow
	for _, t := range p.tracker.Tasks(p.query, p.sort) {
		rows = append(rows, pipelineRow{task: t})
		for i := range t.Subtasks {
			rows = append(rows, pipelineRow{task: t, subtask: &t.Subtasks[i]})
		}
	}
	return rows
}

func (p pipelineModel) selected() (pipelineRow, bool) {
	rows := p.rows()
	if len(rows) == 0 {
		return pipelineRow{}, false
	}
	return rows[min(p.cursor, len(rows)-1)], true
}

func (p pipelineModel) update(msg tea.Msg) (pipelineModel, tea.Cmd) {
	if p.formActive && p.form != nil {
		return p.updateForm(msg)
	}

	switch msg := msg.(type) {
	case suggestionsMsg:
		p.suggesting = ""
		if len(msg.titles) == 0 {
			return p, status("No suggestions returned", true)
		}
		added := p.tracker.AddSubtasks(msg.taskID, msg.titles)
		return p, status(fmt.Sprintf("Added %d suggested subtasks", len(added)), false)

	case tea.KeyMsg:
		if p.searching {
			return p.updateSearch(msg)
		}
		if p.pickingWellness {
			return p.updateWellnessPicker(msg)
		}
		return p.updateList(msg)
	}
	return p, nil
}

func (p pipelineModel) updateList(msg tea.KeyMsg) (pipelineModel, tea.Cmd) {
	n := len(p.rows())
	switch {
	case key.Matches(msg, keys.Up):
		if p.cursor > 0 {
			p.cursor--
		}
	case key.Matches(msg, keys.Down):
		if p.cursor < n-1 {
			p.cursor++
		}
	case key.Matches(msg, keys.New):
		return p.showTaskForm()
	case key.Matches(msg, keys.Subtask):
		if row, ok := p.selected(); ok {
			return p.showSubtaskForm(row.task)
		}
	case key.Matches(msg, keys.Delete):
		return p.deleteSelected()
	case key.Matches(msg, keys.Toggle):
		if row, ok := p.selected(); ok {
			if row.subtask != nil {
				p.tracker.ToggleSubtask(row.task.ID, row.subtask.ID)
			} else {
				p.tracker.ToggleTaskCompletion(row.task.ID)
			}
		}
	case key.Matches(msg, keys.Increase):
		p.adjustSelected(progressStep)
	case key.Matches(msg, keys.Decrease):
		p.adjustSelected(-progressStep)
	case key.Matches(msg, keys.Focus), key.Matches(msg, keys.Enter):
		if row, ok := p.selected(); ok {
			req := focusRequestMsg{taskID: row.task.ID, subtaskTitle: focusTitle(row)}
			return p, func() tea.Msg { return req }
		}
	case key.Matches(msg, keys.Suggest):
		return p.requestSuggestions()
	case key.Matches(msg, keys.Search):
		p.searching = true
		p.search.SetValue(p.query)
		cmd := p.search.Focus()
		return p, cmd
	case key.Matches(msg, keys.Sort):
		p.sort = p.sort.Next()
		p.cursor = 0
	case key.Matches(msg, keys.Wellness):
		if p.tracker.Active().Any() {
			return p, status("Finish the current activity first", true)
		}
		p.pickingWellness = true
		p.wellnessCursor = 0
	}
	p.cursor = max(0, min(p.cursor, len(p.rows())-1))
	return p, nil
}

// focusTitle names the subtask a focus session is credited to. A task row
// targets its first open subtask, or the task itself when there is none.
func focusTitle(row pipelineRow) string {
	if row.subtask != nil {
		return row.subtask.Title
	}
	for _, s := range row.task.Subtasks {
		if !s.IsCompleted {
			return s.Title
		}
	}
	return row.task.Title
}

func (p pipelineModel) adjustSelected(delta int) {
	row, ok := p.selected()
	if !ok {
		return
	}
	if row.subtask != nil {
		p.tracker.SetSubtaskPercentage(row.task.ID, row.subtask.ID, row.subtask.EffectivePercentage()+delta)
		return
	}
	p.tracker.SetTaskPercentage(row.task.ID, row.task.Percentage+delta)
}

func (p pipelineModel) deleteSelected() (pipelineModel, tea.Cmd) {
	row, ok := p.selected()
	if !ok {
		return p, nil
	}
	if row.subtask != nil {
		p.tracker.DeleteSubtask(row.task.ID, row.subtask.ID)
		return p, status("Deleted subtask "+row.subtask.Title, false)
	}
	p.tracker.DeleteTask(row.task.ID)
	if p.cursor > 0 {
		p.cursor--
	}
	return p, status("Deleted task "+row.task.Title, false)
}

func (p pipelineModel) requestSuggestions() (pipelineModel, tea.Cmd) {
	row, ok := p.selected()
	if !ok {
		return p, nil
	}
	if !p.suggester.Enabled() {
		return p, status("Set GEMINI_API_KEY to enable AI subtasks", true)
	}
	if p.suggesting != "" {
		return p, nil
	}
	p.suggesting = row.task.ID
	s, task := p.suggester, row.task
	return p, tea.Batch(
		status("Asking for subtasks for "+task.Title+"...", false),
		func() tea.Msg {
			return suggestionsMsg{taskID: task.ID, titles: s.SuggestSubtasks(context.Background(), task.Title, task.Description)}
		},
	)
}

func (p pipelineModel) updateSearch(msg tea.KeyMsg) (pipelineModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Enter):
		p.searching = false
		p.search.Blur()
		return p, nil
	case key.Matches(msg, keys.Back):
		p.searching = false
		p.search.Blur()
		p.search.SetValue("")
		p.query = ""
		return p, nil
	}
	var cmd tea.Cmd
	p.search, cmd = p.search.Update(msg)
	p.query = p.search.Value()
	p.cursor = 0
	return p, cmd
}

func (p pipelineModel) updateWellnessPicker(msg tea.KeyMsg) (pipelineModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if p.wellnessCursor > 0 {
			p.wellnessCursor--
		}
	case key.Matches(msg, keys.Down):
		if p.wellnessCursor < len(tracker.WellnessTypes)-1 {
			p.wellnessCursor++
		}
	case key.Matches(msg, keys.Enter):
		p.pickingWellness = false
		typ := tracker.WellnessTypes[p.wellnessCursor]
		if !p.tracker.StartWellnessActivity(typ) {
			return p, status("Another activity is running", true)
		}
		return p, status(typ.Label()+" started", false)
	case key.Matches(msg, keys.Back):
		p.pickingWellness = false
	}
	return p, nil
}

func (p pipelineModel) showTaskForm() (pipelineModel, tea.Cmd) {
	*p.formTitle = ""
	*p.formDesc = ""
	p.formKind = "task"

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Task").Value(p.formTitle).Validate(requireText),
			huh.NewText().Title("Description").Lines(3).Value(p.formDesc),
		),
	).WithShowHelp(true).WithShowErrors(true)

	p.formActive = true
	return p, p.form.Init()
}

func (p pipelineModel) showSubtaskForm(task tracker.Task) (pipelineModel, tea.Cmd) {
	*p.formTitle = ""
	p.formKind = "subtask"
	p.formTaskID = task.ID

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Subtask for " + task.Title).Value(p.formTitle).Validate(requireText),
		),
	).WithShowHelp(true).WithShowErrors(true)

	p.formActive = true
	return p, p.form.Init()
}

func requireText(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("required")
	}
	return nil
}

func (p pipelineModel) updateForm(msg tea.Msg) (pipelineModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			p.formActive = false
			p.form = nil
			return p, nil
		}
	}

	form, cmd := p.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		p.form = f
	}

	if p.form.State == huh.StateCompleted {
		p.formActive = false
		return p.submitForm()
	}
	return p, cmd
}

func (p pipelineModel) submitForm() (pipelineModel, tea.Cmd) {
	switch p.formKind {
	case "task":
		if _, ok := p.tracker.AddTask(*p.formTitle, *p.formDesc); ok {
			p.cursor = 0
			return p, status("Task added", false)
		}
	case "subtask":
		if _, ok := p.tracker.AddSubtask(p.formTaskID, *p.formTitle); ok {
			return p, status("Subtask added", false)
		}
	}
	return p, nil
}

func status(text string, isError bool) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text, isError: isError} }
}

// --- View ---

func (p pipelineModel) view() string {
	if p.width < 20 {
		return "Terminal too small"
	}

	if p.formActive && p.form != nil {
		title := titleStyle.Render("New Task")
		if p.formKind == "subtask" {
			title = titleStyle.Render("New Subtask")
		}
		return activePanelStyle.Width(p.width - 4).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", p.form.View()),
		)
	}

	if p.width < 90 {
		w := p.width - 4
		return lipgloss.JoinVertical(lipgloss.Left, p.renderSidebar(w), p.renderTaskList(w))
	}
	sideW := 34
	listW := p.width - sideW - 6
	return lipgloss.JoinHorizontal(lipgloss.Top, p.renderTaskList(listW), " ", p.renderSidebar(sideW))
}

func (p pipelineModel) renderTaskList(w int) string {
	title := titleStyle.Render("Pipeline")
	meta := mutedStyle.Render(fmt.Sprintf("  sort: %s", p.sort))
	if p.query != "" && !p.searching {
		meta += mutedStyle.Render(fmt.Sprintf("  filter: %q", p.query))
	}

	var lines []string
	lines = append(lines, title+meta)
	if p.searching {
		lines = append(lines, p.search.View())
	}
	lines = append(lines, "")

	rows := p.rows()
	if len(rows) == 0 {
		hint := "No tasks yet. Press n to add one."
		if p.query != "" {
			hint = "No tasks match the filter."
		}
		lines = append(lines, mutedStyle.Render(hint))
		return panelStyle.Width(w).Render(strings.Join(lines, "\n"))
	}

	barW := 10
	nameW := max(10, w-barW-30)
	for i, row := range rows {
		cursor := "  "
		style := normalItemStyle
		if i == p.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		if row.subtask == nil {
			lines = append(lines, p.renderTaskRow(row.task, cursor, style, nameW, barW))
			continue
		}
		lines = append(lines, renderSubtaskRow(*row.subtask, cursor, style, nameW))
	}

	lines = append(lines, "")
	lines = append(lines, mutedStyle.Render("n: task  a: subtask  space: done  +/-: progress  f: focus  g: ai  /: search  o: sort"))
	return panelStyle.Width(w).Render(strings.Join(lines, "\n"))
}

func (p pipelineModel) renderTaskRow(t tracker.Task, cursor string, style lipgloss.Style, nameW, barW int) string {
	check := "[ ]"
	if t.IsCompleted {
		check = successStyle.Render("[✓]")
	}
	name := truncate(t.Title, nameW)
	bar := highlightStyle.Render(progressBar(t.Percentage, barW))
	line := fmt.Sprintf("%s%s %-*s %s %3d%%  %s", cursor, check, nameW, name, bar, t.Percentage, formatSeconds(t.TotalTimeSpent))
	if p.suggesting == t.ID {
		line += warningStyle.Render("  ✦ thinking")
	}
	return style.Render(line)
}

func renderSubtaskRow(s tracker.Subtask, cursor string, style lipgloss.Style, nameW int) string {
	check := "○"
	if s.IsCompleted {
		check = successStyle.Render("●")
	}
	name := truncate(s.Title, nameW-2)
	line := fmt.Sprintf("%s   %s %-*s %3d%%", cursor, check, nameW-2, name, s.EffectivePercentage())
	if s.TimeSpent > 0 {
		line += mutedStyle.Render("  " + formatSeconds(s.TimeSpent))
	}
	return style.Render(line)
}

func (p pipelineModel) renderSidebar(w int) string {
	st := p.tracker.Stats()
	overall := int(st.OverallScore + 0.5)

	var rows []string
	rows = append(rows, titleStyle.Render("Ascent"))
	rows = append(rows, highlightStyle.Render(progressBar(overall, max(4, w-12)))+fmt.Sprintf(" %3d%%", overall))
	rows = append(rows, "")
	rows = append(rows, fmt.Sprintf("Tasks      %d/%d done", st.CompletedTasks, st.TotalTasks))
	rows = append(rows, fmt.Sprintf("Subtasks   %d/%d (%d%%)", st.CompletedSubtasks, st.TotalSubtasks, int(st.SubtaskIntegrity*100+0.5)))
	rows = append(rows, fmt.Sprintf("Focus time %s", formatHours(st.TotalTimeSpent)))
	rows = append(rows, "")
	rows = append(rows, titleStyle.Render("Wellness"))

	if p.pickingWellness {
		for i, typ := range tracker.WellnessTypes {
			cursor := "  "
			style := normalItemStyle
			if i == p.wellnessCursor {
				cursor = "> "
				style = selectedItemStyle
			}
			dot := lipgloss.NewStyle().Foreground(entryColor(tracker.EntryActivity, typ)).Render("●")
			rows = append(rows, style.Render(cursor)+dot+" "+style.Render(typ.Label()))
		}
		rows = append(rows, mutedStyle.Render("enter: start  esc: cancel"))
	} else {
		active := p.tracker.Active()
		switch {
		case active.Wellness != nil:
			rows = append(rows, successStyle.Render("● "+active.Wellness.Type.Label()+" in progress"))
			rows = append(rows, mutedStyle.Render("x: stop"))
		case active.Focus != nil:
			rows = append(rows, mutedStyle.Render("Focusing on "+active.Focus.SubtaskTitle))
		default:
			rows = append(rows, mutedStyle.Render("w: food, nap, rest, break"))
		}
	}

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
