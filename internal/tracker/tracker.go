package tracker

import (
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/sadopc/ascend/internal/clock"
)

// Persister receives a snapshot after every committed transition.
type Persister interface {
	Save(Document) error
}

// Subscriber is notified with a deep copy of the document after each
// transition.
type Subscriber func(Document)

// Tracker is the single process-wide state container. All transitions run
// behind one lock so drift bookkeeping and gate state never interleave.
type Tracker struct {
	mu     sync.Mutex
	doc    Document
	gate   gate
	drift  *DriftDetector
	cfg    DriftConfig
	clock  clock.Clock
	logger *slog.Logger
	newID  func() string

	persister   Persister
	subscribers []Subscriber
}

type Option func(*Tracker)

func WithClock(c clock.Clock) Option {
	return func(t *Tracker) { t.clock = c }
}

func WithLogger(l *slog.Logger) Option {
	return func(t *Tracker) { t.logger = l }
}

func WithDriftConfig(cfg DriftConfig) Option {
	return func(t *Tracker) { t.cfg = cfg }
}

func WithPersister(p Persister) Option {
	return func(t *Tracker) { t.persister = p }
}

// WithIDGenerator replaces the uuid generator, mainly for tests.
func WithIDGenerator(fn func() string) Option {
	return func(t *Tracker) { t.newID = fn }
}

// New wraps doc in a Tracker. The drift window starts at the clock's now.
func New(doc Document, opts ...Option) *Tracker {
	t := &Tracker{
		doc:    doc.Clone(),
		clock:  clock.Real{},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		newID:  uuid.NewString,
		cfg:    DefaultDriftConfig(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.drift = NewDriftDetector(t.cfg, t.clock.Now())
	return t
}

// Subscribe registers fn for post-transition snapshots. fn runs under the
// tracker lock and must not call back into the Tracker.
func (t *Tracker) Subscribe(fn Subscriber) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.subscribers = append(t.subscribers, fn)
}

// commit publishes the current document. Caller holds t.mu.
func (t *Tracker) commit(op string) {
	t.logger.Debug("transition", "op", op, "tasks", len(t.doc.Tasks), "activities", len(t.doc.Activities))
	if t.persister == nil && len(t.subscribers) == 0 {
		return
	}
	snap := t.doc.Clone()
	if t.persister != nil {
		if err := t.persister.Save(snap); err != nil {
			// The next transition saves the whole document again.
			t.logger.Warn("persist document", "op", op, "err", err)
		}
	}
	for _, fn := range t.subscribers {
		fn(snap.Clone())
	}
}

func (t *Tracker) Snapshot() Document {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.doc.Clone()
}

func (t *Tracker) Task(id string) (Task, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	idx := t.taskIndex(id)
	if idx < 0 {
		return Task{}, false
	}
	return t.doc.Tasks[idx].clone(), true
}

func (t *Tracker) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return ComputeStats(t.doc.Tasks)
}

func (t *Tracker) Theme() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.doc.Theme
}

func (t *Tracker) SetTheme(theme string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.doc.Theme == theme {
		return
	}
	t.doc.Theme = theme
	t.commit("set_theme")
}

func (t *Tracker) taskIndex(id string) int {
	for i, task := range t.doc.Tasks {
		if task.ID == id {
			return i
		}
	}
	return -1
}

// replaceTask swaps in a new task value. Caller holds t.mu.
func (t *Tracker) replaceTask(idx int, task Task) {
	tasks := make([]Task, len(t.doc.Tasks))
	copy(tasks, t.doc.Tasks)
	tasks[idx] = task
	t.doc.Tasks = tasks
}

// AddTask prepends a new empty task. Blank titles are ignored.
func (t *Tracker) AddTask(title, description string) (Task, bool) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Task{}, false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	task := Task{
		ID:          t.newID(),
		Title:       title,
		Description: strings.TrimSpace(description),
		Subtasks:    []Subtask{},
		CreatedAt:   t.clock.Now(),
	}
	t.doc.Tasks = append([]Task{task}, t.doc.Tasks...)
	t.commit("add_task")
	return task.clone(), true
}

// DeleteTask removes the task with its subtasks and sessions.
func (t *Tracker) DeleteTask(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	idx := t.taskIndex(id)
	if idx < 0 {
		return false
	}
	tasks := make([]Task, 0, len(t.doc.Tasks)-1)
	tasks = append(tasks, t.doc.Tasks[:idx]...)
	tasks = append(tasks, t.doc.Tasks[idx+1:]...)
	t.doc.Tasks = tasks
	t.commit("delete_task")
	return true
}

// AddSubtask appends one open subtask at 0%.
func (t *Tracker) AddSubtask(taskID, title string) (Subtask, bool) {
	subs := t.AddSubtasks(taskID, []string{title})
	if len(subs) == 0 {
		return Subtask{}, false
	}
	return subs[0], true
}

// AddSubtasks appends open subtasks, skipping blank titles, and recomputes
// the task's percentage.
func (t *Tracker) AddSubtasks(taskID string, titles []string) []Subtask {
	t.mu.Lock()
	defer t.mu.Unlock()
	idx := t.taskIndex(taskID)
	if idx < 0 {
		return nil
	}
	task := t.doc.Tasks[idx].clone()
	var added []Subtask
	for _, title := range titles {
		title = strings.TrimSpace(title)
		if title == "" {
			continue
		}
		sub := Subtask{ID: t.newID(), Title: title}
		task.Subtasks = append(task.Subtasks, sub)
		added = append(added, sub)
	}
	if len(added) == 0 {
		return nil
	}
	t.replaceTask(idx, Recompute(task))
	t.commit("add_subtasks")
	return added
}

func (t *Tracker) DeleteSubtask(taskID, subtaskID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	idx := t.taskIndex(taskID)
	if idx < 0 {
		return false
	}
	task := t.doc.Tasks[idx].clone()
	si := subtaskIndex(task, subtaskID)
	if si < 0 {
		return false
	}
	task.Subtasks = append(task.Subtasks[:si], task.Subtasks[si+1:]...)
	t.replaceTask(idx, Recompute(task))
	t.commit("delete_subtask")
	return true
}

func (t *Tracker) ToggleSubtask(taskID, subtaskID string) bool {
	return t.mutateTask(taskID, "toggle_subtask", func(task Task) Task {
		return ToggleSubtask(task, subtaskID)
	})
}

func (t *Tracker) SetSubtaskPercentage(taskID, subtaskID string, pct int) bool {
	return t.mutateTask(taskID, "set_subtask_percentage", func(task Task) Task {
		return SetSubtaskPercentage(task, subtaskID, pct)
	})
}

// SetTaskPercentage is the manual override path.
func (t *Tracker) SetTaskPercentage(taskID string, pct int) bool {
	return t.mutateTask(taskID, "set_task_percentage", func(task Task) Task {
		return SetTaskPercentage(task, pct)
	})
}

func (t *Tracker) SetTaskCompletion(taskID string, complete bool) bool {
	return t.mutateTask(taskID, "set_task_completion", func(task Task) Task {
		return SetTaskCompletion(task, complete)
	})
}

func (t *Tracker) ToggleTaskCompletion(taskID string) bool {
	return t.mutateTask(taskID, "toggle_task_completion", func(task Task) Task {
		return SetTaskCompletion(task, !task.IsCompleted)
	})
}

func (t *Tracker) mutateTask(taskID, op string, fn func(Task) Task) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	idx := t.taskIndex(taskID)
	if idx < 0 {
		return false
	}
	t.replaceTask(idx, fn(t.doc.Tasks[idx].clone()))
	t.commit(op)
	return true
}
