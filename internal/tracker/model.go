package tracker

import (
	"strings"
	"time"
)

type ActivityType string

const (
	ActivityFood  ActivityType = "food"
	ActivityNap   ActivityType = "nap"
	ActivityRest  ActivityType = "rest"
	ActivityBreak ActivityType = "break"
	ActivityDrift ActivityType = "drift"
)

// WellnessTypes lists the activity kinds a user can start. Drift is
// synthetic and only ever produced by the drift detector.
var WellnessTypes = []ActivityType{ActivityFood, ActivityNap, ActivityRest, ActivityBreak}

// Wellness reports whether t is a user-startable activity kind.
func (t ActivityType) Wellness() bool {
	for _, w := range WellnessTypes {
		if t == w {
			return true
		}
	}
	return false
}

// Label is the capitalized display name, e.g. "Break".
func (t ActivityType) Label() string {
	if t == "" {
		return ""
	}
	s := string(t)
	return strings.ToUpper(s[:1]) + s[1:]
}

// Session is one completed focus-timer run attributed to a subtask.
type Session struct {
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	Duration  int64     `json:"duration"` // seconds
}

type Subtask struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	IsCompleted bool      `json:"isCompleted"`
	Percentage  *int      `json:"percentage,omitempty"` // nil derives from IsCompleted
	TimeSpent   int64     `json:"timeSpent"`            // seconds
	Sessions    []Session `json:"sessions,omitempty"`
}

// EffectivePercentage is the explicit percentage when set, otherwise 100
// for a completed subtask and 0 for an open one.
func (s Subtask) EffectivePercentage() int {
	if s.Percentage != nil {
		return *s.Percentage
	}
	if s.IsCompleted {
		return 100
	}
	return 0
}

type Task struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Percentage     int       `json:"percentage"`
	IsCompleted    bool      `json:"isCompleted"`
	Subtasks       []Subtask `json:"subtasks"`
	CreatedAt      time.Time `json:"createdAt"`
	TotalTimeSpent int64     `json:"totalTimeSpent"` // seconds
}

// ActivitySession is a wellness or drift interval in the activity log.
type ActivitySession struct {
	ID        string       `json:"id"`
	Type      ActivityType `json:"type"`
	StartTime time.Time    `json:"startTime"`
	EndTime   time.Time    `json:"endTime"`
	Duration  int64        `json:"duration"` // seconds
}

// Display themes stored in Document.Theme. Empty means light.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Document is the whole persisted state.
type Document struct {
	Tasks      []Task            `json:"tasks"`
	Activities []ActivitySession `json:"activities"`
	Theme      string            `json:"theme,omitempty"`
}

// Clone returns a deep copy so readers never share slices with the store.
func (d Document) Clone() Document {
	out := Document{Theme: d.Theme}
	if d.Tasks != nil {
		out.Tasks = make([]Task, len(d.Tasks))
		for i, t := range d.Tasks {
			out.Tasks[i] = t.clone()
		}
	}
	if d.Activities != nil {
		out.Activities = make([]ActivitySession, len(d.Activities))
		copy(out.Activities, d.Activities)
	}
	return out
}

func (t Task) clone() Task {
	if t.Subtasks != nil {
		subs := make([]Subtask, len(t.Subtasks))
		for i, s := range t.Subtasks {
			subs[i] = s.clone()
		}
		t.Subtasks = subs
	}
	return t
}

func (s Subtask) clone() Subtask {
	if s.Percentage != nil {
		p := *s.Percentage
		s.Percentage = &p
	}
	if s.Sessions != nil {
		sessions := make([]Session, len(s.Sessions))
		copy(sessions, s.Sessions)
		s.Sessions = sessions
	}
	return s
}
