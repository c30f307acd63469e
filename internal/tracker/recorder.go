package tracker

import (
	"math"
	"time"
)

// NewSession builds a Session for [start, end]. Duration is whole seconds,
// rounded, and never negative.
func NewSession(start, end time.Time) Session {
	if end.Before(start) {
		end = start
	}
	secs := int64(math.Round(end.Sub(start).Seconds()))
	return Session{StartTime: start, EndTime: end, Duration: secs}
}

// RecordSubtaskSession appends the session and folds its duration into
// TimeSpent in one value.
func RecordSubtaskSession(s Subtask, start, end time.Time) Subtask {
	sess := NewSession(start, end)
	s = s.clone()
	s.Sessions = append(s.Sessions, sess)
	s.TimeSpent += sess.Duration
	return s
}

// recordFocusTime attributes elapsed seconds to the first subtask titled
// subtaskTitle. When no subtask carries that title the time still counts
// toward the task total but no session is attached.
func recordFocusTime(t Task, subtaskTitle string, start, end time.Time, elapsed int64) Task {
	t = t.clone()
	for i, s := range t.Subtasks {
		if s.Title == subtaskTitle {
			t.Subtasks[i] = RecordSubtaskSession(s, start, end)
			break
		}
	}
	t.TotalTimeSpent += elapsed
	return t
}

func floorSeconds(d time.Duration) int64 {
	if d < 0 {
		return 0
	}
	return int64(d / time.Second)
}
