package tracker

import "math"

// roundPercent rounds half up, matching how the percentages were
// historically displayed.
func roundPercent(v float64) int {
	return int(math.Floor(v + 0.5))
}

func clampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// SubtaskPercentage is the mean effective percentage of subtasks, rounded.
// ok is false when there are no subtasks to derive from.
func SubtaskPercentage(subtasks []Subtask) (pct int, ok bool) {
	if len(subtasks) == 0 {
		return 0, false
	}
	sum := 0
	for _, s := range subtasks {
		sum += s.EffectivePercentage()
	}
	return roundPercent(float64(sum) / float64(len(subtasks))), true
}

// Recompute derives percentage and completion from subtasks. A task with no
// subtasks keeps its own percentage; only IsCompleted is re-synced.
func Recompute(t Task) Task {
	if pct, ok := SubtaskPercentage(t.Subtasks); ok {
		t.Percentage = pct
	}
	t.Percentage = clampPercent(t.Percentage)
	t.IsCompleted = t.Percentage == 100
	return t
}

// SetTaskCompletion cascades to every subtask: complete forces 100%,
// incomplete resets to 0%. Prior partial progress is not restored.
func SetTaskCompletion(t Task, complete bool) Task {
	pct := 0
	if complete {
		pct = 100
	}
	subs := make([]Subtask, len(t.Subtasks))
	for i, s := range t.Subtasks {
		s = s.clone()
		p := pct
		s.Percentage = &p
		s.IsCompleted = complete
		subs[i] = s
	}
	t.Subtasks = subs
	t.Percentage = pct
	t.IsCompleted = complete
	return t
}

// SetTaskPercentage is the manual override slider. It bypasses subtask
// derivation but still keeps IsCompleted in step.
func SetTaskPercentage(t Task, pct int) Task {
	t.Percentage = clampPercent(pct)
	t.IsCompleted = t.Percentage == 100
	return t
}

// ToggleSubtask flips a subtask's completion and drops any explicit
// percentage so the subtask reads as exactly 0 or 100.
func ToggleSubtask(t Task, subtaskID string) Task {
	return updateSubtask(t, subtaskID, func(s Subtask) Subtask {
		s.IsCompleted = !s.IsCompleted
		s.Percentage = nil
		return s
	})
}

func SetSubtaskPercentage(t Task, subtaskID string, pct int) Task {
	return updateSubtask(t, subtaskID, func(s Subtask) Subtask {
		p := clampPercent(pct)
		s.Percentage = &p
		s.IsCompleted = p == 100
		return s
	})
}

func updateSubtask(t Task, subtaskID string, fn func(Subtask) Subtask) Task {
	idx := subtaskIndex(t, subtaskID)
	if idx < 0 {
		return t
	}
	subs := make([]Subtask, len(t.Subtasks))
	copy(subs, t.Subtasks)
	subs[idx] = fn(subs[idx].clone())
	t.Subtasks = subs
	return Recompute(t)
}

func subtaskIndex(t Task, subtaskID string) int {
	for i, s := range t.Subtasks {
		if s.ID == subtaskID {
			return i
		}
	}
	return -1
}

// Stats is the whole-pipeline summary.
type Stats struct {
	OverallScore      float64 // mean task percentage
	TotalTasks        int
	CompletedTasks    int
	TotalSubtasks     int
	CompletedSubtasks int
	SubtaskIntegrity  float64 // completed / total subtasks, 0..1
	TotalTimeSpent    int64
}

func ComputeStats(tasks []Task) Stats {
	var st Stats
	st.TotalTasks = len(tasks)
	if st.TotalTasks == 0 {
		return st
	}
	sum := 0
	for _, t := range tasks {
		sum += t.Percentage
		st.TotalTimeSpent += t.TotalTimeSpent
		if t.IsCompleted {
			st.CompletedTasks++
		}
		for _, s := range t.Subtasks {
			st.TotalSubtasks++
			if s.IsCompleted {
				st.CompletedSubtasks++
			}
		}
	}
	st.OverallScore = float64(sum) / float64(st.TotalTasks)
	if st.TotalSubtasks > 0 {
		st.SubtaskIntegrity = float64(st.CompletedSubtasks) / float64(st.TotalSubtasks)
	}
	return st
}
