package tracker

import (
	"sort"
	"strings"
)

type SortOption string

const (
	SortNewest   SortOption = "newest"
	SortOldest   SortOption = "oldest"
	SortProgress SortOption = "progress"
)

var SortOptions = []SortOption{SortNewest, SortOldest, SortProgress}

// Next cycles through SortOptions.
func (o SortOption) Next() SortOption {
	for i, s := range SortOptions {
		if s == o {
			return SortOptions[(i+1)%len(SortOptions)]
		}
	}
	return SortNewest
}

// FilterTasks keeps tasks whose title contains query (case-insensitive)
// and orders them by opt. The input slice is not modified.
func FilterTasks(tasks []Task, query string, opt SortOption) []Task {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if q == "" || strings.Contains(strings.ToLower(t.Title), q) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		switch opt {
		case SortOldest:
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		case SortProgress:
			return out[i].Percentage > out[j].Percentage
		default:
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
	})
	return out
}

func (t *Tracker) Tasks(query string, opt SortOption) []Task {
	return FilterTasks(t.Snapshot().Tasks, query, opt)
}
