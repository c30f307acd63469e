package tracker

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(h, m int) time.Time {
	return time.Date(2026, 10, 16, h, m, 0, 0, time.UTC)
}

func session(start time.Time, mins int) Session {
	return NewSession(start, start.Add(time.Duration(mins)*time.Minute))
}

func TestDayBounds(t *testing.T) {
	start, end := DayBounds(at(15, 30))
	assert.Equal(t, at(0, 0), start)
	assert.Equal(t, at(0, 0).AddDate(0, 0, 1), end)
}

func TestBuildTimelineFiltersToDay(t *testing.T) {
	tasks := []Task{{
		Title: "Write",
		Subtasks: []Subtask{{Title: "Draft", Sessions: []Session{
			session(at(0, 0).Add(-time.Hour), 30), // yesterday
			session(at(9, 0), 30),
			session(at(0, 0).AddDate(0, 0, 1), 30), // tomorrow midnight, excluded
		}}},
	}}
	acts := []ActivitySession{
		{Type: ActivityBreak, StartTime: at(23, 50), EndTime: at(23, 50).Add(20 * time.Minute), Duration: 1200},
	}

	tl := BuildTimeline(tasks, acts, at(12, 0), DefaultLaneBuffer)
	require.Len(t, tl.Entries, 2)
	assert.Equal(t, "Write", tl.Entries[0].Label)
	assert.Equal(t, "Draft", tl.Entries[0].Detail)
	assert.Equal(t, EntryFocus, tl.Entries[0].Kind)
	assert.Equal(t, "Break", tl.Entries[1].Label)
	assert.Equal(t, EntryActivity, tl.Entries[1].Kind)
}

func TestBuildTimelineSortsMixedEntries(t *testing.T) {
	tasks := []Task{{Title: "T", Subtasks: []Subtask{{Sessions: []Session{session(at(11, 0), 10), session(at(8, 0), 10)}}}}}
	acts := []ActivitySession{{Type: ActivityDrift, StartTime: at(9, 0), EndTime: at(9, 30), Duration: 1800}}

	tl := BuildTimeline(tasks, acts, at(12, 0), 0)
	require.Len(t, tl.Entries, 3)
	assert.Equal(t, at(8, 0), tl.Entries[0].Start)
	assert.Equal(t, "Drift", tl.Entries[1].Label)
	assert.Equal(t, at(11, 0), tl.Entries[2].Start)
	assert.Equal(t, 1, tl.Lanes)
}

func TestLaneAssignment(t *testing.T) {
	entries := []TimelineEntry{
		{Start: at(9, 0), End: at(10, 0)},
		{Start: at(9, 30), End: at(9, 45)},  // overlaps lane 0
		{Start: at(9, 50), End: at(10, 5)},  // lane 1 free since 9:45
		{Start: at(10, 0), End: at(10, 30)}, // touches lane 0 end, zero buffer
	}
	lanes := assignLanes(entries, 0)
	assert.Equal(t, 2, lanes)
	assert.Equal(t, []int{0, 1, 1, 0}, []int{entries[0].Lane, entries[1].Lane, entries[2].Lane, entries[3].Lane})
}

func TestLaneAssignmentBuffer(t *testing.T) {
	entries := []TimelineEntry{
		{Start: at(9, 0), End: at(10, 0)},
		{Start: at(10, 1), End: at(10, 30)},
	}
	assert.Equal(t, 2, assignLanes(entries, 5*time.Minute), "within buffer opens a new lane")

	entries = []TimelineEntry{
		{Start: at(9, 0), End: at(10, 0)},
		{Start: at(10, 5), End: at(10, 30)},
	}
	assert.Equal(t, 1, assignLanes(entries, 5*time.Minute), "exactly at buffer reuses the lane")
}

func TestLanesNeverOverlap(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for run := 0; run < 50; run++ {
		var acts []ActivitySession
		for i := 0; i < 40; i++ {
			start := at(0, 0).Add(time.Duration(rng.Intn(24*60)) * time.Minute)
			end := start.Add(time.Duration(1+rng.Intn(180)) * time.Minute)
			acts = append(acts, ActivitySession{Type: ActivityRest, StartTime: start, EndTime: end})
		}
		buffer := time.Duration(rng.Intn(6)) * time.Minute
		tl := BuildTimeline(nil, acts, at(12, 0), buffer)

		byLane := map[int][]TimelineEntry{}
		for _, e := range tl.Entries {
			require.Less(t, e.Lane, tl.Lanes)
			byLane[e.Lane] = append(byLane[e.Lane], e)
		}
		for lane, es := range byLane {
			for i := 0; i < len(es); i++ {
				for j := i + 1; j < len(es); j++ {
					overlap := es[i].Start.Before(es[j].End) && es[j].Start.Before(es[i].End)
					assert.False(t, overlap, "run %d lane %d: %v-%v vs %v-%v", run, lane, es[i].Start, es[i].End, es[j].Start, es[j].End)
				}
			}
		}
	}
}

func TestLabelTotals(t *testing.T) {
	tasks := []Task{
		{Title: "Write", Subtasks: []Subtask{
			{Title: "a", Sessions: []Session{session(at(9, 0), 30)}},
			{Title: "b", Sessions: []Session{session(at(10, 0), 15)}},
		}},
		{Title: "Read", Subtasks: []Subtask{{Sessions: []Session{session(at(11, 0), 60)}}}},
	}
	acts := []ActivitySession{
		{Type: ActivityFood, StartTime: at(12, 0), EndTime: at(12, 10), Duration: 600},
		{Type: ActivityFood, StartTime: at(13, 0), EndTime: at(13, 5), Duration: 300},
	}

	tl := BuildTimeline(tasks, acts, at(12, 0), DefaultLaneBuffer)
	require.Len(t, tl.Totals, 3)
	assert.Equal(t, LabelTotal{Label: "Read", Kind: EntryFocus, Duration: 3600, Count: 1}, tl.Totals[0])
	assert.Equal(t, LabelTotal{Label: "Write", Kind: EntryFocus, Duration: 2700, Count: 2}, tl.Totals[1])
	assert.Equal(t, LabelTotal{Label: "Food", Kind: EntryActivity, Activity: ActivityFood, Duration: 900, Count: 2}, tl.Totals[2])
}

func TestTimelineEmpty(t *testing.T) {
	tl := BuildTimeline(nil, nil, at(12, 0), DefaultLaneBuffer)
	assert.Empty(t, tl.Entries)
	assert.Zero(t, tl.Lanes)
	assert.Empty(t, tl.Totals)
}

func TestTrackerTimelineIncludesDriftAndFocus(t *testing.T) {
	tr, clk := newTestTracker(t, focusDoc())
	clk.Advance(10 * time.Minute)
	require.True(t, tr.StartFocusTimer("t1", "A"))
	clk.Advance(25 * time.Minute)
	require.True(t, tr.StopFocusTimer(25 * 60))

	tl := tr.Timeline(clk.Now(), DefaultLaneBuffer)
	require.Len(t, tl.Entries, 2)
	assert.Equal(t, "Drift", tl.Entries[0].Label)
	assert.Equal(t, "Write", tl.Entries[1].Label)
	assert.Equal(t, int64(1500), tl.Entries[1].Duration)
}

func TestActivityTypeLabel(t *testing.T) {
	assert.Equal(t, "Nap", ActivityNap.Label())
	assert.Equal(t, "", ActivityType("").Label())
	assert.True(t, ActivityBreak.Wellness())
	assert.False(t, ActivityDrift.Wellness())
}

func TestSortOptionNext(t *testing.T) {
	assert.Equal(t, SortOldest, SortNewest.Next())
	assert.Equal(t, SortProgress, SortOldest.Next())
	assert.Equal(t, SortNewest, SortProgress.Next())
	assert.Equal(t, SortNewest, SortOption("bogus").Next())
}

func TestFilterTasksByProgress(t *testing.T) {
	tasks := []Task{{Title: "a", Percentage: 10}, {Title: "b", Percentage: 90}, {Title: "c", Percentage: 50}}
	got := FilterTasks(tasks, "", SortProgress)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"b", "c", "a"}, []string{got[0].Title, got[1].Title, got[2].Title})
	assert.Equal(t, "a", tasks[0].Title, "input not reordered")
}
