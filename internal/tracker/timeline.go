package tracker

import (
	"sort"
	"time"
)

// DefaultLaneBuffer separates neighbouring entries within a lane.
const DefaultLaneBuffer = time.Minute

type EntryKind int

const (
	EntryFocus EntryKind = iota
	EntryActivity
)

func (k EntryKind) String() string {
	if k == EntryActivity {
		return "activity"
	}
	return "focus"
}

type TimelineEntry struct {
	Kind     EntryKind
	Label    string // task title or capitalized activity type
	Detail   string // subtask title for focus entries
	Activity ActivityType
	Start    time.Time
	End      time.Time
	Duration int64 // seconds
	Lane     int
}

type LabelTotal struct {
	Label    string
	Kind     EntryKind
	Activity ActivityType
	Duration int64
	Count    int
}

// Timeline is one local calendar day of focus sessions and activities.
type Timeline struct {
	DayStart time.Time
	DayEnd   time.Time
	Entries  []TimelineEntry
	Lanes    int
	Totals   []LabelTotal
}

// DayBounds returns local midnight of day and the following midnight.
func DayBounds(day time.Time) (time.Time, time.Time) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return start, start.AddDate(0, 0, 1)
}

// BuildTimeline collects entries starting within day, orders them by start
// time and packs them greedily into non-overlapping lanes.
func BuildTimeline(tasks []Task, activities []ActivitySession, day time.Time, laneBuffer time.Duration) Timeline {
	start, end := DayBounds(day)
	tl := Timeline{DayStart: start, DayEnd: end}
	inDay := func(t time.Time) bool { return !t.Before(start) && t.Before(end) }

	for _, task := range tasks {
		for _, sub := range task.Subtasks {
			for _, sess := range sub.Sessions {
				if !inDay(sess.StartTime) {
					continue
				}
				tl.Entries = append(tl.Entries, TimelineEntry{
					Kind:     EntryFocus,
					Label:    task.Title,
					Detail:   sub.Title,
					Start:    sess.StartTime,
					End:      sess.EndTime,
					Duration: sess.Duration,
				})
			}
		}
	}
	for _, a := range activities {
		if !inDay(a.StartTime) {
			continue
		}
		tl.Entries = append(tl.Entries, TimelineEntry{
			Kind:     EntryActivity,
			Label:    a.Type.Label(),
			Activity: a.Type,
			Start:    a.StartTime,
			End:      a.EndTime,
			Duration: a.Duration,
		})
	}

	sort.SliceStable(tl.Entries, func(i, j int) bool {
		return tl.Entries[i].Start.Before(tl.Entries[j].Start)
	})
	tl.Lanes = assignLanes(tl.Entries, laneBuffer)
	tl.Totals = labelTotals(tl.Entries)
	return tl
}

// assignLanes places each entry in the first lane whose last end is at or
// before the entry's start minus buffer. Entries must be sorted by start.
func assignLanes(entries []TimelineEntry, buffer time.Duration) int {
	if buffer < 0 {
		buffer = 0
	}
	var laneEnds []time.Time
	for i := range entries {
		e := &entries[i]
		lane := -1
		for l, laneEnd := range laneEnds {
			if !laneEnd.After(e.Start.Add(-buffer)) {
				lane = l
				break
			}
		}
		if lane < 0 {
			laneEnds = append(laneEnds, time.Time{})
			lane = len(laneEnds) - 1
		}
		e.Lane = lane
		end := e.End
		if end.Before(e.Start) {
			end = e.Start
		}
		laneEnds[lane] = end
	}
	return len(laneEnds)
}

func labelTotals(entries []TimelineEntry) []LabelTotal {
	idx := make(map[string]int)
	var totals []LabelTotal
	for _, e := range entries {
		i, ok := idx[e.Label]
		if !ok {
			i = len(totals)
			idx[e.Label] = i
			totals = append(totals, LabelTotal{Label: e.Label, Kind: e.Kind, Activity: e.Activity})
		}
		totals[i].Duration += e.Duration
		totals[i].Count++
	}
	sort.SliceStable(totals, func(i, j int) bool {
		return totals[i].Duration > totals[j].Duration
	})
	return totals
}

func (t *Tracker) Timeline(day time.Time, laneBuffer time.Duration) Timeline {
	t.mu.Lock()
	defer t.mu.Unlock()
	return BuildTimeline(t.doc.Tasks, t.doc.Activities, day, laneBuffer)
}
