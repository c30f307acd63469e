package tracker

import "time"

// FocusTarget identifies the subtask a focus timer is attributed to.
type FocusTarget struct {
	TaskID       string
	SubtaskTitle string
	StartedAt    time.Time
}

// ActiveWellness is a running wellness activity.
type ActiveWellness struct {
	Type      ActivityType
	StartTime time.Time
}

// gate holds the one foreground activity. At most one field is non-nil.
type gate struct {
	focus    *FocusTarget
	wellness *ActiveWellness
}

func (g gate) active() bool { return g.focus != nil || g.wellness != nil }

// ActiveState is a read-only view of the gate.
type ActiveState struct {
	Focus    *FocusTarget
	Wellness *ActiveWellness
}

func (a ActiveState) Any() bool { return a.Focus != nil || a.Wellness != nil }

func (t *Tracker) Active() ActiveState {
	t.mu.Lock()
	defer t.mu.Unlock()
	var a ActiveState
	if t.gate.focus != nil {
		f := *t.gate.focus
		a.Focus = &f
	}
	if t.gate.wellness != nil {
		w := *t.gate.wellness
		a.Wellness = &w
	}
	return a
}

// StartFocusTimer makes the focus timer for (taskID, subtaskTitle) the
// active activity. It is a no-op while any activity runs or when the task
// does not exist.
func (t *Tracker) StartFocusTimer(taskID, subtaskTitle string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.gate.active() || t.taskIndex(taskID) < 0 {
		return false
	}
	now := t.clock.Now()
	drifted := t.captureDrift(now)
	t.gate.focus = &FocusTarget{TaskID: taskID, SubtaskTitle: subtaskTitle, StartedAt: now}
	t.logger.Info("focus started", "task", taskID, "subtask", subtaskTitle)
	if drifted {
		t.commit("start_focus")
	}
	return true
}

// StartWellnessActivity starts a wellness activity. It is a no-op while any
// activity runs or for the synthetic drift type.
func (t *Tracker) StartWellnessActivity(typ ActivityType) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.gate.active() || !typ.Wellness() {
		return false
	}
	now := t.clock.Now()
	drifted := t.captureDrift(now)
	t.gate.wellness = &ActiveWellness{Type: typ, StartTime: now}
	t.logger.Info("activity started", "type", typ)
	if drifted {
		t.commit("start_activity")
	}
	return true
}

// StopFocusTimer commits elapsedSeconds to the active focus target. The
// session is reconstructed as [now-elapsed, now]. A non-positive elapsed
// closes the timer without recording anything.
func (t *Tracker) StopFocusTimer(elapsedSeconds int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.gate.focus == nil {
		return false
	}
	target := *t.gate.focus
	now := t.clock.Now()
	t.gate.focus = nil
	t.drift.ActivityEnded(now)

	if elapsedSeconds <= 0 {
		t.logger.Info("focus closed without time", "task", target.TaskID)
		return true
	}
	idx := t.taskIndex(target.TaskID)
	if idx < 0 {
		// Task deleted while the timer ran.
		t.logger.Warn("focus target gone", "task", target.TaskID)
		return true
	}
	start := now.Add(-time.Duration(elapsedSeconds) * time.Second)
	task := recordFocusTime(t.doc.Tasks[idx], target.SubtaskTitle, start, now, elapsedSeconds)
	t.replaceTask(idx, task)
	t.logger.Info("focus stopped", "task", target.TaskID, "subtask", target.SubtaskTitle, "seconds", elapsedSeconds)
	t.commit("stop_focus")
	return true
}

// StopWellnessActivity appends the running activity to the history with a
// floored duration.
func (t *Tracker) StopWellnessActivity() (ActivitySession, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.gate.wellness == nil {
		return ActivitySession{}, false
	}
	w := *t.gate.wellness
	now := t.clock.Now()
	t.gate.wellness = nil
	t.drift.ActivityEnded(now)

	sess := ActivitySession{
		ID:        t.newID(),
		Type:      w.Type,
		StartTime: w.StartTime,
		EndTime:   now,
		Duration:  floorSeconds(now.Sub(w.StartTime)),
	}
	t.appendActivity(sess)
	t.logger.Info("activity stopped", "type", w.Type, "seconds", sess.Duration)
	t.commit("stop_activity")
	return sess, true
}

// captureDrift materializes a drift record for the gap ending at now.
// Caller holds t.mu.
func (t *Tracker) captureDrift(now time.Time) bool {
	start, end, secs, ok := t.drift.Capture(now)
	if !ok {
		return false
	}
	t.appendActivity(ActivitySession{
		ID:        t.newID(),
		Type:      ActivityDrift,
		StartTime: start,
		EndTime:   end,
		Duration:  secs,
	})
	t.logger.Info("drift recorded", "seconds", secs, "from", start, "to", end)
	return true
}

func (t *Tracker) appendActivity(a ActivitySession) {
	acts := make([]ActivitySession, len(t.doc.Activities), len(t.doc.Activities)+1)
	copy(acts, t.doc.Activities)
	t.doc.Activities = append(acts, a)
}

// TickResult reports events raised by one periodic tick.
type TickResult struct {
	DriftAlert bool // alert became visible on this tick
}

// Tick drives the drift detector. Call it once per second.
func (t *Tracker) Tick() TickResult {
	t.mu.Lock()
	defer t.mu.Unlock()
	shown := t.drift.Tick(t.clock.Now(), t.gate.active())
	if shown {
		t.logger.Info("drift alert", "idle", t.drift.Idle(t.clock.Now()).Round(time.Second))
	}
	return TickResult{DriftAlert: shown}
}

func (t *Tracker) DriftAlertVisible() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.drift.AlertVisible()
}

// DriftIdle is the idle time since the last activity boundary.
func (t *Tracker) DriftIdle() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.drift.Idle(t.clock.Now())
}

// NextDriftCheck is when the alert would next become due, for callers that
// schedule a single wake-up instead of polling.
func (t *Tracker) NextDriftCheck() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.drift.AlertDeadline()
}

// DismissDrift hides the alert and restarts the idle window at now.
func (t *Tracker) DismissDrift() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.drift.Dismiss(t.clock.Now())
}

// TakeBreak is the alert's "take break" action: start a break, which
// captures the pending drift first and clears the alert.
func (t *Tracker) TakeBreak() bool {
	return t.StartWellnessActivity(ActivityBreak)
}
