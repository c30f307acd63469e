package tracker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDriftNoiseFilter(t *testing.T) {
	tests := []struct {
		name     string
		gap      time.Duration
		recorded bool
		secs     int64
	}{
		{"within buffer", 120 * time.Second, false, 0},
		{"at noise boundary", 180 * time.Second, false, 0},
		{"just past boundary", 181 * time.Second, true, 61},
		{"long gap", 950 * time.Second, true, 830},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, clk := newTestTracker(t, Document{})
			clk.Advance(tt.gap)
			require.True(t, tr.StartWellnessActivity(ActivityRest))

			acts := tr.Snapshot().Activities
			if !tt.recorded {
				assert.Empty(t, acts)
				return
			}
			require.Len(t, acts, 1)
			d := acts[0]
			assert.Equal(t, ActivityDrift, d.Type)
			assert.Equal(t, tt.secs, d.Duration)
			assert.Equal(t, t0.Add(DefaultDriftBuffer), d.StartTime)
			assert.Equal(t, t0.Add(tt.gap), d.EndTime)
		})
	}
}

func TestDriftNoiseFilterSubSecond(t *testing.T) {
	d := NewDriftDetector(DefaultDriftConfig(), t0)
	_, _, _, ok := d.Capture(t0.Add(180*time.Second + time.Millisecond))
	assert.True(t, ok, "strictly greater than buffer+margin records")
}

func TestDriftAlertTiming(t *testing.T) {
	d := NewDriftDetector(DefaultDriftConfig(), t0)

	assert.False(t, d.Tick(t0.Add(719*time.Second), false))
	assert.False(t, d.Tick(t0.Add(720*time.Second), false))
	assert.False(t, d.AlertVisible())

	assert.True(t, d.Tick(t0.Add(721*time.Second), false))
	assert.True(t, d.AlertVisible())

	// Shown once per idle episode.
	assert.False(t, d.Tick(t0.Add(722*time.Second), false))
	assert.True(t, d.AlertVisible())
}

func TestDriftAlertDeadline(t *testing.T) {
	d := NewDriftDetector(DefaultDriftConfig(), t0)
	assert.Equal(t, t0.Add(720*time.Second), d.AlertDeadline())
}

func TestDriftTickWhileActivePinsWindow(t *testing.T) {
	d := NewDriftDetector(DefaultDriftConfig(), t0)
	require.True(t, d.Tick(t0.Add(800*time.Second), false))

	assert.False(t, d.Tick(t0.Add(801*time.Second), true))
	assert.False(t, d.AlertVisible())
	assert.Equal(t, t0.Add(801*time.Second), d.LastActivityEnd())
}

func TestDriftDismissResetsWindow(t *testing.T) {
	d := NewDriftDetector(DefaultDriftConfig(), t0)
	require.True(t, d.Tick(t0.Add(900*time.Second), false))

	d.Dismiss(t0.Add(950 * time.Second))
	assert.False(t, d.AlertVisible())

	_, _, _, ok := d.Capture(t0.Add(1000 * time.Second))
	assert.False(t, ok, "dismissed interval must not be recorded later")
}

func TestDriftCustomConfig(t *testing.T) {
	cfg := DriftConfig{Buffer: 10 * time.Second, AlertThreshold: 20 * time.Second, NoiseMargin: 5 * time.Second}
	tr, clk := newTestTracker(t, Document{}, WithDriftConfig(cfg))

	clk.Advance(31 * time.Second)
	assert.True(t, tr.Tick().DriftAlert)

	tr.StartWellnessActivity(ActivityFood)
	acts := tr.Snapshot().Activities
	require.Len(t, acts, 1)
	assert.Equal(t, int64(21), acts[0].Duration)
}

func TestDriftScenarioAlertThenBreak(t *testing.T) {
	tr, clk := newTestTracker(t, Document{})

	clk.Set(t0.Add(900 * time.Second))
	res := tr.Tick()
	assert.True(t, res.DriftAlert)
	assert.True(t, tr.DriftAlertVisible())

	clk.Set(t0.Add(950 * time.Second))
	require.True(t, tr.TakeBreak())
	assert.False(t, tr.DriftAlertVisible())

	acts := tr.Snapshot().Activities
	require.Len(t, acts, 1)
	assert.Equal(t, ActivityDrift, acts[0].Type)
	assert.Equal(t, t0.Add(120*time.Second), acts[0].StartTime)
	assert.Equal(t, t0.Add(950*time.Second), acts[0].EndTime)
	assert.Equal(t, int64(830), acts[0].Duration)

	active := tr.Active()
	require.NotNil(t, active.Wellness)
	assert.Equal(t, ActivityBreak, active.Wellness.Type)
}

func TestDriftCapturedOncePerStart(t *testing.T) {
	tr, clk := newTestTracker(t, Document{Tasks: []Task{{ID: "t1", Subtasks: []Subtask{{ID: "s1", Title: "A"}}}}})

	clk.Advance(300 * time.Second)
	require.True(t, tr.StartFocusTimer("t1", "A"))
	clk.Advance(60 * time.Second)
	require.True(t, tr.StopFocusTimer(60))

	// Immediate restart: the previous gap was already consumed.
	require.True(t, tr.StartFocusTimer("t1", "A"))
	acts := tr.Snapshot().Activities
	require.Len(t, acts, 1)
	assert.Equal(t, int64(180), acts[0].Duration)
}

func TestActivityDurationIsNotDrift(t *testing.T) {
	tr, clk := newTestTracker(t, Document{})

	require.True(t, tr.StartWellnessActivity(ActivityNap))
	// No ticks while the activity runs; the stop boundary still resets the window.
	clk.Advance(time.Hour)
	_, ok := tr.StopWellnessActivity()
	require.True(t, ok)

	clk.Advance(30 * time.Second)
	require.True(t, tr.StartWellnessActivity(ActivityFood))

	acts := tr.Snapshot().Activities
	require.Len(t, acts, 1)
	assert.Equal(t, ActivityNap, acts[0].Type)
}

func TestDismissDriftThroughTracker(t *testing.T) {
	tr, clk := newTestTracker(t, Document{})
	clk.Advance(800 * time.Second)
	require.True(t, tr.Tick().DriftAlert)

	clk.Advance(100 * time.Second)
	tr.DismissDrift()
	assert.False(t, tr.DriftAlertVisible())
	assert.Equal(t, time.Duration(0), tr.DriftIdle())
	assert.Equal(t, clk.Now().Add(720*time.Second), tr.NextDriftCheck())

	clk.Advance(60 * time.Second)
	tr.StartWellnessActivity(ActivityBreak)
	assert.Empty(t, tr.Snapshot().Activities)
}
