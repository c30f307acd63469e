package tracker

import "time"

const (
	DefaultDriftBuffer         = 120 * time.Second
	DefaultDriftAlertThreshold = 600 * time.Second
	DefaultDriftNoiseMargin    = 60 * time.Second
)

// DriftConfig tunes the drift detector.
type DriftConfig struct {
	// Buffer is idle time that is never counted as drift.
	Buffer time.Duration
	// AlertThreshold is idle time beyond Buffer before the alert shows.
	AlertThreshold time.Duration
	// NoiseMargin is how far a gap must exceed Buffer to be recorded.
	NoiseMargin time.Duration
}

func DefaultDriftConfig() DriftConfig {
	return DriftConfig{
		Buffer:         DefaultDriftBuffer,
		AlertThreshold: DefaultDriftAlertThreshold,
		NoiseMargin:    DefaultDriftNoiseMargin,
	}
}

// DriftDetector tracks time between activities. It is not safe for
// concurrent use; the Tracker serializes access.
type DriftDetector struct {
	cfg             DriftConfig
	lastActivityEnd time.Time
	alertVisible    bool
}

// NewDriftDetector starts the idle window at start so nothing before the
// process began is treated as drift.
func NewDriftDetector(cfg DriftConfig, start time.Time) *DriftDetector {
	return &DriftDetector{cfg: cfg, lastActivityEnd: start}
}

func (d *DriftDetector) Config() DriftConfig        { return d.cfg }
func (d *DriftDetector) AlertVisible() bool         { return d.alertVisible }
func (d *DriftDetector) LastActivityEnd() time.Time { return d.lastActivityEnd }

// Idle is the time since the last activity boundary.
func (d *DriftDetector) Idle(now time.Time) time.Duration {
	return now.Sub(d.lastActivityEnd)
}

// AlertDeadline is the instant after which the alert becomes due. The alert
// fires strictly after it, never at it.
func (d *DriftDetector) AlertDeadline() time.Time {
	return d.lastActivityEnd.Add(d.cfg.Buffer + d.cfg.AlertThreshold)
}

// Tick runs once per second. While an activity runs the idle window is
// pinned to now and any alert is hidden. Otherwise the alert is raised once
// per idle episode; shown reports that it was raised on this tick.
func (d *DriftDetector) Tick(now time.Time, active bool) (shown bool) {
	if active {
		d.alertVisible = false
		d.lastActivityEnd = now
		return false
	}
	if d.alertVisible {
		return false
	}
	if d.Idle(now) > d.cfg.Buffer+d.cfg.AlertThreshold {
		d.alertVisible = true
		return true
	}
	return false
}

// Capture is called once when a new activity starts at now. A gap longer
// than Buffer+NoiseMargin yields a drift interval starting Buffer after the
// last boundary. The window is consumed either way.
func (d *DriftDetector) Capture(now time.Time) (start, end time.Time, secs int64, ok bool) {
	gap := now.Sub(d.lastActivityEnd)
	if gap > d.cfg.Buffer+d.cfg.NoiseMargin {
		start = d.lastActivityEnd.Add(d.cfg.Buffer)
		end = now
		secs = floorSeconds(gap - d.cfg.Buffer)
		ok = true
	}
	d.lastActivityEnd = now
	d.alertVisible = false
	return start, end, secs, ok
}

// Dismiss hides the alert and restarts the idle window at now. The time
// between the alert firing and now is not recorded anywhere.
func (d *DriftDetector) Dismiss(now time.Time) {
	d.alertVisible = false
	d.lastActivityEnd = now
}

// ActivityEnded marks an activity boundary.
func (d *DriftDetector) ActivityEnded(now time.Time) {
	d.lastActivityEnd = now
}
