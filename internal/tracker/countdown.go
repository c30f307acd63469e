package tracker

import (
	"time"

	"github.com/sadopc/ascend/internal/clock"
)

const (
	MinFocusDuration     = time.Minute
	MaxFocusDuration     = 120 * time.Minute
	DefaultFocusDuration = 25 * time.Minute
)

type countdownState int

const (
	countdownIdle countdownState = iota
	countdownRunning
	countdownPaused
	countdownExpired
)

// Countdown is the focus timer's clock face. Reaching zero only raises an
// expired event; committing the session is left to the caller.
type Countdown struct {
	clock  clock.Clock
	length time.Duration

	state     countdownState
	startTime time.Time
	pausedAt  time.Time
	pauseGap  time.Duration
	fired     bool
}

// ClampFocusDuration keeps d within 1..120 minutes.
func ClampFocusDuration(d time.Duration) time.Duration {
	if d < MinFocusDuration {
		return MinFocusDuration
	}
	if d > MaxFocusDuration {
		return MaxFocusDuration
	}
	return d
}

func NewCountdown(c clock.Clock, length time.Duration) *Countdown {
	return &Countdown{clock: c, length: ClampFocusDuration(length)}
}

func (c *Countdown) Length() time.Duration { return c.length }

// SetLength changes the configured length. Only allowed before Start.
func (c *Countdown) SetLength(d time.Duration) {
	if c.state != countdownIdle {
		return
	}
	c.length = ClampFocusDuration(d)
}

func (c *Countdown) Start() {
	if c.state != countdownIdle {
		return
	}
	c.state = countdownRunning
	c.startTime = c.clock.Now()
	c.pauseGap = 0
	c.fired = false
}

func (c *Countdown) Pause() {
	if c.state != countdownRunning {
		return
	}
	c.state = countdownPaused
	c.pausedAt = c.clock.Now()
}

func (c *Countdown) Resume() {
	if c.state != countdownPaused {
		return
	}
	c.pauseGap += c.clock.Now().Sub(c.pausedAt)
	c.state = countdownRunning
}

func (c *Countdown) Toggle() {
	switch c.state {
	case countdownRunning:
		c.Pause()
	case countdownPaused:
		c.Resume()
	}
}

func (c *Countdown) Started() bool { return c.state != countdownIdle }
func (c *Countdown) Paused() bool  { return c.state == countdownPaused }
func (c *Countdown) Expired() bool { return c.state == countdownExpired }

// Elapsed is running time excluding pauses, capped at the length.
func (c *Countdown) Elapsed() time.Duration {
	var e time.Duration
	switch c.state {
	case countdownIdle:
		return 0
	case countdownExpired:
		return c.length
	case countdownPaused:
		e = c.pausedAt.Sub(c.startTime) - c.pauseGap
	default:
		e = c.clock.Now().Sub(c.startTime) - c.pauseGap
	}
	if e < 0 {
		return 0
	}
	if e > c.length {
		return c.length
	}
	return e
}

func (c *Countdown) ElapsedSeconds() int64 {
	return floorSeconds(c.Elapsed())
}

func (c *Countdown) Remaining() time.Duration {
	if c.state == countdownIdle {
		return c.length
	}
	return c.length - c.Elapsed()
}

// Tick reports true exactly once, on the tick where the countdown hits zero.
func (c *Countdown) Tick() (expired bool) {
	if c.state != countdownRunning || c.fired {
		return false
	}
	if c.Remaining() <= 0 {
		c.state = countdownExpired
		c.fired = true
		return true
	}
	return false
}
