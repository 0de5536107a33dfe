package idle

import (
	"log"
	"time"

	"tabtrack/internal/event"
	"tabtrack/internal/platform/clock"
)

const DefaultTimeout = 5 * time.Minute

// Action tells the tracker what a signal means for the accumulator.
type Action int

const (
	NoAction Action = iota
	Pause
	Resume
)

// Status is the accumulator state the monitor decides against.
type Status struct {
	Tracking bool // user asked to track
	Paused   bool
}

// Monitor owns the single inactivity timer. Every arm bumps the generation, so an expiry
// that was already in flight when the timer got re-armed or cancelled is ignored.
// Methods must be called from the tracking loop goroutine; notify runs on the timer goroutine
// and should only hand the generation back to that loop.
type Monitor struct {
	clock   clock.Clock
	timeout time.Duration
	notify  func(event.InactivityExpired)

	timer      clock.Timer
	generation uint64
}

func NewMonitor(clk clock.Clock, timeout time.Duration, notify func(event.InactivityExpired)) *Monitor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Monitor{
		clock:   clk,
		timeout: timeout,
		notify:  notify,
	}
}

// Arm (re)starts the inactivity timer. Repeated calls leave exactly one timer pending.
func (m *Monitor) Arm() {
	m.stopTimer()
	m.generation++
	gen := m.generation
	if m.notify == nil {
		return
	}
	m.timer = m.clock.AfterFunc(m.timeout, func() {
		m.notify(event.InactivityExpired{Generation: gen})
	})
}

// Cancel drops any pending timer.
func (m *Monitor) Cancel() {
	m.stopTimer()
	m.generation++
}

func (m *Monitor) Armed() bool {
	return m.timer != nil
}

func (m *Monitor) stopTimer() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

// OnActivity handles a fine-grained input signal.
func (m *Monitor) OnActivity(s Status) Action {
	if !s.Tracking {
		return NoAction
	}
	m.Arm()
	if s.Paused {
		return Resume
	}
	return NoAction
}

// OnIdleState handles a coarse idle state transition.
func (m *Monitor) OnIdleState(state event.IdleState, s Status) Action {
	if !s.Tracking {
		return NoAction
	}
	switch state {
	case event.IdleIdle, event.IdleLocked:
		m.Cancel()
		if s.Paused {
			return NoAction
		}
		return Pause
	case event.IdleActive:
		m.Arm()
		if s.Paused {
			return Resume
		}
	}
	return NoAction
}

// OnExpired handles a timer expiry posted back by notify.
func (m *Monitor) OnExpired(e event.InactivityExpired, s Status) Action {
	if e.Generation != m.generation || m.timer == nil {
		return NoAction
	}
	m.timer = nil
	if !s.Tracking || s.Paused {
		return NoAction
	}
	log.Printf("No activity for %s, pausing tracking", m.timeout)
	return Pause
}
