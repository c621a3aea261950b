// Package combat tracks whether a fight is in progress.
//
// The Machine has two states. Activity moves it from Idle to Engaged, and
// silence longer than the timeout or a log rotation moves it back. Every
// method takes the current time explicitly so the machine never reads a clock
// and can be driven deterministically.
package combat

import (
	"fmt"
	"time"
)

// DefaultTimeout is how long the log may stay quiet before combat ends.
const DefaultTimeout = 20 * time.Second

// State is the combat state.
type State int

const (
	Idle State = iota
	Engaged
)

func (s State) String() string {
	if s == Engaged {
		return "engaged"
	}
	return "idle"
}

// Transition records a state change.
type Transition struct {
	From State
	To   State
	At   time.Time
	// Since is when the engagement that this transition starts or ends began.
	Since time.Time
}

// Duration returns how long the engagement lasted for an Engaged to Idle
// transition, and zero otherwise.
func (t Transition) Duration() time.Duration {
	if t.From != Engaged || t.Since.IsZero() {
		return 0
	}
	return t.At.Sub(t.Since)
}

// FormatDuration renders d as mm:ss, rolling over to h:mm:ss past an hour.
// Negative durations render as 00:00.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	h, m, s := total/3600, (total/60)%60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// Machine is the combat state machine. It is not safe for concurrent use;
// the monitor drives it from a single goroutine.
type Machine struct {
	timeout      time.Duration
	state        State
	since        time.Time
	lastActivity time.Time
}

// New returns an Idle machine. A non-positive timeout uses DefaultTimeout.
func New(timeout time.Duration) *Machine {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Machine{timeout: timeout}
}

// State returns the current state.
func (m *Machine) State() State { return m.state }

// Since returns when the current engagement began. ok is false while Idle.
func (m *Machine) Since() (time.Time, bool) {
	if m.state != Engaged {
		return time.Time{}, false
	}
	return m.since, true
}

// LastActivity returns the time of the most recent activity.
func (m *Machine) LastActivity() time.Time { return m.lastActivity }

// Timeout returns the configured inactivity timeout.
func (m *Machine) Timeout() time.Duration { return m.timeout }

// Observe records activity at now. It reports a transition only when the
// machine was Idle; while Engaged it just restarts the inactivity clock.
func (m *Machine) Observe(now time.Time) (Transition, bool) {
	m.lastActivity = now
	if m.state == Engaged {
		return Transition{}, false
	}
	m.state = Engaged
	m.since = now
	return Transition{From: Idle, To: Engaged, At: now, Since: now}, true
}

// Tick ends the engagement once now is at least the timeout past the last
// activity. It must be called on every cycle, with or without new lines.
func (m *Machine) Tick(now time.Time) (Transition, bool) {
	if m.state != Engaged {
		return Transition{}, false
	}
	if now.Sub(m.lastActivity) < m.timeout {
		return Transition{}, false
	}
	return m.toIdle(now), true
}

// Reset ends any engagement immediately. The monitor calls it when the log
// rotates because a new log file means a new session.
func (m *Machine) Reset(now time.Time) (Transition, bool) {
	if m.state != Engaged {
		return Transition{}, false
	}
	return m.toIdle(now), true
}

func (m *Machine) toIdle(now time.Time) Transition {
	tr := Transition{From: Engaged, To: Idle, At: now, Since: m.since}
	m.state = Idle
	m.since = time.Time{}
	return tr
}
