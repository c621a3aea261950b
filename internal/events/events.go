// Package events defines everything the monitor reports to the presentation
// layer. Events arrive on a single ordered channel; consumers switch on the
// concrete type.
package events

import (
	"time"

	"github.com/five82/battlewatch/internal/alert"
	"github.com/five82/battlewatch/internal/combat"
	"github.com/five82/battlewatch/internal/watchlist"
)

// Event is implemented by every event type in this package.
type Event interface {
	// Time is when the monitor produced the event.
	Time() time.Time
	isEvent()
}

// CombatStateChanged reports an Idle/Engaged transition. Since is when the
// engagement started, for both directions.
type CombatStateChanged struct {
	From  combat.State
	To    combat.State
	Since time.Time
	At    time.Time
}

// Duration is how long the engagement lasted when To is Idle.
func (e CombatStateChanged) Duration() time.Duration {
	if e.To != combat.Idle || e.Since.IsZero() {
		return 0
	}
	return e.At.Sub(e.Since)
}

// AlertRaised reports a watchlist match.
type AlertRaised struct {
	Payload  alert.Payload
	Severity watchlist.Level
	At       time.Time
}

// AlertCleared reports that the alert display reverted. Payload is the
// resting display it reverted to.
type AlertCleared struct {
	Payload alert.Payload
	At      time.Time
}

// LoadStatus reports a watchlist load or reload.
type LoadStatus struct {
	Path    string
	Count   int
	Skipped int
	Err     error
	At      time.Time
}

// OK reports whether the load succeeded.
func (e LoadStatus) OK() bool { return e.Err == nil }

// SourceStatus reports which log file is being tailed, or that none was found.
type SourceStatus struct {
	Path    string
	Waiting bool
	Err     error
	At      time.Time
}

func (e CombatStateChanged) Time() time.Time { return e.At }
func (e AlertRaised) Time() time.Time        { return e.At }
func (e AlertCleared) Time() time.Time       { return e.At }
func (e LoadStatus) Time() time.Time         { return e.At }
func (e SourceStatus) Time() time.Time       { return e.At }

func (CombatStateChanged) isEvent() {}
func (AlertRaised) isEvent()        {}
func (AlertCleared) isEvent()       {}
func (LoadStatus) isEvent()         {}
func (SourceStatus) isEvent()       {}
