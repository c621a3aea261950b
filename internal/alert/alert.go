// Package alert turns watchlist matches into timed notifications.
//
// A match raises an alert and sets a deadline. Tick clears the alert once the
// deadline passes and falls back to whatever the combat state says. A newer
// match replaces both the payload and the deadline, so only the latest alert
// ever clears.
package alert

import (
	"fmt"
	"strings"
	"time"

	"github.com/five82/battlewatch/internal/combat"
	"github.com/five82/battlewatch/internal/watchlist"
)

// DefaultResetDelay is how long an alert stays up without a newer match.
const DefaultResetDelay = 4 * time.Second

// Kind selects what the display shows.
type Kind int

const (
	KindIdle Kind = iota
	KindEngaged
	KindWatch
	KindCritical
)

func (k Kind) String() string {
	switch k {
	case KindEngaged:
		return "engaged"
	case KindWatch:
		return "watch"
	case KindCritical:
		return "critical"
	default:
		return "idle"
	}
}

// Payload is the current display content.
type Payload struct {
	Kind Kind
	Move string
}

// Text renders the payload the way the battle display shows it.
func (p Payload) Text() string {
	switch p.Kind {
	case KindCritical:
		return fmt.Sprintf("!!! %s !!!", strings.ToUpper(p.Move))
	case KindWatch:
		return "WATCH: " + p.Move
	case KindEngaged:
		return "ENGAGED"
	default:
		return "IDLE / READY"
	}
}

// Audible reports whether the payload asks for a sound cue.
func (p Payload) Audible() bool { return p.Kind == KindCritical }

// Raised reports whether the payload is an alert rather than a resting
// display.
func (p Payload) Raised() bool { return p.Kind == KindWatch || p.Kind == KindCritical }

// ForLevel builds the alert payload for a match at level.
func ForLevel(move string, level watchlist.Level) Payload {
	if level == watchlist.Critical {
		return Payload{Kind: KindCritical, Move: move}
	}
	return Payload{Kind: KindWatch, Move: move}
}

// CombatReader exposes the combat state an alert reverts to.
type CombatReader interface {
	State() combat.State
}

// Scheduler owns the alert payload and its reset deadline. It is not safe for
// concurrent use.
type Scheduler struct {
	delay    time.Duration
	combat   CombatReader
	current  Payload
	deadline time.Time
	pending  bool
}

// New returns a scheduler that reverts alerts after delay. A non-positive
// delay uses DefaultResetDelay.
func New(delay time.Duration, reader CombatReader) *Scheduler {
	if delay <= 0 {
		delay = DefaultResetDelay
	}
	return &Scheduler{delay: delay, combat: reader}
}

// Current returns the displayed payload.
func (s *Scheduler) Current() Payload { return s.current }

// Deadline returns when the current alert clears. ok is false when no alert
// is pending.
func (s *Scheduler) Deadline() (time.Time, bool) {
	return s.deadline, s.pending
}

// OnMatch raises an alert for move and drops any pending reset.
func (s *Scheduler) OnMatch(move string, level watchlist.Level, now time.Time) Payload {
	s.current = ForLevel(move, level)
	s.deadline = now.Add(s.delay)
	s.pending = true
	return s.current
}

// Tick clears the alert when now has reached the deadline. The returned
// payload mirrors the combat state at that moment. It reports true at most
// once per raised alert.
func (s *Scheduler) Tick(now time.Time) (Payload, bool) {
	if !s.pending || now.Before(s.deadline) {
		return Payload{}, false
	}
	s.pending = false
	s.deadline = time.Time{}
	s.current = s.resting()
	return s.current, true
}

// Cancel drops a pending alert immediately and reverts to the resting
// payload. It is used when combat ends before the alert would clear.
func (s *Scheduler) Cancel() (Payload, bool) {
	if !s.pending {
		s.current = s.resting()
		return Payload{}, false
	}
	s.pending = false
	s.deadline = time.Time{}
	s.current = s.resting()
	return s.current, true
}

// Sync updates the resting payload after a combat transition. It never
// touches a pending alert.
func (s *Scheduler) Sync() {
	if !s.pending {
		s.current = s.resting()
	}
}

func (s *Scheduler) resting() Payload {
	if s.combat != nil && s.combat.State() == combat.Engaged {
		return Payload{Kind: KindEngaged}
	}
	return Payload{Kind: KindIdle}
}
