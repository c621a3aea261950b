package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/five82/battlewatch/internal/alert"
	"github.com/five82/battlewatch/internal/combat"
	"github.com/five82/battlewatch/internal/events"
)

// recentLimit caps how many raised alerts a snapshot keeps.
const recentLimit = 5

// Snapshot represents the latest data available to the UI.
type Snapshot struct {
	Combat      combat.State
	Since       time.Time // engagement start; zero while idle
	LastBattle  time.Duration
	Alert       alert.Payload
	Recent      []events.AlertRaised // newest first
	Loaded      bool // a watchlist load has been reported
	MovesLoaded int
	Skipped     int
	LoadErr     error
	LogPath     string
	Waiting     bool
	SourceErr   error
	LastUpdated time.Time
	Applied     int
}

// Store folds the monitor's events into a Snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Apply updates the snapshot with one event. Events must be applied in the
// order the monitor emitted them.
func (s *Store) Apply(ev events.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := &s.snapshot
	switch ev := ev.(type) {
	case events.CombatStateChanged:
		snap.Combat = ev.To
		if ev.To == combat.Engaged {
			snap.Since = ev.Since
		} else {
			snap.Since = time.Time{}
			snap.LastBattle = ev.Duration()
		}
		// Keep a raised alert on screen; otherwise follow the combat state.
		if !snap.Alert.Raised() {
			snap.Alert = restingPayload(ev.To)
		}
	case events.AlertRaised:
		snap.Alert = ev.Payload
		snap.Recent = append([]events.AlertRaised{ev}, snap.Recent...)
		if len(snap.Recent) > recentLimit {
			snap.Recent = snap.Recent[:recentLimit]
		}
	case events.AlertCleared:
		snap.Alert = ev.Payload
	case events.LoadStatus:
		snap.Loaded = true
		if ev.OK() {
			snap.MovesLoaded = ev.Count
			snap.Skipped = ev.Skipped
			snap.LoadErr = nil
		} else {
			snap.LoadErr = ev.Err
		}
	case events.SourceStatus:
		snap.LogPath = ev.Path
		snap.Waiting = ev.Waiting
		snap.SourceErr = ev.Err
	default:
		return
	}
	snap.LastUpdated = ev.Time()
	snap.Applied++
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Recent = cloneRecent(s.snapshot.Recent)
	if s.snapshot.LoadErr != nil {
		snap.LoadErr = fmt.Errorf("%w", s.snapshot.LoadErr)
	}
	if s.snapshot.SourceErr != nil {
		snap.SourceErr = fmt.Errorf("%w", s.snapshot.SourceErr)
	}
	return snap
}

func restingPayload(st combat.State) alert.Payload {
	if st == combat.Engaged {
		return alert.Payload{Kind: alert.KindEngaged}
	}
	return alert.Payload{Kind: alert.KindIdle}
}

func cloneRecent(items []events.AlertRaised) []events.AlertRaised {
	if len(items) == 0 {
		return nil
	}
	dup := make([]events.AlertRaised, len(items))
	copy(dup, items)
	return dup
}
