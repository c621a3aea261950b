// Package state folds monitor events into a snapshot the UI can render.
//
// # Overview
//
// The monitor emits an ordered stream of events. The app forwarder applies
// each one to a Store, and the UI reads a Snapshot on its own refresh tick.
// Neither side blocks the other for longer than a copy.
//
//	Producer (forwarder):          Consumer (UI):
//	┌────────────────────┐        ┌──────────────────┐
//	│ <-monitor.Events() │        │                  │
//	│        ↓           │        │                  │
//	│   store.Apply(ev)  │───────→│ store.Snapshot() │
//	│        ↓           │(mutex) │        ↓         │
//	│    repeat...       │        │   render view    │
//	└────────────────────┘        └──────────────────┘
//
// # Reduction Rules
//
//   - CombatStateChanged sets Combat and Since. Leaving combat records the
//     engagement length in LastBattle. The resting display follows the
//     combat state unless an alert is still up.
//   - AlertRaised shows the alert and prepends it to Recent (five kept).
//   - AlertCleared shows the resting payload the monitor chose.
//   - LoadStatus updates MovesLoaded on success. A failed reload records
//     LoadErr and keeps the previous count, matching the monitor, which
//     keeps matching against the previous watchlist.
//   - SourceStatus records the tailed path or the waiting state.
//
// # Concurrency Model
//
// Apply takes the write lock and Snapshot the read lock. Snapshots are
// returned by value with Recent copied, so callers may keep them.
package state
