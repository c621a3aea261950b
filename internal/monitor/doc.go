// Package monitor runs the battle log pipeline: tail, classify, track combat,
// schedule alerts.
//
// # Architecture
//
// A Monitor runs two goroutines joined by unbounded queues:
//
//	I/O worker:                    Consumer:
//	┌──────────────────┐          ┌─────────────────────┐
//	│ Source.Poll()    │  input   │ Engine.Line/Rotate  │
//	│   ↓              │─────────→│ Engine.Tick (timer) │
//	│ push items       │  Queue   │   ↓                 │
//	│ sleep poll/back- │          │ push events         │──→ output Queue ──→ Events()
//	│ off interval     │          └─────────────────────┘
//	└──────────────────┘
//
// The worker only does file I/O. Every state change happens on the consumer,
// so the Engine needs no locks. Because Push never blocks, a stalled disk
// cannot delay the inactivity timeout and a slow presentation layer cannot
// stall reads.
//
// # Engine
//
// Engine is the synchronous core and is what the tests drive directly. Each
// method takes the current time and returns the events it produced:
//
//   - Line: classify, engage combat, raise an alert (playing the audio cue
//     for critical moves)
//   - Rotate: end the engagement and drop any pending alert
//   - Tick: fire the inactivity timeout, then the alert reset
//   - Load, Source: turn watchlist and log discovery status into events
//
// Within one call, a combat change is always emitted before the alert it
// accompanies.
//
// # Timing
//
// Timers are deadlines checked by Tick, which the consumer calls on every
// poll interval. A timeout or reset therefore fires up to one poll interval
// late and never early.
package monitor
