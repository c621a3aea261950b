// Package app is the composition root for battlewatch.
//
// # Overview
//
// Run wires configuration, logging, the watchlist, the audio cue, the monitor
// and the battle display together, then blocks until the user quits or the
// context is cancelled.
//
// # Startup Sequence
//
//  1. Load ~/.config/battlewatch/config.toml and apply flag overrides
//  2. Load display prefs (theme, mute)
//  3. Build the zap logger: JSON file for the TUI, console on stderr headless
//  4. Load the watchlist and queue its LoadStatus into the monitor
//  5. Watch the watchlist file with fsnotify and reload on change
//  6. Start the monitor (I/O worker plus consumer)
//  7. Forward monitor events into a state.Store
//  8. Run the Bubble Tea display, or print events when headless
//
// # Data Flow
//
//	┌───────────────┐   events   ┌───────────┐  Apply   ┌─────────────┐
//	│ monitor.Run() │──────────→│ Forward() │────────→│ state.Store │
//	└───────────────┘            └─────┬─────┘          └──────┬──────┘
//	        ↑ ReportLoad               │ headless              │ Snapshot
//	┌───────┴───────┐                  ↓                       ↓
//	│ watchlist     │            stdout printer           ui.Model
//	│ Reload/Watch  │←──────────────────────── r key ─────────┘
//	└───────────────┘
//
// # Error Handling
//
// Only startup failures are returned: a config file that does not parse or
// a log file that cannot be created. A missing watchlist, a missing game log
// and read errors are reported through events and never stop the process.
package app
