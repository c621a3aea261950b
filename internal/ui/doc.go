// Package ui provides the battle display, a Bubble Tea terminal UI.
//
// # Layout
//
//	battlewatch  Moves Loaded: 12  MONITORING ~/Windower/logs/2024.05.01.log
//
//	              ┌──────────────────────────────┐
//	              │        !!! METEOR !!!        │
//	              └──────────────────────────────┘
//	                     BATTLE TIME 01:23
//
//	                ╭ Recent ─────────────────╮
//	                │ 20:01:02  CRITICAL  Meteor │
//	                ╰─────────────────────────╯
//	m mute • r reload • ? help • q quit
//
// The banner is the alert payload text on a coloured background: red for a
// critical alert, yellow for a watch alert, green while engaged, and the
// surface colour when idle.
//
// # Data Flow
//
// The UI never talks to the monitor. The app forwarder applies events to a
// state.Store, and the model fetches a snapshot on every poll tick. The
// battle timer is a bubbles stopwatch restarted whenever the snapshot reports
// a new engagement start.
//
// # Keys
//
//   - q / ctrl+c: quit
//   - ? / h: toggle full help
//   - T: cycle theme (saved to prefs)
//   - m: mute or unmute the audio cue (saved to prefs)
//   - r: reload the watchlist from disk
package ui
