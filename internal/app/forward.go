package app

import (
	"context"
	"fmt"
	"io"

	"github.com/five82/battlewatch/internal/combat"
	"github.com/five82/battlewatch/internal/events"
	"github.com/five82/battlewatch/internal/state"
)

// Forward applies every event from evs to store, then hands it to observe
// when set. It returns when evs is closed or ctx is done.
func Forward(ctx context.Context, evs <-chan events.Event, store *state.Store, observe func(events.Event)) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-evs:
			if !ok {
				return
			}
			store.Apply(ev)
			if observe != nil {
				observe(ev)
			}
		}
	}
}

// printer renders the display changes as plain lines for headless runs.
func printer(w io.Writer) func(events.Event) {
	return func(ev events.Event) {
		stamp := ev.Time().Local().Format("15:04:05")
		switch ev := ev.(type) {
		case events.CombatStateChanged:
			if ev.To == combat.Engaged {
				fmt.Fprintf(w, "%s  COMBAT STARTED\n", stamp)
				return
			}
			fmt.Fprintf(w, "%s  COMBAT STOPPED (Duration: %s)\n", stamp, combat.FormatDuration(ev.Duration()))
		case events.AlertRaised:
			fmt.Fprintf(w, "%s  %s\n", stamp, ev.Payload.Text())
		case events.AlertCleared:
			fmt.Fprintf(w, "%s  %s\n", stamp, ev.Payload.Text())
		case events.LoadStatus:
			if ev.OK() {
				fmt.Fprintf(w, "%s  Moves Loaded: %d\n", stamp, ev.Count)
				return
			}
			fmt.Fprintf(w, "%s  WATCHLIST ERROR: %v\n", stamp, ev.Err)
		case events.SourceStatus:
			switch {
			case ev.Waiting:
				fmt.Fprintf(w, "%s  WAITING FOR LOGS...\n", stamp)
			case ev.Err != nil:
				fmt.Fprintf(w, "%s  READ ERROR: %v\n", stamp, ev.Err)
			default:
				fmt.Fprintf(w, "%s  MONITORING %s\n", stamp, ev.Path)
			}
		}
	}
}
