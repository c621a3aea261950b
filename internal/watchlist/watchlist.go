// Package watchlist holds the named moves battlewatch alerts on, the parsers
// that build them from text or YAML files, and the Store that publishes a
// reloaded list to the classifier without locking.
package watchlist

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Level is the severity attached to a watched move.
type Level int

const (
	// Watch is an informational, visual-only alert.
	Watch Level = 1
	// Critical requests an audible high-priority alert.
	Critical Level = 2
)

// Valid reports whether l is one of the supported severities.
func (l Level) Valid() bool {
	return l == Watch || l == Critical
}

func (l Level) String() string {
	switch l {
	case Watch:
		return "watch"
	case Critical:
		return "critical"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// Entry is a single watched move.
type Entry struct {
	Move  string // as written in the watchlist file
	Key   string // lowercased form used for matching
	Level Level
}

// Watchlist is an immutable, insertion-ordered set of watched moves.
// A nil *Watchlist is valid and empty.
type Watchlist struct {
	entries []Entry
}

// New builds a Watchlist from entries in order. A repeated move keeps its
// first position and takes the later level. Entries with an empty name or an
// invalid level are dropped.
func New(entries ...Entry) *Watchlist {
	w := &Watchlist{}
	lower := cases.Lower(language.Und)
	index := make(map[string]int, len(entries))
	for _, e := range entries {
		move := strings.TrimSpace(e.Move)
		if move == "" || !e.Level.Valid() {
			continue
		}
		key := lower.String(move)
		if i, ok := index[move]; ok {
			w.entries[i].Level = e.Level
			continue
		}
		index[move] = len(w.entries)
		w.entries = append(w.entries, Entry{Move: move, Key: key, Level: e.Level})
	}
	return w
}

// Len returns the number of entries.
func (w *Watchlist) Len() int {
	if w == nil {
		return 0
	}
	return len(w.entries)
}

// Entries returns a copy of the entries in insertion order.
func (w *Watchlist) Entries() []Entry {
	if w == nil || len(w.entries) == 0 {
		return nil
	}
	dup := make([]Entry, len(w.entries))
	copy(dup, w.entries)
	return dup
}

// Each calls fn for every entry in insertion order without copying.
func (w *Watchlist) Each(fn func(Entry)) {
	if w == nil {
		return
	}
	for _, e := range w.entries {
		fn(e)
	}
}

// Lookup returns the level for move, matched case-sensitively on the
// cleaned name.
func (w *Watchlist) Lookup(move string) (Level, bool) {
	if w == nil {
		return 0, false
	}
	for _, e := range w.entries {
		if e.Move == move {
			return e.Level, true
		}
	}
	return 0, false
}
