package watchlist

import (
	"sync"
	"sync/atomic"
	"time"
)

// Status reports the outcome of a load or reload.
type Status struct {
	Path    string
	Count   int
	Skipped []*EntryError
	Err     error
	At      time.Time
}

// OK reports whether the load succeeded.
func (s Status) OK() bool { return s.Err == nil }

// Store publishes the current watchlist to readers. Readers always see a
// fully built list; a reload replaces the pointer and never mutates a
// published list. Reloads are serialized so a slower load can never publish
// over a newer one.
type Store struct {
	current atomic.Pointer[Watchlist]
	mu      sync.Mutex
}

// NewStore returns a Store publishing w.
func NewStore(w *Watchlist) *Store {
	s := &Store{}
	s.Swap(w)
	return s
}

// Current returns the published watchlist. The result may be nil, which
// behaves as an empty list.
func (s *Store) Current() *Watchlist {
	if s == nil {
		return nil
	}
	return s.current.Load()
}

// Swap publishes w and returns the previous list.
func (s *Store) Swap(w *Watchlist) *Watchlist {
	return s.current.Swap(w)
}

// Reload loads path and, on success, publishes the result. On failure the
// previously published list stays in place.
func (s *Store) Reload(path string) Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reload(path)
}

// Reloader returns a func that reloads path and hands the status to report
// before any other reload can start. Statuses therefore reach report in the
// order the lists were published, and the last one describes the list
// readers see.
func (s *Store) Reloader(path string, report func(Status)) func() {
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		status := s.reload(path)
		if report != nil {
			report(status)
		}
	}
}

func (s *Store) reload(path string) Status {
	res, err := Load(path)
	status := Status{Path: path, At: time.Now()}
	if err != nil {
		status.Err = err
		return status
	}
	s.Swap(res.List)
	status.Count = res.List.Len()
	status.Skipped = res.Skipped
	return status
}
