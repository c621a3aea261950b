package monitor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/five82/battlewatch/internal/alert"
	"github.com/five82/battlewatch/internal/combat"
	"github.com/five82/battlewatch/internal/events"
	"github.com/five82/battlewatch/internal/logtail"
	"github.com/five82/battlewatch/internal/watchlist"
)

func appendLog(t *testing.T, path, text string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer f.Close()
	if _, err := f.WriteString(text); err != nil {
		t.Fatalf("WriteString: %v", err)
	}
}

// waitFor reads events until match returns true or the deadline passes.
func waitFor(t *testing.T, ch <-chan events.Event, what string, match func(events.Event) bool) events.Event {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				t.Fatalf("event stream closed while waiting for %s", what)
			}
			if match(ev) {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", what)
		}
	}
}

func startMonitor(t *testing.T, opts Options) (*Monitor, context.CancelFunc) {
	t.Helper()
	m := New(opts)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = m.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return m, cancel
}

func TestMonitor_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "session1.log")
	appendLog(t, logPath, "history that must not replay: Goblin casts Meteor.\n")

	store := watchlist.NewStore(watchlist.New(watchlist.Entry{Move: "meteor", Level: watchlist.Critical}))
	m, _ := startMonitor(t, Options{
		Pattern:       filepath.Join(dir, "*.log"),
		PollInterval:  10 * time.Millisecond,
		Backoff:       20 * time.Millisecond,
		CombatTimeout: 10 * time.Second,
		AlertReset:    150 * time.Millisecond,
		Watchlist:     store,
	})
	m.ReportLoad(watchlist.Status{Path: "watchlist.txt", Count: 1})
	ch := m.Events()

	// Load and source status race each other; wait for both.
	var sawLoad, sawSource bool
	for !sawLoad || !sawSource {
		waitFor(t, ch, "load and source status", func(ev events.Event) bool {
			switch ev := ev.(type) {
			case events.LoadStatus:
				sawLoad = sawLoad || ev.Count == 1
				return true
			case events.SourceStatus:
				sawSource = sawSource || ev.Path == logPath
				return true
			}
			return false
		})
	}

	appendLog(t, logPath, "The Goblin casts Meteor.\n")

	changed := waitFor(t, ch, "engaged", func(ev events.Event) bool {
		_, ok := ev.(events.CombatStateChanged)
		return ok
	}).(events.CombatStateChanged)
	if changed.To != combat.Engaged {
		t.Fatalf("first combat change = %+v, want engaged", changed)
	}
	raised := waitFor(t, ch, "alert", func(ev events.Event) bool {
		_, ok := ev.(events.AlertRaised)
		return ok
	}).(events.AlertRaised)
	if raised.Severity != watchlist.Critical {
		t.Fatalf("Severity = %v, want critical", raised.Severity)
	}
	cleared := waitFor(t, ch, "alert cleared", func(ev events.Event) bool {
		_, ok := ev.(events.AlertCleared)
		return ok
	}).(events.AlertCleared)
	if cleared.Payload.Kind != alert.KindEngaged {
		t.Fatalf("cleared payload = %+v, want engaged", cleared.Payload)
	}
	if gap := cleared.At.Sub(raised.At); gap < 150*time.Millisecond {
		t.Fatalf("alert cleared after %v, want at least 150ms", gap)
	}

	// A newer file ends the engagement right away.
	newPath := filepath.Join(dir, "session2.log")
	appendLog(t, newPath, "")
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(newPath, future, future); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}
	changed = waitFor(t, ch, "idle after rotation", func(ev events.Event) bool {
		_, ok := ev.(events.CombatStateChanged)
		return ok
	}).(events.CombatStateChanged)
	if changed.To != combat.Idle {
		t.Fatalf("combat change = %+v, want idle", changed)
	}
	waitFor(t, ch, "source switch", func(ev events.Event) bool {
		src, ok := ev.(events.SourceStatus)
		return ok && src.Path == newPath
	})
}

func TestMonitor_WaitsForLogFile(t *testing.T) {
	dir := t.TempDir()
	m, _ := startMonitor(t, Options{
		Pattern:      filepath.Join(dir, "*.log"),
		PollInterval: 10 * time.Millisecond,
		Backoff:      20 * time.Millisecond,
	})
	ch := m.Events()

	waitFor(t, ch, "waiting status", func(ev events.Event) bool {
		src, ok := ev.(events.SourceStatus)
		return ok && src.Waiting
	})

	logPath := filepath.Join(dir, "late.log")
	appendLog(t, logPath, "")
	waitFor(t, ch, "source found", func(ev events.Event) bool {
		src, ok := ev.(events.SourceStatus)
		return ok && src.Path == logPath && !src.Waiting
	})

	appendLog(t, logPath, "Goblin readies Fireball.\n")
	changed := waitFor(t, ch, "engaged", func(ev events.Event) bool {
		_, ok := ev.(events.CombatStateChanged)
		return ok
	}).(events.CombatStateChanged)
	if changed.To != combat.Engaged {
		t.Fatalf("combat change = %+v, want engaged", changed)
	}
}

func TestMonitor_TimeoutFiresOnSilence(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "a.log")
	appendLog(t, logPath, "")

	m, _ := startMonitor(t, Options{
		Pattern:       filepath.Join(dir, "*.log"),
		PollInterval:  10 * time.Millisecond,
		CombatTimeout: 100 * time.Millisecond,
	})
	ch := m.Events()
	waitFor(t, ch, "source found", func(ev events.Event) bool {
		src, ok := ev.(events.SourceStatus)
		return ok && src.Path == logPath
	})

	appendLog(t, logPath, "Goblin hits you.\n")
	waitFor(t, ch, "engaged", func(ev events.Event) bool {
		c, ok := ev.(events.CombatStateChanged)
		return ok && c.To == combat.Engaged
	})
	idle := waitFor(t, ch, "idle", func(ev events.Event) bool {
		c, ok := ev.(events.CombatStateChanged)
		return ok && c.To == combat.Idle
	}).(events.CombatStateChanged)
	if idle.Duration() < 100*time.Millisecond {
		t.Fatalf("engagement lasted %v, want at least the timeout", idle.Duration())
	}
}

func TestMonitor_EventsCloseAfterRun(t *testing.T) {
	m := New(Options{Pattern: filepath.Join(t.TempDir(), "*.log"), PollInterval: 10 * time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = m.Run(ctx)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	for range m.Events() {
	}
}

type pollResult struct {
	batch logtail.Batch
	err   error
}

// scriptedSource returns steps in order, then idle forever.
type scriptedSource struct {
	steps []pollResult
	idle  logtail.Batch
}

func (s *scriptedSource) Poll() (logtail.Batch, error) {
	if len(s.steps) == 0 {
		return s.idle, nil
	}
	r := s.steps[0]
	s.steps = s.steps[1:]
	return r.batch, r.err
}

func (s *scriptedSource) Close() error { return nil }

func TestMonitor_ReadErrorIsReportedAndRecovers(t *testing.T) {
	boom := errors.New("input/output error")
	src := &scriptedSource{
		idle: logtail.Batch{Path: "a.log"},
		steps: []pollResult{
			{batch: logtail.Batch{Path: "a.log", Rotated: true}},
			{
				batch: logtail.Batch{Path: "a.log", Lines: []string{"Goblin hits you."}},
				err:   &logtail.IOError{Op: "read", Path: "a.log", Err: boom},
			},
			{batch: logtail.Batch{Path: "a.log", Rotated: true}},
		},
	}
	m, _ := startMonitor(t, Options{
		Source:        src,
		PollInterval:  10 * time.Millisecond,
		CombatTimeout: 10 * time.Second,
	})
	ch := m.Events()

	waitFor(t, ch, "source found", func(ev events.Event) bool {
		s, ok := ev.(events.SourceStatus)
		return ok && s.Path == "a.log" && s.Err == nil
	})
	failed := waitFor(t, ch, "read error", func(ev events.Event) bool {
		s, ok := ev.(events.SourceStatus)
		return ok && s.Err != nil
	}).(events.SourceStatus)
	var ioErr *logtail.IOError
	if !errors.As(failed.Err, &ioErr) || ioErr.Op != "read" || !errors.Is(failed.Err, boom) {
		t.Fatalf("Err = %v, want the read IOError", failed.Err)
	}
	if failed.Path != "a.log" || failed.Waiting {
		t.Fatalf("status = %+v, want an error on a.log", failed)
	}

	waitFor(t, ch, "engaged from lines read before the error", func(ev events.Event) bool {
		c, ok := ev.(events.CombatStateChanged)
		return ok && c.To == combat.Engaged
	})
	waitFor(t, ch, "idle after reopen", func(ev events.Event) bool {
		c, ok := ev.(events.CombatStateChanged)
		return ok && c.To == combat.Idle
	})
	waitFor(t, ch, "recovered status", func(ev events.Event) bool {
		s, ok := ev.(events.SourceStatus)
		return ok && s.Path == "a.log" && s.Err == nil
	})
}

func TestMonitor_LineReadBeforeTimeoutIsAppliedFirst(t *testing.T) {
	clock := t0.Add(50 * time.Millisecond)
	m := New(Options{
		Pattern:       filepath.Join(t.TempDir(), "*.log"),
		CombatTimeout: 20 * time.Second,
		Now:           func() time.Time { return clock },
	})

	m.input.Push(item{kind: itemLine, at: t0, text: "Goblin hits you."})
	m.drain()
	engaged := m.output.Drain()
	if len(engaged) != 1 {
		t.Fatalf("events = %#v, want one combat change", engaged)
	}
	if c := engaged[0].(events.CombatStateChanged); !c.Since.Equal(t0) {
		t.Fatalf("Since = %v, want the read time %v", c.Since, t0)
	}

	// Read just inside the timeout, handled after it would have fired.
	m.input.Push(item{kind: itemLine, at: t0.Add(19900 * time.Millisecond), text: "Goblin hits you."})
	clock = t0.Add(20050 * time.Millisecond)
	m.tick()
	if evs := m.output.Drain(); len(evs) != 0 {
		t.Fatalf("tick emitted %#v, want the engagement kept", evs)
	}

	clock = t0.Add(39950 * time.Millisecond)
	m.tick()
	evs := m.output.Drain()
	if len(evs) != 1 {
		t.Fatalf("events = %#v, want idle after the extended timeout", evs)
	}
	if c := evs[0].(events.CombatStateChanged); c.To != combat.Idle || !c.Since.Equal(t0) {
		t.Fatalf("event = %#v, want idle for the engagement since t0", c)
	}
}
