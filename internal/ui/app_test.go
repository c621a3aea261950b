package ui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/battlewatch/internal/alert"
	"github.com/five82/battlewatch/internal/audio"
	"github.com/five82/battlewatch/internal/combat"
	"github.com/five82/battlewatch/internal/events"
	"github.com/five82/battlewatch/internal/prefs"
	"github.com/five82/battlewatch/internal/state"
	"github.com/five82/battlewatch/internal/watchlist"
)

var t0 = time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC)

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func readyModel(t *testing.T, opts Options) Model {
	t.Helper()
	if opts.PrefsPath == "" {
		opts.PrefsPath = filepath.Join(t.TempDir(), "prefs.toml")
	}
	next, _ := New(opts).Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return next.(Model)
}

func withSnapshot(m Model, store *state.Store) Model {
	next, _ := m.Update(snapshotMsg(store.Snapshot()))
	return next.(Model)
}

func TestView_LoadingBeforeSize(t *testing.T) {
	if got := New(Options{}).View(); got != "Loading..." {
		t.Fatalf("View = %q, want Loading...", got)
	}
}

func TestView_RendersBattleState(t *testing.T) {
	store := &state.Store{}
	m := readyModel(t, Options{Store: store})

	if view := withSnapshot(m, store).View(); !strings.Contains(view, "IDLE / READY") {
		t.Fatalf("idle view missing resting label:\n%s", view)
	}

	store.Apply(events.LoadStatus{Path: "w.txt", Count: 12, At: t0})
	store.Apply(events.SourceStatus{Path: "/logs/chat.log", At: t0})
	store.Apply(events.CombatStateChanged{From: combat.Idle, To: combat.Engaged, Since: t0, At: t0})
	store.Apply(events.AlertRaised{
		Payload:  alert.ForLevel("Meteor", watchlist.Critical),
		Severity: watchlist.Critical,
		At:       t0,
	})

	view := withSnapshot(m, store).View()
	for _, want := range []string{"!!! METEOR !!!", "Moves Loaded: 12", "MONITORING", "/logs/chat.log", "BATTLE TIME", "CRITICAL"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}

func TestView_StatusMessages(t *testing.T) {
	tests := []struct {
		name string
		ev   events.Event
		want string
	}{
		{"waiting", events.SourceStatus{Waiting: true, At: t0}, "WAITING FOR LOGS..."},
		{"missing watchlist", events.LoadStatus{Err: os.ErrNotExist, At: t0}, "FILE NOT FOUND"},
		{"bad watchlist", events.LoadStatus{Err: errors.New("bad yaml"), At: t0}, "LOAD ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &state.Store{}
			store.Apply(tt.ev)
			view := withSnapshot(readyModel(t, Options{Store: store}), store).View()
			if !strings.Contains(view, tt.want) {
				t.Fatalf("view missing %q:\n%s", tt.want, view)
			}
		})
	}
}

func TestUpdate_QuitKey(t *testing.T) {
	m := readyModel(t, Options{})
	for _, msg := range []tea.KeyMsg{runeKey("q"), {Type: tea.KeyCtrlC}} {
		_, cmd := m.Update(msg)
		if cmd == nil {
			t.Fatalf("%q returned nil cmd, want tea.Quit", msg.String())
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Fatalf("%q cmd did not quit", msg.String())
		}
	}
}

func TestUpdate_MuteTogglesAndSaves(t *testing.T) {
	prefsPath := filepath.Join(t.TempDir(), "prefs.toml")
	cue := audio.NewMutable(audio.Nop{}, false)
	m := readyModel(t, Options{Audio: cue, PrefsPath: prefsPath, ThemeName: "Slate"})

	next, _ := m.Update(runeKey("m"))
	m = next.(Model)
	if !cue.Muted() {
		t.Fatalf("Muted = false after m, want true")
	}
	if view := m.View(); !strings.Contains(view, "MUTED") {
		t.Fatalf("view missing MUTED indicator:\n%s", view)
	}

	saved, err := prefs.Load(prefsPath)
	if err != nil {
		t.Fatalf("prefs.Load: %v", err)
	}
	if !saved.Muted || saved.Theme != "Slate" {
		t.Fatalf("saved prefs = %+v, want muted Slate", saved)
	}

	if err := cue.Play(context.Background()); err != nil {
		t.Fatalf("muted Play returned %v", err)
	}
}

func TestUpdate_CycleThemeSaves(t *testing.T) {
	prefsPath := filepath.Join(t.TempDir(), "prefs.toml")
	m := readyModel(t, Options{PrefsPath: prefsPath, ThemeName: "Nightfox"})

	next, _ := m.Update(runeKey("T"))
	if got := next.(Model).theme.Name; got != "Kanagawa" {
		t.Fatalf("theme = %q, want Kanagawa", got)
	}
	saved, err := prefs.Load(prefsPath)
	if err != nil {
		t.Fatalf("prefs.Load: %v", err)
	}
	if saved.Theme != "Kanagawa" {
		t.Fatalf("saved theme = %q, want Kanagawa", saved.Theme)
	}
}

func TestUpdate_ReloadKey(t *testing.T) {
	var calls atomic.Int32
	done := make(chan struct{})
	m := readyModel(t, Options{Reload: func() {
		calls.Add(1)
		close(done)
	}})

	m.Update(runeKey("r"))
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reload was not called")
	}
	if calls.Load() != 1 {
		t.Fatalf("reload calls = %d, want 1", calls.Load())
	}
}

func TestApplySnapshot_TimerFollowsEngagement(t *testing.T) {
	m := readyModel(t, Options{})

	engaged := state.Snapshot{Combat: combat.Engaged, Since: t0}
	if cmd := m.applySnapshot(engaged); cmd == nil {
		t.Fatalf("new engagement returned nil cmd, want stopwatch restart")
	}
	if !m.battleSince.Equal(t0) {
		t.Fatalf("battleSince = %v, want %v", m.battleSince, t0)
	}
	if cmd := m.applySnapshot(engaged); cmd != nil {
		t.Fatalf("same engagement returned a cmd, want nil")
	}

	m.applySnapshot(state.Snapshot{Combat: combat.Idle, LastBattle: 83 * time.Second})
	if !m.battleSince.IsZero() {
		t.Fatalf("battleSince = %v after idle, want zero", m.battleSince)
	}
	if view := m.View(); !strings.Contains(view, "LAST BATTLE 01:23") {
		t.Fatalf("view missing last battle time:\n%s", view)
	}
}
