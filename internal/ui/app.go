package ui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/stopwatch"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/five82/battlewatch/internal/audio"
	"github.com/five82/battlewatch/internal/combat"
	"github.com/five82/battlewatch/internal/prefs"
	"github.com/five82/battlewatch/internal/state"
)

// Options configures the UI.
type Options struct {
	Store     *state.Store
	Audio     *audio.Mutable
	Reload    func()
	Logger    *zap.Logger
	PollTick  time.Duration
	ThemeName string
	PrefsPath string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	store     *state.Store
	audio     *audio.Mutable
	reload    func()
	logger    *zap.Logger
	prefsPath string
	pollTick  time.Duration

	// UI state
	theme  Theme
	keys   keyMap
	help   help.Model
	width  int
	height int
	ready  bool

	// Battle timer
	stopwatch   stopwatch.Model
	battleSince time.Time

	// Data state
	snapshot state.Snapshot
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	pollTick := opts.PollTick
	if pollTick <= 0 {
		pollTick = 250 * time.Millisecond
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	return Model{
		store:     opts.Store,
		audio:     opts.Audio,
		reload:    opts.Reload,
		logger:    logger,
		prefsPath: prefsPath,
		pollTick:  pollTick,
		theme:     GetTheme(opts.ThemeName),
		keys:      DefaultKeyMap(),
		help:      help.New(),
		stopwatch: stopwatch.NewWithInterval(time.Second),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnterAltScreen,
		tickCmd(m.pollTick),
	}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true
		return m, nil

	case tickMsg:
		var cmds []tea.Cmd
		if m.store != nil {
			cmds = append(cmds, fetchSnapshotCmd(m.store))
		}
		cmds = append(cmds, tickCmd(m.pollTick))
		return m, tea.Batch(cmds...)

	case snapshotMsg:
		return m, m.applySnapshot(state.Snapshot(msg))
	}

	var cmd tea.Cmd
	m.stopwatch, cmd = m.stopwatch.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.Mute):
		if m.audio != nil {
			m.audio.SetMuted(!m.audio.Muted())
			m.logger.Info("audio cue toggled", zap.Bool("muted", m.audio.Muted()))
			m.savePrefs()
		}
		return m, nil

	case key.Matches(msg, m.keys.Reload):
		if m.reload != nil {
			go m.reload()
		}
		return m, nil
	}
	return m, nil
}

// applySnapshot stores snap and keeps the battle stopwatch in step with the
// engagement it reports.
func (m *Model) applySnapshot(snap state.Snapshot) tea.Cmd {
	m.snapshot = snap
	if snap.Combat == combat.Engaged {
		if snap.Since.Equal(m.battleSince) {
			return nil
		}
		m.battleSince = snap.Since
		return tea.Sequence(m.stopwatch.Reset(), m.stopwatch.Start())
	}
	m.battleSince = time.Time{}
	if m.stopwatch.Running() {
		return m.stopwatch.Stop()
	}
	return nil
}

func (m Model) muted() bool {
	return m.audio != nil && m.audio.Muted()
}

func (m Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	p := prefs.Prefs{Theme: m.theme.Name, Muted: m.muted()}
	if err := prefs.Save(m.prefsPath, p); err != nil {
		m.logger.Warn("save prefs failed", zap.String("path", m.prefsPath), zap.Error(err))
	}
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

// NewProgram builds the Bubble Tea program without starting it, so callers
// can wire Send or Quit before Run.
func NewProgram(opts Options) *tea.Program {
	return tea.NewProgram(New(opts), tea.WithAltScreen())
}

// Run starts the Bubble Tea program and blocks until the user quits.
func Run(opts Options) error {
	_, err := NewProgram(opts).Run()
	return err
}
