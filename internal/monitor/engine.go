package monitor

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/five82/battlewatch/internal/alert"
	"github.com/five82/battlewatch/internal/audio"
	"github.com/five82/battlewatch/internal/classify"
	"github.com/five82/battlewatch/internal/combat"
	"github.com/five82/battlewatch/internal/events"
	"github.com/five82/battlewatch/internal/watchlist"
)

// EngineOptions configure an Engine.
type EngineOptions struct {
	Watchlist     *watchlist.Store
	CombatTimeout time.Duration
	AlertReset    time.Duration
	Cue           audio.Cue
	Logger        *zap.Logger
}

// Engine owns the combat state machine and the alert scheduler. All of its
// methods must be called from one goroutine; each returns the events it
// produced, in order.
type Engine struct {
	ctx    context.Context
	list   *watchlist.Store
	combat *combat.Machine
	alerts *alert.Scheduler
	cue    audio.Cue
	logger *zap.Logger
}

// NewEngine returns an Idle engine.
func NewEngine(opts EngineOptions) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	list := opts.Watchlist
	if list == nil {
		list = watchlist.NewStore(nil)
	}
	machine := combat.New(opts.CombatTimeout)
	return &Engine{
		ctx:    context.Background(),
		list:   list,
		combat: machine,
		alerts: alert.New(opts.AlertReset, machine),
		cue:    opts.Cue,
		logger: logger,
	}
}

// State returns the combat state.
func (e *Engine) State() combat.State { return e.combat.State() }

// Since returns when the current engagement began.
func (e *Engine) Since() (time.Time, bool) { return e.combat.Since() }

// Alert returns the current display payload.
func (e *Engine) Alert() alert.Payload { return e.alerts.Current() }

// AlertDeadline returns when the current alert clears.
func (e *Engine) AlertDeadline() (time.Time, bool) { return e.alerts.Deadline() }

// Line classifies one log line observed at now.
func (e *Engine) Line(now time.Time, text string) []events.Event {
	res := classify.Classify(text, e.list.Current())
	if !res.Active() {
		return nil
	}

	var out []events.Event
	if tr, ok := e.combat.Observe(now); ok {
		e.alerts.Sync()
		e.logger.Info("combat started")
		out = append(out, combatEvent(tr))
	}
	if res.Kind != classify.Match {
		return out
	}

	payload := e.alerts.OnMatch(res.Move, res.Level, now)
	e.logger.Info("watchlist match",
		zap.String("move", res.Move),
		zap.Stringer("level", res.Level),
		zap.String("line", text),
	)
	out = append(out, events.AlertRaised{Payload: payload, Severity: res.Level, At: now})
	if payload.Audible() {
		e.playCue()
	}
	return out
}

// Rotate handles a switch to a new log file. Any engagement ends immediately
// and a pending alert is dropped.
func (e *Engine) Rotate(now time.Time, path string) []events.Event {
	e.logger.Info("monitoring log", zap.String("path", path))

	var out []events.Event
	if tr, ok := e.combat.Reset(now); ok {
		e.logCombatStopped(tr, "log rotated")
		out = append(out, combatEvent(tr))
	}
	if payload, ok := e.alerts.Cancel(); ok {
		out = append(out, events.AlertCleared{Payload: payload, At: now})
	}
	return out
}

// Tick runs the inactivity timeout and then the alert reset. It must be
// called every cycle, including cycles that read no lines.
func (e *Engine) Tick(now time.Time) []events.Event {
	var out []events.Event
	if tr, ok := e.combat.Tick(now); ok {
		e.alerts.Sync()
		e.logCombatStopped(tr, "timeout")
		out = append(out, combatEvent(tr))
	}
	if payload, ok := e.alerts.Tick(now); ok {
		out = append(out, events.AlertCleared{Payload: payload, At: now})
	}
	return out
}

// Load reports a watchlist load.
func (e *Engine) Load(now time.Time, status watchlist.Status) []events.Event {
	for _, skip := range status.Skipped {
		e.logger.Warn("skipping watchlist entry",
			zap.String("path", status.Path),
			zap.Int("line", skip.Line),
			zap.String("reason", skip.Reason),
			zap.String("text", skip.Text),
		)
	}
	if status.Err != nil {
		e.logger.Error("watchlist load failed", zap.String("path", status.Path), zap.Error(status.Err))
	} else {
		e.logger.Info("watchlist loaded",
			zap.String("path", status.Path),
			zap.Int("moves", status.Count),
			zap.Int("skipped", len(status.Skipped)),
		)
	}
	return []events.Event{events.LoadStatus{
		Path:    status.Path,
		Count:   status.Count,
		Skipped: len(status.Skipped),
		Err:     status.Err,
		At:      now,
	}}
}

// Source reports the state of log discovery.
func (e *Engine) Source(now time.Time, path string, waiting bool, err error) []events.Event {
	switch {
	case err != nil:
		e.logger.Warn("log source error", zap.String("path", path), zap.Error(err))
	case waiting:
		e.logger.Info("waiting for log file")
	}
	return []events.Event{events.SourceStatus{Path: path, Waiting: waiting, Err: err, At: now}}
}

func (e *Engine) playCue() {
	if e.cue == nil {
		return
	}
	ctx, cue, logger := e.ctx, e.cue, e.logger
	go func() {
		if err := cue.Play(ctx); err != nil {
			logger.Warn("audio cue failed", zap.Error(err))
		}
	}()
}

func (e *Engine) logCombatStopped(tr combat.Transition, reason string) {
	e.logger.Info("combat stopped",
		zap.String("reason", reason),
		zap.String("duration", combat.FormatDuration(tr.Duration())),
	)
}

func combatEvent(tr combat.Transition) events.CombatStateChanged {
	return events.CombatStateChanged{From: tr.From, To: tr.To, Since: tr.Since, At: tr.At}
}
