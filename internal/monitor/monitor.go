package monitor

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/five82/battlewatch/internal/audio"
	"github.com/five82/battlewatch/internal/events"
	"github.com/five82/battlewatch/internal/logtail"
	"github.com/five82/battlewatch/internal/watchlist"
)

const (
	// DefaultPollInterval is the cadence while a log file is available.
	DefaultPollInterval = 100 * time.Millisecond
	// DefaultBackoff is the wait between discovery attempts when no log
	// file matches.
	DefaultBackoff = 2 * time.Second
)

// LogSource is what the I/O worker polls. *logtail.Source is the
// implementation used outside tests.
type LogSource interface {
	Poll() (logtail.Batch, error)
	Close() error
}

// Options configure a Monitor.
type Options struct {
	Pattern       string
	PollInterval  time.Duration
	Backoff       time.Duration
	CombatTimeout time.Duration
	AlertReset    time.Duration
	Watchlist     *watchlist.Store
	Cue           audio.Cue
	Logger        *zap.Logger
	// Now overrides the clock used to stamp events.
	Now func() time.Time
	// Source replaces the glob-driven logtail.Source built from Pattern.
	Source LogSource
}

type itemKind int

const (
	itemLine itemKind = iota
	itemRotated
	itemSource
	itemLoad
)

// item is what the I/O worker hands to the consumer. at is when the worker
// read it.
type item struct {
	kind    itemKind
	at      time.Time
	text    string
	path    string
	waiting bool
	err     error
	load    watchlist.Status
}

// Monitor tails the log on an I/O worker goroutine and applies every line to
// an Engine on a single consumer goroutine. The two are joined by an
// unbounded queue, so a slow disk never delays timers and a slow consumer
// never stalls reads.
type Monitor struct {
	opts   Options
	now    func() time.Time
	logger *zap.Logger
	source LogSource
	engine *Engine
	input  *Queue[item]
	output *Queue[events.Event]
	events chan events.Event
	// last is the latest time handed to the engine.
	last time.Time
}

// New returns a Monitor. Nothing runs until Run is called.
func New(opts Options) *Monitor {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.Backoff <= 0 {
		opts.Backoff = DefaultBackoff
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	source := opts.Source
	if source == nil {
		source = logtail.NewSource(opts.Pattern)
	}
	return &Monitor{
		opts:   opts,
		now:    now,
		logger: opts.Logger,
		source: source,
		engine: NewEngine(EngineOptions{
			Watchlist:     opts.Watchlist,
			CombatTimeout: opts.CombatTimeout,
			AlertReset:    opts.AlertReset,
			Cue:           opts.Cue,
			Logger:        opts.Logger,
		}),
		input:  NewQueue[item](),
		output: NewQueue[events.Event](),
		events: make(chan events.Event),
	}
}

// Events returns the ordered stream of events for the presentation layer.
// The channel is closed when Run returns.
func (m *Monitor) Events() <-chan events.Event { return m.events }

// ReportLoad queues a watchlist load result so that it reaches the
// presentation layer in order with everything else. It is safe to call from
// any goroutine, before or during Run.
func (m *Monitor) ReportLoad(status watchlist.Status) {
	m.input.Push(item{kind: itemLoad, at: m.now(), load: status})
}

// Run starts the I/O worker and runs the consumer until ctx is done.
func (m *Monitor) Run(ctx context.Context) error {
	m.engine.ctx = ctx

	relayDone := make(chan struct{})
	go func() {
		defer close(relayDone)
		defer close(m.events)
		for ev := range m.output.Pipe(ctx) {
			select {
			case m.events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		m.work(ctx)
	}()

	m.consume(ctx)
	m.input.Close()
	m.output.Close()
	<-workerDone
	<-relayDone
	return nil
}

// work is the I/O side: discovery, open and read, then sleep.
func (m *Monitor) work(ctx context.Context) {
	defer func() { _ = m.source.Close() }()

	var (
		last sourceKey
		at   time.Time
	)
	report := func(key sourceKey, err error) {
		if key == last {
			return
		}
		last = key
		m.input.Push(item{kind: itemSource, at: at, path: key.path, waiting: key.waiting, err: err})
	}

	for {
		wait := m.opts.PollInterval
		batch, err := m.source.Poll()
		at = m.now()

		switch {
		case err == nil:
		case errors.Is(err, logtail.ErrNoLogFile), errors.Is(err, filepath.ErrBadPattern):
			wait = m.opts.Backoff
			report(sourceKey{waiting: true, errText: badPatternText(err)}, badPatternErr(err))
		default:
			var ioErr *logtail.IOError
			path := ""
			if errors.As(err, &ioErr) {
				path = ioErr.Path
			}
			report(sourceKey{path: path, errText: err.Error()}, err)
		}

		if batch.Rotated {
			m.input.Push(item{kind: itemRotated, at: at, path: batch.Path})
		}
		if batch.Path != "" && err == nil {
			report(sourceKey{path: batch.Path}, nil)
		}
		for _, line := range batch.Lines {
			m.input.Push(item{kind: itemLine, at: at, text: line})
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// consume is the single thread of state: every Engine call happens here.
func (m *Monitor) consume(ctx context.Context) {
	ticker := time.NewTicker(m.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.input.Ready():
			m.drain()
		case <-ticker.C:
			m.tick()
		}
	}
}

func (m *Monitor) drain() {
	for _, it := range m.input.Drain() {
		m.publish(m.handle(it))
	}
}

// tick applies anything already read before checking timers, so a line read
// just ahead of the timeout keeps the engagement alive.
func (m *Monitor) tick() {
	m.drain()
	m.publish(m.engine.Tick(m.stamp(m.now())))
}

// stamp keeps engine time from running backwards when an item read earlier
// is handled after a tick.
func (m *Monitor) stamp(at time.Time) time.Time {
	if at.IsZero() {
		at = m.now()
	}
	if at.Before(m.last) {
		at = m.last
	}
	m.last = at
	return at
}

func (m *Monitor) handle(it item) []events.Event {
	now := m.stamp(it.at)
	switch it.kind {
	case itemLine:
		return m.engine.Line(now, it.text)
	case itemRotated:
		return m.engine.Rotate(now, it.path)
	case itemSource:
		return m.engine.Source(now, it.path, it.waiting, it.err)
	case itemLoad:
		return m.engine.Load(now, it.load)
	default:
		return nil
	}
}

func (m *Monitor) publish(evs []events.Event) {
	for _, ev := range evs {
		m.output.Push(ev)
	}
}

type sourceKey struct {
	path    string
	waiting bool
	errText string
}

func badPatternErr(err error) error {
	if errors.Is(err, filepath.ErrBadPattern) {
		return err
	}
	return nil
}

func badPatternText(err error) string {
	if errors.Is(err, filepath.ErrBadPattern) {
		return err.Error()
	}
	return ""
}
