package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/five82/battlewatch/internal/audio"
	"github.com/five82/battlewatch/internal/config"
	"github.com/five82/battlewatch/internal/logging"
	"github.com/five82/battlewatch/internal/monitor"
	"github.com/five82/battlewatch/internal/prefs"
	"github.com/five82/battlewatch/internal/state"
	"github.com/five82/battlewatch/internal/ui"
	"github.com/five82/battlewatch/internal/watchlist"
)

// Options configure the battlewatch application. Zero values defer to the
// config file.
type Options struct {
	ConfigPath    string
	PrefsPath     string // empty uses default ~/.config/battlewatch/prefs.toml
	Glob          string
	WatchlistPath string
	PollInterval  time.Duration
	Headless      bool
	Stdout        io.Writer
	Stderr        io.Writer
}

// Run boots the monitor and the battle display until the context is
// cancelled or the user quits.
func Run(ctx context.Context, opts Options) error {
	cfg, err := LoadConfig(opts)
	if err != nil {
		return err
	}
	stdout, stderr := opts.Stdout, opts.Stderr
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}

	userPrefs, prefsErr := prefs.Load(opts.PrefsPath)

	logOpts := logging.Options{Level: cfg.LogLevel}
	if opts.Headless {
		logOpts.Console = stderr
	} else {
		logOpts.File = cfg.LogFile
	}
	logger, closeLog, err := logging.New(logOpts)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer func() { _ = closeLog() }()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger.Info("battlewatch starting",
		zap.String("log_glob", cfg.LogGlob),
		zap.String("watchlist", cfg.WatchlistPath),
		zap.Duration("combat_timeout", cfg.CombatTimeout),
		zap.Duration("alert_reset", cfg.AlertReset),
		zap.Bool("headless", opts.Headless),
	)
	if prefsErr != nil {
		logger.Warn("using default prefs", zap.Error(prefsErr))
	}

	list := watchlist.NewStore(nil)
	cue := audio.NewMutable(buildCue(cfg, stdout), userPrefs.Muted)
	mon := monitor.New(monitor.Options{
		Pattern:       cfg.LogGlob,
		PollInterval:  cfg.PollInterval,
		Backoff:       cfg.BackoffInterval,
		CombatTimeout: cfg.CombatTimeout,
		AlertReset:    cfg.AlertReset,
		Watchlist:     list,
		Cue:           cue,
		Logger:        logger.Named("monitor"),
	})

	reload := list.Reloader(cfg.WatchlistPath, mon.ReportLoad)
	reload()
	go func() {
		if err := watchlist.WatchFile(ctx, cfg.WatchlistPath, 0, logger.Named("watchlist"), reload); err != nil {
			logger.Warn("watchlist hot reload disabled", zap.Error(err))
		}
	}()

	store := &state.Store{}
	monDone := make(chan error, 1)
	go func() { monDone <- mon.Run(ctx) }()

	if opts.Headless {
		Forward(ctx, mon.Events(), store, printer(stdout))
		cancel()
		return <-monDone
	}

	go Forward(ctx, mon.Events(), store, nil)

	program := ui.NewProgram(ui.Options{
		Store:     store,
		Audio:     cue,
		Reload:    reload,
		Logger:    logger.Named("ui"),
		PollTick:  cfg.PollInterval,
		ThemeName: userPrefs.Theme,
		PrefsPath: opts.PrefsPath,
	})
	go func() {
		<-ctx.Done()
		program.Quit()
	}()

	_, uiErr := program.Run()
	cancel()
	if err := <-monDone; err != nil && uiErr == nil {
		uiErr = err
	}
	logger.Info("battlewatch stopped")
	return uiErr
}

// LoadConfig loads the config file and applies command-line overrides.
func LoadConfig(opts Options) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	if opts.Glob != "" {
		if cfg.LogGlob, err = config.ExpandPath(opts.Glob); err != nil {
			return config.Config{}, fmt.Errorf("log glob: %w", err)
		}
	}
	if opts.WatchlistPath != "" {
		if cfg.WatchlistPath, err = config.ExpandPath(opts.WatchlistPath); err != nil {
			return config.Config{}, fmt.Errorf("watchlist path: %w", err)
		}
	}
	if opts.PollInterval > 0 {
		cfg.PollInterval = opts.PollInterval
	}
	return cfg, nil
}

func buildCue(cfg config.Config, bell io.Writer) audio.Cue {
	var cues audio.Multi
	if cfg.Bell {
		cues = append(cues, audio.Bell{W: bell})
	}
	if len(cfg.AudioCommand) > 0 {
		cues = append(cues, audio.Command{Args: cfg.AudioCommand})
	}
	switch len(cues) {
	case 0:
		return audio.Nop{}
	case 1:
		return cues[0]
	default:
		return cues
	}
}
