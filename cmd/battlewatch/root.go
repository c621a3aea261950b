package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/five82/battlewatch/internal/app"
)

// rootFlags are shared by every command that loads the config.
type rootFlags struct {
	configPath    string
	glob          string
	watchlistPath string
	headless      bool
	poll          time.Duration
}

func (f *rootFlags) options() app.Options {
	return app.Options{
		ConfigPath:    f.configPath,
		Glob:          f.glob,
		WatchlistPath: f.watchlistPath,
		PollInterval:  f.poll,
		Headless:      f.headless,
	}
}

// NewRoot builds the battlewatch command tree.
func NewRoot() *cobra.Command {
	flags := &rootFlags{}
	root := &cobra.Command{
		Use:           "battlewatch",
		Short:         "Watch a game chat log and flag dangerous moves",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := flags.options()
			opts.Stdout = cmd.OutOrStdout()
			opts.Stderr = cmd.ErrOrStderr()
			return app.Run(cmd.Context(), opts)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "config file (default ~/.config/battlewatch/config.toml)")
	pf.StringVar(&flags.glob, "glob", "", "log file glob, overrides log_glob")
	pf.StringVar(&flags.watchlistPath, "watchlist", "", "watchlist file, overrides watchlist")
	root.Flags().BoolVar(&flags.headless, "headless", false, "print events instead of starting the TUI")
	root.Flags().DurationVar(&flags.poll, "poll", 0, "log poll interval, overrides poll_interval")

	root.AddCommand(
		watchlistCmd(flags),
		replayCmd(flags),
	)
	return root
}
