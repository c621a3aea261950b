package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/five82/battlewatch/internal/app"
	"github.com/five82/battlewatch/internal/classify"
	"github.com/five82/battlewatch/internal/logtail"
	"github.com/five82/battlewatch/internal/watchlist"
)

const defaultReplayLines = 200

func replayCmd(flags *rootFlags) *cobra.Command {
	var lines int
	cmd := &cobra.Command{
		Use:   "replay [log]",
		Short: "Classify the last lines of a log without starting the monitor",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig(flags.options())
			if err != nil {
				return err
			}

			path := ""
			if len(args) == 1 {
				path = args[0]
			} else if path, err = logtail.Latest(cfg.LogGlob); err != nil {
				return fmt.Errorf("find log: %w", err)
			}

			list := watchlist.New()
			res, err := watchlist.Load(cfg.WatchlistPath)
			switch {
			case err == nil:
				list = res.List
			case errors.Is(err, os.ErrNotExist):
				fmt.Fprintf(cmd.ErrOrStderr(), "watchlist %s not found, matching activity only\n", cfg.WatchlistPath)
			default:
				return err
			}

			text, err := logtail.Read(path, lines)
			if err != nil {
				return fmt.Errorf("read log: %w", err)
			}

			out := cmd.OutOrStdout()
			var active, matched int
			for _, line := range text {
				r := classify.Classify(line, list)
				switch r.Kind {
				case classify.Match:
					matched++
					active++
					fmt.Fprintf(out, "%-8s  %-20s  %s\n", r.Level, r.Move, line)
				case classify.Activity:
					active++
					fmt.Fprintf(out, "%-8s  %-20s  %s\n", "activity", "", line)
				}
			}
			fmt.Fprintf(out, "%s: %d lines, %d activity, %d matches\n", path, len(text), active, matched)
			return nil
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", defaultReplayLines, "number of trailing lines to classify (0 for all)")
	return cmd
}
