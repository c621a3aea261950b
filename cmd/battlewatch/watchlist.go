package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/five82/battlewatch/internal/app"
	"github.com/five82/battlewatch/internal/config"
	"github.com/five82/battlewatch/internal/watchlist"
)

func watchlistCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "watchlist [path]",
		Short: "Print the parsed watchlist and any skipped lines",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				expanded, err := config.ExpandPath(args[0])
				if err != nil {
					return err
				}
				path = expanded
			} else {
				cfg, err := app.LoadConfig(flags.options())
				if err != nil {
					return err
				}
				path = cfg.WatchlistPath
			}

			res, err := watchlist.Load(path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %d moves\n", path, res.List.Len())
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "MOVE\tKEY\tLEVEL")
			res.List.Each(func(e watchlist.Entry) {
				fmt.Fprintf(tw, "%s\t%s\t%d %s\n", e.Move, e.Key, int(e.Level), e.Level)
			})
			if err := tw.Flush(); err != nil {
				return err
			}
			for _, skip := range res.Skipped {
				fmt.Fprintf(cmd.ErrOrStderr(), "skipped %v\n", skip)
			}
			return nil
		},
	}
}
