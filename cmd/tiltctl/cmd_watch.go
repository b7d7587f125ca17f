package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"MacroTilt/internal/service/feedclient"
	"MacroTilt/pkg/logger"
	"MacroTilt/pkg/util"
)

func newWatchCmd(opts *rootOptions) *cobra.Command {
	var (
		baseURL string
		tickers string
		count   int
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream directive changes from a running server's live feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list := util.SplitList(tickers)
			if len(list) == 0 {
				return fmt.Errorf("--tickers is required")
			}
			level := "warn"
			if opts.verbose {
				level = "debug"
			}
			log, err := logger.New(&logger.Config{Level: level, Format: "console", Output: "stderr"})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			connectCtx, cancel := context.WithTimeout(ctx, opts.timeout)
			c := feedclient.New(baseURL, list, 30*time.Second, log)
			err = c.Connect(connectCtx)
			cancel()
			if err != nil {
				return err
			}
			defer c.Close()

			msgs, errs := c.Read(ctx)
			seen := 0
			for m := range msgs {
				if err := writeJSON(cmd.OutOrStdout(), m); err != nil {
					return err
				}
				seen++
				if count > 0 && seen >= count {
					return nil
				}
			}
			return <-errs
		},
	}
	cmd.Flags().StringVar(&baseURL, "url", "http://localhost:8080", "Server base URL")
	cmd.Flags().StringVar(&tickers, "tickers", "", "Comma-separated tickers to follow")
	cmd.Flags().IntVar(&count, "count", 0, "Exit after this many messages (0 streams until interrupted)")
	return cmd
}
