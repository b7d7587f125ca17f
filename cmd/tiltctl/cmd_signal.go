package main

import (
	"context"

	"github.com/spf13/cobra"
)

func newSignalCmd(opts *rootOptions) *cobra.Command {
	var ticker string
	cmd := &cobra.Command{
		Use:   "signal",
		Short: "Print the rebalancing directive for one ticker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			uc, err := opts.useCase()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			rec, err := uc.Signal(ctx, ticker)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), rec)
		},
	}
	cmd.Flags().StringVar(&ticker, "ticker", "", "Ticker symbol, e.g. SPY")
	_ = cmd.MarkFlagRequired("ticker")
	return cmd
}
