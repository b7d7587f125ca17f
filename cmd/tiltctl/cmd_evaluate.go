package main

import (
	"context"

	"github.com/spf13/cobra"
)

func newEvaluateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "evaluate",
		Short: "Print the full evaluation: indicator scores, per-asset deltas and allocations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			uc, err := opts.useCase()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			ev, err := uc.Evaluate(ctx)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), ev)
		},
	}
}
