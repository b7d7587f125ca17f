package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"MacroTilt/internal/domain/models"
)

func newHealthCmd(opts *rootOptions) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Report which indicators currently have data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format != "json" && format != "table" {
				return fmt.Errorf("unsupported format %q (json|table)", format)
			}
			uc, err := opts.useCase()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			rows := uc.Health(ctx)
			if format == "json" {
				return writeJSON(cmd.OutOrStdout(), rows)
			}
			return writeHealthTable(cmd, rows)
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "Output format (json|table)")
	return cmd
}

func writeHealthTable(cmd *cobra.Command, rows []models.IndicatorStatus) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INDICATOR\tOK\tAS OF\tPOINTS")
	for _, r := range rows {
		asOf := "-"
		if r.AsOf != nil {
			asOf = r.AsOf.Format(time.DateOnly)
		}
		fmt.Fprintf(w, "%s\t%t\t%s\t%d\n", r.Indicator, r.OK, asOf, r.Points)
	}
	return w.Flush()
}
