package main

import (
	"fmt"

	"github.com/Veraticus/lessons-ledger/internal/cli"
	"github.com/spf13/cobra"
)

func recomputeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recompute",
		Short: "Recompute remaining quotas of the whole ledger",
		Long: `Recompute the remaining-quota column and its over-quota warnings for
every ledger row, in ledger order. Rows whose values are already correct
are not rewritten.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			sess, err := openSession(ctx, false)
			if err != nil {
				return err
			}
			defer sess.Close()

			sum, err := sess.svc.RecomputeQuotas(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderQuotaSummary(sum))
			return nil
		},
	}
}
