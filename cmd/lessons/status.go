package main

import (
	"fmt"
	"time"

	"github.com/Veraticus/lessons-ledger/internal/cli"
	"github.com/Veraticus/lessons-ledger/internal/model"
	"github.com/Veraticus/lessons-ledger/internal/report"
	"github.com/spf13/cobra"
)

func statusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <open|paid|transferred>",
		Short: "Set the payment status of a month's rows",
		Long: `Set the payment status of every ledger row paid in the given month.

Paid and transferred rows are locked against edits except for the status
column; setting a month back to open unlocks them.`,
		Args: cobra.ExactArgs(1),
		RunE: runStatus,
	}

	cmd.Flags().StringP("month", "m", "", "payment month as MM-YYYY (default: current month)")

	return cmd
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	monthStr, _ := cmd.Flags().GetString("month")

	sess, err := openSession(ctx, false)
	if err != nil {
		return err
	}
	defer sess.Close()

	loc := sess.settings.Location
	month, err := monthFlag(monthStr, func() model.Month { return model.MonthOf(time.Now().In(loc)) })
	if err != nil {
		return err
	}

	bar := cli.NewProgress(cmd.ErrOrStderr(), report.StatusBatchSize, "Updating "+month.Label())
	n, err := sess.svc.ApplyStatusForMonth(ctx, month, args[0], bar.Callback())
	if err != nil {
		return err
	}
	if n > 0 {
		bar.Finish()
	}

	if n == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo(fmt.Sprintf("No rows paid in %s.", month.Label())))
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Updated %d rows of %s.", n, month.Label())))
	return nil
}
