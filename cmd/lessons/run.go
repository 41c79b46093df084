package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Veraticus/lessons-ledger/internal/cli"
	"github.com/Veraticus/lessons-ledger/internal/ledger"
	"github.com/Veraticus/lessons-ledger/internal/model"
	"github.com/Veraticus/lessons-ledger/internal/report"
	"github.com/Veraticus/lessons-ledger/internal/tui"
	"github.com/spf13/cobra"
)

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Generate the lesson report of a month",
		Long: `Generate the ledger rows of a month and merge them into the workbook.

Merge modes:
  skip       keep existing rows, add only missing lessons (default)
  overwrite  rewrite existing open rows, locked rows stay untouched
  reset      delete the month's open rows and rebuild them

Scopes: both (default), group, private.`,
		RunE: runReport,
	}

	cmd.Flags().StringP("month", "m", "", "target month as MM-YYYY (default: current month)")
	cmd.Flags().String("mode", string(ledger.ModeSkip), "merge mode (skip, overwrite, reset)")
	cmd.Flags().String("scope", string(report.ScopeBoth), "which lessons to generate (both, group, private)")
	cmd.Flags().Bool("dry-run", false, "compute the run on a copy of the workbook without writing")
	cmd.Flags().BoolP("interactive", "i", false, "choose month, mode and scope in a form")
	cmd.Flags().BoolP("yes", "y", false, "do not ask before a reset")

	return cmd
}

func runReport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	monthStr, _ := cmd.Flags().GetString("month")
	modeStr, _ := cmd.Flags().GetString("mode")
	scopeStr, _ := cmd.Flags().GetString("scope")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	interactive, _ := cmd.Flags().GetBool("interactive")
	yes, _ := cmd.Flags().GetBool("yes")

	sess, err := openSession(ctx, dryRun)
	if err != nil {
		return err
	}
	defer sess.Close()

	loc := sess.settings.Location
	month, err := monthFlag(monthStr, func() model.Month { return model.MonthOf(time.Now().In(loc)) })
	if err != nil {
		return err
	}
	mode, err := ledger.ParseMode(modeStr)
	if err != nil {
		return err
	}
	scope, err := report.ParseScope(scopeStr)
	if err != nil {
		return err
	}
	req := report.Request{Mode: mode, Scope: scope, Month: month}

	if interactive {
		req, err = tui.Run(ctx, tui.WithRequest(req), tui.WithIO(cmd.InOrStdin(), cmd.OutOrStdout()))
		if errors.Is(err, tui.ErrCancelled) {
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Cancelled, nothing was written."))
			return nil
		}
		if err != nil {
			return err
		}
		// The form already asked for confirmation of a reset.
		yes = true
	}

	if req.Mode == ledger.ModeReset && !yes && !dryRun {
		question := fmt.Sprintf("Delete all open rows of %s and rebuild them?", req.Month.Label())
		ok, err := cli.NewConfirmer(cmd.InOrStdin(), cmd.OutOrStdout()).Confirm(ctx, question)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Reset aborted."))
			return nil
		}
	}

	slog.Info("Starting run",
		"month", req.Month.String(),
		"mode", req.Mode,
		"scope", req.Scope,
		"backend", sess.settings.Backend,
		"dry_run", dryRun)

	sum, err := sess.svc.RunReport(ctx, req)
	if err != nil {
		if sum.Message != "" {
			fmt.Fprintln(os.Stderr, sum.Message)
		}
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.RenderSummary(sum, dryRun))
	return nil
}
