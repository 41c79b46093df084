package main

import (
	"fmt"

	"github.com/Veraticus/lessons-ledger/internal/cli"
	"github.com/Veraticus/lessons-ledger/internal/common"
	"github.com/Veraticus/lessons-ledger/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func logsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the run journal",
		Long: `Show run log entries or run outcomes from the local journal.

Without --run the most recent entries of all runs are shown.`,
		RunE: runLogs,
	}

	cmd.Flags().String("run", "", "only show entries of this run id")
	cmd.Flags().Int("limit", 50, "maximum number of entries")
	cmd.Flags().Bool("audits", false, "show run outcomes instead of log entries")

	return cmd
}

func runLogs(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	runID, _ := cmd.Flags().GetString("run")
	limit, _ := cmd.Flags().GetInt("limit")
	audits, _ := cmd.Flags().GetBool("audits")

	settings, err := config.Load(viper.GetViper())
	if err != nil {
		return common.NewUserError("Invalid configuration", err)
	}
	journal, err := openJournal(ctx, settings)
	if err != nil {
		return err
	}
	defer func() { _ = journal.Close() }()

	out := cmd.OutOrStdout()
	if audits {
		records, err := journal.ListAudits(ctx, limit)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, cli.FormatTitle(cli.ChartIcon+" Runs"))
		fmt.Fprintln(out, cli.RenderAudits(records, settings.Location))
		return nil
	}

	entries, err := journal.ListLogs(ctx, runID, limit)
	if err != nil {
		return err
	}
	title := "Run log"
	if runID != "" {
		title += " " + runID
	}
	fmt.Fprintln(out, cli.FormatTitle(cli.LedgerIcon+" "+title))
	fmt.Fprintln(out, cli.RenderLogs(entries, settings.Location))
	return nil
}
