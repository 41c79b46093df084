package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/Veraticus/lessons-ledger/internal/cli"
	"github.com/Veraticus/lessons-ledger/internal/common"
	"github.com/Veraticus/lessons-ledger/internal/model"
	"github.com/spf13/cobra"
)

func editCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <row> <column> <value>",
		Short: "Edit one ledger cell",
		Long: `Edit one ledger cell the way a manual edit in the workbook would.

The row is the sheet row number. The column is a 1-based number, a column
letter or a header name. Editing the status locks or unlocks the row;
editing the date refreshes the row's message. Locked rows only accept a
status change.`,
		Args: cobra.ExactArgs(3),
		RunE: runEdit,
	}
	return cmd
}

func runEdit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	row, err := strconv.Atoi(args[0])
	if err != nil || row < 2 {
		return fmt.Errorf("row must be a sheet row number of 2 or more, got %q", args[0])
	}

	sess, err := openSession(ctx, false)
	if err != nil {
		return err
	}
	defer sess.Close()

	col, err := resolveColumn(ctx, sess.store, sess.settings.Sheets.Ledger, args[1])
	if err != nil {
		return err
	}

	value := cellValue(args[2])
	if statusCol, err := resolveColumn(ctx, sess.store, sess.settings.Sheets.Ledger, sess.settings.Ledger.Status); err == nil && col == statusCol {
		if st, ok := model.ParseStatus(args[2]); ok {
			value = string(st)
		}
	}

	res, err := sess.svc.EditCell(ctx, row, col, value)
	if errors.Is(err, common.ErrRowLocked) {
		return common.NewUserError(fmt.Sprintf("Row %d is locked; change its status first", row), err)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Row %d updated.", res.Row)))
	if res.Locked {
		fmt.Fprintln(out, cli.FormatInfo(cli.LockIcon+" Row is locked."))
	}
	if res.Message != "" {
		fmt.Fprintln(out, cli.FormatInfo(res.Message))
	}
	return nil
}
