package sheets

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Veraticus/lessons-ledger/internal/service"
	"google.golang.org/api/sheets/v4"
)

// PaintRows implements service.Painter.
func (s *Store) PaintRows(ctx context.Context, name string, paints []service.RowPaint) error {
	if len(paints) == 0 {
		return nil
	}
	id, err := s.sheetID(ctx, name)
	if err != nil {
		return err
	}

	requests := make([]*sheets.Request, 0, len(paints))
	for _, p := range paints {
		color, err := parseHex(p.Color)
		if err != nil {
			return err
		}
		requests = append(requests, &sheets.Request{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: gridRange(id, p.Row, p.Col),
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{BackgroundColor: color},
				},
				Fields: "userEnteredFormat.backgroundColor",
			},
		})
	}

	for i := 0; i < len(requests); i += s.config.BatchSize {
		end := min(i+s.config.BatchSize, len(requests))
		if _, err := s.batchUpdate(ctx, "paint", requests[i:end]); err != nil {
			return err
		}
	}
	return nil
}

// ProtectRows implements service.Protector. Each row gets its own protected range with
// editableCol left open.
func (s *Store) ProtectRows(ctx context.Context, name string, rows []int, editableCol int) error {
	if len(rows) == 0 {
		return nil
	}
	id, err := s.sheetID(ctx, name)
	if err != nil {
		return err
	}

	// Drop stale locks first so repeated protection does not stack ranges.
	if err := s.UnprotectRows(ctx, name, rows); err != nil {
		return err
	}

	requests := make([]*sheets.Request, 0, len(rows))
	for _, r := range rows {
		requests = append(requests, &sheets.Request{
			AddProtectedRange: &sheets.AddProtectedRangeRequest{
				ProtectedRange: &sheets.ProtectedRange{
					Range:             gridRange(id, r, -1),
					Description:       fmt.Sprintf("%s %d", lockDescription, r),
					UnprotectedRanges: []*sheets.GridRange{gridRange(id, r, editableCol)},
				},
			},
		})
	}
	_, err = s.batchUpdate(ctx, "protect rows", requests)
	return err
}

// UnprotectRows implements service.Protector. Only ranges created by ProtectRows are removed.
func (s *Store) UnprotectRows(ctx context.Context, name string, rows []int) error {
	if len(rows) == 0 {
		return nil
	}

	var doc *sheets.Spreadsheet
	err := s.do(ctx, "list protections", func() error {
		var err error
		doc, err = s.service.Spreadsheets.Get(s.config.SpreadsheetID).
			Fields("sheets(properties(sheetId,title),protectedRanges)").
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return err
	}

	wanted := make(map[int64]struct{}, len(rows))
	for _, r := range rows {
		wanted[int64(r-1)] = struct{}{}
	}

	var requests []*sheets.Request
	for _, sh := range doc.Sheets {
		if sh.Properties == nil || sh.Properties.Title != name {
			continue
		}
		for _, pr := range sh.ProtectedRanges {
			if pr.Range == nil || !strings.HasPrefix(pr.Description, lockDescription) {
				continue
			}
			if _, ok := wanted[pr.Range.StartRowIndex]; !ok {
				continue
			}
			requests = append(requests, &sheets.Request{
				DeleteProtectedRange: &sheets.DeleteProtectedRangeRequest{ProtectedRangeId: pr.ProtectedRangeId},
			})
		}
	}
	if len(requests) == 0 {
		return nil
	}
	_, err = s.batchUpdate(ctx, "unprotect rows", requests)
	return err
}

// gridRange addresses one sheet row, or one cell of it when col >= 0.
func gridRange(sheetID int64, row, col int) *sheets.GridRange {
	g := &sheets.GridRange{
		SheetId:       sheetID,
		StartRowIndex: int64(row - 1),
		EndRowIndex:   int64(row),
	}
	if col >= 0 {
		g.StartColumnIndex = int64(col)
		g.EndColumnIndex = int64(col + 1)
		g.ForceSendFields = []string{"StartColumnIndex"}
	}
	g.ForceSendFields = append(g.ForceSendFields, "SheetId", "StartRowIndex")
	return g
}

// parseHex converts "#RRGGBB" into an API colour.
func parseHex(hex string) (*sheets.Color, error) {
	h := strings.TrimPrefix(hex, "#")
	if len(h) != 6 {
		return nil, fmt.Errorf("invalid colour %q", hex)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid colour %q: %w", hex, err)
	}
	c := &sheets.Color{
		Red:   float64(v>>16&0xff) / 255,
		Green: float64(v>>8&0xff) / 255,
		Blue:  float64(v&0xff) / 255,
	}
	c.ForceSendFields = []string{"Red", "Green", "Blue"}
	return c, nil
}

// ColumnName converts a 0-based column index into its A1 letters.
func ColumnName(col int) string {
	name := ""
	for n := col + 1; n > 0; n = (n - 1) / 26 {
		name = string(rune('A'+(n-1)%26)) + name
	}
	return name
}

// quote wraps a sheet title for use in A1 notation.
func quote(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

func a1(name, rng string) string {
	return quote(name) + "!" + rng
}

// firstRow extracts the starting row from an A1 range such as "'Sheet'!A5:M9".
func firstRow(rng string) (int, error) {
	ref := rng
	if i := strings.LastIndex(rng, "!"); i >= 0 {
		ref = rng[i+1:]
	}
	if i := strings.Index(ref, ":"); i >= 0 {
		ref = ref[:i]
	}
	digits := strings.TrimLeft(ref, "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz$")
	n, err := strconv.Atoi(strings.TrimPrefix(digits, "$"))
	if err != nil {
		return 0, fmt.Errorf("unexpected range %q: %w", rng, err)
	}
	return n, nil
}

func blankRow(row []any) bool {
	for _, v := range row {
		if v != nil && fmt.Sprint(v) != "" {
			return false
		}
	}
	return true
}
