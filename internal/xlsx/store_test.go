package xlsx

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Veraticus/lessons-ledger/internal/common"
	"github.com/Veraticus/lessons-ledger/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "book", "lessons.xlsx")
	s, err := Open(path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func TestStore_RoundTripThroughFile(t *testing.T) {
	ctx := context.Background()
	s, path := openTestStore(t)

	require.NoError(t, s.EnsureSheet(ctx, "דיווח שיעורים", []string{"שם המורה", "כמות", "תאריך השיעור"}))
	first, err := s.Append(ctx, "דיווח שיעורים", [][]any{
		{"Dana", 1.5, "2024-08-05"},
		{"007", 2.0, ""},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, first)
	require.NoError(t, s.Close())

	reopened, err := Open(path, nil)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	rows, err := reopened.ReadAll(ctx, "דיווח שיעורים")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "שם המורה", rows[0][0])
	assert.Equal(t, []any{"Dana", 1.5, "2024-08-05"}, rows[1])
	assert.Equal(t, "007", rows[2][0], "non-canonical numbers stay text")
	assert.Equal(t, 2.0, rows[2][1])
}

func TestStore_MissingSheet(t *testing.T) {
	s, _ := openTestStore(t)
	_, err := s.ReadAll(context.Background(), "courses")
	assert.True(t, errors.Is(err, common.ErrSheetNotFound))

	_, err = s.Append(context.Background(), "courses", [][]any{{"x"}})
	assert.True(t, errors.Is(err, common.ErrSheetNotFound))
}

func TestStore_Mutations(t *testing.T) {
	ctx := context.Background()
	s, _ := openTestStore(t)
	const sheet = "ledger"

	require.NoError(t, s.EnsureSheet(ctx, sheet, []string{"a", "b", "c"}))
	_, err := s.Append(ctx, sheet, [][]any{{"r2"}, {"r3"}, {"r4"}, {"r5"}})
	require.NoError(t, err)

	require.NoError(t, s.UpdateRows(ctx, sheet, []service.RowUpdate{{Row: 3, Values: []any{"R3", "x"}}}))
	require.NoError(t, s.WriteColumn(ctx, sheet, 2, 2, []any{1.0, 2.0}))
	require.NoError(t, s.UpdateCell(ctx, sheet, 5, 1, "y"))
	require.NoError(t, s.DeleteRows(ctx, sheet, []int{4, 2, 4}))

	rows, err := s.ReadAll(ctx, sheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []any{"R3", "x", 2.0}, rows[1])
	assert.Equal(t, []any{"r5", "y"}, rows[2])
}

func TestStore_PaintRows(t *testing.T) {
	ctx := context.Background()
	s, _ := openTestStore(t)
	const sheet = "ledger"

	require.NoError(t, s.EnsureSheet(ctx, sheet, []string{"a", "b"}))
	_, err := s.Append(ctx, sheet, [][]any{{"x", "y"}})
	require.NoError(t, err)

	require.NoError(t, s.PaintRows(ctx, sheet, []service.RowPaint{{Row: 2, Col: 1, Color: "#FFFF00"}}))

	color, err := s.CellColor(sheet, 2, 1)
	require.NoError(t, err)
	assert.True(t, strings.Contains(strings.ToUpper(color), "FFFF00"), color)

	color, err = s.CellColor(sheet, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, "", color)
}
