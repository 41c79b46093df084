package memtable

import (
	"context"
	"errors"
	"testing"

	"github.com/Veraticus/lessons-ledger/internal/common"
	"github.com/Veraticus/lessons-ledger/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SheetLifecycle(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, err := s.ReadAll(ctx, "ledger")
	assert.True(t, errors.Is(err, common.ErrSheetNotFound))

	require.NoError(t, s.EnsureSheet(ctx, "ledger", []string{"a", "b"}))
	require.NoError(t, s.EnsureSheet(ctx, "ledger", []string{"x", "y"}), "existing header is kept")

	first, err := s.Append(ctx, "ledger", [][]any{{"1", "2"}, {"3", "4"}, {"5", "6"}})
	require.NoError(t, err)
	assert.Equal(t, 2, first)

	require.NoError(t, s.UpdateRows(ctx, "ledger", []service.RowUpdate{{Row: 3, Values: []any{"30", "40"}}}))
	require.NoError(t, s.WriteColumn(ctx, "ledger", 2, 2, []any{"c2", "c3"}))
	require.NoError(t, s.UpdateCell(ctx, "ledger", 4, 0, "50"))

	rows, err := s.ReadAll(ctx, "ledger")
	require.NoError(t, err)
	assert.Equal(t, [][]any{
		{"a", "b"},
		{"1", "2", "c2"},
		{"30", "40", "c3"},
		{"50", "6"},
	}, rows)

	require.NoError(t, s.DeleteRows(ctx, "ledger", []int{2, 4, 4, 1}))
	assert.Equal(t, [][]any{{"a", "b"}, {"30", "40", "c3"}}, s.Rows("ledger"), "header row is never deleted")
}

func TestStore_EnsureSheetFillsBlankHeader(t *testing.T) {
	s := New()
	s.Seed("log", [][]any{{"", nil}, {"row"}})

	require.NoError(t, s.EnsureSheet(context.Background(), "log", []string{"h"}))
	assert.Equal(t, [][]any{{"h"}, {"row"}}, s.Rows("log"))
}

func TestStore_PaintAndProtect(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.Seed("ledger", [][]any{{"h"}})

	require.NoError(t, s.PaintRows(ctx, "ledger", []service.RowPaint{
		{Row: 2, Col: 6, Color: "#FFFF00"},
		{Row: 3, Col: -1, Color: "#D9D9D9"},
	}))
	assert.Equal(t, "#FFFF00", s.Color("ledger", 2, 6))
	assert.Equal(t, "", s.Color("ledger", 2, 0))
	assert.Equal(t, "#D9D9D9", s.Color("ledger", 3, 4))

	require.NoError(t, s.PaintRows(ctx, "ledger", []service.RowPaint{{Row: 2, Col: -1, Color: "#FFFFFF"}}))
	assert.Equal(t, "#FFFFFF", s.Color("ledger", 2, 6))

	require.NoError(t, s.ProtectRows(ctx, "ledger", []int{2, 3}, 8))
	col, ok := s.Protected("ledger", 3)
	assert.True(t, ok)
	assert.Equal(t, 8, col)

	require.NoError(t, s.UnprotectRows(ctx, "ledger", []int{3}))
	_, ok = s.Protected("ledger", 3)
	assert.False(t, ok)
}

func TestStore_SetError(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.Seed("ledger", [][]any{{"h"}})

	boom := errors.New("boom")
	s.SetError("Append", boom)
	_, err := s.Append(ctx, "ledger", [][]any{{"x"}})
	assert.Equal(t, boom, err)

	s.SetError("Append", nil)
	_, err = s.Append(ctx, "ledger", [][]any{{"x"}})
	assert.NoError(t, err)

	calls := s.Calls()
	require.Len(t, calls, 1, "failed calls are not recorded")
	assert.Equal(t, Call{Op: "Append", Sheet: "ledger", Rows: 1}, calls[0])
}

func TestSnapshot(t *testing.T) {
	ctx := context.Background()
	src := New()
	src.Seed("ledger", [][]any{{"h"}, {"v"}})

	dst, err := Snapshot(ctx, src, "ledger", "missing")
	require.NoError(t, err)

	_, err = dst.Append(ctx, "ledger", [][]any{{"new"}})
	require.NoError(t, err)
	assert.Len(t, src.Rows("ledger"), 2, "source is untouched")
	assert.Nil(t, dst.Rows("missing"))
}
