package memtable

import (
	"context"
	"errors"
	"fmt"

	"github.com/Veraticus/lessons-ledger/internal/common"
	"github.com/Veraticus/lessons-ledger/internal/service"
)

// Snapshot copies the named sheets of src into a new in-memory store. Sheets missing from
// src stay missing in the copy.
func Snapshot(ctx context.Context, src service.TabularStore, names ...string) (*Store, error) {
	dst := New()
	for _, name := range names {
		rows, err := src.ReadAll(ctx, name)
		if errors.Is(err, common.ErrSheetNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("snapshot %q: %w", name, err)
		}
		dst.Seed(name, rows)
	}
	return dst, nil
}
