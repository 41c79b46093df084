package rowlock

import (
	"testing"

	"github.com/Veraticus/lessons-ledger/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		status string
		locked bool
	}{
		{name: "open", status: string(model.StatusOpen)},
		{name: "paid", status: string(model.StatusPaid), locked: true},
		{name: "transferred", status: string(model.StatusTransferred), locked: true},
		{name: "paid with padding", status: "  " + string(model.StatusPaid) + " ", locked: true},
		{name: "blank", status: ""},
		{name: "unknown", status: "something else"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.locked, Classify(tt.status).Locked)
		})
	}
}

func TestMessage(t *testing.T) {
	assert.Equal(t, model.MessageLockedPaid, Message(model.StatusPaid))
	assert.Equal(t, model.MessageLockedTransferred, Message(model.StatusTransferred))
	assert.Equal(t, "", Message(model.StatusOpen))
}

func TestEditable(t *testing.T) {
	const statusCol = 8

	assert.True(t, Editable(string(model.StatusOpen), 2, statusCol))
	assert.True(t, Editable(string(model.StatusPaid), statusCol, statusCol))
	assert.False(t, Editable(string(model.StatusPaid), 2, statusCol))
	assert.False(t, Editable(string(model.StatusTransferred), 6, statusCol))
}

func TestReview(t *testing.T) {
	const statusCol = 8
	edits := []CellEdit{
		{Row: 5, Col: 6, Old: "2024-08-01", New: "2024-08-02"},
		{Row: 5, Col: statusCol, Old: string(model.StatusPaid), New: string(model.StatusOpen)},
		{Row: 5, Col: 9, Old: "", New: "note"},
	}

	accepted, reverted := Review(string(model.StatusPaid), statusCol, edits)
	require.Len(t, accepted, 1)
	assert.Equal(t, statusCol, accepted[0].Col)
	assert.Len(t, reverted, 2)

	accepted, reverted = Review(string(model.StatusOpen), statusCol, edits)
	assert.Len(t, accepted, 3)
	assert.Empty(t, reverted)
}
