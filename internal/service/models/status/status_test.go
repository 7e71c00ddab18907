package status_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tokyogo/backend/internal/service/models/status"
)

func TestParse(t *testing.T) {
	for _, valid := range []string{
		"pending", "confirmed", "preparing", "delivering", "completed", "cancelled",
	} {
		st, err := status.Parse(valid)
		require.NoError(t, err)
		assert.Equal(t, valid, st.String())
	}

	_, err := status.Parse("shipped")
	assert.ErrorIs(t, err, status.ErrInvalidStatus)

	_, err = status.Parse("")
	assert.ErrorIs(t, err, status.ErrInvalidStatus)
}

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    status.Status
		to      status.Status
		allowed bool
	}{
		{"pending to confirmed", status.StatusPending, status.StatusConfirmed, true},
		{"pending skips to delivering", status.StatusPending, status.StatusDelivering, true},
		{"pending to cancelled", status.StatusPending, status.StatusCancelled, true},
		{"confirmed to preparing", status.StatusConfirmed, status.StatusPreparing, true},
		{"delivering to completed", status.StatusDelivering, status.StatusCompleted, true},
		{"no backwards move", status.StatusDelivering, status.StatusPreparing, false},
		{"no self transition", status.StatusPending, status.StatusPending, false},
		{"completed is terminal", status.StatusCompleted, status.StatusCancelled, false},
		{"cancelled is terminal", status.StatusCancelled, status.StatusConfirmed, false},
		{"cancel mid-flight", status.StatusPreparing, status.StatusCancelled, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, status.StatusCompleted.IsTerminal())
	assert.True(t, status.StatusCancelled.IsTerminal())
	assert.False(t, status.StatusPending.IsTerminal())
	assert.False(t, status.StatusDelivering.IsTerminal())
}
