package repair

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repairdesk/internal/core/apperror"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusReceived, StatusStarted, true},
		{StatusStarted, StatusCompleted, true},
		{StatusCompleted, StatusDelivered, true},
		{StatusReceived, StatusCancelled, true},
		{StatusStarted, StatusCancelled, true},
		{StatusStarted, StatusStarted, true},
		{StatusDelivered, StatusDelivered, true},

		{StatusReceived, StatusCompleted, false},
		{StatusReceived, StatusDelivered, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusDelivered, StatusStarted, false},
		{StatusCancelled, StatusStarted, false},
		{StatusStarted, StatusReceived, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestValidateTransition_Details(t *testing.T) {
	err := ValidateTransition(StatusReceived, StatusDelivered)
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "RECEIVED", appErr.Details["from"])
	assert.Equal(t, "DELIVERED", appErr.Details["to"])
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus(" started ")
	require.NoError(t, err)
	assert.Equal(t, StatusStarted, s)
	assert.Equal(t, "In Lavorazione", s.Label())

	_, err = ParseStatus("ON_HOLD")
	assert.True(t, apperror.IsValidation(err))
}

func TestStatus_IsTerminal(t *testing.T) {
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusDelivered.IsTerminal())
	assert.False(t, StatusCancelled.IsTerminal())
	assert.False(t, StatusReceived.IsTerminal())
}

func TestParsePriority(t *testing.T) {
	p, err := ParsePriority("")
	require.NoError(t, err)
	assert.Equal(t, PriorityNormal, p)

	p, err = ParsePriority("HIGH")
	require.NoError(t, err)
	assert.Equal(t, PriorityHigh, p)

	_, err = ParsePriority("urgent")
	assert.True(t, apperror.IsValidation(err))
}

func TestAppendNote(t *testing.T) {
	at := time.Date(2026, 3, 14, 9, 26, 0, 0, time.UTC)

	notes := AppendNote("", "screen ordered", at)
	assert.Equal(t, "[2026-03-14 09:26] screen ordered", notes)

	notes = AppendNote(notes, "  customer called ", at.Add(time.Hour))
	assert.Equal(t, "[2026-03-14 09:26] screen ordered\n[2026-03-14 10:26] customer called", notes)

	assert.Equal(t, notes, AppendNote(notes, "   ", at))
}

func TestSetStatus_StampsMilestonesOnce(t *testing.T) {
	first := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	later := first.Add(time.Hour)

	o := &RepairOrder{}
	o.setStatus(StatusStarted, "", first)
	require.NotNil(t, o.StartedAt)
	assert.Equal(t, "In Lavorazione", o.StatusLabel)

	o.setStatus(StatusStarted, "Bench 2", later)
	assert.Equal(t, first, *o.StartedAt)
	assert.Equal(t, "Bench 2", o.StatusLabel)
	assert.Nil(t, o.CompletedAt)
}
