package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiff(t *testing.T) {
	oldState := map[string]any{"fault": "no power", "technician": "anna", "priority": "normal"}
	newState := map[string]any{"fault": "no power", "technician": "marco", "device_id": int64(4)}

	changes := Diff(oldState, newState)

	assert.Len(t, changes, 3)
	assert.Equal(t, map[string]any{"old": "anna", "new": "marco"}, changes["technician"])
	assert.Equal(t, map[string]any{"old": nil, "new": int64(4)}, changes["device_id"])
	assert.Equal(t, map[string]any{"old": "normal", "new": nil}, changes["priority"])
	assert.NotContains(t, changes, "fault")
}
