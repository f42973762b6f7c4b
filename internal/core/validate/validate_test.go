package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"repairdesk/internal/core/apperror"
)

type sample struct {
	Name     string `validate:"required"`
	Quantity int    `validate:"gt=0"`
}

func TestStruct_Valid(t *testing.T) {
	assert.NoError(t, Struct(sample{Name: "x", Quantity: 1}))
}

func TestStruct_ReportsFields(t *testing.T) {
	err := Struct(sample{})
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	fields, ok := appErr.Details["fields"].(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "required", fields["Name"])
	assert.Equal(t, "gt", fields["Quantity"])
}
