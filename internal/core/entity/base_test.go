package entity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	appctx "repairdesk/internal/core/context"
)

func TestNewAudit_UsesContextUser(t *testing.T) {
	ctx := appctx.WithUser(context.Background(), &appctx.UserContext{UserID: "tech-1"})
	a := NewAudit(ctx)

	assert.Equal(t, "tech-1", a.CreatedBy)
	assert.Equal(t, "tech-1", a.UpdatedBy)
	assert.False(t, a.CreatedAt.IsZero())
	assert.Equal(t, a.CreatedAt, a.UpdatedAt)
}

func TestTouch_KeepsUpdaterWithoutUser(t *testing.T) {
	ctx := appctx.WithUser(context.Background(), &appctx.UserContext{UserID: "tech-1"})
	a := NewAudit(ctx)
	a.Touch(context.Background())

	assert.Equal(t, "tech-1", a.UpdatedBy)
	assert.False(t, a.UpdatedAt.Before(a.CreatedAt))
}

func TestSoftDelete(t *testing.T) {
	var s SoftDelete
	s.MarkDeleted()
	assert.True(t, s.IsDeleted)
	assert.NotNil(t, s.DeletedAt)

	s.Undelete()
	assert.False(t, s.IsDeleted)
	assert.Nil(t, s.DeletedAt)
}
