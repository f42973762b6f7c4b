// Package entity provides base types for all domain entities.
package entity

import (
	"context"
	"time"

	appctx "repairdesk/internal/core/context"
)

// Validatable is implemented by entities that support self-validation.
// Validation checks internal invariants (without database access).
type Validatable interface {
	// Validate checks entity invariants.
	// Returns nil if valid, AppError with details otherwise.
	Validate(ctx context.Context) error
}

// SoftDelete marks rows as deleted instead of removing them.
type SoftDelete struct {
	IsDeleted bool       `db:"is_deleted" json:"isDeleted"`
	DeletedAt *time.Time `db:"deleted_at" json:"deletedAt,omitempty"`
}

// MarkDeleted sets the deletion mark.
func (s *SoftDelete) MarkDeleted() {
	now := time.Now().UTC()
	s.IsDeleted = true
	s.DeletedAt = &now
}

// Undelete clears the deletion mark.
func (s *SoftDelete) Undelete() {
	s.IsDeleted = false
	s.DeletedAt = nil
}

// Audit holds who/when fields shared by every persisted record.
type Audit struct {
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
	CreatedBy string    `db:"created_by" json:"createdBy,omitempty"`
	UpdatedBy string    `db:"updated_by" json:"updatedBy,omitempty"`
}

// NewAudit stamps creation fields from the acting user in ctx.
func NewAudit(ctx context.Context) Audit {
	now := time.Now().UTC()
	user := appctx.GetUserID(ctx)
	return Audit{
		CreatedAt: now,
		UpdatedAt: now,
		CreatedBy: user,
		UpdatedBy: user,
	}
}

// Touch updates the UpdatedAt timestamp and the modifying user.
func (a *Audit) Touch(ctx context.Context) {
	a.UpdatedAt = time.Now().UTC()
	if user := appctx.GetUserID(ctx); user != "" {
		a.UpdatedBy = user
	}
}
