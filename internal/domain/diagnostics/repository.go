package diagnostics

import "context"

// Repository persists diagnostic snapshots.
type Repository interface {
	// GetLive returns the live snapshot of a repair or NotFound.
	GetLive(ctx context.Context, repairID int64) (*Snapshot, error)

	// Insert stores a new snapshot and assigns its ID.
	Insert(ctx context.Context, s *Snapshot) error

	// SoftDeleteLive marks the live snapshot of a repair deleted.
	// Reports whether a snapshot existed.
	SoftDeleteLive(ctx context.Context, repairID int64, deletedBy string) (bool, error)
}
