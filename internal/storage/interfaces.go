package storage

import (
	"context"

	"solana-token-qualifier/internal/domain"
)

// ClassificationStore provides access to token_classifications storage.
//
// Updates are plain read-modify-write without optimistic locking; concurrent
// updates to the same token address can interleave. Callers that need stricter
// semantics must serialize externally.
type ClassificationStore interface {
	// Insert adds a new record. Returns ErrDuplicateKey if the token
	// address already exists.
	Insert(ctx context.Context, r *domain.ClassificationRecord) error

	// GetByAddress retrieves a record by token address.
	// Returns ErrNotFound if not exists.
	GetByAddress(ctx context.Context, address string) (*domain.ClassificationRecord, error)

	// Update replaces an existing record. Returns ErrNotFound if not exists.
	Update(ctx context.Context, r *domain.ClassificationRecord) error

	// GetByStatus retrieves records with the given status, ordered by
	// updated_at DESC, with limit/offset pagination.
	GetByStatus(ctx context.Context, status domain.Status, limit, offset int) ([]*domain.ClassificationRecord, error)

	// GetForReevaluation retrieves up to limit records whose
	// last_reevaluated_at is older than cutoffMs, excluding rejected and
	// alert-suppressed records, ordered by edge score DESC.
	GetForReevaluation(ctx context.Context, cutoffMs int64, limit int) ([]*domain.ClassificationRecord, error)

	// DeleteByStatusBefore permanently deletes records with the given
	// status whose updated_at is older than cutoffMs. Returns the number
	// of rows deleted.
	DeleteByStatusBefore(ctx context.Context, status domain.Status, cutoffMs int64) (int64, error)
}
