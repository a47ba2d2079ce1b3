package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"solana-token-qualifier/internal/domain"
	"solana-token-qualifier/internal/observability"
	"solana-token-qualifier/internal/storage"
)

// ClassificationStore implements storage.ClassificationStore using PostgreSQL.
type ClassificationStore struct {
	pool *Pool
}

// NewClassificationStore creates a new ClassificationStore.
func NewClassificationStore(pool *Pool) *ClassificationStore {
	return &ClassificationStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ClassificationStore = (*ClassificationStore)(nil)

// observeQuery records query metrics on return. Callers defer it with a
// pointer to their named error so the final outcome is observed.
func observeQuery(operation string, start time.Time, err *error) {
	observability.RecordDBQuery(operation, time.Since(start).Seconds(), *err)
}

const classificationColumns = `
	token_address, status, previous_status, first_detected_at, updated_at,
	last_reevaluated_at, reevaluation_count, edge_score, age_minutes,
	tx_count, holder_count, metadata_verified, volume_spikes,
	liquidity_events, smart_wallet_entries, alerts_suppressed,
	suppression_reason, suppression_expires_at`

// Insert adds a new record. Returns ErrDuplicateKey if the address exists.
func (s *ClassificationStore) Insert(ctx context.Context, r *domain.ClassificationRecord) (err error) {
	if r == nil || r.TokenAddress == "" {
		return storage.ErrInvalidInput
	}
	defer observeQuery("insert", time.Now(), &err)

	query := `
		INSERT INTO token_classifications (` + classificationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	_, err = s.pool.Exec(ctx, query,
		r.TokenAddress,
		string(r.Status),
		string(r.PreviousStatus),
		r.FirstDetectedAt,
		r.UpdatedAt,
		r.LastReevaluatedAt,
		r.ReevaluationCount,
		r.EdgeScore,
		r.AgeMinutes,
		r.TxCount,
		r.HolderCount,
		r.MetadataVerified,
		r.VolumeSpikes,
		r.LiquidityEvents,
		r.SmartWalletEntries,
		r.AlertsSuppressed,
		r.SuppressionReason,
		r.SuppressionExpiresAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert classification: %w", err)
	}
	return nil
}

// GetByAddress retrieves a record by token address.
func (s *ClassificationStore) GetByAddress(ctx context.Context, address string) (r *domain.ClassificationRecord, err error) {
	defer observeQuery("get_by_address", time.Now(), &err)

	query := `
		SELECT ` + classificationColumns + `
		FROM token_classifications
		WHERE token_address = $1
	`

	row := s.pool.QueryRow(ctx, query, address)
	r, err = scanClassification(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get classification by address: %w", err)
	}
	return r, nil
}

// Update replaces an existing record. Returns ErrNotFound if not exists.
func (s *ClassificationStore) Update(ctx context.Context, r *domain.ClassificationRecord) (err error) {
	if r == nil || r.TokenAddress == "" {
		return storage.ErrInvalidInput
	}
	defer observeQuery("update", time.Now(), &err)

	query := `
		UPDATE token_classifications SET
			status = $2,
			previous_status = $3,
			first_detected_at = $4,
			updated_at = $5,
			last_reevaluated_at = $6,
			reevaluation_count = $7,
			edge_score = $8,
			age_minutes = $9,
			tx_count = $10,
			holder_count = $11,
			metadata_verified = $12,
			volume_spikes = $13,
			liquidity_events = $14,
			smart_wallet_entries = $15,
			alerts_suppressed = $16,
			suppression_reason = $17,
			suppression_expires_at = $18
		WHERE token_address = $1
	`

	tag, err := s.pool.Exec(ctx, query,
		r.TokenAddress,
		string(r.Status),
		string(r.PreviousStatus),
		r.FirstDetectedAt,
		r.UpdatedAt,
		r.LastReevaluatedAt,
		r.ReevaluationCount,
		r.EdgeScore,
		r.AgeMinutes,
		r.TxCount,
		r.HolderCount,
		r.MetadataVerified,
		r.VolumeSpikes,
		r.LiquidityEvents,
		r.SmartWalletEntries,
		r.AlertsSuppressed,
		r.SuppressionReason,
		r.SuppressionExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("update classification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// GetByStatus retrieves records with the given status, ordered by
// updated_at DESC, with limit/offset pagination.
func (s *ClassificationStore) GetByStatus(ctx context.Context, status domain.Status, limit, offset int) (_ []*domain.ClassificationRecord, err error) {
	defer observeQuery("get_by_status", time.Now(), &err)

	query := `
		SELECT ` + classificationColumns + `
		FROM token_classifications
		WHERE status = $1
		ORDER BY updated_at DESC, token_address ASC
		LIMIT $2 OFFSET $3
	`

	rows, err := s.pool.Query(ctx, query, string(status), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("get classifications by status: %w", err)
	}
	defer rows.Close()

	return scanClassifications(rows)
}

// GetForReevaluation retrieves up to limit records whose last_reevaluated_at
// is older than cutoffMs, excluding rejected and suppressed records,
// ordered by edge score DESC.
func (s *ClassificationStore) GetForReevaluation(ctx context.Context, cutoffMs int64, limit int) (_ []*domain.ClassificationRecord, err error) {
	defer observeQuery("get_for_reevaluation", time.Now(), &err)

	query := `
		SELECT ` + classificationColumns + `
		FROM token_classifications
		WHERE last_reevaluated_at < $1
		  AND status <> $2
		  AND alerts_suppressed = FALSE
		ORDER BY edge_score DESC, token_address ASC
		LIMIT $3
	`

	rows, err := s.pool.Query(ctx, query, cutoffMs, string(domain.StatusRejected), limit)
	if err != nil {
		return nil, fmt.Errorf("get classifications for reevaluation: %w", err)
	}
	defer rows.Close()

	return scanClassifications(rows)
}

// DeleteByStatusBefore deletes records with the given status whose
// updated_at is older than cutoffMs. Returns the number of rows deleted.
func (s *ClassificationStore) DeleteByStatusBefore(ctx context.Context, status domain.Status, cutoffMs int64) (_ int64, err error) {
	defer observeQuery("delete_by_status", time.Now(), &err)

	query := `
		DELETE FROM token_classifications
		WHERE status = $1 AND updated_at < $2
	`

	tag, err := s.pool.Exec(ctx, query, string(status), cutoffMs)
	if err != nil {
		return 0, fmt.Errorf("delete classifications by status: %w", err)
	}
	return tag.RowsAffected(), nil
}

// scanClassification scans a single row into a ClassificationRecord.
func scanClassification(row pgx.Row) (*domain.ClassificationRecord, error) {
	var r domain.ClassificationRecord
	var status, prevStatus string

	err := row.Scan(
		&r.TokenAddress,
		&status,
		&prevStatus,
		&r.FirstDetectedAt,
		&r.UpdatedAt,
		&r.LastReevaluatedAt,
		&r.ReevaluationCount,
		&r.EdgeScore,
		&r.AgeMinutes,
		&r.TxCount,
		&r.HolderCount,
		&r.MetadataVerified,
		&r.VolumeSpikes,
		&r.LiquidityEvents,
		&r.SmartWalletEntries,
		&r.AlertsSuppressed,
		&r.SuppressionReason,
		&r.SuppressionExpiresAt,
	)
	if err != nil {
		return nil, err
	}

	r.Status = domain.Status(status)
	r.PreviousStatus = domain.Status(prevStatus)
	return &r, nil
}

// scanClassifications scans multiple rows into a slice of ClassificationRecord.
func scanClassifications(rows pgx.Rows) ([]*domain.ClassificationRecord, error) {
	var records []*domain.ClassificationRecord

	for rows.Next() {
		r, err := scanClassification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan classification row: %w", err)
		}
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate classification rows: %w", err)
	}

	return records, nil
}
