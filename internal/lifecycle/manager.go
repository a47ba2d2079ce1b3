// Package lifecycle manages token classification records: upserts,
// reclassification, reevaluation scheduling, alert suppression and the
// retention sweep.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"solana-token-qualifier/internal/config"
	"solana-token-qualifier/internal/domain"
	"solana-token-qualifier/internal/observability"
	"solana-token-qualifier/internal/storage"
)

// Manager drives the classification state machine on top of a store.
type Manager struct {
	store  storage.ClassificationStore
	cfg    config.Lifecycle
	logger zerolog.Logger
	clock  func() time.Time
}

// NewManager creates a lifecycle manager.
func NewManager(store storage.ClassificationStore, cfg config.Lifecycle, logger zerolog.Logger) *Manager {
	return &Manager{
		store:  store,
		cfg:    cfg,
		logger: logger.With().Str("component", "lifecycle").Logger(),
		clock:  time.Now,
	}
}

// WithClock sets a custom clock, for deterministic tests.
func (m *Manager) WithClock(clock func() time.Time) *Manager {
	m.clock = clock
	return m
}

// Update is the mutable subset of a classification record applied on upsert.
type Update struct {
	Status           domain.Status
	EdgeScore        float64
	AgeMinutes       float64
	TxCount          int
	HolderCount      int
	MetadataVerified bool
}

// UpdateClassification upserts the record for a token. On first sight it
// creates the record with the supplied status and a zero reevaluation
// counter; afterwards it shifts current status to previous, applies the new
// values, stamps last_reevaluated_at and increments the counter.
func (m *Manager) UpdateClassification(ctx context.Context, address string, u Update) (*domain.ClassificationRecord, error) {
	if !u.Status.IsValid() {
		return nil, fmt.Errorf("invalid status %q: %w", u.Status, storage.ErrInvalidInput)
	}
	nowMs := m.clock().UnixMilli()

	existing, err := m.store.GetByAddress(ctx, address)
	if errors.Is(err, storage.ErrNotFound) {
		record := &domain.ClassificationRecord{
			TokenAddress:     address,
			Status:           u.Status,
			FirstDetectedAt:  nowMs,
			UpdatedAt:        nowMs,
			EdgeScore:        u.EdgeScore,
			AgeMinutes:       u.AgeMinutes,
			TxCount:          u.TxCount,
			HolderCount:      u.HolderCount,
			MetadataVerified: u.MetadataVerified,
		}
		if err := m.store.Insert(ctx, record); err != nil {
			return nil, fmt.Errorf("insert classification: %w", err)
		}
		m.logger.Info().Str("token", address).Str("status", u.Status.String()).Msg("token classified")
		return record, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load classification: %w", err)
	}

	existing.PreviousStatus = existing.Status
	existing.Status = u.Status
	existing.UpdatedAt = nowMs
	existing.LastReevaluatedAt = nowMs
	existing.ReevaluationCount++
	existing.EdgeScore = u.EdgeScore
	existing.AgeMinutes = u.AgeMinutes
	existing.TxCount = u.TxCount
	existing.HolderCount = u.HolderCount
	existing.MetadataVerified = u.MetadataVerified

	if err := m.store.Update(ctx, existing); err != nil {
		return nil, fmt.Errorf("update classification: %w", err)
	}
	m.logger.Debug().
		Str("token", address).
		Str("status", existing.Status.String()).
		Str("previous", existing.PreviousStatus.String()).
		Int("reevaluations", existing.ReevaluationCount).
		Msg("token reclassified")
	return existing, nil
}

// Reclassify evaluates the rule chain for a stored token and, when a rule
// matches, persists the transition (including suppression when the rule
// demands it). Returns nil result when no rule matched.
func (m *Manager) Reclassify(ctx context.Context, address string, rc *domain.ReclassificationContext) (*domain.ReclassificationResult, error) {
	record, err := m.store.GetByAddress(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("load classification: %w", err)
	}

	result := ApplyReclassificationLogic(record.Status, rc)
	if result == nil {
		return nil, nil
	}

	nowMs := m.clock().UnixMilli()
	record.PreviousStatus = record.Status
	record.Status = result.NewStatus
	record.UpdatedAt = nowMs
	record.LastReevaluatedAt = nowMs
	record.ReevaluationCount++
	if result.SuppressAlerts {
		record.AlertsSuppressed = true
		record.SuppressionReason = result.Reason
		record.SuppressionExpiresAt = m.clock().Add(m.cfg.SuppressionDefault).UnixMilli()
	}

	if err := m.store.Update(ctx, record); err != nil {
		return nil, fmt.Errorf("persist reclassification: %w", err)
	}

	observability.RecordReclassification(result.Flags.Rule)
	m.logger.Info().
		Str("token", address).
		Str("rule", result.Flags.Rule).
		Str("status", result.NewStatus.String()).
		Str("previous", record.PreviousStatus.String()).
		Msg("reclassification rule matched")
	return result, nil
}

// GetTokensForReevaluation returns up to the configured limit of records not
// reevaluated within the given window, excluding rejected and suppressed
// ones, best candidates (highest edge score) first.
func (m *Manager) GetTokensForReevaluation(ctx context.Context, window time.Duration) ([]*domain.ClassificationRecord, error) {
	cutoffMs := m.clock().Add(-window).UnixMilli()
	records, err := m.store.GetForReevaluation(ctx, cutoffMs, m.cfg.ReevaluationLimit)
	if err != nil {
		return nil, fmt.Errorf("reevaluation query: %w", err)
	}
	observability.DefaultMetrics.ReevaluationBatch.Set(float64(len(records)))
	return records, nil
}

// SuppressAlerts marks a token suppressed with a reason. A zero duration
// falls back to the configured default.
func (m *Manager) SuppressAlerts(ctx context.Context, address, reason string, d time.Duration) error {
	if d <= 0 {
		d = m.cfg.SuppressionDefault
	}
	record, err := m.store.GetByAddress(ctx, address)
	if err != nil {
		return fmt.Errorf("load classification: %w", err)
	}
	record.AlertsSuppressed = true
	record.SuppressionReason = reason
	record.SuppressionExpiresAt = m.clock().Add(d).UnixMilli()
	record.UpdatedAt = m.clock().UnixMilli()
	if err := m.store.Update(ctx, record); err != nil {
		return fmt.Errorf("persist suppression: %w", err)
	}
	return nil
}

// IsAlertSuppressed reports whether alerts for a token are currently
// suppressed. A past expiry clears the suppression on read.
func (m *Manager) IsAlertSuppressed(ctx context.Context, address string) (bool, error) {
	record, err := m.store.GetByAddress(ctx, address)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load classification: %w", err)
	}
	if !record.AlertsSuppressed {
		return false, nil
	}
	if record.SuppressionExpiresAt > 0 && record.SuppressionExpiresAt <= m.clock().UnixMilli() {
		record.AlertsSuppressed = false
		record.SuppressionReason = ""
		record.SuppressionExpiresAt = 0
		if err := m.store.Update(ctx, record); err != nil {
			return false, fmt.Errorf("clear expired suppression: %w", err)
		}
		return false, nil
	}
	return true, nil
}

// PurgeRejected deletes rejected records past the retention window. Returns
// the number of records deleted.
func (m *Manager) PurgeRejected(ctx context.Context) (int64, error) {
	cutoffMs := m.clock().Add(-m.cfg.RejectedRetention).UnixMilli()
	deleted, err := m.store.DeleteByStatusBefore(ctx, domain.StatusRejected, cutoffMs)
	if err != nil {
		return 0, fmt.Errorf("retention sweep: %w", err)
	}
	if deleted > 0 {
		observability.DefaultMetrics.RecordsPurged.Add(float64(deleted))
		m.logger.Info().Int64("deleted", deleted).Msg("purged long-rejected classifications")
	}
	return deleted, nil
}
