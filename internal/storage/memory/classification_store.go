package memory

import (
	"context"
	"sort"
	"sync"

	"solana-token-qualifier/internal/domain"
	"solana-token-qualifier/internal/storage"
)

// ClassificationStore is an in-memory implementation of storage.ClassificationStore.
type ClassificationStore struct {
	mu   sync.RWMutex
	data map[string]*domain.ClassificationRecord // keyed by token address
}

// NewClassificationStore creates a new in-memory classification store.
func NewClassificationStore() *ClassificationStore {
	return &ClassificationStore{
		data: make(map[string]*domain.ClassificationRecord),
	}
}

// Compile-time interface check.
var _ storage.ClassificationStore = (*ClassificationStore)(nil)

// Insert adds a new record. Returns ErrDuplicateKey if the address exists.
func (s *ClassificationStore) Insert(_ context.Context, r *domain.ClassificationRecord) error {
	if r == nil || r.TokenAddress == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[r.TokenAddress]; exists {
		return storage.ErrDuplicateKey
	}

	recordCopy := *r
	s.data[r.TokenAddress] = &recordCopy
	return nil
}

// GetByAddress retrieves a record by token address.
func (s *ClassificationStore) GetByAddress(_ context.Context, address string) (*domain.ClassificationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.data[address]
	if !ok {
		return nil, storage.ErrNotFound
	}

	recordCopy := *r
	return &recordCopy, nil
}

// Update replaces an existing record. Returns ErrNotFound if not exists.
func (s *ClassificationStore) Update(_ context.Context, r *domain.ClassificationRecord) error {
	if r == nil || r.TokenAddress == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[r.TokenAddress]; !exists {
		return storage.ErrNotFound
	}

	recordCopy := *r
	s.data[r.TokenAddress] = &recordCopy
	return nil
}

// GetByStatus retrieves records with the given status, ordered by
// updated_at DESC, with limit/offset pagination.
func (s *ClassificationStore) GetByStatus(_ context.Context, status domain.Status, limit, offset int) ([]*domain.ClassificationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.ClassificationRecord
	for _, r := range s.data {
		if r.Status == status {
			recordCopy := *r
			result = append(result, &recordCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].UpdatedAt != result[j].UpdatedAt {
			return result[i].UpdatedAt > result[j].UpdatedAt
		}
		return result[i].TokenAddress < result[j].TokenAddress
	})

	if offset >= len(result) {
		return nil, nil
	}
	result = result[offset:]
	if limit > 0 && limit < len(result) {
		result = result[:limit]
	}

	return result, nil
}

// GetForReevaluation retrieves up to limit records whose last_reevaluated_at
// is older than cutoffMs, excluding rejected and suppressed records,
// ordered by edge score DESC.
func (s *ClassificationStore) GetForReevaluation(_ context.Context, cutoffMs int64, limit int) ([]*domain.ClassificationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.ClassificationRecord
	for _, r := range s.data {
		if r.Status == domain.StatusRejected || r.AlertsSuppressed {
			continue
		}
		if r.LastReevaluatedAt >= cutoffMs {
			continue
		}
		recordCopy := *r
		result = append(result, &recordCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].EdgeScore != result[j].EdgeScore {
			return result[i].EdgeScore > result[j].EdgeScore
		}
		return result[i].TokenAddress < result[j].TokenAddress
	})

	if limit > 0 && limit < len(result) {
		result = result[:limit]
	}

	return result, nil
}

// DeleteByStatusBefore deletes records with the given status whose
// updated_at is older than cutoffMs. Returns the number of rows deleted.
func (s *ClassificationStore) DeleteByStatusBefore(_ context.Context, status domain.Status, cutoffMs int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for addr, r := range s.data {
		if r.Status == status && r.UpdatedAt < cutoffMs {
			delete(s.data, addr)
			deleted++
		}
	}

	return deleted, nil
}
