package memory

import (
	"context"
	"errors"
	"testing"

	"solana-token-qualifier/internal/domain"
	"solana-token-qualifier/internal/storage"
)

func record(address string, status domain.Status) *domain.ClassificationRecord {
	return &domain.ClassificationRecord{
		TokenAddress:    address,
		Status:          status,
		FirstDetectedAt: 1_700_000_000_000,
		UpdatedAt:       1_700_000_000_000,
		EdgeScore:       50,
	}
}

func TestInsertAndGetByAddress(t *testing.T) {
	store := NewClassificationStore()
	ctx := context.Background()

	if err := store.Insert(ctx, record("TokA", domain.StatusFresh)); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	got, err := store.GetByAddress(ctx, "TokA")
	if err != nil {
		t.Fatalf("GetByAddress: %v", err)
	}
	if got.Status != domain.StatusFresh {
		t.Errorf("Status = %s, want %s", got.Status, domain.StatusFresh)
	}
}

func TestInsertDuplicate(t *testing.T) {
	store := NewClassificationStore()
	ctx := context.Background()

	if err := store.Insert(ctx, record("TokA", domain.StatusFresh)); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	err := store.Insert(ctx, record("TokA", domain.StatusDormant))
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("err = %v, want ErrDuplicateKey", err)
	}
}

func TestInsertInvalid(t *testing.T) {
	store := NewClassificationStore()
	if err := store.Insert(context.Background(), &domain.ClassificationRecord{}); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestGetByAddressNotFound(t *testing.T) {
	store := NewClassificationStore()
	if _, err := store.GetByAddress(context.Background(), "Nope"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateNotFound(t *testing.T) {
	store := NewClassificationStore()
	if err := store.Update(context.Background(), record("Nope", domain.StatusFresh)); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

// Records handed out must be copies; mutating a result must not leak back
// into the store.
func TestRecordsAreIsolatedCopies(t *testing.T) {
	store := NewClassificationStore()
	ctx := context.Background()

	if err := store.Insert(ctx, record("TokA", domain.StatusFresh)); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	first, _ := store.GetByAddress(ctx, "TokA")
	first.Status = domain.StatusRejected

	second, _ := store.GetByAddress(ctx, "TokA")
	if second.Status != domain.StatusFresh {
		t.Errorf("stored record mutated through a returned copy: %s", second.Status)
	}
}

func TestGetByStatusOrderAndPagination(t *testing.T) {
	store := NewClassificationStore()
	ctx := context.Background()

	for i, addr := range []string{"Old", "Mid", "New"} {
		r := record(addr, domain.StatusWatchlist)
		r.UpdatedAt = int64(1_700_000_000_000 + i*1000)
		if err := store.Insert(ctx, r); err != nil {
			t.Fatalf("Insert(%s): %v", addr, err)
		}
	}
	if err := store.Insert(ctx, record("OtherStatus", domain.StatusFresh)); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	got, err := store.GetByStatus(ctx, domain.StatusWatchlist, 2, 0)
	if err != nil {
		t.Fatalf("GetByStatus: %v", err)
	}
	if len(got) != 2 || got[0].TokenAddress != "New" || got[1].TokenAddress != "Mid" {
		t.Errorf("page 1 = %v, want [New Mid]", addresses(got))
	}

	got, err = store.GetByStatus(ctx, domain.StatusWatchlist, 2, 2)
	if err != nil {
		t.Fatalf("GetByStatus offset: %v", err)
	}
	if len(got) != 1 || got[0].TokenAddress != "Old" {
		t.Errorf("page 2 = %v, want [Old]", addresses(got))
	}
}

func TestGetForReevaluationFiltersAndOrders(t *testing.T) {
	store := NewClassificationStore()
	ctx := context.Background()

	stale := record("StaleLow", domain.StatusUnqualified)
	stale.LastReevaluatedAt = 100
	stale.EdgeScore = 40

	staleHigh := record("StaleHigh", domain.StatusUnqualified)
	staleHigh.LastReevaluatedAt = 100
	staleHigh.EdgeScore = 80

	recent := record("Recent", domain.StatusUnqualified)
	recent.LastReevaluatedAt = 5000

	rejected := record("Rejected", domain.StatusRejected)
	rejected.LastReevaluatedAt = 100

	suppressed := record("Suppressed", domain.StatusUnqualified)
	suppressed.LastReevaluatedAt = 100
	suppressed.AlertsSuppressed = true

	for _, r := range []*domain.ClassificationRecord{stale, staleHigh, recent, rejected, suppressed} {
		if err := store.Insert(ctx, r); err != nil {
			t.Fatalf("Insert(%s): %v", r.TokenAddress, err)
		}
	}

	got, err := store.GetForReevaluation(ctx, 1000, 10)
	if err != nil {
		t.Fatalf("GetForReevaluation: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %v, want [StaleHigh StaleLow]", addresses(got))
	}
	if got[0].TokenAddress != "StaleHigh" || got[1].TokenAddress != "StaleLow" {
		t.Errorf("order = %v, want best edge score first", addresses(got))
	}
}

func TestDeleteByStatusBefore(t *testing.T) {
	store := NewClassificationStore()
	ctx := context.Background()

	oldRejected := record("OldRejected", domain.StatusRejected)
	oldRejected.UpdatedAt = 100
	newRejected := record("NewRejected", domain.StatusRejected)
	newRejected.UpdatedAt = 5000
	oldFresh := record("OldFresh", domain.StatusFresh)
	oldFresh.UpdatedAt = 100

	for _, r := range []*domain.ClassificationRecord{oldRejected, newRejected, oldFresh} {
		if err := store.Insert(ctx, r); err != nil {
			t.Fatalf("Insert(%s): %v", r.TokenAddress, err)
		}
	}

	deleted, err := store.DeleteByStatusBefore(ctx, domain.StatusRejected, 1000)
	if err != nil {
		t.Fatalf("DeleteByStatusBefore: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}
	if _, err := store.GetByAddress(ctx, "OldRejected"); !errors.Is(err, storage.ErrNotFound) {
		t.Error("OldRejected should be gone")
	}
	if _, err := store.GetByAddress(ctx, "NewRejected"); err != nil {
		t.Error("NewRejected should survive")
	}
	if _, err := store.GetByAddress(ctx, "OldFresh"); err != nil {
		t.Error("OldFresh should survive")
	}
}

func addresses(records []*domain.ClassificationRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.TokenAddress
	}
	return out
}
