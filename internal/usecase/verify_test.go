package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gatepass/gatepass/internal/domain"
)

type mockVerifyCache struct {
	store map[string]domain.AccreditationRecord
	sets  int
}

func newMockVerifyCache() *mockVerifyCache {
	return &mockVerifyCache{store: make(map[string]domain.AccreditationRecord)}
}

func (m *mockVerifyCache) Get(ctx context.Context, code string) (domain.AccreditationRecord, bool) {
	rec, ok := m.store[code]
	return rec, ok
}

func (m *mockVerifyCache) Set(ctx context.Context, code string, rec domain.AccreditationRecord) {
	m.store[code] = rec
	m.sets++
}

func TestVerifyPrecedence(t *testing.T) {
	records := newMockAccreditationRepo()
	records.records["rec-1"] = domain.AccreditationRecord{
		ID:              "rec-1",
		FirstName:       "Ann",
		LastName:        "Svensson",
		Role:            "Athlete",
		Status:          domain.StatusApproved,
		AccreditationID: "ACC-2026-DEADBEEF",
		BadgeNumber:     "ATH-001",
		ZoneCode:        "A,B",
	}
	uc := NewVerifyUsecase(records, nil)

	for _, code := range []string{"ACC-2026-DEADBEEF", "ATH-001", "rec-1"} {
		v, err := uc.Verify(context.Background(), code)
		if err != nil {
			t.Fatalf("verify %q failed: %v", code, err)
		}
		if v.FullName != "Ann Svensson" || v.Status != domain.StatusApproved {
			t.Fatalf("verify %q: unexpected result %+v", code, v)
		}
	}

	_, err := uc.Verify(context.Background(), "nope")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found for unknown code, got %v", err)
	}
}

func TestVerifyCachesLookups(t *testing.T) {
	records := newMockAccreditationRepo()
	records.records["rec-1"] = domain.AccreditationRecord{
		ID: "rec-1", FirstName: "Ann", LastName: "Svensson", Status: domain.StatusApproved,
	}
	cache := newMockVerifyCache()
	uc := NewVerifyUsecase(records, cache)

	if _, err := uc.Verify(context.Background(), "rec-1"); err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if cache.sets != 1 {
		t.Fatalf("expected resolved lookup to be cached")
	}

	// Second resolve is served from the cache even if the repo forgets
	// the record.
	delete(records.records, "rec-1")
	if _, err := uc.Verify(context.Background(), "rec-1"); err != nil {
		t.Fatalf("expected cached verify to succeed: %v", err)
	}
}

func TestVerifyExpiry(t *testing.T) {
	expiry := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	records := newMockAccreditationRepo()
	records.records["rec-1"] = domain.AccreditationRecord{
		ID: "rec-1", FirstName: "Ann", Status: domain.StatusApproved, ExpiresAt: &expiry,
	}
	uc := NewVerifyUsecase(records, nil)

	restore := nowFunc
	defer func() { nowFunc = restore }()

	nowFunc = func() time.Time { return expiry.Add(-time.Hour) }
	v, err := uc.Verify(context.Background(), "rec-1")
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if v.Expired {
		t.Fatalf("card must not be expired before its expiry")
	}

	nowFunc = func() time.Time { return expiry.Add(time.Hour) }
	v, _ = uc.Verify(context.Background(), "rec-1")
	if !v.Expired {
		t.Fatalf("card must be expired after its expiry")
	}
}
