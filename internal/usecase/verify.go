package usecase

import (
	"context"
	"time"

	"github.com/gatepass/gatepass/internal/domain"
)

// nowFunc is swapped in tests.
var nowFunc = time.Now

// VerifyUsecase resolves public verification codes scanned from a card's
// QR. The repository applies the precedence the QR generator encodes with:
// accreditation id, then badge number, then record id.
type VerifyUsecase struct {
	records AccreditationRepository
	cache   VerifyCache
}

func NewVerifyUsecase(records AccreditationRepository, cache VerifyCache) *VerifyUsecase {
	return &VerifyUsecase{records: records, cache: cache}
}

// Verification is the public view of a resolved code; it exposes only what
// a gate steward needs.
type Verification struct {
	FullName        string        `json:"fullName"`
	Role            string        `json:"role"`
	Status          domain.Status `json:"status"`
	BadgeNumber     string        `json:"badgeNumber,omitempty"`
	AccreditationID string        `json:"accreditationId,omitempty"`
	ZoneCode        string        `json:"zoneCode,omitempty"`
	Expired         bool          `json:"expired"`
}

func (uc *VerifyUsecase) Verify(ctx context.Context, code string) (Verification, error) {
	rec, cached := uc.lookup(ctx, code)
	if !cached {
		var err error
		rec, err = uc.records.FindByReference(ctx, code)
		if err != nil {
			return Verification{}, err
		}
		if uc.cache != nil {
			uc.cache.Set(ctx, code, rec)
		}
	}

	vm := verificationOf(rec)
	return vm, nil
}

func (uc *VerifyUsecase) lookup(ctx context.Context, code string) (domain.AccreditationRecord, bool) {
	if uc.cache == nil {
		return domain.AccreditationRecord{}, false
	}
	return uc.cache.Get(ctx, code)
}

func verificationOf(rec domain.AccreditationRecord) Verification {
	expired := false
	if rec.ExpiresAt != nil {
		expired = rec.ExpiresAt.Before(nowFunc())
	}
	return Verification{
		FullName:        rec.FirstName + " " + rec.LastName,
		Role:            rec.Role,
		Status:          rec.Status,
		BadgeNumber:     rec.BadgeNumber,
		AccreditationID: rec.AccreditationID,
		ZoneCode:        rec.ZoneCode,
		Expired:         expired,
	}
}
