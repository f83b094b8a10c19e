package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gatepass/gatepass/internal/domain"
	"github.com/gatepass/gatepass/internal/infra/database/models"
)

type AccreditationRepository struct {
	db *gorm.DB
}

func NewAccreditationRepository(db *gorm.DB) *AccreditationRepository {
	return &AccreditationRepository{db: db}
}

func (r *AccreditationRepository) Create(ctx context.Context, rec *domain.AccreditationRecord) error {
	m := models.AccreditationFromDomain(*rec)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	*rec = m.ToDomain()
	return nil
}

func (r *AccreditationRepository) Get(ctx context.Context, id string) (domain.AccreditationRecord, error) {
	var m models.Accreditation
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.AccreditationRecord{}, domain.NotFoundError{Resource: "accreditation"}
	}
	if err != nil {
		return domain.AccreditationRecord{}, err
	}
	return m.ToDomain(), nil
}

func (r *AccreditationRepository) List(ctx context.Context, filter domain.RecordFilter) ([]domain.AccreditationRecord, error) {
	q := r.db.WithContext(ctx).Model(&models.Accreditation{})

	if filter.EventID != "" {
		q = q.Where("event_id = ?", filter.EventID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", string(filter.Status))
	}
	if filter.Role != "" {
		q = q.Where("LOWER(role) = LOWER(?)", filter.Role)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + s + "%"
		q = q.Where(
			"first_name ILIKE ? OR last_name ILIKE ? OR email ILIKE ? OR badge_number ILIKE ? OR accreditation_id ILIKE ?",
			like, like, like, like, like,
		)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	var rows []models.Accreditation
	if err := q.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.AccreditationRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.ToDomain())
	}
	return out, nil
}

func (r *AccreditationRepository) Update(ctx context.Context, rec *domain.AccreditationRecord) error {
	m := models.AccreditationFromDomain(*rec)
	res := r.db.WithContext(ctx).Model(&models.Accreditation{}).
		Where("id = ?", m.ID).
		Select("*").Omit("id", "created_at").
		Updates(&m)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.NotFoundError{Resource: "accreditation"}
	}

	var fresh models.Accreditation
	if err := r.db.WithContext(ctx).Where("id = ?", m.ID).Take(&fresh).Error; err != nil {
		return err
	}
	*rec = fresh.ToDomain()
	return nil
}

func (r *AccreditationRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Accreditation{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.NotFoundError{Resource: "accreditation"}
	}
	return nil
}

// FindByReference resolves a verification code: exact accreditation id
// first, then badge number, then raw record id. Must agree with the
// precedence the QR generator encodes with.
func (r *AccreditationRepository) FindByReference(ctx context.Context, code string) (domain.AccreditationRecord, error) {
	lookups := []string{"accreditation_id = ?", "badge_number = ?", "id = ?"}
	for _, cond := range lookups {
		var m models.Accreditation
		err := r.db.WithContext(ctx).Where(cond, code).Order("updated_at DESC").Take(&m).Error
		if err == nil {
			return m.ToDomain(), nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.AccreditationRecord{}, err
		}
	}
	return domain.AccreditationRecord{}, domain.NotFoundError{Resource: "accreditation"}
}

// NextBadgeSequence advances and returns the role-scoped counter for an
// event. The row is locked inside the transaction so concurrent approvals
// never mint the same number.
func (r *AccreditationRepository) NextBadgeSequence(ctx context.Context, eventID, role string) (int, error) {
	role = strings.ToLower(strings.TrimSpace(role))
	var next int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seq := models.BadgeSequence{EventID: eventID, Role: role, Next: 1}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seq).Error; err != nil {
			return err
		}

		var row models.BadgeSequence
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("event_id = ? AND role = ?", eventID, role).
			Take(&row).Error; err != nil {
			return err
		}

		next = row.Next
		return tx.Model(&models.BadgeSequence{}).
			Where("event_id = ? AND role = ?", eventID, role).
			Update("next", row.Next+1).Error
	})
	return next, err
}
