package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/gatepass/gatepass/internal/domain"
	"github.com/gatepass/gatepass/internal/infra/database/models"
)

type ZoneRepository struct {
	db *gorm.DB
}

func NewZoneRepository(db *gorm.DB) *ZoneRepository {
	return &ZoneRepository{db: db}
}

func (r *ZoneRepository) ListByEvent(ctx context.Context, eventID string) ([]domain.Zone, error) {
	var rows []models.Zone
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("code ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.Zone, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.ToDomain())
	}
	return out, nil
}

func (r *ZoneRepository) Create(ctx context.Context, z *domain.Zone) error {
	m := models.ZoneFromDomain(*z)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	*z = m.ToDomain()
	return nil
}

func (r *ZoneRepository) Update(ctx context.Context, z *domain.Zone) error {
	m := models.ZoneFromDomain(*z)
	res := r.db.WithContext(ctx).Model(&models.Zone{}).
		Where("id = ?", m.ID).
		Select("*").Omit("id", "created_at").
		Updates(&m)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.NotFoundError{Resource: "zone"}
	}

	var fresh models.Zone
	if err := r.db.WithContext(ctx).Where("id = ?", m.ID).Take(&fresh).Error; err != nil {
		return err
	}
	*z = fresh.ToDomain()
	return nil
}

func (r *ZoneRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Zone{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.NotFoundError{Resource: "zone"}
	}
	return nil
}
