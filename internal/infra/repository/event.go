package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/gatepass/gatepass/internal/domain"
	"github.com/gatepass/gatepass/internal/infra/database/models"
)

type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Create(ctx context.Context, ev *domain.Event) error {
	m := models.EventFromDomain(*ev)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	*ev = m.ToDomain()
	return nil
}

func (r *EventRepository) Get(ctx context.Context, id string) (domain.Event, error) {
	var m models.Event
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Event{}, domain.NotFoundError{Resource: "event"}
	}
	if err != nil {
		return domain.Event{}, err
	}
	return m.ToDomain(), nil
}

func (r *EventRepository) List(ctx context.Context) ([]domain.Event, error) {
	var rows []models.Event
	if err := r.db.WithContext(ctx).Order("start_date DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Event, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.ToDomain())
	}
	return out, nil
}

func (r *EventRepository) Update(ctx context.Context, ev *domain.Event) error {
	m := models.EventFromDomain(*ev)
	res := r.db.WithContext(ctx).Model(&models.Event{}).
		Where("id = ?", m.ID).
		Select("*").Omit("id", "created_at").
		Updates(&m)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.NotFoundError{Resource: "event"}
	}

	var fresh models.Event
	if err := r.db.WithContext(ctx).Where("id = ?", m.ID).Take(&fresh).Error; err != nil {
		return err
	}
	*ev = fresh.ToDomain()
	return nil
}

func (r *EventRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Event{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.NotFoundError{Resource: "event"}
	}
	return nil
}
