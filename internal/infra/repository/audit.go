package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/gatepass/gatepass/internal/domain"
	"github.com/gatepass/gatepass/internal/infra/database/models"
)

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Append(ctx context.Context, entry domain.AuditEntry) error {
	m := models.AuditEntryFromDomain(entry)
	return r.db.WithContext(ctx).Create(&m).Error
}

// ListByRecord returns the transition history for one accreditation,
// newest first.
func (r *AuditRepository) ListByRecord(ctx context.Context, recordID string) ([]domain.AuditEntry, error) {
	var rows []models.AuditEntry
	err := r.db.WithContext(ctx).
		Where("record_id = ?", recordID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]domain.AuditEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.ToDomain())
	}
	return out, nil
}
