package repository

import (
	"context"

	"github.com/beanlink/beanlink/internal/market/entity"
	"gorm.io/gorm"
)

// ActivityLogRepository operations audit storage
type ActivityLogRepository struct {
	db *gorm.DB
}

func NewActivityLogRepository(db *gorm.DB) *ActivityLogRepository {
	return &ActivityLogRepository{db: db}
}

// FindByEntity lists log rows for one entity, newest first. Log rows are
// written inside the mutation transactions, so this repo only reads.
func (r *ActivityLogRepository) FindByEntity(ctx context.Context, entityType, entityID string, limit int) ([]entity.ActivityLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var logs []entity.ActivityLog
	err := r.db.WithContext(ctx).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}
