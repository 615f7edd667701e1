package repository

import (
	"context"
	"errors"

	"github.com/beanlink/beanlink/internal/market/entity"
	"gorm.io/gorm"
)

// PreferenceRepository notification preference storage
type PreferenceRepository struct {
	db *gorm.DB
}

func NewPreferenceRepository(db *gorm.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// FindByUser loads all preference rows for one user
func (r *PreferenceRepository) FindByUser(ctx context.Context, userID string) ([]entity.NotificationPreference, error) {
	var prefs []entity.NotificationPreference
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("report_type ASC").
		Find(&prefs).Error
	return prefs, err
}

// FindByUserAndType loads one preference row
func (r *PreferenceRepository) FindByUserAndType(ctx context.Context, userID, reportType string) (*entity.NotificationPreference, error) {
	var pref entity.NotificationPreference
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND report_type = ?", userID, reportType).
		First(&pref).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &pref, nil
}

// FindEnabled loads every enabled subscription for one report type with
// the subscriber preloaded; the report run fans out over this list.
func (r *PreferenceRepository) FindEnabled(ctx context.Context, reportType string) ([]entity.NotificationPreference, error) {
	var prefs []entity.NotificationPreference
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("report_type = ? AND enabled = ? AND email_enabled = ?", reportType, true, true).
		Find(&prefs).Error
	return prefs, err
}

// Upsert creates or updates the row for (user, report type)
func (r *PreferenceRepository) Upsert(ctx context.Context, pref *entity.NotificationPreference) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing entity.NotificationPreference
		err := tx.Where("user_id = ? AND report_type = ?", pref.UserID, pref.ReportType).
			First(&existing).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				if pref.ID == "" {
					pref.ID = newID()
				}
				return tx.Create(pref).Error
			}
			return err
		}

		existing.Enabled = pref.Enabled
		existing.Weekday = pref.Weekday
		existing.Hour = pref.Hour
		existing.Timezone = pref.Timezone
		existing.EmailEnabled = pref.EmailEnabled
		existing.PushEnabled = pref.PushEnabled
		if err := tx.Save(&existing).Error; err != nil {
			return err
		}
		*pref = existing
		return nil
	})
}
