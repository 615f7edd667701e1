package repository

import (
	"context"
	"errors"
	"time"

	"github.com/beanlink/beanlink/internal/market/entity"
	"gorm.io/gorm"
)

// CertificationRepository certification storage
type CertificationRepository struct {
	db *gorm.DB
}

func NewCertificationRepository(db *gorm.DB) *CertificationRepository {
	return &CertificationRepository{db: db}
}

// FindAll lists certifications
func (r *CertificationRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Certification, int64, error) {
	var certs []entity.Certification
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Certification{})

	if userID := filters["user_id"]; userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if certType := filters["cert_type"]; certType != "" {
		query = query.Where("cert_type = ?", certType)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("User").
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&certs).Error

	return certs, total, err
}

// FindByID loads a certification
func (r *CertificationRepository) FindByID(ctx context.Context, id string) (*entity.Certification, error) {
	var cert entity.Certification
	err := r.db.WithContext(ctx).Preload("User").Where("id = ?", id).First(&cert).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &cert, nil
}

// Create inserts a certification
func (r *CertificationRepository) Create(ctx context.Context, cert *entity.Certification) error {
	return r.db.WithContext(ctx).Create(cert).Error
}

// Update saves a certification
func (r *CertificationRepository) Update(ctx context.Context, cert *entity.Certification) error {
	return r.db.WithContext(ctx).Save(cert).Error
}

// ExpireOverdue flips verified certifications whose expiry has passed to
// expired. Returns the number of rows changed.
func (r *CertificationRepository) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&entity.Certification{}).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at < ?", entity.CertStatusVerified, now).
		Update("status", entity.CertStatusExpired)
	return result.RowsAffected, result.Error
}
