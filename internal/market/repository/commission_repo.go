package repository

import (
	"context"
	"errors"
	"time"

	"github.com/beanlink/beanlink/internal/market/entity"
	"gorm.io/gorm"
)

// CommissionRepository platform commission storage
type CommissionRepository struct {
	db *gorm.DB
}

func NewCommissionRepository(db *gorm.DB) *CommissionRepository {
	return &CommissionRepository{db: db}
}

// FindAll lists commissions
func (r *CommissionRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Commission, int64, error) {
	var commissions []entity.Commission
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Commission{})

	if supplierID := filters["supplier_id"]; supplierID != "" {
		query = query.Where("supplier_id = ?", supplierID)
	}
	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("Supplier").
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&commissions).Error

	return commissions, total, err
}

// Create inserts a commission row
func (r *CommissionRepository) Create(ctx context.Context, commission *entity.Commission) error {
	return r.db.WithContext(ctx).Create(commission).Error
}

// Update saves a commission row
func (r *CommissionRepository) Update(ctx context.Context, commission *entity.Commission) error {
	return r.db.WithContext(ctx).Save(commission).Error
}

// FindByID loads a commission row
func (r *CommissionRepository) FindByID(ctx context.Context, id string) (*entity.Commission, error) {
	var commission entity.Commission
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&commission).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &commission, nil
}

// SupplierTotal one supplier's slice of a commission window
type SupplierTotal struct {
	SupplierID   string  `json:"supplier_id"`
	SupplierName string  `json:"supplier_name"`
	Count        int64   `json:"count"`
	Total        float64 `json:"total"`
}

// CommissionSummary the aggregate a commission report is rendered from
type CommissionSummary struct {
	WindowStart    time.Time       `json:"window_start"`
	WindowEnd      time.Time       `json:"window_end"`
	Count          int64           `json:"count"`
	TotalBase      float64         `json:"total_base"`
	TotalAmount    float64         `json:"total_amount"`
	SupplierTotals []SupplierTotal `json:"supplier_totals"`
}

// SummarizeWindow aggregates commissions created inside [start, end).
func (r *CommissionRepository) SummarizeWindow(ctx context.Context, start, end time.Time) (*CommissionSummary, error) {
	summary := &CommissionSummary{WindowStart: start, WindowEnd: end}

	row := struct {
		Count       int64
		TotalBase   float64
		TotalAmount float64
	}{}
	err := r.db.WithContext(ctx).Raw(`
		SELECT COUNT(*) AS count,
		       COALESCE(SUM(base_amount), 0) AS total_base,
		       COALESCE(SUM(amount), 0) AS total_amount
		FROM commissions
		WHERE created_at >= ? AND created_at < ?`, start, end).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	summary.Count = row.Count
	summary.TotalBase = row.TotalBase
	summary.TotalAmount = row.TotalAmount

	err = r.db.WithContext(ctx).Raw(`
		SELECT c.supplier_id,
		       COALESCE(u.company_name, u.name) AS supplier_name,
		       COUNT(*) AS count,
		       COALESCE(SUM(c.amount), 0) AS total
		FROM commissions c
		LEFT JOIN users u ON u.id = c.supplier_id
		WHERE c.created_at >= ? AND c.created_at < ?
		GROUP BY c.supplier_id, supplier_name
		ORDER BY total DESC
		LIMIT 20`, start, end).
		Scan(&summary.SupplierTotals).Error
	if err != nil {
		return nil, err
	}

	return summary, nil
}
