package repository

import (
	"context"
	"errors"

	"github.com/beanlink/beanlink/internal/market/entity"
	"gorm.io/gorm"
)

// OfferingRepository coffee offering storage
type OfferingRepository struct {
	db *gorm.DB
}

func NewOfferingRepository(db *gorm.DB) *OfferingRepository {
	return &OfferingRepository{db: db}
}

// FindAll lists offerings
func (r *OfferingRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.CoffeeOffering, int64, error) {
	var items []entity.CoffeeOffering
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.CoffeeOffering{})

	if supplierID := filters["supplier_id"]; supplierID != "" {
		query = query.Where("supplier_id = ?", supplierID)
	}
	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if process := filters["process"]; process != "" {
		query = query.Where("process = ?", process)
	}
	if roast := filters["roast_level"]; roast != "" {
		query = query.Where("roast_level = ?", roast)
	}
	if search := filters["search"]; search != "" {
		query = query.Where("name ILIKE ? OR origin ILIKE ?", "%"+search+"%", "%"+search+"%")
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
		Find(&items).Error

	return items, total, err
}

// FindByID loads an offering
func (r *OfferingRepository) FindByID(ctx context.Context, id string) (*entity.CoffeeOffering, error) {
	var offering entity.CoffeeOffering
	err := r.db.WithContext(ctx).
		Preload("Supplier").
		Where("id = ?", id).
		First(&offering).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &offering, nil
}

// Create inserts an offering
func (r *OfferingRepository) Create(ctx context.Context, offering *entity.CoffeeOffering) error {
	return r.db.WithContext(ctx).Create(offering).Error
}

// Update saves an offering
func (r *OfferingRepository) Update(ctx context.Context, offering *entity.CoffeeOffering) error {
	return r.db.WithContext(ctx).Save(offering).Error
}

// Delete removes an offering
func (r *OfferingRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.CoffeeOffering{}).Error
}

// ReserveQuantity decrements available stock inside a transaction; marks
// the offering sold_out when stock reaches zero.
func (r *OfferingRepository) ReserveQuantity(ctx context.Context, id string, quantityKg float64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var offering entity.CoffeeOffering
		if err := tx.Where("id = ?", id).First(&offering).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if offering.QuantityKg < quantityKg {
			return errors.New("insufficient offering quantity")
		}

		offering.QuantityKg -= quantityKg
		if offering.QuantityKg == 0 {
			offering.Status = entity.OfferingStatusSoldOut
		}

		return tx.Save(&offering).Error
	})
}
