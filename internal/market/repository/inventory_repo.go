package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/beanlink/beanlink/internal/market/entity"
	"gorm.io/gorm"
)

// InventoryRepository inventory storage
type InventoryRepository struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// FindAll lists inventory items
func (r *InventoryRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.InventoryItem, int64, error) {
	var items []entity.InventoryItem
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.InventoryItem{})

	if ownerID := filters["owner_id"]; ownerID != "" {
		query = query.Where("owner_id = ?", ownerID)
	}
	if category := filters["category"]; category != "" {
		query = query.Where("category = ?", category)
	}
	if filters["low_stock"] == "true" {
		query = query.Where("low_stock_level > 0 AND quantity <= low_stock_level")
	}
	if search := filters["search"]; search != "" {
		query = query.Where("name ILIKE ?", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Order("name ASC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}

// FindByID loads an item
func (r *InventoryRepository) FindByID(ctx context.Context, id string) (*entity.InventoryItem, error) {
	var item entity.InventoryItem
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindByOwner loads all items for one owner, unpaged; the weekly
// inventory report reads the full list.
func (r *InventoryRepository) FindByOwner(ctx context.Context, ownerID string) ([]entity.InventoryItem, error) {
	var items []entity.InventoryItem
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("name ASC").
		Find(&items).Error
	return items, err
}

// FindLowStock loads items at or below their threshold for one owner.
func (r *InventoryRepository) FindLowStock(ctx context.Context, ownerID string) ([]entity.InventoryItem, error) {
	var items []entity.InventoryItem
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND low_stock_level > 0 AND quantity <= low_stock_level", ownerID).
		Order("name ASC").
		Find(&items).Error
	return items, err
}

// Create inserts an item
func (r *InventoryRepository) Create(ctx context.Context, item *entity.InventoryItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// Update saves an item
func (r *InventoryRepository) Update(ctx context.Context, item *entity.InventoryItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// Delete removes an item
func (r *InventoryRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.InventoryItem{}).Error
}

// Adjust applies a signed quantity delta inside a transaction; quantity
// never goes below zero. A positive delta counts as a restock.
func (r *InventoryRepository) Adjust(ctx context.Context, id string, delta float64, reason, operatorID, operatorName string) (*entity.InventoryItem, error) {
	var item entity.InventoryItem

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if item.Quantity+delta < 0 {
			return fmt.Errorf("insufficient stock: have %.2f, adjust %.2f", item.Quantity, delta)
		}

		item.Quantity += delta
		if delta > 0 {
			now := time.Now()
			item.LastRestockAt = &now
		}
		if err := tx.Save(&item).Error; err != nil {
			return err
		}

		log := &entity.ActivityLog{
			ID:           newID(),
			EntityType:   "inventory",
			EntityID:     item.ID,
			Action:       "adjust",
			Content:      reason,
			Metadata:     entity.JSONB{"delta": delta, "quantity": item.Quantity},
			OperatorID:   operatorID,
			OperatorName: operatorName,
		}
		return tx.Create(log).Error
	})

	if err != nil {
		return nil, err
	}
	return &item, nil
}
