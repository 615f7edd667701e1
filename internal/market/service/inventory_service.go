package service

import (
	"context"

	"github.com/beanlink/beanlink/internal/market/entity"
	"github.com/beanlink/beanlink/internal/market/repository"
	"github.com/beanlink/beanlink/internal/market/sse"
	"github.com/google/uuid"
)

// InventoryService cafe/roaster stock tracking
type InventoryService struct {
	inventoryRepo *repository.InventoryRepository
}

func NewInventoryService(inventoryRepo *repository.InventoryRepository) *InventoryService {
	return &InventoryService{inventoryRepo: inventoryRepo}
}

// ListItems pages inventory
func (s *InventoryService) ListItems(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.InventoryItem, int64, error) {
	return s.inventoryRepo.FindAll(ctx, page, pageSize, filters)
}

// GetItem loads one item
func (s *InventoryService) GetItem(ctx context.Context, id string) (*entity.InventoryItem, error) {
	return s.inventoryRepo.FindByID(ctx, id)
}

// CreateItemRequest new item payload
type CreateItemRequest struct {
	Name          string  `json:"name" binding:"required"`
	Category      string  `json:"category"`
	Quantity      float64 `json:"quantity"`
	Unit          string  `json:"unit"`
	LowStockLevel float64 `json:"low_stock_level"`
	Notes         string  `json:"notes"`
}

// CreateItem registers a stock item for the owner.
func (s *InventoryService) CreateItem(ctx context.Context, ownerID string, req *CreateItemRequest) (*entity.InventoryItem, error) {
	unit := req.Unit
	if unit == "" {
		unit = "kg"
	}

	item := &entity.InventoryItem{
		ID:            uuid.New().String()[:32],
		OwnerID:       ownerID,
		Name:          req.Name,
		Category:      req.Category,
		Quantity:      req.Quantity,
		Unit:          unit,
		LowStockLevel: req.LowStockLevel,
		Notes:         req.Notes,
	}

	if err := s.inventoryRepo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateItemRequest item update payload
type UpdateItemRequest struct {
	Name          *string  `json:"name"`
	Category      *string  `json:"category"`
	Unit          *string  `json:"unit"`
	LowStockLevel *float64 `json:"low_stock_level"`
	Notes         *string  `json:"notes"`
}

// UpdateItem patches item metadata. Quantity changes go through Adjust.
func (s *InventoryService) UpdateItem(ctx context.Context, id string, req *UpdateItemRequest) (*entity.InventoryItem, error) {
	item, err := s.inventoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Category != nil {
		item.Category = *req.Category
	}
	if req.Unit != nil {
		item.Unit = *req.Unit
	}
	if req.LowStockLevel != nil {
		item.LowStockLevel = *req.LowStockLevel
	}
	if req.Notes != nil {
		item.Notes = *req.Notes
	}

	if err := s.inventoryRepo.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteItem removes an item.
func (s *InventoryService) DeleteItem(ctx context.Context, id string) error {
	if _, err := s.inventoryRepo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.inventoryRepo.Delete(ctx, id)
}

// AdjustItemRequest quantity delta payload
type AdjustItemRequest struct {
	Delta  float64 `json:"delta" binding:"required"`
	Reason string  `json:"reason"`
}

// AdjustItem applies a stock delta and alerts the owner when the item
// crosses its low-stock threshold.
func (s *InventoryService) AdjustItem(ctx context.Context, id string, req *AdjustItemRequest, operatorID, operatorName string) (*entity.InventoryItem, error) {
	item, err := s.inventoryRepo.Adjust(ctx, id, req.Delta, req.Reason, operatorID, operatorName)
	if err != nil {
		return nil, err
	}

	if item.LowStock() {
		sse.PublishInventoryAlert(item.OwnerID, item.ID)
	}
	return item, nil
}

// LowStockItems lists the owner's items at or below threshold.
func (s *InventoryService) LowStockItems(ctx context.Context, ownerID string) ([]entity.InventoryItem, error) {
	return s.inventoryRepo.FindLowStock(ctx, ownerID)
}
