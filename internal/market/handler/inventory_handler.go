package handler

import (
	"errors"

	"github.com/beanlink/beanlink/internal/market/repository"
	"github.com/beanlink/beanlink/internal/market/service"
	"github.com/gin-gonic/gin"
)

// InventoryHandler stock tracking
type InventoryHandler struct {
	svc *service.InventoryService
}

func NewInventoryHandler(svc *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{svc: svc}
}

// ListItems lists the caller's inventory
// GET /api/v1/inventory?category=xxx&low_stock=true
func (h *InventoryHandler) ListItems(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"owner_id":  GetUserID(c),
		"category":  c.Query("category"),
		"low_stock": c.Query("low_stock"),
		"search":    c.Query("search"),
	}

	items, total, err := h.svc.ListItems(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		InternalError(c, "list inventory failed: "+err.Error())
		return
	}
	Success(c, NewListResponse(items, page, pageSize, total))
}

// GetItem item detail; owner only
// GET /api/v1/inventory/:id
func (h *InventoryHandler) GetItem(c *gin.Context) {
	item, err := h.svc.GetItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		NotFound(c, "item not found")
		return
	}
	if item.OwnerID != GetUserID(c) && !HasRole(c, "admin") {
		Forbidden(c, "not your item")
		return
	}
	Success(c, item)
}

// CreateItem registers a stock item
// POST /api/v1/inventory
func (h *InventoryHandler) CreateItem(c *gin.Context) {
	var req service.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	item, err := h.svc.CreateItem(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		InternalError(c, "create item failed: "+err.Error())
		return
	}
	Created(c, item)
}

// UpdateItem patches item metadata; owner only
// PUT /api/v1/inventory/:id
func (h *InventoryHandler) UpdateItem(c *gin.Context) {
	if !h.ownItem(c) {
		return
	}

	var req service.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	item, err := h.svc.UpdateItem(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "item not found")
			return
		}
		InternalError(c, "update item failed: "+err.Error())
		return
	}
	Success(c, item)
}

// DeleteItem removes an item; owner only
// DELETE /api/v1/inventory/:id
func (h *InventoryHandler) DeleteItem(c *gin.Context) {
	if !h.ownItem(c) {
		return
	}

	if err := h.svc.DeleteItem(c.Request.Context(), c.Param("id")); err != nil {
		InternalError(c, "delete item failed: "+err.Error())
		return
	}
	Success(c, nil)
}

// AdjustItem applies a stock delta; owner only
// POST /api/v1/inventory/:id/adjust
func (h *InventoryHandler) AdjustItem(c *gin.Context) {
	if !h.ownItem(c) {
		return
	}

	var req service.AdjustItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	item, err := h.svc.AdjustItem(c.Request.Context(), c.Param("id"), &req, GetUserID(c), GetUserName(c))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "item not found")
			return
		}
		BadRequest(c, err.Error())
		return
	}
	Success(c, item)
}

// LowStock lists the caller's items at or below threshold
// GET /api/v1/inventory/low-stock
func (h *InventoryHandler) LowStock(c *gin.Context) {
	items, err := h.svc.LowStockItems(c.Request.Context(), GetUserID(c))
	if err != nil {
		InternalError(c, "list low stock failed: "+err.Error())
		return
	}
	Success(c, items)
}

func (h *InventoryHandler) ownItem(c *gin.Context) bool {
	item, err := h.svc.GetItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		NotFound(c, "item not found")
		return false
	}
	if item.OwnerID != GetUserID(c) && !HasRole(c, "admin") {
		Forbidden(c, "not your item")
		return false
	}
	return true
}
