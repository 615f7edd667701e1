package handler

import (
	"errors"

	"github.com/beanlink/beanlink/internal/market/repository"
	"github.com/beanlink/beanlink/internal/market/service"
	"github.com/gin-gonic/gin"
)

// OfferingHandler coffee listings
type OfferingHandler struct {
	svc *service.OfferingService
}

func NewOfferingHandler(svc *service.OfferingService) *OfferingHandler {
	return &OfferingHandler{svc: svc}
}

// ListOfferings lists coffee offerings
// GET /api/v1/offerings?status=listed&process=washed&search=xxx
func (h *OfferingHandler) ListOfferings(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"supplier_id": c.Query("supplier_id"),
		"status":      c.Query("status"),
		"process":     c.Query("process"),
		"roast_level": c.Query("roast_level"),
		"search":      c.Query("search"),
	}

	items, total, err := h.svc.ListOfferings(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		InternalError(c, "list offerings failed: "+err.Error())
		return
	}
	Success(c, NewListResponse(items, page, pageSize, total))
}

// GetOffering offering detail
// GET /api/v1/offerings/:id
func (h *OfferingHandler) GetOffering(c *gin.Context) {
	offering, err := h.svc.GetOffering(c.Request.Context(), c.Param("id"))
	if err != nil {
		NotFound(c, "offering not found")
		return
	}
	Success(c, offering)
}

// CreateOffering creates a listing for the caller
// POST /api/v1/offerings
func (h *OfferingHandler) CreateOffering(c *gin.Context) {
	var req service.CreateOfferingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	offering, err := h.svc.CreateOffering(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		InternalError(c, "create offering failed: "+err.Error())
		return
	}
	Created(c, offering)
}

// UpdateOffering patches a listing; owner or admin only
// PUT /api/v1/offerings/:id
func (h *OfferingHandler) UpdateOffering(c *gin.Context) {
	id := c.Param("id")

	offering, err := h.svc.GetOffering(c.Request.Context(), id)
	if err != nil {
		NotFound(c, "offering not found")
		return
	}
	if offering.SupplierID != GetUserID(c) && !HasRole(c, "admin") {
		Forbidden(c, "not your offering")
		return
	}

	var req service.UpdateOfferingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	updated, err := h.svc.UpdateOffering(c.Request.Context(), id, &req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "offering not found")
			return
		}
		BadRequest(c, err.Error())
		return
	}
	Success(c, updated)
}

// DeleteOffering removes a listing; owner or admin only
// DELETE /api/v1/offerings/:id
func (h *OfferingHandler) DeleteOffering(c *gin.Context) {
	id := c.Param("id")

	offering, err := h.svc.GetOffering(c.Request.Context(), id)
	if err != nil {
		NotFound(c, "offering not found")
		return
	}
	if offering.SupplierID != GetUserID(c) && !HasRole(c, "admin") {
		Forbidden(c, "not your offering")
		return
	}

	if err := h.svc.DeleteOffering(c.Request.Context(), id); err != nil {
		InternalError(c, "delete offering failed: "+err.Error())
		return
	}
	Success(c, nil)
}
