package handler

import (
	"errors"

	"github.com/beanlink/beanlink/internal/market/repository"
	"github.com/beanlink/beanlink/internal/market/service"
	"github.com/gin-gonic/gin"
)

// LoyaltyHandler cafe stamp cards
type LoyaltyHandler struct {
	svc *service.LoyaltyService
}

func NewLoyaltyHandler(svc *service.LoyaltyService) *LoyaltyHandler {
	return &LoyaltyHandler{svc: svc}
}

// ListCards lists the caller's cards
// GET /api/v1/loyalty/cards?search=xxx
func (h *LoyaltyHandler) ListCards(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"cafe_id": GetUserID(c),
		"search":  c.Query("search"),
	}

	items, total, err := h.svc.ListCards(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		InternalError(c, "list cards failed: "+err.Error())
		return
	}
	Success(c, NewListResponse(items, page, pageSize, total))
}

// GetCard card detail; issuing cafe only
// GET /api/v1/loyalty/cards/:id
func (h *LoyaltyHandler) GetCard(c *gin.Context) {
	card, err := h.svc.GetCard(c.Request.Context(), c.Param("id"))
	if err != nil {
		NotFound(c, "card not found")
		return
	}
	if card.CafeID != GetUserID(c) && !HasRole(c, "admin") {
		Forbidden(c, "not your card")
		return
	}
	Success(c, card)
}

// CreateCard opens a card
// POST /api/v1/loyalty/cards
func (h *LoyaltyHandler) CreateCard(c *gin.Context) {
	var req service.CreateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	card, err := h.svc.CreateCard(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		InternalError(c, "create card failed: "+err.Error())
		return
	}
	Created(c, card)
}

// Stamp adds one stamp
// POST /api/v1/loyalty/cards/:id/stamp
func (h *LoyaltyHandler) Stamp(c *gin.Context) {
	if !h.ownCard(c) {
		return
	}

	card, err := h.svc.Stamp(c.Request.Context(), c.Param("id"), GetUserID(c), GetUserName(c))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "card not found")
			return
		}
		InternalError(c, "stamp failed: "+err.Error())
		return
	}
	Success(c, card)
}

// Redeem exchanges a full card for a reward
// POST /api/v1/loyalty/cards/:id/redeem
func (h *LoyaltyHandler) Redeem(c *gin.Context) {
	if !h.ownCard(c) {
		return
	}

	card, err := h.svc.Redeem(c.Request.Context(), c.Param("id"), GetUserID(c), GetUserName(c))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			NotFound(c, "card not found")
		case errors.Is(err, repository.ErrInvalidTransition):
			Error(c, 40901, err.Error())
		default:
			InternalError(c, "redeem failed: "+err.Error())
		}
		return
	}
	Success(c, card)
}

func (h *LoyaltyHandler) ownCard(c *gin.Context) bool {
	card, err := h.svc.GetCard(c.Request.Context(), c.Param("id"))
	if err != nil {
		NotFound(c, "card not found")
		return false
	}
	if card.CafeID != GetUserID(c) && !HasRole(c, "admin") {
		Forbidden(c, "not your card")
		return false
	}
	return true
}
