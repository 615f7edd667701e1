package handler

import (
	"errors"
	"strconv"

	"github.com/beanlink/beanlink/internal/market/entity"
	"github.com/beanlink/beanlink/internal/market/repository"
	"github.com/beanlink/beanlink/internal/market/service"
	"github.com/gin-gonic/gin"
)

// OrderHandler marketplace orders
type OrderHandler struct {
	svc *service.OrderService
}

func NewOrderHandler(svc *service.OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

// ListOrders lists orders visible to the caller
// GET /api/v1/orders?role=buyer|supplier&status=xxx
func (h *OrderHandler) ListOrders(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"status":         c.Query("status"),
		"payment_status": c.Query("payment_status"),
		"search":         c.Query("search"),
	}

	// non-admins only see their own side of the book
	if !HasRole(c, "admin") {
		if c.Query("role") == "supplier" {
			filters["supplier_id"] = GetUserID(c)
		} else {
			filters["buyer_id"] = GetUserID(c)
		}
	}

	items, total, err := h.svc.ListOrders(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		InternalError(c, "list orders failed: "+err.Error())
		return
	}
	Success(c, NewListResponse(items, page, pageSize, total))
}

// partyOrder loads the order at :id and rejects callers who are neither
// a party to it nor admin.
func (h *OrderHandler) partyOrder(c *gin.Context) (*entity.Order, bool) {
	order, err := h.svc.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		NotFound(c, "order not found")
		return nil, false
	}

	userID := GetUserID(c)
	if order.BuyerID != userID && order.SupplierID != userID && !HasRole(c, "admin") {
		Forbidden(c, "not your order")
		return nil, false
	}
	return order, true
}

// GetOrder order detail; parties and admin only
// GET /api/v1/orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, ok := h.partyOrder(c)
	if !ok {
		return
	}
	Success(c, order)
}

// OrderActivity audit trail for one order; parties and admin only
// GET /api/v1/orders/:id/activity?limit=50
func (h *OrderHandler) OrderActivity(c *gin.Context) {
	if _, ok := h.partyOrder(c); !ok {
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	logs, err := h.svc.Activity(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		InternalError(c, "load order activity failed: "+err.Error())
		return
	}
	Success(c, logs)
}

// CreateOrder places an order
// POST /api/v1/orders
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	order, err := h.svc.CreateOrder(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "offering not found")
			return
		}
		BadRequest(c, err.Error())
		return
	}
	Created(c, order)
}

// UpdateStatus moves an order through its lifecycle; parties and admin only
// PUT /api/v1/orders/:id/status
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	if _, ok := h.partyOrder(c); !ok {
		return
	}

	var req service.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	order, err := h.svc.UpdateStatus(c.Request.Context(), c.Param("id"), &req, GetUserID(c), GetUserName(c))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			NotFound(c, "order not found")
		case errors.Is(err, repository.ErrInvalidTransition):
			Error(c, 40901, err.Error())
		case errors.Is(err, repository.ErrPaymentRequired):
			Error(c, 40902, err.Error())
		default:
			InternalError(c, "update status failed: "+err.Error())
		}
		return
	}
	Success(c, order)
}

// PayOrder records payment into escrow; parties and admin only
// POST /api/v1/orders/:id/pay
func (h *OrderHandler) PayOrder(c *gin.Context) {
	if _, ok := h.partyOrder(c); !ok {
		return
	}

	var req service.PayOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	order, err := h.svc.PayOrder(c.Request.Context(), c.Param("id"), &req, GetUserID(c), GetUserName(c))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			NotFound(c, "order not found")
		case errors.Is(err, repository.ErrInvalidTransition):
			Error(c, 40901, err.Error())
		default:
			InternalError(c, "pay order failed: "+err.Error())
		}
		return
	}
	Success(c, order)
}
