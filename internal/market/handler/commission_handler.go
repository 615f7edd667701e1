package handler

import (
	"strconv"

	"github.com/beanlink/beanlink/internal/market/service"
	"github.com/gin-gonic/gin"
)

// CommissionHandler platform commission ledger (admin, plus supplier self-view)
type CommissionHandler struct {
	svc *service.CommissionService
}

func NewCommissionHandler(svc *service.CommissionService) *CommissionHandler {
	return &CommissionHandler{svc: svc}
}

// ListCommissions lists commission rows; suppliers see their own
// GET /api/v1/commissions?status=xxx
func (h *CommissionHandler) ListCommissions(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"status": c.Query("status"),
	}

	if HasRole(c, "admin") {
		filters["supplier_id"] = c.Query("supplier_id")
	} else {
		filters["supplier_id"] = GetUserID(c)
	}

	items, total, err := h.svc.ListCommissions(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		InternalError(c, "list commissions failed: "+err.Error())
		return
	}
	Success(c, NewListResponse(items, page, pageSize, total))
}

// GetCommission commission detail
// GET /api/v1/commissions/:id
func (h *CommissionHandler) GetCommission(c *gin.Context) {
	commission, err := h.svc.GetCommission(c.Request.Context(), c.Param("id"))
	if err != nil {
		NotFound(c, "commission not found")
		return
	}
	if commission.SupplierID != GetUserID(c) && !HasRole(c, "admin") {
		Forbidden(c, "not your commission")
		return
	}
	Success(c, commission)
}

// Summary rolls up the trailing window (admin)
// GET /api/v1/commissions/summary?days=7
func (h *CommissionHandler) Summary(c *gin.Context) {
	days := 7
	if v, err := strconv.Atoi(c.Query("days")); err == nil && v > 0 && v <= 365 {
		days = v
	}

	summary, err := h.svc.Summarize(c.Request.Context(), days)
	if err != nil {
		InternalError(c, "commission summary failed: "+err.Error())
		return
	}
	Success(c, summary)
}
