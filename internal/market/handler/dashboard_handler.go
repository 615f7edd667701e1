package handler

import (
	"github.com/beanlink/beanlink/internal/market/service"
	"github.com/gin-gonic/gin"
)

// DashboardHandler role dashboards
type DashboardHandler struct {
	svc *service.DashboardService
}

func NewDashboardHandler(svc *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// SupplierDashboard the caller's selling view
// GET /api/v1/dashboard/supplier
func (h *DashboardHandler) SupplierDashboard(c *gin.Context) {
	dash, err := h.svc.GetSupplierDashboard(c.Request.Context(), GetUserID(c))
	if err != nil {
		InternalError(c, "load dashboard failed: "+err.Error())
		return
	}
	Success(c, dash)
}

// BuyerDashboard the caller's purchasing view
// GET /api/v1/dashboard/buyer
func (h *DashboardHandler) BuyerDashboard(c *gin.Context) {
	dash, err := h.svc.GetBuyerDashboard(c.Request.Context(), GetUserID(c))
	if err != nil {
		InternalError(c, "load dashboard failed: "+err.Error())
		return
	}
	Success(c, dash)
}

// AdminDashboard platform-wide view (admin)
// GET /api/v1/dashboard/admin
func (h *DashboardHandler) AdminDashboard(c *gin.Context) {
	dash, err := h.svc.GetAdminDashboard(c.Request.Context())
	if err != nil {
		InternalError(c, "load dashboard failed: "+err.Error())
		return
	}
	Success(c, dash)
}
