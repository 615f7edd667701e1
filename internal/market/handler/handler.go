package handler

import (
	"strconv"

	"github.com/beanlink/beanlink/internal/market/service"
	"github.com/gin-gonic/gin"
)

// Handlers marketplace handler set
type Handlers struct {
	Auth          *AuthHandler
	Offering      *OfferingHandler
	Order         *OrderHandler
	Contract      *ContractHandler
	Loyalty       *LoyaltyHandler
	Certification *CertificationHandler
	Inventory     *InventoryHandler
	Commission    *CommissionHandler
	Preference    *PreferenceHandler
	Dashboard     *DashboardHandler
	Advisor       *AdvisorHandler
	SSE           *SSEHandler
}

// NewHandlers creates the marketplace handler set
func NewHandlers(
	authSvc *service.AuthService,
	offeringSvc *service.OfferingService,
	orderSvc *service.OrderService,
	contractSvc *service.ContractService,
	loyaltySvc *service.LoyaltyService,
	certSvc *service.CertificationService,
	inventorySvc *service.InventoryService,
	commissionSvc *service.CommissionService,
	prefSvc *service.PreferenceService,
	dashboardSvc *service.DashboardService,
	advisorSvc *service.AdvisorService,
) *Handlers {
	return &Handlers{
		Auth:          NewAuthHandler(authSvc),
		Offering:      NewOfferingHandler(offeringSvc),
		Order:         NewOrderHandler(orderSvc),
		Contract:      NewContractHandler(contractSvc),
		Loyalty:       NewLoyaltyHandler(loyaltySvc),
		Certification: NewCertificationHandler(certSvc),
		Inventory:     NewInventoryHandler(inventorySvc),
		Commission:    NewCommissionHandler(commissionSvc),
		Preference:    NewPreferenceHandler(prefSvc),
		Dashboard:     NewDashboardHandler(dashboardSvc),
		Advisor:       NewAdvisorHandler(advisorSvc),
		SSE:           NewSSEHandler(),
	}
}

// === response helpers ===

type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type ListResponse struct {
	Items      interface{} `json:"items"`
	Pagination *Pagination `json:"pagination"`
}

type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

func Forbidden(c *gin.Context, message string) {
	Error(c, 40300, message)
}

func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

func GetUserID(c *gin.Context) string {
	userID, _ := c.Get("user_id")
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}

func GetUserName(c *gin.Context) string {
	name, _ := c.Get("user_name")
	if n, ok := name.(string); ok {
		return n
	}
	return ""
}

// HasRole reports whether the caller carries the role (admin counts).
func HasRole(c *gin.Context, role string) bool {
	raw, _ := c.Get("roles")
	roles, ok := raw.([]string)
	if !ok {
		return false
	}
	for _, r := range roles {
		if r == role || r == "admin" {
			return true
		}
	}
	return false
}

func GetPagination(c *gin.Context) (page, pageSize int) {
	page = 1
	pageSize = 20

	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}

	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v
		}
	}

	return page, pageSize
}

func NewListResponse(items interface{}, page, pageSize int, total int64) *ListResponse {
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	return &ListResponse{
		Items: items,
		Pagination: &Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      int(total),
			TotalPages: totalPages,
		},
	}
}
