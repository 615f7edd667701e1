package reports

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/beanlink/beanlink/internal/market/entity"
	"github.com/beanlink/beanlink/internal/market/repository"
	"github.com/gin-gonic/gin"
)

// Handler report trigger and history endpoints
type Handler struct {
	composer *Composer
	sentRepo *repository.SentReportRepository
}

func NewHandler(composer *Composer, sentRepo *repository.SentReportRepository) *Handler {
	return &Handler{composer: composer, sentRepo: sentRepo}
}

type triggerRequest struct {
	TestMode bool   `json:"testMode"`
	UserID   string `json:"userId"`
	Email    string `json:"email"`
}

// RunCommission triggers the weekly commission report
// POST /api/v1/reports/commission
func (h *Handler) RunCommission(c *gin.Context) {
	h.run(c, entity.ReportTypeCommission)
}

// RunWeeklyInventory triggers the weekly inventory report
// POST /api/v1/reports/weekly-inventory
func (h *Handler) RunWeeklyInventory(c *gin.Context) {
	h.run(c, entity.ReportTypeWeeklyInventory)
}

// RunSmartCheck triggers the low-stock smart check
// POST /api/v1/reports/smart-check
func (h *Handler) RunSmartCheck(c *gin.Context) {
	h.run(c, entity.ReportTypeSmartCheck)
}

// run executes one report. Partial send failures still return 200 with
// the errors array; only a database read failure maps to 500.
func (h *Handler) run(c *gin.Context, reportType string) {
	var req triggerRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request: " + err.Error()})
			return
		}
	}

	result, err := h.composer.Run(c.Request.Context(), &RunRequest{
		Type:     reportType,
		TestMode: req.TestMode,
		UserID:   req.UserID,
		Email:    req.Email,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

// History pages the delivery audit log
// GET /api/v1/reports/history?report_type=xxx&status=xxx
func (h *Handler) History(c *gin.Context) {
	page, pageSize := pagination(c)
	filters := map[string]string{
		"user_id":     c.Query("user_id"),
		"report_type": c.Query("report_type"),
		"status":      c.Query("status"),
	}

	items, total, err := h.sentRepo.History(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":     items,
		"page":      page,
		"page_size": pageSize,
		"total":     total,
	})
}

// Resend re-delivers a logged report
// POST /api/v1/reports/:id/resend
func (h *Handler) Resend(c *gin.Context) {
	row, err := h.composer.Resend(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "report not found"})
			return
		}
		// delivery failed but was logged
		c.JSON(http.StatusOK, gin.H{"success": false, "sent": 0, "errors": []string{err.Error()}, "report": row})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "sent": 1, "errors": []string{}, "report": row})
}

// Statistics counts deliveries per report type over a trailing window
// GET /api/v1/reports/statistics?days=30
func (h *Handler) Statistics(c *gin.Context) {
	days := 30
	if v, err := strconv.Atoi(c.Query("days")); err == nil && v > 0 && v <= 365 {
		days = v
	}

	stats, err := h.sentRepo.Statistics(c.Request.Context(), time.Now().AddDate(0, 0, -days))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"days": days, "stats": stats})
}

func pagination(c *gin.Context) (page, pageSize int) {
	page, pageSize = 1, 20
	if v, err := strconv.Atoi(c.Query("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(c.Query("page_size")); err == nil && v > 0 && v <= 100 {
		pageSize = v
	}
	return page, pageSize
}
