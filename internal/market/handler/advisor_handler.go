package handler

import (
	"github.com/beanlink/beanlink/internal/market/service"
	"github.com/gin-gonic/gin"
)

// AdvisorHandler AI blend/pairing advice
type AdvisorHandler struct {
	svc *service.AdvisorService
}

func NewAdvisorHandler(svc *service.AdvisorService) *AdvisorHandler {
	return &AdvisorHandler{svc: svc}
}

// Advise answers a blend or pairing question
// POST /api/v1/advisor
func (h *AdvisorHandler) Advise(c *gin.Context) {
	var req service.AdviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	resp, err := h.svc.Advise(c.Request.Context(), &req)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	Success(c, resp)
}
