package handler

import (
	"github.com/beanlink/beanlink/internal/market/service"
	"github.com/gin-gonic/gin"
)

// PreferenceHandler notification schedules
type PreferenceHandler struct {
	svc *service.PreferenceService
}

func NewPreferenceHandler(svc *service.PreferenceService) *PreferenceHandler {
	return &PreferenceHandler{svc: svc}
}

// GetPreferences lists the caller's notification preferences
// GET /api/v1/preferences
func (h *PreferenceHandler) GetPreferences(c *gin.Context) {
	prefs, err := h.svc.GetPreferences(c.Request.Context(), GetUserID(c))
	if err != nil {
		InternalError(c, "load preferences failed: "+err.Error())
		return
	}
	Success(c, prefs)
}

// UpsertPreference sets the caller's schedule for one report type
// PUT /api/v1/preferences
func (h *PreferenceHandler) UpsertPreference(c *gin.Context) {
	var req service.UpsertPreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	pref, err := h.svc.UpsertPreference(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	Success(c, pref)
}
