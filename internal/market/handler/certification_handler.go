package handler

import (
	"errors"

	"github.com/beanlink/beanlink/internal/market/repository"
	"github.com/beanlink/beanlink/internal/market/service"
	"github.com/gin-gonic/gin"
)

// CertificationHandler quality certifications
type CertificationHandler struct {
	svc *service.CertificationService
}

func NewCertificationHandler(svc *service.CertificationService) *CertificationHandler {
	return &CertificationHandler{svc: svc}
}

// ListCertifications lists certifications; non-admins see their own
// GET /api/v1/certifications?status=xxx&cert_type=xxx
func (h *CertificationHandler) ListCertifications(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"status":    c.Query("status"),
		"cert_type": c.Query("cert_type"),
	}

	if HasRole(c, "admin") {
		filters["user_id"] = c.Query("user_id")
	} else {
		filters["user_id"] = GetUserID(c)
	}

	items, total, err := h.svc.ListCertifications(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		InternalError(c, "list certifications failed: "+err.Error())
		return
	}
	Success(c, NewListResponse(items, page, pageSize, total))
}

// GetCertification certification detail
// GET /api/v1/certifications/:id
func (h *CertificationHandler) GetCertification(c *gin.Context) {
	cert, err := h.svc.GetCertification(c.Request.Context(), c.Param("id"))
	if err != nil {
		NotFound(c, "certification not found")
		return
	}
	if cert.UserID != GetUserID(c) && !HasRole(c, "admin") {
		Forbidden(c, "not your certification")
		return
	}
	Success(c, cert)
}

// SubmitCertification files a certification for review
// POST /api/v1/certifications
func (h *CertificationHandler) SubmitCertification(c *gin.Context) {
	var req service.SubmitCertificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	cert, err := h.svc.SubmitCertification(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		InternalError(c, "submit certification failed: "+err.Error())
		return
	}
	Created(c, cert)
}

// ReviewCertification verifies or revokes (admin)
// POST /api/v1/certifications/:id/review
func (h *CertificationHandler) ReviewCertification(c *gin.Context) {
	var req struct {
		Decision string `json:"decision" binding:"required"` // verified/revoked
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	cert, err := h.svc.ReviewCertification(c.Request.Context(), c.Param("id"), req.Decision, GetUserID(c))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "certification not found")
			return
		}
		BadRequest(c, err.Error())
		return
	}
	Success(c, cert)
}

// ExpireOverdue flips past-expiry verified certifications (admin)
// POST /api/v1/certifications/expire-overdue
func (h *CertificationHandler) ExpireOverdue(c *gin.Context) {
	expired, err := h.svc.ExpireOverdue(c.Request.Context())
	if err != nil {
		InternalError(c, "expire certifications failed: "+err.Error())
		return
	}
	Success(c, gin.H{"expired": expired})
}
