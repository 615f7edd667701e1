package handler

import (
	"errors"

	"github.com/beanlink/beanlink/internal/market/repository"
	"github.com/beanlink/beanlink/internal/market/service"
	"github.com/gin-gonic/gin"
)

// AuthHandler accounts, sessions and role approval
type AuthHandler struct {
	svc *service.AuthService
}

func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Register creates an account
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	user, err := h.svc.Register(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			BadRequest(c, "email already registered")
			return
		}
		InternalError(c, "register failed: "+err.Error())
		return
	}

	Created(c, user)
}

// Login issues a token pair
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	user, pair, err := h.svc.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			Error(c, 40100, "invalid email or password")
			return
		}
		InternalError(c, "login failed: "+err.Error())
		return
	}

	Success(c, gin.H{
		"user":  user,
		"token": pair,
	})
}

// Refresh rotates a refresh token
// POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	pair, err := h.svc.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		Error(c, 40100, "refresh failed: "+err.Error())
		return
	}

	Success(c, pair)
}

// Me returns the caller's profile
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.svc.GetCurrentUser(c.Request.Context(), GetUserID(c))
	if err != nil {
		NotFound(c, "user not found")
		return
	}
	Success(c, user)
}

// UpdateMe patches the caller's profile
// PUT /api/v1/auth/me
func (h *AuthHandler) UpdateMe(c *gin.Context) {
	var req service.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	user, err := h.svc.UpdateProfile(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "user not found")
			return
		}
		BadRequest(c, err.Error())
		return
	}
	Success(c, user)
}

// RequestRole files a pending role request
// POST /api/v1/auth/roles
func (h *AuthHandler) RequestRole(c *gin.Context) {
	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	ur, err := h.svc.RequestRole(c.Request.Context(), GetUserID(c), req.Role)
	if err != nil {
		if errors.Is(err, service.ErrRoleExists) {
			BadRequest(c, "role already requested")
			return
		}
		BadRequest(c, err.Error())
		return
	}
	Created(c, ur)
}

// ListPendingRoles pages pending role requests (admin)
// GET /api/v1/admin/roles/pending
func (h *AuthHandler) ListPendingRoles(c *gin.Context) {
	page, pageSize := GetPagination(c)
	items, total, err := h.svc.ListPendingRoles(c.Request.Context(), page, pageSize)
	if err != nil {
		InternalError(c, "list pending roles failed: "+err.Error())
		return
	}
	Success(c, NewListResponse(items, page, pageSize, total))
}

// ReviewRole approves or rejects a role request (admin)
// POST /api/v1/admin/roles/review
func (h *AuthHandler) ReviewRole(c *gin.Context) {
	var req struct {
		UserID   string `json:"user_id" binding:"required"`
		Role     string `json:"role" binding:"required"`
		Decision string `json:"decision" binding:"required"` // approved/rejected
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	ur, err := h.svc.ReviewRole(c.Request.Context(), req.UserID, req.Role, req.Decision, GetUserID(c))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			NotFound(c, "role request not found")
			return
		}
		BadRequest(c, err.Error())
		return
	}
	Success(c, ur)
}

// ListUsers pages accounts (admin)
// GET /api/v1/admin/users
func (h *AuthHandler) ListUsers(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"status": c.Query("status"),
		"role":   c.Query("role"),
		"search": c.Query("search"),
	}

	items, total, err := h.svc.ListUsers(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		InternalError(c, "list users failed: "+err.Error())
		return
	}
	Success(c, NewListResponse(items, page, pageSize, total))
}
