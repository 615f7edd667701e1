package handler

import (
	"errors"
	"strconv"

	"github.com/beanlink/beanlink/internal/market/entity"
	"github.com/beanlink/beanlink/internal/market/repository"
	"github.com/beanlink/beanlink/internal/market/service"
	"github.com/gin-gonic/gin"
)

// ContractHandler direct-supply contracts
type ContractHandler struct {
	svc *service.ContractService
}

func NewContractHandler(svc *service.ContractService) *ContractHandler {
	return &ContractHandler{svc: svc}
}

// ListContracts lists contracts visible to the caller
// GET /api/v1/contracts?role=seller|buyer&status=xxx
func (h *ContractHandler) ListContracts(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"status": c.Query("status"),
		"search": c.Query("search"),
	}

	if !HasRole(c, "admin") {
		if c.Query("role") == "seller" {
			filters["seller_id"] = GetUserID(c)
		} else {
			filters["buyer_id"] = GetUserID(c)
		}
	}

	items, total, err := h.svc.ListContracts(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		InternalError(c, "list contracts failed: "+err.Error())
		return
	}
	Success(c, NewListResponse(items, page, pageSize, total))
}

// partyContract loads the contract at :id and rejects callers who are
// neither a party to it nor admin.
func (h *ContractHandler) partyContract(c *gin.Context) (*entity.DirectSupplyContract, bool) {
	contract, err := h.svc.GetContract(c.Request.Context(), c.Param("id"))
	if err != nil {
		NotFound(c, "contract not found")
		return nil, false
	}

	userID := GetUserID(c)
	if contract.BuyerID != userID && contract.SellerID != userID && !HasRole(c, "admin") {
		Forbidden(c, "not your contract")
		return nil, false
	}
	return contract, true
}

// GetContract contract detail; parties and admin only
// GET /api/v1/contracts/:id
func (h *ContractHandler) GetContract(c *gin.Context) {
	contract, ok := h.partyContract(c)
	if !ok {
		return
	}
	Success(c, contract)
}

// ContractActivity audit trail for one contract; parties and admin only
// GET /api/v1/contracts/:id/activity?limit=50
func (h *ContractHandler) ContractActivity(c *gin.Context) {
	if _, ok := h.partyContract(c); !ok {
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	logs, err := h.svc.Activity(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		InternalError(c, "load contract activity failed: "+err.Error())
		return
	}
	Success(c, logs)
}

// CreateContract drafts a contract
// POST /api/v1/contracts
func (h *ContractHandler) CreateContract(c *gin.Context) {
	var req service.CreateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	contract, err := h.svc.CreateContract(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	Created(c, contract)
}

// PayCommission records the platform commission as paid; parties and admin only
// POST /api/v1/contracts/:id/pay-commission
func (h *ContractHandler) PayCommission(c *gin.Context) {
	if _, ok := h.partyContract(c); !ok {
		return
	}

	contract, err := h.svc.PayCommission(c.Request.Context(), c.Param("id"), GetUserID(c), GetUserName(c))
	if err != nil {
		h.contractError(c, err)
		return
	}
	Success(c, contract)
}

// SignContract records one party's signature
// POST /api/v1/contracts/:id/sign
func (h *ContractHandler) SignContract(c *gin.Context) {
	var req service.SignContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	// callers can only sign as themselves; platform signs via admin
	contract, ok := h.partyContract(c)
	if !ok {
		return
	}
	userID := GetUserID(c)
	switch req.Party {
	case entity.SignPartySeller:
		if contract.SellerID != userID && !HasRole(c, "admin") {
			Forbidden(c, "only the seller can sign as seller")
			return
		}
	case entity.SignPartyBuyer:
		if contract.BuyerID != userID && !HasRole(c, "admin") {
			Forbidden(c, "only the buyer can sign as buyer")
			return
		}
	case entity.SignPartyPlatform:
		if !HasRole(c, "admin") {
			Forbidden(c, "only platform staff can sign as platform")
			return
		}
	default:
		BadRequest(c, "unknown party: "+req.Party)
		return
	}

	signed, err := h.svc.SignContract(c.Request.Context(), c.Param("id"), &req, userID, GetUserName(c))
	if err != nil {
		h.contractError(c, err)
		return
	}
	Success(c, signed)
}

// StartSellerPayment opens the seller payment phase; parties and admin only
// POST /api/v1/contracts/:id/start-payment
func (h *ContractHandler) StartSellerPayment(c *gin.Context) {
	if _, ok := h.partyContract(c); !ok {
		return
	}

	contract, err := h.svc.StartSellerPayment(c.Request.Context(), c.Param("id"), GetUserID(c), GetUserName(c))
	if err != nil {
		h.contractError(c, err)
		return
	}
	Success(c, contract)
}

// CompleteContract closes a contract; parties and admin only
// POST /api/v1/contracts/:id/complete
func (h *ContractHandler) CompleteContract(c *gin.Context) {
	if _, ok := h.partyContract(c); !ok {
		return
	}

	contract, err := h.svc.CompleteContract(c.Request.Context(), c.Param("id"), GetUserID(c), GetUserName(c))
	if err != nil {
		h.contractError(c, err)
		return
	}
	Success(c, contract)
}

// DisputeContract marks a contract disputed; parties and admin only
// POST /api/v1/contracts/:id/dispute
func (h *ContractHandler) DisputeContract(c *gin.Context) {
	if _, ok := h.partyContract(c); !ok {
		return
	}

	var req service.DisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	contract, err := h.svc.DisputeContract(c.Request.Context(), c.Param("id"), &req, GetUserID(c), GetUserName(c))
	if err != nil {
		h.contractError(c, err)
		return
	}
	Success(c, contract)
}

// CancelContract cancels a contract; parties and admin only
// POST /api/v1/contracts/:id/cancel
func (h *ContractHandler) CancelContract(c *gin.Context) {
	if _, ok := h.partyContract(c); !ok {
		return
	}

	var req service.DisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request: "+err.Error())
		return
	}

	contract, err := h.svc.CancelContract(c.Request.Context(), c.Param("id"), &req, GetUserID(c), GetUserName(c))
	if err != nil {
		h.contractError(c, err)
		return
	}
	Success(c, contract)
}

func (h *ContractHandler) contractError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		NotFound(c, "contract not found")
	case errors.Is(err, repository.ErrInvalidTransition):
		Error(c, 40901, err.Error())
	case errors.Is(err, repository.ErrSignatureNotDue):
		Error(c, 40903, err.Error())
	default:
		InternalError(c, err.Error())
	}
}
