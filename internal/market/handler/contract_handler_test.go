package handler

import (
	"net/http"
	"testing"

	"github.com/beanlink/beanlink/internal/market/entity"
	"github.com/beanlink/beanlink/internal/market/repository"
	"github.com/beanlink/beanlink/internal/market/service"
	"github.com/beanlink/beanlink/internal/market/testutil"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func setupContractTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)

	repos := repository.NewRepositories(db)
	svc := service.NewContractService(repos.Contract, repos.Commission, repos.ActivityLog)
	h := NewContractHandler(svc)

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1")
	api.GET("/contracts/:id", h.GetContract)
	api.GET("/contracts/:id/activity", h.ContractActivity)
	api.POST("/contracts", h.CreateContract)
	api.POST("/contracts/:id/pay-commission", h.PayCommission)
	api.POST("/contracts/:id/sign", h.SignContract)
	api.POST("/contracts/:id/start-payment", h.StartSellerPayment)
	api.POST("/contracts/:id/complete", h.CompleteContract)
	api.POST("/contracts/:id/dispute", h.DisputeContract)
	api.POST("/contracts/:id/cancel", h.CancelContract)

	return router, db
}

func seedTestContract(t *testing.T, db *gorm.DB, id, buyerID, sellerID, status string) {
	t.Helper()
	contract := &entity.DirectSupplyContract{
		ID:                       id,
		ContractCode:             "DSC-2026-" + id,
		BuyerID:                  buyerID,
		SellerID:                 sellerID,
		TotalAmount:              1000,
		PlatformCommissionRate:   0.05,
		PlatformCommissionAmount: 50,
		Currency:                 "SAR",
		Status:                   status,
	}
	if err := db.Create(contract).Error; err != nil {
		t.Fatalf("seed contract: %v", err)
	}
}

func TestContractMutationsRejectNonParties(t *testing.T) {
	router, db := setupContractTest(t)

	testutil.SeedUser(t, db, "roaster-001", "Roaster", "roaster@test.com", "roaster")
	testutil.SeedUser(t, db, "farm-001", "Farm", "farm@test.com", "farm")
	testutil.SeedUser(t, db, "farm-002", "Other Farm", "otherfarm@test.com", "farm")
	seedTestContract(t, db, "dsc-party", "roaster-001", "farm-001", entity.ContractStatusPendingCommission)

	buyerToken := testutil.GenerateTestToken("roaster-001", "Roaster", "roaster@test.com", []string{"roaster"})
	otherToken := testutil.GenerateTestToken("farm-002", "Other Farm", "otherfarm@test.com", []string{"farm"})

	// A valid token alone never unlocks someone else's contract.
	forbidden := []struct {
		method string
		path   string
		body   interface{}
	}{
		{http.MethodPost, "/api/v1/contracts/dsc-party/pay-commission", nil},
		{http.MethodPost, "/api/v1/contracts/dsc-party/start-payment", nil},
		{http.MethodPost, "/api/v1/contracts/dsc-party/complete", nil},
		{http.MethodPost, "/api/v1/contracts/dsc-party/dispute", map[string]interface{}{"reason": "not mine"}},
		{http.MethodPost, "/api/v1/contracts/dsc-party/cancel", map[string]interface{}{"reason": "not mine"}},
		{http.MethodGet, "/api/v1/contracts/dsc-party", nil},
		{http.MethodGet, "/api/v1/contracts/dsc-party/activity", nil},
	}
	for _, req := range forbidden {
		w := testutil.DoRequest(router, req.method, req.path, req.body, otherToken)
		if w.Code != http.StatusForbidden {
			t.Errorf("%s %s as third party: status = %d, want 403", req.method, req.path, w.Code)
		}
	}

	// The rejected calls never touched the row.
	w := testutil.DoRequest(router, http.MethodGet, "/api/v1/contracts/dsc-party", nil, buyerToken)
	if w.Code != http.StatusOK {
		t.Fatalf("get contract: status = %d, body %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	if got := resp["data"].(map[string]interface{})["status"]; got != entity.ContractStatusPendingCommission {
		t.Errorf("status after rejected mutations = %v, want %s", got, entity.ContractStatusPendingCommission)
	}

	// Parties act on their own contract.
	w = testutil.DoRequest(router, http.MethodPost, "/api/v1/contracts/dsc-party/pay-commission", nil, buyerToken)
	if w.Code != http.StatusOK {
		t.Fatalf("buyer pay-commission: status = %d, body %s", w.Code, w.Body.String())
	}
	resp = testutil.ParseResponse(w)
	if got := resp["data"].(map[string]interface{})["status"]; got != entity.ContractStatusAwaitingSellerSign {
		t.Errorf("status after commission = %v, want %s", got, entity.ContractStatusAwaitingSellerSign)
	}

	// Admin passes the party check everywhere.
	w = testutil.DoRequest(router, http.MethodPost, "/api/v1/contracts/dsc-party/dispute",
		map[string]interface{}{"reason": "quality complaint"}, testutil.AdminToken())
	if w.Code != http.StatusOK {
		t.Errorf("admin dispute: status = %d, body %s", w.Code, w.Body.String())
	}

	// Parties can read the audit trail written by the transitions above.
	w = testutil.DoRequest(router, http.MethodGet, "/api/v1/contracts/dsc-party/activity", nil, buyerToken)
	if w.Code != http.StatusOK {
		t.Fatalf("activity: status = %d, body %s", w.Code, w.Body.String())
	}
	resp = testutil.ParseResponse(w)
	if logs := resp["data"].([]interface{}); len(logs) == 0 {
		t.Error("activity trail is empty after status changes")
	}
}

func TestSignContractPartyImpersonationRejected(t *testing.T) {
	router, db := setupContractTest(t)

	testutil.SeedUser(t, db, "roaster-001", "Roaster", "roaster@test.com", "roaster")
	testutil.SeedUser(t, db, "farm-001", "Farm", "farm@test.com", "farm")
	seedTestContract(t, db, "dsc-sign", "roaster-001", "farm-001", entity.ContractStatusAwaitingSellerSign)

	buyerToken := testutil.GenerateTestToken("roaster-001", "Roaster", "roaster@test.com", []string{"roaster"})
	sellerToken := testutil.GenerateTestToken("farm-001", "Farm", "farm@test.com", []string{"farm"})

	// The buyer cannot sign in the seller's place.
	w := testutil.DoRequest(router, http.MethodPost, "/api/v1/contracts/dsc-sign/sign",
		map[string]interface{}{"party": "seller", "signature": "Roaster"}, buyerToken)
	if w.Code != http.StatusForbidden {
		t.Errorf("buyer signing as seller: status = %d, want 403", w.Code)
	}

	// Only platform staff sign as platform.
	w = testutil.DoRequest(router, http.MethodPost, "/api/v1/contracts/dsc-sign/sign",
		map[string]interface{}{"party": "platform", "signature": "Farm"}, sellerToken)
	if w.Code != http.StatusForbidden {
		t.Errorf("seller signing as platform: status = %d, want 403", w.Code)
	}

	// The due party signs normally.
	w = testutil.DoRequest(router, http.MethodPost, "/api/v1/contracts/dsc-sign/sign",
		map[string]interface{}{"party": "seller", "signature": "Farm"}, sellerToken)
	if w.Code != http.StatusOK {
		t.Fatalf("seller sign: status = %d, body %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	if got := resp["data"].(map[string]interface{})["status"]; got != entity.ContractStatusAwaitingBuyerSign {
		t.Errorf("status after seller sign = %v, want %s", got, entity.ContractStatusAwaitingBuyerSign)
	}
}
