package handler

import (
	"net/http"
	"testing"

	"github.com/beanlink/beanlink/internal/market/repository"
	"github.com/beanlink/beanlink/internal/market/service"
	"github.com/beanlink/beanlink/internal/market/testutil"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func setupOrderTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)

	repos := repository.NewRepositories(db)
	svc := service.NewOrderService(repos.Order, repos.Offering, repos.Commission, repos.ActivityLog)
	h := NewOrderHandler(svc)

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1")
	api.GET("/orders/:id", h.GetOrder)
	api.GET("/orders/:id/activity", h.OrderActivity)
	api.POST("/orders", h.CreateOrder)
	api.PUT("/orders/:id/status", h.UpdateStatus)
	api.POST("/orders/:id/pay", h.PayOrder)

	return router, db
}

func TestOrderLifecycleOverHTTP(t *testing.T) {
	router, db := setupOrderTest(t)

	testutil.SeedUser(t, db, "supplier-001", "Supplier", "supplier@test.com", "supplier")
	testutil.SeedUser(t, db, "cafe-001", "Cafe", "cafe@test.com", "cafe")
	testutil.SeedOffering(t, db, "offering-001", "supplier-001", 100)

	supplierToken := testutil.GenerateTestToken("supplier-001", "Supplier", "supplier@test.com", []string{"supplier"})
	cafeToken := testutil.GenerateTestToken("cafe-001", "Cafe", "cafe@test.com", []string{"cafe"})

	// Cafe places the order; price comes from the stored offering.
	w := testutil.DoRequest(router, http.MethodPost, "/api/v1/orders", map[string]interface{}{
		"offering_id": "offering-001",
		"quantity_kg": 10,
	}, cafeToken)
	if w.Code != http.StatusCreated {
		t.Fatalf("create order: status = %d, body %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	orderID := data["id"].(string)
	if data["total_price"] != float64(400) {
		t.Errorf("total_price = %v, want 400 (10kg x 40)", data["total_price"])
	}

	// Shipping before payment is rejected with a conflict.
	w = testutil.DoRequest(router, http.MethodPut, "/api/v1/orders/"+orderID+"/status",
		map[string]interface{}{"status": "confirmed"}, supplierToken)
	if w.Code != http.StatusOK {
		t.Fatalf("confirm: status = %d, body %s", w.Code, w.Body.String())
	}
	w = testutil.DoRequest(router, http.MethodPut, "/api/v1/orders/"+orderID+"/status",
		map[string]interface{}{"status": "shipped"}, supplierToken)
	if w.Code != http.StatusConflict {
		t.Fatalf("ship before pay: status = %d, want 409; body %s", w.Code, w.Body.String())
	}

	// Pay, ship, deliver.
	w = testutil.DoRequest(router, http.MethodPost, "/api/v1/orders/"+orderID+"/pay",
		map[string]interface{}{"escrow_id": "escrow-e2e"}, cafeToken)
	if w.Code != http.StatusOK {
		t.Fatalf("pay: status = %d, body %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(router, http.MethodPut, "/api/v1/orders/"+orderID+"/status",
		map[string]interface{}{"status": "shipped"}, supplierToken)
	if w.Code != http.StatusOK {
		t.Fatalf("ship: status = %d, body %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(router, http.MethodPut, "/api/v1/orders/"+orderID+"/status",
		map[string]interface{}{"status": "delivered"}, supplierToken)
	if w.Code != http.StatusOK {
		t.Fatalf("deliver: status = %d, body %s", w.Code, w.Body.String())
	}
	resp = testutil.ParseResponse(w)
	data = resp["data"].(map[string]interface{})
	if data["payment_status"] != "released" {
		t.Errorf("payment_status = %v, want released after delivery", data["payment_status"])
	}

	// Delivered is terminal.
	w = testutil.DoRequest(router, http.MethodPut, "/api/v1/orders/"+orderID+"/status",
		map[string]interface{}{"status": "cancelled"}, supplierToken)
	if w.Code != http.StatusConflict {
		t.Errorf("cancel delivered: status = %d, want 409", w.Code)
	}
}

func TestOrderMutationsRejectNonParties(t *testing.T) {
	router, db := setupOrderTest(t)

	testutil.SeedUser(t, db, "supplier-001", "Supplier", "supplier@test.com", "supplier")
	testutil.SeedUser(t, db, "cafe-001", "Cafe", "cafe@test.com", "cafe")
	testutil.SeedUser(t, db, "cafe-002", "Other Cafe", "other@test.com", "cafe")
	testutil.SeedOffering(t, db, "offering-001", "supplier-001", 100)

	cafeToken := testutil.GenerateTestToken("cafe-001", "Cafe", "cafe@test.com", []string{"cafe"})
	otherToken := testutil.GenerateTestToken("cafe-002", "Other Cafe", "other@test.com", []string{"cafe"})

	w := testutil.DoRequest(router, http.MethodPost, "/api/v1/orders", map[string]interface{}{
		"offering_id": "offering-001",
		"quantity_kg": 10,
	}, cafeToken)
	if w.Code != http.StatusCreated {
		t.Fatalf("create order: status = %d, body %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	orderID := resp["data"].(map[string]interface{})["id"].(string)

	// A third party with a valid token cannot move, pay, or inspect it.
	w = testutil.DoRequest(router, http.MethodPut, "/api/v1/orders/"+orderID+"/status",
		map[string]interface{}{"status": "confirmed"}, otherToken)
	if w.Code != http.StatusForbidden {
		t.Errorf("third-party status update: status = %d, want 403", w.Code)
	}
	w = testutil.DoRequest(router, http.MethodPost, "/api/v1/orders/"+orderID+"/pay",
		map[string]interface{}{"escrow_id": "escrow-x"}, otherToken)
	if w.Code != http.StatusForbidden {
		t.Errorf("third-party pay: status = %d, want 403", w.Code)
	}
	w = testutil.DoRequest(router, http.MethodGet, "/api/v1/orders/"+orderID+"/activity", nil, otherToken)
	if w.Code != http.StatusForbidden {
		t.Errorf("third-party activity: status = %d, want 403", w.Code)
	}

	// The rejected update never reached the row.
	w = testutil.DoRequest(router, http.MethodGet, "/api/v1/orders/"+orderID, nil, cafeToken)
	if w.Code != http.StatusOK {
		t.Fatalf("get order: status = %d", w.Code)
	}
	resp = testutil.ParseResponse(w)
	if got := resp["data"].(map[string]interface{})["status"]; got != "pending" {
		t.Errorf("status after rejected update = %v, want pending", got)
	}

	// Admin passes the party check.
	w = testutil.DoRequest(router, http.MethodPut, "/api/v1/orders/"+orderID+"/status",
		map[string]interface{}{"status": "confirmed"}, testutil.AdminToken())
	if w.Code != http.StatusOK {
		t.Errorf("admin status update: status = %d, body %s", w.Code, w.Body.String())
	}

	// Parties can read the audit trail; the confirm above is logged.
	w = testutil.DoRequest(router, http.MethodGet, "/api/v1/orders/"+orderID+"/activity", nil, cafeToken)
	if w.Code != http.StatusOK {
		t.Fatalf("activity: status = %d, body %s", w.Code, w.Body.String())
	}
	resp = testutil.ParseResponse(w)
	logs := resp["data"].([]interface{})
	if len(logs) == 0 {
		t.Error("activity trail is empty after a status change")
	}
}

func TestCreateOrderGuards(t *testing.T) {
	router, db := setupOrderTest(t)

	testutil.SeedUser(t, db, "supplier-001", "Supplier", "supplier@test.com", "supplier")
	testutil.SeedOffering(t, db, "offering-001", "supplier-001", 5)

	supplierToken := testutil.GenerateTestToken("supplier-001", "Supplier", "supplier@test.com", []string{"supplier"})
	cafeToken := testutil.GenerateTestToken("cafe-001", "Cafe", "cafe@test.com", []string{"cafe"})

	// Ordering your own offering is rejected.
	w := testutil.DoRequest(router, http.MethodPost, "/api/v1/orders", map[string]interface{}{
		"offering_id": "offering-001",
		"quantity_kg": 1,
	}, supplierToken)
	if w.Code != http.StatusBadRequest {
		t.Errorf("self-order: status = %d, want 400", w.Code)
	}

	// Ordering past the available quantity is rejected.
	w = testutil.DoRequest(router, http.MethodPost, "/api/v1/orders", map[string]interface{}{
		"offering_id": "offering-001",
		"quantity_kg": 50,
	}, cafeToken)
	if w.Code != http.StatusBadRequest {
		t.Errorf("over-order: status = %d, want 400", w.Code)
	}

	// Unauthenticated requests never reach the handler.
	w = testutil.DoRequest(router, http.MethodPost, "/api/v1/orders", map[string]interface{}{
		"offering_id": "offering-001",
		"quantity_kg": 1,
	}, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", w.Code)
	}
}
