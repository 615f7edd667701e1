package reports

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/beanlink/beanlink/internal/market/entity"
	"github.com/beanlink/beanlink/internal/market/repository"
	"github.com/beanlink/beanlink/internal/market/testutil"
	"github.com/beanlink/beanlink/internal/middleware"
	"github.com/gin-gonic/gin"
)

const testCronSecret = "cron-secret-for-tests"

func doRaw(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func setupReportRouter(t *testing.T, sender *stubSender) (*gin.Engine, *repository.Repositories) {
	t.Helper()
	composer, repos, _ := newTestComposer(t, sender)
	h := NewHandler(composer, repos.SentReport)

	router := testutil.SetupRouter()
	group := router.Group("/api/v1/reports", middleware.CronOrRole(testCronSecret, "admin", testutil.JWTSecret))
	group.POST("/commission", h.RunCommission)
	group.POST("/weekly-inventory", h.RunWeeklyInventory)
	group.POST("/smart-check", h.RunSmartCheck)
	group.GET("/history", h.History)
	group.GET("/statistics", h.Statistics)
	group.POST("/:id/resend", h.Resend)

	return router, repos
}

func TestTriggerCommissionReportInTestMode(t *testing.T) {
	sender := &stubSender{}
	router, repos := setupReportRouter(t, sender)

	body := map[string]interface{}{"testMode": true, "email": "a@b.com"}
	w := testutil.DoRequest(router, http.MethodPost, "/api/v1/reports/commission", body, testutil.AdminToken())
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", w.Code, w.Body.String())
	}

	resp := testutil.ParseResponse(w)
	if resp["success"] != true {
		t.Errorf("success = %v, want true", resp["success"])
	}
	if resp["sent"] != float64(1) {
		t.Errorf("sent = %v, want 1", resp["sent"])
	}

	rows, total, err := repos.SentReport.History(context.Background(), 1, 10, nil)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if total != 1 {
		t.Fatalf("got %d sent_reports rows, want 1", total)
	}
	if rows[0].RecipientEmail != "a@b.com" || !rows[0].IsTest {
		t.Errorf("row = {email %q, is_test %v}, want a@b.com test row", rows[0].RecipientEmail, rows[0].IsTest)
	}
}

func TestTriggerRequiresCronSecretOrAdmin(t *testing.T) {
	router, _ := setupReportRouter(t, &stubSender{})

	// No credentials at all.
	w := testutil.DoRequest(router, http.MethodPost, "/api/v1/reports/commission", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no auth: status = %d, want 401", w.Code)
	}

	// Authenticated but not an admin.
	cafeToken := testutil.GenerateTestToken("user-cafe", "Cafe", "cafe@test.com", []string{"cafe"})
	w = testutil.DoRequest(router, http.MethodPost, "/api/v1/reports/commission", nil, cafeToken)
	if w.Code != http.StatusForbidden {
		t.Errorf("non-admin: status = %d, want 403", w.Code)
	}
}

func TestTriggerWithCronSecretHeader(t *testing.T) {
	sender := &stubSender{}
	router, _ := setupReportRouter(t, sender)

	req, _ := http.NewRequest(http.MethodPost, "/api/v1/reports/smart-check", nil)
	req.Header.Set("x-cron-secret", testCronSecret)
	w := doRaw(router, req)
	if w.Code != http.StatusOK {
		t.Fatalf("cron secret: status = %d, want 200; body %s", w.Code, w.Body.String())
	}

	req, _ = http.NewRequest(http.MethodPost, "/api/v1/reports/smart-check", nil)
	req.Header.Set("x-cron-secret", "wrong")
	w = doRaw(router, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong cron secret: status = %d, want 401", w.Code)
	}
}

func TestPartialFailureStillReturns200(t *testing.T) {
	sender := &stubSender{failOn: map[int]bool{1: true}}
	router, repos := setupReportRouter(t, sender)

	body := map[string]interface{}{"testMode": true, "email": "broken@test.com"}
	w := testutil.DoRequest(router, http.MethodPost, "/api/v1/reports/weekly-inventory", body, testutil.AdminToken())
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 despite delivery failure", w.Code)
	}

	resp := testutil.ParseResponse(w)
	if resp["sent"] != float64(0) {
		t.Errorf("sent = %v, want 0", resp["sent"])
	}
	errs, ok := resp["errors"].([]interface{})
	if !ok || len(errs) != 1 {
		t.Errorf("errors = %v, want one entry", resp["errors"])
	}

	_, total, err := repos.SentReport.History(context.Background(), 1, 10, map[string]string{"status": entity.SentReportStatusFailed})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if total != 1 {
		t.Errorf("got %d failed rows, want 1", total)
	}
}

func TestResendEndpoint(t *testing.T) {
	sender := &stubSender{}
	router, repos := setupReportRouter(t, sender)

	original := &entity.SentReport{
		ReportType:     entity.ReportTypeCommission,
		RecipientEmail: "again@test.com",
		Status:         entity.SentReportStatusSent,
		ReportData:     entity.JSONB{"count": 0, "total_amount": 0.0, "suppliers": []interface{}{}},
	}
	if err := repos.SentReport.Append(context.Background(), original); err != nil {
		t.Fatalf("seed sent report: %v", err)
	}

	w := testutil.DoRequest(router, http.MethodPost, "/api/v1/reports/"+original.ID+"/resend", nil, testutil.AdminToken())
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	if resp["success"] != true {
		t.Errorf("success = %v, want true", resp["success"])
	}

	w = testutil.DoRequest(router, http.MethodPost, "/api/v1/reports/missing-id/resend", nil, testutil.AdminToken())
	if w.Code != http.StatusNotFound {
		t.Errorf("missing id: status = %d, want 404", w.Code)
	}
}
