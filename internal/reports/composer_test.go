package reports

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/beanlink/beanlink/internal/market/entity"
	"github.com/beanlink/beanlink/internal/market/repository"
	"github.com/beanlink/beanlink/internal/market/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// stubSender records sends and fails on the calls listed in failOn.
type stubSender struct {
	calls  int
	sent   []string
	failOn map[int]bool
}

func (s *stubSender) Send(ctx context.Context, to, subject, html string) error {
	s.calls++
	if s.failOn[s.calls] {
		return fmt.Errorf("provider rejected call %d", s.calls)
	}
	s.sent = append(s.sent, to)
	return nil
}

func newTestComposer(t *testing.T, sender *stubSender) (*Composer, *repository.Repositories, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	composer := NewComposer(
		repos.Preference,
		repos.SentReport,
		repos.User,
		repos.Commission,
		repos.Inventory,
		sender,
		zap.NewNop(),
		7,
	)
	return composer, repos, db
}

func seedSubscriber(t *testing.T, db *gorm.DB, id, email, reportType string) {
	t.Helper()
	testutil.SeedUser(t, db, id, "User "+id, email, "cafe")
	pref := &entity.NotificationPreference{
		ID:           "pref-" + id,
		UserID:       id,
		ReportType:   reportType,
		Enabled:      true,
		Weekday:      0,
		Hour:         9,
		Timezone:     "Asia/Riyadh",
		EmailEnabled: true,
	}
	if err := db.Create(pref).Error; err != nil {
		t.Fatalf("seed preference: %v", err)
	}
}

// sundayNine is a Sunday 09:00 in Riyadh, matching the default schedule.
func sundayNine(t *testing.T) time.Time {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Riyadh")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return time.Date(2026, 8, 30, 9, 0, 0, 0, loc)
}

func TestRunCollectsPerRecipientErrors(t *testing.T) {
	sender := &stubSender{failOn: map[int]bool{2: true}}
	composer, repos, db := newTestComposer(t, sender)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		seedSubscriber(t, db, fmt.Sprintf("user-%03d", i), fmt.Sprintf("u%d@test.com", i), entity.ReportTypeCommission)
	}

	result, err := composer.Run(ctx, &RunRequest{
		Type: entity.ReportTypeCommission,
		Now:  sundayNine(t),
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Sent != 2 {
		t.Errorf("sent = %d, want 2", result.Sent)
	}
	if len(result.Errors) != 1 {
		t.Errorf("errors = %v, want exactly one", result.Errors)
	}
	if sender.calls != 3 {
		t.Errorf("sender called %d times, want 3 (one failure must not abort the loop)", sender.calls)
	}

	// One audit row per recipient, failure included.
	rows, total, err := repos.SentReport.History(ctx, 1, 20, map[string]string{"report_type": entity.ReportTypeCommission})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if total != 3 {
		t.Fatalf("got %d audit rows, want 3", total)
	}
	failed := 0
	for _, row := range rows {
		if row.Status == entity.SentReportStatusFailed {
			failed++
			if row.ErrorMessage == "" {
				t.Error("failed row missing error message")
			}
		}
	}
	if failed != 1 {
		t.Errorf("got %d failed rows, want 1", failed)
	}
}

func TestRerunAppendsNewRows(t *testing.T) {
	sender := &stubSender{}
	composer, repos, db := newTestComposer(t, sender)
	ctx := context.Background()

	seedSubscriber(t, db, "user-rerun", "rerun@test.com", entity.ReportTypeCommission)

	req := &RunRequest{Type: entity.ReportTypeCommission, Now: sundayNine(t)}
	for i := 0; i < 2; i++ {
		if _, err := composer.Run(ctx, req); err != nil {
			t.Fatalf("run %d: %v", i+1, err)
		}
	}

	_, total, err := repos.SentReport.History(ctx, 1, 20, map[string]string{"user_id": "user-rerun"})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if total != 2 {
		t.Errorf("got %d audit rows after two runs, want 2 (no dedup)", total)
	}
}

func TestScheduledRunSkipsRecipientsNotDue(t *testing.T) {
	sender := &stubSender{}
	composer, _, db := newTestComposer(t, sender)
	ctx := context.Background()

	seedSubscriber(t, db, "user-due", "due@test.com", entity.ReportTypeSmartCheck)

	// Monday 09:00 does not match weekday 0.
	loc, _ := time.LoadLocation("Asia/Riyadh")
	monday := time.Date(2026, 8, 31, 9, 0, 0, 0, loc)

	result, err := composer.Run(ctx, &RunRequest{Type: entity.ReportTypeSmartCheck, Now: monday})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Sent != 0 || sender.calls != 0 {
		t.Errorf("sent = %d calls = %d, want 0 sends off schedule", result.Sent, sender.calls)
	}
}

func TestRunTestModeSynthesizesRecipient(t *testing.T) {
	sender := &stubSender{}
	composer, repos, _ := newTestComposer(t, sender)
	ctx := context.Background()

	result, err := composer.Run(ctx, &RunRequest{
		Type:     entity.ReportTypeCommission,
		TestMode: true,
		Email:    "a@b.com",
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !result.Success || result.Sent != 1 {
		t.Fatalf("result = %+v, want success with sent=1", result)
	}

	rows, total, err := repos.SentReport.History(ctx, 1, 10, nil)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if total != 1 {
		t.Fatalf("got %d audit rows, want 1", total)
	}
	if rows[0].RecipientEmail != "a@b.com" {
		t.Errorf("recipient = %q, want a@b.com", rows[0].RecipientEmail)
	}
	if !rows[0].IsTest {
		t.Error("audit row should be marked is_test")
	}
}

func TestRunRejectsUnknownType(t *testing.T) {
	composer, _, _ := newTestComposer(t, &stubSender{})
	if _, err := composer.Run(context.Background(), &RunRequest{Type: "quarterly"}); err == nil {
		t.Fatal("unknown report type should error")
	}
}

func TestResendAppendsFreshAuditRow(t *testing.T) {
	sender := &stubSender{}
	composer, repos, _ := newTestComposer(t, sender)
	ctx := context.Background()

	original := &entity.SentReport{
		ReportType:     entity.ReportTypeSmartCheck,
		RecipientEmail: "resend@test.com",
		Status:         entity.SentReportStatusSent,
		ReportData:     entity.JSONB{"items": []interface{}{}, "low_count": 0},
	}
	if err := repos.SentReport.Append(ctx, original); err != nil {
		t.Fatalf("seed sent report: %v", err)
	}

	row, err := composer.Resend(ctx, original.ID)
	if err != nil {
		t.Fatalf("resend: %v", err)
	}
	if row.Status != entity.SentReportStatusSent {
		t.Errorf("resend row status = %q, want sent", row.Status)
	}
	if sender.calls != 1 {
		t.Errorf("sender called %d times, want 1", sender.calls)
	}

	_, total, err := repos.SentReport.History(ctx, 1, 10, nil)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if total != 2 {
		t.Errorf("got %d rows after resend, want 2", total)
	}
}
