package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/beanlink/beanlink/internal/market/entity"
	"github.com/beanlink/beanlink/internal/market/repository"
	"github.com/beanlink/beanlink/internal/shared/mailer"
	"go.uber.org/zap"
)

// default trailing aggregation window for commission reports
const defaultCommissionWindowDays = 7

// Composer builds and delivers scheduled email reports.
type Composer struct {
	prefRepo       *repository.PreferenceRepository
	sentRepo       *repository.SentReportRepository
	userRepo       *repository.UserRepository
	commissionRepo *repository.CommissionRepository
	inventoryRepo  *repository.InventoryRepository
	mailer         mailer.Sender
	logger         *zap.Logger
	commissionDays int
}

func NewComposer(
	prefRepo *repository.PreferenceRepository,
	sentRepo *repository.SentReportRepository,
	userRepo *repository.UserRepository,
	commissionRepo *repository.CommissionRepository,
	inventoryRepo *repository.InventoryRepository,
	sender mailer.Sender,
	logger *zap.Logger,
	commissionDays int,
) *Composer {
	if commissionDays <= 0 {
		commissionDays = defaultCommissionWindowDays
	}
	return &Composer{
		prefRepo:       prefRepo,
		sentRepo:       sentRepo,
		userRepo:       userRepo,
		commissionRepo: commissionRepo,
		inventoryRepo:  inventoryRepo,
		mailer:         sender,
		logger:         logger,
		commissionDays: commissionDays,
	}
}

// RunRequest one report invocation
type RunRequest struct {
	Type     string `json:"type"`
	TestMode bool   `json:"testMode"`
	UserID   string `json:"userId"`
	Email    string `json:"email"`

	// Now overrides the clock for schedule matching; zero means wall time.
	Now time.Time `json:"-"`
}

// RunResult what a report invocation returns. Partial delivery failure
// still counts as success at the HTTP level.
type RunResult struct {
	Success bool     `json:"success"`
	Sent    int      `json:"sent"`
	Errors  []string `json:"errors"`
}

type recipient struct {
	userID   string
	email    string
	language string
}

// Run executes one report: resolve recipients, aggregate, render, send
// one email per recipient, and append one audit row per recipient.
// Delivery errors are collected per recipient and never abort the loop;
// only database read failures surface as a returned error.
func (c *Composer) Run(ctx context.Context, req *RunRequest) (*RunResult, error) {
	switch req.Type {
	case entity.ReportTypeCommission, entity.ReportTypeWeeklyInventory, entity.ReportTypeSmartCheck:
	default:
		return nil, fmt.Errorf("unknown report type: %s", req.Type)
	}

	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}

	recipients, err := c.resolveRecipients(ctx, req, now)
	if err != nil {
		return nil, err
	}

	// the commission window is shared by every recipient
	var shared entity.JSONB
	if req.Type == entity.ReportTypeCommission {
		shared, err = c.commissionSnapshot(ctx, now)
		if err != nil {
			return nil, err
		}
	}

	result := &RunResult{Success: true, Errors: []string{}}
	for _, rcpt := range recipients {
		snapshot := shared
		if snapshot == nil {
			snapshot, err = c.ownerSnapshot(ctx, req.Type, rcpt.userID)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", rcpt.email, err))
				c.appendAudit(ctx, req, rcpt, entity.SentReportStatusFailed, err.Error(), nil, now)
				continue
			}
		}

		subject, html := Render(req.Type, rcpt.language, snapshot)
		sendErr := c.mailer.Send(ctx, rcpt.email, subject, html)
		if sendErr != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", rcpt.email, sendErr))
			c.appendAudit(ctx, req, rcpt, entity.SentReportStatusFailed, sendErr.Error(), snapshot, now)
			c.logger.Warn("report send failed",
				zap.String("type", req.Type),
				zap.String("recipient", rcpt.email),
				zap.Error(sendErr))
			continue
		}

		result.Sent++
		c.appendAudit(ctx, req, rcpt, entity.SentReportStatusSent, "", snapshot, now)
	}

	c.logger.Info("report run finished",
		zap.String("type", req.Type),
		zap.Bool("test_mode", req.TestMode),
		zap.Int("recipients", len(recipients)),
		zap.Int("sent", result.Sent),
		zap.Int("errors", len(result.Errors)))
	return result, nil
}

// resolveRecipients picks who gets this run. Test mode synthesizes a
// single recipient; scheduled runs filter enabled subscriptions by each
// subscriber's local schedule.
func (c *Composer) resolveRecipients(ctx context.Context, req *RunRequest, now time.Time) ([]recipient, error) {
	if req.TestMode {
		rcpt := recipient{userID: req.UserID, email: req.Email, language: "en"}
		if req.UserID != "" {
			user, err := c.userRepo.FindByID(ctx, req.UserID)
			if err != nil {
				return nil, err
			}
			rcpt.language = user.Language
			if rcpt.email == "" {
				rcpt.email = user.Email
			}
		}
		if rcpt.email == "" {
			return nil, fmt.Errorf("test mode requires a userId or email")
		}
		return []recipient{rcpt}, nil
	}

	prefs, err := c.prefRepo.FindEnabled(ctx, req.Type)
	if err != nil {
		return nil, err
	}

	var recipients []recipient
	for _, pref := range prefs {
		if !pref.DueAt(now) {
			continue
		}
		if pref.User == nil || pref.User.Email == "" {
			continue
		}
		recipients = append(recipients, recipient{
			userID:   pref.UserID,
			email:    pref.User.Email,
			language: pref.User.Language,
		})
	}
	return recipients, nil
}

// commissionSnapshot aggregates the trailing commission window.
func (c *Composer) commissionSnapshot(ctx context.Context, now time.Time) (entity.JSONB, error) {
	start := now.AddDate(0, 0, -c.commissionDays)
	summary, err := c.commissionRepo.SummarizeWindow(ctx, start, now)
	if err != nil {
		return nil, err
	}

	suppliers := make([]interface{}, 0, len(summary.SupplierTotals))
	for _, st := range summary.SupplierTotals {
		suppliers = append(suppliers, map[string]interface{}{
			"supplier_id":   st.SupplierID,
			"supplier_name": st.SupplierName,
			"count":         st.Count,
			"total":         st.Total,
		})
	}

	return entity.JSONB{
		"window_start": summary.WindowStart.Format(time.RFC3339),
		"window_end":   summary.WindowEnd.Format(time.RFC3339),
		"count":        summary.Count,
		"total_base":   summary.TotalBase,
		"total_amount": summary.TotalAmount,
		"suppliers":    suppliers,
	}, nil
}

// ownerSnapshot aggregates one subscriber's inventory view.
func (c *Composer) ownerSnapshot(ctx context.Context, reportType, ownerID string) (entity.JSONB, error) {
	if ownerID == "" {
		return entity.JSONB{"items": []interface{}{}}, nil
	}

	var items []entity.InventoryItem
	var err error
	if reportType == entity.ReportTypeSmartCheck {
		items, err = c.inventoryRepo.FindLowStock(ctx, ownerID)
	} else {
		items, err = c.inventoryRepo.FindByOwner(ctx, ownerID)
	}
	if err != nil {
		return nil, err
	}

	rows := make([]interface{}, 0, len(items))
	lowCount := 0
	for _, item := range items {
		if item.LowStock() {
			lowCount++
		}
		rows = append(rows, map[string]interface{}{
			"name":            item.Name,
			"category":        item.Category,
			"quantity":        item.Quantity,
			"unit":            item.Unit,
			"low_stock_level": item.LowStockLevel,
			"low":             item.LowStock(),
		})
	}

	return entity.JSONB{
		"items":     rows,
		"low_count": lowCount,
	}, nil
}

// appendAudit writes one sent_reports row. Audit write failure is logged
// but never fails the run.
func (c *Composer) appendAudit(ctx context.Context, req *RunRequest, rcpt recipient, status, errorMessage string, snapshot entity.JSONB, now time.Time) {
	row := &entity.SentReport{
		ReportType:     req.Type,
		RecipientEmail: rcpt.email,
		Status:         status,
		IsTest:         req.TestMode,
		ErrorMessage:   errorMessage,
		ReportData:     snapshot,
		SentAt:         now,
	}
	if rcpt.userID != "" {
		userID := rcpt.userID
		row.UserID = &userID
	}
	if err := c.sentRepo.Append(ctx, row); err != nil {
		c.logger.Error("append sent report",
			zap.String("type", req.Type),
			zap.String("recipient", rcpt.email),
			zap.Error(err))
	}
}

// Resend re-delivers a logged report from its stored snapshot and
// appends a fresh audit row.
func (c *Composer) Resend(ctx context.Context, id string) (*entity.SentReport, error) {
	original, err := c.sentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	language := "en"
	if original.UserID != nil {
		if user, err := c.userRepo.FindByID(ctx, *original.UserID); err == nil {
			language = user.Language
		}
	}

	subject, html := Render(original.ReportType, language, original.ReportData)
	now := time.Now()

	row := &entity.SentReport{
		UserID:         original.UserID,
		ReportType:     original.ReportType,
		RecipientEmail: original.RecipientEmail,
		IsTest:         original.IsTest,
		ReportData:     original.ReportData,
		SentAt:         now,
	}

	if sendErr := c.mailer.Send(ctx, original.RecipientEmail, subject, html); sendErr != nil {
		row.Status = entity.SentReportStatusFailed
		row.ErrorMessage = sendErr.Error()
		if err := c.sentRepo.Append(ctx, row); err != nil {
			c.logger.Error("append resend audit", zap.Error(err))
		}
		return row, sendErr
	}

	row.Status = entity.SentReportStatusSent
	if err := c.sentRepo.Append(ctx, row); err != nil {
		c.logger.Error("append resend audit", zap.Error(err))
	}
	return row, nil
}
