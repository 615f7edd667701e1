package entity

import "time"

// SentReport append-only audit log: one row per delivery attempt. Feeds
// the report-history view, resend, and delivery statistics. Reruns for
// the same window append new rows; there is no dedup.
type SentReport struct {
	ID             string    `json:"id" gorm:"primaryKey;size:32"`
	UserID         *string   `json:"user_id" gorm:"size:32;index"`
	ReportType     string    `json:"report_type" gorm:"size:30;not null;index"`
	RecipientEmail string    `json:"recipient_email" gorm:"size:128;not null"`
	Status         string    `json:"status" gorm:"size:10;not null"` // sent/failed
	IsTest         bool      `json:"is_test" gorm:"default:false"`
	ErrorMessage   string    `json:"error_message" gorm:"size:1000"`
	ReportData     JSONB     `json:"report_data" gorm:"type:jsonb"` // aggregate snapshot for resend/statistics
	SentAt         time.Time `json:"sent_at"`
}

func (SentReport) TableName() string {
	return "sent_reports"
}

// Sent report statuses
const (
	SentReportStatusSent   = "sent"
	SentReportStatusFailed = "failed"
)
