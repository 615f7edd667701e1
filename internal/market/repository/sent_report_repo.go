package repository

import (
	"context"
	"errors"
	"time"

	"github.com/beanlink/beanlink/internal/market/entity"
	"gorm.io/gorm"
)

// SentReportRepository append-only delivery log storage
type SentReportRepository struct {
	db *gorm.DB
}

func NewSentReportRepository(db *gorm.DB) *SentReportRepository {
	return &SentReportRepository{db: db}
}

// Append inserts one delivery attempt; rows are never updated.
func (r *SentReportRepository) Append(ctx context.Context, report *entity.SentReport) error {
	if report.ID == "" {
		report.ID = newID()
	}
	if report.SentAt.IsZero() {
		report.SentAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(report).Error
}

// FindByID loads one logged attempt
func (r *SentReportRepository) FindByID(ctx context.Context, id string) (*entity.SentReport, error) {
	var report entity.SentReport
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&report).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &report, nil
}

// History lists logged attempts, newest first
func (r *SentReportRepository) History(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.SentReport, int64, error) {
	var reports []entity.SentReport
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.SentReport{})

	if userID := filters["user_id"]; userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	if reportType := filters["report_type"]; reportType != "" {
		query = query.Where("report_type = ?", reportType)
	}
	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Order("sent_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&reports).Error

	return reports, total, err
}

// TypeStat delivery counts for one report type
type TypeStat struct {
	ReportType string `json:"report_type"`
	Sent       int64  `json:"sent"`
	Failed     int64  `json:"failed"`
}

// Statistics aggregates delivery outcomes per report type since a cutoff.
func (r *SentReportRepository) Statistics(ctx context.Context, since time.Time) ([]TypeStat, error) {
	var stats []TypeStat
	err := r.db.WithContext(ctx).Raw(`
		SELECT report_type,
		       COUNT(*) FILTER (WHERE status = 'sent') AS sent,
		       COUNT(*) FILTER (WHERE status = 'failed') AS failed
		FROM sent_reports
		WHERE sent_at >= ?
		GROUP BY report_type
		ORDER BY report_type`, since).
		Scan(&stats).Error
	return stats, err
}
