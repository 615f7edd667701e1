package service

import (
	"context"
	"fmt"
	"time"

	"github.com/beanlink/beanlink/internal/market/entity"
	"github.com/beanlink/beanlink/internal/market/repository"
)

// PreferenceService notification schedule management
type PreferenceService struct {
	prefRepo *repository.PreferenceRepository
}

func NewPreferenceService(prefRepo *repository.PreferenceRepository) *PreferenceService {
	return &PreferenceService{prefRepo: prefRepo}
}

// GetPreferences lists the caller's notification preferences.
func (s *PreferenceService) GetPreferences(ctx context.Context, userID string) ([]entity.NotificationPreference, error) {
	return s.prefRepo.FindByUser(ctx, userID)
}

// UpsertPreferenceRequest schedule payload
type UpsertPreferenceRequest struct {
	ReportType   string `json:"report_type" binding:"required"`
	Enabled      *bool  `json:"enabled"`
	Weekday      int    `json:"weekday"`
	Hour         int    `json:"hour"`
	Timezone     string `json:"timezone"`
	EmailEnabled *bool  `json:"email_enabled"`
	PushEnabled  *bool  `json:"push_enabled"`
}

// UpsertPreference creates or replaces the caller's schedule for one
// report type.
func (s *PreferenceService) UpsertPreference(ctx context.Context, userID string, req *UpsertPreferenceRequest) (*entity.NotificationPreference, error) {
	switch req.ReportType {
	case entity.ReportTypeCommission, entity.ReportTypeWeeklyInventory, entity.ReportTypeSmartCheck:
	default:
		return nil, fmt.Errorf("unknown report type: %s", req.ReportType)
	}

	if req.Weekday < 0 || req.Weekday > 6 {
		return nil, fmt.Errorf("weekday out of range: %d", req.Weekday)
	}
	if req.Hour < 0 || req.Hour > 23 {
		return nil, fmt.Errorf("hour out of range: %d", req.Hour)
	}

	timezone := req.Timezone
	if timezone == "" {
		timezone = "Asia/Riyadh"
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		return nil, fmt.Errorf("unknown timezone: %s", timezone)
	}

	pref := &entity.NotificationPreference{
		UserID:       userID,
		ReportType:   req.ReportType,
		Enabled:      true,
		Weekday:      req.Weekday,
		Hour:         req.Hour,
		Timezone:     timezone,
		EmailEnabled: true,
		PushEnabled:  false,
	}
	if req.Enabled != nil {
		pref.Enabled = *req.Enabled
	}
	if req.EmailEnabled != nil {
		pref.EmailEnabled = *req.EmailEnabled
	}
	if req.PushEnabled != nil {
		pref.PushEnabled = *req.PushEnabled
	}

	if err := s.prefRepo.Upsert(ctx, pref); err != nil {
		return nil, err
	}
	return pref, nil
}
