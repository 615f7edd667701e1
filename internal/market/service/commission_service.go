package service

import (
	"context"
	"time"

	"github.com/beanlink/beanlink/internal/market/entity"
	"github.com/beanlink/beanlink/internal/market/repository"
)

// CommissionService read-side view over booked platform commissions
type CommissionService struct {
	commissionRepo *repository.CommissionRepository
}

func NewCommissionService(commissionRepo *repository.CommissionRepository) *CommissionService {
	return &CommissionService{commissionRepo: commissionRepo}
}

func (s *CommissionService) ListCommissions(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Commission, int64, error) {
	return s.commissionRepo.FindAll(ctx, page, pageSize, filters)
}

func (s *CommissionService) GetCommission(ctx context.Context, id string) (*entity.Commission, error) {
	return s.commissionRepo.FindByID(ctx, id)
}

// Summarize rolls up commissions over a trailing window of days.
func (s *CommissionService) Summarize(ctx context.Context, days int) (*repository.CommissionSummary, error) {
	end := time.Now()
	start := end.AddDate(0, 0, -days)
	return s.commissionRepo.SummarizeWindow(ctx, start, end)
}
