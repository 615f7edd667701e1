package service

import (
	"context"

	"github.com/beanlink/beanlink/internal/market/entity"
	"github.com/beanlink/beanlink/internal/market/repository"
	"github.com/google/uuid"
)

// LoyaltyService cafe stamp cards
type LoyaltyService struct {
	loyaltyRepo *repository.LoyaltyRepository
}

func NewLoyaltyService(loyaltyRepo *repository.LoyaltyRepository) *LoyaltyService {
	return &LoyaltyService{loyaltyRepo: loyaltyRepo}
}

// ListCards pages one cafe's cards
func (s *LoyaltyService) ListCards(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.LoyaltyCard, int64, error) {
	return s.loyaltyRepo.FindAll(ctx, page, pageSize, filters)
}

// GetCard loads one card
func (s *LoyaltyService) GetCard(ctx context.Context, id string) (*entity.LoyaltyCard, error) {
	return s.loyaltyRepo.FindByID(ctx, id)
}

// CreateCardRequest new card payload
type CreateCardRequest struct {
	CustomerName    string `json:"customer_name" binding:"required"`
	CustomerPhone   string `json:"customer_phone"`
	RewardThreshold int    `json:"reward_threshold"`
}

// CreateCard opens a card for a walk-in customer.
func (s *LoyaltyService) CreateCard(ctx context.Context, cafeID string, req *CreateCardRequest) (*entity.LoyaltyCard, error) {
	threshold := req.RewardThreshold
	if threshold <= 0 {
		threshold = 10
	}

	card := &entity.LoyaltyCard{
		ID:              uuid.New().String()[:32],
		CafeID:          cafeID,
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		RewardThreshold: threshold,
	}

	if err := s.loyaltyRepo.Create(ctx, card); err != nil {
		return nil, err
	}
	return card, nil
}

// Stamp adds one stamp to a card.
func (s *LoyaltyService) Stamp(ctx context.Context, id, operatorID, operatorName string) (*entity.LoyaltyCard, error) {
	return s.loyaltyRepo.Stamp(ctx, id, operatorID, operatorName)
}

// Redeem exchanges a full card for a reward.
func (s *LoyaltyService) Redeem(ctx context.Context, id, operatorID, operatorName string) (*entity.LoyaltyCard, error) {
	return s.loyaltyRepo.Redeem(ctx, id, operatorID, operatorName)
}
