package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/beanlink/beanlink/internal/market/entity"
	"gorm.io/gorm"
)

// LoyaltyRepository loyalty card storage
type LoyaltyRepository struct {
	db *gorm.DB
}

func NewLoyaltyRepository(db *gorm.DB) *LoyaltyRepository {
	return &LoyaltyRepository{db: db}
}

// FindAll lists cards for one cafe
func (r *LoyaltyRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.LoyaltyCard, int64, error) {
	var cards []entity.LoyaltyCard
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.LoyaltyCard{})

	if cafeID := filters["cafe_id"]; cafeID != "" {
		query = query.Where("cafe_id = ?", cafeID)
	}
	if search := filters["search"]; search != "" {
		query = query.Where("customer_name ILIKE ? OR customer_phone ILIKE ?", "%"+search+"%", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Order("updated_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&cards).Error

	return cards, total, err
}

// FindByID loads a card
func (r *LoyaltyRepository) FindByID(ctx context.Context, id string) (*entity.LoyaltyCard, error) {
	var card entity.LoyaltyCard
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&card).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &card, nil
}

// Create inserts a card
func (r *LoyaltyRepository) Create(ctx context.Context, card *entity.LoyaltyCard) error {
	return r.db.WithContext(ctx).Create(card).Error
}

// Update saves a card
func (r *LoyaltyRepository) Update(ctx context.Context, card *entity.LoyaltyCard) error {
	return r.db.WithContext(ctx).Save(card).Error
}

// Stamp adds one stamp inside a transaction
func (r *LoyaltyRepository) Stamp(ctx context.Context, id, operatorID, operatorName string) (*entity.LoyaltyCard, error) {
	var card entity.LoyaltyCard

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&card).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		now := time.Now()
		card.Stamps++
		card.LastStampAt = &now
		if err := tx.Save(&card).Error; err != nil {
			return err
		}

		log := &entity.ActivityLog{
			ID:           newID(),
			EntityType:   "loyalty_card",
			EntityID:     card.ID,
			Action:       "stamp",
			Content:      fmt.Sprintf("stamps %d/%d", card.Stamps, card.RewardThreshold),
			OperatorID:   operatorID,
			OperatorName: operatorName,
		}
		return tx.Create(log).Error
	})

	if err != nil {
		return nil, err
	}
	return &card, nil
}

// Redeem resets the stamp count against the threshold inside a transaction
func (r *LoyaltyRepository) Redeem(ctx context.Context, id, operatorID, operatorName string) (*entity.LoyaltyCard, error) {
	var card entity.LoyaltyCard

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&card).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if !card.RewardDue() {
			return fmt.Errorf("%w: card has %d of %d stamps", ErrInvalidTransition, card.Stamps, card.RewardThreshold)
		}

		card.Stamps -= card.RewardThreshold
		card.RedeemedCount++
		if err := tx.Save(&card).Error; err != nil {
			return err
		}

		log := &entity.ActivityLog{
			ID:           newID(),
			EntityType:   "loyalty_card",
			EntityID:     card.ID,
			Action:       "redeem",
			Content:      fmt.Sprintf("redeemed #%d", card.RedeemedCount),
			OperatorID:   operatorID,
			OperatorName: operatorName,
		}
		return tx.Create(log).Error
	})

	if err != nil {
		return nil, err
	}
	return &card, nil
}
