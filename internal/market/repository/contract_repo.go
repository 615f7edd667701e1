package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/beanlink/beanlink/internal/market/entity"
	"gorm.io/gorm"
)

// ContractRepository direct-supply contract storage
type ContractRepository struct {
	db *gorm.DB
}

func NewContractRepository(db *gorm.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

// GenerateCode generates a contract code like DSC-2025-0001
func (r *ContractRepository) GenerateCode(ctx context.Context) (string, error) {
	year := time.Now().Format("2006")
	prefix := fmt.Sprintf("DSC-%s-", year)

	var last entity.DirectSupplyContract
	err := r.db.WithContext(ctx).
		Where("contract_code LIKE ?", prefix+"%").
		Order("contract_code DESC").
		First(&last).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return prefix + "0001", nil
		}
		return "", err
	}

	var seq int
	if _, err := fmt.Sscanf(last.ContractCode, prefix+"%04d", &seq); err != nil {
		return "", fmt.Errorf("parse contract code %s: %w", last.ContractCode, err)
	}

	return fmt.Sprintf("%s%04d", prefix, seq+1), nil
}

// FindAll lists contracts
func (r *ContractRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.DirectSupplyContract, int64, error) {
	var contracts []entity.DirectSupplyContract
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.DirectSupplyContract{})

	if buyerID := filters["buyer_id"]; buyerID != "" {
		query = query.Where("buyer_id = ?", buyerID)
	}
	if sellerID := filters["seller_id"]; sellerID != "" {
		query = query.Where("seller_id = ?", sellerID)
	}
	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if search := filters["search"]; search != "" {
		query = query.Where("contract_code ILIKE ?", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("Buyer").
		Preload("Seller").
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&contracts).Error

	return contracts, total, err
}

// FindByID loads a contract with relations
func (r *ContractRepository) FindByID(ctx context.Context, id string) (*entity.DirectSupplyContract, error) {
	var contract entity.DirectSupplyContract
	err := r.db.WithContext(ctx).
		Preload("Buyer").
		Preload("Seller").
		Where("id = ?", id).
		First(&contract).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &contract, nil
}

// Create inserts a contract
func (r *ContractRepository) Create(ctx context.Context, contract *entity.DirectSupplyContract) error {
	return r.db.WithContext(ctx).Create(contract).Error
}

// Update saves a contract
func (r *ContractRepository) Update(ctx context.Context, contract *entity.DirectSupplyContract) error {
	return r.db.WithContext(ctx).Save(contract).Error
}

// UpdateStatusGuarded moves a contract to the next status inside a single
// transaction, consulting the transition table against the stored row.
func (r *ContractRepository) UpdateStatusGuarded(ctx context.Context, id, next, reason, operatorID, operatorName string) (*entity.DirectSupplyContract, error) {
	var contract entity.DirectSupplyContract

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&contract).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		from := contract.Status
		if !entity.ContractTransitionAllowed(from, next) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, next)
		}

		now := time.Now()
		switch next {
		case entity.ContractStatusCompleted:
			contract.CompletedAt = &now
		case entity.ContractStatusCancelled, entity.ContractStatusDisputed:
			contract.DisputeReason = reason
		}

		contract.Status = next
		if err := tx.Save(&contract).Error; err != nil {
			return err
		}

		log := &entity.ActivityLog{
			ID:           newID(),
			EntityType:   "contract",
			EntityID:     contract.ID,
			EntityCode:   contract.ContractCode,
			Action:       "status_change",
			FromStatus:   from,
			ToStatus:     next,
			OperatorID:   operatorID,
			OperatorName: operatorName,
		}
		return tx.Create(log).Error
	})

	if err != nil {
		return nil, err
	}
	return &contract, nil
}

// Sign records one party's signature inside a single transaction. The
// signature is only accepted in the status where that party is due, and
// the new status is recomputed from the stored signature fields so the
// status string can never drift from the signatures themselves.
func (r *ContractRepository) Sign(ctx context.Context, id, party, signature, operatorID, operatorName string) (*entity.DirectSupplyContract, error) {
	var contract entity.DirectSupplyContract

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&contract).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if !contract.SigningDue(party) {
			return fmt.Errorf("%w: %s in status %s", ErrSignatureNotDue, party, contract.Status)
		}

		now := time.Now()
		switch party {
		case entity.SignPartySeller:
			contract.SellerSignature = &signature
			contract.SellerSignedAt = &now
		case entity.SignPartyBuyer:
			contract.BuyerSignature = &signature
			contract.BuyerSignedAt = &now
		case entity.SignPartyPlatform:
			contract.PlatformSignature = &signature
			contract.PlatformSignedAt = &now
		default:
			return fmt.Errorf("%w: unknown party %s", ErrSignatureNotDue, party)
		}

		from := contract.Status
		next := nextSigningStatus(&contract)
		if !entity.ContractTransitionAllowed(from, next) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, next)
		}

		contract.Status = next
		if err := tx.Save(&contract).Error; err != nil {
			return err
		}

		log := &entity.ActivityLog{
			ID:           newID(),
			EntityType:   "contract",
			EntityID:     contract.ID,
			EntityCode:   contract.ContractCode,
			Action:       "sign_" + party,
			FromStatus:   from,
			ToStatus:     next,
			OperatorID:   operatorID,
			OperatorName: operatorName,
		}
		return tx.Create(log).Error
	})

	if err != nil {
		return nil, err
	}
	return &contract, nil
}

// nextSigningStatus derives the status after a signature from the
// signature fields, not from the caller.
func nextSigningStatus(c *entity.DirectSupplyContract) string {
	if c.FullySigned() {
		return entity.ContractStatusFullySigned
	}
	if c.SellerSignature == nil {
		return entity.ContractStatusAwaitingSellerSign
	}
	if c.BuyerSignature == nil {
		return entity.ContractStatusAwaitingBuyerSign
	}
	return entity.ContractStatusAwaitingPlatformSign
}
