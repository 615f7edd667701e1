package service

import (
	"context"
	"fmt"
	"log"

	"github.com/beanlink/beanlink/internal/market/entity"
	"github.com/beanlink/beanlink/internal/market/repository"
	"github.com/beanlink/beanlink/internal/market/sse"
	"github.com/google/uuid"
)

// ContractService direct-supply contract lifecycle
type ContractService struct {
	contractRepo   *repository.ContractRepository
	commissionRepo *repository.CommissionRepository
	logRepo        *repository.ActivityLogRepository
}

func NewContractService(contractRepo *repository.ContractRepository, commissionRepo *repository.CommissionRepository, logRepo *repository.ActivityLogRepository) *ContractService {
	return &ContractService{
		contractRepo:   contractRepo,
		commissionRepo: commissionRepo,
		logRepo:        logRepo,
	}
}

// ListContracts pages contracts
func (s *ContractService) ListContracts(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.DirectSupplyContract, int64, error) {
	return s.contractRepo.FindAll(ctx, page, pageSize, filters)
}

// GetContract loads one contract
// Activity lists the contract's audit trail, newest first
func (s *ContractService) Activity(ctx context.Context, id string, limit int) ([]entity.ActivityLog, error) {
	return s.logRepo.FindByEntity(ctx, "contract", id, limit)
}

func (s *ContractService) GetContract(ctx context.Context, id string) (*entity.DirectSupplyContract, error) {
	return s.contractRepo.FindByID(ctx, id)
}

// ContractItem one line of a contract
type ContractItem struct {
	Name       string  `json:"name" binding:"required"`
	QuantityKg float64 `json:"quantity_kg" binding:"required,gt=0"`
	UnitPrice  float64 `json:"unit_price" binding:"required,gt=0"`
}

// CreateContractRequest new contract payload
type CreateContractRequest struct {
	SellerID       string         `json:"seller_id" binding:"required"`
	Items          []ContractItem `json:"items" binding:"required,min=1"`
	CommissionRate float64        `json:"commission_rate"`
	Currency       string         `json:"currency"`
	Notes          string         `json:"notes"`
}

// default platform cut of a direct-supply contract
const contractCommissionRate = 0.03

// CreateContract drafts a contract in pending_commission. Total and
// commission amount are computed server-side from the items.
func (s *ContractService) CreateContract(ctx context.Context, buyerID string, req *CreateContractRequest) (*entity.DirectSupplyContract, error) {
	if req.SellerID == buyerID {
		return nil, fmt.Errorf("cannot contract with yourself")
	}

	rate := req.CommissionRate
	if rate == 0 {
		rate = contractCommissionRate
	}
	if rate < 0 || rate >= 1 {
		return nil, fmt.Errorf("commission rate out of range: %.4f", rate)
	}

	var total float64
	items := make(entity.JSONBArray, 0, len(req.Items))
	for _, item := range req.Items {
		total += item.QuantityKg * item.UnitPrice
		items = append(items, map[string]interface{}{
			"name":        item.Name,
			"quantity_kg": item.QuantityKg,
			"unit_price":  item.UnitPrice,
		})
	}

	code, err := s.contractRepo.GenerateCode(ctx)
	if err != nil {
		return nil, fmt.Errorf("generate contract code: %w", err)
	}

	currency := req.Currency
	if currency == "" {
		currency = "SAR"
	}

	contract := &entity.DirectSupplyContract{
		ID:                       uuid.New().String()[:32],
		ContractCode:             code,
		BuyerID:                  buyerID,
		SellerID:                 req.SellerID,
		Items:                    items,
		TotalAmount:              total,
		PlatformCommissionRate:   rate,
		PlatformCommissionAmount: total * rate,
		Currency:                 currency,
		Status:                   entity.ContractStatusPendingCommission,
		Notes:                    req.Notes,
	}

	if err := s.contractRepo.Create(ctx, contract); err != nil {
		return nil, err
	}

	sse.PublishContractUpdate(contract.ID, contract.Status, "created")
	return contract, nil
}

// PayCommission records the platform commission as paid and opens the
// signing sequence.
func (s *ContractService) PayCommission(ctx context.Context, id, operatorID, operatorName string) (*entity.DirectSupplyContract, error) {
	contract, err := s.contractRepo.UpdateStatusGuarded(ctx, id, entity.ContractStatusCommissionPaid, "", operatorID, operatorName)
	if err != nil {
		return nil, err
	}

	contractID := contract.ID
	commission := &entity.Commission{
		ID:         uuid.New().String()[:32],
		ContractID: &contractID,
		SupplierID: contract.SellerID,
		BaseAmount: contract.TotalAmount,
		Rate:       contract.PlatformCommissionRate,
		Amount:     contract.PlatformCommissionAmount,
		Currency:   contract.Currency,
		Status:     entity.CommissionStatusInvoiced,
	}
	if err := s.commissionRepo.Create(ctx, commission); err != nil {
		log.Printf("[contract] record commission for %s: %v", contract.ContractCode, err)
	}

	// commission paid, seller signs first
	contract, err = s.contractRepo.UpdateStatusGuarded(ctx, id, entity.ContractStatusAwaitingSellerSign, "", operatorID, operatorName)
	if err != nil {
		return nil, err
	}

	sse.PublishContractUpdate(contract.ID, contract.Status, "commission_paid")
	return contract, nil
}

// SignContractRequest signature payload
type SignContractRequest struct {
	Party     string `json:"party" binding:"required"` // seller/buyer/platform
	Signature string `json:"signature" binding:"required"`
}

// SignContract records one party's signature; ordering and the derived
// fully_signed state are enforced inside the repository transaction.
func (s *ContractService) SignContract(ctx context.Context, id string, req *SignContractRequest, operatorID, operatorName string) (*entity.DirectSupplyContract, error) {
	contract, err := s.contractRepo.Sign(ctx, id, req.Party, req.Signature, operatorID, operatorName)
	if err != nil {
		return nil, err
	}

	sse.PublishContractUpdate(contract.ID, contract.Status, "sign_"+req.Party)
	return contract, nil
}

// StartSellerPayment moves a fully signed contract into the seller
// payment phase.
func (s *ContractService) StartSellerPayment(ctx context.Context, id, operatorID, operatorName string) (*entity.DirectSupplyContract, error) {
	contract, err := s.contractRepo.UpdateStatusGuarded(ctx, id, entity.ContractStatusAwaitingSellerPayment, "", operatorID, operatorName)
	if err != nil {
		return nil, err
	}

	sse.PublishContractUpdate(contract.ID, contract.Status, "status_change")
	return contract, nil
}

// CompleteContract closes a contract after the seller payment cleared.
func (s *ContractService) CompleteContract(ctx context.Context, id, operatorID, operatorName string) (*entity.DirectSupplyContract, error) {
	contract, err := s.contractRepo.UpdateStatusGuarded(ctx, id, entity.ContractStatusCompleted, "", operatorID, operatorName)
	if err != nil {
		return nil, err
	}

	sse.PublishContractUpdate(contract.ID, contract.Status, "completed")
	return contract, nil
}

// DisputeRequest dispute/cancel payload
type DisputeRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// DisputeContract marks a contract disputed.
func (s *ContractService) DisputeContract(ctx context.Context, id string, req *DisputeRequest, operatorID, operatorName string) (*entity.DirectSupplyContract, error) {
	contract, err := s.contractRepo.UpdateStatusGuarded(ctx, id, entity.ContractStatusDisputed, req.Reason, operatorID, operatorName)
	if err != nil {
		return nil, err
	}

	sse.PublishContractUpdate(contract.ID, contract.Status, "disputed")
	return contract, nil
}

// CancelContract cancels a contract.
func (s *ContractService) CancelContract(ctx context.Context, id string, req *DisputeRequest, operatorID, operatorName string) (*entity.DirectSupplyContract, error) {
	contract, err := s.contractRepo.UpdateStatusGuarded(ctx, id, entity.ContractStatusCancelled, req.Reason, operatorID, operatorName)
	if err != nil {
		return nil, err
	}

	sse.PublishContractUpdate(contract.ID, contract.Status, "cancelled")
	return contract, nil
}
