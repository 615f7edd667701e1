package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/beanlink/beanlink/internal/market/entity"
	"github.com/beanlink/beanlink/internal/market/testutil"
	"gorm.io/gorm"
)

func seedContract(t *testing.T, db *gorm.DB, id, status string) *entity.DirectSupplyContract {
	t.Helper()
	contract := &entity.DirectSupplyContract{
		ID:                       id,
		ContractCode:             "DSC-2026-" + id,
		BuyerID:                  "buyer-001",
		SellerID:                 "seller-001",
		TotalAmount:              10000,
		PlatformCommissionRate:   0.03,
		PlatformCommissionAmount: 300,
		Currency:                 "SAR",
		Status:                   status,
		CreatedAt:                time.Now(),
		UpdatedAt:                time.Now(),
	}
	if err := db.Create(contract).Error; err != nil {
		t.Fatalf("seed contract: %v", err)
	}
	return contract
}

func TestSignEnforcesSellerBuyerPlatformOrder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewContractRepository(db)
	ctx := context.Background()

	seedContract(t, db, "dsc-order", entity.ContractStatusAwaitingSellerSign)

	// Buyer and platform cannot jump the queue.
	if _, err := repo.Sign(ctx, "dsc-order", entity.SignPartyBuyer, "Buyer Co", "buyer-001", "Buyer"); !errors.Is(err, ErrSignatureNotDue) {
		t.Fatalf("buyer sign first: got %v, want ErrSignatureNotDue", err)
	}
	if _, err := repo.Sign(ctx, "dsc-order", entity.SignPartyPlatform, "Platform", "admin-001", "Admin"); !errors.Is(err, ErrSignatureNotDue) {
		t.Fatalf("platform sign first: got %v, want ErrSignatureNotDue", err)
	}

	contract, err := repo.Sign(ctx, "dsc-order", entity.SignPartySeller, "Seller Co", "seller-001", "Seller")
	if err != nil {
		t.Fatalf("seller sign: %v", err)
	}
	if contract.Status != entity.ContractStatusAwaitingBuyerSign {
		t.Errorf("status after seller sign = %q, want awaiting_buyer_sign", contract.Status)
	}
	if contract.SellerSignature == nil || *contract.SellerSignature != "Seller Co" {
		t.Error("seller signature not recorded")
	}
	if contract.SellerSignedAt == nil {
		t.Error("seller signed_at not recorded")
	}

	// Seller cannot sign twice while the buyer is due.
	if _, err := repo.Sign(ctx, "dsc-order", entity.SignPartySeller, "Seller Co", "seller-001", "Seller"); !errors.Is(err, ErrSignatureNotDue) {
		t.Fatalf("seller double sign: got %v, want ErrSignatureNotDue", err)
	}

	contract, err = repo.Sign(ctx, "dsc-order", entity.SignPartyBuyer, "Buyer Co", "buyer-001", "Buyer")
	if err != nil {
		t.Fatalf("buyer sign: %v", err)
	}
	if contract.Status != entity.ContractStatusAwaitingPlatformSign {
		t.Errorf("status after buyer sign = %q, want awaiting_platform_sign", contract.Status)
	}

	contract, err = repo.Sign(ctx, "dsc-order", entity.SignPartyPlatform, "Platform", "admin-001", "Admin")
	if err != nil {
		t.Fatalf("platform sign: %v", err)
	}
	if contract.Status != entity.ContractStatusFullySigned {
		t.Errorf("status after platform sign = %q, want fully_signed", contract.Status)
	}
	if !contract.FullySigned() {
		t.Error("contract should be fully signed after all three signatures")
	}
}

func TestSignRejectedBeforeCommissionPaid(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewContractRepository(db)
	ctx := context.Background()

	seedContract(t, db, "dsc-early", entity.ContractStatusPendingCommission)

	if _, err := repo.Sign(ctx, "dsc-early", entity.SignPartySeller, "Seller Co", "seller-001", "Seller"); !errors.Is(err, ErrSignatureNotDue) {
		t.Fatalf("sign before commission paid: got %v, want ErrSignatureNotDue", err)
	}
}

func TestContractUpdateStatusGuarded(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewContractRepository(db)
	logRepo := NewActivityLogRepository(db)
	ctx := context.Background()

	seedContract(t, db, "dsc-pay", entity.ContractStatusPendingCommission)

	contract, err := repo.UpdateStatusGuarded(ctx, "dsc-pay", entity.ContractStatusCommissionPaid, "", "buyer-001", "Buyer")
	if err != nil {
		t.Fatalf("pay commission: %v", err)
	}
	if contract.Status != entity.ContractStatusCommissionPaid {
		t.Errorf("status = %q, want commission_paid", contract.Status)
	}

	// Skipping straight to completed is out of the table.
	if _, err := repo.UpdateStatusGuarded(ctx, "dsc-pay", entity.ContractStatusCompleted, "", "buyer-001", "Buyer"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("commission_paid -> completed: got %v, want ErrInvalidTransition", err)
	}

	// Dispute is absorbing and reachable from any active status.
	contract, err = repo.UpdateStatusGuarded(ctx, "dsc-pay", entity.ContractStatusDisputed, "quality below sample", "buyer-001", "Buyer")
	if err != nil {
		t.Fatalf("dispute: %v", err)
	}
	if contract.DisputeReason != "quality below sample" {
		t.Errorf("dispute reason = %q", contract.DisputeReason)
	}

	logs, err := logRepo.FindByEntity(ctx, "contract", "dsc-pay", 10)
	if err != nil {
		t.Fatalf("load activity logs: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("got %d activity logs, want 2", len(logs))
	}
}

func TestContractCompletionSetsTimestamp(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewContractRepository(db)
	ctx := context.Background()

	seedContract(t, db, "dsc-done", entity.ContractStatusAwaitingSellerPayment)

	contract, err := repo.UpdateStatusGuarded(ctx, "dsc-done", entity.ContractStatusCompleted, "", "seller-001", "Seller")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if contract.CompletedAt == nil {
		t.Error("CompletedAt not set on completion")
	}
}
