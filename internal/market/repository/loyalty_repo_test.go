package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/beanlink/beanlink/internal/market/entity"
	"github.com/beanlink/beanlink/internal/market/testutil"
)

func TestStampAndRedeemCycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewLoyaltyRepository(db)
	ctx := context.Background()

	card := &entity.LoyaltyCard{
		ID:              "card-001",
		CafeID:          "cafe-001",
		CustomerName:    "Walk-in",
		CustomerPhone:   "0500000000",
		RewardThreshold: 3,
	}
	if err := db.Create(card).Error; err != nil {
		t.Fatalf("seed card: %v", err)
	}

	// Redeem before the threshold is rejected.
	if _, err := repo.Redeem(ctx, "card-001", "cafe-001", "Cafe"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("early redeem: got %v, want ErrInvalidTransition", err)
	}

	for i := 0; i < 3; i++ {
		var err error
		card, err = repo.Stamp(ctx, "card-001", "cafe-001", "Cafe")
		if err != nil {
			t.Fatalf("stamp %d: %v", i+1, err)
		}
	}
	if card.Stamps != 3 {
		t.Errorf("stamps = %d, want 3", card.Stamps)
	}
	if card.LastStampAt == nil {
		t.Error("LastStampAt not set")
	}
	if !card.RewardDue() {
		t.Error("reward should be due at the threshold")
	}

	card, err := repo.Redeem(ctx, "card-001", "cafe-001", "Cafe")
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if card.Stamps != 0 {
		t.Errorf("stamps after redeem = %d, want 0", card.Stamps)
	}
	if card.RedeemedCount != 1 {
		t.Errorf("redeemed count = %d, want 1", card.RedeemedCount)
	}
}
