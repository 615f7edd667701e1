package repository

import (
	"context"
	"testing"

	"github.com/beanlink/beanlink/internal/market/entity"
	"github.com/beanlink/beanlink/internal/market/testutil"
)

func TestAdjustGuardsNegativeQuantity(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewInventoryRepository(db)
	ctx := context.Background()

	item := &entity.InventoryItem{
		ID:            "inv-001",
		OwnerID:       "cafe-001",
		Name:          "Espresso Blend",
		Category:      "beans",
		Quantity:      5,
		Unit:          "kg",
		LowStockLevel: 2,
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("seed item: %v", err)
	}

	if _, err := repo.Adjust(ctx, "inv-001", -10, "spoilage", "cafe-001", "Cafe"); err == nil {
		t.Fatal("adjust below zero should fail")
	}

	item, err := repo.Adjust(ctx, "inv-001", -4, "weekend rush", "cafe-001", "Cafe")
	if err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if item.Quantity != 1 {
		t.Errorf("quantity = %v, want 1", item.Quantity)
	}
	if !item.LowStock() {
		t.Error("item should be low stock at quantity 1 with threshold 2")
	}

	item, err = repo.Adjust(ctx, "inv-001", 9, "restock", "cafe-001", "Cafe")
	if err != nil {
		t.Fatalf("restock: %v", err)
	}
	if item.LastRestockAt == nil {
		t.Error("LastRestockAt not set on a positive delta")
	}

	low, err := repo.FindLowStock(ctx, "cafe-001")
	if err != nil {
		t.Fatalf("find low stock: %v", err)
	}
	if len(low) != 0 {
		t.Errorf("got %d low-stock items after restock, want 0", len(low))
	}
}
