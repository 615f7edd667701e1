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

func seedOrder(t *testing.T, db *gorm.DB, id, status, paymentStatus string) *entity.Order {
	t.Helper()
	order := &entity.Order{
		ID:            id,
		OrderCode:     "ORD-2026-" + id,
		BuyerID:       "buyer-001",
		SupplierID:    "supplier-001",
		OfferingID:    "offering-001",
		QuantityKg:    10,
		TotalPrice:    400,
		Currency:      "SAR",
		Status:        status,
		PaymentStatus: paymentStatus,
		OrderDate:     time.Now(),
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}
	return order
}

func TestUpdateStatusGuardedRejectsIllegalTransition(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	seedOrder(t, db, "ord-illegal", entity.OrderStatusPending, entity.PaymentStatusUnpaid)

	_, err := repo.UpdateStatusGuarded(ctx, "ord-illegal", entity.OrderStatusDelivered, "", "op-1", "Operator")
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("pending -> delivered: got %v, want ErrInvalidTransition", err)
	}

	// Row must be untouched.
	order, err := repo.FindByID(ctx, "ord-illegal")
	if err != nil {
		t.Fatalf("reload order: %v", err)
	}
	if order.Status != entity.OrderStatusPending {
		t.Errorf("status changed to %q after rejected transition", order.Status)
	}
}

func TestShipRequiresPayment(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	seedOrder(t, db, "ord-unpaid", entity.OrderStatusPaid, entity.PaymentStatusUnpaid)

	_, err := repo.UpdateStatusGuarded(ctx, "ord-unpaid", entity.OrderStatusShipped, "", "op-1", "Operator")
	if !errors.Is(err, ErrPaymentRequired) {
		t.Fatalf("ship unpaid order: got %v, want ErrPaymentRequired", err)
	}

	seedOrder(t, db, "ord-paid", entity.OrderStatusPaid, entity.PaymentStatusPaid)

	order, err := repo.UpdateStatusGuarded(ctx, "ord-paid", entity.OrderStatusShipped, "", "op-1", "Operator")
	if err != nil {
		t.Fatalf("ship paid order: %v", err)
	}
	if order.Status != entity.OrderStatusShipped {
		t.Errorf("status = %q, want shipped", order.Status)
	}
	if order.ShippedAt == nil {
		t.Error("ShippedAt not set on ship")
	}
}

func TestDeliverReleasesEscrowAndLogs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewOrderRepository(db)
	logRepo := NewActivityLogRepository(db)
	ctx := context.Background()

	seedOrder(t, db, "ord-ship", entity.OrderStatusShipped, entity.PaymentStatusPaid)

	order, err := repo.UpdateStatusGuarded(ctx, "ord-ship", entity.OrderStatusDelivered, "", "op-1", "Operator")
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if order.Status != entity.OrderStatusDelivered {
		t.Errorf("status = %q, want delivered", order.Status)
	}
	if order.DeliveredAt == nil {
		t.Error("DeliveredAt not set on delivery")
	}
	if order.PaymentStatus != entity.PaymentStatusReleased {
		t.Errorf("payment status = %q, want released", order.PaymentStatus)
	}

	logs, err := logRepo.FindByEntity(ctx, "order", "ord-ship", 10)
	if err != nil {
		t.Fatalf("load activity logs: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("got %d activity logs, want 1", len(logs))
	}
	if logs[0].ToStatus != entity.OrderStatusDelivered {
		t.Errorf("log to_status = %q, want delivered", logs[0].ToStatus)
	}
}

func TestMarkPaid(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	seedOrder(t, db, "ord-pay", entity.OrderStatusConfirmed, entity.PaymentStatusUnpaid)

	order, err := repo.MarkPaid(ctx, "ord-pay", "escrow-abc", "buyer-001", "Buyer")
	if err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if order.Status != entity.OrderStatusPaid {
		t.Errorf("status = %q, want paid", order.Status)
	}
	if order.PaymentStatus != entity.PaymentStatusPaid {
		t.Errorf("payment status = %q, want paid", order.PaymentStatus)
	}
	if order.EscrowID == nil || *order.EscrowID != "escrow-abc" {
		t.Error("escrow id not recorded")
	}

	// Paying a pending order skips confirmation and must be rejected.
	seedOrder(t, db, "ord-early", entity.OrderStatusPending, entity.PaymentStatusUnpaid)
	if _, err := repo.MarkPaid(ctx, "ord-early", "escrow-x", "buyer-001", "Buyer"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("pay pending order: got %v, want ErrInvalidTransition", err)
	}
}

func TestGenerateOrderCodeSequence(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	year := time.Now().Format("2006")

	first, err := repo.GenerateCode(ctx)
	if err != nil {
		t.Fatalf("generate code: %v", err)
	}
	if first != "ORD-"+year+"-0001" {
		t.Errorf("first code = %q, want ORD-%s-0001", first, year)
	}

	order := seedOrder(t, db, "ord-seq", entity.OrderStatusPending, entity.PaymentStatusUnpaid)
	order.OrderCode = first
	if err := db.Save(order).Error; err != nil {
		t.Fatalf("save order: %v", err)
	}

	second, err := repo.GenerateCode(ctx)
	if err != nil {
		t.Fatalf("generate second code: %v", err)
	}
	if second != "ORD-"+year+"-0002" {
		t.Errorf("second code = %q, want ORD-%s-0002", second, year)
	}
}
