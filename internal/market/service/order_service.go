package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/beanlink/beanlink/internal/market/entity"
	"github.com/beanlink/beanlink/internal/market/repository"
	"github.com/beanlink/beanlink/internal/market/sse"
	"github.com/google/uuid"
)

// platform cut of delivered marketplace orders
const orderCommissionRate = 0.05

// OrderService marketplace order lifecycle
type OrderService struct {
	orderRepo      *repository.OrderRepository
	offeringRepo   *repository.OfferingRepository
	commissionRepo *repository.CommissionRepository
	logRepo        *repository.ActivityLogRepository
}

func NewOrderService(orderRepo *repository.OrderRepository, offeringRepo *repository.OfferingRepository, commissionRepo *repository.CommissionRepository, logRepo *repository.ActivityLogRepository) *OrderService {
	return &OrderService{
		orderRepo:      orderRepo,
		offeringRepo:   offeringRepo,
		commissionRepo: commissionRepo,
		logRepo:        logRepo,
	}
}

// ListOrders pages orders
func (s *OrderService) ListOrders(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Order, int64, error) {
	return s.orderRepo.FindAll(ctx, page, pageSize, filters)
}

// GetOrder loads one order
func (s *OrderService) GetOrder(ctx context.Context, id string) (*entity.Order, error) {
	return s.orderRepo.FindByID(ctx, id)
}

// Activity lists the order's audit trail, newest first
func (s *OrderService) Activity(ctx context.Context, id string, limit int) ([]entity.ActivityLog, error) {
	return s.logRepo.FindByEntity(ctx, "order", id, limit)
}

// CreateOrderRequest new order payload
type CreateOrderRequest struct {
	OfferingID       string     `json:"offering_id" binding:"required"`
	QuantityKg       float64    `json:"quantity_kg" binding:"required,gt=0"`
	ExpectedDelivery *time.Time `json:"expected_delivery"`
	Notes            string     `json:"notes"`
}

// CreateOrder places an order against a listed offering. The price is
// computed server-side from the stored offering, and stock is reserved.
func (s *OrderService) CreateOrder(ctx context.Context, buyerID string, req *CreateOrderRequest) (*entity.Order, error) {
	offering, err := s.offeringRepo.FindByID(ctx, req.OfferingID)
	if err != nil {
		return nil, err
	}

	if offering.Status != entity.OfferingStatusListed {
		return nil, fmt.Errorf("offering is %s, not listed", offering.Status)
	}
	if offering.SupplierID == buyerID {
		return nil, fmt.Errorf("cannot order own offering")
	}
	if req.QuantityKg < offering.MinOrderKg {
		return nil, fmt.Errorf("minimum order is %.2f kg", offering.MinOrderKg)
	}

	code, err := s.orderRepo.GenerateCode(ctx)
	if err != nil {
		return nil, fmt.Errorf("generate order code: %w", err)
	}

	if err := s.offeringRepo.ReserveQuantity(ctx, offering.ID, req.QuantityKg); err != nil {
		return nil, err
	}

	order := &entity.Order{
		ID:               uuid.New().String()[:32],
		OrderCode:        code,
		BuyerID:          buyerID,
		SupplierID:       offering.SupplierID,
		OfferingID:       offering.ID,
		QuantityKg:       req.QuantityKg,
		TotalPrice:       req.QuantityKg * offering.PricePerKg,
		Currency:         offering.Currency,
		Status:           entity.OrderStatusPending,
		PaymentStatus:    entity.PaymentStatusUnpaid,
		OrderDate:        time.Now(),
		ExpectedDelivery: req.ExpectedDelivery,
		Notes:            req.Notes,
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}

	sse.PublishOrderUpdate(order.ID, order.Status, "created")
	return order, nil
}

// UpdateStatusRequest status move payload
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason"`
}

// UpdateStatus moves the order through its lifecycle. All transition and
// payment guards run inside the repository transaction against stored
// state; client-claimed state is ignored.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, req *UpdateStatusRequest, operatorID, operatorName string) (*entity.Order, error) {
	order, err := s.orderRepo.UpdateStatusGuarded(ctx, id, req.Status, req.Reason, operatorID, operatorName)
	if err != nil {
		return nil, err
	}

	if order.Status == entity.OrderStatusDelivered {
		s.recordCommission(ctx, order)
	}

	sse.PublishOrderUpdate(order.ID, order.Status, "status_change")
	return order, nil
}

// PayOrderRequest payment payload
type PayOrderRequest struct {
	EscrowID string `json:"escrow_id"`
}

// PayOrder records payment into escrow for a confirmed order.
func (s *OrderService) PayOrder(ctx context.Context, id string, req *PayOrderRequest, operatorID, operatorName string) (*entity.Order, error) {
	order, err := s.orderRepo.MarkPaid(ctx, id, req.EscrowID, operatorID, operatorName)
	if err != nil {
		return nil, err
	}

	sse.PublishOrderUpdate(order.ID, order.Status, "payment")
	return order, nil
}

// recordCommission books the platform's cut once the order is delivered.
// A failure here must not fail the delivery itself.
func (s *OrderService) recordCommission(ctx context.Context, order *entity.Order) {
	orderID := order.ID
	commission := &entity.Commission{
		ID:         uuid.New().String()[:32],
		OrderID:    &orderID,
		SupplierID: order.SupplierID,
		BaseAmount: order.TotalPrice,
		Rate:       orderCommissionRate,
		Amount:     order.TotalPrice * orderCommissionRate,
		Currency:   order.Currency,
		Status:     entity.CommissionStatusPending,
	}
	if err := s.commissionRepo.Create(ctx, commission); err != nil {
		log.Printf("[order] record commission for %s: %v", order.OrderCode, err)
	}
}
