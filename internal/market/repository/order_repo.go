package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/beanlink/beanlink/internal/market/entity"
	"gorm.io/gorm"
)

// OrderRepository order storage
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// GenerateCode generates an order code like ORD-2025-0001
func (r *OrderRepository) GenerateCode(ctx context.Context) (string, error) {
	year := time.Now().Format("2006")
	prefix := fmt.Sprintf("ORD-%s-", year)

	var lastOrder entity.Order
	err := r.db.WithContext(ctx).
		Where("order_code LIKE ?", prefix+"%").
		Order("order_code DESC").
		First(&lastOrder).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return prefix + "0001", nil
		}
		return "", err
	}

	var seq int
	if _, err := fmt.Sscanf(lastOrder.OrderCode, prefix+"%04d", &seq); err != nil {
		return "", fmt.Errorf("parse order code %s: %w", lastOrder.OrderCode, err)
	}

	return fmt.Sprintf("%s%04d", prefix, seq+1), nil
}

// FindAll lists orders
func (r *OrderRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Order, int64, error) {
	var orders []entity.Order
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Order{})

	if buyerID := filters["buyer_id"]; buyerID != "" {
		query = query.Where("buyer_id = ?", buyerID)
	}
	if supplierID := filters["supplier_id"]; supplierID != "" {
		query = query.Where("supplier_id = ?", supplierID)
	}
	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if paymentStatus := filters["payment_status"]; paymentStatus != "" {
		query = query.Where("payment_status = ?", paymentStatus)
	}
	if search := filters["search"]; search != "" {
		query = query.Where("order_code ILIKE ?", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("Buyer").
		Preload("Supplier").
		Preload("Offering").
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&orders).Error

	return orders, total, err
}

// FindByID loads an order with relations
func (r *OrderRepository) FindByID(ctx context.Context, id string) (*entity.Order, error) {
	var order entity.Order
	err := r.db.WithContext(ctx).
		Preload("Buyer").
		Preload("Supplier").
		Preload("Offering").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// Create inserts an order
func (r *OrderRepository) Create(ctx context.Context, order *entity.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// Update saves an order
func (r *OrderRepository) Update(ctx context.Context, order *entity.Order) error {
	return r.db.WithContext(ctx).Save(order).Error
}

// UpdateStatusGuarded moves an order to the next status inside a single
// transaction. The transition table and the payment gates are checked
// against the row as stored, never against client-supplied state.
func (r *OrderRepository) UpdateStatusGuarded(ctx context.Context, id, next, reason, operatorID, operatorName string) (*entity.Order, error) {
	var order entity.Order

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		from := order.Status
		if !entity.OrderTransitionAllowed(from, next) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, next)
		}

		now := time.Now()
		switch next {
		case entity.OrderStatusShipped:
			if order.PaymentStatus != entity.PaymentStatusPaid {
				return fmt.Errorf("%w: order %s is %s", ErrPaymentRequired, order.OrderCode, order.PaymentStatus)
			}
			order.ShippedAt = &now
		case entity.OrderStatusDelivered:
			order.DeliveredAt = &now
			// delivery releases the escrow hold
			if order.PaymentStatus == entity.PaymentStatusPaid {
				order.PaymentStatus = entity.PaymentStatusReleased
			}
		case entity.OrderStatusCancelled:
			order.CancelReason = reason
		}

		order.Status = next
		if err := tx.Save(&order).Error; err != nil {
			return err
		}

		log := &entity.ActivityLog{
			ID:           newID(),
			EntityType:   "order",
			EntityID:     order.ID,
			EntityCode:   order.OrderCode,
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
	return &order, nil
}

// MarkPaid records a payment and opens the escrow hold
func (r *OrderRepository) MarkPaid(ctx context.Context, id, escrowID, operatorID, operatorName string) (*entity.Order, error) {
	var order entity.Order

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		from := order.Status
		if !entity.OrderTransitionAllowed(from, entity.OrderStatusPaid) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, entity.OrderStatusPaid)
		}

		order.Status = entity.OrderStatusPaid
		order.PaymentStatus = entity.PaymentStatusPaid
		if escrowID != "" {
			order.EscrowID = &escrowID
		}
		if err := tx.Save(&order).Error; err != nil {
			return err
		}

		log := &entity.ActivityLog{
			ID:           newID(),
			EntityType:   "order",
			EntityID:     order.ID,
			EntityCode:   order.OrderCode,
			Action:       "payment",
			FromStatus:   from,
			ToStatus:     entity.OrderStatusPaid,
			OperatorID:   operatorID,
			OperatorName: operatorName,
		}
		return tx.Create(log).Error
	})

	if err != nil {
		return nil, err
	}
	return &order, nil
}
