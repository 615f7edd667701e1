package entity

import "time"

// Order a marketplace purchase of one offering
type Order struct {
	ID         string  `json:"id" gorm:"primaryKey;size:32"`
	OrderCode  string  `json:"order_code" gorm:"size:32;uniqueIndex;not null"`
	BuyerID    string  `json:"buyer_id" gorm:"size:32;not null;index"`
	SupplierID string  `json:"supplier_id" gorm:"size:32;not null;index"`
	OfferingID string  `json:"offering_id" gorm:"size:32;not null;index"`
	QuantityKg float64 `json:"quantity_kg" gorm:"type:decimal(12,2);not null"`
	TotalPrice float64 `json:"total_price" gorm:"type:decimal(15,2);not null"`
	Currency   string  `json:"currency" gorm:"size:10;default:SAR"`

	Status        string  `json:"status" gorm:"size:20;default:pending"`        // pending/confirmed/paid/shipped/delivered/cancelled
	PaymentStatus string  `json:"payment_status" gorm:"size:20;default:unpaid"` // unpaid/paid/released
	EscrowID      *string `json:"escrow_id" gorm:"size:64"`

	OrderDate        time.Time  `json:"order_date"`
	ExpectedDelivery *time.Time `json:"expected_delivery"`
	ShippedAt        *time.Time `json:"shipped_at"`
	DeliveredAt      *time.Time `json:"delivered_at"`
	CancelReason     string     `json:"cancel_reason" gorm:"size:500"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Notes     string    `json:"notes" gorm:"type:text"`

	Buyer    *User           `json:"buyer,omitempty" gorm:"foreignKey:BuyerID"`
	Supplier *User           `json:"supplier,omitempty" gorm:"foreignKey:SupplierID"`
	Offering *CoffeeOffering `json:"offering,omitempty" gorm:"foreignKey:OfferingID"`
}

func (Order) TableName() string {
	return "orders"
}

// Order statuses
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusPaid      = "paid"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// Payment statuses
const (
	PaymentStatusUnpaid   = "unpaid"
	PaymentStatusPaid     = "paid"
	PaymentStatusReleased = "released"
)

// ValidOrderTransitions legal order status moves. Cancelled is reachable
// from every non-terminal state; delivered and cancelled are terminal.
var ValidOrderTransitions = map[string][]string{
	OrderStatusPending:   {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed: {OrderStatusPaid, OrderStatusCancelled},
	OrderStatusPaid:      {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:   {OrderStatusDelivered, OrderStatusCancelled},
}

// OrderTransitionAllowed reports whether current -> next is in the table.
func OrderTransitionAllowed(current, next string) bool {
	for _, s := range ValidOrderTransitions[current] {
		if s == next {
			return true
		}
	}
	return false
}
