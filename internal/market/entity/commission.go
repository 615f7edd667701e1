package entity

import "time"

// Commission the platform's cut of an order or contract, one row per
// source document. The weekly commission report aggregates this table.
type Commission struct {
	ID         string    `json:"id" gorm:"primaryKey;size:32"`
	OrderID    *string   `json:"order_id" gorm:"size:32;index"`
	ContractID *string   `json:"contract_id" gorm:"size:32;index"`
	SupplierID string    `json:"supplier_id" gorm:"size:32;not null;index"`
	BaseAmount float64   `json:"base_amount" gorm:"type:decimal(15,2);not null"`
	Rate       float64   `json:"rate" gorm:"type:decimal(5,4);not null"`
	Amount     float64   `json:"amount" gorm:"type:decimal(15,2);not null"`
	Currency   string    `json:"currency" gorm:"size:10;default:SAR"`
	Status     string    `json:"status" gorm:"size:20;default:pending"` // pending/invoiced/settled
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Supplier *User `json:"supplier,omitempty" gorm:"foreignKey:SupplierID"`
}

func (Commission) TableName() string {
	return "commissions"
}

// Commission statuses
const (
	CommissionStatusPending  = "pending"
	CommissionStatusInvoiced = "invoiced"
	CommissionStatusSettled  = "settled"
)
