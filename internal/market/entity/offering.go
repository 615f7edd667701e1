package entity

import "time"

// CoffeeOffering a green or roasted coffee lot listed by a supplier or farm
type CoffeeOffering struct {
	ID           string   `json:"id" gorm:"primaryKey;size:32"`
	SupplierID   string   `json:"supplier_id" gorm:"size:32;not null;index"`
	Name         string   `json:"name" gorm:"size:200;not null"`
	Origin       string   `json:"origin" gorm:"size:100"`     // e.g. Jazan, Yirgacheffe
	Variety      string   `json:"variety" gorm:"size:100"`    // e.g. Typica, SL28
	Process      string   `json:"process" gorm:"size:50"`     // washed/natural/honey
	RoastLevel   string   `json:"roast_level" gorm:"size:20"` // green/light/medium/dark
	Altitude     string   `json:"altitude" gorm:"size:50"`
	CuppingScore *float64 `json:"cupping_score" gorm:"type:decimal(4,1)"`

	PricePerKg float64 `json:"price_per_kg" gorm:"type:decimal(12,2);not null"`
	Currency   string  `json:"currency" gorm:"size:10;default:SAR"`
	QuantityKg float64 `json:"quantity_kg" gorm:"type:decimal(12,2);not null"`
	MinOrderKg float64 `json:"min_order_kg" gorm:"type:decimal(12,2);default:0"`

	Status      string    `json:"status" gorm:"size:20;default:draft"` // draft/listed/paused/sold_out
	Description string    `json:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Supplier *User `json:"supplier,omitempty" gorm:"foreignKey:SupplierID"`
}

func (CoffeeOffering) TableName() string {
	return "coffee_offerings"
}

// Offering statuses
const (
	OfferingStatusDraft   = "draft"
	OfferingStatusListed  = "listed"
	OfferingStatusPaused  = "paused"
	OfferingStatusSoldOut = "sold_out"
)
