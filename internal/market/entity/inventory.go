package entity

import "time"

// InventoryItem stock tracked by a cafe or roaster; the weekly inventory
// report and the smart-check alerts read from this table.
type InventoryItem struct {
	ID            string  `json:"id" gorm:"primaryKey;size:32"`
	OwnerID       string  `json:"owner_id" gorm:"size:32;not null;index"`
	Name          string  `json:"name" gorm:"size:200;not null"`
	Category      string  `json:"category" gorm:"size:50"` // beans/milk/syrup/cups/equipment/other
	Quantity      float64 `json:"quantity" gorm:"type:decimal(12,2);default:0"`
	Unit          string  `json:"unit" gorm:"size:20;default:kg"`
	LowStockLevel float64 `json:"low_stock_level" gorm:"type:decimal(12,2);default:0"`

	LastRestockAt *time.Time `json:"last_restock_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	Notes         string     `json:"notes" gorm:"type:text"`

	Owner *User `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
}

func (InventoryItem) TableName() string {
	return "inventory_items"
}

// LowStock reports whether quantity has fallen to or below the threshold.
func (i *InventoryItem) LowStock() bool {
	return i.LowStockLevel > 0 && i.Quantity <= i.LowStockLevel
}
