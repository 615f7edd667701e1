package entity

import "time"

// LoyaltyCard a cafe-issued stamp card for a walk-in customer
type LoyaltyCard struct {
	ID              string     `json:"id" gorm:"primaryKey;size:32"`
	CafeID          string     `json:"cafe_id" gorm:"size:32;not null;index"`
	CustomerName    string     `json:"customer_name" gorm:"size:100;not null"`
	CustomerPhone   string     `json:"customer_phone" gorm:"size:30;index"`
	Stamps          int        `json:"stamps" gorm:"default:0"`
	RewardThreshold int        `json:"reward_threshold" gorm:"default:10"`
	RedeemedCount   int        `json:"redeemed_count" gorm:"default:0"`
	LastStampAt     *time.Time `json:"last_stamp_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	Cafe *User `json:"cafe,omitempty" gorm:"foreignKey:CafeID"`
}

func (LoyaltyCard) TableName() string {
	return "loyalty_cards"
}

// RewardDue reports whether the card has collected enough stamps to redeem.
func (lc *LoyaltyCard) RewardDue() bool {
	return lc.RewardThreshold > 0 && lc.Stamps >= lc.RewardThreshold
}
