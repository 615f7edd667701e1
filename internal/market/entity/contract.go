package entity

import "time"

// DirectSupplyContract a recurring-supply agreement signed by seller,
// buyer and platform, with a platform commission collected up front.
type DirectSupplyContract struct {
	ID           string     `json:"id" gorm:"primaryKey;size:32"`
	ContractCode string     `json:"contract_code" gorm:"size:32;uniqueIndex;not null"`
	BuyerID      string     `json:"buyer_id" gorm:"size:32;not null;index"`
	SellerID     string     `json:"seller_id" gorm:"size:32;not null;index"`
	Items        JSONBArray `json:"items" gorm:"type:jsonb"` // [{name, quantity_kg, unit_price}]

	TotalAmount              float64 `json:"total_amount" gorm:"type:decimal(15,2);not null"`
	PlatformCommissionRate   float64 `json:"platform_commission_rate" gorm:"type:decimal(5,4);not null"`
	PlatformCommissionAmount float64 `json:"platform_commission_amount" gorm:"type:decimal(15,2);not null"`
	Currency                 string  `json:"currency" gorm:"size:10;default:SAR"`

	// Signatures are independent nullable fields set by three different
	// actors. fully_signed status is always recomputed from these fields
	// inside the signing transaction, never taken from the caller.
	SellerSignature   *string    `json:"seller_signature" gorm:"size:200"`
	SellerSignedAt    *time.Time `json:"seller_signed_at"`
	BuyerSignature    *string    `json:"buyer_signature" gorm:"size:200"`
	BuyerSignedAt     *time.Time `json:"buyer_signed_at"`
	PlatformSignature *string    `json:"platform_signature" gorm:"size:200"`
	PlatformSignedAt  *time.Time `json:"platform_signed_at"`

	Status        string     `json:"status" gorm:"size:30;default:pending_commission"`
	DisputeReason string     `json:"dispute_reason" gorm:"size:500"`
	CompletedAt   *time.Time `json:"completed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Notes     string    `json:"notes" gorm:"type:text"`

	Buyer  *User `json:"buyer,omitempty" gorm:"foreignKey:BuyerID"`
	Seller *User `json:"seller,omitempty" gorm:"foreignKey:SellerID"`
}

func (DirectSupplyContract) TableName() string {
	return "direct_supply_contracts"
}

// FullySigned is the single derived signature predicate: all three
// signature fields non-nil, independent of the stored status string.
func (c *DirectSupplyContract) FullySigned() bool {
	return c.SellerSignature != nil && c.BuyerSignature != nil && c.PlatformSignature != nil
}

// Contract statuses
const (
	ContractStatusPendingCommission     = "pending_commission"
	ContractStatusCommissionPaid        = "commission_paid"
	ContractStatusAwaitingSellerSign    = "awaiting_seller_sign"
	ContractStatusAwaitingBuyerSign     = "awaiting_buyer_sign"
	ContractStatusAwaitingPlatformSign  = "awaiting_platform_sign"
	ContractStatusFullySigned           = "fully_signed"
	ContractStatusAwaitingSellerPayment = "awaiting_seller_payment"
	ContractStatusCompleted             = "completed"
	ContractStatusCancelled             = "cancelled"
	ContractStatusDisputed              = "disputed"
)

// Signing parties
const (
	SignPartySeller   = "seller"
	SignPartyBuyer    = "buyer"
	SignPartyPlatform = "platform"
)

// ValidContractTransitions legal contract status moves. Cancelled and
// disputed are absorbing and reachable from any non-terminal state.
var ValidContractTransitions = map[string][]string{
	ContractStatusPendingCommission:     {ContractStatusCommissionPaid, ContractStatusCancelled, ContractStatusDisputed},
	ContractStatusCommissionPaid:        {ContractStatusAwaitingSellerSign, ContractStatusCancelled, ContractStatusDisputed},
	ContractStatusAwaitingSellerSign:    {ContractStatusAwaitingBuyerSign, ContractStatusCancelled, ContractStatusDisputed},
	ContractStatusAwaitingBuyerSign:     {ContractStatusAwaitingPlatformSign, ContractStatusCancelled, ContractStatusDisputed},
	ContractStatusAwaitingPlatformSign:  {ContractStatusFullySigned, ContractStatusCancelled, ContractStatusDisputed},
	ContractStatusFullySigned:           {ContractStatusAwaitingSellerPayment, ContractStatusCancelled, ContractStatusDisputed},
	ContractStatusAwaitingSellerPayment: {ContractStatusCompleted, ContractStatusCancelled, ContractStatusDisputed},
}

// ContractTransitionAllowed reports whether current -> next is in the table.
func ContractTransitionAllowed(current, next string) bool {
	for _, s := range ValidContractTransitions[current] {
		if s == next {
			return true
		}
	}
	return false
}

// signingStatus maps each party to the status in which its signature is due.
var signingStatus = map[string]string{
	SignPartySeller:   ContractStatusAwaitingSellerSign,
	SignPartyBuyer:    ContractStatusAwaitingBuyerSign,
	SignPartyPlatform: ContractStatusAwaitingPlatformSign,
}

// SigningDue reports whether the given party is the one expected to sign
// in the contract's current status.
func (c *DirectSupplyContract) SigningDue(party string) bool {
	return signingStatus[party] == c.Status
}
