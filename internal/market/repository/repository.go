package repository

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// newID 32-char hex id, same shape as the service layer uses
func newID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:32]
}

var (
	ErrNotFound = errors.New("record not found")

	// Guard errors returned by transactional status updates.
	ErrInvalidTransition = errors.New("status transition not allowed")
	ErrPaymentRequired   = errors.New("order is not paid")
	ErrSignatureNotDue   = errors.New("contract is not awaiting this party's signature")
)

// Repositories marketplace repository set
type Repositories struct {
	User        *UserRepository
	Offering    *OfferingRepository
	Order       *OrderRepository
	Contract    *ContractRepository
	Loyalty     *LoyaltyRepository
	Cert        *CertificationRepository
	Inventory   *InventoryRepository
	Commission  *CommissionRepository
	Preference  *PreferenceRepository
	SentReport  *SentReportRepository
	ActivityLog *ActivityLogRepository
}

// NewRepositories creates the marketplace repository set
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:        NewUserRepository(db),
		Offering:    NewOfferingRepository(db),
		Order:       NewOrderRepository(db),
		Contract:    NewContractRepository(db),
		Loyalty:     NewLoyaltyRepository(db),
		Cert:        NewCertificationRepository(db),
		Inventory:   NewInventoryRepository(db),
		Commission:  NewCommissionRepository(db),
		Preference:  NewPreferenceRepository(db),
		SentReport:  NewSentReportRepository(db),
		ActivityLog: NewActivityLogRepository(db),
	}
}
