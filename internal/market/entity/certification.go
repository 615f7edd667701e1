package entity

import "time"

// Certification a quality/organic/SCA certification attached to a user
type Certification struct {
	ID          string     `json:"id" gorm:"primaryKey;size:32"`
	UserID      string     `json:"user_id" gorm:"size:32;not null;index"`
	CertType    string     `json:"cert_type" gorm:"size:50;not null"` // organic/specialty/fair_trade/sca_roaster/barista
	Issuer      string     `json:"issuer" gorm:"size:200"`
	DocumentURL string     `json:"document_url" gorm:"size:500"`
	IssuedAt    *time.Time `json:"issued_at"`
	ExpiresAt   *time.Time `json:"expires_at"`
	Status      string     `json:"status" gorm:"size:20;default:pending"` // pending/verified/expired/revoked
	VerifiedBy  *string    `json:"verified_by" gorm:"size:32"`
	VerifiedAt  *time.Time `json:"verified_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func (Certification) TableName() string {
	return "certifications"
}

// Certification statuses
const (
	CertStatusPending  = "pending"
	CertStatusVerified = "verified"
	CertStatusExpired  = "expired"
	CertStatusRevoked  = "revoked"
)

// Expired reports whether the certification's expiry has passed.
func (c *Certification) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && c.ExpiresAt.Before(now)
}
