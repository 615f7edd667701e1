package entity

import "time"

// User marketplace account (farm, supplier, roaster, cafe, maintenance or admin)
type User struct {
	ID           string     `json:"id" gorm:"primaryKey;size:32"`
	Email        string     `json:"email" gorm:"size:128;uniqueIndex;not null"`
	PasswordHash string     `json:"-" gorm:"size:128;not null"`
	Name         string     `json:"name" gorm:"size:100;not null"`
	CompanyName  string     `json:"company_name" gorm:"size:200"`
	Phone        string     `json:"phone" gorm:"size:30"`
	Country      string     `json:"country" gorm:"size:50"`
	Region       string     `json:"region" gorm:"size:100"`
	Language     string     `json:"language" gorm:"size:10;default:en"` // en/ar
	Status       string     `json:"status" gorm:"size:16;not null;default:active"`
	LastLoginAt  *time.Time `json:"last_login_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	Roles []UserRole `json:"roles,omitempty" gorm:"foreignKey:UserID"`
}

func (User) TableName() string {
	return "users"
}

// ApprovedRoles returns the role codes whose row is approved.
func (u *User) ApprovedRoles() []string {
	var codes []string
	for _, r := range u.Roles {
		if r.Status == RoleStatusApproved {
			codes = append(codes, r.Role)
		}
	}
	return codes
}

// UserRole a {role, status} pair. A role grants access only while its
// status is approved; admins approve or reject requested roles.
type UserRole struct {
	ID         string     `json:"id" gorm:"primaryKey;size:32"`
	UserID     string     `json:"user_id" gorm:"size:32;not null;index:idx_user_roles_user"`
	Role       string     `json:"role" gorm:"size:20;not null;index:idx_user_roles_user"` // farm/supplier/roaster/cafe/maintenance/admin
	Status     string     `json:"status" gorm:"size:16;not null;default:pending"`         // pending/approved/rejected
	ApprovedBy *string    `json:"approved_by" gorm:"size:32"`
	ApprovedAt *time.Time `json:"approved_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (UserRole) TableName() string {
	return "user_roles"
}

// Roles
const (
	RoleFarm        = "farm"
	RoleSupplier    = "supplier"
	RoleRoaster     = "roaster"
	RoleCafe        = "cafe"
	RoleMaintenance = "maintenance"
	RoleAdmin       = "admin"
)

// Role statuses
const (
	RoleStatusPending  = "pending"
	RoleStatusApproved = "approved"
	RoleStatusRejected = "rejected"
)
