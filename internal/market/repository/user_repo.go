package repository

import (
	"context"
	"errors"

	"github.com/beanlink/beanlink/internal/market/entity"
	"gorm.io/gorm"
)

// UserRepository account and role storage
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindAll lists users with optional role/status filters
func (r *UserRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.User, int64, error) {
	var items []entity.User
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.User{})

	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if role := filters["role"]; role != "" {
		query = query.Where("id IN (?)",
			r.db.Model(&entity.UserRole{}).Select("user_id").Where("role = ?", role))
	}
	if search := filters["search"]; search != "" {
		query = query.Where("name ILIKE ? OR email ILIKE ? OR company_name ILIKE ?",
			"%"+search+"%", "%"+search+"%", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("Roles").
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}

// FindByID loads a user with roles
func (r *UserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).
		Preload("Roles").
		Where("id = ?", id).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindByEmail loads a user by email with roles
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).
		Preload("Roles").
		Where("email = ?", email).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// Create inserts a user and its initial role rows
func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// Update saves a user
func (r *UserRepository) Update(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// FindRole loads a single user_roles row
func (r *UserRepository) FindRole(ctx context.Context, userID, role string) (*entity.UserRole, error) {
	var ur entity.UserRole
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND role = ?", userID, role).
		First(&ur).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &ur, nil
}

// CreateRole inserts a user_roles row
func (r *UserRepository) CreateRole(ctx context.Context, ur *entity.UserRole) error {
	return r.db.WithContext(ctx).Create(ur).Error
}

// UpdateRole saves a user_roles row
func (r *UserRepository) UpdateRole(ctx context.Context, ur *entity.UserRole) error {
	return r.db.WithContext(ctx).Save(ur).Error
}

// FindPendingRoles lists role requests awaiting admin review
func (r *UserRepository) FindPendingRoles(ctx context.Context, page, pageSize int) ([]entity.UserRole, int64, error) {
	var items []entity.UserRole
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.UserRole{}).Where("status = ?", entity.RoleStatusPending)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at ASC").Offset(offset).Limit(pageSize).Find(&items).Error
	return items, total, err
}
