package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/beanlink/beanlink/internal/config"
	"github.com/beanlink/beanlink/internal/market/entity"
	"github.com/beanlink/beanlink/internal/market/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrRoleExists         = errors.New("role already requested")
)

// AuthService accounts, tokens and role approval
type AuthService struct {
	userRepo *repository.UserRepository
	rdb      *redis.Client
	cfg      *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, rdb *redis.Client, cfg *config.Config) *AuthService {
	return &AuthService{userRepo: userRepo, rdb: rdb, cfg: cfg}
}

// TokenPair access + refresh token
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// RegisterRequest new account payload
type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	Name        string `json:"name" binding:"required"`
	CompanyName string `json:"company_name"`
	Phone       string `json:"phone"`
	Country     string `json:"country"`
	Region      string `json:"region"`
	Language    string `json:"language"`
	Role        string `json:"role" binding:"required"` // first role, created pending
}

// Register creates an account with one pending role request.
func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*entity.User, error) {
	if _, err := s.userRepo.FindByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	if !validRole(req.Role) {
		return nil, fmt.Errorf("unknown role: %s", req.Role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	language := req.Language
	if language == "" {
		language = "en"
	}

	user := &entity.User{
		ID:           uuid.New().String()[:32],
		Email:        req.Email,
		PasswordHash: string(hash),
		Name:         req.Name,
		CompanyName:  req.CompanyName,
		Phone:        req.Phone,
		Country:      req.Country,
		Region:       req.Region,
		Language:     language,
		Status:       "active",
		Roles: []entity.UserRole{{
			ID:     uuid.New().String()[:32],
			Role:   req.Role,
			Status: entity.RoleStatusPending,
		}},
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// LoginRequest credentials payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login checks credentials and issues a token pair.
func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*entity.User, *TokenPair, error) {
	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	if user.Status != "active" {
		return nil, nil, fmt.Errorf("account is %s", user.Status)
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, nil, err
	}

	pair, err := s.generateTokenPair(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// generateTokenPair issues an access token carrying approved roles and a
// refresh token tracked in redis by jti.
func (s *AuthService) generateTokenPair(ctx context.Context, user *entity.User) (*TokenPair, error) {
	now := time.Now()
	jti := uuid.New().String()

	accessClaims := jwt.MapClaims{
		"sub":   user.ID,
		"uid":   user.ID,
		"name":  user.Name,
		"email": user.Email,
		"roles": user.ApprovedRoles(),
		"iss":   s.cfg.JWT.Issuer,
		"iat":   now.Unix(),
		"exp":   now.Add(s.cfg.JWT.AccessTokenExpire).Unix(),
		"jti":   jti,
	}

	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims)
	accessTokenString, err := accessToken.SignedString([]byte(s.cfg.JWT.Secret))
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refreshJti := uuid.New().String()
	refreshClaims := jwt.MapClaims{
		"sub":  user.ID,
		"type": "refresh",
		"iss":  s.cfg.JWT.Issuer,
		"iat":  now.Unix(),
		"exp":  now.Add(s.cfg.JWT.RefreshTokenExpire).Unix(),
		"jti":  refreshJti,
	}

	refreshToken := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims)
	refreshTokenString, err := refreshToken.SignedString([]byte(s.cfg.JWT.Secret))
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	s.rdb.Set(ctx, "token:refresh:"+refreshJti, user.ID, s.cfg.JWT.RefreshTokenExpire)

	return &TokenPair{
		AccessToken:  accessTokenString,
		RefreshToken: refreshTokenString,
		ExpiresIn:    int64(s.cfg.JWT.AccessTokenExpire.Seconds()),
	}, nil
}

// RefreshToken rotates a refresh token for a new pair.
func (s *AuthService) RefreshToken(ctx context.Context, refreshTokenString string) (*TokenPair, error) {
	token, err := jwt.Parse(refreshTokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWT.Secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}
	if claims["type"] != "refresh" {
		return nil, fmt.Errorf("invalid token type")
	}

	jti, _ := claims["jti"].(string)
	userID, err := s.rdb.Get(ctx, "token:refresh:"+jti).Result()
	if err != nil {
		return nil, fmt.Errorf("refresh token expired or invalid")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("user not found")
	}

	s.rdb.Del(ctx, "token:refresh:"+jti)
	return s.generateTokenPair(ctx, user)
}

// GetCurrentUser loads the caller's profile with roles.
func (s *AuthService) GetCurrentUser(ctx context.Context, userID string) (*entity.User, error) {
	return s.userRepo.FindByID(ctx, userID)
}

// UpdateProfileRequest profile update payload
type UpdateProfileRequest struct {
	Name        *string `json:"name"`
	CompanyName *string `json:"company_name"`
	Phone       *string `json:"phone"`
	Country     *string `json:"country"`
	Region      *string `json:"region"`
	Language    *string `json:"language"`
}

// UpdateProfile patches the caller's own profile.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, req *UpdateProfileRequest) (*entity.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.CompanyName != nil {
		user.CompanyName = *req.CompanyName
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Country != nil {
		user.Country = *req.Country
	}
	if req.Region != nil {
		user.Region = *req.Region
	}
	if req.Language != nil {
		if *req.Language != "en" && *req.Language != "ar" {
			return nil, fmt.Errorf("unsupported language: %s", *req.Language)
		}
		user.Language = *req.Language
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// RequestRole files a pending role request for the caller.
func (s *AuthService) RequestRole(ctx context.Context, userID, role string) (*entity.UserRole, error) {
	if !validRole(role) {
		return nil, fmt.Errorf("unknown role: %s", role)
	}

	if _, err := s.userRepo.FindRole(ctx, userID, role); err == nil {
		return nil, ErrRoleExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	ur := &entity.UserRole{
		ID:     uuid.New().String()[:32],
		UserID: userID,
		Role:   role,
		Status: entity.RoleStatusPending,
	}
	if err := s.userRepo.CreateRole(ctx, ur); err != nil {
		return nil, err
	}
	return ur, nil
}

// ReviewRole approves or rejects a pending role request (admin only).
func (s *AuthService) ReviewRole(ctx context.Context, userID, role, decision, reviewerID string) (*entity.UserRole, error) {
	ur, err := s.userRepo.FindRole(ctx, userID, role)
	if err != nil {
		return nil, err
	}

	switch decision {
	case entity.RoleStatusApproved, entity.RoleStatusRejected:
	default:
		return nil, fmt.Errorf("invalid decision: %s", decision)
	}

	now := time.Now()
	ur.Status = decision
	ur.ApprovedBy = &reviewerID
	ur.ApprovedAt = &now
	if err := s.userRepo.UpdateRole(ctx, ur); err != nil {
		return nil, err
	}
	return ur, nil
}

// ListPendingRoles pages pending role requests for the admin console.
func (s *AuthService) ListPendingRoles(ctx context.Context, page, pageSize int) ([]entity.UserRole, int64, error) {
	return s.userRepo.FindPendingRoles(ctx, page, pageSize)
}

// ListUsers pages accounts for the admin console.
func (s *AuthService) ListUsers(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.User, int64, error) {
	return s.userRepo.FindAll(ctx, page, pageSize, filters)
}

func validRole(role string) bool {
	switch role {
	case entity.RoleFarm, entity.RoleSupplier, entity.RoleRoaster,
		entity.RoleCafe, entity.RoleMaintenance, entity.RoleAdmin:
		return true
	}
	return false
}
