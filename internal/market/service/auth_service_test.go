package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/beanlink/beanlink/internal/config"
	"github.com/beanlink/beanlink/internal/market/entity"
	"github.com/beanlink/beanlink/internal/market/repository"
	"github.com/beanlink/beanlink/internal/market/testutil"
)

func newAuthTestService(t *testing.T) *AuthService {
	t.Helper()
	db := testutil.SetupTestDB(t)
	cfg := &config.Config{}
	cfg.JWT.Secret = testutil.JWTSecret
	cfg.JWT.AccessTokenExpire = 2 * time.Hour
	cfg.JWT.RefreshTokenExpire = 7 * 24 * time.Hour
	cfg.JWT.Issuer = "beanlink"
	return NewAuthService(repository.NewUserRepository(db), deadRedis(), cfg)
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newAuthTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, &RegisterRequest{
		Email:    "farm@test.com",
		Password: "s3cret-pass",
		Name:     "Jazan Farm",
		Role:     "farm",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if len(user.Roles) != 1 || user.Roles[0].Status != entity.RoleStatusPending {
		t.Fatalf("requested role should start pending, got %+v", user.Roles)
	}

	// Duplicate email rejected.
	if _, err := svc.Register(ctx, &RegisterRequest{
		Email:    "farm@test.com",
		Password: "other",
		Name:     "Other",
		Role:     "cafe",
	}); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("duplicate register: got %v, want ErrEmailTaken", err)
	}

	// Wrong password rejected.
	if _, _, err := svc.Login(ctx, &LoginRequest{Email: "farm@test.com", Password: "wrong"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: got %v, want ErrInvalidCredentials", err)
	}

	loggedIn, pair, err := svc.Login(ctx, &LoginRequest{Email: "farm@test.com", Password: "s3cret-pass"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Error("token pair incomplete")
	}
	if loggedIn.LastLoginAt == nil {
		t.Error("LastLoginAt not stamped")
	}
	// The pending role must not appear as an approved role.
	if len(loggedIn.ApprovedRoles()) != 0 {
		t.Errorf("approved roles = %v, want none before review", loggedIn.ApprovedRoles())
	}
}

func TestRoleReviewFlow(t *testing.T) {
	svc := newAuthTestService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, &RegisterRequest{
		Email:    "roaster@test.com",
		Password: "s3cret-pass",
		Name:     "Roastery",
		Role:     "roaster",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	// Requesting the same role again is rejected.
	if _, err := svc.RequestRole(ctx, user.ID, "roaster"); !errors.Is(err, ErrRoleExists) {
		t.Fatalf("duplicate role request: got %v, want ErrRoleExists", err)
	}

	ur, err := svc.ReviewRole(ctx, user.ID, "roaster", entity.RoleStatusApproved, "admin-001")
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if ur.Status != entity.RoleStatusApproved {
		t.Errorf("status = %q, want approved", ur.Status)
	}
	if ur.ApprovedBy == nil || *ur.ApprovedBy != "admin-001" {
		t.Error("reviewer not recorded")
	}

	reloaded, err := svc.GetCurrentUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("reload user: %v", err)
	}
	roles := reloaded.ApprovedRoles()
	if len(roles) != 1 || roles[0] != "roaster" {
		t.Errorf("approved roles = %v, want [roaster]", roles)
	}
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	svc := newAuthTestService(t)
	if _, err := svc.Register(context.Background(), &RegisterRequest{
		Email:    "x@test.com",
		Password: "s3cret-pass",
		Name:     "X",
		Role:     "wizard",
	}); err == nil {
		t.Fatal("unknown role should be rejected")
	}
}
