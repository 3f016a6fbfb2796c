package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgauth "github.com/phamiz/ecommerce-backend/pkg/auth"
	"github.com/phamiz/ecommerce-backend/pkg/auth/session"
	"github.com/phamiz/ecommerce-backend/pkg/config"
	"github.com/phamiz/ecommerce-backend/pkg/db/models"
	"github.com/phamiz/ecommerce-backend/pkg/enums"
	pkgerrors "github.com/phamiz/ecommerce-backend/pkg/errors"
	"github.com/phamiz/ecommerce-backend/pkg/security"
)

type stubUserRepo struct {
	user      *models.User
	lastLogin *time.Time
}

func (s *stubUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, gorm.ErrRecordNotFound
	}
	return s.user, nil
}

func (s *stubUserRepo) UpdateLastLogin(_ context.Context, _ uuid.UUID, at time.Time) error {
	s.lastLogin = &at
	return nil
}

type stubSessions struct {
	generated []string
	revoked   []string
	rotateErr error
}

func (s *stubSessions) Generate(_ context.Context, accessID string) (string, error) {
	s.generated = append(s.generated, accessID)
	return "refresh-token", nil
}

func (s *stubSessions) Rotate(_ context.Context, _, _ string) (string, string, error) {
	if s.rotateErr != nil {
		return "", "", s.rotateErr
	}
	return session.NewAccessID(), "rotated-refresh", nil
}

func (s *stubSessions) Revoke(_ context.Context, accessID string) error {
	s.revoked = append(s.revoked, accessID)
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret-test-secret-test-secret",
		Issuer:            "ecom-test",
		ExpirationMinutes: 15,
	}
}

func newLoginTestService(t *testing.T, password string) (Service, *stubUserRepo, *stubSessions) {
	t.Helper()

	hash, err := security.HashPassword(password, testPasswordConfig())
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	repo := &stubUserRepo{user: &models.User{
		ID:           uuid.New(),
		Email:        "ada@example.com",
		PasswordHash: hash,
		Role:         enums.UserRoleUser,
		IsActive:     true,
	}}
	sessions := &stubSessions{}

	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		SessionManager: sessions,
		JWTConfig:      testJWTConfig(),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, repo, sessions
}

func TestLoginSuccess(t *testing.T) {
	svc, repo, sessions := newLoginTestService(t, "correct horse battery")

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "Ada@Example.com",
		Password: "correct horse battery",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken != "refresh-token" {
		t.Fatalf("token pair missing: %+v", resp)
	}
	if repo.lastLogin == nil {
		t.Fatalf("last login not recorded")
	}
	if len(sessions.generated) != 1 {
		t.Fatalf("session not generated")
	}

	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	if err != nil {
		t.Fatalf("parse minted token: %v", err)
	}
	if claims.UserID != repo.user.ID || claims.Role != enums.UserRoleUser {
		t.Fatalf("claims = %+v", claims)
	}
	if claims.ID != sessions.generated[0] {
		t.Fatalf("jti %q does not match generated session %q", claims.ID, sessions.generated[0])
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _, _ := newLoginTestService(t, "correct horse battery")

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "ada@example.com",
		Password: "wrong",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLoginInactiveUser(t *testing.T) {
	svc, repo, _ := newLoginTestService(t, "correct horse battery")
	repo.user.IsActive = false

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "ada@example.com",
		Password: "correct horse battery",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	svc, _, _ := newLoginTestService(t, "correct horse battery")

	login, err := svc.Login(context.Background(), LoginRequest{
		Email:    "ada@example.com",
		Password: "correct horse battery",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	resp, err := svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken != "rotated-refresh" {
		t.Fatalf("rotated pair missing: %+v", resp)
	}
}

func TestRefreshInvalidToken(t *testing.T) {
	svc, _, sessions := newLoginTestService(t, "correct horse battery")
	sessions.rotateErr = session.ErrInvalidRefreshToken

	login, err := svc.Login(context.Background(), LoginRequest{
		Email:    "ada@example.com",
		Password: "correct horse battery",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	_, err = svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: "stolen",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}
