package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/motoqueiros/backend/internal/access"
	"github.com/motoqueiros/backend/internal/logger"
	"github.com/motoqueiros/backend/internal/models"
	"github.com/motoqueiros/backend/internal/store"
	"golang.org/x/crypto/bcrypt"
)

// LoginRequest represents the login request payload
type LoginRequest struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"senha" validate:"required"`
}

// AuthResponse represents the authentication response. Courier is only set
// for courier logins.
type AuthResponse struct {
	Token   string             `json:"token"`
	Courier *models.CourierRef `json:"motoqueiro,omitempty"`
}

// TokenRevoker remembers revoked token ids until they expire.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
}

type AuthService struct {
	admins     store.Admins
	couriers   store.Couriers
	tokens     *access.TokenManager
	revoker    TokenRevoker
	validator  *ValidationHelper
	log        *logger.Logger
	bcryptCost int
	now        func() time.Time
}

func NewAuthService(
	admins store.Admins,
	couriers store.Couriers,
	tokens *access.TokenManager,
	revoker TokenRevoker,
	v *ValidationHelper,
	log *logger.Logger,
	bcryptCost int,
) *AuthService {
	return &AuthService{
		admins:     admins,
		couriers:   couriers,
		tokens:     tokens,
		revoker:    revoker,
		validator:  v,
		log:        log,
		bcryptCost: bcryptCost,
		now:        time.Now,
	}
}

// LoginAdmin returns models.ErrUnauthorized for an unknown login or a wrong
// password.
func (s *AuthService) LoginAdmin(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if err := s.validator.Validate(&req); err != nil {
		return nil, err
	}

	admin, err := s.admins.AdminByLogin(ctx, strings.TrimSpace(req.Login))
	if errors.Is(err, models.ErrNotFound) {
		s.log.Warn("admin login failed: unknown login", "login", req.Login)
		return nil, fmt.Errorf("invalid credentials: %w", models.ErrUnauthorized)
	}
	if err != nil {
		return nil, asPersistence("load admin", err)
	}
	if err := checkPassword(admin.PasswordHash, req.Password); err != nil {
		s.log.Warn("admin login failed: wrong password", "admin_id", admin.ID)
		return nil, err
	}

	token, _, err := s.tokens.Issue(admin.ID, access.KindAdmin)
	if err != nil {
		return nil, err
	}
	s.log.Info("admin logged in", "admin_id", admin.ID)
	return &AuthResponse{Token: token}, nil
}

func (s *AuthService) LoginCourier(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if err := s.validator.Validate(&req); err != nil {
		return nil, err
	}

	courier, err := s.couriers.CourierByLogin(ctx, strings.TrimSpace(req.Login))
	if errors.Is(err, models.ErrNotFound) {
		s.log.Warn("courier login failed: unknown login", "login", req.Login)
		return nil, fmt.Errorf("invalid credentials: %w", models.ErrUnauthorized)
	}
	if err != nil {
		return nil, asPersistence("load courier", err)
	}
	if err := checkPassword(courier.PasswordHash, req.Password); err != nil {
		s.log.Warn("courier login failed: wrong password", "courier_id", courier.ID)
		return nil, err
	}

	token, _, err := s.tokens.Issue(courier.ID, access.KindCourier)
	if err != nil {
		return nil, err
	}
	s.log.Info("courier logged in", "courier_id", courier.ID)
	return &AuthResponse{
		Token:   token,
		Courier: &models.CourierRef{ID: courier.ID, Name: courier.Name},
	}, nil
}

// Logout revokes the caller's token for the rest of its lifetime.
func (s *AuthService) Logout(ctx context.Context, p access.Principal) error {
	ttl := p.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.revoker.Revoke(ctx, p.TokenID, ttl); err != nil {
		return asPersistence("revoke token", err)
	}
	s.log.Info("token revoked", "principal_id", p.ID, "kind", string(p.Kind))
	return nil
}

// EnsureAdmin creates the admin login when it does not exist yet. It reports
// whether a new admin was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, login, password string) (bool, error) {
	_, err := s.admins.AdminByLogin(ctx, login)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return false, asPersistence("load admin", err)
	}

	hash, err := hashPassword(password, s.bcryptCost)
	if err != nil {
		return false, err
	}
	admin := &models.Admin{Login: login, PasswordHash: hash}
	if err := s.admins.CreateAdmin(ctx, admin); err != nil {
		// Lost a race with another instance seeding the same login.
		if errors.Is(err, models.ErrConflict) {
			return false, nil
		}
		return false, asPersistence("create admin", err)
	}

	s.log.Info("seed admin created", "admin_id", admin.ID, "login", login)
	return true, nil
}

func checkPassword(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return fmt.Errorf("invalid credentials: %w", models.ErrUnauthorized)
	}
	return fmt.Errorf("compare password: %w", err)
}
