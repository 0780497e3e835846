package services

import (
	"context"
	"errors"

	"github.com/scoreplay/promo-backend/internal/apperrors"
	"github.com/scoreplay/promo-backend/internal/config"
	"github.com/scoreplay/promo-backend/internal/models"
	"github.com/scoreplay/promo-backend/internal/repositories"
	"github.com/scoreplay/promo-backend/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/exp/slog"
)

// Compile-time check to ensure AuthServiceImpl implements AuthService
var _ AuthService = (*AuthServiceImpl)(nil)

// ErrInvalidCredentials is returned for any failed login, regardless of
// whether the email or the password was wrong.
var ErrInvalidCredentials = errors.New("invalid email or password")

// AuthServiceImpl authenticates branch and back-office operators.
type AuthServiceImpl struct {
	adminRepo repositories.AdminUserRepository
	cfg       *config.Config
}

// NewAuthService creates a new AuthServiceImpl
func NewAuthService(adminRepo repositories.AdminUserRepository, cfg *config.Config) *AuthServiceImpl {
	return &AuthServiceImpl{
		adminRepo: adminRepo,
		cfg:       cfg,
	}
}

// Login verifies the operator's credentials and issues a bearer token.
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	user, err := s.adminRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, apperrors.Internal("failed to load operator", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := utils.GenerateJWT(user.ID.Hex(), user.Email, user.Role, s.cfg)
	if err != nil {
		return nil, apperrors.Internal("failed to issue token", err)
	}

	slog.Info("operator logged in", "email", user.Email, "role", user.Role)
	return &models.LoginResponse{Token: token, ExpiresAt: expiresAt}, nil
}

// Bootstrap creates the configured admin account when the user collection
// is empty. It is a no-op once any operator exists or when no bootstrap
// email is configured.
func (s *AuthServiceImpl) Bootstrap(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	count, err := s.adminRepo.Count(ctx)
	if err != nil {
		return apperrors.Internal("failed to count operators", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.Internal("failed to hash bootstrap password", err)
	}

	user := &models.AdminUser{
		Email:        email,
		PasswordHash: string(hash),
		Role:         "admin",
	}
	if err := s.adminRepo.Create(ctx, user); err != nil {
		// Another instance may have bootstrapped first.
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil
		}
		return apperrors.Internal("failed to create bootstrap admin", err)
	}

	slog.Info("bootstrap admin created", "email", email)
	return nil
}
