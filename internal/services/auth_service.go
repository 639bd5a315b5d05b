package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/yukikurage/taskhub-api/internal/auth"
	"github.com/yukikurage/taskhub-api/internal/constants"
	"github.com/yukikurage/taskhub-api/internal/metrics"
	"github.com/yukikurage/taskhub-api/internal/models"
	"github.com/yukikurage/taskhub-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrAccountDisabled      = errors.New("account is disabled")
	ErrCredentialsRequired  = errors.New("username and password are required")
	ErrPasswordTooShort     = errors.New("password too short")
	ErrWrongPassword        = errors.New("current password is incorrect")
	ErrUserNotFound         = errors.New("user not found")
	ErrFailedToHashPassword = errors.New("failed to hash password")
)

// AuthService handles authentication related business logic.
type AuthService struct {
	userRepo repository.UserRepository
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository) *AuthService {
	return &AuthService{
		userRepo: userRepo,
	}
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Username string
	Password string
}

// Login verifies credentials and returns the authenticated user. Digests
// in an older format are upgraded in place.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*models.User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password == "" {
		return nil, ErrCredentialsRequired
	}

	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			auth.VerifyDummy(input.Password)
			metrics.Logins.WithLabelValues("invalid").Inc()
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !auth.VerifyPassword(input.Password, user.PasswordHash) {
		metrics.Logins.WithLabelValues("invalid").Inc()
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		metrics.Logins.WithLabelValues("disabled").Inc()
		return nil, ErrAccountDisabled
	}

	if auth.NeedsRehash(user.PasswordHash) {
		s.upgradeDigest(ctx, user, input.Password)
	}

	metrics.Logins.WithLabelValues("success").Inc()
	return user, nil
}

func (s *AuthService) upgradeDigest(ctx context.Context, user *models.User, password string) {
	digest, err := auth.HashPassword(password)
	if err != nil {
		log.Printf("Failed to rehash password for user %d: %v", user.ID, err)
		return
	}
	if err := s.userRepo.Update(ctx, user.ID, map[string]interface{}{"password_hash": digest}, false); err != nil {
		log.Printf("Failed to store rehashed password for user %d: %v", user.ID, err)
		return
	}
	user.PasswordHash = digest
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(ctx context.Context, id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// ChangePassword replaces the user's password after checking the current one.
func (s *AuthService) ChangePassword(ctx context.Context, userID uint64, current, next string) error {
	if len(next) < constants.MinPasswordLength {
		return ErrPasswordTooShort
	}

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	if !auth.VerifyPassword(current, user.PasswordHash) {
		return ErrWrongPassword
	}

	digest, err := auth.HashPassword(next)
	if err != nil {
		return ErrFailedToHashPassword
	}

	if err := s.userRepo.Update(ctx, userID, map[string]interface{}{"password_hash": digest}, false); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}
