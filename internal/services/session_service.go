package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yukikurage/taskhub-api/internal/constants"
	"github.com/yukikurage/taskhub-api/internal/models"
	"github.com/yukikurage/taskhub-api/internal/repository"
	"github.com/yukikurage/taskhub-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
)

// SessionService issues and validates opaque session tokens.
type SessionService struct {
	repo repository.SessionRepository
	ttl  time.Duration
	now  func() time.Time
}

// NewSessionService creates a new SessionService. A non-positive ttl
// falls back to the default of seven days.
func NewSessionService(repo repository.SessionRepository, ttl time.Duration) *SessionService {
	if ttl <= 0 {
		ttl = constants.DefaultSessionTTL
	}
	return &SessionService{
		repo: repo,
		ttl:  ttl,
		now:  time.Now,
	}
}

// TTL returns the lifetime of newly created sessions.
func (s *SessionService) TTL() time.Duration {
	return s.ttl
}

// Create starts a session for userID and returns the token to hand to the
// client. Only its hash is stored.
func (s *SessionService) Create(ctx context.Context, userID uint64) (string, *models.Session, error) {
	token, err := utils.GenerateSessionToken()
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	session := &models.Session{
		TokenHash: utils.HashToken(token),
		UserID:    userID,
		ExpiresAt: s.now().Add(s.ttl),
	}
	if err := s.repo.Create(ctx, session); err != nil {
		return "", nil, fmt.Errorf("failed to create session: %w", err)
	}

	return token, session, nil
}

// Resolve returns the active user owning token. Expired sessions are
// deleted on sight.
func (s *SessionService) Resolve(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}

	session, err := s.repo.FindByTokenHash(ctx, utils.HashToken(token))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to find session: %w", err)
	}

	if session.Expired(s.now()) {
		if err := s.repo.DeleteByID(ctx, session.ID); err != nil {
			return nil, fmt.Errorf("failed to delete expired session: %w", err)
		}
		return nil, ErrSessionExpired
	}

	if session.User.ID == 0 || !session.User.IsActive {
		return nil, ErrSessionNotFound
	}

	user := session.User
	return &user, nil
}

// Delete ends the session for token. Unknown tokens are not an error.
func (s *SessionService) Delete(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.repo.DeleteByTokenHash(ctx, utils.HashToken(token)); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpired removes every expired session and returns how many.
func (s *SessionService) DeleteExpired(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return n, nil
}
