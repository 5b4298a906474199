package services

import (
	"errors"
	"fmt"
	"time"

	"yatube/app/models"
	"yatube/app/repositories"

	"github.com/google/uuid"
)

// SessionService tracks logged-in users by opaque cookie tokens
type SessionService struct {
	sessionRepo repositories.SessionRepository
	userRepo    repositories.UserRepository
	ttl         time.Duration
}

// NewSessionService creates a new SessionService with sessions lasting ttl
func NewSessionService(sessionRepo repositories.SessionRepository, userRepo repositories.UserRepository, ttl time.Duration) *SessionService {
	return &SessionService{
		sessionRepo: sessionRepo,
		userRepo:    userRepo,
		ttl:         ttl,
	}
}

// Login starts a session for user
func (s *SessionService) Login(user *models.User) (*models.Session, error) {
	now := time.Now()
	session := &models.Session{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.sessionRepo.Create(session, s.ttl); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// Current resolves the user of a session token. Unknown, expired or
// orphaned sessions return ErrNotFound.
func (s *SessionService) Current(token string) (*models.User, error) {
	if token == "" {
		return nil, ErrNotFound
	}
	session, err := s.sessionRepo.Get(token)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(session.UserID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrNotFound
	}
	return user, nil
}

// EndOtherSessions logs user out everywhere except the session keep.
// An empty keep ends every session of the user.
func (s *SessionService) EndOtherSessions(user *models.User, keep string) error {
	if err := s.sessionRepo.DeleteForUser(user.ID, keep); err != nil {
		return fmt.Errorf("failed to end sessions of user %d: %w", user.ID, err)
	}
	return nil
}

// Logout ends a session; unknown tokens are ignored
func (s *SessionService) Logout(token string) error {
	if token == "" {
		return nil
	}
	err := s.sessionRepo.Delete(token)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return err
	}
	return nil
}
