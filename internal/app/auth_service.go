// Package app holds the application services and business logic.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskboard/internal/domain"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the minimum accepted password length at registration.
const MinPasswordLength = 8

// SessionTTL is the absolute lifetime of a session from login.
const SessionTTL = 24 * time.Hour

var (
	// ErrInvalidCredentials indicates that the provided username or password was incorrect.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrSessionNotFound indicates that the requested session does not exist.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired indicates that the session has expired.
	ErrSessionExpired = errors.New("session expired")
	// ErrUserNotFound indicates that the user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrUsernameTaken indicates that the username is already registered.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrPasswordTooShort indicates that the password is under the minimum length.
	ErrPasswordTooShort = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	// ErrMissingField indicates that a required field was left empty.
	ErrMissingField = errors.New("required field is empty")
	// ErrInvalidDate indicates a date field outside the YYYY-MM-DD form.
	ErrInvalidDate = errors.New("date must be in YYYY-MM-DD form")
)

// AuthService handles registration, authentication and session lifecycle.
type AuthService struct {
	users    domain.UserRepository
	sessions domain.SessionRepository
	now      func() time.Time
}

// NewAuthService creates a new authentication service.
func NewAuthService(users domain.UserRepository, sessions domain.SessionRepository) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		now:      time.Now,
	}
}

// Register creates a new account and immediately logs it in, returning the
// fresh session. The username must not already exist (case-sensitive exact
// match) and the password must meet the minimum length.
func (s *AuthService) Register(ctx context.Context, username, password string) (*domain.Session, error) {
	if username == "" || password == "" {
		return nil, ErrMissingField
	}
	if len(password) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	existing, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Create(ctx, username, string(hash))
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return s.createSession(ctx, user)
}

// Login authenticates a user and creates a session. Any prior sessions for
// the same user are deleted first, so only the newest remains valid.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.Session, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil || user == nil {
		return nil, ErrInvalidCredentials
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.createSession(ctx, user)
}

// LoginWithUser creates a session for an already authenticated user
// (e.g. via SSO), provisioning the account if it does not exist yet.
func (s *AuthService) LoginWithUser(ctx context.Context, username string) (*domain.Session, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user, err = s.users.Create(ctx, username, "")
		if err != nil {
			// Creation may have raced a concurrent login on the unique index.
			user, err = s.users.GetByUsername(ctx, username)
			if err != nil || user == nil {
				return nil, fmt.Errorf("provision user: %w", err)
			}
		}
	}

	return s.createSession(ctx, user)
}

func (s *AuthService) createSession(ctx context.Context, user *domain.User) (*domain.Session, error) {
	// Opportunistic sweep; stale rows for other users are harmless if it fails.
	_ = s.sessions.DeleteExpired(ctx)

	if err := s.sessions.DeleteByUser(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("invalidate prior sessions: %w", err)
	}

	sess := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Username:  user.Username,
		ExpiresAt: s.now().Add(SessionTTL),
		CreatedAt: s.now(),
	}
	if err := s.sessions.Create(ctx, sess.ID, sess.UserID, sess.Username, sess.ExpiresAt); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return sess, nil
}

// ValidateSession checks that the session exists, has not expired and still
// maps to a live user. Expired or orphaned sessions are deleted on sight.
func (s *AuthService) ValidateSession(ctx context.Context, id string) (*domain.User, error) {
	if id == "" {
		return nil, ErrSessionNotFound
	}

	session, err := s.sessions.GetByID(ctx, id)
	if err != nil || session == nil {
		return nil, ErrSessionNotFound
	}

	if session.Expired(s.now()) {
		_ = s.sessions.Delete(ctx, id)
		return nil, ErrSessionExpired
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil || user == nil {
		_ = s.sessions.Delete(ctx, id)
		return nil, ErrUserNotFound
	}

	return user, nil
}

// Logout invalidates a session.
func (s *AuthService) Logout(ctx context.Context, id string) error {
	return s.sessions.Delete(ctx, id)
}
