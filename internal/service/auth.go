// Package service provides authentication business logic,
// delegating persistence to a UserRepository.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/atinyakov/PassKeeper/internal/apperr"
)

// MinPasswordLength is the shortest master password accepted at registration.
const MinPasswordLength = 6

var (
	// ErrInvalidInput is returned when a user name or password is empty.
	ErrInvalidInput = errors.New("user name and password are required")
	// ErrPasswordTooShort is returned when a new password is below MinPasswordLength.
	ErrPasswordTooShort = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
)

// UserRepository defines the persistence operations
// required by the authentication service.
type UserRepository interface {
	// UserExists returns true if a user with the given name exists.
	UserExists(ctx context.Context, userName string) (bool, error)
	// GetUserID returns the id of the named user; ok is false if absent.
	GetUserID(ctx context.Context, userName string) (int64, bool, error)
	// GetPassword returns the decrypted password of a user; ok is false if absent.
	GetPassword(ctx context.Context, id int64) (string, bool, error)
	// AddUser creates a user and returns its id.
	AddUser(ctx context.Context, userName, password string) (int64, error)
	// DeleteUser removes a user together with its items.
	DeleteUser(ctx context.Context, id int64) error
}

// Session identifies an authenticated user. It is handed to the caller by
// Authenticate and passed back explicitly on every later call.
type Session struct {
	// ID correlates log lines of one login.
	ID string
	// UserID is the authenticated user's id.
	UserID int64
	// UserName is the name the user logged in with.
	UserName string
}

// AuthService implements authentication operations by delegating
// to a UserRepository.
type AuthService struct {
	repo UserRepository
	log  *zap.Logger
}

// NewAuthService constructs a new AuthService using the provided repository.
func NewAuthService(repo UserRepository, log *zap.Logger) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{repo: repo, log: log}
}

// Authenticate checks userName and password against the stored credentials.
// It returns ok == false for every kind of mismatch (unknown user,
// undecryptable password, wrong password) without saying which one.
// err is non-nil only when the store itself is unusable.
func (s *AuthService) Authenticate(ctx context.Context, userName, password string) (sess Session, ok bool, err error) {
	exists, err := s.repo.UserExists(ctx, userName)
	if err != nil {
		return Session{}, false, err
	}
	if !exists {
		return Session{}, false, nil
	}

	id, found, err := s.repo.GetUserID(ctx, userName)
	if err != nil {
		return Session{}, false, err
	}
	if !found {
		return Session{}, false, nil
	}

	stored, found, err := s.repo.GetPassword(ctx, id)
	switch {
	case errors.Is(err, apperr.ErrDecryption):
		s.log.Warn("stored password cannot be decrypted", zap.Int64("user_id", id))
		return Session{}, false, nil
	case err != nil:
		return Session{}, false, err
	case !found:
		return Session{}, false, nil
	}

	// TODO: switch to a salted one-way hash with constant-time comparison once
	// a migration path for existing users.password values exists.
	if stored != password {
		return Session{}, false, nil
	}

	sess = Session{ID: uuid.NewString(), UserID: id, UserName: userName}
	s.log.Info("user authenticated", zap.String("session", sess.ID), zap.Int64("user_id", id))
	return sess, true, nil
}

// Register validates a new account and stores it. Surrounding whitespace is
// trimmed from both fields first. It returns the new user's id.
func (s *AuthService) Register(ctx context.Context, userName, password string) (int64, error) {
	userName = strings.TrimSpace(userName)
	password = strings.TrimSpace(password)

	if userName == "" || password == "" {
		return 0, ErrInvalidInput
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return 0, ErrPasswordTooShort
	}

	exists, err := s.repo.UserExists(ctx, userName)
	if err != nil {
		return 0, err
	}
	if exists {
		return 0, fmt.Errorf("user %q: %w", userName, apperr.ErrUniquenessViolation)
	}

	id, err := s.repo.AddUser(ctx, userName, password)
	if err != nil {
		return 0, err
	}
	s.log.Info("user registered", zap.Int64("user_id", id))
	return id, nil
}

// DeleteAccount removes the session's user and all of its items.
func (s *AuthService) DeleteAccount(ctx context.Context, sess Session) error {
	if err := s.repo.DeleteUser(ctx, sess.UserID); err != nil {
		return err
	}
	s.log.Info("account deleted", zap.String("session", sess.ID), zap.Int64("user_id", sess.UserID))
	return nil
}
