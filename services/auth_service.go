package services

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"strings"
	"sync"

	apperrors "storefront/errors"
	"storefront/models"
	"storefront/repository"

	"go.uber.org/zap"
)

// IdentityProvider owns credentials. The auth store only ever sees profiles.
type IdentityProvider interface {
	// Register fails with ErrEmailExists when the email is taken.
	Register(ctx context.Context, reg models.Registration) (models.User, error)
	// Authenticate fails with ErrInvalidCredentials unless email and
	// password match a registered account.
	Authenticate(ctx context.Context, email, password string) (models.User, error)
}

// AuthStore is one session's login state, persisted under repository.SessionKey.
type AuthStore struct {
	mu       sync.RWMutex
	user     *models.User
	storage  repository.ClientStorage
	identity IdentityProvider
	notifier Notifier
}

// NewAuthStore restores the persisted session. Unreadable session data is
// removed and the store starts anonymous.
func NewAuthStore(ctx context.Context, storage repository.ClientStorage, identity IdentityProvider, notifier Notifier) *AuthStore {
	if notifier == nil {
		notifier = discardNotifier{}
	}
	s := &AuthStore{storage: storage, identity: identity, notifier: notifier}

	raw, ok, err := storage.Get(ctx, repository.SessionKey)
	switch {
	case err != nil:
		zap.L().Warn("failed to read session from storage", zap.Error(err))
	case ok && raw != "":
		var u models.User
		if err := json.Unmarshal([]byte(raw), &u); err != nil || u.Email == "" {
			zap.L().Warn("discarding corrupted session", zap.Error(err))
			if err := storage.Remove(ctx, repository.SessionKey); err != nil {
				zap.L().Warn("failed to remove corrupted session", zap.Error(err))
			}
			break
		}
		s.user = &u
	}
	return s
}

// bcrypt refuses longer inputs.
const maxPasswordBytes = 72

func normalizeCredentials(email, password string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", apperrors.WithMessage(apperrors.ErrValidation, "Email and password are required")
	}
	if len(password) > maxPasswordBytes {
		return "", apperrors.WithMessage(apperrors.ErrValidation, "Password must be at most 72 bytes")
	}
	return email, nil
}

// SignUp registers the account and logs it in. On failure the session is
// left as it was.
func (s *AuthStore) SignUp(ctx context.Context, reg models.Registration) (*models.User, error) {
	email, err := normalizeCredentials(reg.Email, reg.Password)
	if err != nil {
		s.notifyFailure(err)
		return nil, err
	}
	reg.Email = email

	user, err := s.identity.Register(ctx, reg)
	if err != nil {
		s.notifyFailure(err)
		return nil, err
	}

	if s.setSession(ctx, user) {
		s.notifier.Notify(models.NotificationSuccess, "Account created successfully!")
	} else {
		s.notifier.Notify(models.NotificationError, "Account created, but failed to log in automatically.")
	}
	return &user, nil
}

// Login replaces the session with the matching account.
func (s *AuthStore) Login(ctx context.Context, email, password string) (*models.User, error) {
	email, err := normalizeCredentials(email, password)
	if err != nil {
		s.notifyFailure(err)
		return nil, err
	}

	user, err := s.identity.Authenticate(ctx, email, password)
	if err != nil {
		s.notifyFailure(err)
		return nil, err
	}

	if s.setSession(ctx, user) {
		s.notifier.Notify(models.NotificationSuccess, "Logged in successfully!")
	} else {
		s.notifier.Notify(models.NotificationError, "Login successful, but failed to save session.")
	}
	return &user, nil
}

func (s *AuthStore) Logout(ctx context.Context) {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()

	if err := s.storage.Remove(ctx, repository.SessionKey); err != nil {
		zap.L().Warn("failed to remove session", zap.Error(err))
	}
	s.notifier.Notify(models.NotificationSuccess, "Logged out successfully.")
}

// CurrentUser returns a copy of the session user, or nil when anonymous.
func (s *AuthStore) CurrentUser() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *AuthStore) IsAuthenticated() bool {
	return s.CurrentUser() != nil
}

// setSession reports whether the session was persisted. The in-memory
// session is only replaced when it was.
func (s *AuthStore) setSession(ctx context.Context, user models.User) bool {
	data, err := json.Marshal(user)
	if err != nil {
		zap.L().Warn("failed to encode session", zap.Error(err))
		return false
	}
	if err := s.storage.Set(ctx, repository.SessionKey, string(data)); err != nil {
		zap.L().Warn("failed to persist session", zap.Error(err))
		return false
	}

	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()
	return true
}

func (s *AuthStore) notifyFailure(err error) {
	var appErr *apperrors.Error
	if stderrors.As(err, &appErr) {
		s.notifier.Notify(models.NotificationError, appErr.Message)
		return
	}
	zap.L().Error("auth operation failed", zap.Error(err))
	s.notifier.Notify(models.NotificationError, "An unexpected error occurred. Please try again.")
}
