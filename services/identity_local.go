package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	apperrors "storefront/errors"
	"storefront/models"
	"storefront/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// LocalIdentityProvider keeps the account registry as a JSON array under
// repository.RegistryKey. Passwords are stored as bcrypt hashes.
type LocalIdentityProvider struct {
	mu      sync.Mutex
	storage repository.ClientStorage
	cost    int
}

// NewLocalIdentityProvider uses bcrypt.DefaultCost when cost is out of range.
func NewLocalIdentityProvider(storage repository.ClientStorage, cost int) *LocalIdentityProvider {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &LocalIdentityProvider{storage: storage, cost: cost}
}

func (p *LocalIdentityProvider) readRegistry(ctx context.Context) ([]models.Account, error) {
	raw, ok, err := p.storage.Get(ctx, repository.RegistryKey)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return []models.Account{}, nil
	}

	var accounts []models.Account
	if err := json.Unmarshal([]byte(raw), &accounts); err != nil || accounts == nil {
		zap.L().Error("account registry is corrupted", zap.Error(err))
		return nil, apperrors.Wrap(apperrors.ErrRegistryCorrupted, err)
	}
	return accounts, nil
}

func (p *LocalIdentityProvider) Register(ctx context.Context, reg models.Registration) (models.User, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	accounts, err := p.readRegistry(ctx)
	if err != nil {
		return models.User{}, err
	}
	for _, a := range accounts {
		if a.Email == reg.Email {
			return models.User{}, apperrors.ErrEmailExists
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), p.cost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	account := models.Account{
		ID:           uuid.NewString(),
		Email:        reg.Email,
		PasswordHash: string(hash),
		FirstName:    reg.FirstName,
		LastName:     reg.LastName,
		CreatedAt:    time.Now().UTC(),
	}
	accounts = append(accounts, account)

	data, err := json.Marshal(accounts)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to encode registry: %w", err)
	}
	if err := p.storage.Set(ctx, repository.RegistryKey, string(data)); err != nil {
		return models.User{}, apperrors.WithMessage(apperrors.ErrInternalServer, "Failed to save user data.")
	}
	return account.Profile(), nil
}

func (p *LocalIdentityProvider) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	p.mu.Lock()
	accounts, err := p.readRegistry(ctx)
	p.mu.Unlock()
	if err != nil {
		return models.User{}, err
	}

	for _, a := range accounts {
		if a.Email != email {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) != nil {
			return models.User{}, apperrors.ErrInvalidCredentials
		}
		return a.Profile(), nil
	}
	return models.User{}, apperrors.ErrInvalidCredentials
}
