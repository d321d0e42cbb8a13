package services

import (
	"context"
	"fmt"

	apperrors "storefront/errors"
	"storefront/models"
	"storefront/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// GormIdentityProvider delegates the registry to the hosted accounts table.
type GormIdentityProvider struct {
	accounts repository.AccountRepository
	cost     int
}

func NewGormIdentityProvider(accounts repository.AccountRepository, cost int) *GormIdentityProvider {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &GormIdentityProvider{accounts: accounts, cost: cost}
}

func (p *GormIdentityProvider) Register(ctx context.Context, reg models.Registration) (models.User, error) {
	existing, err := p.accounts.FindByEmail(ctx, reg.Email)
	if err != nil {
		return models.User{}, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if existing != nil {
		return models.User{}, apperrors.ErrEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), p.cost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &models.Account{
		ID:           uuid.NewString(),
		Email:        reg.Email,
		PasswordHash: string(hash),
		FirstName:    reg.FirstName,
		LastName:     reg.LastName,
	}
	if err := p.accounts.Create(ctx, account); err != nil {
		return models.User{}, apperrors.Wrap(apperrors.ErrInternalServer, fmt.Errorf("failed to create account: %w", err))
	}
	return account.Profile(), nil
}

func (p *GormIdentityProvider) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	account, err := p.accounts.FindByEmail(ctx, email)
	if err != nil {
		return models.User{}, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if account == nil {
		return models.User{}, apperrors.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return models.User{}, apperrors.ErrInvalidCredentials
	}
	return account.Profile(), nil
}
