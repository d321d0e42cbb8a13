package services

import (
	"context"
	"errors"
	"testing"

	apperrors "storefront/errors"
	"storefront/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type MockAccountRepository struct{ mock.Mock }

func (m *MockAccountRepository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) Create(ctx context.Context, account *models.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func TestGormIdentityProvider_Register(t *testing.T) {
	repo := new(MockAccountRepository)
	provider := NewGormIdentityProvider(repo, bcrypt.MinCost)
	ctx := context.Background()

	repo.On("FindByEmail", ctx, "a@x.com").Return(nil, nil).Once()
	repo.On("Create", ctx, mock.MatchedBy(func(a *models.Account) bool {
		return a.Email == "a@x.com" && a.ID != "" &&
			bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte("secret")) == nil
	})).Return(nil).Once()

	user, err := provider.Register(ctx, models.Registration{Email: "a@x.com", Password: "secret", LastName: "Lovelace"})

	require.NoError(t, err)
	assert.Equal(t, "Lovelace", user.LastName)
	repo.AssertExpectations(t)
}

func TestGormIdentityProvider_RegisterDuplicate(t *testing.T) {
	repo := new(MockAccountRepository)
	provider := NewGormIdentityProvider(repo, bcrypt.MinCost)
	ctx := context.Background()
	repo.On("FindByEmail", ctx, "a@x.com").Return(&models.Account{Email: "a@x.com"}, nil)

	_, err := provider.Register(ctx, models.Registration{Email: "a@x.com", Password: "secret"})

	assert.ErrorIs(t, err, apperrors.ErrEmailExists)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGormIdentityProvider_Authenticate(t *testing.T) {
	repo := new(MockAccountRepository)
	provider := NewGormIdentityProvider(repo, bcrypt.MinCost)
	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)
	account := &models.Account{ID: "u1", Email: "a@x.com", PasswordHash: string(hash)}

	repo.On("FindByEmail", ctx, "a@x.com").Return(account, nil)
	repo.On("FindByEmail", ctx, "b@x.com").Return(nil, nil)
	repo.On("FindByEmail", ctx, "down@x.com").Return(nil, errors.New("connection refused"))

	user, err := provider.Authenticate(ctx, "a@x.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)

	_, err = provider.Authenticate(ctx, "a@x.com", "wrong")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = provider.Authenticate(ctx, "b@x.com", "secret")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = provider.Authenticate(ctx, "down@x.com", "secret")
	assert.ErrorIs(t, err, apperrors.ErrInternalServer)
}
