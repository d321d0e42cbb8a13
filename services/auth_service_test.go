package services

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	apperrors "storefront/errors"
	"storefront/models"
	"storefront/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type authFixture struct {
	shared   *repository.MemoryStorage
	identity *LocalIdentityProvider
	buf      *NotificationBuffer
	auth     *AuthStore
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	shared := repository.NewMemoryStorage()
	identity := NewLocalIdentityProvider(shared, bcrypt.MinCost)
	buf := NewNotificationBuffer()
	auth := NewAuthStore(context.Background(), repository.Scoped(shared, "s1"), identity, buf)
	return &authFixture{shared: shared, identity: identity, buf: buf, auth: auth}
}

func (f *authFixture) registry(t *testing.T) []models.Account {
	t.Helper()
	raw, ok, err := f.shared.Get(context.Background(), repository.RegistryKey)
	require.NoError(t, err)
	require.True(t, ok)
	var accounts []models.Account
	require.NoError(t, json.Unmarshal([]byte(raw), &accounts))
	return accounts
}

func lastMessage(buf *NotificationBuffer) string {
	items := buf.Items()
	if len(items) == 0 {
		return ""
	}
	return items[len(items)-1].Message
}

func TestSignUp_LogsIn(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	user, err := f.auth.SignUp(ctx, models.Registration{Email: "a@x.com", Password: "p", FirstName: "Ada"})

	require.NoError(t, err)
	assert.Equal(t, "a@x.com", user.Email)
	assert.True(t, f.auth.IsAuthenticated())
	assert.Equal(t, "Ada", f.auth.CurrentUser().FirstName)
	assert.Equal(t, "Account created successfully!", lastMessage(f.buf))

	restored := NewAuthStore(ctx, repository.Scoped(f.shared, "s1"), f.identity, nil)
	require.NotNil(t, restored.CurrentUser())
	assert.Equal(t, "a@x.com", restored.CurrentUser().Email)
}

func TestSignUp_DuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	_, err := f.auth.SignUp(ctx, models.Registration{Email: "a@x.com", Password: "p"})
	require.NoError(t, err)
	f.auth.Logout(ctx)

	_, err = f.auth.SignUp(ctx, models.Registration{Email: "a@x.com", Password: "p2"})

	assert.ErrorIs(t, err, apperrors.ErrEmailExists)
	assert.Nil(t, f.auth.CurrentUser())
	assert.Equal(t, "Email already exists", lastMessage(f.buf))

	accounts := f.registry(t)
	require.Len(t, accounts, 1)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(accounts[0].PasswordHash), []byte("p")))
}

func TestSignUp_DuplicateKeepsExistingSession(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	_, err := f.auth.SignUp(ctx, models.Registration{Email: "a@x.com", Password: "p"})
	require.NoError(t, err)

	_, err = f.auth.SignUp(ctx, models.Registration{Email: "a@x.com", Password: "p2"})

	require.Error(t, err)
	assert.Equal(t, "a@x.com", f.auth.CurrentUser().Email)
}

func TestLogin_WrongPassword(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	_, err := f.auth.SignUp(ctx, models.Registration{Email: "a@x.com", Password: "p"})
	require.NoError(t, err)
	f.auth.Logout(ctx)

	_, err = f.auth.Login(ctx, "a@x.com", "wrong")

	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	assert.Nil(t, f.auth.CurrentUser())
	assert.Equal(t, "Invalid email or password", lastMessage(f.buf))
}

func TestLogin_UnknownEmail(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.auth.Login(context.Background(), "nobody@x.com", "p")

	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	assert.False(t, f.auth.IsAuthenticated())
}

func TestLogin_Success(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	_, err := f.auth.SignUp(ctx, models.Registration{Email: "a@x.com", Password: "p"})
	require.NoError(t, err)

	other := NewAuthStore(ctx, repository.Scoped(f.shared, "s2"), f.identity, f.buf)
	user, err := other.Login(ctx, " a@x.com ", "p")

	require.NoError(t, err)
	assert.Equal(t, "a@x.com", user.Email)
	assert.Equal(t, "Logged in successfully!", lastMessage(f.buf))
}

func TestLogout_ClearsSession(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	_, err := f.auth.SignUp(ctx, models.Registration{Email: "a@x.com", Password: "p"})
	require.NoError(t, err)

	f.auth.Logout(ctx)

	assert.Nil(t, f.auth.CurrentUser())
	_, ok, _ := f.shared.Get(ctx, "session:s1:"+repository.SessionKey)
	assert.False(t, ok)
	assert.Equal(t, "Logged out successfully.", lastMessage(f.buf))
}

func TestAuthStore_CorruptedSessionIsAnonymous(t *testing.T) {
	ctx := context.Background()
	shared := repository.NewMemoryStorage()
	scoped := repository.Scoped(shared, "s1")
	require.NoError(t, scoped.Set(ctx, repository.SessionKey, "{not json"))

	auth := NewAuthStore(ctx, scoped, NewLocalIdentityProvider(shared, bcrypt.MinCost), nil)

	assert.Nil(t, auth.CurrentUser())
	_, ok, _ := scoped.Get(ctx, repository.SessionKey)
	assert.False(t, ok)
}

func TestCorruptedRegistry(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	require.NoError(t, f.shared.Set(ctx, repository.RegistryKey, `{"email":"a@x.com"}`))

	_, err := f.auth.SignUp(ctx, models.Registration{Email: "b@x.com", Password: "p"})
	assert.ErrorIs(t, err, apperrors.ErrRegistryCorrupted)

	_, err = f.auth.Login(ctx, "a@x.com", "p")
	assert.ErrorIs(t, err, apperrors.ErrRegistryCorrupted)

	assert.Nil(t, f.auth.CurrentUser())
	assert.Equal(t, "An internal error occurred. Please try again.", lastMessage(f.buf))
}

func TestSignUp_RequiresCredentials(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.auth.SignUp(context.Background(), models.Registration{Email: "  ", Password: "p"})

	assert.ErrorIs(t, err, apperrors.ErrValidation)
	_, ok, _ := f.shared.Get(context.Background(), repository.RegistryKey)
	assert.False(t, ok)
}

func TestSignUp_RejectsOverlongPassword(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.auth.SignUp(ctx, models.Registration{Email: "a@x.com", Password: strings.Repeat("p", 80)})

	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Equal(t, "Password must be at most 72 bytes", lastMessage(f.buf))
	assert.Nil(t, f.auth.CurrentUser())

	_, err = f.auth.SignUp(ctx, models.Registration{Email: "a@x.com", Password: strings.Repeat("p", 72)})
	assert.NoError(t, err)
}

func TestLogin_SessionWriteFailureKeepsAnonymous(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	_, err := f.auth.SignUp(ctx, models.Registration{Email: "a@x.com", Password: "p"})
	require.NoError(t, err)

	buf := NewNotificationBuffer()
	broken := NewAuthStore(ctx, &failingStorage{ClientStorage: repository.NewMemoryStorage()}, f.identity, buf)
	_, err = broken.Login(ctx, "a@x.com", "p")

	require.NoError(t, err)
	assert.Nil(t, broken.CurrentUser())
	assert.Equal(t, "Login successful, but failed to save session.", lastMessage(buf))
}
