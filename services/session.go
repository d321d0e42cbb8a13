package services

import (
	"context"

	"storefront/repository"
)

// Session bundles the per-browser stores for one request.
type Session struct {
	ID       string
	Cart     *CartStore
	Auth     *AuthStore
	Notifier Notifier
}

// SessionFactory rehydrates session stores from shared client storage.
type SessionFactory struct {
	storage  repository.ClientStorage
	identity IdentityProvider
}

func NewSessionFactory(storage repository.ClientStorage, identity IdentityProvider) *SessionFactory {
	return &SessionFactory{storage: storage, identity: identity}
}

// Open loads the cart and login state of sessionID.
func (f *SessionFactory) Open(ctx context.Context, sessionID string, notifier Notifier) *Session {
	if notifier == nil {
		notifier = discardNotifier{}
	}
	scoped := repository.Scoped(f.storage, sessionID)
	return &Session{
		ID:       sessionID,
		Cart:     NewCartStore(ctx, scoped, notifier),
		Auth:     NewAuthStore(ctx, scoped, f.identity, notifier),
		Notifier: notifier,
	}
}
