package services

import (
	"context"
	"encoding/json"
	"testing"

	apperrors "storefront/errors"
	"storefront/models"
	"storefront/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCart(t *testing.T) (*CartStore, *repository.MemoryStorage, *NotificationBuffer) {
	t.Helper()
	storage := repository.NewMemoryStorage()
	buf := NewNotificationBuffer()
	return NewCartStore(context.Background(), storage, buf), storage, buf
}

func TestAddToCart_MergesRepeatedAdds(t *testing.T) {
	ctx := context.Background()
	cart, _, _ := newTestCart(t)
	a := product(1, "A", "10", "x")
	b := product(2, "B", "5", "x")

	require.NoError(t, cart.AddToCart(ctx, a, 2))
	require.NoError(t, cart.AddToCart(ctx, b, 1))
	require.NoError(t, cart.AddToCart(ctx, a, 1))

	lines := cart.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, int64(1), lines[0].Product.ID)
	assert.Equal(t, 3, lines[0].Quantity)
	assert.Equal(t, int64(2), lines[1].Product.ID)
	assert.Equal(t, 4, cart.Count())
}

func TestAddToCart_Scenario(t *testing.T) {
	ctx := context.Background()
	cart, _, _ := newTestCart(t)
	a := product(1, "A", "10", "x")

	require.NoError(t, cart.AddToCart(ctx, a, 2))
	require.NoError(t, cart.AddToCart(ctx, a, 1))

	lines := cart.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Quantity)
	assert.True(t, decimal.NewFromInt(30).Equal(cart.TotalPrice()))
}

func TestAddToCart_CoercesQuantity(t *testing.T) {
	ctx := context.Background()
	cart, _, _ := newTestCart(t)

	require.NoError(t, cart.AddToCart(ctx, product(1, "A", "10", "x"), 0))
	require.NoError(t, cart.AddToCart(ctx, product(1, "A", "10", "x"), -4))

	assert.Equal(t, 2, cart.Count())
}

func TestAddToCart_SaturatesLargeQuantities(t *testing.T) {
	ctx := context.Background()
	cart, _, _ := newTestCart(t)
	a := product(1, "A", "10", "x")

	require.NoError(t, cart.AddToCart(ctx, a, MaxLineQuantity-1))
	require.NoError(t, cart.AddToCart(ctx, a, MaxLineQuantity))

	lines := cart.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, MaxLineQuantity, lines[0].Quantity)
	assert.Equal(t, MaxLineQuantity, cart.Count())
	assert.True(t, cart.TotalPrice().IsPositive())

	cart.UpdateQuantity(ctx, 1, MaxLineQuantity+10)
	assert.Equal(t, MaxLineQuantity, cart.Lines()[0].Quantity)
}

func TestAddToCart_InvalidProduct(t *testing.T) {
	cart, storage, buf := newTestCart(t)

	err := cart.AddToCart(context.Background(), product(0, "Ghost", "1", "x"), 1)

	assert.ErrorIs(t, err, apperrors.ErrInvalidProduct)
	assert.True(t, cart.IsEmpty())
	assert.False(t, cart.IsOpen())
	assert.Empty(t, buf.Items())
	_, ok, _ := storage.Get(context.Background(), repository.CartKey)
	assert.False(t, ok)
}

func TestAddToCart_OpensPanelAndNotifies(t *testing.T) {
	cart, _, buf := newTestCart(t)

	require.NoError(t, cart.AddToCart(context.Background(), product(7, "Espresso", "2.50", "coffee"), 1))

	assert.True(t, cart.IsOpen())
	assert.Equal(t, []models.Notification{
		{Level: models.NotificationSuccess, Message: "Espresso added to cart!"},
	}, buf.Items())
}

func TestRemoveFromCart(t *testing.T) {
	ctx := context.Background()
	cart, _, buf := newTestCart(t)
	require.NoError(t, cart.AddToCart(ctx, product(1, "A", "10", "x"), 1))
	require.NoError(t, cart.AddToCart(ctx, product(2, "B", "5", "x"), 1))

	cart.RemoveFromCart(ctx, 1)
	cart.RemoveFromCart(ctx, 99)

	lines := cart.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, int64(2), lines[0].Product.ID)

	items := buf.Items()
	assert.Equal(t, models.Notification{Level: models.NotificationError, Message: "A removed from cart."}, items[len(items)-1])
}

func TestUpdateQuantity_NonPositiveEqualsRemove(t *testing.T) {
	ctx := context.Background()
	for _, q := range []int{0, -1} {
		updated, _, _ := newTestCart(t)
		removed, _, _ := newTestCart(t)
		for _, c := range []*CartStore{updated, removed} {
			require.NoError(t, c.AddToCart(ctx, product(1, "A", "10", "x"), 2))
			require.NoError(t, c.AddToCart(ctx, product(2, "B", "5", "x"), 1))
		}

		updated.UpdateQuantity(ctx, 1, q)
		removed.RemoveFromCart(ctx, 1)

		assert.Equal(t, removed.Lines(), updated.Lines())
	}
}

func TestUpdateQuantity_ReplacesQuantity(t *testing.T) {
	ctx := context.Background()
	cart, _, _ := newTestCart(t)
	require.NoError(t, cart.AddToCart(ctx, product(1, "A", "10", "x"), 2))

	cart.UpdateQuantity(ctx, 1, 5)
	cart.UpdateQuantity(ctx, 42, 3)

	lines := cart.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 5, lines[0].Quantity)
}

func TestClearCart(t *testing.T) {
	ctx := context.Background()
	cart, storage, _ := newTestCart(t)
	require.NoError(t, cart.AddToCart(ctx, product(1, "A", "10", "x"), 2))

	cart.ClearCart(ctx)

	assert.True(t, cart.IsEmpty())
	assert.Equal(t, 0, cart.Count())
	assert.True(t, cart.TotalPrice().IsZero())
	raw, ok, _ := storage.Get(ctx, repository.CartKey)
	require.True(t, ok)
	assert.JSONEq(t, `[]`, raw)
}

func TestEmptyCartTotals(t *testing.T) {
	cart, _, _ := newTestCart(t)
	assert.Equal(t, 0, cart.Count())
	assert.True(t, cart.TotalPrice().IsZero())
}

func TestCart_PersistsAndRehydrates(t *testing.T) {
	ctx := context.Background()
	cart, storage, _ := newTestCart(t)
	require.NoError(t, cart.AddToCart(ctx, product(1, "A", "10.50", "x"), 2))
	require.NoError(t, cart.AddToCart(ctx, product(2, "B", "5", "x"), 1))

	restored := NewCartStore(ctx, storage, nil)

	lines := restored.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, int64(1), lines[0].Product.ID)
	assert.Equal(t, "A", lines[0].Product.Title)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, int64(2), lines[1].Product.ID)
	assert.Equal(t, 3, restored.Count())
	assert.True(t, decimal.RequireFromString("26").Equal(restored.TotalPrice()))
	assert.True(t, restored.IsOpen())
}

func TestCart_MalformedStorageIsEmpty(t *testing.T) {
	ctx := context.Background()
	for _, raw := range []string{"not json", `{"items":1}`, `"cart"`} {
		storage := repository.NewMemoryStorage()
		require.NoError(t, storage.Set(ctx, repository.CartKey, raw))

		cart := NewCartStore(ctx, storage, nil)

		assert.True(t, cart.IsEmpty(), raw)
	}
}

func TestCart_RehydrateFoldsDuplicatesAndDropsBadLines(t *testing.T) {
	ctx := context.Background()
	stored := []models.CartLine{
		{Product: product(1, "A", "10", "x"), Quantity: 1},
		{Product: product(0, "Bad", "1", "x"), Quantity: 1},
		{Product: product(2, "B", "5", "x"), Quantity: 0},
		{Product: product(1, "A", "10", "x"), Quantity: 2},
	}
	data, err := json.Marshal(stored)
	require.NoError(t, err)
	storage := repository.NewMemoryStorage()
	require.NoError(t, storage.Set(ctx, repository.CartKey, string(data)))

	cart := NewCartStore(ctx, storage, nil)

	lines := cart.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Quantity)
}

func TestCart_NonPositivePriceContributesZero(t *testing.T) {
	ctx := context.Background()
	cart, _, _ := newTestCart(t)
	require.NoError(t, cart.AddToCart(ctx, product(1, "Free", "0", "x"), 3))
	require.NoError(t, cart.AddToCart(ctx, product(2, "Broken", "-4", "x"), 1))
	require.NoError(t, cart.AddToCart(ctx, product(3, "Real", "2.25", "x"), 2))

	assert.True(t, decimal.RequireFromString("4.5").Equal(cart.TotalPrice()))
	assert.Equal(t, 6, cart.Count())
}

func TestCart_StorageFailuresAreSwallowed(t *testing.T) {
	ctx := context.Background()
	storage := &failingStorage{ClientStorage: repository.NewMemoryStorage(), failReads: true}
	cart := NewCartStore(ctx, storage, nil)

	require.NoError(t, cart.AddToCart(ctx, product(1, "A", "10", "x"), 1))
	cart.UpdateQuantity(ctx, 1, 4)

	assert.Equal(t, 4, cart.Count())
}

func TestCart_SetOpenPersists(t *testing.T) {
	ctx := context.Background()
	cart, storage, _ := newTestCart(t)

	cart.SetOpen(ctx, true)
	assert.True(t, NewCartStore(ctx, storage, nil).IsOpen())

	cart.SetOpen(ctx, false)
	assert.False(t, NewCartStore(ctx, storage, nil).IsOpen())
}
