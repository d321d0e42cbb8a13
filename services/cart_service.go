package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"sync"

	apperrors "storefront/errors"
	"storefront/models"
	"storefront/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CartStore holds one session's cart. Every mutation is mirrored to storage
// under repository.CartKey.
type CartStore struct {
	mu       sync.RWMutex
	lines    []models.CartLine
	open     bool
	storage  repository.ClientStorage
	notifier Notifier
}

// NewCartStore rehydrates the cart persisted in storage. Missing or
// malformed data yields an empty cart.
func NewCartStore(ctx context.Context, storage repository.ClientStorage, notifier Notifier) *CartStore {
	if notifier == nil {
		notifier = discardNotifier{}
	}
	s := &CartStore{storage: storage, notifier: notifier}
	s.lines = s.load(ctx)
	if v, ok, err := storage.Get(ctx, repository.CartOpenKey); err == nil && ok {
		s.open = v == "true"
	}
	return s
}

func (s *CartStore) load(ctx context.Context) []models.CartLine {
	raw, ok, err := s.storage.Get(ctx, repository.CartKey)
	if err != nil {
		zap.L().Warn("failed to read cart from storage", zap.Error(err))
		return nil
	}
	if !ok || raw == "" {
		return nil
	}

	var stored []models.CartLine
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		zap.L().Warn("discarding malformed cart", zap.Error(err))
		return nil
	}

	// Fold duplicates and drop lines that could never have been added.
	lines := make([]models.CartLine, 0, len(stored))
	index := make(map[int64]int, len(stored))
	for _, l := range stored {
		if l.Product.ID <= 0 || l.Quantity <= 0 {
			continue
		}
		if i, seen := index[l.Product.ID]; seen {
			lines[i].Quantity += l.Quantity
			continue
		}
		index[l.Product.ID] = len(lines)
		lines = append(lines, l)
	}
	return lines
}

// persist must be called with mu held.
func (s *CartStore) persist(ctx context.Context) {
	lines := s.lines
	if lines == nil {
		lines = []models.CartLine{}
	}
	data, err := json.Marshal(lines)
	if err != nil {
		zap.L().Warn("failed to encode cart", zap.Error(err))
		return
	}
	if err := s.storage.Set(ctx, repository.CartKey, string(data)); err != nil {
		zap.L().Warn("failed to persist cart", zap.Error(err))
	}
}

func (s *CartStore) persistOpen(ctx context.Context) {
	if err := s.storage.Set(ctx, repository.CartOpenKey, strconv.FormatBool(s.open)); err != nil {
		zap.L().Warn("failed to persist cart panel state", zap.Error(err))
	}
}

func (s *CartStore) indexOf(productID int64) int {
	for i, l := range s.lines {
		if l.Product.ID == productID {
			return i
		}
	}
	return -1
}

// MaxLineQuantity caps a single cart line.
const MaxLineQuantity = math.MaxInt32

// AddToCart merges quantity into the product's line, appending a new line
// when the product is not in the cart yet. Quantities below one count as one
// and merged lines saturate at MaxLineQuantity.
func (s *CartStore) AddToCart(ctx context.Context, product models.Product, quantity int) error {
	if product.ID <= 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidProduct, "Cannot add an invalid product to the cart")
	}
	if quantity <= 0 {
		quantity = 1
	}
	quantity = min(quantity, MaxLineQuantity)

	s.mu.Lock()
	if i := s.indexOf(product.ID); i >= 0 {
		if s.lines[i].Quantity > MaxLineQuantity-quantity {
			s.lines[i].Quantity = MaxLineQuantity
		} else {
			s.lines[i].Quantity += quantity
		}
	} else {
		s.lines = append(s.lines, models.CartLine{Product: product, Quantity: quantity})
	}
	s.open = true
	s.persist(ctx)
	s.persistOpen(ctx)
	s.mu.Unlock()

	s.notifier.Notify(models.NotificationSuccess, fmt.Sprintf("%s added to cart!", product.Title))
	return nil
}

// RemoveFromCart drops the product's line. Unknown ids are ignored.
func (s *CartStore) RemoveFromCart(ctx context.Context, productID int64) {
	s.mu.Lock()
	i := s.indexOf(productID)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	title := s.lines[i].Product.Title
	s.lines = append(s.lines[:i:i], s.lines[i+1:]...)
	s.persist(ctx)
	s.mu.Unlock()

	s.notifier.Notify(models.NotificationError, fmt.Sprintf("%s removed from cart.", title))
}

// UpdateQuantity sets the line's quantity; zero or less removes the line.
func (s *CartStore) UpdateQuantity(ctx context.Context, productID int64, quantity int) {
	if quantity <= 0 {
		s.RemoveFromCart(ctx, productID)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(productID)
	if i < 0 {
		return
	}
	s.lines[i].Quantity = min(quantity, MaxLineQuantity)
	s.persist(ctx)
}

func (s *CartStore) ClearCart(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = nil
	s.persist(ctx)
}

// Lines returns a copy of the cart lines in insertion order.
func (s *CartStore) Lines() []models.CartLine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.CartLine, len(s.lines))
	copy(out, s.lines)
	return out
}

func (s *CartStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, l := range s.lines {
		if l.Quantity > 0 {
			n += l.Quantity
		}
	}
	return n
}

func (s *CartStore) TotalPrice() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := decimal.Zero
	for _, l := range s.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

func (s *CartStore) IsEmpty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.lines) == 0
}

// SetOpen toggles the cart panel.
func (s *CartStore) SetOpen(ctx context.Context, open bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = open
	s.persistOpen(ctx)
}

func (s *CartStore) IsOpen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.open
}

// Cart returns the read view served to clients.
func (s *CartStore) Cart() models.Cart {
	return models.Cart{
		Items:    s.Lines(),
		Count:    s.Count(),
		Subtotal: s.TotalPrice(),
		IsOpen:   s.IsOpen(),
	}
}
