package services

import (
	"context"
	"fmt"
	"sync"

	apperrors "storefront/errors"
	"storefront/models"
	pkgaws "storefront/pkg/aws"
	"storefront/repository"

	"go.uber.org/zap"
)

// MetricsRecorder is the subset of the CloudWatch client the services use.
type MetricsRecorder interface {
	RecordCount(ctx context.Context, metricName string, dimensions map[string]string) error
}

// CatalogSnapshot is the read view of the catalog and its load status.
type CatalogSnapshot struct {
	Products   []models.Product  `json:"products"`
	Categories []models.Category `json:"categories"`
	Loading    bool              `json:"loading"`
	Error      string            `json:"error,omitempty"`
}

// CatalogStore holds the product and category lists fetched from a
// CatalogSource together with the outcome of the most recent fetch.
type CatalogStore struct {
	source  repository.CatalogSource
	metrics MetricsRecorder

	mu         sync.RWMutex
	products   []models.Product
	categories []models.Category
	loading    bool
	errMsg     string
	generation uint64
	closed     bool
}

func NewCatalogStore(source repository.CatalogSource, metrics MetricsRecorder) *CatalogStore {
	return &CatalogStore{
		source:  source,
		metrics: metrics,
		loading: true,
	}
}

// Load fetches categories then products. On failure the previous data is
// kept and the error message is recorded. A fetch overtaken by a later
// Load or by Close leaves the store untouched.
func (s *CatalogStore) Load(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.generation++
	gen := s.generation
	s.loading = true
	s.mu.Unlock()

	categories, products, err := s.fetch(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || gen != s.generation {
		zap.L().Debug("discarding superseded catalog fetch", zap.Uint64("generation", gen))
		return nil
	}
	s.loading = false

	if err != nil {
		s.errMsg = err.Error()
		zap.L().Error("catalog fetch failed", zap.Error(err))
		s.record(ctx, pkgaws.MetricCatalogFailed)
		return apperrors.Wrap(apperrors.ErrCatalogFetch, err)
	}

	s.products = products
	s.categories = categories
	s.errMsg = ""
	zap.L().Info("catalog loaded",
		zap.Int("products", len(products)),
		zap.Int("categories", len(categories)),
	)
	s.record(ctx, pkgaws.MetricCatalogLoaded)
	return nil
}

// Reload is the manual retry after a failed load.
func (s *CatalogStore) Reload(ctx context.Context) error {
	return s.Load(ctx)
}

func (s *CatalogStore) fetch(ctx context.Context) ([]models.Category, []models.Product, error) {
	categories, err := s.source.FetchCategories(ctx)
	if err != nil {
		return nil, nil, err
	}
	products, err := s.source.FetchProducts(ctx)
	if err != nil {
		return nil, nil, err
	}
	for _, p := range products {
		if err := p.Validate(); err != nil {
			return nil, nil, fmt.Errorf("failed to fetch products: %w", err)
		}
	}
	if categories == nil {
		categories = []models.Category{}
	}
	if products == nil {
		products = []models.Product{}
	}
	return categories, products, nil
}

func (s *CatalogStore) record(ctx context.Context, metric string) {
	if s.metrics == nil {
		return
	}
	if err := s.metrics.RecordCount(ctx, metric, nil); err != nil {
		zap.L().Warn("failed to record metric", zap.String("metric", metric), zap.Error(err))
	}
}

// Close stops the store from accepting the results of in-flight fetches.
func (s *CatalogStore) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

func (s *CatalogStore) Snapshot() CatalogSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return CatalogSnapshot{
		Products:   append([]models.Product{}, s.products...),
		Categories: append([]models.Category{}, s.categories...),
		Loading:    s.loading,
		Error:      s.errMsg,
	}
}

func (s *CatalogStore) Products() []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Product{}, s.products...)
}

func (s *CatalogStore) Categories() []models.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Category{}, s.categories...)
}

// Product looks id up in the loaded catalog and falls back to the source.
func (s *CatalogStore) Product(ctx context.Context, id int64) (*models.Product, error) {
	if id <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid product id")
	}

	s.mu.RLock()
	for i := range s.products {
		if s.products[i].ID == id {
			p := s.products[i]
			s.mu.RUnlock()
			return &p, nil
		}
	}
	s.mu.RUnlock()

	p, err := s.source.FetchProduct(ctx, id)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCatalogFetch, err)
	}
	if p == nil {
		return nil, apperrors.ErrProductNotFound
	}
	if err := p.Validate(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCatalogFetch, err)
	}
	return p, nil
}
