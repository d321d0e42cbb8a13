package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"storefront/models"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var errEmptyBody = errors.New("empty response body")

// FakeStoreClient reads the catalog from the public Fake Store demo API.
// Categories arrive as bare names and are numbered in response order.
type FakeStoreClient struct {
	baseURL string
	client  *http.Client

	mu         sync.RWMutex
	categories []models.Category
}

func NewFakeStoreClient(baseURL string, timeout time.Duration) *FakeStoreClient {
	return &FakeStoreClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// fakeStoreProduct is the wire shape. Required fields are pointers so a
// missing field is distinguishable from a zero value.
type fakeStoreProduct struct {
	ID          *int64           `json:"id" validate:"required,gt=0"`
	Title       *string          `json:"title" validate:"required"`
	Price       *decimal.Decimal `json:"price" validate:"required"`
	Description string           `json:"description"`
	Category    *string          `json:"category" validate:"required"`
	Image       string           `json:"image"`
	Rating      models.Rating    `json:"rating"`
}

var payloadValidator = validator.New()

func (c *FakeStoreClient) FetchCategories(ctx context.Context) ([]models.Category, error) {
	var names []string
	if err := c.getJSON(ctx, "/products/categories", &names); err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}

	categories := make([]models.Category, 0, len(names))
	for i, name := range names {
		categories = append(categories, models.Category{ID: int64(i + 1), Name: name})
	}

	c.mu.Lock()
	c.categories = categories
	c.mu.Unlock()
	return categories, nil
}

func (c *FakeStoreClient) FetchProducts(ctx context.Context) ([]models.Product, error) {
	var raw []fakeStoreProduct
	if err := c.getJSON(ctx, "/products", &raw); err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}

	products := make([]models.Product, 0, len(raw))
	for i, r := range raw {
		p, err := c.toModel(r)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch products: item %d: %w", i, err)
		}
		products = append(products, p)
	}
	return products, nil
}

func (c *FakeStoreClient) FetchProduct(ctx context.Context, id int64) (*models.Product, error) {
	var raw fakeStoreProduct
	err := c.getJSON(ctx, "/products/"+strconv.FormatInt(id, 10), &raw)
	// The demo API answers unknown ids with an empty body.
	if errors.Is(err, errEmptyBody) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product %d: %w", id, err)
	}
	p, err := c.toModel(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch product %d: %w", id, err)
	}
	return &p, nil
}

func (c *FakeStoreClient) toModel(r fakeStoreProduct) (models.Product, error) {
	if err := payloadValidator.Struct(r); err != nil {
		return models.Product{}, fmt.Errorf("missing required field: %w", err)
	}

	p := models.Product{
		ID:          *r.ID,
		Title:       *r.Title,
		Description: r.Description,
		Price:       *r.Price,
		Image:       r.Image,
		Category:    c.categoryByName(*r.Category),
		Rating:      r.Rating,
	}
	p.CategoryID = p.Category.ID
	if err := p.Validate(); err != nil {
		return models.Product{}, err
	}
	return p, nil
}

// categoryByName resolves a category name against the last fetched category
// list. Unknown names get id 0.
func (c *FakeStoreClient) categoryByName(name string) models.Category {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, cat := range c.categories {
		if cat.Name == name {
			return cat
		}
	}
	return models.Category{ID: 0, Name: name}
}

func (c *FakeStoreClient) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("upstream error: status=%d body=%s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return errEmptyBody
	}
	if err := json.Unmarshal(body, out); err != nil {
		zap.L().Warn("Malformed catalog response", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("malformed response: %w", err)
	}
	return nil
}
