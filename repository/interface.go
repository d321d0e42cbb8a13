package repository

import (
	"context"

	"storefront/models"
)

// CatalogSource is a read-only product data source. FetchProduct returns
// (nil, nil) when the id is unknown.
type CatalogSource interface {
	FetchCategories(ctx context.Context) ([]models.Category, error)
	FetchProducts(ctx context.Context) ([]models.Product, error)
	FetchProduct(ctx context.Context, id int64) (*models.Product, error)
}

// OrderRepository persists placed orders.
type OrderRepository interface {
	// CreateOrder inserts the order header and its lines atomically.
	CreateOrder(ctx context.Context, order *models.Order) error
	FindByUserEmail(ctx context.Context, email string) ([]models.Order, error)
}

// AccountRepository stores registered accounts for the hosted identity provider.
type AccountRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	Create(ctx context.Context, account *models.Account) error
}
