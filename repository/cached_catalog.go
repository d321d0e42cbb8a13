package repository

import (
	"context"
	"encoding/json"
	"strconv"

	"storefront/models"

	"go.uber.org/zap"
)

const ProductCachePrefix = "product:detail:"

// CachedCatalogSource serves single-product lookups from a cache before
// going to the underlying source. List fetches always hit the source.
type CachedCatalogSource struct {
	CatalogSource
	cache ClientStorage
}

func NewCachedCatalogSource(source CatalogSource, cache ClientStorage) *CachedCatalogSource {
	return &CachedCatalogSource{CatalogSource: source, cache: cache}
}

func (c *CachedCatalogSource) FetchProduct(ctx context.Context, id int64) (*models.Product, error) {
	key := ProductCachePrefix + strconv.FormatInt(id, 10)

	if raw, ok, err := c.cache.Get(ctx, key); err != nil {
		zap.L().Warn("product cache read failed", zap.Int64("product_id", id), zap.Error(err))
	} else if ok {
		var p models.Product
		if err := json.Unmarshal([]byte(raw), &p); err == nil && p.ID == id {
			return &p, nil
		}
		zap.L().Warn("dropping unreadable cached product", zap.Int64("product_id", id))
		_ = c.cache.Remove(ctx, key)
	}

	p, err := c.CatalogSource.FetchProduct(ctx, id)
	if err != nil || p == nil {
		return p, err
	}

	if data, err := json.Marshal(p); err == nil {
		if err := c.cache.Set(ctx, key, string(data)); err != nil {
			zap.L().Warn("failed to cache product", zap.Int64("product_id", id), zap.Error(err))
		}
	}
	return p, nil
}
