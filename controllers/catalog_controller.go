package controllers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	apperrors "storefront/errors"
	"storefront/logger"
	"storefront/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	defaultFeaturedLimit = 4
	defaultReloadTimeout = 30 * time.Second
)

type CatalogController struct {
	Catalog *services.CatalogStore
	// ReloadTimeout bounds a manual reload, which outlives the request.
	ReloadTimeout time.Duration
}

func NewCatalogController(catalog *services.CatalogStore) *CatalogController {
	return &CatalogController{Catalog: catalog, ReloadTimeout: defaultReloadTimeout}
}

// ListProducts handles GET /api/products?category=a,b&sort=price-asc
func (cc *CatalogController) ListProducts(c *gin.Context) {
	var selected []string
	for _, v := range c.QueryArray("category") {
		selected = append(selected, strings.Split(v, ",")...)
	}
	sortKey := services.ParseSortKey(c.Query("sort"))

	snap := cc.Catalog.Snapshot()
	products := services.FilterAndSort(snap.Products, selected, sortKey)

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"total":    len(products),
		"sort":     sortKey,
		"loading":  snap.Loading,
		"error":    snap.Error,
	})
}

func (cc *CatalogController) GetProduct(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		apperrors.Respond(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid product id"), nil)
		return
	}

	product, err := cc.Catalog.Product(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

func (cc *CatalogController) ListCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": cc.Catalog.Categories()})
}

func (cc *CatalogController) Status(c *gin.Context) {
	snap := cc.Catalog.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"loading":    snap.Loading,
		"error":      snap.Error,
		"products":   len(snap.Products),
		"categories": len(snap.Categories),
	})
}

// Reload re-fetches the catalog; a failure keeps the previous data. The
// catalog is shared, so a client hanging up must not cancel the fetch.
func (cc *CatalogController) Reload(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), cc.ReloadTimeout)
	defer cancel()
	if err := cc.Catalog.Reload(ctx); err != nil {
		logger.Warn(c, "catalog reload failed", zap.Error(err))
		apperrors.Respond(c, err, gin.H{"detail": cc.Catalog.Snapshot().Error})
		return
	}
	cc.Status(c)
}

// Featured returns the home page rails.
func (cc *CatalogController) Featured(c *gin.Context) {
	limit := defaultFeaturedLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			apperrors.Respond(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "limit must be a non-negative integer"), nil)
			return
		}
		limit = n
	}

	products := cc.Catalog.Products()
	c.JSON(http.StatusOK, gin.H{
		"best_sellers": services.BestSellers(products, limit),
		"top_rated":    services.TopRated(products, limit),
	})
}

// Search handles GET /api/search?q=
func (cc *CatalogController) Search(c *gin.Context) {
	q := c.Query("q")
	results := services.NewSearchIndex(cc.Catalog).Search(q)
	c.JSON(http.StatusOK, gin.H{
		"query":   q,
		"results": results,
		"total":   len(results),
	})
}
