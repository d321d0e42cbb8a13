package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storefront/models"
	"storefront/services"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ctxSource fails like a real source once its context is done.
type ctxSource struct {
	hadDeadline bool
}

func (s *ctxSource) FetchCategories(ctx context.Context) ([]models.Category, error) {
	_, s.hadDeadline = ctx.Deadline()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []models.Category{{ID: 1, Name: "jewelery"}}, nil
}

func (s *ctxSource) FetchProducts(ctx context.Context) ([]models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []models.Product{{ID: 1, Title: "Silver Ring", Price: decimal.NewFromInt(25)}}, nil
}

func (s *ctxSource) FetchProduct(context.Context, int64) (*models.Product, error) {
	return nil, nil
}

func TestReloadSurvivesClientDisconnect(t *testing.T) {
	gin.SetMode(gin.TestMode)
	source := &ctxSource{}
	cc := NewCatalogController(services.NewCatalogStore(source, nil))
	cc.ReloadTimeout = time.Minute

	r := gin.New()
	r.POST("/api/catalog/reload", cc.Reload)

	gone, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/api/catalog/reload", nil).WithContext(gone)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(1), body["products"])
	assert.Equal(t, "", body["error"])
	assert.True(t, source.hadDeadline)

	snap := cc.Catalog.Snapshot()
	assert.Empty(t, snap.Error)
	assert.Len(t, snap.Products, 1)
}
