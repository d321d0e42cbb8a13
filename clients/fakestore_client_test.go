package clients

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.Path]
		if !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

const productsBody = `[
	{"id":1,"title":"Backpack","price":109.95,"description":"fits laptops","category":"men's clothing","image":"a.jpg","rating":{"rate":3.9,"count":120}},
	{"id":5,"title":"Bracelet","price":695,"description":"gold","category":"jewelery","image":"b.jpg","rating":"{\"rate\":4.6,\"count\":400}"}
]`

func TestFetchCategoriesNumbersInOrder(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"/products/categories": `["electronics","jewelery","men's clothing"]`,
	})
	c := NewFakeStoreClient(srv.URL, time.Second)

	categories, err := c.FetchCategories(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 3)
	assert.Equal(t, int64(1), categories[0].ID)
	assert.Equal(t, int64(3), categories[2].ID)
	assert.Equal(t, "men's clothing", categories[2].Name)
}

func TestFetchProductsResolvesCategoriesAndRatings(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"/products/categories": `["electronics","jewelery","men's clothing"]`,
		"/products":            productsBody,
	})
	c := NewFakeStoreClient(srv.URL, time.Second)
	ctx := context.Background()

	_, err := c.FetchCategories(ctx)
	require.NoError(t, err)
	products, err := c.FetchProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, int64(3), products[0].Category.ID)
	assert.Equal(t, int64(3), products[0].CategoryID)
	assert.Equal(t, "109.95", products[0].Price.String())
	assert.Equal(t, 3.9, products[0].Rating.Rate)

	assert.Equal(t, int64(2), products[1].Category.ID)
	assert.Equal(t, 400, products[1].Rating.Count)
}

func TestFetchProductsRejectsNonArray(t *testing.T) {
	srv := newTestServer(t, map[string]string{"/products": `{"error":"nope"}`})
	c := NewFakeStoreClient(srv.URL, time.Second)

	_, err := c.FetchProducts(context.Background())
	assert.ErrorContains(t, err, "malformed response")
}

func TestFetchProductsRejectsMissingFields(t *testing.T) {
	srv := newTestServer(t, map[string]string{"/products": `[{"id":1,"price":2,"category":"x"}]`})
	c := NewFakeStoreClient(srv.URL, time.Second)

	_, err := c.FetchProducts(context.Background())
	assert.ErrorContains(t, err, "missing required field")
}

func TestFetchProductsUpstreamError(t *testing.T) {
	srv := newTestServer(t, map[string]string{})
	c := NewFakeStoreClient(srv.URL, time.Second)

	_, err := c.FetchProducts(context.Background())
	assert.ErrorContains(t, err, "status=404")
}

func TestFetchProduct(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"/products/1":   `{"id":1,"title":"Backpack","price":109.95,"category":"men's clothing"}`,
		"/products/999": ``,
	})
	c := NewFakeStoreClient(srv.URL, time.Second)
	ctx := context.Background()

	p, err := c.FetchProduct(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "Backpack", p.Title)
	// categories were never fetched
	assert.Equal(t, int64(0), p.Category.ID)

	missing, err := c.FetchProduct(ctx, 999)
	assert.NoError(t, err)
	assert.Nil(t, missing)
}
