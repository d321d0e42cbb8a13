package services

import (
	"strings"

	"storefront/models"
)

// Search returns the products whose title or description contains query,
// ignoring case, in catalog order. A blank query matches nothing; otherwise
// surrounding spaces are part of the needle.
func Search(products []models.Product, query string) []models.Product {
	results := []models.Product{}
	if strings.TrimSpace(query) == "" {
		return results
	}
	q := strings.ToLower(query)
	for _, p := range products {
		if p.Title == "" {
			continue
		}
		if strings.Contains(strings.ToLower(p.Title), q) ||
			strings.Contains(strings.ToLower(p.Description), q) {
			results = append(results, p)
		}
	}
	return results
}

// SearchIndex runs searches against the live catalog.
type SearchIndex struct {
	catalog *CatalogStore
}

func NewSearchIndex(catalog *CatalogStore) *SearchIndex {
	return &SearchIndex{catalog: catalog}
}

func (i *SearchIndex) Search(query string) []models.Product {
	return Search(i.catalog.Products(), query)
}
