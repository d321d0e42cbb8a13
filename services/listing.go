package services

import (
	"sort"
	"strings"

	"storefront/models"
)

type SortKey string

const (
	SortDefault   SortKey = "default"
	SortPriceAsc  SortKey = "price-asc"
	SortPriceDesc SortKey = "price-desc"
	SortTitleAsc  SortKey = "title-asc"
	SortTitleDesc SortKey = "title-desc"
)

// ParseSortKey maps a query value to a SortKey. Unknown values sort as default.
func ParseSortKey(v string) SortKey {
	switch k := SortKey(strings.TrimSpace(v)); k {
	case SortPriceAsc, SortPriceDesc, SortTitleAsc, SortTitleDesc:
		return k
	default:
		return SortDefault
	}
}

// FilterAndSort keeps products whose category name is in categories (all
// products when categories is empty) and orders the result by key. The input
// slice is never reordered.
func FilterAndSort(products []models.Product, categories []string, key SortKey) []models.Product {
	selected := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		if c = strings.TrimSpace(c); c != "" {
			selected[c] = struct{}{}
		}
	}

	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if len(selected) > 0 {
			if _, ok := selected[p.Category.Name]; !ok {
				continue
			}
		}
		out = append(out, p)
	}

	switch key {
	case SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price.LessThan(out[j].Price) })
	case SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price.GreaterThan(out[j].Price) })
	case SortTitleAsc:
		sort.SliceStable(out, func(i, j int) bool { return strings.Compare(out[i].Title, out[j].Title) < 0 })
	case SortTitleDesc:
		sort.SliceStable(out, func(i, j int) bool { return strings.Compare(out[i].Title, out[j].Title) > 0 })
	}
	return out
}

// BestSellers returns up to n products with the most ratings.
func BestSellers(products []models.Product, n int) []models.Product {
	return topN(products, n, func(a, b models.Product) bool { return a.Rating.Count > b.Rating.Count })
}

// TopRated returns up to n products with the highest average rating.
func TopRated(products []models.Product, n int) []models.Product {
	return topN(products, n, func(a, b models.Product) bool { return a.Rating.Rate > b.Rating.Rate })
}

func topN(products []models.Product, n int, less func(a, b models.Product) bool) []models.Product {
	out := append([]models.Product{}, products...)
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	if n >= 0 && n < len(out) {
		out = out[:n]
	}
	return out
}
