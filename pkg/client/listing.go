package client

import (
	"slices"
	"strings"

	"productcatalog/internal/models"
)

// Sort fields accepted by Query.
const (
	SortByName      = "name"
	SortByPrice     = "price"
	SortByCreatedAt = "created_at"
)

// Sort orders accepted by Query.
const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// Query selects and orders a product list on the client.
type Query struct {
	Search string
	SortBy string
	Order  string
}

// DefaultQuery lists newest first.
func DefaultQuery() Query {
	return Query{SortBy: SortByCreatedAt, Order: OrderDesc}
}

// FilterAndSort returns the products matching q.Search, ordered by q. The
// input slice is not modified. Equal keys may come back in any order.
func FilterAndSort(products []models.Product, q Query) []models.Product {
	term := strings.ToLower(q.Search)
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if term == "" ||
			strings.Contains(strings.ToLower(p.Name), term) ||
			strings.Contains(strings.ToLower(p.Description), term) {
			out = append(out, p)
		}
	}

	cmp := compareBy(q.SortBy)
	if q.Order == OrderDesc {
		asc := cmp
		cmp = func(a, b models.Product) int { return asc(b, a) }
	}
	slices.SortFunc(out, cmp)
	return out
}

func compareBy(field string) func(a, b models.Product) int {
	switch field {
	case SortByName:
		return func(a, b models.Product) int {
			return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		}
	case SortByPrice:
		return func(a, b models.Product) int {
			switch {
			case a.Price < b.Price:
				return -1
			case a.Price > b.Price:
				return 1
			}
			return 0
		}
	default:
		return func(a, b models.Product) int {
			return a.CreatedAt.Compare(b.CreatedAt)
		}
	}
}

// ValidSortField reports whether field is a supported sort key.
func ValidSortField(field string) bool {
	return field == SortByName || field == SortByPrice || field == SortByCreatedAt
}

// ValidOrder reports whether order is asc or desc.
func ValidOrder(order string) bool {
	return order == OrderAsc || order == OrderDesc
}
