// Package catalog holds pure functions over already-fetched product and
// category lists. Inputs are never modified; results respect input order.
package catalog

import (
	"fmt"

	"github.com/sirpyerre/storefront/internal/core/domain"
)

// FeaturedSubset returns featured products in input order, truncated to
// limit. A negative limit disables truncation.
func FeaturedSubset(products []domain.Product, limit int) []domain.Product {
	out := make([]domain.Product, 0)
	for _, p := range products {
		if limit >= 0 && len(out) >= limit {
			break
		}
		if p.Featured {
			out = append(out, p)
		}
	}
	return out
}

// ProductsInCategory returns every product whose category ID is categoryID.
// The result is empty, never nil, when nothing matches.
func ProductsInCategory(products []domain.Product, categoryID string) []domain.Product {
	out := make([]domain.Product, 0)
	for _, p := range products {
		if p.Category.ID == categoryID {
			out = append(out, p)
		}
	}
	return out
}

// CategoriesWithCounts attaches a product count to each category, keeping the
// category order. Products whose category is absent from categories are
// orphaned and do not count towards anything. When an id repeats, only its
// first occurrence carries the count; later duplicates report zero.
func CategoriesWithCounts(categories []domain.Category, products []domain.Product) []domain.CategoryCount {
	counts := make(map[string]int, len(categories))
	for _, c := range categories {
		counts[c.ID] = 0
	}
	for _, p := range products {
		if _, ok := counts[p.Category.ID]; ok {
			counts[p.Category.ID]++
		}
	}

	seen := make(map[string]struct{}, len(categories))
	out := make([]domain.CategoryCount, len(categories))
	for i, c := range categories {
		n := 0
		if _, dup := seen[c.ID]; !dup {
			seen[c.ID] = struct{}{}
			n = counts[c.ID]
		}
		out[i] = domain.CategoryCount{Category: c, ProductCount: n}
	}
	return out
}

// Orphaned returns the products whose category does not resolve against
// categories.
func Orphaned(categories []domain.Category, products []domain.Product) []domain.Product {
	known := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		known[c.ID] = struct{}{}
	}
	var out []domain.Product
	for _, p := range products {
		if _, ok := known[p.Category.ID]; !ok {
			out = append(out, p)
		}
	}
	return out
}

// BySlug finds a category by its slug.
func BySlug(categories []domain.Category, slug string) (domain.Category, error) {
	for _, c := range categories {
		if c.Slug == slug {
			return c, nil
		}
	}
	return domain.Category{}, fmt.Errorf("category %q: %w", slug, domain.ErrNotFound)
}

// ResolveCategories fills in the name and slug of each product's category
// from categories. References that do not resolve are left as they are.
func ResolveCategories(categories []domain.Category, products []domain.Product) []domain.Product {
	byID := make(map[string]domain.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}
	out := make([]domain.Product, len(products))
	for i, p := range products {
		if c, ok := byID[p.Category.ID]; ok {
			p.Category = c.Ref()
		}
		out[i] = p
	}
	return out
}
