package ports

import (
	"context"

	"github.com/sirpyerre/storefront/internal/core/domain"
)

// CatalogBackend serves the catalog and per-distributor stock. Every call
// returns a complete, already normalised slice.
type CatalogBackend interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	ListDistributorStock(ctx context.Context, distributorID string) ([]domain.StockAssignment, error)
}
