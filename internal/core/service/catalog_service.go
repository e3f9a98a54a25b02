package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/sirpyerre/storefront/internal/core/catalog"
	"github.com/sirpyerre/storefront/internal/core/domain"
	"github.com/sirpyerre/storefront/internal/core/ports"
)

// CatalogSnapshot is one complete load of products and categories.
type CatalogSnapshot struct {
	Products   []domain.Product
	Categories []domain.Category
	LoadedAt   time.Time
}

// AdminCatalog is the admin console view of the catalog.
type AdminCatalog struct {
	Products   []domain.Product       `json:"products"`
	Categories []domain.CategoryCount `json:"categories"`
}

// CatalogService serves catalog views from a cached snapshot.
type CatalogService struct {
	backend ports.CatalogBackend
	ttl     time.Duration
	log     zerolog.Logger
	now     func() time.Time

	mu        sync.Mutex
	snap      *CatalogSnapshot
	nextGen   uint64
	committed uint64
}

// NewCatalogService returns a CatalogService. A non-positive ttl disables
// caching: every call loads a fresh snapshot.
func NewCatalogService(backend ports.CatalogBackend, ttl time.Duration, log zerolog.Logger) *CatalogService {
	return &CatalogService{backend: backend, ttl: ttl, log: log, now: time.Now}
}

// Snapshot returns the cached snapshot, loading a new one when it is missing
// or older than the ttl.
func (s *CatalogService) Snapshot(ctx context.Context) (*CatalogSnapshot, error) {
	s.mu.Lock()
	snap := s.snap
	s.mu.Unlock()

	if snap != nil && s.ttl > 0 && s.now().Sub(snap.LoadedAt) < s.ttl {
		return snap, nil
	}
	return s.Refresh(ctx)
}

// Refresh loads products and categories in parallel and commits them
// together. If a load started later has already committed, this result is
// discarded and the newer snapshot is returned.
func (s *CatalogService) Refresh(ctx context.Context) (*CatalogSnapshot, error) {
	s.mu.Lock()
	s.nextGen++
	gen := s.nextGen
	s.mu.Unlock()

	var products []domain.Product
	var categories []domain.Category

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = s.backend.ListProducts(gctx)
		if err != nil {
			return fmt.Errorf("list products: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		categories, err = s.backend.ListCategories(gctx)
		if err != nil {
			return fmt.Errorf("list categories: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if orphans := catalog.Orphaned(categories, products); len(orphans) > 0 {
		ev := s.log.Debug().Int("count", len(orphans))
		if ev.Enabled() {
			ids := make([]string, len(orphans))
			for i, p := range orphans {
				ids[i] = p.ID
			}
			ev.Strs("product_ids", ids)
		}
		ev.Msg("products reference unknown categories")
	}

	fresh := &CatalogSnapshot{
		Products:   catalog.ResolveCategories(categories, products),
		Categories: categories,
		LoadedAt:   s.now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen < s.committed {
		s.log.Debug().Uint64("generation", gen).Msg("stale catalog load discarded")
		return s.snap, nil
	}
	s.snap, s.committed = fresh, gen
	return fresh, nil
}

// Featured returns up to limit featured products.
func (s *CatalogService) Featured(ctx context.Context, limit int) ([]domain.Product, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.FeaturedSubset(snap.Products, limit), nil
}

// Categories returns the categories with their product counts.
func (s *CatalogService) Categories(ctx context.Context) ([]domain.CategoryCount, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.CategoriesWithCounts(snap.Categories, snap.Products), nil
}

// CategoryProducts returns the category with the given slug and its products.
func (s *CatalogService) CategoryProducts(ctx context.Context, slug string) (domain.Category, []domain.Product, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return domain.Category{}, nil, err
	}
	cat, err := catalog.BySlug(snap.Categories, slug)
	if err != nil {
		return domain.Category{}, nil, err
	}
	return cat, catalog.ProductsInCategory(snap.Products, cat.ID), nil
}

// AdminCatalog returns every product plus the categories with counts.
func (s *CatalogService) AdminCatalog(ctx context.Context) (*AdminCatalog, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return &AdminCatalog{
		Products:   snap.Products,
		Categories: catalog.CategoriesWithCounts(snap.Categories, snap.Products),
	}, nil
}
