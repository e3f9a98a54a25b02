package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/sirpyerre/storefront/internal/core/domain"
	"github.com/sirpyerre/storefront/internal/core/ports"
	"github.com/sirpyerre/storefront/internal/core/stock"
)

// StockQuery narrows a distributor's stock listing.
type StockQuery struct {
	Level    stock.Level
	Search   string
	Category string
}

// StockView is the distributor portal listing: the filtered items plus the
// category choices and totals over the whole assignment.
type StockView struct {
	Items      []domain.StockAssignment `json:"items"`
	Categories []string                 `json:"categories"`
	Summary    stock.Summary            `json:"summary"`
}

// StockService resolves a distributor's stock assignments.
type StockService struct {
	backend ports.CatalogBackend
	log     zerolog.Logger
}

// NewStockService returns a StockService.
func NewStockService(backend ports.CatalogBackend, log zerolog.Logger) *StockService {
	return &StockService{backend: backend, log: log}
}

// Assignments loads the distributor's stock and resolves each product's
// category name against the category list.
func (s *StockService) Assignments(ctx context.Context, distributorID string) ([]domain.StockAssignment, error) {
	var items []domain.StockAssignment
	var categories []domain.Category

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = s.backend.ListDistributorStock(gctx, distributorID)
		if err != nil {
			return fmt.Errorf("list stock: %w", err)
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

	byID := make(map[string]domain.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}

	out := make([]domain.StockAssignment, len(items))
	orphans := 0
	for i, it := range items {
		if c, ok := byID[it.Product.Category.ID]; ok {
			it.Product.Category = c.Ref()
		} else if it.Product.Category.Name == "" {
			orphans++
		}
		out[i] = it
	}
	if orphans > 0 {
		s.log.Debug().Str("distributor_id", distributorID).Int("count", orphans).
			Msg("stock items reference unknown categories")
	}
	return out, nil
}

// View applies q to the distributor's stock.
func (s *StockService) View(ctx context.Context, distributorID string, q StockQuery) (*StockView, error) {
	items, err := s.Assignments(ctx, distributorID)
	if err != nil {
		return nil, err
	}
	if q.Level == "" {
		q.Level = stock.LevelAll
	}

	filtered := stock.FilterByStockLevel(items, q.Level)
	filtered = stock.FilterBySearchAndCategory(filtered, q.Search, q.Category)

	return &StockView{
		Items:      filtered,
		Categories: stock.DistinctCategories(items),
		Summary:    stock.Summarize(items),
	}, nil
}
