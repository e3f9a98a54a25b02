package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/sirpyerre/storefront/internal/core/domain"
	"github.com/sirpyerre/storefront/internal/core/stock"
)

func stockBackend() *stubCatalogBackend {
	b := catalogFixture()
	b.stock = map[string][]domain.StockAssignment{
		"d1": {
			{ID: "s1", Quantity: 10, LowStockAlert: 2, Product: domain.Product{
				ID: "p1", Name: "Crema Hidratante", Category: domain.CategoryRef{ID: "c1"},
				DistributorPrice: decimal.NewFromInt(50), ClientPrice: decimal.NewFromInt(80),
			}},
			{ID: "s2", Quantity: 5, LowStockAlert: 5, Product: domain.Product{
				ID: "p2", Name: "Jabón de Avena", Category: domain.CategoryRef{ID: "c2"},
				DistributorPrice: decimal.NewFromInt(20), ClientPrice: decimal.NewFromInt(15),
			}},
			{ID: "s3", Quantity: 1, LowStockAlert: 3, Product: domain.Product{
				ID: "p3", Name: "Perfume", Category: domain.CategoryRef{ID: "catX"},
			}},
		},
	}
	return b
}

func TestStockService_Assignments_ResolvesCategoryNames(t *testing.T) {
	svc := NewStockService(stockBackend(), zerolog.Nop())

	items, err := svc.Assignments(context.Background(), "d1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if items[0].Product.Category.Name != "Cremas" || items[1].Product.Category.Name != "Jabones" {
		t.Fatalf("categories not resolved: %+v", items)
	}
	if items[2].Product.Category.Name != "" {
		t.Fatalf("unknown category must stay unresolved, got %q", items[2].Product.Category.Name)
	}
}

func TestStockService_View_FiltersAndSummarises(t *testing.T) {
	svc := NewStockService(stockBackend(), zerolog.Nop())

	view, err := svc.View(context.Background(), "d1", StockQuery{Level: stock.LevelLow})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(view.Items) != 2 || view.Items[0].ID != "s2" || view.Items[1].ID != "s3" {
		t.Fatalf("unexpected low items: %+v", view.Items)
	}
	if len(view.Categories) != 2 || view.Categories[0] != "Cremas" {
		t.Errorf("categories should cover the whole assignment, got %v", view.Categories)
	}
	// 30*10 + (-5)*5 + 0*1
	if view.Summary.Items != 3 || !view.Summary.PotentialProfit.Equal(decimal.NewFromInt(275)) {
		t.Errorf("unexpected summary: %+v", view.Summary)
	}
}

func TestStockService_View_SearchAndCategory(t *testing.T) {
	svc := NewStockService(stockBackend(), zerolog.Nop())

	view, err := svc.View(context.Background(), "d1", StockQuery{Search: "jabon", Category: "Jabones"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// "jabon" does not fold onto "Jabón": accents are significant.
	if len(view.Items) != 0 {
		t.Fatalf("expected no match, got %+v", view.Items)
	}

	view, _ = svc.View(context.Background(), "d1", StockQuery{Search: "JABÓN", Category: "Jabones"})
	if len(view.Items) != 1 || view.Items[0].ID != "s2" {
		t.Fatalf("expected s2, got %+v", view.Items)
	}
}

func TestStockService_View_DefaultsToAll(t *testing.T) {
	svc := NewStockService(stockBackend(), zerolog.Nop())

	view, err := svc.View(context.Background(), "d1", StockQuery{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(view.Items) != 3 {
		t.Fatalf("expected all items, got %d", len(view.Items))
	}
}

func TestStockService_UnknownDistributorIsEmpty(t *testing.T) {
	svc := NewStockService(stockBackend(), zerolog.Nop())

	view, err := svc.View(context.Background(), "nobody", StockQuery{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(view.Items) != 0 || len(view.Categories) != 0 || view.Summary.Items != 0 {
		t.Fatalf("expected empty view, got %+v", view)
	}
}

func TestStockService_BackendError(t *testing.T) {
	b := stockBackend()
	b.categoryErr = domain.ErrNetwork
	svc := NewStockService(b, zerolog.Nop())

	if _, err := svc.View(context.Background(), "d1", StockQuery{}); !errors.Is(err, domain.ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
}
