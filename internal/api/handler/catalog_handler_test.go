package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/sirpyerre/storefront/internal/core/domain"
	"github.com/sirpyerre/storefront/internal/core/service"
)

type stubCatalog struct {
	lastLimit  int
	products   []domain.Product
	categories []domain.CategoryCount
	err        error
}

func (s *stubCatalog) Featured(_ context.Context, limit int) ([]domain.Product, error) {
	s.lastLimit = limit
	return s.products, s.err
}

func (s *stubCatalog) Categories(context.Context) ([]domain.CategoryCount, error) {
	return s.categories, s.err
}

func (s *stubCatalog) CategoryProducts(_ context.Context, slug string) (domain.Category, []domain.Product, error) {
	if s.err != nil {
		return domain.Category{}, nil, s.err
	}
	for _, c := range s.categories {
		if c.Slug == slug {
			return c.Category, s.products, nil
		}
	}
	return domain.Category{}, nil, domain.ErrNotFound
}

func (s *stubCatalog) AdminCatalog(context.Context) (*service.AdminCatalog, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &service.AdminCatalog{Products: s.products, Categories: s.categories}, nil
}

func newCatalogContext(target string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestCatalogHandler_Featured_DefaultLimit(t *testing.T) {
	cat := &stubCatalog{products: []domain.Product{{ID: "p1", Featured: true}}}
	h := NewCatalogHandler(cat, 4)

	c, rec := newCatalogContext("/catalog/featured")
	if err := h.Featured(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if cat.lastLimit != 4 {
		t.Fatalf("expected default limit 4, got %d", cat.lastLimit)
	}

	var resp productsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp.Data) != 1 || resp.Data[0].ID != "p1" {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestCatalogHandler_Featured_QueryLimit(t *testing.T) {
	cat := &stubCatalog{}
	h := NewCatalogHandler(cat, 4)

	c, _ := newCatalogContext("/catalog/featured?limit=-1")
	if err := h.Featured(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if cat.lastLimit != -1 {
		t.Fatalf("expected limit -1, got %d", cat.lastLimit)
	}

	c, _ = newCatalogContext("/catalog/featured?limit=many")
	var he *echo.HTTPError
	if err := h.Featured(c); !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestCatalogHandler_Category(t *testing.T) {
	cat := &stubCatalog{
		categories: []domain.CategoryCount{{Category: domain.Category{ID: "c1", Name: "Cremas", Slug: "cremas"}, ProductCount: 1}},
		products:   []domain.Product{{ID: "p1"}},
	}
	h := NewCatalogHandler(cat, 4)

	c, rec := newCatalogContext("/catalog/categories/cremas")
	c.SetParamNames("slug")
	c.SetParamValues("cremas")
	if err := h.Category(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp categoryResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Category.Name != "Cremas" || len(resp.Products) != 1 {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}

	c, _ = newCatalogContext("/catalog/categories/nada")
	c.SetParamNames("slug")
	c.SetParamValues("nada")
	if err := h.Category(c); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCatalogHandler_PropagatesBackendError(t *testing.T) {
	h := NewCatalogHandler(&stubCatalog{err: domain.ErrNetwork}, 4)

	c, _ := newCatalogContext("/catalog/categories")
	if err := h.Categories(c); !errors.Is(err, domain.ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
	c, _ = newCatalogContext("/admin/catalog")
	if err := h.Admin(c); !errors.Is(err, domain.ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
}
