package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/sirpyerre/storefront/internal/core/domain"
	"github.com/sirpyerre/storefront/internal/core/service"
)

// CatalogReader is the catalog view the handlers need.
type CatalogReader interface {
	Featured(ctx context.Context, limit int) ([]domain.Product, error)
	Categories(ctx context.Context) ([]domain.CategoryCount, error)
	CategoryProducts(ctx context.Context, slug string) (domain.Category, []domain.Product, error)
	AdminCatalog(ctx context.Context) (*service.AdminCatalog, error)
}

// CatalogHandler serves the public catalog and the admin catalog view.
type CatalogHandler struct {
	catalog       CatalogReader
	featuredLimit int
}

func NewCatalogHandler(catalog CatalogReader, featuredLimit int) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, featuredLimit: featuredLimit}
}

// Featured handles GET /catalog/featured.
//
// @Summary      Featured products
// @Tags         catalog
// @Produce      json
// @Param        limit  query     int  false  "Maximum number of products (negative for all)"
// @Success      200    {object}  productsResponse
// @Failure      400    {object}  errorResponse
// @Failure      502    {object}  errorResponse
// @Router       /catalog/featured [get]
func (h *CatalogHandler) Featured(c echo.Context) error {
	limit := h.featuredLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be an integer")
		}
		limit = n
	}

	products, err := h.catalog.Featured(c.Request().Context(), limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, productsResponse{Data: products})
}

// Categories handles GET /catalog/categories.
//
// @Summary      Categories with product counts
// @Tags         catalog
// @Produce      json
// @Success      200  {object}  categoriesResponse
// @Failure      502  {object}  errorResponse
// @Router       /catalog/categories [get]
func (h *CatalogHandler) Categories(c echo.Context) error {
	categories, err := h.catalog.Categories(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, categoriesResponse{Data: categories})
}

// Category handles GET /catalog/categories/:slug.
//
// @Summary      Category and its products
// @Tags         catalog
// @Produce      json
// @Param        slug  path      string  true  "Category slug"
// @Success      200   {object}  categoryResponse
// @Failure      404   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Router       /catalog/categories/{slug} [get]
func (h *CatalogHandler) Category(c echo.Context) error {
	category, products, err := h.catalog.CategoryProducts(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, categoryResponse{Category: category, Products: products})
}

// Admin handles GET /admin/catalog.
//
// @Summary      Admin catalog
// @Tags         admin
// @Produce      json
// @Security     SessionCookie
// @Success      200  {object}  service.AdminCatalog
// @Failure      401  {object}  gateResponse
// @Failure      403  {object}  gateResponse
// @Failure      502  {object}  errorResponse
// @Router       /admin/catalog [get]
func (h *CatalogHandler) Admin(c echo.Context) error {
	view, err := h.catalog.AdminCatalog(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}
