package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sirpyerre/storefront/internal/api/middleware"
	"github.com/sirpyerre/storefront/internal/core/service"
	"github.com/sirpyerre/storefront/internal/core/stock"
)

// StockReader is the distributor stock view the handlers need.
type StockReader interface {
	View(ctx context.Context, distributorID string, q service.StockQuery) (*service.StockView, error)
}

// DistributorHandler serves the distributor portal. Routes sit behind
// Gate(distribuidor), so an identity is always present.
type DistributorHandler struct {
	stock StockReader
}

func NewDistributorHandler(stock StockReader) *DistributorHandler {
	return &DistributorHandler{stock: stock}
}

// Stock handles GET /distribuidor/stock.
//
// @Summary      Distributor stock
// @Tags         distribuidor
// @Produce      json
// @Security     SessionCookie
// @Param        level     query     string  false  "all, normal or low"
// @Param        search    query     string  false  "Case-insensitive search on name or description"
// @Param        category  query     string  false  "Category name, or all"
// @Success      200       {object}  stockResponse
// @Failure      400       {object}  errorResponse
// @Failure      401       {object}  gateResponse
// @Failure      403       {object}  gateResponse
// @Failure      502       {object}  errorResponse
// @Router       /distribuidor/stock [get]
func (h *DistributorHandler) Stock(c echo.Context) error {
	level, err := stock.ParseLevel(c.QueryParam("level"))
	if err != nil {
		return err
	}

	view, err := h.view(c, service.StockQuery{
		Level:    level,
		Search:   c.QueryParam("search"),
		Category: c.QueryParam("category"),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stockResponse{Data: view.Items, Categories: view.Categories, Summary: view.Summary})
}

// Categories handles GET /distribuidor/stock/categories.
//
// @Summary      Categories present in the distributor's stock
// @Tags         distribuidor
// @Produce      json
// @Security     SessionCookie
// @Success      200  {object}  stockCategoriesResponse
// @Failure      401  {object}  gateResponse
// @Failure      403  {object}  gateResponse
// @Router       /distribuidor/stock/categories [get]
func (h *DistributorHandler) Categories(c echo.Context) error {
	view, err := h.view(c, service.StockQuery{})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stockCategoriesResponse{Data: view.Categories})
}

// Summary handles GET /distribuidor/stock/summary.
//
// @Summary      Distributor stock totals
// @Tags         distribuidor
// @Produce      json
// @Security     SessionCookie
// @Success      200  {object}  stock.Summary
// @Failure      401  {object}  gateResponse
// @Failure      403  {object}  gateResponse
// @Router       /distribuidor/stock/summary [get]
func (h *DistributorHandler) Summary(c echo.Context) error {
	view, err := h.view(c, service.StockQuery{})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view.Summary)
}

func (h *DistributorHandler) view(c echo.Context, q service.StockQuery) (*service.StockView, error) {
	id := middleware.IdentityFrom(c)
	if id == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	return h.stock.View(c.Request().Context(), id.ID, q)
}
