package handler

import (
	"github.com/sirpyerre/storefront/internal/core/domain"
	"github.com/sirpyerre/storefront/internal/core/stock"
)

// errorResponse documents the error envelope rendered by the API error handler.
type errorResponse struct {
	Error string `json:"error"`
}

// gateResponse is returned when a request must go somewhere else first.
type gateResponse struct {
	Error    string `json:"error"`
	Redirect string `json:"redirect"`
}

type productsResponse struct {
	Data []domain.Product `json:"data"`
}

type categoriesResponse struct {
	Data []domain.CategoryCount `json:"data"`
}

type categoryResponse struct {
	Category domain.Category  `json:"category"`
	Products []domain.Product `json:"products"`
}

type stockResponse struct {
	Data       []domain.StockAssignment `json:"data"`
	Categories []string                 `json:"categories"`
	Summary    stock.Summary            `json:"summary"`
}

type stockCategoriesResponse struct {
	Data []string `json:"data"`
}
