// Package stock classifies and filters a distributor's stock assignments.
package stock

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"

	"github.com/sirpyerre/storefront/internal/core/domain"
)

// Level selects stock items by their low-stock classification.
type Level string

const (
	LevelAll    Level = "all"
	LevelNormal Level = "normal"
	LevelLow    Level = "low"
)

// AllCategories is the category filter value that matches every item.
const AllCategories = "all"

// ParseLevel maps a query value to a Level. Empty means LevelAll.
func ParseLevel(s string) (Level, error) {
	switch Level(strings.ToLower(strings.TrimSpace(s))) {
	case "", LevelAll:
		return LevelAll, nil
	case LevelNormal:
		return LevelNormal, nil
	case LevelLow:
		return LevelLow, nil
	}
	return "", fmt.Errorf("%w: %q", domain.ErrInvalidStockLevel, s)
}

// IsLowStock reports whether the item is at or below its alert threshold.
func IsLowStock(item domain.StockAssignment) bool {
	return item.Quantity <= item.LowStockAlert
}

// FilterByStockLevel keeps the items matching level. LevelAll returns items
// unchanged.
func FilterByStockLevel(items []domain.StockAssignment, level Level) []domain.StockAssignment {
	if level == LevelAll {
		return items
	}
	wantLow := level == LevelLow
	out := make([]domain.StockAssignment, 0, len(items))
	for _, it := range items {
		if IsLowStock(it) == wantLow {
			out = append(out, it)
		}
	}
	return out
}

// FilterBySearchAndCategory keeps items whose product name or description
// contains term (case-insensitive) and whose category name equals category.
// An empty term matches everything, as does category "all" or "".
func FilterBySearchAndCategory(items []domain.StockAssignment, term, category string) []domain.StockAssignment {
	fold := cases.Fold()
	needle := fold.String(term)
	anyCategory := category == "" || category == AllCategories

	out := make([]domain.StockAssignment, 0, len(items))
	for _, it := range items {
		if !anyCategory && it.Product.Category.Name != category {
			continue
		}
		if needle != "" &&
			!strings.Contains(fold.String(it.Product.Name), needle) &&
			!strings.Contains(fold.String(it.Product.Description), needle) {
			continue
		}
		out = append(out, it)
	}
	return out
}

// Margin is the per-unit difference between client and distributor price.
// It is reported as is, negative values included.
func Margin(item domain.StockAssignment) decimal.Decimal {
	return item.Product.ClientPrice.Sub(item.Product.DistributorPrice)
}

// DistinctCategories lists category names present in items in first-seen
// order. Items without a resolved category name are skipped.
func DistinctCategories(items []domain.StockAssignment) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, it := range items {
		name := it.Product.Category.Name
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// Summary aggregates a distributor's stock for the dashboard.
type Summary struct {
	Items           int             `json:"items"`
	Units           int             `json:"units"`
	LowStock        int             `json:"low_stock"`
	PotentialProfit decimal.Decimal `json:"potential_profit"`
}

// Summarize counts items, units and low-stock items, and sums margin × quantity.
func Summarize(items []domain.StockAssignment) Summary {
	s := Summary{Items: len(items), PotentialProfit: decimal.Zero}
	for _, it := range items {
		s.Units += it.Quantity
		if IsLowStock(it) {
			s.LowStock++
		}
		s.PotentialProfit = s.PotentialProfit.Add(Margin(it).Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return s
}
