package domain

import "github.com/shopspring/decimal"

// CategoryRef is the category a product points at. Backends may send only
// the ID; Name and Slug are filled in when the reference is embedded or
// resolved against the category list.
type CategoryRef struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
	Slug string `json:"slug,omitempty"`
}

// Product is a catalog entry. Read-only from the portal's point of view.
type Product struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Description      string          `json:"description,omitempty"`
	Category         CategoryRef     `json:"category"`
	DistributorPrice decimal.Decimal `json:"distributor_price"`
	ClientPrice      decimal.Decimal `json:"client_price"`
	Featured         bool            `json:"featured"`
	Image            string          `json:"image,omitempty"`
}

// Category groups products for browsing.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
}

// Ref returns the reference form of the category.
func (c Category) Ref() CategoryRef {
	return CategoryRef{ID: c.ID, Name: c.Name, Slug: c.Slug}
}

// CategoryCount is a category annotated with how many products resolve to it.
type CategoryCount struct {
	Category
	ProductCount int `json:"product_count"`
}
