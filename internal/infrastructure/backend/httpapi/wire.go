package httpapi

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/sirpyerre/storefront/internal/core/domain"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type wireUser struct {
	ID    string `json:"id"`
	OID   string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (u wireUser) id() string { return firstNonEmpty(u.ID, u.OID) }

// loginResponse accepts { id, name, role, token } as well as
// { token, user: { ... } }.
type loginResponse struct {
	wireUser
	Token       string    `json:"token"`
	AccessToken string    `json:"access_token"`
	User        *wireUser `json:"user"`
}

func (r loginResponse) session() *domain.Session {
	u := r.wireUser
	if r.User != nil {
		u = *r.User
	}
	return &domain.Session{
		Identity: domain.Identity{ID: u.id(), Name: u.Name, Email: u.Email, Role: domain.Role(u.Role)},
		Token:    firstNonEmpty(r.Token, r.AccessToken),
	}
}

type wireCategory struct {
	ID          string `json:"id"`
	OID         string `json:"_id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

func (c wireCategory) toDomain() domain.Category {
	return domain.Category{ID: firstNonEmpty(c.ID, c.OID), Name: c.Name, Slug: c.Slug, Description: c.Description}
}

// categoryRef is either a bare category id or an embedded category object.
type categoryRef struct {
	domain.CategoryRef
}

func (r *categoryRef) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	if b[0] == '"' {
		return json.Unmarshal(b, &r.ID)
	}
	var c wireCategory
	if err := json.Unmarshal(b, &c); err != nil {
		return err
	}
	r.CategoryRef = c.toDomain().Ref()
	return nil
}

type wireProduct struct {
	ID                    string           `json:"id"`
	OID                   string           `json:"_id"`
	Name                  string           `json:"name"`
	Description           string           `json:"description"`
	Category              categoryRef      `json:"category"`
	CategoryID            string           `json:"category_id"`
	DistributorPrice      *decimal.Decimal `json:"distributorPrice"`
	DistributorPriceSnake *decimal.Decimal `json:"distributor_price"`
	ClientPrice           *decimal.Decimal `json:"clientPrice"`
	ClientPriceSnake      *decimal.Decimal `json:"client_price"`
	Featured              bool             `json:"featured"`
	Image                 string           `json:"image"`
}

func (p wireProduct) toDomain() domain.Product {
	ref := p.Category.CategoryRef
	if ref.ID == "" {
		ref.ID = p.CategoryID
	}
	return domain.Product{
		ID:               firstNonEmpty(p.ID, p.OID),
		Name:             p.Name,
		Description:      p.Description,
		Category:         ref,
		DistributorPrice: firstDecimal(p.DistributorPrice, p.DistributorPriceSnake),
		ClientPrice:      firstDecimal(p.ClientPrice, p.ClientPriceSnake),
		Featured:         p.Featured,
		Image:            p.Image,
	}
}

// productRef is either a bare product id or an embedded product object.
type productRef struct {
	wireProduct
}

func (r *productRef) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	if b[0] == '"' {
		return json.Unmarshal(b, &r.ID)
	}
	return json.Unmarshal(b, &r.wireProduct)
}

type wireStock struct {
	ID                 string     `json:"id"`
	OID                string     `json:"_id"`
	Product            productRef `json:"product"`
	Quantity           int        `json:"quantity"`
	LowStockAlert      *int       `json:"lowStockAlert"`
	LowStockAlertSnake *int       `json:"low_stock_alert"`
}

func (s wireStock) toDomain() domain.StockAssignment {
	alert := 0
	switch {
	case s.LowStockAlert != nil:
		alert = *s.LowStockAlert
	case s.LowStockAlertSnake != nil:
		alert = *s.LowStockAlertSnake
	}
	return domain.StockAssignment{
		ID:            firstNonEmpty(s.ID, s.OID),
		Product:       s.Product.toDomain(),
		Quantity:      max(s.Quantity, 0),
		LowStockAlert: max(alert, 0),
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstDecimal(vals ...*decimal.Decimal) decimal.Decimal {
	for _, v := range vals {
		if v != nil {
			return *v
		}
	}
	return decimal.Zero
}
