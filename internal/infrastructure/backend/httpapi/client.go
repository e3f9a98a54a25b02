// Package httpapi talks to the remote storefront REST backend and implements
// ports.AuthBackend and ports.CatalogBackend over it.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/sirpyerre/storefront/internal/api/metrics"
	"github.com/sirpyerre/storefront/internal/core/domain"
	"github.com/sirpyerre/storefront/internal/core/session"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 4 << 20
)

// Client is a REST backend client. Safe for concurrent use.
type Client struct {
	base *url.URL
	http *http.Client
	log  zerolog.Logger
}

// New returns a Client for baseURL. A non-positive timeout means 10s.
func New(baseURL string, timeout time.Duration, log zerolog.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("httpapi: invalid base url %q", baseURL)
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{base: u, http: &http.Client{Timeout: timeout}, log: log}, nil
}

// Login posts the credentials to /auth/login.
func (c *Client) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	body, err := c.do(ctx, "login", http.MethodPost, "/auth/login", "", loginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	var resp loginResponse
	if err := json.Unmarshal(unwrapData(body), &resp); err != nil {
		return nil, fmt.Errorf("decode login response: %w", domain.ErrNetwork)
	}
	sess := resp.session()
	if sess.Token == "" || sess.Identity.ID == "" {
		return nil, fmt.Errorf("login response without token or id: %w", domain.ErrNetwork)
	}
	if sess.Identity.Email == "" {
		sess.Identity.Email = email
	}
	return sess, nil
}

// Logout revokes token on the backend.
func (c *Client) Logout(ctx context.Context, token string) error {
	_, err := c.do(ctx, "logout", http.MethodPost, "/auth/logout", token, nil)
	return err
}

// ListProducts fetches /products.
func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	body, err := c.do(ctx, "products", http.MethodGet, "/products", session.TokenFromContext(ctx), nil)
	if err != nil {
		return nil, err
	}
	items, err := decodeList[wireProduct](body)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Product, len(items))
	for i, p := range items {
		out[i] = p.toDomain()
	}
	return out, nil
}

// ListCategories fetches /categories.
func (c *Client) ListCategories(ctx context.Context) ([]domain.Category, error) {
	body, err := c.do(ctx, "categories", http.MethodGet, "/categories", session.TokenFromContext(ctx), nil)
	if err != nil {
		return nil, err
	}
	items, err := decodeList[wireCategory](body)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Category, len(items))
	for i, cat := range items {
		out[i] = cat.toDomain()
	}
	return out, nil
}

// ListDistributorStock fetches /distributors/:id/stock.
func (c *Client) ListDistributorStock(ctx context.Context, distributorID string) ([]domain.StockAssignment, error) {
	path := "/distributors/" + url.PathEscape(distributorID) + "/stock"
	body, err := c.do(ctx, "stock", http.MethodGet, path, session.TokenFromContext(ctx), nil)
	if err != nil {
		return nil, err
	}
	items, err := decodeList[wireStock](body)
	if err != nil {
		return nil, err
	}
	out := make([]domain.StockAssignment, len(items))
	for i, s := range items {
		out[i] = s.toDomain()
	}
	return out, nil
}

// do performs one request and returns the body of a 2xx response. 400, 401
// and 403 become ErrInvalidCredentials, 404 ErrNotFound and everything else
// ErrNetwork. The backend's message travels in a BackendError.
func (c *Client) do(ctx context.Context, op, method, path, token string, payload interface{}) (body []byte, err error) {
	start := time.Now()
	defer func() {
		result := "ok"
		if err != nil {
			result = "error"
		}
		metrics.BackendRequestDuration.WithLabelValues(op, result).Observe(time.Since(start).Seconds())
	}()

	var reqBody io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s request: %w", op, err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.log.Warn().Err(err).Str("operation", op).Msg("backend request failed")
		return nil, fmt.Errorf("%s: %w", op, domain.ErrNetwork)
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", op, domain.ErrNetwork)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}

	msg := errorMessage(body)
	c.log.Debug().Str("operation", op).Int("status", resp.StatusCode).Str("message", msg).Msg("backend rejected request")

	switch {
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &domain.BackendError{Err: domain.ErrInvalidCredentials, Message: msg}
	case resp.StatusCode == http.StatusNotFound:
		return nil, &domain.BackendError{Err: domain.ErrNotFound, Message: msg}
	default:
		return nil, &domain.BackendError{Err: domain.ErrNetwork, Message: msg}
	}
}

// errorMessage extracts "message" or "error" from a JSON error body.
func errorMessage(body []byte) string {
	var e struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err != nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

// unwrapData returns the "data" member of an object body, or body itself.
func unwrapData(body []byte) []byte {
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '{' && json.Unmarshal(trimmed, &env) == nil && len(env.Data) > 0 && string(env.Data) != "null" {
		return env.Data
	}
	return trimmed
}

var errUnexpectedShape = errors.New("expected a JSON array or a {\"data\": [...]} envelope")

// decodeList accepts a bare JSON array or an envelope with a data array and
// returns the elements. null and an empty envelope decode to an empty slice.
func decodeList[T any](body []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return []T{}, nil
	}

	switch trimmed[0] {
	case '[':
	case '{':
		var env struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, fmt.Errorf("decode envelope: %w: %v", domain.ErrNetwork, err)
		}
		trimmed = bytes.TrimSpace(env.Data)
		if len(trimmed) == 0 || string(trimmed) == "null" {
			return []T{}, nil
		}
		if trimmed[0] != '[' {
			return nil, fmt.Errorf("decode list: %w: %v", domain.ErrNetwork, errUnexpectedShape)
		}
	default:
		return nil, fmt.Errorf("decode list: %w: %v", domain.ErrNetwork, errUnexpectedShape)
	}

	out := make([]T, 0)
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return nil, fmt.Errorf("decode list: %w: %v", domain.ErrNetwork, err)
	}
	return out, nil
}
