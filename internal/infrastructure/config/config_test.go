package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "s3cret",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" || cfg.Backend.Mode != BackendMongo {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Session.Cookie != "sid" || cfg.Session.TTL != 24*time.Hour {
		t.Fatalf("unexpected session defaults: %+v", cfg.Session)
	}
	if cfg.Catalog.CacheTTL != time.Minute || cfg.Catalog.FeaturedLimit != 8 {
		t.Fatalf("unexpected catalog defaults: %+v", cfg.Catalog)
	}
	if cfg.Login.Burst != 5 || cfg.AuditWorkers != 4 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoad_HTTPBackendRequiresURL(t *testing.T) {
	_, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"BACKEND": "http",
	}))
	if err == nil || !strings.Contains(err.Error(), "BACKEND_URL") {
		t.Fatalf("expected BACKEND_URL error, got %v", err)
	}

	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"BACKEND":         "http",
		"BACKEND_URL":     "https://api.example.com",
		"BACKEND_TIMEOUT": "3s",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Backend.Timeout != 3*time.Second {
		t.Fatalf("unexpected timeout: %v", cfg.Backend.Timeout)
	}
}

func TestLoad_MongoBackendRequiresSecret(t *testing.T) {
	if _, err := load(context.Background(), envconfig.MapLookuper(nil)); err == nil {
		t.Fatalf("expected error without JWT_SECRET")
	}
}

func TestLoad_UnknownBackend(t *testing.T) {
	_, err := load(context.Background(), envconfig.MapLookuper(map[string]string{"BACKEND": "sql"}))
	if err == nil || !strings.Contains(err.Error(), "BACKEND must be") {
		t.Fatalf("expected backend mode error, got %v", err)
	}
}
