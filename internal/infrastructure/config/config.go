package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Backend modes.
const (
	BackendMongo = "mongo"
	BackendHTTP  = "http"
)

type Config struct {
	Port      string        `env:"PORT,      default=8080"`
	Env       string        `env:"ENV,       default=development"`
	LogLevel  string        `env:"LOG_LEVEL, default=info"`
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL, default=24h"`

	Backend BackendConfig
	Mongo   MongoConfig
	Redis   RedisConfig
	Session SessionConfig
	Catalog CatalogConfig
	Login   LoginConfig

	AuditWorkers int `env:"AUDIT_WORKERS, default=4"`
}

// BackendConfig selects where credentials and catalog data come from.
type BackendConfig struct {
	Mode    string        `env:"BACKEND,         default=mongo"`
	URL     string        `env:"BACKEND_URL"`
	Timeout time.Duration `env:"BACKEND_TIMEOUT, default=10s"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=storefront"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

type SessionConfig struct {
	TTL           time.Duration `env:"SESSION_TTL,    default=24h"`
	Cookie        string        `env:"SESSION_COOKIE, default=sid"`
	SecureCookies bool          `env:"SECURE_COOKIES, default=false"`
}

type CatalogConfig struct {
	CacheTTL      time.Duration `env:"CATALOG_CACHE_TTL, default=1m"`
	FeaturedLimit int           `env:"FEATURED_LIMIT,    default=8"`
}

// LoginConfig throttles login attempts per client IP.
type LoginConfig struct {
	Rate  float64 `env:"LOGIN_RATE,  default=1"`
	Burst int     `env:"LOGIN_BURST, default=5"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints envconfig cannot express.
func (c *Config) Validate() error {
	var errs []error
	switch c.Backend.Mode {
	case BackendMongo:
		if c.JWTSecret == "" {
			errs = append(errs, errors.New("JWT_SECRET is required when BACKEND=mongo"))
		}
	case BackendHTTP:
		if c.Backend.URL == "" {
			errs = append(errs, errors.New("BACKEND_URL is required when BACKEND=http"))
		}
	default:
		errs = append(errs, fmt.Errorf("BACKEND must be %q or %q, got %q", BackendMongo, BackendHTTP, c.Backend.Mode))
	}
	if c.Session.Cookie == "" {
		errs = append(errs, errors.New("SESSION_COOKIE must not be empty"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// IsProduction reports whether ENV is production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
