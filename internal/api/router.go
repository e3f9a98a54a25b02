package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	_ "github.com/sirpyerre/storefront/docs"
	"github.com/sirpyerre/storefront/internal/api/handler"
	"github.com/sirpyerre/storefront/internal/api/middleware"
	"github.com/sirpyerre/storefront/internal/core/domain"
	"github.com/sirpyerre/storefront/internal/core/ports"
)

// Dependencies are the collaborators the HTTP layer is built from.
type Dependencies struct {
	Log zerolog.Logger

	Auth    ports.AuthBackend
	Audit   ports.AuditRecorder
	Catalog handler.CatalogReader
	Stock   handler.StockReader

	Session middleware.SessionConfig
	Checks  map[string]handler.Check

	FeaturedLimit int
	LoginRate     float64
	LoginBurst    int
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(echoprometheus.NewMiddleware("storefront"))

	// --- Ops routes (no session) ---
	e.GET("/health", handler.NewHealthHandler().Liveness)
	e.GET("/health/ready", handler.NewReadinessHandler(d.Checks).Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Session-bound routes ---
	d.Session.Log = d.Log
	app := e.Group("", middleware.Session(d.Session))

	authHandler := handler.NewAuthHandler(d.Auth, d.Audit, d.Log)
	catalogHandler := handler.NewCatalogHandler(d.Catalog, d.FeaturedLimit)
	distributorHandler := handler.NewDistributorHandler(d.Stock)

	loginLimiter := loginRateLimiter(d.LoginRate, d.LoginBurst)
	app.POST("/auth/login", authHandler.Login, loginLimiter)
	app.POST("/admin/login", authHandler.AdminLogin, loginLimiter)
	app.POST("/distribuidor/login", authHandler.DistributorLogin, loginLimiter)
	app.POST("/auth/logout", authHandler.Logout)
	app.GET("/auth/me", authHandler.Me)

	catalog := app.Group("/catalog")
	catalog.GET("/featured", catalogHandler.Featured)
	catalog.GET("/categories", catalogHandler.Categories)
	catalog.GET("/categories/:slug", catalogHandler.Category)

	admin := app.Group("/admin", middleware.Gate(domain.RoleAdmin))
	admin.GET("/catalog", catalogHandler.Admin)

	distributor := app.Group("/distribuidor", middleware.Gate(domain.RoleDistributor))
	distributor.GET("/stock", distributorHandler.Stock)
	distributor.GET("/stock/categories", distributorHandler.Categories)
	distributor.GET("/stock/summary", distributorHandler.Summary)

	return e
}

// loginRateLimiter throttles login attempts per client IP.
func loginRateLimiter(perSecond float64, burst int) echo.MiddlewareFunc {
	if perSecond <= 0 {
		perSecond = 1
	}
	if burst <= 0 {
		burst = 5
	}
	store := echomiddleware.NewRateLimiterMemoryStoreWithConfig(echomiddleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(perSecond),
		Burst:     burst,
		ExpiresIn: 10 * time.Minute,
	})
	return echomiddleware.RateLimiter(store)
}

// requestLogger writes one zerolog entry per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	})
}
