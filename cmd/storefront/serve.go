package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sirpyerre/storefront/internal/api"
	"github.com/sirpyerre/storefront/internal/api/handler"
	"github.com/sirpyerre/storefront/internal/api/middleware"
	"github.com/sirpyerre/storefront/internal/core/ports"
	"github.com/sirpyerre/storefront/internal/core/service"
	"github.com/sirpyerre/storefront/internal/infrastructure/backend/httpapi"
	"github.com/sirpyerre/storefront/internal/infrastructure/config"
	mongodb "github.com/sirpyerre/storefront/internal/infrastructure/db/mongo"
	redisdb "github.com/sirpyerre/storefront/internal/infrastructure/db/redis"
	"github.com/sirpyerre/storefront/internal/infrastructure/queue"
	"github.com/sirpyerre/storefront/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
}

func serve(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "storefront",
	})

	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(dctx); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect failed")
		}
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		return err
	}
	defer rdb.Close()

	auditRepo := mongodb.NewAuditRepository(db)
	indexed := []interface{ EnsureIndexes(context.Context) error }{auditRepo}

	var (
		auth    ports.AuthBackend
		catalog ports.CatalogBackend
		tokens  middleware.TokenParser
	)
	switch cfg.Backend.Mode {
	case config.BackendHTTP:
		client, err := httpapi.New(cfg.Backend.URL, cfg.Backend.Timeout, logger.Component("httpapi"))
		if err != nil {
			return err
		}
		auth, catalog = client, client
	default:
		users := mongodb.NewAuthRepository(db)
		repo := mongodb.NewCatalogRepository(db)
		svc := service.NewAuthService(users, cfg.JWTSecret, cfg.TokenTTL, redisdb.NewRevokedTokens(rdb))
		auth, catalog, tokens = svc, repo, svc
		indexed = append(indexed, users, repo)
	}

	for _, r := range indexed {
		if err := mongodb.EnsureIndexes(ctx, r); err != nil {
			return err
		}
	}

	dispatcher := queue.NewDispatcher(cfg.AuditWorkers,
		service.NewAuditService(auditRepo, logger.Component("audit")),
		logger.Component("dispatcher"))
	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()
	dispatcher.Start(workerCtx)

	sessions := redisdb.NewSessions(rdb, cfg.Session.TTL)

	e := api.NewRouter(api.Dependencies{
		Log:     log,
		Auth:    auth,
		Audit:   dispatcher,
		Catalog: service.NewCatalogService(catalog, cfg.Catalog.CacheTTL, logger.Component("catalog")),
		Stock:   service.NewStockService(catalog, logger.Component("stock")),
		Session: middleware.SessionConfig{
			Stores:     func(sid string) ports.SessionStore { return sessions.For(sid) },
			CookieName: cfg.Session.Cookie,
			TTL:        cfg.Session.TTL,
			Secure:     cfg.Session.SecureCookies,
			Tokens:     tokens,
		},
		Checks: map[string]handler.Check{
			"mongo": func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) },
			"redis": func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		},
		FeaturedLimit: cfg.Catalog.FeaturedLimit,
		LoginRate:     cfg.Login.Rate,
		LoginBurst:    cfg.Login.Burst,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("backend", cfg.Backend.Mode).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}

	// Flush queued audit events before the Mongo client goes away.
	dispatcher.Close()
	dispatcher.Wait()
	return nil
}
