package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"alerthub_backend/internal/alerts"
	"alerthub_backend/internal/auth"
	"alerthub_backend/internal/email"
	"alerthub_backend/internal/geo"
	apphttp "alerthub_backend/internal/http"
	"alerthub_backend/internal/http/router"
	"alerthub_backend/internal/roles"
	"alerthub_backend/internal/stats"
	"alerthub_backend/internal/storage"
	"alerthub_backend/internal/users"
	"alerthub_backend/platform/config"
	"alerthub_backend/platform/db"
	"alerthub_backend/platform/events"
	"alerthub_backend/platform/logger"
	"alerthub_backend/platform/validator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, "migrations")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New()

	sender := initEmailSender(cfg, log)
	store := initObjectStore(ctx, cfg, log)
	geoCache := initGeoCache(cfg, log)

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	authModule := auth.NewModule(pool, cfg, sender, val, log)
	usersModule := users.NewModule(pool, val, log)
	rolesModule := roles.NewModule(pool)
	alertsModule := alerts.NewModule(pool, store, eventBus, val, log)
	statsModule := stats.NewModule(pool)
	geoModule := geo.NewModule(cfg, geoCache, log)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config: cfg,
		Logger: log,
		Health: db.NewPoolAdapter(pool),
		Modules: []apphttp.Module{
			authModule,
			usersModule,
			rolesModule,
			alertsModule,
			statsModule,
			geoModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// initEmailSender picks SMTP when configured, otherwise a no-op sender so
// local development works without a mail server.
func initEmailSender(cfg *config.Config, log *logger.Logger) email.Sender {
	if cfg.GetSMTPHost() == "" {
		log.Warn("SMTP_HOST not configured; outgoing email disabled")
		return email.NoopSender{}
	}
	return email.NewSMTPSender(cfg)
}

// initObjectStore connects MinIO when enabled. A nil store disables evidence
// uploads; alerts without attachments still work.
func initObjectStore(ctx context.Context, cfg *config.Config, log *logger.Logger) storage.ObjectStore {
	if !cfg.IsMinIOEnabled() {
		log.Warn("MinIO not configured; alert evidence uploads disabled")
		return nil
	}

	store, err := storage.NewMinIOStore(cfg)
	if err != nil {
		log.Error("failed to initialize storage service", "error", err)
		panic("failed to initialize storage service: " + err.Error())
	}
	if err := withRetry(ctx, log, "ensure evidence bucket", 5, 2*time.Second, func() error {
		return store.EnsureBucket(ctx)
	}); err != nil {
		log.Error("failed to ensure storage bucket exists", "error", err)
		panic("failed to ensure storage bucket exists: " + err.Error())
	}
	log.Info("storage service initialized", "bucket", cfg.GetMinioBucketEvidence())
	return store
}

// initGeoCache uses Redis when REDIS_URL is set so cached geocoding results
// survive restarts and are shared between replicas. Falls back to an
// in-process cache.
func initGeoCache(cfg *config.Config, log *logger.Logger) geo.Cache {
	if cfg.GetRedisURL() == "" {
		log.Info("geocoding cache using in-process store")
		return geo.NewMemoryCache()
	}

	opts, err := redis.ParseURL(cfg.GetRedisURL())
	if err != nil {
		log.Error("invalid REDIS_URL; falling back to in-process geocoding cache", "error", err)
		return geo.NewMemoryCache()
	}
	log.Info("geocoding cache using redis", "addr", opts.Addr)
	return geo.NewRedisCache(redis.NewClient(opts))
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
