// Package runtime wires configuration, storage, mail, and the HTTP server
// into a runnable signup service.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	app "github.com/MaatFonseca/api-token-sale/internal/app"
	"github.com/MaatFonseca/api-token-sale/internal/app/httpapi"
	"github.com/MaatFonseca/api-token-sale/internal/app/mailer"
	"github.com/MaatFonseca/api-token-sale/internal/app/storage"
	memorystore "github.com/MaatFonseca/api-token-sale/internal/app/storage/memory"
	postgresstore "github.com/MaatFonseca/api-token-sale/internal/app/storage/postgres"
	redisstore "github.com/MaatFonseca/api-token-sale/internal/app/storage/redis"
	"github.com/MaatFonseca/api-token-sale/internal/config"
	"github.com/MaatFonseca/api-token-sale/internal/metrics"
	"github.com/MaatFonseca/api-token-sale/internal/middleware"
	"github.com/MaatFonseca/api-token-sale/pkg/logger"
)

// Application wires core dependencies and manages the HTTP server lifecycle.
type Application struct {
	cfg        *config.Config
	log        *logger.Logger
	httpServer *http.Server
	db         *sqlx.DB
}

// NewApplication constructs the application from the environment.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log := logger.NewDefault("api-token-sale")

	store, db, err := buildStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("configure store: %w", err)
	}

	application := app.New(app.Deps{
		Store:  store,
		Mailer: buildMailer(cfg, log),
	}, log)

	m := metrics.New()
	handler := httpapi.NewHandler(application, httpapi.Config{
		Metrics:   m,
		AdminAuth: middleware.NewAdminAuth(cfg.AdminJWTSecret, log),
		RateLimit: middleware.NewRateLimiter(cfg.RateLimitPerSecond, cfg.RateLimitBurst, log),
		CORS:      middleware.NewCORSMiddleware(cfg.CORSOrigins),
	})

	return &Application{
		cfg: cfg,
		log: log,
		httpServer: &http.Server{
			Addr:              cfg.ListenAddr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		db: db,
	}, nil
}

// Run starts the HTTP server and blocks until the context is cancelled.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.log.Infof("HTTP server listening on %s", a.cfg.ListenAddr)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// Shutdown gracefully shuts down the HTTP server and closes the database.
func (a *Application) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.WithError(err).Warn("error closing database connection")
		}
	}
	return nil
}

func buildStore(cfg *config.Config) (storage.ApplicationStore, *sqlx.DB, error) {
	switch cfg.StorageBackend {
	case config.BackendMemory:
		return memorystore.New(), nil, nil

	case config.BackendPostgres:
		db, err := sqlx.Connect("postgres", cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := runMigrations(db, cfg.MigrationsPath); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("run migrations: %w", err)
		}
		return postgresstore.New(db), db, nil

	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		store := redisstore.New(client)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			return nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		return store, nil, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

func runMigrations(db *sqlx.DB, path string) error {
	driver, err := migratepg.WithInstance(db.DB, &migratepg.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithDatabaseInstance("file://"+path, "postgres", driver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

func buildMailer(cfg *config.Config, log *logger.Logger) mailer.Mailer {
	if log == nil {
		log = logger.NewDefault("runtime")
	}
	if cfg.SMTPHost == "" {
		log.Warn("SMTP_HOST not set; emails are logged, not sent")
		return mailer.NewLog(log)
	}
	return mailer.NewSMTP(mailer.SMTPConfig{
		Host:    cfg.SMTPHost,
		Port:    cfg.SMTPPort,
		From:    cfg.MailFrom,
		BaseURL: cfg.SignupBaseURL,
	})
}
