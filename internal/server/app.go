// Package server initializes and runs the application server. It opens the
// database, applies migrations, connects the optional revocation cache, and
// serves the JSON API with graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/mailvault/internal/cryptox"
	"github.com/dmitrijs2005/mailvault/internal/logging"
	"github.com/dmitrijs2005/mailvault/internal/server/cache"
	"github.com/dmitrijs2005/mailvault/internal/server/config"
	"github.com/dmitrijs2005/mailvault/internal/server/httpapi"
	"github.com/dmitrijs2005/mailvault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/mailvault/internal/server/services"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type App struct {
	config        *config.Config
	logger        logging.Logger
	db            *sql.DB
	revocations   cache.RevocationCache
	tokenService  *services.TokenService
	authService   *services.AuthService
	configService *services.ConfigService
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewJSON(os.Stdout, slog.LevelInfo)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	var revocations cache.RevocationCache
	if cfg.RedisURL != "" {
		revocations, err = cache.NewRedisCache(ctx, cfg.RedisURL, "")
		if err != nil {
			return nil, fmt.Errorf("redis init error: %w", err)
		}
	}

	cipher, err := cryptox.New(cfg.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("cipher init error: %w", err)
	}

	ts := services.NewTokenService(db, rm, cfg, revocations)
	as := services.NewAuthService(db, rm, ts)
	cs := services.NewConfigService(db, rm, cipher)

	return &App{
		config:        cfg,
		logger:        logger,
		db:            db,
		revocations:   revocations,
		tokenService:  ts,
		authService:   as,
		configService: cs,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	handlers := httpapi.NewHandlers(app.authService, app.tokenService, app.configService, app.logger)
	router := httpapi.NewRouter(handlers, httpapi.Options{
		Logger:   app.logger,
		BasePath: "/api",
	})

	srv := &http.Server{
		Addr:    app.config.EndpointAddrHTTP,
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(shutdownCtx, "http shutdown error", "error", err.Error())
		}
	}()

	app.logger.Info(ctx, "http server listening", "addr", app.config.EndpointAddrHTTP)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// startBlacklistPurge drops expired blacklist rows on an interval so the
// table does not grow without bound.
func (app *App) startBlacklistPurge(ctx context.Context) {
	interval := app.config.BlacklistPurgeInterval
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := app.tokenService.PurgeExpired(ctx)
			if err != nil {
				app.logger.Warn(ctx, "blacklist purge error", "error", err.Error())
				continue
			}
			if n > 0 {
				app.logger.Info(ctx, "blacklist purged", "removed", n)
			}
		}
	}
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startBlacklistPurge(ctx)
	}()

	wg.Wait()

	if app.revocations != nil {
		if err := app.revocations.Close(); err != nil {
			app.logger.Warn(ctx, "redis close error", "error", err.Error())
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Warn(ctx, "db close error", "error", err.Error())
	}
}
