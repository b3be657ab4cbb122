package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/upbanklab/upgate/internal/gateway/http"
	"github.com/upbanklab/upgate/internal/gateway/metrics"
	"github.com/upbanklab/upgate/internal/gateway/resolver"
	"github.com/upbanklab/upgate/internal/gateway/store"
	"github.com/upbanklab/upgate/internal/gateway/store/drivers/sqlite"
	"github.com/upbanklab/upgate/internal/gateway/upstream"
	"github.com/upbanklab/upgate/pkg/cryptox"
	"github.com/upbanklab/upgate/pkg/jwtx"
	"github.com/upbanklab/upgate/pkg/slogx"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the gateway with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db        store.Store
	verifier  jwtx.Verifier
	upbank    *upstream.Client
	collector *metrics.Collector
	resolvers *resolver.Resolvers

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "upgate",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if cfg.IdentitySecret == "" {
		return nil, errors.New("GATEWAY_IDENTITY_SECRET is required")
	}
	app.verifier = jwtx.NewVerifierHS256([]byte(cfg.IdentitySecret), cfg.Issuer)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.upbank = upstream.NewClient(cfg.UpbankBaseURL, nil)

	if cfg.MetricsEnabled {
		app.collector = metrics.NewCollector(prometheus.DefaultRegisterer)
	}

	app.resolvers = resolver.New(app.db.Secrets(), app.upbank, recorderOrNil(app.collector))
	app.initHTTP()

	return app, nil
}

// recorderOrNil avoids handing the resolvers a non-nil interface wrapping a
// nil *Collector.
func recorderOrNil(c *metrics.Collector) resolver.Recorder {
	if c == nil {
		return nil
	}
	return c
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.logger.Info("gateway starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down gateway...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("gateway stopped")
	return nil
}

// initDatabase opens the store, wires the secret sealer and applies
// migrations.
func (app *Application) initDatabase() error {
	sealer, err := cryptox.NewSealerFromPath(app.cfg.MasterKeyPath)
	if err != nil {
		return fmt.Errorf("failed to initialize secret sealer: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn, sealer)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.verifier,
		BuildVersion,
		app.db,
		app.collector,
		app.logger,
	)
	router.Resolvers = app.resolvers
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
