package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/gmc/bootstrap/config"
	"github.com/gmc/bootstrap/handlers"
	"github.com/gmc/bootstrap/probe"
	"github.com/gmc/bootstrap/routes"
)

// App holds the wired bootstrap dependencies. This is the central wiring
// point for dependency injection: the immutable config is passed in once and
// shared read-only from here.
type App struct {
	Config     *config.Config
	Logger     *zap.Logger
	InstanceID string
	Probers    []probe.Prober

	server *http.Server
}

// New wires the application from an already-validated configuration.
func New(cfg *config.Config, logger *zap.Logger) *App {
	instanceID := uuid.NewString()
	logger = logger.With(
		zap.String("instance", instanceID),
		zap.String("network", cfg.Network),
	)

	probers := []probe.Prober{
		probe.NewPostgres(cfg.Database),
		probe.NewRedis(cfg.Cache),
	}

	health := handlers.NewHealthHandler(probers, cfg.Probe.Timeout, instanceID, cfg.Network, logger)

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           routes.SetupRoutes(health),
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("application wired",
		zap.String("database", cfg.Database.LogString()),
		zap.String("cache", cfg.Cache.LogString()),
		zap.String("http_addr", cfg.Server.Addr))

	return &App{
		Config:     cfg,
		Logger:     logger,
		InstanceID: instanceID,
		Probers:    probers,
		server:     server,
	}
}

// WaitForDependencies blocks until one connectivity validation pass succeeds,
// retrying with capped exponential backoff. Container orchestration brings
// dependencies up in arbitrary order, so transient failures here are
// expected. The loop is bounded by ctx; the caller applies the startup
// timeout.
func (a *App) WaitForDependencies(ctx context.Context) error {
	backoff := 500 * time.Millisecond
	const maxBackoff = 5 * time.Second

	for attempt := 1; ; attempt++ {
		report := probe.ValidateConnectivity(ctx, a.Config.Probe.Timeout, a.Probers...)
		if report.Healthy() {
			a.Logger.Info("all dependencies reachable", zap.Int("attempts", attempt))
			return nil
		}

		err := report.Err()
		a.Logger.Warn("dependencies not ready",
			zap.Int("attempt", attempt),
			zap.Duration("backoff", backoff),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return multierr.Append(err, ctx.Err())
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

// Run serves the health surface until ctx is cancelled, then shuts the
// server down gracefully within the configured shutdown timeout.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	a.Logger.Info("health server listening", zap.String("addr", a.server.Addr))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.Logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.Logger.Warn("graceful shutdown failed", zap.Error(err))
		return multierr.Append(err, a.server.Close())
	}

	return nil
}

// Close releases everything the app holds.
func (a *App) Close() error {
	var errs error

	if a.server != nil {
		errs = multierr.Append(errs, a.server.Close())
	}
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}

	return errs
}
