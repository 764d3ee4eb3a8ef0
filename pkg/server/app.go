package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marketpulse/internal/domain/repository"
	"marketpulse/internal/usecase"
	"marketpulse/pkg/cache"
	"marketpulse/pkg/config"
	xhttp "marketpulse/pkg/http"
	applogger "marketpulse/pkg/logger"
)

// App encapsulates the application lifecycle: the background refresh loop,
// the HTTP server, and orderly teardown of infrastructure clients.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	aggregator *usecase.Aggregator
	store      cache.Store
	publisher  repository.Publisher
	handler    xhttp.Handler

	httpServer *xhttp.Server
}

// New creates the application with all dependencies. publisher may be nil.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	aggregator *usecase.Aggregator,
	store cache.Store,
	publisher repository.Publisher,
	handler xhttp.Handler,
) *App {
	return &App{
		cfg:        cfg,
		log:        log,
		aggregator: aggregator,
		store:      store,
		publisher:  publisher,
		handler:    handler,
	}
}

// Run starts the refresh loop and the HTTP server, then blocks until
// interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metricsPath := ""
	if a.cfg.Metrics.Enabled {
		metricsPath = a.cfg.Metrics.Path
	}
	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsPath(metricsPath),
	)

	go a.refreshLoop(ctx)

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("serving",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.Duration("refresh_interval", a.cfg.Refresh.Interval),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	cancel()
	return a.shutdown()
}

// refreshLoop runs one refresh immediately, then on every tick until the
// context is cancelled. Refresh errors are cancellation only; per-source
// failures are absorbed inside the cycle.
func (a *App) refreshLoop(ctx context.Context) {
	if _, err := a.aggregator.Refresh(ctx); err != nil {
		return
	}

	ticker := time.NewTicker(a.cfg.Refresh.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := a.aggregator.Refresh(ctx); err != nil {
				return
			}
		}
	}
}

// shutdown stops the HTTP server and closes infrastructure clients.
func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.log.Warn("publisher close error", applogger.Error(err))
		}
	}
	if err := a.store.Close(); err != nil {
		a.log.Warn("cache close error", applogger.Error(err))
	}

	a.log.Info("shutdown complete")
	return nil
}
