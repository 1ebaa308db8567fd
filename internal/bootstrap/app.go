package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/yanqian/jeevamithra/internal/domain/news"
	"github.com/yanqian/jeevamithra/internal/infra/config"
)

// App encapsulates the HTTP server and the news refresher lifecycle.
type App struct {
	cfg       *config.Config
	logger    *slog.Logger
	server    *http.Server
	refresher *news.Refresher
	cleanup   func()
}

// Cleanup releases pools and clients opened while wiring.
type Cleanup func()

// NewApp is used by Wire to build the runnable app.
func NewApp(cfg *config.Config, logger *slog.Logger, server *http.Server, refresher *news.Refresher, cleanup Cleanup) *App {
	return &App{
		cfg:       cfg,
		logger:    logger.With("component", "bootstrap"),
		server:    server,
		refresher: refresher,
		cleanup:   cleanup,
	}
}

// Run starts the HTTP server and the refresher, and blocks until shutdown.
func (a *App) Run(ctx context.Context) error {
	if a.cleanup != nil {
		defer a.cleanup()
	}
	if a.refresher != nil && a.cfg.News.RefreshEnabled {
		if err := a.refresher.Start(); err != nil {
			return err
		}
		defer a.refresher.Stop()
	}

	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("http server starting", "address", a.cfg.HTTP.Address)
		if err := a.server.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		a.logger.Info("shutdown signal received")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
