package app

import (
	"context"
	"errors"
	"fmt"
	stdhttp "net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/lobbychat/internal/config"
	"github.com/vovakirdan/lobbychat/internal/core"
	"github.com/vovakirdan/lobbychat/internal/presence"
	transporthttp "github.com/vovakirdan/lobbychat/internal/transport/http"
	"github.com/vovakirdan/lobbychat/internal/upload"
)

// App wires together core and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	hub             *core.Hub
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	uploads, err := upload.NewStore(cfg.Upload.Dir, cfg.Upload.URLPrefix, cfg.Upload.MaxBytes)
	if err != nil {
		return nil, fmt.Errorf("init upload store: %w", err)
	}
	logger.Info().Str("dir", uploads.Dir()).Str("url_prefix", uploads.URLPrefix()).Msg("upload store ready")

	hub := core.NewHub(presence.NewRegistry(), cfg.Limits, logger)
	server := transporthttp.NewServer(hub, uploads, cfg, logger)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		hub:             hub,
		log:             logger,
	}, nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go a.hub.Run(hubCtx)

	serverErr := make(chan error, 1)
	go func() {
		a.log.Info().Str("addr", a.server.Addr).Msg("http server listening")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		// stopping the hub first closes the hijacked WebSocket sessions
		stopHub()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return <-serverErr
	}
}
