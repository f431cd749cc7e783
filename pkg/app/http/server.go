package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/chainsafe/erc20-ledger/pkg/config"
)

const defaultShutdownTimeout = 30 * time.Second

// ServeAndWait binds cfg's address and serves handler until ctx is canceled
// or the server fails. In-flight requests then get shutdownTimeout to finish.
// A bind failure is returned before anything is served.
func ServeAndWait(
	ctx context.Context,
	handler http.Handler,
	logger *zap.Logger,
	cfg *config.ServerConfig,
	shutdownTimeout time.Duration,
) error {
	if handler == nil || cfg == nil {
		return errors.New("http server needs a handler and a config")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}

	ln, err := net.Listen("tcp", net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)))
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	srv := &http.Server{
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
		ErrorLog:     zap.NewStdLog(logger.Named("http")),
	}

	served := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", zap.Stringer("address", ln.Addr()))
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			served <- err
		}
		close(served)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received, draining requests", zap.Duration("timeout", shutdownTimeout))
	case serveErr = <-served:
		logger.Error("HTTP server stopped unexpectedly", zap.Error(serveErr))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	if serveErr != nil {
		return fmt.Errorf("http serve: %w", serveErr)
	}

	logger.Info("HTTP server stopped")
	return nil
}
