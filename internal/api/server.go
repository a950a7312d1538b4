package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/jengzang/zonemap-backend-go/internal/logging"
)

// NewServer wraps handler in an http.Server with conservative timeouts.
// WriteTimeout stays generous because snapshot rendering is the slowest route.
func NewServer(handler http.Handler) *http.Server {
	return &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// Serve runs srv on ln until ctx is done, then stops accepting connections
// and waits up to grace for in-flight requests to finish. It returns nil on
// a clean drain, so callers can release storage right after it.
func Serve(ctx context.Context, srv *http.Server, ln net.Listener, grace time.Duration, log logging.Logger) error {
	if log == nil {
		log = logging.NewNopLogger()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	log.Info("[Server] listening", logging.String("addr", ln.Addr().String()))

	select {
	case err := <-errCh:
		return fmt.Errorf("server stopped unexpectedly: %w", err)
	case <-ctx.Done():
	}

	log.Info("[Server] shutting down", logging.Duration("grace", grace))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to drain server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server stopped unexpectedly: %w", err)
	}
	log.Info("[Server] stopped")
	return nil
}
