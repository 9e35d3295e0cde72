package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"bookshelf/backend/config"

	"github.com/rs/zerolog"
)

const shutdownTimeout = 10 * time.Second

// NewHTTPServer builds the server for cfg. A non-empty addr overrides
// server.host and server.port.
func NewHTTPServer(cfg config.Server, addr string, handler http.Handler) *http.Server {
	if addr == "" {
		addr = net.JoinHostPort(cfg.Host, fmt.Sprintf("%d", cfg.Port))
	}
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.WriteTimeout,
	}
}

// Serve listens on ln until ctx is done and then shuts down gracefully.
func Serve(ctx context.Context, srv *http.Server, ln net.Listener, log zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", ln.Addr().String()).Msg("http server listening")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// ListenAndServe is Serve on a fresh TCP listener at srv.Addr.
func ListenAndServe(ctx context.Context, srv *http.Server, log zerolog.Logger) error {
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", srv.Addr, err)
	}
	return Serve(ctx, srv, ln, log)
}
