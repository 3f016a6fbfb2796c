package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/phamiz/ecommerce-backend/pkg/logger"
)

// Server wraps the HTTP listener with sane timeouts and graceful shutdown.
type Server struct {
	httpServer *http.Server
	logg       *logger.Logger
}

func NewServer(port string, handler http.Handler, logg *logger.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              ":" + port,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		logg: logg,
	}
}

// Start blocks serving requests until ctx is cancelled, then drains
// in-flight requests before returning.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logg.Info(s.logg.WithField(ctx, "addr", s.httpServer.Addr), "server.listening")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serving http: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	s.logg.Info(ctx, "server.stopped")
	return nil
}
