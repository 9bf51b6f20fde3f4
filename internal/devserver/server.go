package devserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"scoresight/internal/config"
)

// Server es el backend de desarrollo listo para escuchar.
type Server struct {
	http   *http.Server
	logger *zap.Logger
}

// New construye el servidor con registro de usuarios en memoria.
func New(cfg *config.Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.JWTSecret == "" {
		logger.Warn("jwt secret not configured")
	}
	tokens := NewTokenService(cfg.JWTSecret, time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute)
	handlers := NewHandlers(logger, NewUserRegistry(), tokens)
	return &Server{
		http: &http.Server{
			Addr:              ":" + cfg.HTTPPort,
			Handler:           NewRouter(logger, handlers, tokens),
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}
}

// Run escucha hasta que ctx se cancela y luego apaga el servidor.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting dev server", zap.String("addr", s.http.Addr))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
