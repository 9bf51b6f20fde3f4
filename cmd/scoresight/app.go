package main

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"scoresight/internal/auth"
	"scoresight/internal/backend"
	"scoresight/internal/config"
	"scoresight/internal/storage"
)

// app agrupa lo que comparten los subcomandos: config, logger, store y cliente.
type app struct {
	cfg        *config.Config
	logger     *zap.Logger
	store      storage.Store
	client     *backend.HTTPClient
	closeStore func()
}

func newApp(ctx context.Context, opts *rootOptions) (*app, error) {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := zap.NewNop()
	if opts != nil && opts.verbose {
		logger = zap.NewExample()
	}

	store, closeStore, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	return &app{
		cfg:        cfg,
		logger:     logger,
		store:      store,
		client:     backend.NewHTTPClient(cfg.APIBaseURL, cfg.HTTPTimeout, logger),
		closeStore: closeStore,
	}, nil
}

func (a *app) authSession() *auth.Session {
	return auth.NewSession(a.client, a.store, a.logger)
}

func (a *app) Close() {
	a.closeStore()
	_ = a.logger.Sync()
}
