package main

import (
	"context"
	"fmt"
	"time"

	"stock-screener/src/cache"
	"stock-screener/src/config"
	"stock-screener/src/interfaces"
	"stock-screener/src/logger"
	"stock-screener/src/service"
	"stock-screener/src/storage"
)

// configPath is set by the global -config flag.
var configPath string

// app holds the components shared by the subcommands.
type app struct {
	config  *config.Config
	logger  *logger.Logger
	store   interfaces.IPerformanceStore
	cache   interfaces.IResultCache
	service *service.ScreenerService
}

// -----------------------------------------------------------------------------

// openStore loads the config and opens (and migrates) the report store.
func openStore() (*app, error) {
	cfg, err := config.NewConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	a := &app{config: cfg, logger: logger.NewLogger(cfg.MConfig, cfg.Name)}

	a.store, err = storage.NewStore(cfg.MConfig, a.logger)
	if err != nil {
		return nil, fmt.Errorf("init db: %w", err)
	}
	if err := a.store.Initialize(); err != nil {
		return nil, fmt.Errorf("migrate db: %w", err)
	}
	return a, nil
}

// -----------------------------------------------------------------------------

// openApp is openStore plus the result cache and the screener service.
func openApp(ctx context.Context) (*app, error) {
	a, err := openStore()
	if err != nil {
		return nil, err
	}
	a.openCache(ctx)

	a.service = service.NewScreenerService(a.config.MConfig, a.store, a.cache, a.logger.Named("ScreenerService"))
	return a, nil
}

// -----------------------------------------------------------------------------

// openCache connects the result cache, falling back to Noop when Redis is
// unreachable. It reports whether the configured cache is live.
func (a *app) openCache(ctx context.Context) bool {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var err error
	a.cache, err = cache.New(pingCtx, a.config.Cache, a.logger.Named("ResultCache"))
	if err != nil {
		// The screener is correct without the cache; run uncached.
		a.logger.Warning("Result cache unavailable, continuing without it: %v", err)
		a.cache = cache.Noop{}
		return false
	}
	return true
}

// -----------------------------------------------------------------------------

func (a *app) close() {
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Warning("closing cache: %v", err)
		}
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warning("closing store: %v", err)
	}
}
