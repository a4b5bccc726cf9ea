package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"stock-screener/src/interfaces"
	"stock-screener/src/logger"
	"stock-screener/src/models"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// ScreenerServer
// -----------------------------------------------------------------------------

type ScreenerServer struct {
	Config  *models.MConfig
	Logger  *logger.Logger
	Service interfaces.IScreenerService
	Store   interfaces.IPerformanceStore
	engine  *gin.Engine
	http    *http.Server
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewScreenerServer(cfg *models.MConfig, svc interfaces.IScreenerService, store interfaces.IPerformanceStore, log *logger.Logger) *ScreenerServer {
	// Set Gin mode
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &ScreenerServer{
		Config:  cfg,
		Logger:  log,
		Service: svc,
		Store:   store,
		engine:  gin.New(),
	}
	s.http = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.engine.Use(gin.Recovery())
	s.engine.Use(CORSMiddleware())
	s.engine.Use(RequestIDMiddleware())
	s.engine.Use(LoggingMiddleware(log))

	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *ScreenerServer) setupRoutes() {
	s.engine.GET("/", s.getRoot)
	s.engine.GET("/api/health", s.getHealth)

	screener := s.engine.Group("/api/stock_screener")
	{
		screener.POST("/list", s.postScreenerList)
		screener.GET("/chart/:sec_code", s.getStockChart)
	}
}

// -----------------------------------------------------------------------------

// Handler exposes the router, mainly for httptest.
func (s *ScreenerServer) Handler() http.Handler {
	return s.engine
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

// Start blocks until the server stops. A clean Stop returns nil.
func (s *ScreenerServer) Start() error {
	s.Logger.Info("Starting server on %s", s.http.Addr)

	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------

// Stop drains in-flight requests; safe to call before Start.
func (s *ScreenerServer) Stop(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
