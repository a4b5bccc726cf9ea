package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stock-screener/src/cache"
	"stock-screener/src/helpers"
	"stock-screener/src/interfaces"
	"stock-screener/src/logger"
	"stock-screener/src/models"
	"stock-screener/src/screener"
)

// ScreenerService connects the report store, the screening engine and the
// result cache. Transports call it; it never decides the wire representation
// of a failure.
type ScreenerService struct {
	Config   *models.MConfig
	Store    interfaces.IPerformanceStore
	Cache    interfaces.IResultCache
	Screener *screener.Screener
	Logger   *logger.Logger
}

// -----------------------------------------------------------------------------

func NewScreenerService(cfg *models.MConfig, store interfaces.IPerformanceStore, resultCache interfaces.IResultCache, log *logger.Logger) *ScreenerService {
	if resultCache == nil {
		resultCache = cache.Noop{}
	}
	return &ScreenerService{
		Config:   cfg,
		Store:    store,
		Cache:    resultCache,
		Screener: screener.NewScreener(log.Named("Screener")),
		Logger:   log,
	}
}

// -----------------------------------------------------------------------------

// FilterStocks loads the report table for the request and screens it.
func (s *ScreenerService) FilterStocks(ctx context.Context, req models.MScreenRequest) ([]models.MScreenResult, error) {
	req = req.Normalized()
	s.Logger.Info("filter_stocks params: start_date=%s, industry_names=%v, period_type=%s",
		req.StartDate, req.IndustryNames, req.PeriodType)

	fromDate, err := time.Parse(models.DateLayout, req.StartDate)
	if err != nil {
		return nil, helpers.NewValidationError("start_date %q is not YYYY-MM-DD", req.StartDate)
	}
	if err := req.CheckThresholds(); err != nil {
		return nil, helpers.NewValidationError("%v", err)
	}

	key := cache.Key(req)
	if results, ok := s.Cache.Get(ctx, key); ok {
		s.Logger.Debug("cache hit for %s", key)
		return results, nil
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.Store.GetPerformanceData(ctx, req.PeriodType, fromDate, req.IndustryNames)
	if err != nil {
		s.Logger.Error("Error loading performance data: %v", err)
		return nil, fmt.Errorf("load performance data: %w", err)
	}

	results, err := s.Screener.FilterStocks(rows, req)
	if err != nil {
		s.Logger.Error("Error in screener: %v", err)
		if errors.Is(err, screener.ErrUnknownPeriodType) || errors.Is(err, screener.ErrInvalidThreshold) {
			return nil, helpers.NewValidationError("%v", err)
		}
		return nil, err
	}

	s.Logger.Info("filter_stocks matched %d of %d rows", len(results), len(rows))
	s.Cache.Set(ctx, key, results)
	return results, nil
}

// -----------------------------------------------------------------------------

// ChartData returns the last limit periods of one security. limit <= 0 uses
// the configured default.
func (s *ScreenerService) ChartData(ctx context.Context, securityCode, periodType string, limit int) (models.MChartData, error) {
	if periodType != models.PeriodYear && periodType != models.PeriodSeason {
		return models.MChartData{}, helpers.NewValidationError("period_type must be %q or %q, got %q", models.PeriodYear, models.PeriodSeason, periodType)
	}
	if securityCode == "" {
		return models.MChartData{}, helpers.NewValidationError("security code is required")
	}
	if limit <= 0 && s.Config != nil {
		limit = s.Config.Screener.ChartLimit
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.Store.GetSecurityHistory(ctx, securityCode, periodType)
	if err != nil {
		s.Logger.Error("Error loading history for %s: %v", securityCode, err)
		return models.MChartData{}, fmt.Errorf("load history for %s: %w", securityCode, err)
	}
	return screener.ChartData(rows, limit), nil
}

// -----------------------------------------------------------------------------

func (s *ScreenerService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.Config == nil || s.Config.Screener.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, time.Duration(s.Config.Screener.RequestTimeout)*time.Second)
}
