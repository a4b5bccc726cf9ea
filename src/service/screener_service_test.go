package service

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"stock-screener/src/helpers"
	"stock-screener/src/logger"
	"stock-screener/src/models"
)

func f(v float64) *float64 { return &v }

type fakeStore struct {
	rows    []models.MFinancialReport
	err     error
	calls   int
	gotType string
	gotFrom time.Time
	gotInds []string
	gotCode string
}

func (s *fakeStore) Initialize() error { return nil }

func (s *fakeStore) GetPerformanceData(_ context.Context, periodType string, fromDate time.Time, industries []string) ([]models.MFinancialReport, error) {
	s.calls++
	s.gotType, s.gotFrom, s.gotInds = periodType, fromDate, industries
	return s.rows, s.err
}

func (s *fakeStore) GetSecurityHistory(_ context.Context, code, periodType string) ([]models.MFinancialReport, error) {
	s.calls++
	s.gotCode, s.gotType = code, periodType
	return s.rows, s.err
}

func (s *fakeStore) SaveReports(context.Context, []models.MFinancialReport) error { return nil }
func (s *fakeStore) Ping(context.Context) error { return s.err }
func (s *fakeStore) Close() error { return nil }

type mapCache map[string][]models.MScreenResult

func (c mapCache) Get(_ context.Context, key string) ([]models.MScreenResult, bool) {
	r, ok := c[key]
	return r, ok
}
func (c mapCache) Set(_ context.Context, key string, r []models.MScreenResult) { c[key] = r }
func (c mapCache) Invalidate(_ context.Context) error {
	clear(c)
	return nil
}
func (c mapCache) Close() error { return nil }

func report(code, day string, revenue, profit float64) models.MFinancialReport {
	d, _ := time.Parse(models.DateLayout, day)
	return models.MFinancialReport{
		SecurityCode: code,
		SecurityName: code + " Holdings",
		Industry:     "Banks",
		ReportDate:   d,
		PeriodType:   models.PeriodYear,
		RevenueYoY:   f(revenue),
		ProfitYoY:    f(profit),
		TotalRevenue: f(revenue * 10),
		ParentProfit: f(profit * 10),
	}
}

func validRequest() models.MScreenRequest {
	return models.MScreenRequest{
		StartDate:             "2020-01-01",
		IndustryNames:         []string{"Banks", " Insurance "},
		MinConsecutivePeriods: 2,
		RevenueGrowthRate:     f(0.2),
		ProfitGrowthRate:      f(0.1),
		Condition:             models.ConditionAnd,
		PeriodType:            models.PeriodYear,
	}
}

// -----------------------------------------------------------------------------

func TestFilterStocksPassesFilterToStore(t *testing.T) {
	store := &fakeStore{rows: []models.MFinancialReport{
		report("A", "2024-12-31", 25, 15),
		report("A", "2023-12-31", 30, 20),
		report("B", "2024-12-31", 25, 15),
		report("B", "2023-12-31", 5, 15),
	}}
	var logs bytes.Buffer
	svc := NewScreenerService(&models.MConfig{}, store, nil, logger.NewLoggerWithWriter(nil, "Service", &logs))

	got, err := svc.FilterStocks(context.Background(), validRequest())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].SecurityCode != "A" || got[0].SecurityName != "A Holdings" {
		t.Errorf("got %+v, want only A", got)
	}

	if store.gotType != models.PeriodYear {
		t.Errorf("period type = %q", store.gotType)
	}
	if store.gotFrom.Format(models.DateLayout) != "2020-01-01" {
		t.Errorf("from date = %v", store.gotFrom)
	}
	if len(store.gotInds) != 2 || store.gotInds[0] != "Banks" || store.gotInds[1] != "Insurance" {
		t.Errorf("industries = %q, want normalized [Banks Insurance]", store.gotInds)
	}
	if !strings.Contains(logs.String(), "filter_stocks params: start_date=2020-01-01") {
		t.Errorf("invocation parameters not logged: %s", logs.String())
	}
}

// -----------------------------------------------------------------------------

func TestFilterStocksPropagatesStoreErrors(t *testing.T) {
	cause := helpers.NewDatabaseError("query financial reports", errors.New("connection refused"))
	svc := NewScreenerService(&models.MConfig{}, &fakeStore{err: cause}, nil, logger.Discard())

	_, err := svc.FilterStocks(context.Background(), validRequest())
	if !errors.Is(err, cause) {
		t.Fatalf("err = %v, want wrapped store error", err)
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("message lost: %v", err)
	}
}

// -----------------------------------------------------------------------------

func TestFilterStocksValidation(t *testing.T) {
	store := &fakeStore{}
	svc := NewScreenerService(&models.MConfig{}, store, nil, logger.Discard())

	req := validRequest()
	req.StartDate = "01/02/2020"
	if _, err := svc.FilterStocks(context.Background(), req); !helpers.IsValidation(err) {
		t.Errorf("bad date: err = %v, want ValidationError", err)
	}

	req = validRequest()
	req.PeriodType = "month"
	if _, err := svc.FilterStocks(context.Background(), req); !helpers.IsValidation(err) {
		t.Errorf("bad period type: err = %v, want ValidationError", err)
	}

	before := store.calls
	req = validRequest()
	req.RevenueGrowthRate = f(math.NaN())
	if _, err := svc.FilterStocks(context.Background(), req); !helpers.IsValidation(err) {
		t.Errorf("NaN threshold: err = %v, want ValidationError", err)
	}

	req = validRequest()
	req.ProfitGrowthRate = nil
	if _, err := svc.FilterStocks(context.Background(), req); !helpers.IsValidation(err) {
		t.Errorf("missing threshold: err = %v, want ValidationError", err)
	}

	if store.calls != before {
		t.Errorf("store called %d times for invalid thresholds", store.calls-before)
	}
}

// -----------------------------------------------------------------------------

func TestFilterStocksUsesCache(t *testing.T) {
	store := &fakeStore{rows: []models.MFinancialReport{
		report("A", "2024-12-31", 25, 15),
		report("A", "2023-12-31", 30, 20),
	}}
	c := mapCache{}
	svc := NewScreenerService(&models.MConfig{}, store, c, logger.Discard())

	first, err := svc.FilterStocks(context.Background(), validRequest())
	if err != nil {
		t.Fatal(err)
	}

	reordered := validRequest()
	reordered.IndustryNames = []string{"Insurance", "Banks"}
	second, err := svc.FilterStocks(context.Background(), reordered)
	if err != nil {
		t.Fatal(err)
	}

	if store.calls != 1 {
		t.Errorf("store called %d times, want 1", store.calls)
	}
	if len(first) != 1 || len(second) != 1 || first[0] != second[0] {
		t.Errorf("cached result differs: %v vs %v", first, second)
	}
}

// -----------------------------------------------------------------------------

func TestFilterStocksEmptyTable(t *testing.T) {
	svc := NewScreenerService(&models.MConfig{}, &fakeStore{rows: []models.MFinancialReport{}}, nil, logger.Discard())
	got, err := svc.FilterStocks(context.Background(), validRequest())
	if err != nil {
		t.Fatal(err)
	}
	if resp := models.NewScreenResponse(got); resp.Count != 0 || len(resp.Stocks) != 0 {
		t.Errorf("got %+v, want empty response", resp)
	}
}

// -----------------------------------------------------------------------------

func TestChartData(t *testing.T) {
	store := &fakeStore{rows: []models.MFinancialReport{
		report("A", "2022-12-31", 10, 10),
		report("A", "2023-12-31", 20, 20),
		report("A", "2024-12-31", 30, 30),
	}}
	cfg := &models.MConfig{Screener: models.MScreenerConfig{ChartLimit: 2}}
	svc := NewScreenerService(cfg, store, nil, logger.Discard())

	got, err := svc.ChartData(context.Background(), "A", models.PeriodYear, 0)
	if err != nil {
		t.Fatal(err)
	}
	if store.gotCode != "A" || store.gotType != models.PeriodYear {
		t.Errorf("store got (%q, %q)", store.gotCode, store.gotType)
	}
	if len(got.Dates) != 2 || got.Dates[0] != "2023-12-31" || *got.Revenue[1] != 300 {
		t.Errorf("unexpected chart %+v", got)
	}

	if _, err := svc.ChartData(context.Background(), "A", "month", 4); !helpers.IsValidation(err) {
		t.Errorf("err = %v, want ValidationError", err)
	}
}
