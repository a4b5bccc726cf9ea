package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"stock-screener/src/helpers"
	"stock-screener/src/logger"
	"stock-screener/src/models"

	"github.com/gin-gonic/gin"
)

type stubService struct {
	results   []models.MScreenResult
	chart     models.MChartData
	err       error
	lastReq   models.MScreenRequest
	lastCode  string
	lastType  string
	lastLimit int
}

func (s *stubService) FilterStocks(_ context.Context, req models.MScreenRequest) ([]models.MScreenResult, error) {
	s.lastReq = req
	return s.results, s.err
}

func (s *stubService) ChartData(_ context.Context, code, periodType string, limit int) (models.MChartData, error) {
	s.lastCode, s.lastType, s.lastLimit = code, periodType, limit
	return s.chart, s.err
}

type stubStore struct {
	pingErr error
}

func (s *stubStore) Initialize() error { return nil }
func (s *stubStore) Ping(context.Context) error { return s.pingErr }
func (s *stubStore) Close() error { return nil }
func (s *stubStore) SaveReports(context.Context, []models.MFinancialReport) error { return nil }

func (s *stubStore) GetPerformanceData(context.Context, string, time.Time, []string) ([]models.MFinancialReport, error) {
	return nil, nil
}

func (s *stubStore) GetSecurityHistory(context.Context, string, string) ([]models.MFinancialReport, error) {
	return nil, nil
}

// -----------------------------------------------------------------------------

func newTestServer(svc *stubService, store *stubStore) http.Handler {
	gin.SetMode(gin.TestMode)
	cfg := &models.MConfig{Name: "test", LogLevel: "ERROR", Storage: models.MStorageConfig{DBType: "sqlite"}}
	return NewScreenerServer(cfg, svc, store, logger.Discard()).Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

const validBody = `{
	"start_date": "2020-01-01",
	"industry_name": ["Tech"],
	"min_consecutive_periods": 3,
	"revenue_growth_rate": 0.2,
	"profit_growth_rate": 0.2,
	"condition": "AND",
	"period_type": "year"
}`

// -----------------------------------------------------------------------------

func TestRoot(t *testing.T) {
	w := do(t, newTestServer(&stubService{}, &stubStore{}), http.MethodGet, "/", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" || body["message"] == "" {
		t.Errorf("body = %v", body)
	}
	if w.Header().Get(requestIDHeader) == "" {
		t.Error("missing request id header")
	}
}

func TestHealth(t *testing.T) {
	w := do(t, newTestServer(&stubService{}, &stubStore{}), http.MethodGet, "/api/health", "")
	if w.Code != http.StatusOK {
		t.Errorf("healthy store: status = %d", w.Code)
	}

	w = do(t, newTestServer(&stubService{}, &stubStore{pingErr: errors.New("down")}), http.MethodGet, "/api/health", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("failing store: status = %d", w.Code)
	}
}

func TestScreenerList(t *testing.T) {
	svc := &stubService{results: []models.MScreenResult{
		{SecurityCode: "000001", SecurityName: "Alpha", Industry: "Tech"},
		{SecurityCode: "000002", SecurityName: "Beta", Industry: "Tech"},
	}}
	w := do(t, newTestServer(svc, &stubStore{}), http.MethodPost, "/api/stock_screener/list", validBody)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}

	var resp models.MScreenResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Count != 2 || len(resp.Stocks) != 2 || resp.Stocks[0].SecurityCode != "000001" {
		t.Errorf("resp = %+v", resp)
	}
	if svc.lastReq.MinConsecutivePeriods != 3 || svc.lastReq.PeriodType != "year" || *svc.lastReq.RevenueGrowthRate != 0.2 {
		t.Errorf("request not forwarded: %+v", svc.lastReq)
	}
}

func TestScreenerListEmpty(t *testing.T) {
	w := do(t, newTestServer(&stubService{}, &stubStore{}), http.MethodPost, "/api/stock_screener/list", validBody)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"stocks":[]`) || !strings.Contains(w.Body.String(), `"count":0`) {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestScreenerListValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"start_date":`},
		{"bad date", strings.Replace(validBody, "2020-01-01", "01/01/2020", 1)},
		{"bad condition", strings.Replace(validBody, `"AND"`, `"XOR"`, 1)},
		{"bad period type", strings.Replace(validBody, `"year"`, `"month"`, 1)},
		{"zero periods", strings.Replace(validBody, `"min_consecutive_periods": 3`, `"min_consecutive_periods": 0`, 1)},
		{"missing revenue rate", strings.Replace(validBody, "\t\"revenue_growth_rate\": 0.2,\n", "", 1)},
		{"missing profit rate", strings.Replace(validBody, "\t\"profit_growth_rate\": 0.2,\n", "", 1)},
		{"null profit rate", strings.Replace(validBody, `"profit_growth_rate": 0.2`, `"profit_growth_rate": null`, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{}
			w := do(t, newTestServer(svc, &stubStore{}), http.MethodPost, "/api/stock_screener/list", tt.body)
			if w.Code != http.StatusUnprocessableEntity {
				t.Errorf("status = %d, want 422", w.Code)
			}
			if !strings.Contains(w.Body.String(), `"detail"`) {
				t.Errorf("body = %s", w.Body.String())
			}
		})
	}
}

func TestScreenerListZeroRatesAreValid(t *testing.T) {
	body := strings.Replace(validBody, `"revenue_growth_rate": 0.2`, `"revenue_growth_rate": 0`, 1)
	body = strings.Replace(body, `"profit_growth_rate": 0.2`, `"profit_growth_rate": -0.5`, 1)

	svc := &stubService{}
	w := do(t, newTestServer(svc, &stubStore{}), http.MethodPost, "/api/stock_screener/list", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	if svc.lastReq.RevenueGrowthRate == nil || *svc.lastReq.RevenueGrowthRate != 0 || *svc.lastReq.ProfitGrowthRate != -0.5 {
		t.Errorf("rates not forwarded: %+v", svc.lastReq)
	}
}

func TestScreenerListErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", helpers.NewValidationError("bad start date"), http.StatusUnprocessableEntity},
		{"database", helpers.NewDatabaseError("query failed", errors.New("connection refused")), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, newTestServer(&stubService{err: tt.err}, &stubStore{}), http.MethodPost, "/api/stock_screener/list", validBody)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
			var body map[string]string
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatal(err)
			}
			if body["detail"] != tt.err.Error() {
				t.Errorf("detail = %q, want %q", body["detail"], tt.err.Error())
			}
		})
	}
}

func TestStockChart(t *testing.T) {
	rev := 10.5
	svc := &stubService{chart: models.MChartData{
		Dates:   []string{"2024-03-31"},
		Revenue: []*float64{&rev},
		Profit:  []*float64{nil},
	}}
	h := newTestServer(svc, &stubStore{})

	w := do(t, h, http.MethodGet, "/api/stock_screener/chart/000001", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if svc.lastCode != "000001" || svc.lastType != models.PeriodSeason || svc.lastLimit != 0 {
		t.Errorf("forwarded %q %q %d", svc.lastCode, svc.lastType, svc.lastLimit)
	}
	if !strings.Contains(w.Body.String(), `"profit":[null]`) {
		t.Errorf("body = %s", w.Body.String())
	}

	w = do(t, h, http.MethodGet, "/api/stock_screener/chart/000001?period_type=year&limit=4", "")
	if w.Code != http.StatusOK || svc.lastType != models.PeriodYear || svc.lastLimit != 4 {
		t.Errorf("status=%d type=%q limit=%d", w.Code, svc.lastType, svc.lastLimit)
	}

	w = do(t, h, http.MethodGet, "/api/stock_screener/chart/000001?limit=abc", "")
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("bad limit: status = %d", w.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	h := newTestServer(&stubService{}, &stubStore{})
	req := httptest.NewRequest(http.MethodOptions, "/api/stock_screener/list", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("allow-origin = %q", got)
	}
}
