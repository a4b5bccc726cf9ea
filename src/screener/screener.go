package screener

import (
	"fmt"
	"sort"

	"stock-screener/src/logger"
	"stock-screener/src/models"

	"github.com/shopspring/decimal"
)

// PlaceholderName stands in for missing display fields.
const PlaceholderName = "N/A"

// Screener evaluates the consecutive-period growth predicate over a table of
// financial reports. It holds no per-request state.
type Screener struct {
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewScreener(log *logger.Logger) *Screener {
	if log == nil {
		log = logger.Discard()
	}
	return &Screener{Logger: log}
}

// -----------------------------------------------------------------------------

// FilterStocks returns one result per security whose most recent
// MinConsecutivePeriods reports all pass the growth test. Within a period the
// revenue and profit tests are combined with req.Condition; across periods the
// results are always combined with AND.
//
// Results follow the order in which securities first appear in rows. The
// request is assumed to be validated already.
func (s *Screener) FilterStocks(rows []models.MFinancialReport, req models.MScreenRequest) ([]models.MScreenResult, error) {
	metrics, err := metricsFor(req.PeriodType)
	if err != nil {
		return nil, err
	}
	if err := req.CheckThresholds(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidThreshold, err)
	}

	results := []models.MScreenResult{}
	if len(rows) == 0 {
		s.Logger.Debug("No report rows to screen")
		return results, nil
	}

	t := threshold{
		revenue:     scaleThreshold(*req.RevenueGrowthRate),
		profit:      scaleThreshold(*req.ProfitGrowthRate),
		requireBoth: req.Condition == models.ConditionAnd,
	}

	groups, order := groupBySecurity(rows)
	for _, code := range order {
		idx := groups[code]
		if !t.windowPasses(recentWindow(rows, idx, req.MinConsecutivePeriods), metrics) {
			continue
		}
		results = append(results, toResult(&rows[idx[0]]))
	}

	s.Logger.Debug("Screened %d securities (%d rows): %d qualified", len(order), len(rows), len(results))
	return results, nil
}

// -----------------------------------------------------------------------------

type threshold struct {
	revenue     decimal.Decimal
	profit      decimal.Decimal
	requireBoth bool
}

// periodPasses applies the combination mode to one report.
func (t threshold) periodPasses(r *models.MFinancialReport, m metricPair) bool {
	revenueOK := metricValue(m.revenue(r)).GreaterThanOrEqual(t.revenue)
	profitOK := metricValue(m.profit(r)).GreaterThanOrEqual(t.profit)
	if t.requireBoth {
		return revenueOK && profitOK
	}
	return revenueOK || profitOK
}

// windowPasses requires every period of the window to pass. A nil window
// means the security has too little history.
func (t threshold) windowPasses(window []*models.MFinancialReport, m metricPair) bool {
	if window == nil {
		return false
	}
	for _, r := range window {
		if !t.periodPasses(r, m) {
			return false
		}
	}
	return true
}

// -----------------------------------------------------------------------------

// groupBySecurity maps each security to the indices of its rows, in input
// order, and returns the securities in order of first appearance.
func groupBySecurity(rows []models.MFinancialReport) (map[string][]int, []string) {
	groups := make(map[string][]int)
	var order []string
	for i := range rows {
		code := rows[i].SecurityCode
		if _, seen := groups[code]; !seen {
			order = append(order, code)
		}
		groups[code] = append(groups[code], i)
	}
	return groups, order
}

// -----------------------------------------------------------------------------

// recentWindow returns the n most recent reports of a group, newest first, or
// nil when the group has fewer than n reports.
func recentWindow(rows []models.MFinancialReport, idx []int, n int) []*models.MFinancialReport {
	if len(idx) < n {
		return nil
	}
	if n < 0 {
		n = 0
	}

	group := make([]*models.MFinancialReport, len(idx))
	for i, j := range idx {
		group[i] = &rows[j]
	}
	sort.SliceStable(group, func(a, b int) bool {
		return group[a].ReportDate.After(group[b].ReportDate)
	})
	return group[:n]
}

// -----------------------------------------------------------------------------

func toResult(r *models.MFinancialReport) models.MScreenResult {
	return models.MScreenResult{
		SecurityCode: r.SecurityCode,
		SecurityName: orPlaceholder(r.SecurityName),
		Industry:     orPlaceholder(r.Industry),
	}
}

func orPlaceholder(s string) string {
	if s == "" {
		return PlaceholderName
	}
	return s
}
