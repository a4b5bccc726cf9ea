package screener

import (
	"errors"
	"fmt"
	"math"

	"stock-screener/src/models"

	"github.com/shopspring/decimal"
)

// MissingMetricSentinel replaces an absent growth metric. It fails any
// realistic threshold, so a gap in the window disqualifies the security.
const MissingMetricSentinel = -999.0

var (
	ErrUnknownPeriodType = errors.New("unknown period type")
	ErrInvalidThreshold  = errors.New("invalid growth threshold")
)

var hundred = decimal.NewFromInt(100)

// -----------------------------------------------------------------------------

type metricAccessor func(r *models.MFinancialReport) *float64

// metricPair selects the revenue and profit growth columns of a report.
type metricPair struct {
	revenue metricAccessor
	profit  metricAccessor
}

// Annual reports compare year over year, quarterly reports compare against the
// previous quarter.
var periodMetrics = map[string]metricPair{
	models.PeriodYear: {
		revenue: func(r *models.MFinancialReport) *float64 { return r.RevenueYoY },
		profit:  func(r *models.MFinancialReport) *float64 { return r.ProfitYoY },
	},
	models.PeriodSeason: {
		revenue: func(r *models.MFinancialReport) *float64 { return r.RevenueQoQ },
		profit:  func(r *models.MFinancialReport) *float64 { return r.ProfitQoQ },
	},
}

// -----------------------------------------------------------------------------

func metricsFor(periodType string) (metricPair, error) {
	m, ok := periodMetrics[periodType]
	if !ok {
		return metricPair{}, fmt.Errorf("%w: %q", ErrUnknownPeriodType, periodType)
	}
	return m, nil
}

// -----------------------------------------------------------------------------

// metricValue returns the metric as a decimal with the sentinel substituted
// for absent, NaN and infinite values.
func metricValue(v *float64) decimal.Decimal {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return decimal.NewFromFloat(MissingMetricSentinel)
	}
	return decimal.NewFromFloat(*v)
}

// -----------------------------------------------------------------------------

// scaleThreshold converts a fractional rate (0.2) to the percent scale of
// stored metrics (20). Decimal keeps 0.07 -> 7 exact.
func scaleThreshold(rate float64) decimal.Decimal {
	return decimal.NewFromFloat(rate).Mul(hundred)
}
