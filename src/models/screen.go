package models

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Combination modes for the revenue/profit test of a single period.
const (
	ConditionAnd = "AND"
	ConditionOr  = "OR"
)

// DateLayout is the wire format of start dates and chart dates.
const DateLayout = "2006-01-02"

// -----------------------------------------------------------------------------
// Screen request (validated by the transport layer before reaching the engine)
// -----------------------------------------------------------------------------

type MScreenRequest struct {
	StartDate             string   `json:"start_date" binding:"required,datetime=2006-01-02"`
	IndustryNames         []string `json:"industry_name"`
	MinConsecutivePeriods int      `json:"min_consecutive_periods" binding:"required,min=1"`
	RevenueGrowthRate     *float64 `json:"revenue_growth_rate" binding:"required"`
	ProfitGrowthRate      *float64 `json:"profit_growth_rate" binding:"required"`
	Condition             string   `json:"condition" binding:"required,oneof=AND OR"`
	PeriodType            string   `json:"period_type" binding:"required,oneof=year season"`
}

// -----------------------------------------------------------------------------
// Screen response
// -----------------------------------------------------------------------------

type MScreenResult struct {
	SecurityCode string `json:"security_code"`
	SecurityName string `json:"security_name"`
	Industry     string `json:"industry"`
}

type MScreenResponse struct {
	Stocks []MScreenResult `json:"stocks"`
	Count  int             `json:"count"`
}

// NewScreenResponse keeps Count in step with Stocks.
func NewScreenResponse(stocks []MScreenResult) MScreenResponse {
	if stocks == nil {
		stocks = []MScreenResult{}
	}
	return MScreenResponse{Stocks: stocks, Count: len(stocks)}
}

// -----------------------------------------------------------------------------

// CheckThresholds rejects a missing or non-finite growth rate. Zero and
// negative rates are valid.
func (r MScreenRequest) CheckThresholds() error {
	rates := []struct {
		name string
		v    *float64
	}{
		{"revenue_growth_rate", r.RevenueGrowthRate},
		{"profit_growth_rate", r.ProfitGrowthRate},
	}
	for _, rate := range rates {
		if rate.v == nil {
			return fmt.Errorf("%s is required", rate.name)
		}
		if math.IsNaN(*rate.v) || math.IsInf(*rate.v, 0) {
			return fmt.Errorf("%s must be a finite number, got %v", rate.name, *rate.v)
		}
	}
	return nil
}

// -----------------------------------------------------------------------------

// Normalized returns a copy with industry names trimmed, de-duplicated and
// sorted; blank names are dropped. An empty list means no industry filter.
func (r MScreenRequest) Normalized() MScreenRequest {
	industries := make([]string, 0, len(r.IndustryNames))
	seen := make(map[string]bool, len(r.IndustryNames))
	for _, name := range r.IndustryNames {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		industries = append(industries, name)
	}
	sort.Strings(industries)

	r.IndustryNames = industries
	return r
}
