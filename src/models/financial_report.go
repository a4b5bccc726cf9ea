package models

import "time"

// Period types as accepted on the wire and stored in the report_type column.
const (
	PeriodYear   = "year"
	PeriodSeason = "season"
)

// MFinancialReport is one reported period for one security.
// Growth metrics are percent-scaled (20.5 means 20.5%); nil means not reported.
type MFinancialReport struct {
	SecurityCode string    `json:"security_code"`
	SecurityName string    `json:"security_name"`
	Industry     string    `json:"industry"`
	ReportDate   time.Time `json:"report_date"`
	PeriodType   string    `json:"period_type"`
	RevenueYoY   *float64  `json:"revenue_yoy"`
	ProfitYoY    *float64  `json:"profit_yoy"`
	RevenueQoQ   *float64  `json:"revenue_qoq"`
	ProfitQoQ    *float64  `json:"profit_qoq"`
	TotalRevenue *float64  `json:"total_revenue"`
	ParentProfit *float64  `json:"parent_profit"`
}

// MChartData is the trimmed revenue/profit time series of one security.
type MChartData struct {
	Dates   []string   `json:"dates"`
	Revenue []*float64 `json:"revenue"`
	Profit  []*float64 `json:"profit"`
}
