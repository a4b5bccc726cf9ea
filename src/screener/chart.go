package screener

import (
	"sort"

	"stock-screener/src/models"
)

// DefaultChartLimit is the number of periods returned when no limit is given.
const DefaultChartLimit = 8

// ChartData projects the last limit reports, oldest first, into date, revenue
// and profit series.
func ChartData(rows []models.MFinancialReport, limit int) models.MChartData {
	if limit <= 0 {
		limit = DefaultChartLimit
	}

	sorted := make([]*models.MFinancialReport, len(rows))
	for i := range rows {
		sorted[i] = &rows[i]
	}
	sort.SliceStable(sorted, func(a, b int) bool {
		return sorted[a].ReportDate.Before(sorted[b].ReportDate)
	})
	if len(sorted) > limit {
		sorted = sorted[len(sorted)-limit:]
	}

	data := models.MChartData{
		Dates:   make([]string, 0, len(sorted)),
		Revenue: make([]*float64, 0, len(sorted)),
		Profit:  make([]*float64, 0, len(sorted)),
	}
	for _, r := range sorted {
		data.Dates = append(data.Dates, r.ReportDate.Format(models.DateLayout))
		data.Revenue = append(data.Revenue, r.TotalRevenue)
		data.Profit = append(data.Profit, r.ParentProfit)
	}
	return data
}
