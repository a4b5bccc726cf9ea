package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"stock-screener/src/models"
)

// Column names understood in the header row. Upper-case aliases match the
// vendor export the report table is usually filled from.
var columnAliases = map[string]string{
	"security_code":        "security_code",
	"security_name":        "security_name",
	"industry":             "industry",
	"report_date":          "report_date",
	"report_type":          "report_type",
	"period_type":          "report_type",
	"revenue_yoy":          "revenue_yoy",
	"profit_yoy":           "profit_yoy",
	"revenue_qoq":          "revenue_qoq",
	"profit_qoq":           "profit_qoq",
	"total_revenue":        "total_revenue",
	"parent_profit":        "parent_profit",
	"SECURITY_CODE":        "security_code",
	"SECURITY_NAME_ABBR":   "security_name",
	"PUBLISHNAME":          "industry",
	"REPORTDATE":           "report_date",
	"YSTZ":                 "revenue_yoy",
	"SJLTZ":                "profit_yoy",
	"YSHZ":                 "revenue_qoq",
	"SJLHZ":                "profit_qoq",
	"TOTAL_OPERATE_INCOME": "total_revenue",
	"PARENT_NETPROFIT":     "parent_profit",
}

var dateLayouts = []string{models.DateLayout, "2006-01-02 15:04:05", "2006/01/02"}

// -----------------------------------------------------------------------------

// ParseReports reads financial report rows from CSV. The first row is the
// header; security_code and report_date columns are mandatory. Rows without
// a report_type column get defaultPeriod. Empty metric cells stay nil.
func ParseReports(r io.Reader, defaultPeriod string) ([]models.MFinancialReport, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("empty csv: header row required")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if canonical, ok := columnAliases[name]; ok {
			index[canonical] = i
		}
	}
	for _, required := range []string{"security_code", "report_date"} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}
	if _, ok := index["report_type"]; !ok && defaultPeriod == "" {
		return nil, fmt.Errorf("no report_type column and no default period type")
	}

	var reports []models.MFinancialReport
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		report, err := parseRecord(record, index, defaultPeriod)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		reports = append(reports, report)
	}

	return reports, nil
}

// -----------------------------------------------------------------------------

func parseRecord(record []string, index map[string]int, defaultPeriod string) (models.MFinancialReport, error) {
	cell := func(column string) string {
		i, ok := index[column]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	report := models.MFinancialReport{
		SecurityCode: cell("security_code"),
		SecurityName: cell("security_name"),
		Industry:     cell("industry"),
		PeriodType:   cell("report_type"),
	}
	if report.SecurityCode == "" {
		return report, fmt.Errorf("empty security_code")
	}
	if report.PeriodType == "" {
		report.PeriodType = defaultPeriod
	}
	if report.PeriodType != models.PeriodYear && report.PeriodType != models.PeriodSeason {
		return report, fmt.Errorf("unknown report_type %q", report.PeriodType)
	}

	date, err := parseDate(cell("report_date"))
	if err != nil {
		return report, err
	}
	report.ReportDate = date

	metrics := []struct {
		column string
		dst    **float64
	}{
		{"revenue_yoy", &report.RevenueYoY},
		{"profit_yoy", &report.ProfitYoY},
		{"revenue_qoq", &report.RevenueQoQ},
		{"profit_qoq", &report.ProfitQoQ},
		{"total_revenue", &report.TotalRevenue},
		{"parent_profit", &report.ParentProfit},
	}
	for _, m := range metrics {
		v, err := parseOptionalFloat(cell(m.column))
		if err != nil {
			return report, fmt.Errorf("%s: %w", m.column, err)
		}
		*m.dst = v
	}

	return report, nil
}

// -----------------------------------------------------------------------------

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid report_date %q", s)
}

// parseOptionalFloat maps blank, NaN-like and infinite cells to nil.
func parseOptionalFloat(s string) (*float64, error) {
	switch strings.ToLower(s) {
	case "", "nan", "null", "none", "-":
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q", s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, nil
	}
	return &v, nil
}
