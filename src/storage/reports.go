package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"stock-screener/src/helpers"
	"stock-screener/src/models"
)

// dialect captures the SQL differences between SQLite and PostgreSQL.
type dialect struct {
	table       string           // fully qualified table name
	dateColumn  string           // report_date rendered as YYYY-MM-DD
	placeholder func(int) string // 1-based bind parameter
}

const reportColumns = `security_code, security_name, industry, report_date, report_type,
	revenue_yoy, profit_yoy, revenue_qoq, profit_qoq, total_revenue, parent_profit`

const reportParams = 11

// -----------------------------------------------------------------------------

func (d dialect) selectColumns() string {
	return fmt.Sprintf(`security_code, security_name, industry, %s, report_type,
	revenue_yoy, profit_yoy, revenue_qoq, profit_qoq, total_revenue, parent_profit`, d.dateColumn)
}

// -----------------------------------------------------------------------------

// performanceQuery builds the collaborator query for a screen.
func (d dialect) performanceQuery(periodType string, fromDate time.Time, industries []string) (string, []interface{}) {
	args := []interface{}{periodType, fromDate.Format(models.DateLayout)}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s WHERE report_type = %s AND report_date >= %s",
		d.selectColumns(), d.table, d.placeholder(1), d.placeholder(2))

	if len(industries) > 0 {
		marks := make([]string, len(industries))
		for i, ind := range industries {
			args = append(args, ind)
			marks[i] = d.placeholder(len(args))
		}
		fmt.Fprintf(&b, " AND industry IN (%s)", strings.Join(marks, ", "))
	}

	b.WriteString(" ORDER BY security_code, report_date DESC")
	return b.String(), args
}

// -----------------------------------------------------------------------------

func (d dialect) historyQuery() string {
	return fmt.Sprintf("SELECT %s FROM %s WHERE security_code = %s AND report_type = %s ORDER BY report_date",
		d.selectColumns(), d.table, d.placeholder(1), d.placeholder(2))
}

// -----------------------------------------------------------------------------

func (d dialect) upsertQuery() string {
	marks := make([]string, reportParams)
	for i := range marks {
		marks[i] = d.placeholder(i + 1)
	}
	return fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES (%s)
		ON CONFLICT (security_code, report_date, report_type) DO UPDATE SET
			security_name = excluded.security_name,
			industry = excluded.industry,
			revenue_yoy = excluded.revenue_yoy,
			profit_yoy = excluded.profit_yoy,
			revenue_qoq = excluded.revenue_qoq,
			profit_qoq = excluded.profit_qoq,
			total_revenue = excluded.total_revenue,
			parent_profit = excluded.parent_profit
	`, d.table, reportColumns, strings.Join(marks, ", "))
}

// -----------------------------------------------------------------------------

func queryReports(ctx context.Context, db *sql.DB, query string, args ...interface{}) ([]models.MFinancialReport, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, helpers.NewDatabaseError("query financial reports", err)
	}
	defer rows.Close()

	reports := []models.MFinancialReport{}
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, helpers.NewDatabaseError("scan financial report", err)
		}
		reports = append(reports, r)
	}

	if err := rows.Err(); err != nil {
		return nil, helpers.NewDatabaseError("iterate financial reports", err)
	}
	return reports, nil
}

// -----------------------------------------------------------------------------

func scanReport(rows *sql.Rows) (models.MFinancialReport, error) {
	var (
		r                                models.MFinancialReport
		name, industry                   sql.NullString
		day                              string
		revYoY, profYoY, revQoQ, profQoQ sql.NullFloat64
		totalRevenue, parentProfit       sql.NullFloat64
	)

	if err := rows.Scan(&r.SecurityCode, &name, &industry, &day, &r.PeriodType,
		&revYoY, &profYoY, &revQoQ, &profQoQ, &totalRevenue, &parentProfit); err != nil {
		return r, err
	}

	reportDate, err := time.Parse(models.DateLayout, day)
	if err != nil {
		return r, fmt.Errorf("bad report_date %q for %s: %w", day, r.SecurityCode, err)
	}

	r.SecurityName = name.String
	r.Industry = industry.String
	r.ReportDate = reportDate
	r.RevenueYoY = nullable(revYoY)
	r.ProfitYoY = nullable(profYoY)
	r.RevenueQoQ = nullable(revQoQ)
	r.ProfitQoQ = nullable(profQoQ)
	r.TotalRevenue = nullable(totalRevenue)
	r.ParentProfit = nullable(parentProfit)
	return r, nil
}

// -----------------------------------------------------------------------------

func nullable(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

// -----------------------------------------------------------------------------

// saveReports upserts in a single transaction.
func saveReports(ctx context.Context, db *sql.DB, d dialect, reports []models.MFinancialReport) error {
	if len(reports) == 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return helpers.NewDatabaseError("begin transaction", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, d.upsertQuery())
	if err != nil {
		return helpers.NewDatabaseError("prepare report upsert", err)
	}
	defer stmt.Close()

	for _, r := range reports {
		_, err := stmt.ExecContext(ctx,
			r.SecurityCode, r.SecurityName, r.Industry, r.ReportDate.Format(models.DateLayout), r.PeriodType,
			r.RevenueYoY, r.ProfitYoY, r.RevenueQoQ, r.ProfitQoQ, r.TotalRevenue, r.ParentProfit)
		if err != nil {
			return helpers.NewDatabaseError(fmt.Sprintf("save report %s@%s", r.SecurityCode, r.ReportDate.Format(models.DateLayout)), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return helpers.NewDatabaseError("commit reports", err)
	}
	return nil
}
