package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"stock-screener/src/helpers"
	"stock-screener/src/logger"
	"stock-screener/src/models"

	_ "modernc.org/sqlite"
)

var sqliteDialect = dialect{
	table:       "financial_reports",
	dateColumn:  "report_date",
	placeholder: func(int) string { return "?" },
}

// -----------------------------------------------------------------------------

type SQLiteStore struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewSQLiteStore(cfg *models.MConfig, log *logger.Logger) (*SQLiteStore, error) {
	if cfg.Storage.DBPath == "" {
		return nil, helpers.NewConfigurationError("sqlite store", fmt.Errorf("db_path is empty"))
	}
	return &SQLiteStore{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) Initialize() error {
	dsn := d.Config.Storage.DBPath

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return err
	}

	err = helpers.RetryWithBackoff(d.Logger, "sqlite ping", d.Config.Storage.ConnectRetries, 200*time.Millisecond, db.Ping)
	if err != nil {
		db.Close()
		return err
	}

	d.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	if err := d.createTables(); err != nil {
		d.DB = nil
		db.Close()
		return err
	}

	d.Logger.Info("SQLite store initialized (%s)", dsn)
	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) createTables() error {
	// SQLite types: TEXT dates (YYYY-MM-DD sorts correctly), REAL for metrics
	query := `
		CREATE TABLE IF NOT EXISTS financial_reports (
			security_code TEXT NOT NULL,
			security_name TEXT,
			industry TEXT,
			report_date TEXT NOT NULL,
			report_type TEXT NOT NULL,
			revenue_yoy REAL,
			profit_yoy REAL,
			revenue_qoq REAL,
			profit_qoq REAL,
			total_revenue REAL,
			parent_profit REAL,
			PRIMARY KEY (security_code, report_date, report_type)
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create financial_reports: %w", err)
	}

	query = `CREATE INDEX IF NOT EXISTS idx_financial_reports_type_date ON financial_reports (report_type, report_date)`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create financial_reports index: %w", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) GetPerformanceData(ctx context.Context, periodType string, fromDate time.Time, industries []string) ([]models.MFinancialReport, error) {
	query, args := sqliteDialect.performanceQuery(periodType, fromDate, industries)
	return queryReports(ctx, d.DB, query, args...)
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) GetSecurityHistory(ctx context.Context, securityCode, periodType string) ([]models.MFinancialReport, error) {
	return queryReports(ctx, d.DB, sqliteDialect.historyQuery(), securityCode, periodType)
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) SaveReports(ctx context.Context, reports []models.MFinancialReport) error {
	return saveReports(ctx, d.DB, sqliteDialect, reports)
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) Ping(ctx context.Context) error {
	if d.DB == nil {
		return fmt.Errorf("sqlite store not initialized")
	}
	return d.DB.PingContext(ctx)
}

// -----------------------------------------------------------------------------

func (d *SQLiteStore) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
