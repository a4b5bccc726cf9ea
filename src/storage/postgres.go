package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"stock-screener/src/helpers"
	"stock-screener/src/logger"
	"stock-screener/src/models"

	_ "github.com/lib/pq"
)

// -----------------------------------------------------------------------------

type PostgresStore struct {
	Config  *models.MConfig
	DB      *sql.DB
	Schema  string
	Logger  *logger.Logger
	dialect dialect
}

// -----------------------------------------------------------------------------

func NewPostgresStore(cfg *models.MConfig, log *logger.Logger) (*PostgresStore, error) {
	if cfg.Storage.DBConnectionString == "" {
		return nil, helpers.NewConfigurationError("postgres store", fmt.Errorf("db_connection_string is empty"))
	}

	schema := cfg.Storage.Schema
	if schema == "" {
		schema = "public"
	}

	return &PostgresStore{
		Config: cfg,
		Schema: schema,
		Logger: log,
		dialect: dialect{
			table:       fmt.Sprintf(`"%s"."financial_reports"`, schema),
			dateColumn:  `to_char(report_date, 'YYYY-MM-DD')`,
			placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
		},
	}, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresStore) Initialize() error {
	db, err := sql.Open("postgres", d.Config.Storage.DBConnectionString)
	if err != nil {
		return err
	}

	if n := d.Config.Storage.MaxConnections; n > 0 {
		db.SetMaxOpenConns(n)
		db.SetMaxIdleConns(n / 2)
	}
	db.SetConnMaxLifetime(5 * time.Minute)

	err = helpers.RetryWithBackoff(d.Logger, "postgres ping", d.Config.Storage.ConnectRetries, time.Second, db.Ping)
	if err != nil {
		db.Close()
		return err
	}

	d.DB = db

	if _, err := d.DB.Exec(fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS "%s"`, d.Schema)); err != nil {
		d.DB = nil
		db.Close()
		return fmt.Errorf("failed to create schema %s: %w", d.Schema, err)
	}

	if err := d.createTables(); err != nil {
		d.DB = nil
		db.Close()
		return err
	}

	d.Logger.Info("PostgresStore initialized successfully (Schema: %s)", d.Schema)
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresStore) createTables() error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			security_code TEXT NOT NULL,
			security_name TEXT,
			industry TEXT,
			report_date DATE NOT NULL,
			report_type TEXT NOT NULL,
			revenue_yoy DOUBLE PRECISION,
			profit_yoy DOUBLE PRECISION,
			revenue_qoq DOUBLE PRECISION,
			profit_qoq DOUBLE PRECISION,
			total_revenue DOUBLE PRECISION,
			parent_profit DOUBLE PRECISION,
			PRIMARY KEY (security_code, report_date, report_type)
		);
	`, d.dialect.table)
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create %s: %w", d.dialect.table, err)
	}

	query = fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_financial_reports_type_date ON %s (report_type, report_date)`, d.dialect.table)
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to index %s: %w", d.dialect.table, err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresStore) GetPerformanceData(ctx context.Context, periodType string, fromDate time.Time, industries []string) ([]models.MFinancialReport, error) {
	query, args := d.dialect.performanceQuery(periodType, fromDate, industries)
	return queryReports(ctx, d.DB, query, args...)
}

// -----------------------------------------------------------------------------

func (d *PostgresStore) GetSecurityHistory(ctx context.Context, securityCode, periodType string) ([]models.MFinancialReport, error) {
	return queryReports(ctx, d.DB, d.dialect.historyQuery(), securityCode, periodType)
}

// -----------------------------------------------------------------------------

func (d *PostgresStore) SaveReports(ctx context.Context, reports []models.MFinancialReport) error {
	return saveReports(ctx, d.DB, d.dialect, reports)
}

// -----------------------------------------------------------------------------

func (d *PostgresStore) Ping(ctx context.Context) error {
	if d.DB == nil {
		return fmt.Errorf("postgres store not initialized")
	}
	return d.DB.PingContext(ctx)
}

// -----------------------------------------------------------------------------

func (d *PostgresStore) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
