package interfaces

import (
	"context"
	"time"

	"stock-screener/src/models"
)

// -----------------------------------------------------------------------------
// IPerformanceStore defines the contract for financial report storage.
// -----------------------------------------------------------------------------

type IPerformanceStore interface {

	// -----------------------------------------------------------------------------

	// Initialize opens the connection and creates missing tables.
	Initialize() error

	// -----------------------------------------------------------------------------

	// GetPerformanceData returns every report of the given period type dated on
	// or after fromDate, restricted to industries when the list is non-empty.
	// An empty result is not an error.
	GetPerformanceData(ctx context.Context, periodType string, fromDate time.Time, industries []string) ([]models.MFinancialReport, error)

	// -----------------------------------------------------------------------------

	// GetSecurityHistory returns all reports of one security for a period type.
	GetSecurityHistory(ctx context.Context, securityCode, periodType string) ([]models.MFinancialReport, error)

	// -----------------------------------------------------------------------------

	// SaveReports upserts a batch of reports keyed by security, date and period type.
	SaveReports(ctx context.Context, reports []models.MFinancialReport) error

	// -----------------------------------------------------------------------------

	// Ping checks the connection is alive.
	Ping(ctx context.Context) error

	// -----------------------------------------------------------------------------

	// Close the database connection
	Close() error
}
