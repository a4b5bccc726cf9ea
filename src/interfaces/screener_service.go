package interfaces

import (
	"context"

	"stock-screener/src/models"
)

// -----------------------------------------------------------------------------
// IScreenerService is what the transports (HTTP, gRPC, CLI) call.
// -----------------------------------------------------------------------------

type IScreenerService interface {

	// FilterStocks screens the report table for the request.
	FilterStocks(ctx context.Context, req models.MScreenRequest) ([]models.MScreenResult, error)

	// -----------------------------------------------------------------------------

	// ChartData returns the last limit periods of one security.
	ChartData(ctx context.Context, securityCode, periodType string, limit int) (models.MChartData, error)
}
