package interfaces

import (
	"context"

	"stock-screener/src/models"
)

// -----------------------------------------------------------------------------
// IResultCache stores screen results keyed by a normalized request.
// Get and Set swallow their own failures: a miss is always safe.
// -----------------------------------------------------------------------------

type IResultCache interface {
	Get(ctx context.Context, key string) ([]models.MScreenResult, bool)

	Set(ctx context.Context, key string, results []models.MScreenResult)

	// Invalidate drops every cached screen. Called after reports change.
	Invalidate(ctx context.Context) error

	Close() error
}
