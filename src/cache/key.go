package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"stock-screener/src/models"
)

// Key derives a stable cache key from a request. Industry order, blanks and
// duplicates do not change the key.
func Key(req models.MScreenRequest) string {
	// Marshal of a flat struct of strings and numbers cannot fail.
	data, _ := json.Marshal(req.Normalized())
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// -----------------------------------------------------------------------------

// Noop never stores anything.
type Noop struct{}

func (Noop) Get(_ context.Context, _ string) ([]models.MScreenResult, bool) { return nil, false }

func (Noop) Set(_ context.Context, _ string, _ []models.MScreenResult) {}

func (Noop) Invalidate(_ context.Context) error { return nil }

func (Noop) Close() error { return nil }
