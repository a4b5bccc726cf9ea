package storage

import (
	"stock-screener/src/interfaces"
	"stock-screener/src/logger"
	"stock-screener/src/models"
)

// NewStore picks the backend named by storage.db_type. Anything other than
// "postgres" falls back to SQLite. The store is not initialized.
func NewStore(cfg *models.MConfig, log *logger.Logger) (interfaces.IPerformanceStore, error) {
	switch cfg.Storage.DBType {
	case "postgres":
		pg, err := NewPostgresStore(cfg, log.Named("PostgresStore"))
		if err != nil {
			return nil, err
		}
		return pg, nil
	default:
		lite, err := NewSQLiteStore(cfg, log.Named("SQLiteStore"))
		if err != nil {
			return nil, err
		}
		return lite, nil
	}
}
