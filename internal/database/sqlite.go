package database

import (
	"fmt"

	"github.com/gamescout/backend/internal/favorites"
	sqlite "github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OpenSQLite establishes a SQLite connection and performs schema migrations.
func OpenSQLite(path string, logger *zap.Logger) (*gorm.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&favorites.FavoriteGame{}, &migrationRecord{}); err != nil {
		return nil, err
	}

	if err := migrateLegacyRowIDs(db); err != nil && logger != nil {
		logger.Warn("legacy row id migration failed", zap.Error(err))
	}

	if err := applyMigrations(db, logger); err != nil {
		return nil, err
	}

	if logger != nil {
		logger.Info("database initialized", zap.String("path", path))
	}

	return db, nil
}

// migrateLegacyRowIDs repairs rows written by revisions that keyed the ledger
// by the external catalog id alone and left the row id column empty.
func migrateLegacyRowIDs(db *gorm.DB) error {
	return db.Exec("UPDATE favorite_games SET id = CAST(igdb_id AS TEXT) WHERE id = '' OR id IS NULL;").Error
}
