package database

import (
	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"pokedex-api/internal/models"
)

// MemoryDSN keeps the journal inside the process.
const MemoryDSN = ":memory:"

// Open connects to the SQLite database at dsn and runs migrations.
// Using glebarez/sqlite which is a pure Go implementation (no CGO required)
func Open(dsn string, logLevel logger.LogLevel) (*gorm.DB, error) {
	if dsn == "" {
		dsn = MemoryDSN
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	// every pooled connection to :memory: would otherwise see its own empty database
	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to access connection pool")
	}
	sqlDB.SetMaxOpenConns(1)

	// Auto-migrate the schema (it will create tables if they don't exist)
	if err := db.AutoMigrate(&models.UpstreamCall{}); err != nil {
		return nil, errors.Wrap(err, "failed to migrate database")
	}
	return db, nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
