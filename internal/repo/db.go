// Package repo implements the persistence port for bridge entities, backed
// by GORM over SQLite (pure Go driver). This file contains database
// bootstrapping and schema migration.
package repo

import (
	"os"
	"path/filepath"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/tbourn/go-support-bridge/internal/domain"
)

// OpenSQLite opens (or creates) the bridge database and applies PRAGMAs.
//
// The pool is capped at a single connection: all storage operations are
// serialized system-wide, which makes each one atomic with respect to the
// others. The uniqueness invariants are additionally enforced by the unique
// indexes declared on the models, so they hold even if the pool is widened
// later. When traced is true the GORM OpenTelemetry plugin is installed so
// queries show up as spans.
func OpenSQLite(path string, traced bool) (*gorm.DB, error) {
	// Fail early if the parent directory does not exist (instead of a
	// cryptic sqlite "out of memory (14)" later).
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	db.Exec("PRAGMA journal_mode=WAL;")
	db.Exec("PRAGMA synchronous=NORMAL;")
	db.Exec("PRAGMA foreign_keys=ON;")
	db.Exec("PRAGMA busy_timeout=5000;")

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	}

	if traced {
		if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
			return nil, err
		}
	}

	return db, nil
}

// AutoMigrate creates or updates the three bridge tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.MessageLink{},
		&domain.Note{},
	)
}
