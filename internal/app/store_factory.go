package app

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/nshrhm/aoj-submission-manager/internal/lock"
	"github.com/nshrhm/aoj-submission-manager/internal/store"
	"github.com/nshrhm/aoj-submission-manager/internal/store/csvfile"
	"github.com/nshrhm/aoj-submission-manager/internal/store/postgres"
	"github.com/nshrhm/aoj-submission-manager/internal/store/sqlite"
)

const sqlitePrefix = "sqlite:"

// ParseDSN picks the backend from the DSN: postgres URLs, "sqlite:<path>",
// or a plain path to a CSV roster.
func ParseDSN(dsn, migrationsDir string) (*store.DBConfig, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("empty store DSN")
	}
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return &store.DBConfig{DSN: dsn, Type: store.DBTypePostgres, MigrationsDir: migrationsDir}, nil
	case strings.HasPrefix(dsn, sqlitePrefix):
		return &store.DBConfig{
			DSN:           strings.TrimPrefix(dsn, sqlitePrefix),
			Type:          store.DBTypeSQLite,
			MigrationsDir: migrationsDir,
		}, nil
	default:
		return &store.DBConfig{DSN: dsn, Type: store.DBTypeCSV}, nil
	}
}

func NewStore(config *store.DBConfig) (store.RosterStore, error) {
	switch config.Type {
	case store.DBTypePostgres:
		return postgres.NewPostgresStore(config)
	case store.DBTypeSQLite:
		return sqlite.NewSQLiteStore(config)
	case store.DBTypeCSV:
		return csvfile.NewCSVStore(config)
	default:
		return nil, fmt.Errorf("unable to determine database type from DSN: %s", config.DSN)
	}
}

// NewLock prefers a Redis lock when configured. Otherwise it falls back to
// a lock file next to the roster (or in the working directory for SQL
// stores).
func NewLock(c *Config, db *store.DBConfig) (lock.Lock, error) {
	if c.Lock.RedisURL != "" {
		return lock.NewRedisLock(c.Lock.RedisURL, c.Lock.Key, time.Duration(c.Lock.TTLSeconds)*time.Second)
	}

	path := c.Lock.File
	if path == "" {
		if db.Type == store.DBTypeCSV {
			path = db.DSN + ".lock"
		} else {
			path = filepath.Join(".", "aoj-submission-manager.lock")
		}
	}
	return lock.NewFileLock(path), nil
}
