package interactions

import (
	"fmt"

	"github.com/JanConnect/JanConnect-sub001/internal/cache"
	"github.com/JanConnect/JanConnect-sub001/internal/database"
)

// Drivers accepted by Open
const (
	DriverFile     = "file"
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// OpenConfig selects and configures a store backend
type OpenConfig struct {
	Driver string
	Dir    string
	DSN    string
	Redis  cache.Options
}

// Open builds the store named by cfg.Driver. The returned close function
// releases any connection it opened and is never nil.
func Open(cfg OpenConfig) (Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Driver {
	case DriverFile, "":
		s, err := NewFileStore(cfg.Dir)
		if err != nil {
			return nil, noop, err
		}
		return s, noop, nil

	case DriverMemory:
		return NewMemoryStore(), noop, nil

	case DriverRedis:
		client, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			return nil, noop, err
		}
		return NewRedisStore(client), client.Close, nil

	case DriverSQLite, DriverPostgres:
		db, err := database.Open(database.Config{Driver: cfg.Driver, DSN: cfg.DSN})
		if err != nil {
			return nil, noop, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, noop, fmt.Errorf("failed to get underlying sql.DB: %w", err)
		}
		s, err := NewDBStore(db)
		if err != nil {
			_ = sqlDB.Close()
			return nil, noop, err
		}
		return s, sqlDB.Close, nil

	default:
		return nil, noop, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
