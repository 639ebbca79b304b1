package repository

import (
	"fmt"
	"tripgen/internal/providers"
	"tripgen/internal/structures"

	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const (
	BackendNone     = "none"
	BackendRedis    = "redis"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// NewStoreProvider returns nil when no backend is usable; the repository
// then runs in no-op mode.
func NewStoreProvider(conf *structures.Config, client *redis.Client, logger providers.Logger) (StoreInterface, error) {
	switch conf.Store.Backend {
	case BackendRedis:
		if client == nil {
			logger.Warnf(providers.TypeApp, "Store backend redis selected but redis is not configured, plans will not be persisted")
			return nil, nil
		}
		return NewRedisStore(client), nil
	case BackendSQLite, BackendPostgres:
		if conf.Store.DSN == "" {
			return nil, fmt.Errorf("store backend %s requires store.dsn", conf.Store.Backend)
		}
		var dialector gorm.Dialector
		if conf.Store.Backend == BackendPostgres {
			dialector = postgres.Open(conf.Store.DSN)
		} else {
			dialector = sqlite.Open(conf.Store.DSN)
		}
		store, err := NewSQLStore(dialector)
		if err != nil {
			return nil, fmt.Errorf("open %s store: %w", conf.Store.Backend, err)
		}
		logger.Infof(providers.TypeApp, "Plan store: %s", conf.Store.Backend)
		return store, nil
	case BackendNone, "":
		logger.Warnf(providers.TypeApp, "No plan store configured, plans will not be persisted")
		return nil, nil
	}
	return nil, fmt.Errorf("unknown store backend %q", conf.Store.Backend)
}
