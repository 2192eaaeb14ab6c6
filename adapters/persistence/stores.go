package persistence

import (
	"context"
	"fmt"

	"github.com/khoahotran/devprofiles/internal/config"
	"github.com/khoahotran/devprofiles/internal/domain/account"
	"github.com/khoahotran/devprofiles/internal/domain/profile"
	"github.com/khoahotran/devprofiles/pkg/logger"
)

// OpenStores connects the backend named by db.driver and returns both
// repositories on it. closeFn releases the connection.
func OpenStores(cfg config.Config, log logger.Logger) (profile.Repository, account.Repository, func(), error) {
	switch cfg.DB.Driver {
	case config.DriverMongo:
		client, db, err := NewMongoDatabase(cfg, log)
		if err != nil {
			return nil, nil, nil, err
		}
		closeFn := func() {
			if err := client.Disconnect(context.Background()); err != nil {
				log.Error("mongo disconnect failed", err)
			}
		}
		return NewMongoProfileRepo(db, log), NewMongoAccountRepo(db), closeFn, nil

	case config.DriverPostgres:
		pool, err := NewPostgresPool(cfg, log)
		if err != nil {
			return nil, nil, nil, err
		}
		return NewPostgresProfileRepo(pool, log), NewPostgresAccountRepo(pool), pool.Close, nil

	case config.DriverMemory:
		log.Warn("Using in-memory store; data is lost on restart")
		store := NewInMemoryStore()
		return store.Profiles(), store.Accounts(), func() {}, nil

	default:
		return nil, nil, nil, fmt.Errorf("unknown db driver %q", cfg.DB.Driver)
	}
}
