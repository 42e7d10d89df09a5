package store

import (
	"context"

	"github.com/shiptrack-io/shiptrack/internal/config"
	"github.com/shiptrack-io/shiptrack/internal/logger"
)

// Storages bundles the repositories the service layer depends on. All
// repositories are backed by the same storage backend, chosen from the
// configuration at startup.
type Storages struct {
	Users     UserRepository
	Shipments ShipmentRepository

	db *DB
}

// NewStorages selects and initializes the storage backend: PostgreSQL when
// a DSN is configured, the JSON file store when a file path is configured.
// The config layer guarantees exactly one of the two is set; an empty
// storage config yields [ErrNoStorageConfigured].
//
// For PostgreSQL all pending schema migrations are applied before the
// repositories are handed out.
func NewStorages(ctx context.Context, cfg config.Storage, log *logger.Logger) (*Storages, error) {
	switch {
	case cfg.DB.DSN != "":
		db, err := NewConnectPostgres(ctx, cfg.DB, log)
		if err != nil {
			return nil, err
		}

		if err := db.Migrate(); err != nil {
			log.Err(err).Str("func", "NewStorages").Msg("error applying migrations")
			return nil, err
		}

		return &Storages{
			Users:     NewUserRepository(db, log),
			Shipments: NewShipmentRepository(db, log),
			db:        db,
		}, nil

	case cfg.File.Path != "":
		fs, err := NewFileStore(cfg.File.Path, log)
		if err != nil {
			return nil, err
		}

		return &Storages{
			Users:     fs,
			Shipments: fs,
		}, nil

	default:
		return nil, ErrNoStorageConfigured
	}
}

// Close releases the underlying database connection pool, if any.
func (s *Storages) Close() error {
	if s.db != nil {
		return s.db.Close()
	}

	return nil
}
