package db

import (
	"database/sql"

	"github.com/hpungsan/timecapsule/internal/capsule"
	"github.com/hpungsan/timecapsule/internal/config"
)

// Backend persists the capsule collection in SQLite. It satisfies store.Backend.
type Backend struct {
	db    *sql.DB
	fresh bool
}

// Open initializes the database at dbPath and applies pool settings from cfg.
func Open(dbPath string, cfg *config.Config) (*Backend, error) {
	database, fresh, err := Init(dbPath)
	if err != nil {
		return nil, err
	}
	ConfigurePool(database, cfg)
	return &Backend{db: database, fresh: fresh}, nil
}

// Load returns the persisted collection. found is false only for a database
// whose schema was created by this Open.
func (b *Backend) Load() ([]capsule.Capsule, bool, error) {
	capsules, err := LoadAll(b.db)
	if err != nil {
		return nil, false, err
	}
	return capsules, !b.fresh, nil
}

// Save replaces the persisted collection.
func (b *Backend) Save(capsules []capsule.Capsule) error {
	return ReplaceAll(b.db, capsules)
}

// Close closes the database.
func (b *Backend) Close() error {
	return b.db.Close()
}
