package storage

import (
	"fmt"

	"github.com/navwar/navsim/internal/config"
	"github.com/navwar/navsim/internal/database"
	"github.com/navwar/navsim/internal/storage/gormdb"
	"github.com/navwar/navsim/internal/storage/memory"
)

// NewBackend creates a storage backend based on configuration
func NewBackend(cfg config.StorageConfig, db *database.Manager) (Backend, error) {
	switch cfg.Type {
	case "database":
		if db == nil {
			return nil, fmt.Errorf("database backend requires a connected database manager")
		}
		return gormdb.New(db), nil
	case "memory":
		return memory.New(cfg.Memory), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
