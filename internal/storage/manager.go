// Package storage provides the top-level StorageManager that selects the
// record store backend: embedded BadgerHold (on disk or in memory) or SurrealDB.
package storage

import (
	"fmt"

	"github.com/bobmcallan/tally/internal/common"
	"github.com/bobmcallan/tally/internal/interfaces"
	"github.com/bobmcallan/tally/internal/storage/badger"
	"github.com/bobmcallan/tally/internal/storage/surrealdb"
)

// Manager implements interfaces.StorageManager over an embedded record store.
type Manager struct {
	records *badger.Store
	backend string
	logger  *common.Logger
}

// NewManager creates the StorageManager for config.Storage.Backend.
func NewManager(logger *common.Logger, config *common.Config) (interfaces.StorageManager, error) {
	switch config.Storage.Backend {
	case common.BackendSurreal:
		return surrealdb.NewManager(logger, config)

	case common.BackendMemory:
		store, err := badger.NewMemoryStore(logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create record store: %w", err)
		}
		logger.Info().Str("backend", common.BackendMemory).Msg("Storage manager initialized")
		return &Manager{records: store, backend: common.BackendMemory, logger: logger}, nil

	case common.BackendBadger, "":
		store, err := badger.NewStore(logger, config.Storage.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to create record store: %w", err)
		}
		logger.Info().
			Str("backend", common.BackendBadger).
			Str("path", config.Storage.Path).
			Msg("Storage manager initialized")
		return &Manager{records: store, backend: common.BackendBadger, logger: logger}, nil

	default:
		return nil, fmt.Errorf("unknown storage backend: %s (supported: badger, memory, surrealdb)", config.Storage.Backend)
	}
}

func (m *Manager) RecordStore() interfaces.RecordStore {
	return m.records
}

func (m *Manager) Backend() string {
	return m.backend
}

func (m *Manager) Close() error {
	if err := m.records.Close(); err != nil {
		return fmt.Errorf("failed to close record store: %w", err)
	}
	return nil
}

// Compile-time check
var _ interfaces.StorageManager = (*Manager)(nil)
