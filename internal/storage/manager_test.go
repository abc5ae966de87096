package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/bobmcallan/tally/internal/common"
	"github.com/bobmcallan/tally/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManager_Backends(t *testing.T) {
	tests := []struct {
		name    string
		backend string
		want    string
	}{
		{"memory", common.BackendMemory, common.BackendMemory},
		{"badger", common.BackendBadger, common.BackendBadger},
		{"default", "", common.BackendBadger},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := common.NewDefaultConfig()
			cfg.Storage.Backend = tt.backend
			cfg.Storage.Path = filepath.Join(t.TempDir(), "records")

			mgr, err := NewManager(common.NewSilentLogger(), cfg)
			require.NoError(t, err)
			defer mgr.Close()

			assert.Equal(t, tt.want, mgr.Backend())

			ctx := context.Background()
			store := mgr.RecordStore()
			require.NoError(t, store.Put(ctx, &models.Record{
				UserID:     "default",
				Collection: models.CollectionIncome,
				ID:         "inc_1",
				Value:      `{"amount":10}`,
			}))
			records, err := store.GetAll(ctx, "default", models.CollectionIncome)
			require.NoError(t, err)
			assert.Len(t, records, 1)
		})
	}
}

func TestNewManager_UnknownBackend(t *testing.T) {
	cfg := common.NewDefaultConfig()
	cfg.Storage.Backend = "postgres"

	_, err := NewManager(common.NewSilentLogger(), cfg)
	assert.ErrorContains(t, err, "unknown storage backend")
}
