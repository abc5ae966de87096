// Package badger implements RecordStore using BadgerHold.
// Records live on disk under the configured path, or entirely in memory.
package badger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/bobmcallan/tally/internal/common"
	"github.com/bobmcallan/tally/internal/interfaces"
	"github.com/bobmcallan/tally/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// Store implements interfaces.RecordStore using BadgerHold.
type Store struct {
	db     *badgerhold.Store
	logger *common.Logger
	now    func() time.Time
}

// NewStore opens (or creates) a record store at path.
func NewStore(logger *common.Logger, path string) (*Store, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create record store path %s: %w", path, err)
	}
	opts := badgerhold.DefaultOptions
	opts.Dir = path
	opts.ValueDir = path
	opts.Logger = nil
	db, err := badgerhold.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open record store at %s: %w", path, err)
	}
	logger.Info().Str("path", path).Msg("Record store opened")
	return &Store{db: db, logger: logger, now: time.Now}, nil
}

// NewMemoryStore opens a record store that is discarded on Close.
func NewMemoryStore(logger *common.Logger) (*Store, error) {
	opts := badgerhold.DefaultOptions
	opts.InMemory = true
	opts.Dir = ""
	opts.ValueDir = ""
	opts.Logger = nil
	db, err := badgerhold.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory record store: %w", err)
	}
	logger.Debug().Msg("In-memory record store opened")
	return &Store{db: db, logger: logger, now: time.Now}, nil
}

// keySep is the composite key separator. A null byte cannot appear in
// user ids, collection names or record ids supplied over JSON.
const keySep = "\x00"

// compositeKey builds the storage key: user_id + \x00 + collection + \x00 + id
func compositeKey(userID string, collection models.Collection, id string) string {
	return userID + keySep + string(collection) + keySep + id
}

func unavailable(op string, collection models.Collection, id string, err error) error {
	if id == "" {
		return fmt.Errorf("failed to %s %s: %w: %w", op, collection, interfaces.ErrStoreUnavailable, err)
	}
	return fmt.Errorf("failed to %s %s '%s': %w: %w", op, collection, id, interfaces.ErrStoreUnavailable, err)
}

func (s *Store) GetAll(_ context.Context, userID string, collection models.Collection) ([]*models.Record, error) {
	if err := interfaces.ValidateCollection(collection); err != nil {
		return nil, err
	}
	var found []models.Record
	query := badgerhold.Where("UserID").Eq(userID).And("Collection").Eq(collection)
	if err := s.db.Find(&found, query); err != nil {
		return nil, unavailable("list", collection, "", err)
	}
	result := make([]*models.Record, 0, len(found))
	for i := range found {
		rec := found[i]
		result = append(result, &rec)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (s *Store) Get(_ context.Context, userID string, collection models.Collection, id string) (*models.Record, error) {
	if err := interfaces.ValidateCollection(collection); err != nil {
		return nil, err
	}
	var rec models.Record
	if err := s.db.Get(compositeKey(userID, collection, id), &rec); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, fmt.Errorf("%s '%s': %w", collection, id, interfaces.ErrRecordNotFound)
		}
		return nil, unavailable("get", collection, id, err)
	}
	return &rec, nil
}

func (s *Store) Put(_ context.Context, record *models.Record) error {
	if err := interfaces.ValidateCollection(record.Collection); err != nil {
		return err
	}
	if record.ID == "" {
		return fmt.Errorf("failed to put %s: record id is required", record.Collection)
	}
	ck := compositeKey(record.UserID, record.Collection, record.ID)
	now := s.now()

	// Read existing to increment version and keep the creation time
	var existing models.Record
	switch err := s.db.Get(ck, &existing); {
	case err == nil:
		record.Version = existing.Version + 1
		if record.CreatedAt.IsZero() {
			record.CreatedAt = existing.CreatedAt
		}
	case errors.Is(err, badgerhold.ErrNotFound):
		record.Version = 1
	default:
		return unavailable("put", record.Collection, record.ID, err)
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now

	if err := s.db.Upsert(ck, record); err != nil {
		return unavailable("put", record.Collection, record.ID, err)
	}
	return nil
}

func (s *Store) Delete(_ context.Context, userID string, collection models.Collection, id string) error {
	if err := interfaces.ValidateCollection(collection); err != nil {
		return err
	}
	if err := s.db.Delete(compositeKey(userID, collection, id), models.Record{}); err != nil && !errors.Is(err, badgerhold.ErrNotFound) {
		return unavailable("delete", collection, id, err)
	}
	return nil
}

func (s *Store) UserIDs(_ context.Context, collection models.Collection) ([]string, error) {
	if err := interfaces.ValidateCollection(collection); err != nil {
		return nil, err
	}
	var found []models.Record
	if err := s.db.Find(&found, badgerhold.Where("Collection").Eq(collection)); err != nil {
		return nil, unavailable("list users of", collection, "", err)
	}
	seen := make(map[string]bool)
	for _, rec := range found {
		seen[rec.UserID] = true
	}
	users := make([]string, 0, len(seen))
	for id := range seen {
		users = append(users, id)
	}
	sort.Strings(users)
	return users, nil
}

// Close closes the BadgerHold database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
