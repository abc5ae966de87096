package surrealdb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bobmcallan/tally/internal/common"
	"github.com/bobmcallan/tally/internal/interfaces"
	"github.com/bobmcallan/tally/internal/models"
	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

const recordsTable = "records"

// recordRow is the stored shape. SurrealDB reserves "id" for its own record
// id, so the document id is kept under record_id.
type recordRow struct {
	UserID     string    `json:"user_id"`
	Collection string    `json:"collection"`
	RecordID   string    `json:"record_id"`
	Value      string    `json:"value"`
	Version    int       `json:"version"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func toRow(r *models.Record) recordRow {
	return recordRow{
		UserID:     r.UserID,
		Collection: string(r.Collection),
		RecordID:   r.ID,
		Value:      r.Value,
		Version:    r.Version,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

func (row recordRow) toRecord() *models.Record {
	return &models.Record{
		UserID:     row.UserID,
		Collection: models.Collection(row.Collection),
		ID:         row.RecordID,
		Value:      row.Value,
		Version:    row.Version,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
	}
}

// RecordStore implements interfaces.RecordStore on a SurrealDB table.
type RecordStore struct {
	db     *surrealdb.DB
	logger *common.Logger
	now    func() time.Time
}

func NewRecordStore(db *surrealdb.DB, logger *common.Logger) *RecordStore {
	return &RecordStore{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

func rowID(userID string, collection models.Collection, id string) surrealmodels.RecordID {
	return surrealmodels.NewRecordID(recordsTable, userID+"_"+string(collection)+"_"+id)
}

func unavailable(op string, collection models.Collection, err error) error {
	return fmt.Errorf("failed to %s %s record: %w: %w", op, collection, interfaces.ErrStoreUnavailable, err)
}

func isNotFoundError(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "not found")
}

func (s *RecordStore) GetAll(ctx context.Context, userID string, collection models.Collection) ([]*models.Record, error) {
	if err := interfaces.ValidateCollection(collection); err != nil {
		return nil, err
	}
	sql := "SELECT * FROM records WHERE user_id = $user_id AND collection = $collection ORDER BY created_at ASC, record_id ASC"
	vars := map[string]any{
		"user_id":    userID,
		"collection": string(collection),
	}

	results, err := surrealdb.Query[[]recordRow](ctx, s.db, sql, vars)
	if err != nil {
		return nil, unavailable("list", collection, err)
	}

	var mapped []*models.Record
	if results != nil && len(*results) > 0 {
		for _, row := range (*results)[0].Result {
			mapped = append(mapped, row.toRecord())
		}
	}
	return mapped, nil
}

func (s *RecordStore) Get(ctx context.Context, userID string, collection models.Collection, id string) (*models.Record, error) {
	if err := interfaces.ValidateCollection(collection); err != nil {
		return nil, err
	}
	row, err := surrealdb.Select[recordRow](ctx, s.db, rowID(userID, collection, id))
	if err != nil {
		if isNotFoundError(err) {
			return nil, fmt.Errorf("%s '%s': %w", collection, id, interfaces.ErrRecordNotFound)
		}
		return nil, unavailable("select", collection, err)
	}
	if row == nil || row.RecordID == "" {
		return nil, fmt.Errorf("%s '%s': %w", collection, id, interfaces.ErrRecordNotFound)
	}
	return row.toRecord(), nil
}

func (s *RecordStore) Put(ctx context.Context, record *models.Record) error {
	if err := interfaces.ValidateCollection(record.Collection); err != nil {
		return err
	}
	if record.ID == "" {
		return fmt.Errorf("failed to put %s: record id is required", record.Collection)
	}

	existing, err := s.Get(ctx, record.UserID, record.Collection, record.ID)
	switch {
	case err == nil:
		record.Version = existing.Version + 1
		if record.CreatedAt.IsZero() {
			record.CreatedAt = existing.CreatedAt
		}
	case interfaces.IsNotFound(err):
		record.Version = 1
	default:
		return err
	}
	now := s.now()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now

	sql := "UPSERT $rid CONTENT $record"
	vars := map[string]any{"rid": rowID(record.UserID, record.Collection, record.ID), "record": toRow(record)}

	if _, err := surrealdb.Query[[]recordRow](ctx, s.db, sql, vars); err != nil {
		s.logger.Debug().Err(err).Str("collection", string(record.Collection)).Msg("Record upsert failed")
		return unavailable("put", record.Collection, err)
	}
	return nil
}

func (s *RecordStore) Delete(ctx context.Context, userID string, collection models.Collection, id string) error {
	if err := interfaces.ValidateCollection(collection); err != nil {
		return err
	}
	_, err := surrealdb.Delete[recordRow](ctx, s.db, rowID(userID, collection, id))
	if err != nil && !isNotFoundError(err) {
		return unavailable("delete", collection, err)
	}
	return nil
}

func (s *RecordStore) UserIDs(ctx context.Context, collection models.Collection) ([]string, error) {
	if err := interfaces.ValidateCollection(collection); err != nil {
		return nil, err
	}
	sql := "SELECT user_id FROM records WHERE collection = $collection GROUP BY user_id ORDER BY user_id ASC"
	vars := map[string]any{"collection": string(collection)}

	results, err := surrealdb.Query[[]recordRow](ctx, s.db, sql, vars)
	if err != nil {
		return nil, unavailable("list users of", collection, err)
	}

	users := []string{}
	if results != nil && len(*results) > 0 {
		for _, row := range (*results)[0].Result {
			users = append(users, row.UserID)
		}
	}
	return users, nil
}

func (s *RecordStore) Close() error {
	return nil
}
