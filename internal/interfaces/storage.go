// Package interfaces defines service and storage contracts for Tally
package interfaces

import (
	"context"
	"errors"
	"fmt"

	"github.com/bobmcallan/tally/internal/models"
)

var (
	// ErrRecordNotFound is returned by Get when no record exists for the id.
	ErrRecordNotFound = errors.New("record not found")

	// ErrStoreUnavailable wraps every backend I/O failure. It is propagated
	// unchanged to callers and never retried.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrInvalidCollection is returned for collection names outside models.Collections.
	ErrInvalidCollection = errors.New("invalid collection")

	// ErrInvalidRecord is returned for documents that cannot be stored at all
	// (not a JSON object, or a write to the append-only audit log).
	ErrInvalidRecord = errors.New("invalid record")
)

// StorageManager coordinates the record store backend
type StorageManager interface {
	RecordStore() RecordStore

	// Backend names the active backend ("badger", "memory", "surrealdb").
	Backend() string

	Close() error
}

// RecordStore is a generic per-collection document store scoped by user.
// Filtering is the caller's responsibility: GetAll returns every record in
// the collection.
type RecordStore interface {
	GetAll(ctx context.Context, userID string, collection models.Collection) ([]*models.Record, error)
	Get(ctx context.Context, userID string, collection models.Collection, id string) (*models.Record, error)

	// Put upserts by (user, collection, id). It increments Version, stamps
	// UpdatedAt, and sets CreatedAt when absent.
	Put(ctx context.Context, record *models.Record) error

	// Delete removes a record. Deleting an absent record is not an error.
	Delete(ctx context.Context, userID string, collection models.Collection, id string) error

	// UserIDs lists, sorted, every user holding at least one record in collection.
	UserIDs(ctx context.Context, collection models.Collection) ([]string, error)

	Close() error
}

// ValidateCollection returns ErrInvalidCollection for unknown names.
func ValidateCollection(c models.Collection) error {
	if !models.IsCollection(string(c)) {
		return fmt.Errorf("%w: '%s'", ErrInvalidCollection, c)
	}
	return nil
}

// IsNotFound reports whether err is (or wraps) ErrRecordNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRecordNotFound)
}
