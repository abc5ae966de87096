package interfaces

import (
	"context"
	"time"

	"github.com/bobmcallan/tally/internal/models"
)

// RecordService is the store boundary: CRUD over source documents with an
// audit trail, and one-pass canonicalisation into typed models.
type RecordService interface {
	Create(ctx context.Context, collection models.Collection, doc models.Document) (models.Document, error)

	// Update merges doc into the stored document. Null fields are removed.
	Update(ctx context.Context, collection models.Collection, id string, doc models.Document) (models.Document, error)

	Delete(ctx context.Context, collection models.Collection, id string) error
	Get(ctx context.Context, collection models.Collection, id string) (models.Document, error)
	List(ctx context.Context, collection models.Collection) ([]models.Document, error)

	// Import creates every document in the batch, returning counts per collection.
	Import(ctx context.Context, batch map[models.Collection][]models.Document) (map[models.Collection]int, error)

	// Snapshot reads all source collections concurrently and canonicalises them.
	Snapshot(ctx context.Context) (*models.RecordSet, error)

	// AuditSince returns audit entries at or after since, oldest first.
	AuditSince(ctx context.Context, since time.Time) ([]models.AuditEntry, error)

	// UserIDs lists every user with documents in collection, across all users.
	UserIDs(ctx context.Context, collection models.Collection) ([]string, error)
}

// LedgerService derives the signed transaction ledger from source records
type LedgerService interface {
	DeriveTransactions(ctx context.Context, query models.LedgerQuery) ([]models.Transaction, error)

	// DeriveFrom derives from an already-loaded record set without filtering.
	DeriveFrom(set *models.RecordSet) []models.Transaction
}

// ReportService reduces the ledger into balances and statements
type ReportService interface {
	AccountBalance(ctx context.Context, accountID string, asOf time.Time) (*models.AccountBalance, error)
	AccountBalances(ctx context.Context, asOf time.Time) ([]models.AccountBalance, error)
	DashboardTotals(ctx context.Context, window models.DateWindow) (*models.DashboardTotals, error)
	BalanceSheet(ctx context.Context, asOf, from time.Time) (*models.BalanceSheet, error)
}

// PortfolioService analyses investment records directly
type PortfolioService interface {
	Snapshot(ctx context.Context, asOf time.Time) (*models.PortfolioSnapshot, error)
}

// PriceFeed is the cancellable background unit-price drift task
type PriceFeed interface {
	Pause()
	Resume()
	Paused() bool

	// Tick runs one drift pass immediately and returns the number of investments updated.
	Tick(ctx context.Context) (int, error)

	Status() models.PriceFeedStatus
}
