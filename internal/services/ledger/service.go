// Package ledger derives the signed transaction ledger from source records.
// Nothing here is persisted: every query re-reads and re-derives.
package ledger

import (
	"context"
	"fmt"

	"github.com/bobmcallan/tally/internal/common"
	"github.com/bobmcallan/tally/internal/interfaces"
	"github.com/bobmcallan/tally/internal/models"
)

// Compile-time interface check
var _ interfaces.LedgerService = (*Service)(nil)

// Service implements LedgerService
type Service struct {
	records interfaces.RecordService
	logger  *common.Logger
}

// NewService creates a new ledger service
func NewService(records interfaces.RecordService, logger *common.Logger) *Service {
	return &Service{
		records: records,
		logger:  logger,
	}
}

// DeriveTransactions loads a snapshot and returns the entries matching the query.
func (s *Service) DeriveTransactions(ctx context.Context, query models.LedgerQuery) ([]models.Transaction, error) {
	set, err := s.records.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load records: %w", err)
	}
	all := s.DeriveFrom(set)
	out := Filter(all, query)

	s.logger.Debug().
		Int("derived", len(all)).
		Int("returned", len(out)).
		Str("account_id", query.AccountID).
		Msg("Ledger derived")
	return out, nil
}

func (s *Service) DeriveFrom(set *models.RecordSet) []models.Transaction {
	return Derive(set)
}
