// Package portfolio analyses investment records directly: allocation by type,
// realised and unrealised P&L, and upcoming maturities.
package portfolio

import (
	"context"
	"fmt"
	"time"

	"github.com/bobmcallan/tally/internal/common"
	"github.com/bobmcallan/tally/internal/interfaces"
	"github.com/bobmcallan/tally/internal/models"
)

// Compile-time interface check
var _ interfaces.PortfolioService = (*Service)(nil)

// Service implements PortfolioService
type Service struct {
	records interfaces.RecordService
	logger  *common.Logger
	now     func() time.Time
}

// NewService creates a new portfolio service
func NewService(records interfaces.RecordService, logger *common.Logger) *Service {
	return &Service{
		records: records,
		logger:  logger,
		now:     time.Now,
	}
}

// WithClock replaces the clock that resolves "today".
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Snapshot analyses every investment as of asOf (today when zero).
func (s *Service) Snapshot(ctx context.Context, asOf time.Time) (*models.PortfolioSnapshot, error) {
	if asOf.IsZero() {
		asOf = common.TruncateDay(s.now())
	}
	set, err := s.records.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load records: %w", err)
	}

	snap := Analyze(set.Investments, asOf)
	s.logger.Debug().
		Int("investments", len(set.Investments)).
		Float64("total_principal", snap.TotalPrincipal).
		Str("as_of", common.FormatDate(asOf)).
		Msg("Portfolio analysed")
	return snap, nil
}
