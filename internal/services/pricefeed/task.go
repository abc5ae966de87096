// Package pricefeed runs the simulated unit-price feed: a background task
// that drifts the current price of market-linked investments on an interval.
package pricefeed

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/bobmcallan/tally/internal/common"
	"github.com/bobmcallan/tally/internal/finance"
	"github.com/bobmcallan/tally/internal/interfaces"
	"github.com/bobmcallan/tally/internal/models"
	"golang.org/x/time/rate"
)

// Compile-time interface check
var _ interfaces.PriceFeed = (*Task)(nil)

// minPrice is the floor a drifted price never goes below.
const minPrice = 0.01

// priceField is the canonical field a tick writes.
const priceField = "current_unit_price"

// Store is what a tick needs from the records service.
type Store interface {
	UserIDs(ctx context.Context, collection models.Collection) ([]string, error)
	Snapshot(ctx context.Context) (*models.RecordSet, error)
	UpdateNoAudit(ctx context.Context, collection models.Collection, id string, doc models.Document) (models.Document, error)
}

// Task owns the drift loop. The host process starts and stops it; pausing
// skips ticks without stopping the loop.
type Task struct {
	store    Store
	logger   *common.Logger
	enabled  bool
	interval time.Duration
	maxDrift float64
	random   func() float64
	limiter  *rate.Limiter

	mu          sync.Mutex
	paused      bool
	cancel      context.CancelFunc
	done        chan struct{}
	ticks       int
	lastTick    time.Time
	lastUpdated int
}

// NewTask creates a price feed task from config.
func NewTask(store Store, cfg common.PriceFeedConfig, logger *common.Logger) *Task {
	return &Task{
		store:    store,
		logger:   logger,
		enabled:  cfg.Enabled,
		interval: cfg.GetInterval(),
		maxDrift: math.Abs(cfg.MaxDriftPct),
		random:   rand.Float64,
		limiter:  rate.NewLimiter(rate.Limit(cfg.GetWritesPerSecond()), cfg.GetWritesPerSecond()),
	}
}

// WithRandom replaces the [0,1) source used to pick each drift.
func (t *Task) WithRandom(random func() float64) *Task {
	t.random = random
	return t
}

// Start launches the loop. It is a no-op when the feed is disabled or
// already running.
func (t *Task) Start(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.enabled || t.cancel != nil {
		return
	}
	loopCtx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.done = make(chan struct{})
	go t.run(loopCtx, t.done)

	t.logger.Info().
		Str("interval", t.interval.String()).
		Float64("max_drift_pct", t.maxDrift).
		Msg("Price feed: started")
}

// Stop cancels the loop and waits for it to exit.
func (t *Task) Stop() {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.cancel, t.done = nil, nil
	t.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (t *Task) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer t.finished(done)
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			t.logger.Info().Msg("Price feed: stopped")
			return
		case <-ticker.C:
			if _, err := t.Tick(ctx); err != nil {
				t.logger.Warn().Err(err).Msg("Price feed: tick failed")
			}
		}
	}
}

// finished clears the running state when the loop exits on its own, such
// as when the parent context is cancelled. Stop has already cleared it otherwise.
func (t *Task) finished(done chan struct{}) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done == done {
		t.cancel()
		t.cancel, t.done = nil, nil
	}
}

func (t *Task) Pause() {
	t.mu.Lock()
	t.paused = true
	t.mu.Unlock()
	t.logger.Info().Msg("Price feed: paused")
}

func (t *Task) Resume() {
	t.mu.Lock()
	t.paused = false
	t.mu.Unlock()
	t.logger.Info().Msg("Price feed: resumed")
}

func (t *Task) Paused() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.paused
}

// Tick runs one drift pass over every user's investments and returns how
// many were updated. A paused feed skips the pass.
func (t *Task) Tick(ctx context.Context) (int, error) {
	if t.Paused() {
		return 0, nil
	}
	start := time.Now()

	users, err := t.store.UserIDs(ctx, models.CollectionInvestments)
	if err != nil {
		return 0, fmt.Errorf("failed to list users: %w", err)
	}

	updated := 0
	for _, userID := range users {
		n, err := t.tickUser(common.WithUserContext(ctx, &common.UserContext{UserID: userID}))
		updated += n
		if err != nil {
			return updated, fmt.Errorf("user %s: %w", userID, err)
		}
	}

	t.mu.Lock()
	t.ticks++
	t.lastTick = start
	t.lastUpdated = updated
	t.mu.Unlock()

	t.logger.Debug().
		Int("users", len(users)).
		Int("updated", updated).
		Dur("elapsed", time.Since(start)).
		Msg("Price feed: tick complete")
	return updated, nil
}

// tickUser drifts the investments of the user in ctx.
func (t *Task) tickUser(ctx context.Context) (int, error) {
	set, err := t.store.Snapshot(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load investments: %w", err)
	}

	updated := 0
	for _, inv := range set.Investments {
		u, ok := inv.UnitPriced()
		if !ok || u.CurrentPrice <= 0 || !live(inv) {
			continue
		}
		price := t.drift(u.CurrentPrice)
		if price == u.CurrentPrice {
			continue
		}
		if err := t.limiter.Wait(ctx); err != nil {
			return updated, fmt.Errorf("price feed interrupted: %w", err)
		}
		if _, err := t.store.UpdateNoAudit(ctx, models.CollectionInvestments, inv.ID, models.Document{priceField: price}); err != nil {
			if interfaces.IsNotFound(err) {
				continue
			}
			return updated, fmt.Errorf("failed to update price for %s: %w", inv.ID, err)
		}
		updated++
	}
	return updated, nil
}

// drift moves price by a random fraction in [-maxDrift%, +maxDrift%].
func (t *Task) drift(price float64) float64 {
	factor := 1 + (t.random()*2-1)*t.maxDrift/100
	return math.Max(minPrice, finance.Round2(price*factor))
}

// live reports whether the investment still tracks a market price.
func live(inv models.Investment) bool {
	if inv.HasCashout() {
		return false
	}
	switch inv.Status {
	case models.StatusCashedOut, models.StatusClosed, models.StatusMatured:
		return false
	}
	return true
}

func (t *Task) Status() models.PriceFeedStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return models.PriceFeedStatus{
		Enabled:     t.enabled,
		Running:     t.cancel != nil,
		Paused:      t.paused,
		Interval:    t.interval.String(),
		MaxDriftPct: t.maxDrift,
		Ticks:       t.ticks,
		LastTick:    t.lastTick,
		LastUpdated: t.lastUpdated,
	}
}
