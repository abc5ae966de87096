// Package records is the store boundary: document CRUD with an audit trail,
// and canonicalisation of loosely-typed documents into typed models.
package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bobmcallan/tally/internal/common"
	"github.com/bobmcallan/tally/internal/interfaces"
	"github.com/bobmcallan/tally/internal/models"
	"github.com/google/uuid"
)

// Compile-time interface check
var _ interfaces.RecordService = (*Service)(nil)

// idPrefix is prepended to generated ids, per collection.
var idPrefix = map[models.Collection]string{
	models.CollectionIncome:       "inc_",
	models.CollectionExpenses:     "exp_",
	models.CollectionInvestments:  "inv_",
	models.CollectionLoans:        "loan_",
	models.CollectionLoanPayments: "pay_",
	models.CollectionAccounts:     "acct_",
	models.CollectionAudit:        "aud_",
}

// Service implements RecordService
type Service struct {
	storage interfaces.StorageManager
	logger  *common.Logger
	now     func() time.Time
}

// NewService creates a new records service
func NewService(storage interfaces.StorageManager, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
		now:     time.Now,
	}
}

// WithClock replaces the clock used for creation defaults and audit timestamps.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// generateID returns the collection prefix + 12 hex chars.
func generateID(collection models.Collection) string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return idPrefix[collection] + hex[:12]
}

func checkWritable(collection models.Collection) error {
	if err := interfaces.ValidateCollection(collection); err != nil {
		return err
	}
	if collection == models.CollectionAudit {
		return fmt.Errorf("%w: audit log is append-only", interfaces.ErrInvalidRecord)
	}
	return nil
}

func decode(rec *models.Record) (models.Document, error) {
	var doc models.Document
	if err := json.Unmarshal([]byte(rec.Value), &doc); err != nil {
		return nil, fmt.Errorf("failed to decode %s '%s': %w", rec.Collection, rec.ID, err)
	}
	if doc == nil {
		doc = models.Document{}
	}
	return doc, nil
}

// withMeta returns the document as clients see it: stored fields plus id,
// version and store timestamps.
func withMeta(doc models.Document, rec *models.Record) models.Document {
	out := make(models.Document, len(doc)+4)
	for k, v := range doc {
		out[k] = v
	}
	out["id"] = rec.ID
	out["version"] = rec.Version
	out["created_at"] = rec.CreatedAt.UTC().Format(time.RFC3339)
	out["updated_at"] = rec.UpdatedAt.UTC().Format(time.RFC3339)
	return out
}

// stripMeta drops the store-managed fields a client may echo back.
func stripMeta(doc models.Document) {
	delete(doc, "version")
	delete(doc, "created_at")
	delete(doc, "updated_at")
}

func (s *Service) put(ctx context.Context, collection models.Collection, id string, doc models.Document) (*models.Record, error) {
	doc["id"] = id
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", interfaces.ErrInvalidRecord, err)
	}
	rec := &models.Record{
		UserID:     common.ResolveUserID(ctx),
		Collection: collection,
		ID:         id,
		Value:      string(data),
	}
	if err := s.storage.RecordStore().Put(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Create stores a new document. A missing id is generated and a missing
// primary date defaults to today. Creating over an existing id replaces it.
func (s *Service) Create(ctx context.Context, collection models.Collection, doc models.Document) (models.Document, error) {
	if err := checkWritable(collection); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: document must be a JSON object", interfaces.ErrInvalidRecord)
	}
	stripMeta(doc)

	id := strings.TrimSpace(doc.ID())
	if id == "" {
		id = generateID(collection)
	}
	if keys, ok := primaryDate[collection]; ok {
		if date(doc, keys...).IsZero() {
			doc[keys[0]] = common.FormatDate(common.TruncateDay(s.now()))
		}
	}

	action := models.AuditCreate
	var before models.Document
	if existing, err := s.storage.RecordStore().Get(ctx, common.ResolveUserID(ctx), collection, id); err == nil {
		action = models.AuditUpdate
		before, _ = decode(existing)
	} else if !interfaces.IsNotFound(err) {
		return nil, err
	}

	rec, err := s.put(ctx, collection, id, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", collection, err)
	}
	s.audit(ctx, action, collection, id, before, doc)

	s.logger.Info().Str("collection", string(collection)).Str("id", id).Msg("Record created")
	return withMeta(doc, rec), nil
}

// Update merges doc into the stored document. Fields set to null are removed;
// id and creation time are kept.
func (s *Service) Update(ctx context.Context, collection models.Collection, id string, doc models.Document) (models.Document, error) {
	return s.update(ctx, collection, id, doc, true)
}

// UpdateNoAudit is Update without an audit entry, for machine-generated writes.
func (s *Service) UpdateNoAudit(ctx context.Context, collection models.Collection, id string, doc models.Document) (models.Document, error) {
	return s.update(ctx, collection, id, doc, false)
}

func (s *Service) update(ctx context.Context, collection models.Collection, id string, patch models.Document, withAudit bool) (models.Document, error) {
	if err := checkWritable(collection); err != nil {
		return nil, err
	}
	existing, err := s.storage.RecordStore().Get(ctx, common.ResolveUserID(ctx), collection, id)
	if err != nil {
		return nil, err
	}
	before, err := decode(existing)
	if err != nil {
		return nil, err
	}

	merged := make(models.Document, len(before)+len(patch))
	for k, v := range before {
		merged[k] = v
	}
	stripMeta(patch)
	for k, v := range patch {
		if v == nil {
			delete(merged, k)
			continue
		}
		merged[k] = v
	}

	rec, err := s.put(ctx, collection, id, merged)
	if err != nil {
		return nil, fmt.Errorf("failed to update %s '%s': %w", collection, id, err)
	}
	if withAudit {
		s.audit(ctx, models.AuditUpdate, collection, id, before, merged)
		s.logger.Info().Str("collection", string(collection)).Str("id", id).Msg("Record updated")
	}
	return withMeta(merged, rec), nil
}

// Delete removes a document. Derived ledger entries disappear with it; other
// records that referenced it are left alone and degrade at read time.
func (s *Service) Delete(ctx context.Context, collection models.Collection, id string) error {
	if err := checkWritable(collection); err != nil {
		return err
	}
	userID := common.ResolveUserID(ctx)
	existing, err := s.storage.RecordStore().Get(ctx, userID, collection, id)
	if err != nil {
		return err
	}
	if err := s.storage.RecordStore().Delete(ctx, userID, collection, id); err != nil {
		return fmt.Errorf("failed to delete %s '%s': %w", collection, id, err)
	}
	before, _ := decode(existing)
	s.audit(ctx, models.AuditDelete, collection, id, before, nil)

	s.logger.Info().Str("collection", string(collection)).Str("id", id).Msg("Record deleted")
	return nil
}

func (s *Service) Get(ctx context.Context, collection models.Collection, id string) (models.Document, error) {
	rec, err := s.storage.RecordStore().Get(ctx, common.ResolveUserID(ctx), collection, id)
	if err != nil {
		return nil, err
	}
	doc, err := decode(rec)
	if err != nil {
		return nil, err
	}
	return withMeta(doc, rec), nil
}

// UserIDs lists every user holding documents in collection. It is not
// scoped by the caller's user context.
func (s *Service) UserIDs(ctx context.Context, collection models.Collection) ([]string, error) {
	return s.storage.RecordStore().UserIDs(ctx, collection)
}

// List returns every document in the collection. Undecodable documents are
// skipped with a warning.
func (s *Service) List(ctx context.Context, collection models.Collection) ([]models.Document, error) {
	recs, err := s.storage.RecordStore().GetAll(ctx, common.ResolveUserID(ctx), collection)
	if err != nil {
		return nil, err
	}
	out := make([]models.Document, 0, len(recs))
	for _, rec := range recs {
		doc, err := decode(rec)
		if err != nil {
			s.logger.Warn().Err(err).Msg("Skipping undecodable record")
			continue
		}
		out = append(out, withMeta(doc, rec))
	}
	return out, nil
}

// Import creates every document in the batch. It stops at the first failure.
func (s *Service) Import(ctx context.Context, batch map[models.Collection][]models.Document) (map[models.Collection]int, error) {
	for collection := range batch {
		if err := checkWritable(collection); err != nil {
			return nil, err
		}
	}
	counts := make(map[models.Collection]int)
	for _, collection := range models.SourceCollections {
		for _, doc := range batch[collection] {
			if _, err := s.Create(ctx, collection, doc); err != nil {
				return counts, fmt.Errorf("failed to import %s: %w", collection, err)
			}
			counts[collection]++
		}
	}
	s.logger.Info().Int("collections", len(counts)).Msg("Records imported")
	return counts, nil
}

// Snapshot reads the six source collections concurrently, then canonicalises
// each document once and reconciles account references.
func (s *Service) Snapshot(ctx context.Context) (*models.RecordSet, error) {
	userID := common.ResolveUserID(ctx)
	store := s.storage.RecordStore()

	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		errs []error
		raw  = make(map[models.Collection][]*models.Record, len(models.SourceCollections))
	)
	for _, collection := range models.SourceCollections {
		wg.Add(1)
		go func(c models.Collection) {
			defer wg.Done()
			recs, err := store.GetAll(ctx, userID, c)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("failed to read %s: %w", c, err))
				return
			}
			raw[c] = recs
		}(collection)
	}
	wg.Wait()
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	set := &models.RecordSet{}
	each := func(c models.Collection, fn func(models.Document, meta)) {
		for _, rec := range raw[c] {
			doc, err := decode(rec)
			if err != nil {
				s.logger.Warn().Err(err).Msg("Skipping undecodable record")
				continue
			}
			fn(doc, recordMeta(doc, rec))
		}
	}
	each(models.CollectionAccounts, func(d models.Document, m meta) { set.Accounts = append(set.Accounts, toAccount(d, m)) })
	each(models.CollectionIncome, func(d models.Document, m meta) { set.Income = append(set.Income, toIncome(d, m)) })
	each(models.CollectionExpenses, func(d models.Document, m meta) { set.Expenses = append(set.Expenses, toExpense(d, m)) })
	each(models.CollectionInvestments, func(d models.Document, m meta) { set.Investments = append(set.Investments, toInvestment(d, m)) })
	each(models.CollectionLoans, func(d models.Document, m meta) { set.Loans = append(set.Loans, toLoan(d, m)) })
	each(models.CollectionLoanPayments, func(d models.Document, m meta) { set.LoanPayments = append(set.LoanPayments, toLoanPayment(d, m)) })
	reconcile(set)

	return set, nil
}

// audit appends an entry to the audit log. Failures are logged and never
// fail the mutation that triggered them.
func (s *Service) audit(ctx context.Context, action models.AuditAction, collection models.Collection, itemID string, before, after models.Document) {
	entry := models.AuditEntry{
		ID:        generateID(models.CollectionAudit),
		Action:    action,
		Store:     collection,
		ItemID:    itemID,
		Timestamp: s.now().UTC(),
	}
	if before != nil {
		entry.Before, _ = json.Marshal(before)
	}
	if after != nil {
		entry.After, _ = json.Marshal(after)
	}
	data, err := json.Marshal(entry)
	if err != nil {
		s.logger.Warn().Err(err).Str("id", itemID).Msg("Failed to encode audit entry")
		return
	}
	rec := &models.Record{
		UserID:     common.ResolveUserID(ctx),
		Collection: models.CollectionAudit,
		ID:         entry.ID,
		Value:      string(data),
	}
	if err := s.storage.RecordStore().Put(ctx, rec); err != nil {
		s.logger.Warn().Err(err).Str("collection", string(collection)).Str("id", itemID).Msg("Failed to write audit entry")
	}
}

// AuditSince returns audit entries with a timestamp at or after since, oldest
// first. A zero since returns the whole log.
func (s *Service) AuditSince(ctx context.Context, since time.Time) ([]models.AuditEntry, error) {
	recs, err := s.storage.RecordStore().GetAll(ctx, common.ResolveUserID(ctx), models.CollectionAudit)
	if err != nil {
		return nil, err
	}
	entries := make([]models.AuditEntry, 0, len(recs))
	for _, rec := range recs {
		var entry models.AuditEntry
		if err := json.Unmarshal([]byte(rec.Value), &entry); err != nil {
			s.logger.Warn().Err(err).Str("id", rec.ID).Msg("Skipping undecodable audit entry")
			continue
		}
		if !since.IsZero() && entry.Timestamp.Before(since) {
			continue
		}
		entries = append(entries, entry)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].Timestamp.Equal(entries[j].Timestamp) {
			return entries[i].Timestamp.Before(entries[j].Timestamp)
		}
		return entries[i].ID < entries[j].ID
	})
	return entries, nil
}
