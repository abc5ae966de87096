package records

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/bobmcallan/tally/internal/common"
	"github.com/bobmcallan/tally/internal/interfaces"
	"github.com/bobmcallan/tally/internal/models"
	"github.com/bobmcallan/tally/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)

func newTestService(t *testing.T) *Service {
	t.Helper()
	cfg := common.NewDefaultConfig()
	cfg.Storage.Backend = common.BackendMemory

	mgr, err := storage.NewManager(common.NewSilentLogger(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { mgr.Close() })

	return NewService(mgr, common.NewSilentLogger()).WithClock(func() time.Time { return fixedNow })
}

func TestCreate_AssignsIDAndDefaultsDate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	doc, err := svc.Create(ctx, models.CollectionIncome, models.Document{"amount": 1200, "source": "Salary"})
	require.NoError(t, err)

	id := doc.ID()
	assert.True(t, strings.HasPrefix(id, "inc_"), "id %q", id)
	assert.Len(t, id, len("inc_")+12)
	assert.Equal(t, "2025-06-15", doc["date"], "missing date defaults to today")
	assert.Equal(t, 1, doc["version"])

	got, err := svc.Get(ctx, models.CollectionIncome, id)
	require.NoError(t, err)
	assert.Equal(t, "Salary", got["source"])
}

func TestCreate_KeepsSuppliedIDAndDate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	doc, err := svc.Create(ctx, models.CollectionInvestments, models.Document{
		"id":        "inv_custom",
		"type":      "FD",
		"startDate": "2025-01-01",
	})
	require.NoError(t, err)
	assert.Equal(t, "inv_custom", doc.ID())
	assert.NotContains(t, doc, "start_date", "alias already supplies the start date")
}

func TestCreate_RejectsAuditAndUnknownCollections(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, models.CollectionAudit, models.Document{"action": "create"})
	assert.ErrorIs(t, err, interfaces.ErrInvalidRecord)

	_, err = svc.Create(ctx, models.Collection("holdings"), models.Document{})
	assert.ErrorIs(t, err, interfaces.ErrInvalidCollection)

	_, err = svc.Create(ctx, models.CollectionIncome, nil)
	assert.ErrorIs(t, err, interfaces.ErrInvalidRecord)
}

func TestUpdate_MergesAndRemovesNulls(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, models.CollectionExpenses, models.Document{
		"amount":   50,
		"date":     "2025-06-01",
		"category": "Food",
		"status":   "pending",
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, models.CollectionExpenses, created.ID(), models.Document{
		"amount": 75,
		"status": nil,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 75, updated["amount"])
	assert.Equal(t, "Food", updated["category"])
	assert.NotContains(t, updated, "status")
	assert.Equal(t, 2, updated["version"])
	assert.Equal(t, created["created_at"], updated["created_at"])

	_, err = svc.Update(ctx, models.CollectionExpenses, "exp_missing", models.Document{"amount": 1})
	assert.True(t, interfaces.IsNotFound(err))
}

func TestDelete_RemovesAndAudits(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, models.CollectionLoans, models.Document{"lender": "Bank", "amount_borrowed": 1000})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, models.CollectionLoans, created.ID()))

	_, err = svc.Get(ctx, models.CollectionLoans, created.ID())
	assert.True(t, interfaces.IsNotFound(err))

	assert.True(t, interfaces.IsNotFound(svc.Delete(ctx, models.CollectionLoans, created.ID())))

	entries, err := svc.AuditSince(ctx, time.Time{})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	var actions []models.AuditAction
	for _, e := range entries {
		actions = append(actions, e.Action)
		assert.Equal(t, models.CollectionLoans, e.Store)
		assert.Equal(t, created.ID(), e.ItemID)
	}
	assert.ElementsMatch(t, []models.AuditAction{models.AuditCreate, models.AuditDelete}, actions)
}

func TestAudit_BeforeAndAfter(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, models.CollectionAccounts, models.Document{"name": "Checking"})
	require.NoError(t, err)

	svc.now = func() time.Time { return fixedNow.Add(time.Hour) }
	_, err = svc.Update(ctx, models.CollectionAccounts, created.ID(), models.Document{"name": "Main"})
	require.NoError(t, err)

	entries, err := svc.AuditSince(ctx, fixedNow.Add(30*time.Minute))
	require.NoError(t, err)
	require.Len(t, entries, 1)

	entry := entries[0]
	assert.Equal(t, models.AuditUpdate, entry.Action)

	var before, after map[string]any
	require.NoError(t, json.Unmarshal(entry.Before, &before))
	require.NoError(t, json.Unmarshal(entry.After, &after))
	assert.Equal(t, "Checking", before["name"])
	assert.Equal(t, "Main", after["name"])
}

func TestUpdateNoAudit(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, models.CollectionInvestments, models.Document{"type": "MF", "units": 10, "current_unit_price": 100})
	require.NoError(t, err)

	_, err = svc.UpdateNoAudit(ctx, models.CollectionInvestments, created.ID(), models.Document{"current_unit_price": 101.5})
	require.NoError(t, err)

	entries, err := svc.AuditSince(ctx, time.Time{})
	require.NoError(t, err)
	assert.Len(t, entries, 1, "only the create is audited")
}

func TestImport(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	counts, err := svc.Import(ctx, map[models.Collection][]models.Document{
		models.CollectionAccounts: {{"id": "acct_1", "name": "Checking"}},
		models.CollectionIncome:   {{"amount": 10}, {"amount": 20}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, counts[models.CollectionAccounts])
	assert.Equal(t, 2, counts[models.CollectionIncome])

	_, err = svc.Import(ctx, map[models.Collection][]models.Document{
		models.CollectionAudit: {{"action": "create"}},
	})
	assert.ErrorIs(t, err, interfaces.ErrInvalidRecord)
}

func TestSnapshot_Canonicalises(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	docs := map[models.Collection][]models.Document{
		models.CollectionAccounts: {
			{"id": "acct_1", "name": "Checking", "type": "Credit Card", "creditLimit": "5000"},
		},
		models.CollectionIncome: {
			{"id": "inc_1", "inflow": "1,250.50", "date": "2025-03-01", "accountId": "acct_1"},
		},
		models.CollectionExpenses: {
			{"id": "exp_1", "amount": -40, "date": "2025-03-02", "account_id": "acct_deleted", "status": "Pending"},
		},
		models.CollectionInvestments: {
			{
				"id": "inv_fd", "type": "fd", "principal": 10000, "interest_rate": "6",
				"tenure": "12", "compounding": 4, "startDate": "2025-01-01",
				"status": "cashed_out", "payout_method": "periodic", "payoutFrequency": "monthly",
			},
			{
				"id": "inv_mf", "type": "MF", "units": 50, "purchase_price": 100,
				"current_price": 120, "start_date": "2025-01-01",
				"statusHistory": []any{
					map[string]any{"status": "Created", "date": "2025-01-01"},
					map[string]any{"status": "running", "date": "2025-01-02"},
				},
			},
		},
		models.CollectionLoans: {
			{"id": "loan_1", "lender": "Bank", "principal": "20000", "rate": 9, "date": "2025-02-01"},
		},
		models.CollectionLoanPayments: {
			{"id": "pay_1", "loanId": "loan_1", "amount": 500, "date": "2025-03-01"},
		},
	}
	_, err := svc.Import(ctx, docs)
	require.NoError(t, err)

	set, err := svc.Snapshot(ctx)
	require.NoError(t, err)

	require.Len(t, set.Accounts, 1)
	acct := set.Accounts[0]
	assert.Equal(t, models.AccountCreditCard, acct.Type)
	require.NotNil(t, acct.CreditLimit)
	assert.Equal(t, 5000.0, *acct.CreditLimit)

	require.Len(t, set.Income, 1)
	assert.Equal(t, 1250.50, set.Income[0].Amount)
	assert.Equal(t, models.RefAssigned, set.Income[0].Account.State)

	require.Len(t, set.Expenses, 1)
	assert.Equal(t, 40.0, set.Expenses[0].Amount, "sign comes from the record type")
	assert.Equal(t, models.RefDangling, set.Expenses[0].Account.State)
	assert.True(t, set.Expenses[0].IsLiability())

	require.Len(t, set.Investments, 2)
	byID := map[string]models.Investment{}
	for _, inv := range set.Investments {
		byID[inv.ID] = inv
	}

	fd, ok := byID["inv_fd"].FixedTerm()
	require.True(t, ok)
	assert.Equal(t, models.FixedTerm{
		Principal:          10000,
		Rate:               6,
		CompoundingPerYear: 4,
		TenureMonths:       12,
		Payout:             models.PayoutPeriodic,
		PeriodsPerYear:     12,
	}, fd)
	assert.Equal(t, models.StatusCashedOut, byID["inv_fd"].Status)

	mf, ok := byID["inv_mf"].UnitPriced()
	require.True(t, ok)
	assert.Equal(t, 5000.0, mf.Principal, "principal derived from units × unit cost")
	assert.Equal(t, 120.0, mf.CurrentPrice)
	assert.Equal(t, models.StatusRunning, byID["inv_mf"].Status, "status from latest history entry")
	assert.Equal(t, models.RefUnassigned, byID["inv_mf"].Account.State)

	require.Len(t, set.Loans, 1)
	assert.Equal(t, 20000.0, set.Loans[0].AmountBorrowed)
	assert.Equal(t, 9.0, set.Loans[0].InterestRate)
	assert.Equal(t, "2025-02-01", common.FormatDate(set.Loans[0].StartDate))

	require.Len(t, set.LoanPayments, 1)
	assert.Equal(t, "loan_1", set.LoanPayments[0].LoanID)
}

func TestSnapshot_ScopedByUser(t *testing.T) {
	svc := newTestService(t)

	alice := common.WithUserContext(context.Background(), &common.UserContext{UserID: "alice"})
	bob := common.WithUserContext(context.Background(), &common.UserContext{UserID: "bob"})

	_, err := svc.Create(alice, models.CollectionIncome, models.Document{"amount": 10})
	require.NoError(t, err)

	set, err := svc.Snapshot(bob)
	require.NoError(t, err)
	assert.Empty(t, set.Income)

	set, err = svc.Snapshot(alice)
	require.NoError(t, err)
	assert.Len(t, set.Income, 1)
}
