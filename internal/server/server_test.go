package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bobmcallan/tally/internal/app"
	"github.com/bobmcallan/tally/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *app.App) {
	t.Helper()
	config := common.NewDefaultConfig()
	config.Storage.Backend = common.BackendMemory
	config.PriceFeed.Enabled = false

	a, err := app.NewAppWithConfig(config, common.NewSilentLogger())
	require.NoError(t, err)
	t.Cleanup(a.Close)
	a.PriceFeed.WithRandom(func() float64 { return 1 })
	return NewServer(a), a
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

// seed writes one account, an income, an expense and a priced mutual fund.
func seed(t *testing.T, h http.Handler) (expenseID string) {
	t.Helper()
	rr := do(t, h, http.MethodPost, "/api/records/accounts", map[string]interface{}{"id": "acct_bank", "name": "Bank"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = do(t, h, http.MethodPost, "/api/records/income", map[string]interface{}{
		"source": "Salary", "amount": 3000, "date": "2025-02-01", "account_id": "acct_bank",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = do(t, h, http.MethodPost, "/api/records/expenses", map[string]interface{}{
		"category": "Groceries", "amount": 200, "date": "2025-03-05", "account_id": "acct_bank",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	expenseID = decodeBody(t, rr)["id"].(string)

	rr = do(t, h, http.MethodPost, "/api/records/investments", map[string]interface{}{
		"name": "Index Fund", "type": "MF", "units": 10, "unit_cost": 100,
		"current_unit_price": 110, "start_date": "2025-01-10", "account_id": "acct_bank",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return expenseID
}

func TestHealthAndVersion(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	rr := do(t, h, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "memory", decodeBody(t, rr)["backend"])
	assert.NotEmpty(t, rr.Header().Get("X-Correlation-ID"))

	rr = do(t, h, http.MethodGet, "/api/version", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, decodeBody(t, rr), "version")

	rr = do(t, h, http.MethodPost, "/api/health", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestRecordsCRUD(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()
	expenseID := seed(t, h)

	rr := do(t, h, http.MethodGet, "/api/records/income", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.EqualValues(t, 1, decodeBody(t, rr)["count"])

	rr = do(t, h, http.MethodPut, "/api/records/expenses/"+expenseID, map[string]interface{}{"amount": 250})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.EqualValues(t, 250, decodeBody(t, rr)["amount"])

	rr = do(t, h, http.MethodGet, "/api/records/expenses/"+expenseID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Groceries", decodeBody(t, rr)["category"])

	rr = do(t, h, http.MethodDelete, "/api/records/expenses/"+expenseID, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, h, http.MethodGet, "/api/records/expenses/"+expenseID, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, h, http.MethodDelete, "/api/records/expenses/"+expenseID, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRecords_Errors(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	rr := do(t, h, http.MethodGet, "/api/records/widgets", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "invalid_collection", decodeBody(t, rr)["code"])

	rr = do(t, h, http.MethodPost, "/api/records/audit", map[string]interface{}{"action": "create"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/records/income", strings.NewReader("{not json"))
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, h, http.MethodGet, "/api/records/income/a/b", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAudit(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()
	seed(t, h)

	rr := do(t, h, http.MethodGet, "/api/audit", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.EqualValues(t, 4, decodeBody(t, rr)["count"])

	rr = do(t, h, http.MethodGet, "/api/audit?since=2999-01-01", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.EqualValues(t, 0, decodeBody(t, rr)["count"])

	rr = do(t, h, http.MethodGet, "/api/audit?since=soon", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestTransactionsAndBalances(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()
	seed(t, h)

	rr := do(t, h, http.MethodGet, "/api/transactions", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.EqualValues(t, 3, decodeBody(t, rr)["count"])

	rr = do(t, h, http.MethodGet, "/api/transactions?from=2025-03-01&to=2025-03-31", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.EqualValues(t, 1, decodeBody(t, rr)["count"])

	rr = do(t, h, http.MethodGet, "/api/transactions?account_id=acct_other", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.EqualValues(t, 0, decodeBody(t, rr)["count"])

	rr = do(t, h, http.MethodGet, "/api/accounts/acct_bank/balance?as_of=2025-12-31", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	body := decodeBody(t, rr)
	assert.InDelta(t, 1800.0, body["balance"], 0.001)
	assert.EqualValues(t, 3, body["transaction_count"])

	rr = do(t, h, http.MethodGet, "/api/accounts/acct_bank/balance?as_of=2025-01-31", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.InDelta(t, -1000.0, decodeBody(t, rr)["balance"], 0.001)

	rr = do(t, h, http.MethodGet, "/api/accounts/acct_missing/balance", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, h, http.MethodGet, "/api/accounts/balances?as_of=2025-12-31", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.EqualValues(t, 2, decodeBody(t, rr)["count"])
}

func TestReports(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()
	seed(t, h)

	rr := do(t, h, http.MethodGet, "/api/dashboard?from=2025-01-01&to=2025-12-31", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	dash := decodeBody(t, rr)
	assert.InDelta(t, 1000.0, dash["total_invested"], 0.001)
	assert.InDelta(t, 3000.0, dash["total_income"], 0.001)
	assert.InDelta(t, 200.0, dash["total_expenses"], 0.001)

	rr = do(t, h, http.MethodGet, "/api/balance-sheet?as_of=2025-12-31", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	sheet := decodeBody(t, rr)
	check := sheet["balance_check"].(map[string]interface{})
	assert.Equal(t, true, check["balanced"])

	rr = do(t, h, http.MethodGet, "/api/portfolio?as_of=2025-06-30", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	snap := decodeBody(t, rr)
	assert.InDelta(t, 1000.0, snap["total_principal"], 0.001)
	assert.InDelta(t, 100.0, snap["unrealized_pl"], 0.001)
}

func TestReports_Markdown(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()
	seed(t, h)

	rr := do(t, h, http.MethodGet, "/api/dashboard?format=markdown", nil, "X-Tally-Currency", "usd")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/markdown")
	assert.Contains(t, rr.Body.String(), "# Dashboard")
	assert.Contains(t, rr.Body.String(), "**Income:** $3,000.00")
}

func TestUserScoping(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()
	seed(t, h)

	rr := do(t, h, http.MethodGet, "/api/records/income", nil, "X-Tally-User-ID", "bob")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.EqualValues(t, 0, decodeBody(t, rr)["count"])
}

func TestPriceFeedEndpoints(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()
	seed(t, h)

	rr := do(t, h, http.MethodGet, "/api/price-feed", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, false, decodeBody(t, rr)["enabled"])

	rr = do(t, h, http.MethodPost, "/api/price-feed/pause", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, true, decodeBody(t, rr)["paused"])

	rr = do(t, h, http.MethodPost, "/api/price-feed/tick", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.EqualValues(t, 0, decodeBody(t, rr)["updated"])

	rr = do(t, h, http.MethodPost, "/api/price-feed/resume", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, false, decodeBody(t, rr)["paused"])

	rr = do(t, h, http.MethodPost, "/api/price-feed/tick", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.EqualValues(t, 1, decodeBody(t, rr)["updated"])

	rr = do(t, h, http.MethodGet, "/api/price-feed/tick", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)

	rr = do(t, h, http.MethodPost, "/api/price-feed/restart", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestPortfolioChart(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	rr := do(t, h, http.MethodGet, "/api/portfolio/chart", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	seed(t, h)
	rr = do(t, h, http.MethodGet, "/api/portfolio/chart?as_of=2025-06-30", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rr.Body.Bytes(), []byte("\x89PNG")))
}
