package server

import (
	"net/http"
	"strings"

	"github.com/bobmcallan/tally/internal/display"
	"github.com/bobmcallan/tally/internal/models"
)

// wantsMarkdown reports whether the caller asked for ?format=markdown.
func wantsMarkdown(r *http.Request) bool {
	return strings.EqualFold(r.URL.Query().Get("format"), "markdown")
}

// writeReport writes data as JSON, or as markdown rendered by render when requested.
func (s *Server) writeReport(w http.ResponseWriter, r *http.Request, data interface{}, render func(*display.Formatter) string) {
	if !wantsMarkdown(r) {
		WriteJSON(w, http.StatusOK, data)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(render(s.app.Formatter(r.Context()))))
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	from, ok := DateParam(w, r, "from")
	if !ok {
		return
	}
	to, ok := DateParam(w, r, "to")
	if !ok {
		return
	}

	query := models.LedgerQuery{
		DateWindow: models.DateWindow{From: from, To: to},
		AccountID:  strings.TrimSpace(r.URL.Query().Get("account_id")),
	}
	txs, err := s.app.LedgerService.DeriveTransactions(r.Context(), query)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	if txs == nil {
		txs = []models.Transaction{}
	}
	s.writeReport(w, r, map[string]interface{}{
		"count":        len(txs),
		"transactions": txs,
	}, func(f *display.Formatter) string { return f.Transactions(txs) })
}

func (s *Server) handleAccountBalances(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	asOf, ok := DateParam(w, r, "as_of")
	if !ok {
		return
	}
	balances, err := s.app.ReportService.AccountBalances(r.Context(), asOf)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	s.writeReport(w, r, map[string]interface{}{
		"count":    len(balances),
		"balances": balances,
	}, func(f *display.Formatter) string { return f.Balances(balances) })
}

func (s *Server) handleAccountBalance(w http.ResponseWriter, r *http.Request, accountID string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	asOf, ok := DateParam(w, r, "as_of")
	if !ok {
		return
	}
	balance, err := s.app.ReportService.AccountBalance(r.Context(), accountID, asOf)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	s.writeReport(w, r, balance, func(f *display.Formatter) string {
		return f.Balances([]models.AccountBalance{*balance})
	})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	from, ok := DateParam(w, r, "from")
	if !ok {
		return
	}
	to, ok := DateParam(w, r, "to")
	if !ok {
		return
	}
	totals, err := s.app.ReportService.DashboardTotals(r.Context(), models.DateWindow{From: from, To: to})
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	s.writeReport(w, r, totals, func(f *display.Formatter) string { return f.Dashboard(totals) })
}

func (s *Server) handleBalanceSheet(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	asOf, ok := DateParam(w, r, "as_of")
	if !ok {
		return
	}
	from, ok := DateParam(w, r, "from")
	if !ok {
		return
	}
	sheet, err := s.app.ReportService.BalanceSheet(r.Context(), asOf, from)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	s.writeReport(w, r, sheet, func(f *display.Formatter) string { return f.BalanceSheet(sheet) })
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	asOf, ok := DateParam(w, r, "as_of")
	if !ok {
		return
	}
	snapshot, err := s.app.PortfolioService.Snapshot(r.Context(), asOf)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	s.writeReport(w, r, snapshot, func(f *display.Formatter) string { return f.Portfolio(snapshot) })
}

// handlePortfolioChart serves the allocation pie chart as PNG.
func (s *Server) handlePortfolioChart(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	asOf, ok := DateParam(w, r, "as_of")
	if !ok {
		return
	}
	snapshot, err := s.app.PortfolioService.Snapshot(r.Context(), asOf)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	png, err := s.app.Formatter(r.Context()).AllocationChart(snapshot)
	if err != nil {
		WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
