package server

import (
	"net/http"
	"strings"

	"github.com/bobmcallan/tally/internal/common"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)

	// Records
	mux.HandleFunc("/api/records/", s.routeRecords)
	mux.HandleFunc("/api/audit", s.handleAudit)

	// Ledger and reports
	mux.HandleFunc("/api/transactions", s.handleTransactions)
	mux.HandleFunc("/api/accounts/balances", s.handleAccountBalances)
	mux.HandleFunc("/api/accounts/", s.routeAccounts)
	mux.HandleFunc("/api/dashboard", s.handleDashboard)
	mux.HandleFunc("/api/balance-sheet", s.handleBalanceSheet)
	mux.HandleFunc("/api/portfolio", s.handlePortfolio)
	mux.HandleFunc("/api/portfolio/chart", s.handlePortfolioChart)

	// Price feed
	mux.HandleFunc("/api/price-feed", s.handlePriceFeedStatus)
	mux.HandleFunc("/api/price-feed/", s.routePriceFeed)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"backend": s.app.Storage.Backend(),
	})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}

// routeRecords dispatches /api/records/{collection}[/{id}].
func (s *Server) routeRecords(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/records/"), "/")
	if path == "" {
		WriteError(w, http.StatusNotFound, "Collection is required")
		return
	}

	parts := strings.SplitN(path, "/", 2)
	collection := parts[0]
	if len(parts) == 1 {
		s.handleRecordCollection(w, r, collection)
		return
	}
	if strings.Contains(parts[1], "/") {
		WriteError(w, http.StatusNotFound, "Not found")
		return
	}
	s.handleRecordItem(w, r, collection, parts[1])
}

// routeAccounts dispatches /api/accounts/{id}/balance.
func (s *Server) routeAccounts(w http.ResponseWriter, r *http.Request) {
	id := PathParam(r, "/api/accounts/", "/balance")
	if id == "" || !strings.HasSuffix(r.URL.Path, "/balance") {
		WriteError(w, http.StatusNotFound, "Not found")
		return
	}
	s.handleAccountBalance(w, r, id)
}

// routePriceFeed dispatches /api/price-feed/{pause|resume|tick}.
func (s *Server) routePriceFeed(w http.ResponseWriter, r *http.Request) {
	switch PathParam(r, "/api/price-feed/", "") {
	case "":
		s.handlePriceFeedStatus(w, r)
	case "pause":
		s.handlePriceFeedPause(w, r)
	case "resume":
		s.handlePriceFeedResume(w, r)
	case "tick":
		s.handlePriceFeedTick(w, r)
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}
