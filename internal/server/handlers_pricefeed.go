package server

import "net/http"

func (s *Server) handlePriceFeedStatus(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, s.app.PriceFeed.Status())
}

func (s *Server) handlePriceFeedPause(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	s.app.PriceFeed.Pause()
	s.logger.Info().Msg("Price feed paused")
	WriteJSON(w, http.StatusOK, s.app.PriceFeed.Status())
}

func (s *Server) handlePriceFeedResume(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	s.app.PriceFeed.Resume()
	s.logger.Info().Msg("Price feed resumed")
	WriteJSON(w, http.StatusOK, s.app.PriceFeed.Status())
}

// handlePriceFeedTick runs one drift pass immediately. Paused feeds update nothing.
func (s *Server) handlePriceFeedTick(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	updated, err := s.app.PriceFeed.Tick(r.Context())
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"updated": updated,
		"status":  s.app.PriceFeed.Status(),
	})
}
