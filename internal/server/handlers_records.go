package server

import (
	"net/http"

	"github.com/bobmcallan/tally/internal/models"
)

// handleRecordCollection handles GET (list) and POST (create) on /api/records/{collection}.
func (s *Server) handleRecordCollection(w http.ResponseWriter, r *http.Request, collection string) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPost) {
		return
	}
	ctx := r.Context()
	c := models.Collection(collection)

	if r.Method == http.MethodGet {
		docs, err := s.app.RecordService.List(ctx, c)
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		if docs == nil {
			docs = []models.Document{}
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{
			"collection": collection,
			"count":      len(docs),
			"items":      docs,
		})
		return
	}

	var doc models.Document
	if !DecodeJSON(w, r, &doc) {
		return
	}
	created, err := s.app.RecordService.Create(ctx, c, doc)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, created)
}

// handleRecordItem handles GET, PUT and DELETE on /api/records/{collection}/{id}.
func (s *Server) handleRecordItem(w http.ResponseWriter, r *http.Request, collection, id string) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPut, http.MethodDelete) {
		return
	}
	ctx := r.Context()
	c := models.Collection(collection)

	switch r.Method {
	case http.MethodGet:
		doc, err := s.app.RecordService.Get(ctx, c, id)
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, doc)

	case http.MethodPut:
		var patch models.Document
		if !DecodeJSON(w, r, &patch) {
			return
		}
		updated, err := s.app.RecordService.Update(ctx, c, id, patch)
		if err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, updated)

	case http.MethodDelete:
		if err := s.app.RecordService.Delete(ctx, c, id); err != nil {
			WriteServiceError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
	}
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	since, ok := DateParam(w, r, "since")
	if !ok {
		return
	}
	entries, err := s.app.RecordService.AuditSince(r.Context(), since)
	if err != nil {
		WriteServiceError(w, err)
		return
	}
	if entries == nil {
		entries = []models.AuditEntry{}
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(entries),
		"entries": entries,
	})
}
