package web

// handlers_admin.go covers the catalog maintenance the operator does between
// imports: breeders and varieties are hard references that the engine never
// creates, so a validation report listing missing entities sends the operator
// here before the retry. The configuration record feeds every batch's
// exchange rate and default commission.

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/koitrade/backoffice/internal/importer"
	"github.com/koitrade/backoffice/internal/logging"
)

// createEntityRequest is the body of the breeder/variety creation endpoints.
type createEntityRequest struct {
	Name string `json:"name"`
}

// createEntityResponse echoes the new catalog entry.
type createEntityResponse struct {
	Success bool   `json:"success"`
	ID      int    `json:"id"`
	Name    string `json:"name"`
}

// handleCreateBreeder adds a breeder to the catalog.
func (s *Server) handleCreateBreeder(w http.ResponseWriter, r *http.Request) {
	s.handleCreateEntity(w, r, "breeder", s.archive.CreateBreeder)
}

// handleCreateVariety adds a variety to the catalog. New entries land at the
// end of the id order, so they never shadow existing varieties in the
// importer's substring matching.
func (s *Server) handleCreateVariety(w http.ResponseWriter, r *http.Request) {
	s.handleCreateEntity(w, r, "variety", s.archive.CreateVariety)
}

func (s *Server) handleCreateEntity(w http.ResponseWriter, r *http.Request, kind string, create func(ctx context.Context, name string) (int, error)) {
	var req createEntityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, "request body is not valid JSON")
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		respondBadRequest(w, kind+" name must not be empty")
		return
	}

	id, err := create(r.Context(), name)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	logging.FromContext(r.Context()).Info("catalog entry created",
		"kind", kind,
		"id", id,
		"name", name,
	)

	writeJSON(w, createEntityResponse{Success: true, ID: id, Name: name})
}

// configurationRequest is the body of PUT /api/configuration.
type configurationRequest struct {
	ExchangeRate      float64 `json:"exchangeRate"`
	DefaultCommission float64 `json:"defaultCommission"`
}

// handleSaveConfiguration upserts the global settings record. The new values
// apply from the next batch on; a running batch keeps its snapshot.
func (s *Server) handleSaveConfiguration(w http.ResponseWriter, r *http.Request) {
	var req configurationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, "request body is not valid JSON")
		return
	}

	if req.ExchangeRate <= 0 {
		respondBadRequest(w, "exchangeRate must be positive")
		return
	}
	if req.DefaultCommission < 0 || req.DefaultCommission >= 1 {
		respondBadRequest(w, "defaultCommission must be in [0, 1)")
		return
	}

	cfg := importer.Configuration{
		ExchangeRate:      req.ExchangeRate,
		DefaultCommission: req.DefaultCommission,
	}
	if err := s.archive.SaveConfiguration(r.Context(), cfg); err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	logging.FromContext(r.Context()).Info("configuration saved",
		"exchange_rate", cfg.ExchangeRate,
		"default_commission", cfg.DefaultCommission,
	)

	writeJSON(w, struct {
		Success       bool                   `json:"success"`
		Configuration importer.Configuration `json:"configuration"`
	}{true, cfg})
}
