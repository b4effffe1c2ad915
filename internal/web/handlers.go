package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/koitrade/backoffice/internal/importer"
)

// importRequest is the body of POST /api/import. Data stays raw JSON until
// the action is known, so a bad action never costs a full decode.
type importRequest struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

// validateResponse is the body returned for action=validate.
type validateResponse struct {
	Success    bool                       `json:"success"`
	Validation *importer.ValidationReport `json:"validation"`
}

// mapResponse is the body returned for action=map.
type mapResponse struct {
	Success bool                       `json:"success"`
	Mapped  []importer.CanonicalRecord `json:"mapped"`
	Errors  []importer.RowError        `json:"errors"`
	Summary mapSummary                 `json:"summary"`
}

type mapSummary struct {
	Total   int `json:"total"`
	Success int `json:"success"`
	Failed  int `json:"failed"`
}

// handleImport runs one batch in validate or map mode.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, "request body is not valid JSON")
		return
	}

	if req.Action != string(importer.ModeValidate) && req.Action != string(importer.ModeMap) {
		respondBadRequest(w, fmt.Sprintf("unknown action %q, expected validate or map", req.Action))
		return
	}

	// A JSON null for data decodes to the literal "null"; treat it the same
	// as an absent field rather than running an empty batch.
	if len(req.Data) == 0 || string(req.Data) == "null" {
		respondBadRequest(w, "missing data field")
		return
	}

	var rows []importer.RawRow
	if err := json.Unmarshal(req.Data, &rows); err != nil {
		respondBadRequest(w, "data must be an array of row objects")
		return
	}

	if len(rows) > s.maxRows {
		respondBadRequest(w, fmt.Sprintf("batch of %d rows exceeds the limit of %d", len(rows), s.maxRows))
		return
	}

	switch importer.Mode(req.Action) {
	case importer.ModeValidate:
		report, err := s.engine.Validate(r.Context(), rows)
		if err != nil {
			s.respondError(w, r, err, engineStatus(err))
			return
		}
		writeJSON(w, validateResponse{Success: true, Validation: report})

	case importer.ModeMap:
		result, err := s.engine.Map(r.Context(), rows)
		if err != nil {
			s.respondError(w, r, err, engineStatus(err))
			return
		}
		writeJSON(w, mapResponse{
			Success: true,
			Mapped:  result.Success,
			Errors:  result.Errors,
			Summary: mapSummary{
				Total:   len(rows),
				Success: len(result.Success),
				Failed:  len(result.Errors),
			},
		})
	}
}

// engineStatus picks the HTTP status for an engine-level failure. Limiter
// saturation is backpressure, not a server fault.
func engineStatus(err error) int {
	if errors.Is(err, importer.ErrTooManyImports) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// commitRequest is the body of POST /api/import/commit: the mapped records
// from a previous map call, after operator review. FailedCount feeds the
// history view.
type commitRequest struct {
	Records     []importer.CanonicalRecord `json:"records"`
	FailedCount int                        `json:"failedCount"`
}

// handleCommit bulk-persists reviewed records as one batch.
func (s *Server) handleCommit(w http.ResponseWriter, r *http.Request) {
	var req commitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondBadRequest(w, "request body is not valid JSON")
		return
	}
	if len(req.Records) == 0 {
		respondBadRequest(w, "no records to commit")
		return
	}
	if len(req.Records) > s.maxRows {
		respondBadRequest(w, fmt.Sprintf("batch of %d records exceeds the limit of %d", len(req.Records), s.maxRows))
		return
	}

	result, err := s.archive.InsertKoiRecords(r.Context(), req.Records, req.FailedCount)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	writeJSON(w, struct {
		Success  bool   `json:"success"`
		BatchID  string `json:"batchId"`
		Inserted int    `json:"inserted"`
	}{true, result.BatchID.String(), result.Inserted})
}

// referencesResponse mirrors the engine's reference snapshot for the
// operator screens.
type referencesResponse struct {
	Breeders      []importer.RefEntity   `json:"breeders"`
	Varieties     []importer.RefEntity   `json:"varieties"`
	Customers     []importer.RefEntity   `json:"customers"`
	ShipLocations []importer.RefEntity   `json:"shipLocations"`
	Configuration importer.Configuration `json:"configuration"`
}

// handleReferences returns the four reference lists plus the configuration.
func (s *Server) handleReferences(w http.ResponseWriter, r *http.Request) {
	refs, err := s.engine.References(r.Context())
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	writeJSON(w, referencesResponse{
		Breeders:      refs.Breeders,
		Varieties:     refs.Varieties,
		Customers:     refs.Customers,
		ShipLocations: refs.ShipLocations,
		Configuration: refs.Config,
	})
}

// handleImportHistory returns the most recent import batches.
func (s *Server) handleImportHistory(w http.ResponseWriter, r *http.Request) {
	batches, err := s.archive.ListImportBatches(r.Context(), 50)
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	writeJSON(w, batches)
}

// handleHealth reports liveness including database connectivity.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.archive.Ping(r.Context()); err != nil {
		s.respondError(w, r, err, http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}
