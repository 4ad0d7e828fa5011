package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/MrWong99/elocution/internal/assess"
	"github.com/MrWong99/elocution/internal/lang"
	"github.com/MrWong99/elocution/internal/observe"
	"github.com/MrWong99/elocution/pkg/types"
)

// errorResponse is the JSON body of every non-2xx API response.
type errorResponse struct {
	Error         string `json:"error"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

// batchRequest is the JSON body for POST /v1/assessments/batch.
type batchRequest struct {
	Requests []assess.Request `json:"requests"`
}

// batchItem is one entry of a batch response. Exactly one of Assessment and
// Error is set.
type batchItem struct {
	Index      int                        `json:"index"`
	Assessment *types.UtteranceAssessment `json:"assessment,omitempty"`
	Error      string                     `json:"error,omitempty"`
}

// batchResponse is the JSON body returned from the batch endpoint.
type batchResponse struct {
	Results []batchItem `json:"results"`
}

// languageSummary is one entry of GET /v1/languages.
type languageSummary struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// languagesResponse is the JSON body returned from GET /v1/languages.
type languagesResponse struct {
	Languages []languageSummary `json:"languages"`
}

// languageDetail is the JSON body returned from GET /v1/languages/{code}.
type languageDetail struct {
	Code       string          `json:"code"`
	Name       string          `json:"name"`
	Graphemes  []lang.Grapheme `json:"graphemes"`
	Challenges []string        `json:"challenges"`
	Exercises  []string        `json:"exercises"`
}

// handleAssess handles POST /v1/assessments.
func (s *Server) handleAssess(w http.ResponseWriter, r *http.Request) {
	eng, ok := s.requireEngine(w, r)
	if !ok {
		return
	}

	var req assess.Request
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}

	res, err := eng.Assess(r.Context(), req)
	if err != nil {
		writeError(w, r, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handleBatch handles POST /v1/assessments/batch. Items rejected as invalid
// input are reported inline; the call itself still succeeds.
func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	eng, ok := s.requireEngine(w, r)
	if !ok {
		return
	}

	var req batchRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err)
		return
	}
	if len(req.Requests) == 0 {
		writeError(w, r, http.StatusBadRequest, errors.New("requests must not be empty"))
		return
	}
	if len(req.Requests) > MaxBatchSize {
		writeError(w, r, http.StatusBadRequest, fmt.Errorf("at most %d requests per batch, got %d", MaxBatchSize, len(req.Requests)))
		return
	}

	results, err := eng.AssessBatch(r.Context(), req.Requests)
	if err != nil {
		writeError(w, r, http.StatusServiceUnavailable, err)
		return
	}

	resp := batchResponse{Results: make([]batchItem, len(results))}
	for i, br := range results {
		item := batchItem{Index: br.Index, Assessment: br.Assessment}
		if br.Err != nil {
			item.Error = br.Err.Error()
		}
		resp.Results[i] = item
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleLanguages handles GET /v1/languages.
func (s *Server) handleLanguages(w http.ResponseWriter, r *http.Request) {
	eng, ok := s.requireEngine(w, r)
	if !ok {
		return
	}
	tables := eng.Tables()
	resp := languagesResponse{Languages: []languageSummary{}}
	for _, code := range tables.Codes() {
		l, _ := tables.Lookup(code)
		resp.Languages = append(resp.Languages, languageSummary{Code: l.Code, Name: l.Name})
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleLanguage handles GET /v1/languages/{code}.
func (s *Server) handleLanguage(w http.ResponseWriter, r *http.Request) {
	eng, ok := s.requireEngine(w, r)
	if !ok {
		return
	}
	code := r.PathValue("code")
	l, found := eng.Tables().Lookup(code)
	if !found {
		writeError(w, r, http.StatusNotFound, fmt.Errorf("no tables for language %q", code))
		return
	}
	writeJSON(w, http.StatusOK, languageDetail{
		Code:       l.Code,
		Name:       l.Name,
		Graphemes:  nonNil(l.Graphemes),
		Challenges: nonNil(l.Challenges),
		Exercises:  nonNil(l.Exercises),
	})
}

// requireEngine returns the current engine or writes 503 when none is loaded.
func (s *Server) requireEngine(w http.ResponseWriter, r *http.Request) (*assess.Engine, bool) {
	eng := s.engine.Load()
	if eng == nil {
		writeError(w, r, http.StatusServiceUnavailable, errors.New("assessment engine not loaded"))
		return nil, false
	}
	return eng, true
}

// decode reads a size-limited JSON body into v, rejecting unknown fields and
// trailing data.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("invalid request body: trailing data")
	}
	return nil
}

// statusFor maps an engine error to an HTTP status code.
func statusFor(err error) int {
	if errors.Is(err, assess.ErrInvalidInput) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// writeError writes a JSON error body. Server-side failures are logged with
// the request's trace context.
func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	if status >= http.StatusInternalServerError {
		observe.Logger(r.Context()).Error("request failed", "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, errorResponse{
		Error:         err.Error(),
		CorrelationID: observe.CorrelationID(r.Context()),
	})
}

// writeJSON encodes v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
