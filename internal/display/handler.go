// Package display serves a read-only HTTP view over a built inverted index.
package display

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Adithya-Monish-Kumar-K/varys/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/varys/internal/indexer/index"
	apperrors "github.com/Adithya-Monish-Kumar-K/varys/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/varys/pkg/logger"
)

const (
	defaultLimit = 100
	maxLimit     = 1000
)

// IndexReader is the read side of the indexing engine.
type IndexReader interface {
	Entries() []index.TermEntry
	Lookup(term string) (index.Postings, bool)
	Stats() indexer.Stats
	Ready() bool
}

// TermSummary is one row of the term listing.
type TermSummary struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

// TermList is the paginated term listing.
type TermList struct {
	Terms  []TermSummary `json:"terms"`
	Total  int           `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

type Handler struct {
	reader IndexReader
	logger *slog.Logger
}

func New(reader IndexReader) *Handler {
	return &Handler{
		reader: reader,
		logger: logger.WithComponent("display-handler"),
	}
}

// ListTerms handles GET /api/v1/terms?limit=&offset=. A term parameter
// turns the request into a single-term lookup.
func (h *Handler) ListTerms(w http.ResponseWriter, r *http.Request) {
	if q := r.URL.Query(); q.Has("term") {
		h.lookup(w, r, q.Get("term"))
		return
	}
	limit, offset, err := parsePage(r)
	if err != nil {
		h.writeAppError(w, r, err)
		return
	}
	entries := h.reader.Entries()
	resp := TermList{
		Terms:  []TermSummary{},
		Total:  len(entries),
		Limit:  limit,
		Offset: offset,
	}
	if offset < len(entries) {
		end := min(offset+limit, len(entries))
		for _, e := range entries[offset:end] {
			resp.Terms = append(resp.Terms, TermSummary{Term: e.Term, Count: len(e.Postings)})
		}
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// GetTerm handles GET /api/v1/terms/{term...}. The term is matched exactly,
// including the empty term.
func (h *Handler) GetTerm(w http.ResponseWriter, r *http.Request) {
	h.lookup(w, r, r.PathValue("term"))
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request, term string) {
	postings, ok := h.reader.Lookup(term)
	if !ok {
		h.writeAppError(w, r, apperrors.Newf(apperrors.ErrTermNotFound, http.StatusNotFound, "no postings for %q", term))
		return
	}
	h.writeJSON(w, http.StatusOK, index.TermEntry{Term: term, Postings: postings})
}

// Stats handles GET /api/v1/stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.reader.Stats())
}

func parsePage(r *http.Request) (int, int, error) {
	limit, offset := defaultLimit, 0
	q := r.URL.Query()
	if v := q.Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			return 0, 0, apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest, "limit must be a positive integer, got %q", v)
		}
		limit = min(parsed, maxLimit)
	}
	if v := q.Get("offset"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			return 0, 0, apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest, "offset must be a non-negative integer, got %q", v)
		}
		offset = parsed
	}
	return limit, offset, nil
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeAppError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatusCode(err)
	message := err.Error()
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	}
	if status >= http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error("request failed", "path", r.URL.Path, "error", err)
	}
	h.writeJSON(w, status, map[string]string{"error": message})
}
