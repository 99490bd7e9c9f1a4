package httpserver

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"propmatch/internal/adapters/observability"
	"propmatch/internal/domain"
)

// MatchEngine is the write/compute side used by the handlers.
type MatchEngine interface {
	ComputeMatchesForProperty(ctx context.Context, propertyID string) ([]domain.MatchResult, error)
	ComputeMatchesForWantedAd(ctx context.Context, wantedAdID string) ([]domain.MatchResult, error)
	RecalculateProperty(ctx context.Context, propertyID string) (int, error)
	RecalculateWantedAd(ctx context.Context, wantedAdID string) (int, error)
}

// MatchQueries reads stored matches.
type MatchQueries interface {
	ListPropertyMatches(ctx context.Context, id string) ([]domain.Match, error)
	ListWantedAdMatches(ctx context.Context, id string) ([]domain.Match, error)
	CountPropertyMatches(ctx context.Context, id string) (domain.MatchCounts, error)
}

type Handlers struct {
	Engine MatchEngine
	Q      MatchQueries
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
	// Created is set when a recalculation failed part way through.
	Created *int `json:"created,omitempty"`
}

type recalcResponse struct {
	Created int `json:"created"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Route("/v1/properties/{id}", func(r chi.Router) {
		r.Get("/matches", h.listPropertyMatches)
		r.Get("/matches/preview", h.previewPropertyMatches)
		r.Get("/matches/counts", h.countPropertyMatches)
		r.Post("/recalculate", h.recalculateProperty)
	})
	s.mux.Route("/v1/wanted-ads/{id}", func(r chi.Router) {
		r.Get("/matches", h.listWantedAdMatches)
		r.Get("/matches/preview", h.previewWantedAdMatches)
		r.Post("/recalculate", h.recalculateWantedAd)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	sendProblem(w, problem{Type: "about:blank", Title: title, Status: status, Detail: detail})
}

func sendProblem(w http.ResponseWriter, p problem) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	if err := json.NewEncoder(w).Encode(p); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeRecalc reports the created count, also when some pairs failed.
func writeRecalc(w http.ResponseWriter, r *http.Request, what string, n int, err error) {
	switch {
	case err == nil:
		writeJSON(w, r, recalcResponse{Created: n})
	case n > 0:
		log.Error().Err(err).
			Str("err_type", observability.LabelErr(err)).
			Str("path", r.URL.Path).
			Int("created", n).
			Msg("recalculation partially failed")
		sendProblem(w, problem{
			Type:    "about:blank",
			Title:   "Partial Failure",
			Status:  http.StatusInternalServerError,
			Detail:  "some matches could not be stored",
			Created: &n,
		})
	default:
		writeError(w, r, what, err)
	}
}

// writeError maps domain errors onto problem responses.
func writeError(w http.ResponseWriter, r *http.Request, what string, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", what+" not found")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeProblem(w, http.StatusServiceUnavailable, "Unavailable", "request cancelled")
	default:
		log.Error().Err(err).
			Str("err_type", observability.LabelErr(err)).
			Str("path", r.URL.Path).
			Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// writeJSON writes v with a weak ETag and answers 304 when the client already has it.
func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	if etag != "" {
		w.Header().Set("ETag", etag)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("failed to write body")
	}
}

func (h *Handlers) listPropertyMatches(w http.ResponseWriter, r *http.Request) {
	out, err := h.Q.ListPropertyMatches(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, "property", err)
		return
	}
	writeJSON(w, r, nonNil(out))
}

func (h *Handlers) listWantedAdMatches(w http.ResponseWriter, r *http.Request) {
	out, err := h.Q.ListWantedAdMatches(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, "wanted ad", err)
		return
	}
	writeJSON(w, r, nonNil(out))
}

func (h *Handlers) countPropertyMatches(w http.ResponseWriter, r *http.Request) {
	out, err := h.Q.CountPropertyMatches(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, "property", err)
		return
	}
	writeJSON(w, r, out)
}

func (h *Handlers) previewPropertyMatches(w http.ResponseWriter, r *http.Request) {
	out, err := h.Engine.ComputeMatchesForProperty(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, "property", err)
		return
	}
	writeJSON(w, r, nonNil(out))
}

func (h *Handlers) previewWantedAdMatches(w http.ResponseWriter, r *http.Request) {
	out, err := h.Engine.ComputeMatchesForWantedAd(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, "wanted ad", err)
		return
	}
	writeJSON(w, r, nonNil(out))
}

func (h *Handlers) recalculateProperty(w http.ResponseWriter, r *http.Request) {
	n, err := h.Engine.RecalculateProperty(r.Context(), chi.URLParam(r, "id"))
	writeRecalc(w, r, "property", n, err)
}

func (h *Handlers) recalculateWantedAd(w http.ResponseWriter, r *http.Request) {
	n, err := h.Engine.RecalculateWantedAd(r.Context(), chi.URLParam(r, "id"))
	writeRecalc(w, r, "wanted ad", n, err)
}

// nonNil keeps empty lists encoding as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
