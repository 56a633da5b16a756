package httpserver

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"funmarket/internal/app"
	"funmarket/internal/domain"
)

type Handlers struct{ S *app.SearchService }

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// searchRoutes are the listing families served under /v1.
var searchRoutes = []string{"venues", "events", "performers", app.AllKinds}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Group(func(r chi.Router) {
		if s.opts.RateRequests > 0 {
			r.Use(httprate.LimitByIP(s.opts.RateRequests, s.opts.RateWindow))
		}
		// static paths so /v1/listings/trending never reaches the {id} route
		for _, kind := range searchRoutes {
			r.Get("/v1/"+kind, h.search(kind, h.S.Search))
			r.Get("/v1/"+kind+"/trending", h.search(kind, h.S.Trending))
			r.Get("/v1/"+kind+"/new", h.search(kind, h.S.Newest))
		}
		r.Get("/v1/listings/{id}", h.getListing)
	})
}

type searchFunc func(ctx context.Context, kind string, values url.Values) domain.Result

func (h *Handlers) search(kind string, run searchFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := run(r.Context(), kind, r.URL.Query())
		writeJSON(w, r, res)
	}
}

func (h *Handlers) getListing(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	l, err := h.S.GetListing(r.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		writeProblem(w, http.StatusNotFound, "Not Found", "listing not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("get listing failed")
		writeProblem(w, http.StatusServiceUnavailable, "Service Unavailable", "listing store unavailable")
		return
	}
	writeJSON(w, r, l)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeJSON answers with a weak ETag and honours If-None-Match.
func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if body == nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "could not encode response")
		return
	}
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("failed to write body")
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
