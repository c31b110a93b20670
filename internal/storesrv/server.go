package storesrv

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/five82/potluck/internal/guest"
)

const maxBodyBytes = 64 << 10

// Options configure the HTTP handler.
type Options struct {
	Table    string // collection name in /rest/v1/{table}; default "guests"
	Logger   zerolog.Logger
	Registry *prometheus.Registry // nil disables /metrics and request metrics
}

type server struct {
	store    *Store
	table    string
	log      zerolog.Logger
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewHandler serves the guest table over a PostgREST-style JSON API.
func NewHandler(store *Store, opts Options) http.Handler {
	s := &server{store: store, table: strings.TrimSpace(opts.Table), log: opts.Logger}
	if s.table == "" {
		s.table = "guests"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /rest/v1/{table}", s.tableHandler(s.list))
	mux.HandleFunc("POST /rest/v1/{table}", s.tableHandler(s.insert))
	mux.HandleFunc("PATCH /rest/v1/{table}", s.tableHandler(s.update))
	mux.HandleFunc("DELETE /rest/v1/{table}", s.tableHandler(s.remove))
	mux.HandleFunc("GET /healthz", s.health)

	if opts.Registry != nil {
		f := promauto.With(opts.Registry)
		s.requests = f.NewCounterVec(prometheus.CounterOpts{
			Name: "potluckd_requests_total",
			Help: "HTTP requests by method and status code",
		}, []string{"method", "code"})
		s.latency = f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "potluckd_request_duration_seconds",
			Help:    "HTTP request latency by method",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"})
		mux.Handle("GET /metrics", promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{}))
	}
	return s.instrument(mux)
}

func (s *server) tableHandler(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("table") != s.table {
			writeError(w, http.StatusNotFound, fmt.Sprintf("relation %q does not exist", r.PathValue("table")))
			return
		}
		next(w, r)
	}
}

func (s *server) list(w http.ResponseWriter, r *http.Request) {
	if order := r.URL.Query().Get("order"); order != "" && order != "created_at.asc" {
		writeError(w, http.StatusBadRequest, "only order=created_at.asc is supported")
		return
	}
	guests, err := s.store.List(r.Context())
	if err != nil {
		s.internalError(w, "list guests", err)
		return
	}
	writeJSON(w, http.StatusOK, guests)
}

func (s *server) insert(w http.ResponseWriter, r *http.Request) {
	var draft guest.Draft
	if err := decodeBody(w, r, &draft); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	draft = draft.Normalize()
	if err := draft.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	g, err := s.store.Insert(r.Context(), draft)
	if err != nil {
		s.internalError(w, "insert guest", err)
		return
	}
	s.log.Info().Str("id", string(g.ID)).Str("name", g.Name).Msg("guest added")
	w.WriteHeader(http.StatusCreated)
}

func (s *server) update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var patch guest.Patch
	if err := decodeBody(w, r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	patch = patch.Normalize()
	if patch.IsEmpty() {
		writeError(w, http.StatusBadRequest, "empty patch")
		return
	}
	if err := patch.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	switch err := s.store.Update(r.Context(), id, patch); {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case err != nil:
		s.internalError(w, "update guest", err)
	default:
		s.log.Info().Str("id", string(id)).Msg("guest updated")
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *server) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	switch err := s.store.Delete(r.Context(), id); {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case err != nil:
		s.internalError(w, "delete guest", err)
	default:
		s.log.Info().Str("id", string(id)).Msg("guest removed")
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *server) health(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) internalError(w http.ResponseWriter, op string, err error) {
	s.log.Error().Err(err).Str("op", op).Msg("request failed")
	writeError(w, http.StatusInternalServerError, op+" failed")
}

// idParam extracts the id from a PostgREST equality filter (id=eq.<id>).
func idParam(w http.ResponseWriter, r *http.Request) (guest.ID, bool) {
	raw := r.URL.Query().Get("id")
	id, ok := strings.CutPrefix(raw, "eq.")
	if !ok || strings.TrimSpace(id) == "" {
		writeError(w, http.StatusBadRequest, "id=eq.<id> filter required")
		return "", false
	}
	return guest.ID(id), true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dest any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		took := time.Since(start)

		if s.requests != nil {
			s.requests.WithLabelValues(r.Method, strconv.Itoa(rec.status)).Inc()
			s.latency.WithLabelValues(r.Method).Observe(took.Seconds())
		}
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("took", took).
			Msg("request")
	})
}
