// Package api exposes routability analysis over HTTP.
//
// The API accepts simple-mode graphs: a posted resource graph is analyzed
// as one source-to-sink connection. Results are cached by graph and
// configuration hash, and retrievable later by run ID.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shikc/wotan/pkg/analysis"
	"github.com/shikc/wotan/pkg/analysis/estimate"
	"github.com/shikc/wotan/pkg/cache"
	"github.com/shikc/wotan/pkg/errors"
	"github.com/shikc/wotan/pkg/observability"
	"github.com/shikc/wotan/pkg/rrgraph"
)

// Server handles analysis requests.
type Server struct {
	store cache.Cache
	keyer cache.Keyer
	ttl   time.Duration
}

// NewServer creates a server backed by the given cache. A nil cache
// disables caching.
func NewServer(store cache.Cache, ttl time.Duration) *Server {
	if store == nil {
		store = cache.NewNullCache()
	}
	return &Server{store: store, keyer: cache.NewDefaultKeyer(), ttl: ttl}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(hookMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/analyze", s.handleAnalyze)
		r.Get("/runs/{id}", s.handleGetRun)
	})
	return r
}

// AnalyzeRequest is the POST /api/v1/analyze body.
type AnalyzeRequest struct {
	// Graph is the resource graph in the standard JSON format. It must
	// contain exactly one SOURCE and one SINK.
	Graph json.RawMessage `json:"graph"`

	// Mode selects the probability estimator; empty means propagate.
	Mode string `json:"mode,omitempty"`

	// RoutingNodeDemand parameterizes the reliability polynomial.
	RoutingNodeDemand *float64 `json:"routing_node_demand,omitempty"`

	// DemandMultiplier scales the demand applied between phases.
	DemandMultiplier float64 `json:"demand_multiplier,omitempty"`

	// Workers bounds analysis concurrency; zero means one per CPU.
	Workers int `json:"workers,omitempty"`
}

func (req *AnalyzeRequest) settings() (analysis.Settings, error) {
	set := analysis.DefaultSettings()
	if req.Mode != "" {
		mode, err := estimate.ParseMode(req.Mode)
		if err != nil {
			return set, err
		}
		set.Probability.Mode = mode
	}
	if req.RoutingNodeDemand != nil {
		set.Probability.RoutingNodeDemand = *req.RoutingNodeDemand
		set.Probability.RoutingNodeDemandSet = true
	}
	if req.DemandMultiplier != 0 {
		set.DemandMultiplier = req.DemandMultiplier
	}
	set.Workers = req.Workers
	return set, nil
}

// configHash folds every setting that affects the result into one hash.
func (req *AnalyzeRequest) configHash() string {
	cfg, _ := json.Marshal(struct {
		Mode              string   `json:"mode"`
		RoutingNodeDemand *float64 `json:"rnd"`
		DemandMultiplier  float64  `json:"dm"`
	}{req.Mode, req.RoutingNodeDemand, req.DemandMultiplier})
	return cache.Hash(cfg)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	// A decoded "graph": null leaves the raw message holding the literal
	// null, not an empty slice.
	if len(req.Graph) == 0 || string(req.Graph) == "null" {
		writeError(w, http.StatusBadRequest, "request is missing a graph")
		return
	}

	ctx := r.Context()
	resultKey := s.keyer.ResultKey(cache.Hash(req.Graph), req.configHash())
	if data, found, err := s.store.Get(ctx, resultKey); err == nil && found {
		observability.Cache().OnCacheHit(ctx, "result")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(data)
		return
	}
	observability.Cache().OnCacheMiss(ctx, "result")

	g, err := rrgraph.UnmarshalGraph(req.Graph)
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.UserMessage(err))
		return
	}
	set, err := req.settings()
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.UserMessage(err))
		return
	}
	a, err := analysis.New(g, nil, set)
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.UserMessage(err))
		return
	}
	sum, err := a.Run(ctx)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, errors.UserMessage(err))
		return
	}

	data, err := json.Marshal(sum)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "encoding summary")
		return
	}
	if err := s.store.Set(ctx, resultKey, data, s.ttl); err == nil {
		observability.Cache().OnCacheSet(ctx, "result", len(data))
	}
	if err := s.store.Set(ctx, s.keyer.RunKey(sum.RunID), data, s.ttl); err == nil {
		observability.Cache().OnCacheSet(ctx, "run", len(data))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "id")
	data, found, err := s.store.Get(r.Context(), s.keyer.RunKey(runID))
	if err != nil {
		writeError(w, http.StatusInternalServerError, errors.UserMessage(err))
		return
	}
	if !found {
		observability.Cache().OnCacheMiss(r.Context(), "run")
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	observability.Cache().OnCacheHit(r.Context(), "run")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// hookMiddleware reports requests to the observability registry.
func hookMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		observability.HTTP().OnRequest(r.Context(), r.Method, r.URL.Path)
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		observability.HTTP().OnResponse(r.Context(), r.Method, r.URL.Path, ww.Status(), time.Since(start))
	})
}
