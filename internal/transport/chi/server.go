package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	gochi "github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/findex/internal/domain/collection"
	"github.com/kailas-cloud/findex/internal/domain/search/result"
	logpkg "github.com/kailas-cloud/findex/internal/logger"
	"github.com/kailas-cloud/findex/internal/metrics"
	healthuc "github.com/kailas-cloud/findex/internal/usecase/health"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Server serves the search API.
type Server struct {
	search        SearchService
	tasks         TaskReader
	health        HealthChecker
	defaults      SearchDefaults
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search SearchService,
	tasks TaskReader,
	health HealthChecker,
	defaults SearchDefaults,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		search:        search,
		tasks:         tasks,
		health:        health,
		defaults:      defaults,
		logger:        logger,
		errorHandlers: defaultErrorHandlers(),
	}
}

// Handler builds the router with the middleware chain. Empty apiKeys disable auth.
func (s *Server) Handler(apiKeys []string) http.Handler {
	r := gochi.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(s.logger))
	r.Use(BearerAuthMiddleware(apiKeys))
	r.Use(metrics.Middleware())

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, CodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "method not allowed")
	})

	r.Get("/health", s.HealthCheck)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r gochi.Router) {
		r.Post("/search", s.Search)
		r.Post("/multi-search", s.MultiSearch)
		r.Post("/facet-search", s.FacetSearch)
		r.Post("/similar", s.Similar)
		r.Get("/facets", s.Facets)
		r.Get("/tasks/{uid}", s.GetTask)
	})
	return r
}

// Search handles POST /api/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !s.decode(w, r, &req) {
		return
	}
	intent, err := s.defaults.intent(req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	tagCollection(r, string(intent.Collection()))

	page, err := s.search.Search(r.Context(), intent)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// MultiSearch handles POST /api/multi-search. With a federation block the
// response is one merged page, otherwise one page per query.
func (s *Server) MultiSearch(w http.ResponseWriter, r *http.Request) {
	var req multiSearchRequest
	if !s.decode(w, r, &req) {
		return
	}
	m, err := s.defaults.multi(req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	queries := m.Queries()
	names := make([]string, len(queries))
	for i := range queries {
		names[i] = string(queries[i].Collection())
	}
	tagCollection(r, names...)

	if m.IsFederated() {
		page, err := s.search.FederatedSearch(r.Context(), m)
		if err != nil {
			s.handleDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, page)
		return
	}

	pages, err := s.search.MultiSearch(r.Context(), m)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[result.Page[result.Document]]{Results: pages})
}

// FacetSearch handles POST /api/facet-search.
func (s *Server) FacetSearch(w http.ResponseWriter, r *http.Request) {
	var req facetSearchRequest
	if !s.decode(w, r, &req) {
		return
	}
	fs, err := facetSearchFromRequest(req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	tagCollection(r, string(fs.Collection()))

	values, err := s.search.FacetSearch(r.Context(), fs)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, values)
}

// Similar handles POST /api/similar.
func (s *Server) Similar(w http.ResponseWriter, r *http.Request) {
	var req similarRequest
	if !s.decode(w, r, &req) {
		return
	}
	sr, err := similarFromRequest(req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	tagCollection(r, string(sr.Collection()))

	res, err := s.search.Similar(r.Context(), sr)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Facets handles GET /api/facets?collection=products.
// Without the parameter every collection is listed.
func (s *Server) Facets(w http.ResponseWriter, r *http.Request) {
	names := collection.All()
	if c := r.URL.Query().Get("collection"); c != "" {
		name, err := collection.Parse(c)
		if err != nil {
			writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
			return
		}
		names = []collection.Name{name}
		tagCollection(r, c)
	}

	out := make([]facetsResponse, len(names))
	for i, n := range names {
		out[i] = facetsResponse{Collection: string(n), Facets: n.FacetMeta()}
	}
	writeJSON(w, http.StatusOK, listResponse[facetsResponse]{Results: out})
}

// GetTask handles GET /api/tasks/{uid}.
func (s *Server) GetTask(w http.ResponseWriter, r *http.Request) {
	uid, err := strconv.ParseInt(gochi.URLParam(r, "uid"), 10, 64)
	if err != nil || uid < 0 {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "task uid must be a non-negative integer")
		return
	}

	t, err := s.tasks.GetTask(r.Context(), uid)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// HealthCheck handles GET /health. A degraded service still answers searches.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, CodeBadRequest,
				fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			return false
		}
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContext(r.Context())
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
