package metrics

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

// Collection label values for requests that do not target exactly one collection.
const (
	NoCollection    = "none"
	MixedCollection = "mixed"
)

const unknownOperation = "unknown"

// routeOperations maps chi route patterns to the operation label.
// Patterns outside the map collapse to "unknown".
var routeOperations = map[string]string{
	"/api/search":       "search",
	"/api/multi-search": "multi_search",
	"/api/facet-search": "facet_search",
	"/api/similar":      "similar",
	"/api/facets":       "facets",
	"/api/tasks/{uid}":  "get_task",
	"/health":           "health",
	"/metrics":          "metrics",
}

var (
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "findex",
			Name:      "http_request_duration_seconds",
			Help:      "API request duration in seconds by operation and collection",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"operation", "collection"},
	)

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "findex",
			Name:      "http_requests_total",
			Help:      "Total number of API requests by operation, collection and status",
		},
		[]string{"method", "operation", "collection", "status"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(httpRequestsTotal)
}

type labelsKey struct{}

// requestLabels carries labels that handlers learn while serving a request.
type requestLabels struct {
	mu         sync.Mutex
	collection string
}

// SetCollection records the collection the current request targets.
// No-op outside Middleware.
func SetCollection(ctx context.Context, name string) {
	l, ok := ctx.Value(labelsKey{}).(*requestLabels)
	if !ok {
		return
	}
	l.mu.Lock()
	l.collection = name
	l.mu.Unlock()
}

// CollectionLabel reduces the collections of one request to a label value.
func CollectionLabel(names ...string) string {
	if len(names) == 0 {
		return NoCollection
	}
	for _, n := range names[1:] {
		if n != names[0] {
			return MixedCollection
		}
	}
	return names[0]
}

// Middleware records API request duration and count per operation and collection.
func Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			labels := &requestLabels{collection: NoCollection}

			ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r.WithContext(context.WithValue(r.Context(), labelsKey{}, labels)))

			op := operation(chi.RouteContext(r.Context()))
			labels.mu.Lock()
			coll := labels.collection
			labels.mu.Unlock()

			httpRequestDuration.WithLabelValues(op, coll).Observe(time.Since(start).Seconds())
			httpRequestsTotal.WithLabelValues(r.Method, op, coll, strconv.Itoa(ww.status)).Inc()
		})
	}
}

func operation(rctx *chi.Context) string {
	if rctx == nil {
		return unknownOperation
	}
	if op, ok := routeOperations[rctx.RoutePattern()]; ok {
		return op
	}
	return unknownOperation
}

// statusWriter captures the response status code.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(status int) {
	if !w.wroteHeader {
		w.status = status
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.wroteHeader = true
	}
	return w.ResponseWriter.Write(b) //nolint:wrapcheck // delegating to underlying ResponseWriter
}
