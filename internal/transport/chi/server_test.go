package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/findex/internal/domain"
	"github.com/kailas-cloud/findex/internal/domain/search/mode"
	"github.com/kailas-cloud/findex/internal/domain/search/request"
	"github.com/kailas-cloud/findex/internal/domain/search/result"
	"github.com/kailas-cloud/findex/internal/domain/task"
	healthuc "github.com/kailas-cloud/findex/internal/usecase/health"
)

type docPage = result.Page[result.Document]

type fakeSearch struct {
	searchFn    func(ctx context.Context, intent request.Intent) (docPage, error)
	multiFn     func(ctx context.Context, m request.Multi) ([]docPage, error)
	federatedFn func(ctx context.Context, m request.Multi) (docPage, error)
	facetFn     func(ctx context.Context, fs request.FacetSearch) (result.FacetValues, error)
	similarFn   func(ctx context.Context, r request.SimilarRequest) (result.Similar[result.Document], error)
}

func (f *fakeSearch) Search(ctx context.Context, intent request.Intent) (docPage, error) {
	if f.searchFn == nil {
		return docPage{}, errors.New("unexpected Search call")
	}
	return f.searchFn(ctx, intent)
}

func (f *fakeSearch) MultiSearch(ctx context.Context, m request.Multi) ([]docPage, error) {
	if f.multiFn == nil {
		return nil, errors.New("unexpected MultiSearch call")
	}
	return f.multiFn(ctx, m)
}

func (f *fakeSearch) FederatedSearch(ctx context.Context, m request.Multi) (docPage, error) {
	if f.federatedFn == nil {
		return docPage{}, errors.New("unexpected FederatedSearch call")
	}
	return f.federatedFn(ctx, m)
}

func (f *fakeSearch) FacetSearch(ctx context.Context, fs request.FacetSearch) (result.FacetValues, error) {
	if f.facetFn == nil {
		return result.FacetValues{}, errors.New("unexpected FacetSearch call")
	}
	return f.facetFn(ctx, fs)
}

func (f *fakeSearch) Similar(
	ctx context.Context, r request.SimilarRequest,
) (result.Similar[result.Document], error) {
	if f.similarFn == nil {
		return result.Similar[result.Document]{}, errors.New("unexpected Similar call")
	}
	return f.similarFn(ctx, r)
}

type fakeTasks struct {
	getFn func(ctx context.Context, uid int64) (task.Task, error)
}

func (f *fakeTasks) GetTask(ctx context.Context, uid int64) (task.Task, error) {
	return f.getFn(ctx, uid)
}

type fakeHealth struct {
	report healthuc.Report
}

func (f *fakeHealth) Check(context.Context) healthuc.Report { return f.report }

var testDefaults = SearchDefaults{PageSize: 12, MaxPageSize: 100, SemanticRatio: 0.5}

func newTestHandler(search *fakeSearch, tasks *fakeTasks, health *fakeHealth) http.Handler {
	if search == nil {
		search = &fakeSearch{}
	}
	if tasks == nil {
		tasks = &fakeTasks{}
	}
	if health == nil {
		health = &fakeHealth{}
	}
	return NewServer(search, tasks, health, testDefaults, zap.NewNop()).Handler(nil)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var e ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&e); err != nil {
		t.Fatalf("decode error body: %v (body %q)", err, rr.Body.String())
	}
	return e
}

func onePage() docPage {
	score := 0.91
	return docPage{
		Hits: []result.Hit[result.Document]{
			{Document: result.Document(`{"id":"p1","title":"Phone"}`), RankingScore: &score},
		},
		Query:              "phone",
		Limit:              12,
		EstimatedTotalHits: 1,
		Page:               1,
		PageSize:           12,
		TotalHits:          1,
		TotalPages:         1,
	}
}

func TestSearch_AppliesDefaults(t *testing.T) {
	var got request.Intent
	search := &fakeSearch{searchFn: func(_ context.Context, intent request.Intent) (docPage, error) {
		got = intent
		return onePage(), nil
	}}
	h := newTestHandler(search, nil, nil)

	rr := do(t, h, http.MethodPost, "/api/search",
		`{"collection":"products","q":"phone","facetFilters":{"brand":["TechPro"]},"flags":{"in_stock":true}}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}

	if got.Page() != 1 || got.PageSize() != 12 {
		t.Errorf("page = %d, size = %d", got.Page(), got.PageSize())
	}
	if got.Mode() != mode.Hybrid || got.SemanticRatio() != 0.5 {
		t.Errorf("mode = %s, ratio = %v", got.Mode(), got.SemanticRatio())
	}
	if q, ok := got.Text().Value(); !ok || q != "phone" {
		t.Errorf("text = (%q, %v)", q, ok)
	}
	if vals := got.Filter().Facets["brand"]; len(vals) != 1 || vals[0] != "TechPro" {
		t.Errorf("facet filters = %v", got.Filter().Facets)
	}

	var page docPage
	if err := json.NewDecoder(rr.Body).Decode(&page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(page.Hits) != 1 || page.TotalPages != 1 {
		t.Errorf("unexpected page: %+v", page)
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}
}

func TestSearch_PlaceholderAndExplicitOptions(t *testing.T) {
	var got request.Intent
	search := &fakeSearch{searchFn: func(_ context.Context, intent request.Intent) (docPage, error) {
		got = intent
		return docPage{}, nil
	}}
	h := newTestHandler(search, nil, nil)

	rr := do(t, h, http.MethodPost, "/api/search",
		`{"collection":"articles","page":3,"pageSize":20,"mode":"semantic","semanticRatio":0.8,"filter":[["a = 1","a = 2"]]}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	if !got.Text().IsPlaceholder() {
		t.Error("expected placeholder search")
	}
	if got.Page() != 3 || got.PageSize() != 20 || got.Mode() != mode.Semantic || got.SemanticRatio() != 0.8 {
		t.Errorf("unexpected intent: page %d size %d mode %s ratio %v",
			got.Page(), got.PageSize(), got.Mode(), got.SemanticRatio())
	}
	if clauses := got.Filter().Raw.Clauses(); len(clauses) != 1 || clauses[0] != "(a = 1 OR a = 2)" {
		t.Errorf("raw filter = %q", clauses)
	}
}

func TestSearch_RejectsBadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
		code string
	}{
		{"malformed json", `{"collection":`, http.StatusBadRequest, CodeBadRequest},
		{"unknown collection", `{"collection":"users"}`, http.StatusBadRequest, CodeValidationFailed},
		{"page size over max", `{"collection":"products","pageSize":101}`, http.StatusBadRequest, CodeValidationFailed},
		{"explicit zero page size", `{"collection":"products","pageSize":0}`, http.StatusBadRequest, CodeValidationFailed},
		{"explicit zero page", `{"collection":"products","page":0}`, http.StatusBadRequest, CodeValidationFailed},
		{"negative page", `{"collection":"products","page":-2}`, http.StatusBadRequest, CodeValidationFailed},
		{"bad mode", `{"collection":"products","mode":"fuzzy"}`, http.StatusBadRequest, CodeValidationFailed},
		{"bad filter", `{"collection":"products","filter":42}`, http.StatusBadRequest, CodeValidationFailed},
		{"not filterable", `{"collection":"articles","flags":{"in_stock":true}}`,
			http.StatusBadRequest, CodeValidationFailed},
		{"ratio out of range", `{"collection":"products","semanticRatio":2}`,
			http.StatusBadRequest, CodeValidationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(nil, nil, nil)
			rr := do(t, h, http.MethodPost, "/api/search", tt.body)
			if rr.Code != tt.want {
				t.Fatalf("status = %d, want %d (body %s)", rr.Code, tt.want, rr.Body.String())
			}
			if e := decodeError(t, rr); e.Code != tt.code {
				t.Errorf("code = %s, want %s", e.Code, tt.code)
			}
		})
	}
}

func TestSearch_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		want       int
		code       string
		engineCode string
	}{
		{"index not found", &domain.RemoteError{Op: "search", Status: 404, Code: domain.CodeIndexNotFound},
			http.StatusNotFound, CodeNotFound, ""},
		{"invalid filter", &domain.RemoteError{
			Op: "search", Status: 400, Code: "invalid_search_filter", Type: "invalid_request", Message: "bad filter",
		}, http.StatusBadRequest, CodeValidationFailed, "invalid_search_filter"},
		{"engine internal", &domain.RemoteError{Op: "search", Status: 500, Code: "internal", Type: "internal"},
			http.StatusBadGateway, CodeRemoteError, "internal"},
		{"embedder rejected", fmt.Errorf("embed: %w", domain.ErrRemoteAPI),
			http.StatusBadGateway, CodeRemoteError, ""},
		{"unreachable", fmt.Errorf("search: %w", domain.ErrRemoteUnavailable),
			http.StatusServiceUnavailable, CodeRemoteUnavailable, ""},
		{"task failed", &domain.TaskFailureError{Failed: []domain.FailedTask{{UID: 1}}},
			http.StatusUnprocessableEntity, CodeTaskFailed, ""},
		{"task timeout", &domain.TaskTimeoutError{Pending: []int64{1}, Timeout: time.Second},
			http.StatusGatewayTimeout, CodeTaskTimeout, ""},
		{"not implemented", domain.ErrNotImplemented, http.StatusNotImplemented, CodeNotImplemented, ""},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, CodeInternalError, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			search := &fakeSearch{searchFn: func(context.Context, request.Intent) (docPage, error) {
				return docPage{}, tt.err
			}}
			rr := do(t, newTestHandler(search, nil, nil), http.MethodPost, "/api/search", `{"collection":"products"}`)
			if rr.Code != tt.want {
				t.Fatalf("status = %d, want %d", rr.Code, tt.want)
			}
			e := decodeError(t, rr)
			if e.Code != tt.code || e.EngineCode != tt.engineCode {
				t.Errorf("error = %+v, want code %s engine code %q", e, tt.code, tt.engineCode)
			}
			if tt.want == http.StatusInternalServerError && e.Message != "internal error" {
				t.Errorf("internal details leaked: %q", e.Message)
			}
		})
	}
}

func TestMultiSearch_PerQuery(t *testing.T) {
	search := &fakeSearch{multiFn: func(_ context.Context, m request.Multi) ([]docPage, error) {
		if m.IsFederated() {
			t.Error("unexpected federation")
		}
		pages := make([]docPage, len(m.Queries()))
		for i, q := range m.Queries() {
			pages[i] = docPage{IndexUID: string(q.Collection())}
		}
		return pages, nil
	}}
	rr := do(t, newTestHandler(search, nil, nil), http.MethodPost, "/api/multi-search",
		`{"queries":[{"collection":"products","q":"lamp"},{"collection":"articles","q":"lamp"}]}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}

	var resp listResponse[docPage]
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Results) != 2 || resp.Results[0].IndexUID != "products" || resp.Results[1].IndexUID != "articles" {
		t.Errorf("unexpected results: %+v", resp.Results)
	}
}

func TestMultiSearch_Federated(t *testing.T) {
	var got request.Multi
	search := &fakeSearch{federatedFn: func(_ context.Context, m request.Multi) (docPage, error) {
		got = m
		return onePage(), nil
	}}
	rr := do(t, newTestHandler(search, nil, nil), http.MethodPost, "/api/multi-search", `{
		"queries":[{"collection":"products","q":"lamp"},{"collection":"articles","q":"lamp"}],
		"federation":{"page":2,"pageSize":5,"facetsByIndex":{"products":["brand"]},"mergeFacets":{"maxValuesPerFacet":10}}
	}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	fed := got.Federation()
	if fed == nil {
		t.Fatal("expected federation")
	}
	if fed.Page() != 2 || fed.PageSize() != 5 || fed.MaxValuesPerFacet() != 10 {
		t.Errorf("federation = page %d size %d max %d", fed.Page(), fed.PageSize(), fed.MaxValuesPerFacet())
	}
	if f := fed.FacetsByIndex()["products"]; len(f) != 1 || f[0] != "brand" {
		t.Errorf("facetsByIndex = %v", fed.FacetsByIndex())
	}
}

func TestMultiSearch_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no queries", `{"queries":[]}`},
		{"bad sub-query", `{"queries":[{"collection":"products"},{"collection":"nope"}]}`},
		{"bad federation facet", `{"queries":[{"collection":"products"}],"federation":{"facetsByIndex":{"products":["title"]}}}`},
		{"zero federation page", `{"queries":[{"collection":"products"}],"federation":{"page":0}}`},
		{"zero federation page size", `{"queries":[{"collection":"products"}],"federation":{"pageSize":0}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, newTestHandler(nil, nil, nil), http.MethodPost, "/api/multi-search", tt.body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400 (body %s)", rr.Code, rr.Body.String())
			}
		})
	}

	rr := do(t, newTestHandler(nil, nil, nil), http.MethodPost, "/api/multi-search",
		`{"queries":[{"collection":"products"},{"collection":"nope"}]}`)
	if e := decodeError(t, rr); !strings.Contains(e.Message, "queries[1]") ||
		strings.Count(e.Message, domain.ErrValidation.Error()) != 1 {
		t.Errorf("message = %q", e.Message)
	}
}

func TestFacetSearch(t *testing.T) {
	var got request.FacetSearch
	search := &fakeSearch{facetFn: func(_ context.Context, fs request.FacetSearch) (result.FacetValues, error) {
		got = fs
		return result.FacetValues{FacetHits: []result.FacetHit{{Value: "TechPro", Count: 4}}}, nil
	}}
	rr := do(t, newTestHandler(search, nil, nil), http.MethodPost, "/api/facet-search",
		`{"collection":"products","facetName":"brand","facetQuery":"tec"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	if got.FacetName() != "brand" || got.FacetQuery().String() != "tec" || !got.Text().IsPlaceholder() {
		t.Errorf("unexpected facet search: %+v", got)
	}

	var values result.FacetValues
	if err := json.NewDecoder(rr.Body).Decode(&values); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(values.FacetHits) != 1 || values.FacetHits[0].Count != 4 {
		t.Errorf("unexpected values: %+v", values)
	}

	rr = do(t, newTestHandler(search, nil, nil), http.MethodPost, "/api/facet-search",
		`{"collection":"products","facetName":"title"}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("non-filterable facet: status = %d", rr.Code)
	}
}

func TestSimilar(t *testing.T) {
	var got request.SimilarRequest
	search := &fakeSearch{similarFn: func(
		_ context.Context, r request.SimilarRequest,
	) (result.Similar[result.Document], error) {
		got = r
		return result.Similar[result.Document]{ID: r.ID(), Limit: r.Limit()}, nil
	}}
	rr := do(t, newTestHandler(search, nil, nil), http.MethodPost, "/api/similar",
		`{"collection":"products","id":"p1"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	if got.ID() != "p1" || got.Limit() != request.DefaultSimilarLimit {
		t.Errorf("unexpected request: id %q limit %d", got.ID(), got.Limit())
	}

	unsupported := &fakeSearch{similarFn: func(
		context.Context, request.SimilarRequest,
	) (result.Similar[result.Document], error) {
		return result.Similar[result.Document]{}, fmt.Errorf("similar: %w", domain.ErrNotImplemented)
	}}
	rr = do(t, newTestHandler(unsupported, nil, nil), http.MethodPost, "/api/similar",
		`{"collection":"products","id":"p1"}`)
	if rr.Code != http.StatusNotImplemented {
		t.Errorf("status = %d, want 501", rr.Code)
	}
}

func TestFacets(t *testing.T) {
	h := newTestHandler(nil, nil, nil)

	rr := do(t, h, http.MethodGet, "/api/facets", "")
	var all listResponse[facetsResponse]
	if err := json.NewDecoder(rr.Body).Decode(&all); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(all.Results) != 2 {
		t.Fatalf("expected both collections, got %d", len(all.Results))
	}

	rr = do(t, h, http.MethodGet, "/api/facets?collection=articles", "")
	var one listResponse[facetsResponse]
	if err := json.NewDecoder(rr.Body).Decode(&one); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(one.Results) != 1 || one.Results[0].Collection != "articles" || len(one.Results[0].Facets) != 2 {
		t.Errorf("unexpected facets: %+v", one.Results)
	}

	rr = do(t, h, http.MethodGet, "/api/facets?collection=users", "")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("unknown collection: status = %d", rr.Code)
	}
}

func TestGetTask(t *testing.T) {
	tasks := &fakeTasks{getFn: func(_ context.Context, uid int64) (task.Task, error) {
		if uid == 404 {
			return task.Task{}, &domain.RemoteError{Op: "get task", Status: 404, Code: domain.CodeTaskNotFound}
		}
		return task.Task{UID: uid, IndexUID: "products", Status: task.Succeeded, Type: "settingsUpdate"}, nil
	}}
	h := newTestHandler(nil, tasks, nil)

	rr := do(t, h, http.MethodGet, "/api/tasks/7", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	var got task.Task
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.UID != 7 || got.Status != task.Succeeded {
		t.Errorf("unexpected task: %+v", got)
	}

	if rr := do(t, h, http.MethodGet, "/api/tasks/404", ""); rr.Code != http.StatusNotFound {
		t.Errorf("missing task: status = %d", rr.Code)
	}
	if rr := do(t, h, http.MethodGet, "/api/tasks/abc", ""); rr.Code != http.StatusBadRequest {
		t.Errorf("bad uid: status = %d", rr.Code)
	}
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name   string
		report healthuc.Report
		want   int
	}{
		{"ok", healthuc.Report{Status: healthuc.Healthy,
			Checks: map[string]healthuc.CheckResult{healthuc.ComponentEngine: healthuc.CheckOK}}, http.StatusOK},
		{"degraded", healthuc.Report{Status: healthuc.Degraded, Checks: map[string]healthuc.CheckResult{
			healthuc.ComponentEngine: healthuc.CheckOK, healthuc.ComponentCache: healthuc.CheckError,
		}}, http.StatusOK},
		{"error", healthuc.Report{Status: healthuc.Unhealthy,
			Checks: map[string]healthuc.CheckResult{healthuc.ComponentEngine: healthuc.CheckError}},
			http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, newTestHandler(nil, nil, &fakeHealth{report: tt.report}), http.MethodGet, "/health", "")
			if rr.Code != tt.want {
				t.Fatalf("status = %d, want %d", rr.Code, tt.want)
			}
			var resp healthResponse
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Status != string(tt.report.Status) || len(resp.Checks) != len(tt.report.Checks) {
				t.Errorf("unexpected body: %+v", resp)
			}
		})
	}
}

func TestRouting(t *testing.T) {
	h := newTestHandler(nil, nil, nil)

	rr := do(t, h, http.MethodGet, "/api/unknown", "")
	if rr.Code != http.StatusNotFound || decodeError(t, rr).Code != CodeNotFound {
		t.Errorf("unknown route: status = %d", rr.Code)
	}

	rr = do(t, h, http.MethodGet, "/api/search", "")
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("wrong method: status = %d", rr.Code)
	}

	rr = do(t, h, http.MethodGet, "/metrics", "")
	if rr.Code != http.StatusOK {
		t.Errorf("metrics: status = %d", rr.Code)
	}
}

func TestRecoverer(t *testing.T) {
	search := &fakeSearch{searchFn: func(context.Context, request.Intent) (docPage, error) {
		panic("boom")
	}}
	rr := do(t, newTestHandler(search, nil, nil), http.MethodPost, "/api/search", `{"collection":"products"}`)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
	if e := decodeError(t, rr); e.Code != CodeInternalError {
		t.Errorf("code = %s", e.Code)
	}
}

func TestAuthEnabledOnRouter(t *testing.T) {
	h := NewServer(&fakeSearch{}, &fakeTasks{}, &fakeHealth{report: healthuc.Report{Status: healthuc.Healthy}},
		testDefaults, zap.NewNop()).Handler([]string{"secret"})

	if rr := do(t, h, http.MethodGet, "/api/facets", ""); rr.Code != http.StatusUnauthorized {
		t.Errorf("without token: status = %d", rr.Code)
	}
	if rr := do(t, h, http.MethodGet, "/health", ""); rr.Code != http.StatusOK {
		t.Errorf("health: status = %d", rr.Code)
	}
}

func TestRequestLogCarriesCollection(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	search := &fakeSearch{
		searchFn: func(context.Context, request.Intent) (docPage, error) { return onePage(), nil },
		multiFn: func(context.Context, request.Multi) ([]docPage, error) {
			return []docPage{onePage(), onePage()}, nil
		},
	}
	h := NewServer(search, &fakeTasks{}, &fakeHealth{}, testDefaults, zap.New(core)).Handler(nil)

	do(t, h, http.MethodPost, "/api/search", `{"collection":"products","q":"phone"}`)
	do(t, h, http.MethodPost, "/api/multi-search",
		`{"queries":[{"collection":"products","q":"a"},{"collection":"articles","q":"b"}]}`)
	do(t, h, http.MethodGet, "/api/tasks/nope", "")

	lines := logs.FilterMessage("http_request").All()
	if len(lines) != 3 {
		t.Fatalf("expected 3 request lines, got %d", len(lines))
	}
	want := []any{"products", "mixed", nil}
	for i, l := range lines {
		if got := l.ContextMap()["collection"]; got != want[i] {
			t.Errorf("line %d collection = %v, want %v", i, got, want[i])
		}
	}
}
