package chi

import (
	"context"

	"github.com/kailas-cloud/findex/internal/domain/search/request"
	"github.com/kailas-cloud/findex/internal/domain/search/result"
	"github.com/kailas-cloud/findex/internal/domain/task"
	healthuc "github.com/kailas-cloud/findex/internal/usecase/health"
)

// SearchService runs validated search requests.
type SearchService interface {
	Search(ctx context.Context, intent request.Intent) (result.Page[result.Document], error)
	MultiSearch(ctx context.Context, m request.Multi) ([]result.Page[result.Document], error)
	FederatedSearch(ctx context.Context, m request.Multi) (result.Page[result.Document], error)
	FacetSearch(ctx context.Context, fs request.FacetSearch) (result.FacetValues, error)
	Similar(ctx context.Context, r request.SimilarRequest) (result.Similar[result.Document], error)
}

// TaskReader looks up engine tasks.
type TaskReader interface {
	GetTask(ctx context.Context, uid int64) (task.Task, error)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
