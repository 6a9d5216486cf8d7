package request

import (
	"math"
	"strings"

	"github.com/kailas-cloud/findex/internal/domain"
	"github.com/kailas-cloud/findex/internal/domain/collection"
	"github.com/kailas-cloud/findex/internal/domain/search/filter"
)

// Similar search limits.
const (
	DefaultSimilarLimit = 6
	MaxSimilarLimit     = 100
)

// SimilarRequest is a validated "find similar documents" query.
type SimilarRequest struct {
	collection     collection.Name
	id             string
	limit          int
	scoreThreshold *float64
	filter         filter.Raw
}

// NewSimilar validates and normalizes similar request parameters.
// A non-positive limit falls back to DefaultSimilarLimit.
func NewSimilar(
	c collection.Name,
	id string,
	limit int,
	scoreThreshold *float64,
	raw filter.Raw,
) (SimilarRequest, error) {
	if !c.IsValid() {
		return SimilarRequest{}, domain.Validationf("unknown collection %q", c)
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return SimilarRequest{}, domain.Validationf("document id is required")
	}
	if limit <= 0 {
		limit = DefaultSimilarLimit
	}
	if limit > MaxSimilarLimit {
		limit = MaxSimilarLimit
	}
	if t := scoreThreshold; t != nil && (math.IsNaN(*t) || *t < 0 || *t > 1) {
		return SimilarRequest{}, domain.Validationf("ranking score threshold must be between 0 and 1, got %v", *t)
	}

	return SimilarRequest{
		collection:     c,
		id:             id,
		limit:          limit,
		scoreThreshold: scoreThreshold,
		filter:         raw,
	}, nil
}

// Collection returns the target collection.
func (r *SimilarRequest) Collection() collection.Name { return r.collection }

// ID returns the reference document identifier.
func (r *SimilarRequest) ID() string { return r.id }

// Limit returns the maximum hits to return.
func (r *SimilarRequest) Limit() int { return r.limit }

// ScoreThreshold returns the minimum ranking score, nil when unset.
func (r *SimilarRequest) ScoreThreshold() *float64 { return r.scoreThreshold }

// Filter returns the caller-supplied filter expressions.
func (r *SimilarRequest) Filter() filter.Raw { return r.filter }
