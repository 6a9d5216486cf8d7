package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/findex/internal/domain"
	"github.com/kailas-cloud/findex/internal/domain/collection"
	ustask "github.com/kailas-cloud/findex/internal/usecase/task"
)

// DefaultBatchSize is the number of documents per submitted batch.
const DefaultBatchSize = 1000

// Options tune one ingestion.
type Options struct {
	BatchSize     int
	BatchesPerSec float64 // 0 disables throttling
	Wait          ustask.Options
}

// Report summarizes an ingestion.
type Report struct {
	Collection collection.Name
	Documents  int
	Batches    int
	TaskUIDs   []int64
	Outcome    ustask.Outcome
	Stats      collection.Stats
}

// Service chunks documents into batches, submits them, and awaits every
// resulting task as one batch.
type Service struct {
	writer  DocumentWriter
	tasks   TaskAwaiter
	cache   CacheInvalidator
	opts    Options
	limiter *rate.Limiter
	logger  *zap.Logger
}

// New creates an ingestion service. cache is optional.
func New(writer DocumentWriter, tasks TaskAwaiter, cache CacheInvalidator, opts Options, logger *zap.Logger) *Service {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.BatchesPerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.BatchesPerSec), 1)
	}
	return &Service{
		writer:  writer,
		tasks:   tasks,
		cache:   cache,
		opts:    opts,
		limiter: limiter,
		logger:  logger,
	}
}

// Ingest submits docs to collection c.
// Submission is sequential; every task id is collected and awaited once at the
// end, so a failed early batch is still reported after later ones were issued.
// When a batch fails to submit, the batches already accepted are still awaited
// into rep.Outcome and the search cache is invalidated before the submit error
// is returned.
func (s *Service) Ingest(ctx context.Context, c collection.Name, docs []json.RawMessage) (Report, error) {
	rep := Report{Collection: c, Documents: len(docs)}
	if !c.IsValid() {
		return rep, domain.Validationf("unknown collection %q", c)
	}
	if len(docs) == 0 {
		return rep, domain.Validationf("no documents to ingest")
	}

	index := string(c)
	for start := 0; start < len(docs); start += s.opts.BatchSize {
		end := min(start+s.opts.BatchSize, len(docs))

		if err := s.limiter.Wait(ctx); err != nil {
			if len(rep.TaskUIDs) > 0 {
				s.invalidate(context.WithoutCancel(ctx), c)
			}
			return rep, fmt.Errorf("wait for rate limiter: %w", err)
		}

		summary, err := s.writer.AddDocuments(ctx, index, docs[start:end])
		if err != nil {
			s.settlePartial(ctx, c, &rep)
			return rep, fmt.Errorf("submit batch %d: %w", rep.Batches+1, err)
		}
		rep.Batches++
		rep.TaskUIDs = append(rep.TaskUIDs, summary.TaskUID)

		s.logger.Info("Batch submitted",
			zap.String("collection", index),
			zap.Int("batch", rep.Batches),
			zap.Int("documents", end-start),
			zap.Int64("task_uid", summary.TaskUID),
		)
	}

	outcome, err := s.tasks.Await(ctx, rep.TaskUIDs, s.opts.Wait)
	rep.Outcome = outcome
	s.invalidate(ctx, c)
	if err != nil {
		return rep, fmt.Errorf("await ingestion tasks: %w", err)
	}

	stats, err := s.writer.IndexStats(ctx, index)
	if err != nil {
		return rep, fmt.Errorf("index stats: %w", err)
	}
	rep.Stats = stats
	return rep, nil
}

// settlePartial awaits the tasks of the batches accepted before a submission
// failure and drops cached results for c. The wait error is logged only.
func (s *Service) settlePartial(ctx context.Context, c collection.Name, rep *Report) {
	if len(rep.TaskUIDs) == 0 {
		return
	}
	outcome, err := s.tasks.Await(ctx, rep.TaskUIDs, s.opts.Wait)
	rep.Outcome = outcome
	if err != nil {
		s.logger.Warn("Accepted batches did not all succeed",
			zap.String("collection", string(c)),
			zap.Int64s("task_uids", rep.TaskUIDs),
			zap.Error(err),
		)
	}
	s.invalidate(context.WithoutCancel(ctx), c)
}

func (s *Service) invalidate(ctx context.Context, c collection.Name) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, c); err != nil {
		s.logger.Warn("Failed to invalidate search cache", zap.String("collection", string(c)), zap.Error(err))
	}
}

// DecodeDocuments reads a JSON array of document objects.
func DecodeDocuments(r io.Reader) ([]json.RawMessage, error) {
	var docs []json.RawMessage
	if err := json.NewDecoder(r).Decode(&docs); err != nil {
		return nil, domain.Validationf("documents must be a JSON array: %v", err)
	}
	for i, d := range docs {
		if t := bytes.TrimSpace(d); len(t) == 0 || t[0] != '{' {
			return nil, domain.Validationf("document %d is not a JSON object", i)
		}
	}
	return docs, nil
}
