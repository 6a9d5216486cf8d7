package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/findex/internal/domain"
	"github.com/kailas-cloud/findex/internal/domain/collection"
	domtask "github.com/kailas-cloud/findex/internal/domain/task"
	ustask "github.com/kailas-cloud/findex/internal/usecase/task"
)

// Embedder configures the engine-side embedder of every collection.
type Embedder struct {
	Name         string // e.g. "openai"
	APIKey       string
	Model        string
	Dimensions   int
	UserProvided bool // vectors are computed by the caller, not the engine
}

// Options tune provisioning.
type Options struct {
	Collections []collection.Name // defaults to collection.All()
	Embedder    *Embedder         // nil skips embedder setup
	Wait        ustask.Options
}

// Step is one awaited provisioning batch.
type Step struct {
	Name    string
	Tasks   int
	Elapsed time.Duration
}

// Report lists the executed steps in order.
type Report struct {
	Steps []Step
}

// Service creates and configures the engine indexes.
type Service struct {
	admin  IndexAdmin
	tasks  TaskAwaiter
	cache  CacheInvalidator
	opts   Options
	logger *zap.Logger
}

// New creates a bootstrap service. cache is optional.
func New(admin IndexAdmin, tasks TaskAwaiter, cache CacheInvalidator, opts Options, logger *zap.Logger) *Service {
	if len(opts.Collections) == 0 {
		opts.Collections = collection.All()
	}
	return &Service{admin: admin, tasks: tasks, cache: cache, opts: opts, logger: logger}
}

// Run provisions every collection. With clean, existing indexes and their
// documents are dropped first. Each step is awaited before the next starts.
func (s *Service) Run(ctx context.Context, clean bool) (Report, error) {
	var rep Report

	if clean {
		err := s.step(ctx, &rep, "delete indexes", domain.CodeIndexNotFound, func(name collection.Name) (domtask.Summary, error) {
			return s.admin.DeleteIndex(ctx, string(name))
		})
		if err != nil {
			return rep, err
		}
	}

	err := s.step(ctx, &rep, "create indexes", domain.CodeIndexAlreadyExists, func(name collection.Name) (domtask.Summary, error) {
		return s.admin.CreateIndex(ctx, string(name), collection.PrimaryKey)
	})
	if err != nil {
		return rep, err
	}

	if e := s.opts.Embedder; e != nil {
		err = s.step(ctx, &rep, "configure embedders", "", func(name collection.Name) (domtask.Summary, error) {
			return s.admin.UpdateEmbedders(ctx, string(name), map[string]collection.Embedder{e.Name: embedderFor(name, e)})
		})
		if err != nil {
			return rep, err
		}
	}

	err = s.step(ctx, &rep, "apply settings", "", func(name collection.Name) (domtask.Summary, error) {
		return s.admin.UpdateSettings(ctx, string(name), name.Settings())
	})
	if err != nil {
		return rep, err
	}

	err = s.step(ctx, &rep, "apply synonyms", "", func(name collection.Name) (domtask.Summary, error) {
		return s.admin.UpdateSynonyms(ctx, string(name), name.Synonyms())
	})
	if err != nil {
		return rep, err
	}

	s.invalidate(ctx)
	return rep, nil
}

// step submits one mutation per collection and awaits them as a batch.
// Engine errors carrying the tolerated code, returned either directly or by a
// failed task, count as success.
func (s *Service) step(
	ctx context.Context,
	rep *Report,
	name, tolerated string,
	submit func(collection.Name) (domtask.Summary, error),
) error {
	uids := make([]int64, 0, len(s.opts.Collections))
	for _, c := range s.opts.Collections {
		summary, err := submit(c)
		if err != nil {
			if hasCode(err, tolerated) {
				continue
			}
			return fmt.Errorf("%s: %s: %w", name, c, err)
		}
		uids = append(uids, summary.TaskUID)
	}

	outcome, err := s.tasks.Await(ctx, uids, s.opts.Wait)
	rep.Steps = append(rep.Steps, Step{Name: name, Tasks: len(uids), Elapsed: outcome.Elapsed})
	if err != nil && !allFailedWith(err, tolerated) {
		return fmt.Errorf("%s: %w", name, err)
	}

	s.logger.Info("Bootstrap step done",
		zap.String("step", name),
		zap.Int("tasks", len(uids)),
		zap.Duration("elapsed", outcome.Elapsed),
	)
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	for _, c := range s.opts.Collections {
		if err := s.cache.Invalidate(ctx, c); err != nil {
			s.logger.Warn("Failed to invalidate search cache", zap.String("collection", string(c)), zap.Error(err))
		}
	}
}

func embedderFor(name collection.Name, e *Embedder) collection.Embedder {
	if e.UserProvided {
		return collection.Embedder{Source: collection.EmbedderSourceUserProvided, Dimensions: e.Dimensions}
	}
	return collection.Embedder{
		Source:           collection.EmbedderSourceOpenAI,
		APIKey:           e.APIKey,
		Model:            e.Model,
		Dimensions:       e.Dimensions,
		DocumentTemplate: name.DocumentTemplate(),
	}
}

func hasCode(err error, code string) bool {
	var remote *domain.RemoteError
	return code != "" && errors.As(err, &remote) && remote.Code == code
}

// allFailedWith reports whether err is a task failure where every failed task carries code.
func allFailedWith(err error, code string) bool {
	var tf *domain.TaskFailureError
	if code == "" || !errors.As(err, &tf) {
		return false
	}
	for _, f := range tf.Failed {
		if f.Code != code {
			return false
		}
	}
	return true
}
