package task

import (
	"context"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/findex/internal/domain"
	domtask "github.com/kailas-cloud/findex/internal/domain/task"
	"github.com/kailas-cloud/findex/internal/metrics"
)

// Wait defaults.
const (
	DefaultTimeout      = 5 * time.Minute
	DefaultPollInterval = time.Second
	// maxConcurrentPolls bounds status requests issued per poll round.
	maxConcurrentPolls = 8
)

// State is the position of a batch in the wait state machine.
type State int

// Batch states.
const (
	Pending State = iota
	Succeeded
	Failed
	TimedOut
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	case TimedOut:
		return "timed_out"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Options bounds one wait. Zero values fall back to the tracker defaults.
type Options struct {
	Timeout      time.Duration
	PollInterval time.Duration
}

// Outcome is the final state of a batch.
type Outcome struct {
	State   State
	Tasks   []domtask.Task // last observed state, in submission order
	Failed  []domain.FailedTask
	Pending []int64
	Polls   int
	Elapsed time.Duration
}

// Tracker waits for batches of mutation tasks to reach a terminal state.
// Each Await call owns its own deadline and task set, so batches may be
// awaited concurrently.
type Tracker struct {
	reader   StatusReader
	defaults Options
	logger   *zap.Logger
}

// New creates a tracker.
func New(reader StatusReader, defaults Options, logger *zap.Logger) *Tracker {
	if defaults.Timeout <= 0 {
		defaults.Timeout = DefaultTimeout
	}
	if defaults.PollInterval <= 0 {
		defaults.PollInterval = DefaultPollInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{reader: reader, defaults: defaults, logger: logger}
}

// Await blocks until every task in uids is terminal or the timeout passes.
//
// Returns a nil error when all tasks succeeded, *domain.TaskFailureError
// listing every failed or canceled task, or *domain.TaskTimeoutError when
// the deadline passed first. Status read errors are returned as is.
func (t *Tracker) Await(ctx context.Context, uids []int64, opts Options) (Outcome, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = t.defaults.Timeout
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = t.defaults.PollInterval
	}

	start := time.Now()
	deadline := start.Add(opts.Timeout)
	order := dedupe(uids)
	latest := make(map[int64]domtask.Task, len(order))
	pending := order
	out := Outcome{State: Pending}

	finish := func(state State) Outcome {
		out.State = state
		out.Elapsed = time.Since(start)
		out.Pending = pending
		out.Tasks = make([]domtask.Task, 0, len(order))
		for _, uid := range order {
			if tk, ok := latest[uid]; ok {
				out.Tasks = append(out.Tasks, tk)
			}
		}
		metrics.TaskWaitsTotal.WithLabelValues(state.String()).Inc()
		metrics.TaskWaitDuration.Observe(out.Elapsed.Seconds())
		return out
	}

	for len(pending) > 0 {
		polled, err := t.poll(ctx, pending)
		if err != nil {
			metrics.TaskWaitsTotal.WithLabelValues("error").Inc()
			out.Pending = pending
			out.Elapsed = time.Since(start)
			return out, fmt.Errorf("poll tasks: %w", err)
		}
		out.Polls++
		metrics.TaskPollsTotal.Inc()

		next := make([]int64, 0, len(pending))
		for _, tk := range polled {
			latest[tk.UID] = tk
			if !tk.Status.IsTerminal() {
				next = append(next, tk.UID)
			}
		}
		pending = next

		t.logger.Debug("task poll",
			zap.Int("poll", out.Polls),
			zap.Int("total", len(order)),
			zap.Int("pending", len(pending)),
		)
		if len(pending) == 0 {
			break
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			o := finish(TimedOut)
			t.logger.Warn("task wait timed out",
				zap.Int64s("pending", pending),
				zap.Duration("timeout", opts.Timeout),
			)
			return o, &domain.TaskTimeoutError{Pending: slices.Clone(pending), Timeout: opts.Timeout}
		}
		if err := sleep(ctx, min(opts.PollInterval, remaining)); err != nil {
			metrics.TaskWaitsTotal.WithLabelValues("error").Inc()
			out.Pending = pending
			out.Elapsed = time.Since(start)
			return out, err
		}
	}

	for _, uid := range order {
		if tk := latest[uid]; tk.Status.IsFailure() {
			out.Failed = append(out.Failed, tk.Failure())
		}
	}
	if len(out.Failed) > 0 {
		o := finish(Failed)
		for _, f := range o.Failed {
			t.logger.Warn("task failed",
				zap.Int64("task_uid", f.UID),
				zap.String("type", f.Type),
				zap.String("index", f.Index),
				zap.String("code", f.Code),
				zap.String("message", f.Message),
			)
		}
		return o, &domain.TaskFailureError{Failed: slices.Clone(o.Failed)}
	}
	return finish(Succeeded), nil
}

// poll fetches the status of every uid concurrently. Results are joined by
// position, not by arrival order.
func (t *Tracker) poll(ctx context.Context, uids []int64) ([]domtask.Task, error) {
	out := make([]domtask.Task, len(uids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentPolls)
	for i, uid := range uids {
		g.Go(func() error {
			tk, err := t.reader.GetTask(gctx, uid)
			if err != nil {
				return fmt.Errorf("task %d: %w", uid, err)
			}
			if tk.UID == 0 {
				tk.UID = uid
			}
			out[i] = tk
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err //nolint:wrapcheck // already wrapped per task
	}
	return out, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err() //nolint:wrapcheck // caller checks context errors directly
	case <-timer.C:
		return nil
	}
}

func dedupe(uids []int64) []int64 {
	seen := make(map[int64]struct{}, len(uids))
	out := make([]int64, 0, len(uids))
	for _, uid := range uids {
		if _, ok := seen[uid]; ok {
			continue
		}
		seen[uid] = struct{}{}
		out = append(out, uid)
	}
	return out
}
