package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"hireflow/internal/repository"
)

// Handler executes one kind of run from its current checkpoint. A nil
// return means the run reached DONE; a *PermanentError return fails it
// immediately; any other error schedules a retry until attempts run out.
type Handler interface {
	Kind() repository.RunKind
	Run(ctx context.Context, run repository.WorkflowRun) error
}

// FailureHandler is implemented by handlers that need to settle external
// state when the runner gives up on a run.
type FailureHandler interface {
	OnFailure(ctx context.Context, run repository.WorkflowRun, cause error)
}

type Options struct {
	Workers         int
	PollInterval    time.Duration
	ReclaimInterval time.Duration
	StaleAfter      time.Duration
}

func (o *Options) normalize() {
	if o.Workers <= 0 {
		o.Workers = 1
	}
	if o.PollInterval <= 0 {
		o.PollInterval = 2 * time.Second
	}
	if o.ReclaimInterval <= 0 {
		o.ReclaimInterval = time.Minute
	}
	if o.StaleAfter <= 0 {
		o.StaleAfter = 5 * time.Minute
	}
}

// Runner claims runs from the queue and drives them through their
// handlers. Claiming uses row locks, so any number of runner processes can
// share one queue without double-processing.
type Runner struct {
	runs     repository.WorkflowRunRepository
	handlers map[repository.RunKind]Handler
	opts     Options
	logger   *zap.Logger
}

func NewRunner(runs repository.WorkflowRunRepository, logger *zap.Logger, opts Options) *Runner {
	opts.normalize()
	return &Runner{
		runs:     runs,
		handlers: make(map[repository.RunKind]Handler),
		opts:     opts,
		logger:   logger,
	}
}

func (r *Runner) Register(h Handler) {
	r.handlers[h.Kind()] = h
}

// Run blocks until ctx is cancelled, then waits for in-flight runs to
// finish their current step.
func (r *Runner) Run(ctx context.Context) error {
	if len(r.handlers) == 0 {
		return errors.New("workflow runner has no registered handlers")
	}

	var wg sync.WaitGroup
	wg.Add(r.opts.Workers)
	for i := 0; i < r.opts.Workers; i++ {
		go func(worker int) {
			defer wg.Done()
			r.workLoop(ctx, worker)
		}(i)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		r.reclaimLoop(ctx)
	}()

	r.logger.Info("workflow runner started", zap.Int("workers", r.opts.Workers))
	wg.Wait()
	r.logger.Info("workflow runner stopped")
	return nil
}

func (r *Runner) workLoop(ctx context.Context, worker int) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		run, err := r.runs.ClaimNext(ctx)
		if err != nil {
			if !errors.Is(err, repository.ErrRunNotFound) {
				r.logger.Error("claim run", zap.Int("worker", worker), zap.Error(err))
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(r.opts.PollInterval):
			}
			continue
		}

		r.process(ctx, run)
	}
}

func (r *Runner) reclaimLoop(ctx context.Context) {
	ticker := time.NewTicker(r.opts.ReclaimInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := r.runs.ReclaimStale(ctx, r.opts.StaleAfter)
			if err != nil {
				r.logger.Error("reclaim stale runs", zap.Error(err))
				continue
			}
			if n > 0 {
				r.logger.Warn("reclaimed stale runs", zap.Int64("count", n))
			}
		}
	}
}

func (r *Runner) process(ctx context.Context, run repository.WorkflowRun) {
	attempts := run.Attempts + 1
	log := r.logger.With(
		zap.String("run_id", run.ID.String()),
		zap.String("kind", string(run.Kind)),
		zap.Int("attempt", attempts),
	)

	h, ok := r.handlers[run.Kind]
	if !ok {
		log.Error("no handler for run kind")
		r.release(ctx, run, repository.RunStateFailed, attempts, fmt.Sprintf("no handler for kind %q", run.Kind))
		return
	}

	err := h.Run(ctx, run)

	// Settlement must land even when shutdown cancelled the step, or the
	// run stays locked until it is reclaimed as stale.
	ctx = context.WithoutCancel(ctx)
	if err == nil {
		// The handler's terminal checkpoint already set DONE; this just
		// records the attempt and drops the lock.
		r.release(ctx, run, repository.RunStateDone, attempts, "")
		log.Info("run finished")
		return
	}

	if IsPermanent(err) || attempts >= run.MaxAttempts {
		log.Error("run failed", zap.Error(err), zap.Bool("permanent", IsPermanent(err)))
		r.release(ctx, run, repository.RunStateFailed, attempts, err.Error())
		if fh, ok := h.(FailureHandler); ok {
			fh.OnFailure(ctx, run, err)
		}
		return
	}

	log.Warn("run attempt failed, will retry", zap.Error(err))
	if rerr := r.runs.Retry(ctx, run.ID, attempts, err.Error()); rerr != nil {
		log.Error("schedule retry", zap.Error(rerr))
	}
}

func (r *Runner) release(ctx context.Context, run repository.WorkflowRun, state repository.RunState, attempts int, lastError string) {
	if err := r.runs.Release(ctx, run.ID, state, attempts, lastError); err != nil {
		r.logger.Error("release run",
			zap.String("run_id", run.ID.String()),
			zap.Error(err),
		)
	}
}
