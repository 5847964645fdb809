package workflow

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hireflow/internal/database"
	"hireflow/internal/repository"
)

type queueRepo struct {
	mu    sync.Mutex
	queue []repository.WorkflowRun

	released []releaseCall
	retried  []retryCall
}

type releaseCall struct {
	id        uuid.UUID
	state     repository.RunState
	attempts  int
	lastError string
}

type retryCall struct {
	id       uuid.UUID
	attempts int
}

func (q *queueRepo) Create(_ context.Context, run repository.WorkflowRun) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.queue = append(q.queue, run)
	return nil
}

func (q *queueRepo) ClaimNext(context.Context) (repository.WorkflowRun, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.queue) == 0 {
		return repository.WorkflowRun{}, repository.ErrRunNotFound
	}
	run := q.queue[0]
	q.queue = q.queue[1:]
	return run, nil
}

func (q *queueRepo) SaveCheckpoint(context.Context, uuid.UUID, repository.RunState, json.RawMessage) error {
	return nil
}

func (q *queueRepo) SaveCheckpointTx(context.Context, database.Tx, uuid.UUID, repository.RunState, json.RawMessage) error {
	return nil
}

func (q *queueRepo) Release(_ context.Context, id uuid.UUID, state repository.RunState, attempts int, lastError string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.released = append(q.released, releaseCall{id: id, state: state, attempts: attempts, lastError: lastError})
	return nil
}

func (q *queueRepo) Retry(_ context.Context, id uuid.UUID, attempts int, _ string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.retried = append(q.retried, retryCall{id: id, attempts: attempts})
	return nil
}

func (q *queueRepo) ReclaimStale(context.Context, time.Duration) (int64, error) { return 0, nil }

type scriptedHandler struct {
	kind repository.RunKind
	err  error

	mu       sync.Mutex
	ran      []repository.WorkflowRun
	failures []error
}

func (h *scriptedHandler) Kind() repository.RunKind { return h.kind }

func (h *scriptedHandler) Run(_ context.Context, run repository.WorkflowRun) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ran = append(h.ran, run)
	return h.err
}

func (h *scriptedHandler) OnFailure(_ context.Context, _ repository.WorkflowRun, cause error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failures = append(h.failures, cause)
}

func newRunner(repo *queueRepo, h *scriptedHandler) *Runner {
	r := NewRunner(repo, zap.NewNop(), Options{Workers: 1, PollInterval: 5 * time.Millisecond})
	r.Register(h)
	return r
}

func run(t *testing.T, r *Runner) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = r.Run(ctx)
		close(done)
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("runner did not stop")
	}
}

func TestPermanentWrapping(t *testing.T) {
	if Permanent(nil) != nil {
		t.Error("Permanent(nil) should be nil")
	}
	base := errors.New("bad payload")
	wrapped := Permanent(base)
	if !IsPermanent(wrapped) {
		t.Error("wrapped error should be permanent")
	}
	if !errors.Is(wrapped, base) {
		t.Error("wrapped error should unwrap to its cause")
	}
	if IsPermanent(base) {
		t.Error("plain error should not be permanent")
	}
}

func TestRunnerReleasesSuccessfulRun(t *testing.T) {
	repo := &queueRepo{}
	h := &scriptedHandler{kind: repository.RunKindResumeScreening}
	id := uuid.New()
	repo.queue = []repository.WorkflowRun{{ID: id, Kind: repository.RunKindResumeScreening, MaxAttempts: 3}}

	run(t, newRunner(repo, h))

	if len(h.ran) != 1 {
		t.Fatalf("handler ran %d times, want 1", len(h.ran))
	}
	if len(repo.released) != 1 {
		t.Fatalf("released %d runs, want 1", len(repo.released))
	}
	rel := repo.released[0]
	if rel.id != id || rel.state != repository.RunStateDone || rel.attempts != 1 {
		t.Errorf("release = %+v, want DONE on attempt 1", rel)
	}
}

func TestRunnerRetriesTransientFailure(t *testing.T) {
	repo := &queueRepo{}
	h := &scriptedHandler{kind: repository.RunKindResumeScreening, err: errors.New("model unavailable")}
	id := uuid.New()
	repo.queue = []repository.WorkflowRun{{ID: id, Kind: repository.RunKindResumeScreening, Attempts: 0, MaxAttempts: 3}}

	run(t, newRunner(repo, h))

	if len(repo.retried) != 1 {
		t.Fatalf("retried %d times, want 1", len(repo.retried))
	}
	if repo.retried[0].attempts != 1 {
		t.Errorf("retry attempts = %d, want 1", repo.retried[0].attempts)
	}
	if len(repo.released) != 0 {
		t.Errorf("transient failure must not release terminally, got %+v", repo.released)
	}
	if len(h.failures) != 0 {
		t.Error("OnFailure must not fire for a retriable attempt")
	}
}

func TestRunnerFailsPermanentError(t *testing.T) {
	repo := &queueRepo{}
	h := &scriptedHandler{kind: repository.RunKindResumeScreening, err: Permanent(errors.New("corrupt pdf"))}
	id := uuid.New()
	repo.queue = []repository.WorkflowRun{{ID: id, Kind: repository.RunKindResumeScreening, MaxAttempts: 3}}

	run(t, newRunner(repo, h))

	if len(repo.released) != 1 || repo.released[0].state != repository.RunStateFailed {
		t.Fatalf("released = %+v, want one FAILED release", repo.released)
	}
	if len(repo.retried) != 0 {
		t.Error("permanent error must not be retried")
	}
	if len(h.failures) != 1 {
		t.Fatalf("OnFailure fired %d times, want 1", len(h.failures))
	}
}

func TestRunnerFailsWhenAttemptsExhausted(t *testing.T) {
	repo := &queueRepo{}
	h := &scriptedHandler{kind: repository.RunKindResumeScreening, err: errors.New("still down")}
	id := uuid.New()
	repo.queue = []repository.WorkflowRun{{ID: id, Kind: repository.RunKindResumeScreening, Attempts: 2, MaxAttempts: 3}}

	run(t, newRunner(repo, h))

	if len(repo.released) != 1 {
		t.Fatalf("released %d runs, want 1", len(repo.released))
	}
	rel := repo.released[0]
	if rel.state != repository.RunStateFailed || rel.attempts != 3 {
		t.Errorf("release = %+v, want FAILED on attempt 3", rel)
	}
	if rel.lastError == "" {
		t.Error("terminal failure should record the error")
	}
	if len(h.failures) != 1 {
		t.Error("OnFailure should fire when attempts run out")
	}
}

func TestRunnerFailsUnknownKind(t *testing.T) {
	repo := &queueRepo{}
	h := &scriptedHandler{kind: repository.RunKindResumeScreening}
	repo.queue = []repository.WorkflowRun{{ID: uuid.New(), Kind: repository.RunKindInterviewGeneration, MaxAttempts: 3}}

	run(t, newRunner(repo, h))

	if len(h.ran) != 0 {
		t.Error("handler for a different kind must not run")
	}
	if len(repo.released) != 1 || repo.released[0].state != repository.RunStateFailed {
		t.Fatalf("released = %+v, want one FAILED release", repo.released)
	}
}
