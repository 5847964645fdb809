package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"hireflow/internal/database"
	"hireflow/internal/database/pgerror"

	"github.com/google/uuid"
)

var ErrRunNotFound = errors.New("workflow run not found")

type RunKind string

const (
	RunKindResumeScreening     RunKind = "resume_screening"
	RunKindInterviewGeneration RunKind = "interview_generation"
)

type RunState string

// Run states. The screening flow moves PENDING → EXTRACTING → SCORING →
// PERSISTING; the generation flow PENDING → GENERATING → PERSISTING.
// Both end in DONE or FAILED.
const (
	RunStatePending    RunState = "PENDING"
	RunStateExtracting RunState = "EXTRACTING"
	RunStateScoring    RunState = "SCORING"
	RunStateGenerating RunState = "GENERATING"
	RunStatePersisting RunState = "PERSISTING"
	RunStateDone       RunState = "DONE"
	RunStateFailed     RunState = "FAILED"
)

func (s RunState) Terminal() bool {
	return s == RunStateDone || s == RunStateFailed
}

// WorkflowRun is one durable workflow instance. Payload is the trigger
// event; Checkpoint carries step output across suspension boundaries so a
// resumed run never depends on process memory.
type WorkflowRun struct {
	ID          uuid.UUID
	Kind        RunKind
	State       RunState
	Payload     json.RawMessage
	Checkpoint  json.RawMessage
	Attempts    int
	MaxAttempts int
	LastError   string
	LockedAt    *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type WorkflowRunRepository interface {
	Create(ctx context.Context, run WorkflowRun) error
	// ClaimNext locks and returns the oldest runnable run, or ErrRunNotFound
	// when the queue is empty. SKIP LOCKED keeps concurrent workers off the
	// same run.
	ClaimNext(ctx context.Context) (WorkflowRun, error)
	SaveCheckpoint(ctx context.Context, id uuid.UUID, state RunState, checkpoint json.RawMessage) error
	SaveCheckpointTx(ctx context.Context, tx database.Tx, id uuid.UUID, state RunState, checkpoint json.RawMessage) error
	Release(ctx context.Context, id uuid.UUID, state RunState, attempts int, lastError string) error
	// Retry unlocks a run for another attempt without touching its state,
	// so it resumes from whatever checkpoint it last saved.
	Retry(ctx context.Context, id uuid.UUID, attempts int, lastError string) error
	// ReclaimStale unlocks runs whose worker died mid-flight so another
	// worker can resume them from their last checkpoint.
	ReclaimStale(ctx context.Context, olderThan time.Duration) (int64, error)
}

type PostgresWorkflowRunRepository struct {
	db database.DB
}

func NewPostgresWorkflowRunRepository(db database.DB) *PostgresWorkflowRunRepository {
	return &PostgresWorkflowRunRepository{db: db}
}

func (r *PostgresWorkflowRunRepository) Create(ctx context.Context, run WorkflowRun) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO workflow_runs (id, kind, state, payload, attempts, max_attempts)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		run.ID, run.Kind, RunStatePending, []byte(run.Payload), 0, run.MaxAttempts,
	)
	return pgerror.Classify(err)
}

const runColumns = `id, kind, state, payload, checkpoint, attempts, max_attempts,
	COALESCE(last_error, ''), locked_at, created_at, updated_at`

func (r *PostgresWorkflowRunRepository) ClaimNext(ctx context.Context) (WorkflowRun, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE workflow_runs SET locked_at = now(), updated_at = now()
		WHERE id = (
			SELECT id FROM workflow_runs
			WHERE state NOT IN ($1, $2) AND locked_at IS NULL
			ORDER BY created_at
			FOR UPDATE SKIP LOCKED
			LIMIT 1
		)
		RETURNING `+runColumns,
		RunStateDone, RunStateFailed,
	)
	return scanRun(row)
}

func (r *PostgresWorkflowRunRepository) SaveCheckpoint(ctx context.Context, id uuid.UUID, state RunState, checkpoint json.RawMessage) error {
	return r.saveCheckpoint(ctx, r.db, id, state, checkpoint)
}

func (r *PostgresWorkflowRunRepository) SaveCheckpointTx(ctx context.Context, tx database.Tx, id uuid.UUID, state RunState, checkpoint json.RawMessage) error {
	return r.saveCheckpoint(ctx, tx, id, state, checkpoint)
}

type execer interface {
	Exec(ctx context.Context, query string, args ...any) (int64, error)
}

func (r *PostgresWorkflowRunRepository) saveCheckpoint(ctx context.Context, e execer, id uuid.UUID, state RunState, checkpoint json.RawMessage) error {
	var cp any
	if len(checkpoint) > 0 {
		cp = []byte(checkpoint)
	}
	n, err := e.Exec(ctx, `
		UPDATE workflow_runs
		SET state = $2, checkpoint = COALESCE($3, checkpoint), updated_at = now()
		WHERE id = $1`,
		id, state, cp,
	)
	if err != nil {
		return pgerror.Classify(err)
	}
	if n == 0 {
		return ErrRunNotFound
	}
	return nil
}

func (r *PostgresWorkflowRunRepository) Release(ctx context.Context, id uuid.UUID, state RunState, attempts int, lastError string) error {
	var lastErr any
	if lastError != "" {
		lastErr = lastError
	}
	n, err := r.db.Exec(ctx, `
		UPDATE workflow_runs
		SET state = $2, attempts = $3, last_error = $4, locked_at = NULL, updated_at = now()
		WHERE id = $1`,
		id, state, attempts, lastErr,
	)
	if err != nil {
		return pgerror.Classify(err)
	}
	if n == 0 {
		return ErrRunNotFound
	}
	return nil
}

func (r *PostgresWorkflowRunRepository) Retry(ctx context.Context, id uuid.UUID, attempts int, lastError string) error {
	var lastErr any
	if lastError != "" {
		lastErr = lastError
	}
	n, err := r.db.Exec(ctx, `
		UPDATE workflow_runs
		SET attempts = $2, last_error = $3, locked_at = NULL, updated_at = now()
		WHERE id = $1`,
		id, attempts, lastErr,
	)
	if err != nil {
		return pgerror.Classify(err)
	}
	if n == 0 {
		return ErrRunNotFound
	}
	return nil
}

func (r *PostgresWorkflowRunRepository) ReclaimStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	n, err := r.db.Exec(ctx, `
		UPDATE workflow_runs
		SET locked_at = NULL, updated_at = now()
		WHERE locked_at IS NOT NULL
		  AND locked_at < now() - $1::interval
		  AND state NOT IN ($2, $3)`,
		olderThan.String(), RunStateDone, RunStateFailed,
	)
	return n, pgerror.Classify(err)
}

func scanRun(s scanner) (WorkflowRun, error) {
	var run WorkflowRun
	var payload, checkpoint []byte
	if err := s.Scan(
		&run.ID, &run.Kind, &run.State, &payload, &checkpoint,
		&run.Attempts, &run.MaxAttempts, &run.LastError, &run.LockedAt,
		&run.CreatedAt, &run.UpdatedAt,
	); err != nil {
		err = pgerror.Classify(err)
		if pgerror.IsNotFound(err) {
			return WorkflowRun{}, ErrRunNotFound
		}
		return WorkflowRun{}, err
	}
	run.Payload = payload
	run.Checkpoint = checkpoint
	return run, nil
}
