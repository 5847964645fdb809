package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"hireflow/internal/database"
	"hireflow/internal/database/pgerror"
	"hireflow/internal/domain/interview"

	"github.com/google/uuid"
)

var (
	ErrInterviewNotFound = errors.New("interview not found")
	// ErrInterviewExists is the idempotency gate's conflict signal: a live
	// (non-FAILED) interview already exists for the opening.
	ErrInterviewExists = errors.New("interview already exists for job opening")
)

type InterviewRepository interface {
	// CreateOrReuse inserts an empty interview for the opening, or resets an
	// existing FAILED one in place. A live row makes it fail with
	// ErrInterviewExists. The check and the write share one transaction, and
	// the unique index on job_opening_id backstops racing requests.
	CreateOrReuse(ctx context.Context, iv interview.Interview) (interview.Interview, error)

	GetByID(ctx context.Context, id uuid.UUID) (interview.Interview, error)
	ListByOpening(ctx context.Context, openingID uuid.UUID) ([]interview.Interview, error)
	SetQuestions(ctx context.Context, id uuid.UUID, questions []interview.Question) error
	MarkFailed(ctx context.Context, id uuid.UUID) error
}

type PostgresInterviewRepository struct {
	db database.DB
}

func NewPostgresInterviewRepository(db database.DB) *PostgresInterviewRepository {
	return &PostgresInterviewRepository{db: db}
}

const interviewColumns = `id, job_opening_id, duration_seconds, expires_at, questions, status, created_at, updated_at`

func (r *PostgresInterviewRepository) CreateOrReuse(ctx context.Context, iv interview.Interview) (interview.Interview, error) {
	out := iv
	out.Questions = []interview.Question{}
	out.Status = interview.StatusPending

	err := database.WithinTx(ctx, r.db, func(tx database.Tx) error {
		var existingID uuid.UUID
		var existingStatus interview.Status
		err := tx.QueryRow(ctx,
			`SELECT id, status FROM interviews WHERE job_opening_id = $1 FOR UPDATE`,
			iv.JobOpeningID,
		).Scan(&existingID, &existingStatus)

		switch {
		case err == nil:
			if existingStatus != interview.StatusFailed {
				return ErrInterviewExists
			}
			// A terminally failed generation does not block the opening
			// forever: reuse the row instead of inserting a second one.
			out.ID = existingID
			_, err := tx.Exec(ctx, `
				UPDATE interviews
				SET duration_seconds = $2, expires_at = $3, questions = '[]'::jsonb,
				    status = $4, updated_at = now()
				WHERE id = $1`,
				existingID, iv.DurationSeconds, iv.ExpiresAt, interview.StatusPending,
			)
			return pgerror.Classify(err)

		case pgerror.IsNotFound(pgerror.Classify(err)):
			_, err := tx.Exec(ctx, `
				INSERT INTO interviews (id, job_opening_id, duration_seconds, expires_at, questions, status)
				VALUES ($1, $2, $3, $4, '[]'::jsonb, $5)`,
				iv.ID, iv.JobOpeningID, iv.DurationSeconds, iv.ExpiresAt, interview.StatusPending,
			)
			err = pgerror.Classify(err)
			if pgerror.IsConflict(err) {
				return ErrInterviewExists
			}
			return err

		default:
			return pgerror.Classify(err)
		}
	})
	if err != nil {
		return interview.Interview{}, err
	}
	return out, nil
}

func (r *PostgresInterviewRepository) GetByID(ctx context.Context, id uuid.UUID) (interview.Interview, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+interviewColumns+` FROM interviews WHERE id = $1`, id)
	return scanInterview(row)
}

func (r *PostgresInterviewRepository) ListByOpening(ctx context.Context, openingID uuid.UUID) ([]interview.Interview, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+interviewColumns+` FROM interviews
		 WHERE job_opening_id = $1 ORDER BY created_at DESC`, openingID)
	if err != nil {
		return nil, pgerror.Classify(err)
	}
	defer rows.Close()

	out := make([]interview.Interview, 0)
	for rows.Next() {
		iv, err := scanInterview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, iv)
	}
	if err := rows.Err(); err != nil {
		return nil, pgerror.Classify(err)
	}
	return out, nil
}

func (r *PostgresInterviewRepository) SetQuestions(ctx context.Context, id uuid.UUID, questions []interview.Question) error {
	b, err := json.Marshal(questions)
	if err != nil {
		return err
	}
	n, err := r.db.Exec(ctx, `
		UPDATE interviews
		SET questions = $2, status = $3, updated_at = now()
		WHERE id = $1`,
		id, b, interview.StatusReady,
	)
	if err != nil {
		return pgerror.Classify(err)
	}
	if n == 0 {
		return ErrInterviewNotFound
	}
	return nil
}

func (r *PostgresInterviewRepository) MarkFailed(ctx context.Context, id uuid.UUID) error {
	n, err := r.db.Exec(ctx,
		`UPDATE interviews SET status = $2, updated_at = now() WHERE id = $1`,
		id, interview.StatusFailed)
	if err != nil {
		return pgerror.Classify(err)
	}
	if n == 0 {
		return ErrInterviewNotFound
	}
	return nil
}

func scanInterview(s scanner) (interview.Interview, error) {
	var iv interview.Interview
	var questions []byte
	var expiresAt time.Time
	if err := s.Scan(
		&iv.ID, &iv.JobOpeningID, &iv.DurationSeconds, &expiresAt, &questions,
		&iv.Status, &iv.CreatedAt, &iv.UpdatedAt,
	); err != nil {
		err = pgerror.Classify(err)
		if pgerror.IsNotFound(err) {
			return interview.Interview{}, ErrInterviewNotFound
		}
		return interview.Interview{}, err
	}
	iv.ExpiresAt = expiresAt
	iv.Questions = []interview.Question{}
	if len(questions) > 0 {
		if err := json.Unmarshal(questions, &iv.Questions); err != nil {
			return interview.Interview{}, err
		}
	}
	return iv, nil
}
