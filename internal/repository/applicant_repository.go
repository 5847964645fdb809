package repository

import (
	"context"
	"encoding/json"
	"errors"

	"hireflow/internal/database"
	"hireflow/internal/database/pgerror"
	"hireflow/internal/domain/applicant"

	"github.com/google/uuid"
)

var ErrApplicantNotFound = errors.New("applicant not found")

// ApplicantRepository persists submissions and their shortlist links. The
// Tx variants exist so the screening decision step can run its writes plus
// the workflow checkpoint inside one transaction.
type ApplicantRepository interface {
	CreateTx(ctx context.Context, tx database.Tx, a applicant.Applicant) error
	OverallScoreTx(ctx context.Context, tx database.Tx, id uuid.UUID) (*float64, error)
	UpdateStatusTx(ctx context.Context, tx database.Tx, id uuid.UUID, status applicant.Status) error
	CreateShortlistTx(ctx context.Context, tx database.Tx, e applicant.ShortlistEntry) error

	GetByID(ctx context.Context, id uuid.UUID) (applicant.Applicant, error)
	ListByOpening(ctx context.Context, openingID uuid.UUID) ([]applicant.Applicant, error)
	FindByOpeningAndUser(ctx context.Context, openingID, userID uuid.UUID) (applicant.Applicant, error)
	ShortlistCountByApplicant(ctx context.Context, applicantID uuid.UUID) (int, error)
}

type PostgresApplicantRepository struct {
	db database.DB
}

func NewPostgresApplicantRepository(db database.DB) *PostgresApplicantRepository {
	return &PostgresApplicantRepository{db: db}
}

func (r *PostgresApplicantRepository) CreateTx(ctx context.Context, tx database.Tx, a applicant.Applicant) error {
	var feedback []byte
	if a.Feedback != nil {
		b, err := json.Marshal(a.Feedback)
		if err != nil {
			return err
		}
		feedback = b
	}

	_, err := tx.Exec(ctx, `
		INSERT INTO job_applicants (id, job_opening_id, user_id, resume_text, feedback, status)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		a.ID, a.JobOpeningID, a.UserID, a.ResumeText, feedback, a.Status,
	)
	return pgerror.Classify(err)
}

// OverallScoreTx reads the stored overall score back out of the feedback
// document, which is the value the routing decision is made on.
func (r *PostgresApplicantRepository) OverallScoreTx(ctx context.Context, tx database.Tx, id uuid.UUID) (*float64, error) {
	var score *float64
	err := tx.QueryRow(ctx,
		`SELECT (feedback->>'overallScore')::float8 FROM job_applicants WHERE id = $1`, id,
	).Scan(&score)
	if err != nil {
		err = pgerror.Classify(err)
		if pgerror.IsNotFound(err) {
			return nil, ErrApplicantNotFound
		}
		return nil, err
	}
	return score, nil
}

func (r *PostgresApplicantRepository) UpdateStatusTx(ctx context.Context, tx database.Tx, id uuid.UUID, status applicant.Status) error {
	n, err := tx.Exec(ctx,
		`UPDATE job_applicants SET status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return pgerror.Classify(err)
	}
	if n == 0 {
		return ErrApplicantNotFound
	}
	return nil
}

func (r *PostgresApplicantRepository) CreateShortlistTx(ctx context.Context, tx database.Tx, e applicant.ShortlistEntry) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO job_applicant_interviews (id, job_applicant_id, job_opening_id, status)
		VALUES ($1, $2, $3, $4)`,
		e.ID, e.JobApplicantID, e.JobOpeningID, e.Status,
	)
	return pgerror.Classify(err)
}

const applicantColumns = `id, job_opening_id, user_id, resume_text, feedback, status, created_at, updated_at`

func (r *PostgresApplicantRepository) GetByID(ctx context.Context, id uuid.UUID) (applicant.Applicant, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+applicantColumns+` FROM job_applicants WHERE id = $1`, id)
	return scanApplicant(row)
}

func (r *PostgresApplicantRepository) ListByOpening(ctx context.Context, openingID uuid.UUID) ([]applicant.Applicant, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+applicantColumns+` FROM job_applicants
		 WHERE job_opening_id = $1 ORDER BY created_at DESC`, openingID)
	if err != nil {
		return nil, pgerror.Classify(err)
	}
	defer rows.Close()

	out := make([]applicant.Applicant, 0)
	for rows.Next() {
		a, err := scanApplicant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, pgerror.Classify(err)
	}
	return out, nil
}

func (r *PostgresApplicantRepository) FindByOpeningAndUser(ctx context.Context, openingID, userID uuid.UUID) (applicant.Applicant, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+applicantColumns+` FROM job_applicants
		 WHERE job_opening_id = $1 AND user_id = $2
		 ORDER BY created_at DESC LIMIT 1`, openingID, userID)
	return scanApplicant(row)
}

func (r *PostgresApplicantRepository) ShortlistCountByApplicant(ctx context.Context, applicantID uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM job_applicant_interviews WHERE job_applicant_id = $1`, applicantID,
	).Scan(&n)
	if err != nil {
		return 0, pgerror.Classify(err)
	}
	return n, nil
}

func scanApplicant(s scanner) (applicant.Applicant, error) {
	var a applicant.Applicant
	var feedback []byte
	if err := s.Scan(
		&a.ID, &a.JobOpeningID, &a.UserID, &a.ResumeText, &feedback,
		&a.Status, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		err = pgerror.Classify(err)
		if pgerror.IsNotFound(err) {
			return applicant.Applicant{}, ErrApplicantNotFound
		}
		return applicant.Applicant{}, err
	}
	if len(feedback) > 0 {
		var f applicant.Feedback
		if err := json.Unmarshal(feedback, &f); err != nil {
			return applicant.Applicant{}, err
		}
		a.Feedback = &f
	}
	return a, nil
}
