package screening

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hireflow/internal/database"
	"hireflow/internal/domain/applicant"
	"hireflow/internal/repository"
)

// Decide applies the selection threshold to a stored overall score. A
// missing score rejects; a score at or above the threshold selects. The
// boundary is inclusive.
func Decide(score *float64, threshold int) applicant.Status {
	if score == nil {
		return applicant.StatusRejected
	}
	if *score >= float64(threshold) {
		return applicant.StatusSelected
	}
	return applicant.StatusRejected
}

// Decider persists a scored applicant and settles their status. All writes
// of one decision, including the workflow checkpoint that marks the run
// finished, share a single transaction so the decision applies at most
// once even if the worker dies mid-step.
type Decider struct {
	db         database.DB
	applicants repository.ApplicantRepository
	runs       repository.WorkflowRunRepository
	threshold  int
	logger     *zap.Logger
}

func NewDecider(db database.DB, applicants repository.ApplicantRepository, runs repository.WorkflowRunRepository, threshold int, logger *zap.Logger) *Decider {
	return &Decider{
		db:         db,
		applicants: applicants,
		runs:       runs,
		threshold:  threshold,
		logger:     logger,
	}
}

// Result is the terminal checkpoint written alongside the decision.
type Result struct {
	ApplicantID uuid.UUID        `json:"applicantId"`
	Status      applicant.Status `json:"status"`
	Shortlisted bool             `json:"shortlisted"`
}

// Persist stores the applicant row with its feedback, reads the score back
// out of the stored document, applies the threshold, and records the
// outcome. Selected applicants get exactly one shortlist entry.
func (d *Decider) Persist(ctx context.Context, runID, openingID, userID uuid.UUID, resumeText string, fb *applicant.Feedback) (Result, error) {
	res := Result{ApplicantID: uuid.New()}

	err := database.WithinTx(ctx, d.db, func(tx database.Tx) error {
		now := time.Now().UTC()
		if err := d.applicants.CreateTx(ctx, tx, applicant.Applicant{
			ID:           res.ApplicantID,
			JobOpeningID: openingID,
			UserID:       userID,
			ResumeText:   resumeText,
			Feedback:     fb,
			Status:       applicant.StatusPending,
			CreatedAt:    now,
			UpdatedAt:    now,
		}); err != nil {
			return fmt.Errorf("create applicant: %w", err)
		}

		score, err := d.applicants.OverallScoreTx(ctx, tx, res.ApplicantID)
		if err != nil {
			return fmt.Errorf("read overall score: %w", err)
		}

		res.Status = Decide(score, d.threshold)
		if err := d.applicants.UpdateStatusTx(ctx, tx, res.ApplicantID, res.Status); err != nil {
			return fmt.Errorf("update status: %w", err)
		}

		if res.Status == applicant.StatusSelected {
			if err := d.applicants.CreateShortlistTx(ctx, tx, applicant.ShortlistEntry{
				ID:             uuid.New(),
				JobApplicantID: res.ApplicantID,
				JobOpeningID:   openingID,
				Status:         applicant.StatusPending,
				CreatedAt:      now,
			}); err != nil {
				return fmt.Errorf("create shortlist entry: %w", err)
			}
			res.Shortlisted = true
		}

		checkpoint, err := json.Marshal(res)
		if err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}
		if err := d.runs.SaveCheckpointTx(ctx, tx, runID, repository.RunStateDone, checkpoint); err != nil {
			return fmt.Errorf("finish run: %w", err)
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	d.logger.Info("screening decision persisted",
		zap.String("applicant_id", res.ApplicantID.String()),
		zap.String("status", string(res.Status)),
		zap.Bool("shortlisted", res.Shortlisted),
	)
	return res, nil
}
