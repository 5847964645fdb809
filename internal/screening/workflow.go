package screening

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hireflow/internal/domain/applicant"
	"hireflow/internal/repository"
	"hireflow/internal/workflow"
)

// Notifier receives the terminal outcome of a screening run. The WebSocket
// hub implements it; nil disables notification.
type Notifier interface {
	ApplicantScreened(jobOpeningID, applicantID uuid.UUID, status applicant.Status)
}

// Payload is the trigger event for a screening run, written when the
// resume is submitted and replayed verbatim on every attempt.
type Payload struct {
	File           string    `json:"file"`
	JobTitle       string    `json:"jobTitle"`
	JobDescription string    `json:"jobDescription"`
	UserID         uuid.UUID `json:"userId"`
	JobOpeningID   uuid.UUID `json:"jobOpeningId"`
}

// checkpoint carries step output across suspension points. A field set
// here means the step that produces it already ran and must not run again.
type checkpoint struct {
	ResumeText string              `json:"resumeText,omitempty"`
	Feedback   *applicant.Feedback `json:"feedback,omitempty"`
}

// Workflow drives one resume through extract, score, persist. Each step
// saves its output before the next begins, so a crashed worker resumes
// where it stopped instead of re-invoking the model.
type Workflow struct {
	runs     repository.WorkflowRunRepository
	analyzer *Analyzer
	decider  *Decider
	notifier Notifier
	logger   *zap.Logger
}

func NewWorkflow(runs repository.WorkflowRunRepository, analyzer *Analyzer, decider *Decider, notifier Notifier, logger *zap.Logger) *Workflow {
	return &Workflow{
		runs:     runs,
		analyzer: analyzer,
		decider:  decider,
		notifier: notifier,
		logger:   logger,
	}
}

func (w *Workflow) Kind() repository.RunKind { return repository.RunKindResumeScreening }

func (w *Workflow) Run(ctx context.Context, run repository.WorkflowRun) error {
	var p Payload
	if err := json.Unmarshal(run.Payload, &p); err != nil {
		return workflow.Permanent(fmt.Errorf("decode screening payload: %w", err))
	}

	var cp checkpoint
	if len(run.Checkpoint) > 0 {
		if err := json.Unmarshal(run.Checkpoint, &cp); err != nil {
			return workflow.Permanent(fmt.Errorf("decode screening checkpoint: %w", err))
		}
	}

	if cp.ResumeText == "" {
		if run.State == repository.RunStatePending {
			if err := w.save(ctx, run.ID, repository.RunStateExtracting, cp); err != nil {
				return err
			}
		}
		text, err := ExtractText(p.File)
		if err != nil {
			return workflow.Permanent(err)
		}
		cp.ResumeText = text
		if err := w.save(ctx, run.ID, repository.RunStateScoring, cp); err != nil {
			return err
		}
	}

	if cp.Feedback == nil {
		fb, err := w.analyzer.Analyze(ctx, cp.ResumeText, p.JobTitle, p.JobDescription)
		if err != nil {
			return err
		}
		cp.Feedback = fb
		if err := w.save(ctx, run.ID, repository.RunStatePersisting, cp); err != nil {
			return err
		}
	}

	res, err := w.decider.Persist(ctx, run.ID, p.JobOpeningID, p.UserID, cp.ResumeText, cp.Feedback)
	if err != nil {
		return err
	}

	if w.notifier != nil {
		w.notifier.ApplicantScreened(p.JobOpeningID, res.ApplicantID, res.Status)
	}
	return nil
}

func (w *Workflow) save(ctx context.Context, runID uuid.UUID, state repository.RunState, cp checkpoint) error {
	b, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("marshal screening checkpoint: %w", err)
	}
	return w.runs.SaveCheckpoint(ctx, runID, state, b)
}
