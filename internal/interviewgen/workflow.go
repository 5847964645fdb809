package interviewgen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hireflow/internal/domain/interview"
	"hireflow/internal/repository"
	"hireflow/internal/workflow"
)

// Notifier receives terminal generation outcomes. The WebSocket hub
// implements it; nil disables notification.
type Notifier interface {
	InterviewQuestionsReady(jobOpeningID, interviewID uuid.UUID)
	InterviewQuestionsFailed(jobOpeningID, interviewID uuid.UUID, reason string)
}

// Payload triggers one generation run. Duration is in minutes, matching
// what the recruiter submitted.
type Payload struct {
	InterviewID     uuid.UUID `json:"interviewId"`
	JobOpeningID    uuid.UUID `json:"jobOpeningId"`
	Title           string    `json:"title"`
	About           string    `json:"about"`
	RequiredSkills  []string  `json:"requiredSkills"`
	ExperienceLevel string    `json:"experienceLevel"`
	JobType         string    `json:"jobType"`
	Duration        int       `json:"duration"`
}

type checkpoint struct {
	Questions []interview.Question `json:"questions,omitempty"`
}

// Workflow drives one interview through generate, validate, persist. The
// generated set is checkpointed before the save so a crash between the
// two never re-invokes the model.
type Workflow struct {
	runs       repository.WorkflowRunRepository
	interviews repository.InterviewRepository
	generator  *Generator
	notifier   Notifier
	logger     *zap.Logger
}

func NewWorkflow(runs repository.WorkflowRunRepository, interviews repository.InterviewRepository, generator *Generator, notifier Notifier, logger *zap.Logger) *Workflow {
	return &Workflow{
		runs:       runs,
		interviews: interviews,
		generator:  generator,
		notifier:   notifier,
		logger:     logger,
	}
}

func (w *Workflow) Kind() repository.RunKind { return repository.RunKindInterviewGeneration }

func (w *Workflow) Run(ctx context.Context, run repository.WorkflowRun) error {
	var p Payload
	if err := json.Unmarshal(run.Payload, &p); err != nil {
		return workflow.Permanent(fmt.Errorf("decode generation payload: %w", err))
	}
	if p.InterviewID == uuid.Nil {
		return workflow.Permanent(fmt.Errorf("generation payload missing interview id"))
	}

	var cp checkpoint
	if len(run.Checkpoint) > 0 {
		if err := json.Unmarshal(run.Checkpoint, &cp); err != nil {
			return workflow.Permanent(fmt.Errorf("decode generation checkpoint: %w", err))
		}
	}

	if len(cp.Questions) == 0 {
		if run.State == repository.RunStatePending {
			if err := w.runs.SaveCheckpoint(ctx, run.ID, repository.RunStateGenerating, nil); err != nil {
				return err
			}
		}
		questions, err := w.generator.Generate(ctx, JobContext{
			Title:           p.Title,
			About:           p.About,
			RequiredSkills:  p.RequiredSkills,
			ExperienceLevel: p.ExperienceLevel,
			JobType:         p.JobType,
			DurationMinutes: p.Duration,
		})
		if err != nil {
			return err
		}
		cp.Questions = questions

		b, err := json.Marshal(cp)
		if err != nil {
			return fmt.Errorf("marshal generation checkpoint: %w", err)
		}
		if err := w.runs.SaveCheckpoint(ctx, run.ID, repository.RunStatePersisting, b); err != nil {
			return err
		}
	}

	if err := w.interviews.SetQuestions(ctx, p.InterviewID, cp.Questions); err != nil {
		if errors.Is(err, repository.ErrInterviewNotFound) {
			return workflow.Permanent(err)
		}
		return err
	}

	if err := w.runs.SaveCheckpoint(ctx, run.ID, repository.RunStateDone, nil); err != nil {
		return err
	}

	if w.notifier != nil {
		w.notifier.InterviewQuestionsReady(p.JobOpeningID, p.InterviewID)
	}
	return nil
}

// OnFailure runs when the runner gives up on a generation run. The
// interview flips to FAILED so a later scheduling request can reuse the
// row instead of being blocked by the idempotency gate.
func (w *Workflow) OnFailure(ctx context.Context, run repository.WorkflowRun, cause error) {
	var p Payload
	if err := json.Unmarshal(run.Payload, &p); err != nil || p.InterviewID == uuid.Nil {
		w.logger.Error("cannot fail interview for undecodable payload", zap.String("run_id", run.ID.String()))
		return
	}

	if err := w.interviews.MarkFailed(ctx, p.InterviewID); err != nil {
		w.logger.Error("mark interview failed",
			zap.String("interview_id", p.InterviewID.String()),
			zap.Error(err),
		)
	}
	if w.notifier != nil {
		w.notifier.InterviewQuestionsFailed(p.JobOpeningID, p.InterviewID, cause.Error())
	}
}
