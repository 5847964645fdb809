package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hireflow/internal/repository"
	"hireflow/internal/screening"
)

type AnalyzeResumeInput struct {
	File           string
	JobTitle       string
	JobDescription string
	UserID         uuid.UUID
	JobOpeningID   uuid.UUID
}

// ResumeUsecase accepts a submission and hands it to the async screening
// pipeline. The caller gets a run id back immediately; scoring happens in
// the worker.
type ResumeUsecase interface {
	Analyze(ctx context.Context, in AnalyzeResumeInput) (uuid.UUID, error)
}

type Resume struct {
	openings    repository.JobOpeningRepository
	runs        repository.WorkflowRunRepository
	maxAttempts int
	logger      *zap.Logger
}

func NewResumeUsecase(openings repository.JobOpeningRepository, runs repository.WorkflowRunRepository, maxAttempts int, logger *zap.Logger) *Resume {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Resume{openings: openings, runs: runs, maxAttempts: maxAttempts, logger: logger}
}

func (u *Resume) Analyze(ctx context.Context, in AnalyzeResumeInput) (uuid.UUID, error) {
	if strings.TrimSpace(in.File) == "" ||
		strings.TrimSpace(in.JobTitle) == "" ||
		strings.TrimSpace(in.JobDescription) == "" ||
		in.UserID == uuid.Nil || in.JobOpeningID == uuid.Nil {
		return uuid.Nil, ErrInvalidInput
	}

	if _, err := u.openings.GetByID(ctx, in.JobOpeningID); err != nil {
		if errors.Is(err, repository.ErrJobOpeningNotFound) {
			return uuid.Nil, ErrNotFound
		}
		u.logger.Error("check job opening", zap.Error(err))
		return uuid.Nil, ErrInternal
	}

	payload, err := json.Marshal(screening.Payload{
		File:           in.File,
		JobTitle:       in.JobTitle,
		JobDescription: in.JobDescription,
		UserID:         in.UserID,
		JobOpeningID:   in.JobOpeningID,
	})
	if err != nil {
		return uuid.Nil, ErrInternal
	}

	run := repository.WorkflowRun{
		ID:          uuid.New(),
		Kind:        repository.RunKindResumeScreening,
		Payload:     payload,
		MaxAttempts: u.maxAttempts,
	}
	if err := u.runs.Create(ctx, run); err != nil {
		u.logger.Error("enqueue screening run", zap.Error(err))
		return uuid.Nil, ErrInternal
	}

	u.logger.Info("screening run enqueued",
		zap.String("run_id", run.ID.String()),
		zap.String("job_opening_id", in.JobOpeningID.String()),
	)
	return run.ID, nil
}
