package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hireflow/internal/domain/applicant"
	"hireflow/internal/domain/interview"
	"hireflow/internal/interviewgen"
	"hireflow/internal/repository"
)

const (
	defaultInterviewExpiry = 48 * time.Hour
	generationLockTTL      = 30 * time.Second
)

type GenerateQuestionsInput struct {
	JobOpeningID    uuid.UUID
	DurationMinutes int
	ExpiresAt       *time.Time
}

type InterviewUsecase interface {
	// GenerateQuestions creates the empty interview row synchronously and
	// enqueues generation. ErrAlreadyExists when a live interview is
	// already attached to the opening.
	GenerateQuestions(ctx context.Context, recruiterID uuid.UUID, in GenerateQuestionsInput) (interview.Interview, error)
	GetForRecruiter(ctx context.Context, recruiterID, interviewID uuid.UUID) (interview.Interview, error)
	ListByOpening(ctx context.Context, recruiterID, openingID uuid.UUID) ([]interview.Interview, error)
	// GetForApplicant returns the interview only when the caller was
	// shortlisted for its opening.
	GetForApplicant(ctx context.Context, userID, interviewID uuid.UUID) (interview.Interview, error)
	ListApplicants(ctx context.Context, recruiterID, openingID uuid.UUID) ([]applicant.Applicant, error)
}

type Interview struct {
	openings    repository.JobOpeningRepository
	interviews  repository.InterviewRepository
	applicants  repository.ApplicantRepository
	runs        repository.WorkflowRunRepository
	cache       ListingCache
	maxAttempts int
	logger      *zap.Logger
}

func NewInterviewUsecase(
	openings repository.JobOpeningRepository,
	interviews repository.InterviewRepository,
	applicants repository.ApplicantRepository,
	runs repository.WorkflowRunRepository,
	cache ListingCache,
	maxAttempts int,
	logger *zap.Logger,
) *Interview {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Interview{
		openings:    openings,
		interviews:  interviews,
		applicants:  applicants,
		runs:        runs,
		cache:       cache,
		maxAttempts: maxAttempts,
		logger:      logger,
	}
}

func (u *Interview) GenerateQuestions(ctx context.Context, recruiterID uuid.UUID, in GenerateQuestionsInput) (interview.Interview, error) {
	if in.DurationMinutes < 1 {
		return interview.Interview{}, ErrInvalidInput
	}

	opening, err := u.openings.GetByID(ctx, in.JobOpeningID)
	if err != nil {
		if errors.Is(err, repository.ErrJobOpeningNotFound) {
			return interview.Interview{}, ErrNotFound
		}
		u.logger.Error("get job opening", zap.Error(err))
		return interview.Interview{}, ErrInternal
	}
	if opening.PostedBy != recruiterID {
		return interview.Interview{}, ErrForbidden
	}

	// Short-circuit racing requests before the transactional gate. The
	// unique constraint on the interview table stays authoritative, so the
	// lock is dropped again as soon as this request settles; holding it for
	// the full TTL would turn a failed create into a spurious conflict.
	lockKey := "interviews:lock:" + in.JobOpeningID.String()
	if ok, err := u.cache.SetIfNotExists(ctx, lockKey, recruiterID.String(), generationLockTTL); err == nil && !ok {
		return interview.Interview{}, ErrAlreadyExists
	}
	defer func() {
		if err := u.cache.Delete(ctx, lockKey); err != nil {
			u.logger.Warn("release generation lock", zap.String("key", lockKey), zap.Error(err))
		}
	}()

	expiresAt := time.Now().UTC().Add(defaultInterviewExpiry)
	if in.ExpiresAt != nil {
		expiresAt = in.ExpiresAt.UTC()
	}

	iv, err := u.interviews.CreateOrReuse(ctx, interview.Interview{
		ID:              uuid.New(),
		JobOpeningID:    in.JobOpeningID,
		DurationSeconds: in.DurationMinutes * 60,
		ExpiresAt:       expiresAt,
		Status:          interview.StatusPending,
	})
	if err != nil {
		if errors.Is(err, repository.ErrInterviewExists) {
			return interview.Interview{}, ErrAlreadyExists
		}
		u.logger.Error("create interview", zap.Error(err))
		return interview.Interview{}, ErrInternal
	}

	payload, err := json.Marshal(interviewgen.Payload{
		InterviewID:     iv.ID,
		JobOpeningID:    opening.ID,
		Title:           opening.Title,
		About:           opening.About,
		RequiredSkills:  opening.RequiredSkills,
		ExperienceLevel: opening.ExperienceLevel,
		JobType:         string(opening.Type),
		Duration:        in.DurationMinutes,
	})
	if err != nil {
		return interview.Interview{}, ErrInternal
	}

	run := repository.WorkflowRun{
		ID:          uuid.New(),
		Kind:        repository.RunKindInterviewGeneration,
		Payload:     payload,
		MaxAttempts: u.maxAttempts,
	}
	if err := u.runs.Create(ctx, run); err != nil {
		u.logger.Error("enqueue generation run", zap.Error(err))
		return interview.Interview{}, ErrInternal
	}

	u.logger.Info("generation run enqueued",
		zap.String("run_id", run.ID.String()),
		zap.String("interview_id", iv.ID.String()),
	)
	return iv, nil
}

func (u *Interview) GetForRecruiter(ctx context.Context, recruiterID, interviewID uuid.UUID) (interview.Interview, error) {
	iv, err := u.getInterview(ctx, interviewID)
	if err != nil {
		return interview.Interview{}, err
	}
	if err := u.checkOwnership(ctx, recruiterID, iv.JobOpeningID); err != nil {
		return interview.Interview{}, err
	}
	return iv, nil
}

func (u *Interview) ListByOpening(ctx context.Context, recruiterID, openingID uuid.UUID) ([]interview.Interview, error) {
	if err := u.checkOwnership(ctx, recruiterID, openingID); err != nil {
		return nil, err
	}
	ivs, err := u.interviews.ListByOpening(ctx, openingID)
	if err != nil {
		u.logger.Error("list interviews", zap.Error(err))
		return nil, ErrInternal
	}
	return ivs, nil
}

func (u *Interview) GetForApplicant(ctx context.Context, userID, interviewID uuid.UUID) (interview.Interview, error) {
	iv, err := u.getInterview(ctx, interviewID)
	if err != nil {
		return interview.Interview{}, err
	}

	ap, err := u.applicants.FindByOpeningAndUser(ctx, iv.JobOpeningID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrApplicantNotFound) {
			return interview.Interview{}, ErrUnauthorized
		}
		u.logger.Error("find applicant", zap.Error(err))
		return interview.Interview{}, ErrInternal
	}

	n, err := u.applicants.ShortlistCountByApplicant(ctx, ap.ID)
	if err != nil {
		u.logger.Error("count shortlist entries", zap.Error(err))
		return interview.Interview{}, ErrInternal
	}
	if n == 0 {
		return interview.Interview{}, ErrUnauthorized
	}
	return iv, nil
}

func (u *Interview) ListApplicants(ctx context.Context, recruiterID, openingID uuid.UUID) ([]applicant.Applicant, error) {
	if err := u.checkOwnership(ctx, recruiterID, openingID); err != nil {
		return nil, err
	}
	aps, err := u.applicants.ListByOpening(ctx, openingID)
	if err != nil {
		u.logger.Error("list applicants", zap.Error(err))
		return nil, ErrInternal
	}
	return aps, nil
}

func (u *Interview) getInterview(ctx context.Context, id uuid.UUID) (interview.Interview, error) {
	iv, err := u.interviews.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrInterviewNotFound) {
			return interview.Interview{}, ErrNotFound
		}
		u.logger.Error("get interview", zap.Error(err))
		return interview.Interview{}, ErrInternal
	}
	return iv, nil
}

func (u *Interview) checkOwnership(ctx context.Context, recruiterID, openingID uuid.UUID) error {
	opening, err := u.openings.GetByID(ctx, openingID)
	if err != nil {
		if errors.Is(err, repository.ErrJobOpeningNotFound) {
			return ErrNotFound
		}
		u.logger.Error("get job opening", zap.Error(err))
		return ErrInternal
	}
	if opening.PostedBy != recruiterID {
		return ErrForbidden
	}
	return nil
}
