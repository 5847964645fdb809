package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hireflow/internal/database"
	"hireflow/internal/domain/applicant"
	"hireflow/internal/domain/job"
	"hireflow/internal/repository"
	"hireflow/internal/screening"
)

type stubRunRepo struct {
	created []repository.WorkflowRun
}

func (s *stubRunRepo) Create(_ context.Context, run repository.WorkflowRun) error {
	s.created = append(s.created, run)
	return nil
}

func (s *stubRunRepo) ClaimNext(context.Context) (repository.WorkflowRun, error) {
	return repository.WorkflowRun{}, repository.ErrRunNotFound
}

func (s *stubRunRepo) SaveCheckpoint(context.Context, uuid.UUID, repository.RunState, json.RawMessage) error {
	return nil
}

func (s *stubRunRepo) SaveCheckpointTx(context.Context, database.Tx, uuid.UUID, repository.RunState, json.RawMessage) error {
	return nil
}

func (s *stubRunRepo) Release(context.Context, uuid.UUID, repository.RunState, int, string) error {
	return nil
}

func (s *stubRunRepo) Retry(context.Context, uuid.UUID, int, string) error { return nil }

func (s *stubRunRepo) ReclaimStale(context.Context, time.Duration) (int64, error) { return 0, nil }

type stubApplicantRepo struct {
	applicants     map[uuid.UUID]applicant.Applicant
	shortlistCount map[uuid.UUID]int
}

func (s *stubApplicantRepo) CreateTx(context.Context, database.Tx, applicant.Applicant) error {
	return nil
}

func (s *stubApplicantRepo) OverallScoreTx(context.Context, database.Tx, uuid.UUID) (*float64, error) {
	return nil, nil
}

func (s *stubApplicantRepo) UpdateStatusTx(context.Context, database.Tx, uuid.UUID, applicant.Status) error {
	return nil
}

func (s *stubApplicantRepo) CreateShortlistTx(context.Context, database.Tx, applicant.ShortlistEntry) error {
	return nil
}

func (s *stubApplicantRepo) GetByID(_ context.Context, id uuid.UUID) (applicant.Applicant, error) {
	a, ok := s.applicants[id]
	if !ok {
		return applicant.Applicant{}, repository.ErrApplicantNotFound
	}
	return a, nil
}

func (s *stubApplicantRepo) ListByOpening(_ context.Context, openingID uuid.UUID) ([]applicant.Applicant, error) {
	var out []applicant.Applicant
	for _, a := range s.applicants {
		if a.JobOpeningID == openingID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *stubApplicantRepo) FindByOpeningAndUser(_ context.Context, openingID, userID uuid.UUID) (applicant.Applicant, error) {
	for _, a := range s.applicants {
		if a.JobOpeningID == openingID && a.UserID == userID {
			return a, nil
		}
	}
	return applicant.Applicant{}, repository.ErrApplicantNotFound
}

func (s *stubApplicantRepo) ShortlistCountByApplicant(_ context.Context, id uuid.UUID) (int, error) {
	return s.shortlistCount[id], nil
}

func validAnalyzeInput(openingID uuid.UUID) AnalyzeResumeInput {
	return AnalyzeResumeInput{
		File:           "JVBERi0xLjQK",
		JobTitle:       "Backend Engineer",
		JobDescription: "Go services",
		UserID:         uuid.New(),
		JobOpeningID:   openingID,
	}
}

func TestAnalyzeEnqueuesScreeningRun(t *testing.T) {
	opening := job.Opening{ID: uuid.New(), Title: "Backend Engineer"}
	openings := &mockOpeningRepo{openings: map[uuid.UUID]job.Opening{opening.ID: opening}}
	runs := &stubRunRepo{}
	u := NewResumeUsecase(openings, runs, 4, zap.NewNop())

	in := validAnalyzeInput(opening.ID)
	runID, err := u.Analyze(context.Background(), in)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if runID == uuid.Nil {
		t.Fatal("missing run id")
	}
	if len(runs.created) != 1 {
		t.Fatalf("enqueued %d runs, want 1", len(runs.created))
	}
	run := runs.created[0]
	if run.Kind != repository.RunKindResumeScreening {
		t.Errorf("kind = %s", run.Kind)
	}
	if run.MaxAttempts != 4 {
		t.Errorf("max attempts = %d, want 4", run.MaxAttempts)
	}

	var p screening.Payload
	if err := json.Unmarshal(run.Payload, &p); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if p.JobOpeningID != opening.ID || p.UserID != in.UserID || p.File != in.File {
		t.Errorf("payload = %+v, does not round-trip the input", p)
	}
}

func TestAnalyzeRejectsMissingFields(t *testing.T) {
	opening := job.Opening{ID: uuid.New()}
	openings := &mockOpeningRepo{openings: map[uuid.UUID]job.Opening{opening.ID: opening}}
	u := NewResumeUsecase(openings, &stubRunRepo{}, 4, zap.NewNop())

	mutations := map[string]func(*AnalyzeResumeInput){
		"file":           func(in *AnalyzeResumeInput) { in.File = " " },
		"jobTitle":       func(in *AnalyzeResumeInput) { in.JobTitle = "" },
		"jobDescription": func(in *AnalyzeResumeInput) { in.JobDescription = "" },
		"userId":         func(in *AnalyzeResumeInput) { in.UserID = uuid.Nil },
		"jobOpeningId":   func(in *AnalyzeResumeInput) { in.JobOpeningID = uuid.Nil },
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			in := validAnalyzeInput(opening.ID)
			mutate(&in)
			if _, err := u.Analyze(context.Background(), in); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestAnalyzeUnknownOpening(t *testing.T) {
	openings := &mockOpeningRepo{openings: map[uuid.UUID]job.Opening{}}
	runs := &stubRunRepo{}
	u := NewResumeUsecase(openings, runs, 4, zap.NewNop())

	_, err := u.Analyze(context.Background(), validAnalyzeInput(uuid.New()))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if len(runs.created) != 0 {
		t.Error("unknown opening must not enqueue a run")
	}
}
