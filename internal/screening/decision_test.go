package screening

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hireflow/internal/database"
	"hireflow/internal/domain/applicant"
	"hireflow/internal/repository"
)

func floatPtr(v float64) *float64 { return &v }

func TestDecide(t *testing.T) {
	tests := []struct {
		name      string
		score     *float64
		threshold int
		want      applicant.Status
	}{
		{"above threshold", floatPtr(55), 40, applicant.StatusSelected},
		{"exactly at threshold", floatPtr(40), 40, applicant.StatusSelected},
		{"just below threshold", floatPtr(39), 40, applicant.StatusRejected},
		{"zero score", floatPtr(0), 40, applicant.StatusRejected},
		{"missing score", nil, 40, applicant.StatusRejected},
		{"custom threshold", floatPtr(54), 55, applicant.StatusRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Decide(tt.score, tt.threshold); got != tt.want {
				t.Errorf("Decide(%v, %d) = %s, want %s", tt.score, tt.threshold, got, tt.want)
			}
		})
	}
}

type fakeTx struct {
	committed  bool
	rolledBack bool
}

func (f *fakeTx) Exec(context.Context, string, ...any) (int64, error)            { return 0, nil }
func (f *fakeTx) Query(context.Context, string, ...any) (database.Rows, error)   { return nil, nil }
func (f *fakeTx) QueryRow(context.Context, string, ...any) database.Row          { return nil }
func (f *fakeTx) Commit(context.Context) error                                   { f.committed = true; return nil }
func (f *fakeTx) Rollback(context.Context) error                                 { f.rolledBack = true; return nil }

type fakeDB struct {
	tx *fakeTx
}

func (f *fakeDB) Ping(context.Context) error                                   { return nil }
func (f *fakeDB) Close() error                                                 { return nil }
func (f *fakeDB) Exec(context.Context, string, ...any) (int64, error)          { return 0, nil }
func (f *fakeDB) Query(context.Context, string, ...any) (database.Rows, error) { return nil, nil }
func (f *fakeDB) QueryRow(context.Context, string, ...any) database.Row        { return nil }
func (f *fakeDB) Begin(context.Context) (database.Tx, error)                   { return f.tx, nil }
func (f *fakeDB) SQLDB() *sql.DB                                               { return nil }

type fakeApplicantRepo struct {
	score *float64

	created    []applicant.Applicant
	statuses   map[uuid.UUID]applicant.Status
	shortlists []applicant.ShortlistEntry
}

func newFakeApplicantRepo(score *float64) *fakeApplicantRepo {
	return &fakeApplicantRepo{score: score, statuses: make(map[uuid.UUID]applicant.Status)}
}

func (f *fakeApplicantRepo) CreateTx(_ context.Context, _ database.Tx, a applicant.Applicant) error {
	f.created = append(f.created, a)
	return nil
}

func (f *fakeApplicantRepo) OverallScoreTx(context.Context, database.Tx, uuid.UUID) (*float64, error) {
	return f.score, nil
}

func (f *fakeApplicantRepo) UpdateStatusTx(_ context.Context, _ database.Tx, id uuid.UUID, s applicant.Status) error {
	f.statuses[id] = s
	return nil
}

func (f *fakeApplicantRepo) CreateShortlistTx(_ context.Context, _ database.Tx, e applicant.ShortlistEntry) error {
	f.shortlists = append(f.shortlists, e)
	return nil
}

func (f *fakeApplicantRepo) GetByID(context.Context, uuid.UUID) (applicant.Applicant, error) {
	return applicant.Applicant{}, repository.ErrApplicantNotFound
}

func (f *fakeApplicantRepo) ListByOpening(context.Context, uuid.UUID) ([]applicant.Applicant, error) {
	return nil, nil
}

func (f *fakeApplicantRepo) FindByOpeningAndUser(context.Context, uuid.UUID, uuid.UUID) (applicant.Applicant, error) {
	return applicant.Applicant{}, repository.ErrApplicantNotFound
}

func (f *fakeApplicantRepo) ShortlistCountByApplicant(context.Context, uuid.UUID) (int, error) {
	return 0, nil
}

type fakeRunRepo struct {
	checkpointState repository.RunState
	checkpoint      json.RawMessage
	states          []repository.RunState
	txCheckpoints   int
}

func (f *fakeRunRepo) Create(context.Context, repository.WorkflowRun) error { return nil }

func (f *fakeRunRepo) ClaimNext(context.Context) (repository.WorkflowRun, error) {
	return repository.WorkflowRun{}, repository.ErrRunNotFound
}

func (f *fakeRunRepo) SaveCheckpoint(_ context.Context, _ uuid.UUID, state repository.RunState, cp json.RawMessage) error {
	f.checkpointState = state
	f.checkpoint = cp
	f.states = append(f.states, state)
	return nil
}

func (f *fakeRunRepo) SaveCheckpointTx(_ context.Context, _ database.Tx, _ uuid.UUID, state repository.RunState, cp json.RawMessage) error {
	f.checkpointState = state
	f.checkpoint = cp
	f.states = append(f.states, state)
	f.txCheckpoints++
	return nil
}

func (f *fakeRunRepo) Release(context.Context, uuid.UUID, repository.RunState, int, string) error {
	return nil
}

func (f *fakeRunRepo) Retry(context.Context, uuid.UUID, int, string) error { return nil }

func (f *fakeRunRepo) ReclaimStale(context.Context, time.Duration) (int64, error) { return 0, nil }

func TestDeciderSelectsAndShortlists(t *testing.T) {
	tx := &fakeTx{}
	applicants := newFakeApplicantRepo(floatPtr(55))
	runs := &fakeRunRepo{}
	d := NewDecider(&fakeDB{tx: tx}, applicants, runs, 40, zap.NewNop())

	res, err := d.Persist(context.Background(), uuid.New(), uuid.New(), uuid.New(), "resume body", &applicant.Feedback{})
	if err != nil {
		t.Fatalf("Persist: %v", err)
	}

	if res.Status != applicant.StatusSelected {
		t.Errorf("status = %s, want SELECTED", res.Status)
	}
	if !res.Shortlisted {
		t.Error("expected a shortlist entry")
	}
	if len(applicants.shortlists) != 1 {
		t.Fatalf("shortlist entries = %d, want 1", len(applicants.shortlists))
	}
	if applicants.shortlists[0].Status != applicant.StatusPending {
		t.Errorf("shortlist status = %s, want PENDING", applicants.shortlists[0].Status)
	}
	if !tx.committed {
		t.Error("transaction not committed")
	}
	if runs.checkpointState != repository.RunStateDone {
		t.Errorf("run state = %s, want DONE", runs.checkpointState)
	}
	if runs.txCheckpoints != 1 {
		t.Errorf("checkpoint written outside the decision transaction")
	}
}

func TestDeciderRejectsBelowThreshold(t *testing.T) {
	tx := &fakeTx{}
	applicants := newFakeApplicantRepo(floatPtr(39))
	runs := &fakeRunRepo{}
	d := NewDecider(&fakeDB{tx: tx}, applicants, runs, 40, zap.NewNop())

	res, err := d.Persist(context.Background(), uuid.New(), uuid.New(), uuid.New(), "resume body", &applicant.Feedback{})
	if err != nil {
		t.Fatalf("Persist: %v", err)
	}

	if res.Status != applicant.StatusRejected {
		t.Errorf("status = %s, want REJECTED", res.Status)
	}
	if len(applicants.shortlists) != 0 {
		t.Errorf("shortlist entries = %d, want 0", len(applicants.shortlists))
	}
}

func TestDeciderRejectsWhenScoreMissing(t *testing.T) {
	tx := &fakeTx{}
	applicants := newFakeApplicantRepo(nil)
	runs := &fakeRunRepo{}
	d := NewDecider(&fakeDB{tx: tx}, applicants, runs, 40, zap.NewNop())

	res, err := d.Persist(context.Background(), uuid.New(), uuid.New(), uuid.New(), "resume body", &applicant.Feedback{})
	if err != nil {
		t.Fatalf("Persist: %v", err)
	}
	if res.Status != applicant.StatusRejected {
		t.Errorf("status = %s, want REJECTED", res.Status)
	}
	if res.Shortlisted {
		t.Error("missing score must not shortlist")
	}
}
