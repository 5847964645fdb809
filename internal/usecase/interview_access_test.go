package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"hireflow/internal/domain/applicant"
	"hireflow/internal/domain/interview"
	"hireflow/internal/domain/job"
)

func TestGetForApplicantRequiresShortlist(t *testing.T) {
	openingID := uuid.New()
	userID := uuid.New()
	iv := &interview.Interview{ID: uuid.New(), JobOpeningID: openingID, Status: interview.StatusReady}

	ap := applicant.Applicant{ID: uuid.New(), JobOpeningID: openingID, UserID: userID, Status: applicant.StatusSelected}

	tests := []struct {
		name           string
		applicants     map[uuid.UUID]applicant.Applicant
		shortlistCount int
		wantErr        error
	}{
		{
			name:           "shortlisted applicant sees the interview",
			applicants:     map[uuid.UUID]applicant.Applicant{ap.ID: ap},
			shortlistCount: 1,
			wantErr:        nil,
		},
		{
			name:           "applicant without shortlist entry is unauthorized",
			applicants:     map[uuid.UUID]applicant.Applicant{ap.ID: ap},
			shortlistCount: 0,
			wantErr:        ErrUnauthorized,
		},
		{
			name:       "user who never applied is unauthorized",
			applicants: map[uuid.UUID]applicant.Applicant{},
			wantErr:    ErrUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			applicants := &stubApplicantRepo{
				applicants:     tt.applicants,
				shortlistCount: map[uuid.UUID]int{ap.ID: tt.shortlistCount},
			}
			openings := &mockOpeningRepo{openings: map[uuid.UUID]job.Opening{}}
			u := newTestInterviewUsecase(t, openings, &mockInterviewRepo{existing: iv}, applicants, &stubRunRepo{}, &nopCache{})

			got, err := u.GetForApplicant(context.Background(), userID, iv.ID)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && got.ID != iv.ID {
				t.Errorf("interview id = %s, want %s", got.ID, iv.ID)
			}
		})
	}
}

func TestGetForApplicantUnknownInterview(t *testing.T) {
	u := newTestInterviewUsecase(t,
		&mockOpeningRepo{openings: map[uuid.UUID]job.Opening{}},
		&mockInterviewRepo{},
		&stubApplicantRepo{},
		&stubRunRepo{},
		&nopCache{},
	)

	_, err := u.GetForApplicant(context.Background(), uuid.New(), uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestListApplicantsChecksOwnership(t *testing.T) {
	recruiterID := uuid.New()
	opening := job.Opening{ID: uuid.New(), PostedBy: recruiterID}
	openings := &mockOpeningRepo{openings: map[uuid.UUID]job.Opening{opening.ID: opening}}
	ap := applicant.Applicant{ID: uuid.New(), JobOpeningID: opening.ID, Status: applicant.StatusSelected}
	applicants := &stubApplicantRepo{applicants: map[uuid.UUID]applicant.Applicant{ap.ID: ap}}

	u := newTestInterviewUsecase(t, openings, &mockInterviewRepo{}, applicants, &stubRunRepo{}, &nopCache{})

	got, err := u.ListApplicants(context.Background(), recruiterID, opening.ID)
	if err != nil {
		t.Fatalf("ListApplicants: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("applicants = %d, want 1", len(got))
	}

	if _, err := u.ListApplicants(context.Background(), uuid.New(), opening.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("foreign recruiter err = %v, want ErrForbidden", err)
	}
}
