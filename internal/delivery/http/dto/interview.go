package dto

import (
	"time"

	"github.com/google/uuid"

	"hireflow/internal/domain/applicant"
	"hireflow/internal/domain/interview"
)

type GenerateQuestionsRequest struct {
	JobOpeningID string     `json:"jobOpeningId"`
	Duration     int        `json:"duration"`
	ExpiresAt    *time.Time `json:"expiresAt"`
}

type InterviewResponse struct {
	ID              uuid.UUID            `json:"id"`
	JobOpeningID    uuid.UUID            `json:"jobOpeningId"`
	DurationSeconds int                  `json:"durationSeconds"`
	ExpiresAt       time.Time            `json:"expiresAt"`
	Questions       []interview.Question `json:"questions"`
	Status          string               `json:"status"`
	Generated       bool                 `json:"generated"`
	CreatedAt       time.Time            `json:"createdAt"`
}

func FromInterview(iv interview.Interview) InterviewResponse {
	questions := iv.Questions
	if questions == nil {
		questions = []interview.Question{}
	}
	return InterviewResponse{
		ID:              iv.ID,
		JobOpeningID:    iv.JobOpeningID,
		DurationSeconds: iv.DurationSeconds,
		ExpiresAt:       iv.ExpiresAt,
		Questions:       questions,
		Status:          string(iv.Status),
		Generated:       iv.Generated(),
		CreatedAt:       iv.CreatedAt,
	}
}

func FromInterviews(ivs []interview.Interview) []InterviewResponse {
	out := make([]InterviewResponse, 0, len(ivs))
	for _, iv := range ivs {
		out = append(out, FromInterview(iv))
	}
	return out
}

type ApplicantResponse struct {
	ID           uuid.UUID           `json:"id"`
	JobOpeningID uuid.UUID           `json:"jobOpeningId"`
	UserID       uuid.UUID           `json:"userId"`
	Status       string              `json:"status"`
	Feedback     *applicant.Feedback `json:"feedback,omitempty"`
	CreatedAt    time.Time           `json:"createdAt"`
}

func FromApplicant(a applicant.Applicant) ApplicantResponse {
	return ApplicantResponse{
		ID:           a.ID,
		JobOpeningID: a.JobOpeningID,
		UserID:       a.UserID,
		Status:       string(a.Status),
		Feedback:     a.Feedback,
		CreatedAt:    a.CreatedAt,
	}
}

func FromApplicants(aps []applicant.Applicant) []ApplicantResponse {
	out := make([]ApplicantResponse, 0, len(aps))
	for _, a := range aps {
		out = append(out, FromApplicant(a))
	}
	return out
}
