package applicant

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusSelected Status = "SELECTED"
	StatusRejected Status = "REJECTED"
)

const (
	TipGood    = "good"
	TipImprove = "improve"
)

type Tip struct {
	Type        string `json:"type" validate:"required,oneof=good improve"`
	Tip         string `json:"tip" validate:"required"`
	Explanation string `json:"explanation,omitempty"`
}

type FeedbackSection struct {
	Score float64 `json:"score" validate:"gte=0,lte=100"`
	Tips  []Tip   `json:"tips" validate:"required,min=1,dive"`
}

// Feedback is the structured evaluation written by the scoring engine.
// OverallScore is a pointer: the model may omit it, and an absent score
// means "reject", not "error".
type Feedback struct {
	OverallScore *float64        `json:"overallScore" validate:"omitempty,gte=0,lte=100"`
	ATS          FeedbackSection `json:"ATS" validate:"required"`
	ToneAndStyle FeedbackSection `json:"toneAndStyle" validate:"required"`
	Content      FeedbackSection `json:"content" validate:"required"`
	Structure    FeedbackSection `json:"structure" validate:"required"`
	Skills       FeedbackSection `json:"skills" validate:"required"`
}

// Applicant is one submission against one opening. Status moves
// PENDING -> SELECTED or PENDING -> REJECTED exactly once, decided by the
// overall score threshold.
type Applicant struct {
	ID           uuid.UUID
	JobOpeningID uuid.UUID
	UserID       uuid.UUID
	ResumeText   string
	Feedback     *Feedback
	Status       Status
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ShortlistEntry links a SELECTED applicant to interview scheduling for an
// opening. Created exactly when the applicant passes the threshold.
type ShortlistEntry struct {
	ID             uuid.UUID
	JobApplicantID uuid.UUID
	JobOpeningID   uuid.UUID
	Status         Status
	CreatedAt      time.Time
}
