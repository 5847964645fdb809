package interview

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	// StatusPending marks a row created synchronously whose questions are
	// still being generated. Polling clients treat empty questions as the
	// in-progress signal.
	StatusPending Status = "PENDING"
	StatusReady   Status = "READY"
	StatusFailed  Status = "FAILED"
)

const (
	CategoryTechnical      = "technical"
	CategoryBehavioral     = "behavioral"
	CategoryProblemSolving = "problem-solving"
	CategoryScenario       = "scenario"
	CategoryMotivation     = "motivation"
)

// Question is one generated interview question, embedded in the
// Interview row's questions array.
type Question struct {
	Question         string `json:"question" validate:"required,min=10"`
	Category         string `json:"category" validate:"required,oneof=technical behavioral problem-solving scenario motivation"`
	FocusArea        string `json:"focusArea" validate:"required,min=1"`
	ExpectedDuration string `json:"expectedDuration,omitempty"`
}

type Interview struct {
	ID              uuid.UUID
	JobOpeningID    uuid.UUID
	DurationSeconds int
	ExpiresAt       time.Time
	Questions       []Question
	Status          Status
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Generated reports whether the async pipeline has populated questions.
func (i Interview) Generated() bool {
	return len(i.Questions) > 0
}
