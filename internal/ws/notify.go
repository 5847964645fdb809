package ws

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"hireflow/internal/domain/applicant"
)

const (
	EventApplicantScreened        = "applicant_screened"
	EventInterviewQuestionsReady  = "interview_questions_ready"
	EventInterviewQuestionsFailed = "interview_questions_failed"
)

type Event struct {
	Type         string `json:"type"`
	JobOpeningID string `json:"jobOpeningId"`
	ApplicantID  string `json:"applicantId,omitempty"`
	InterviewID  string `json:"interviewId,omitempty"`
	Status       string `json:"status,omitempty"`
	Reason       string `json:"reason,omitempty"`
	Timestamp    string `json:"timestamp"`
}

// Sink receives serialized events. The hub satisfies it directly; the
// worker process publishes through Redis instead, since the hub lives in
// the API process.
type Sink interface {
	Broadcast(message []byte)
}

// Notifier pushes workflow outcomes to connected clients so they do not
// have to poll the interview or applicant endpoints.
type Notifier struct {
	sink Sink
}

func NewNotifier(sink Sink) *Notifier {
	return &Notifier{sink: sink}
}

func (n *Notifier) ApplicantScreened(jobOpeningID, applicantID uuid.UUID, status applicant.Status) {
	n.publish(Event{
		Type:         EventApplicantScreened,
		JobOpeningID: jobOpeningID.String(),
		ApplicantID:  applicantID.String(),
		Status:       string(status),
	})
}

func (n *Notifier) InterviewQuestionsReady(jobOpeningID, interviewID uuid.UUID) {
	n.publish(Event{
		Type:         EventInterviewQuestionsReady,
		JobOpeningID: jobOpeningID.String(),
		InterviewID:  interviewID.String(),
	})
}

func (n *Notifier) InterviewQuestionsFailed(jobOpeningID, interviewID uuid.UUID, reason string) {
	n.publish(Event{
		Type:         EventInterviewQuestionsFailed,
		JobOpeningID: jobOpeningID.String(),
		InterviewID:  interviewID.String(),
		Reason:       reason,
	})
}

func (n *Notifier) publish(evt Event) {
	if n == nil || n.sink == nil {
		return
	}
	evt.Timestamp = time.Now().UTC().Format(time.RFC3339)
	b, err := json.Marshal(evt)
	if err != nil {
		return
	}
	n.sink.Broadcast(b)
}
