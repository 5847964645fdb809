package screening

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hireflow/internal/ai"
	"hireflow/internal/domain/applicant"
	"hireflow/internal/repository"
	"hireflow/internal/workflow"
)

type recordingNotifier struct {
	openingID   uuid.UUID
	applicantID uuid.UUID
	status      applicant.Status
	calls       int
}

func (n *recordingNotifier) ApplicantScreened(openingID, applicantID uuid.UUID, status applicant.Status) {
	n.calls++
	n.openingID = openingID
	n.applicantID = applicantID
	n.status = status
}

func screeningPayload(t *testing.T) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(Payload{
		File:           "bm90IGEgcGRm",
		JobTitle:       "Backend Engineer",
		JobDescription: "Go services",
		UserID:         uuid.New(),
		JobOpeningID:   uuid.New(),
	})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return b
}

func newScreeningWorkflow(gen *stubGenerator, score *float64, runs *fakeRunRepo, notifier Notifier) *Workflow {
	analyzer := NewAnalyzer(gen, zap.NewNop())
	decider := NewDecider(&fakeDB{tx: &fakeTx{}}, newFakeApplicantRepo(score), runs, 40, zap.NewNop())
	return NewWorkflow(runs, analyzer, decider, notifier, zap.NewNop())
}

func TestWorkflowEntersExtractingBeforeRunningStep(t *testing.T) {
	runs := &fakeRunRepo{}
	w := newScreeningWorkflow(&stubGenerator{response: validFeedback}, floatPtr(72), runs, nil)

	err := w.Run(context.Background(), repository.WorkflowRun{
		ID:      uuid.New(),
		State:   repository.RunStatePending,
		Payload: screeningPayload(t),
	})
	if !workflow.IsPermanent(err) {
		t.Fatalf("expected permanent error for undecodable document, got %v", err)
	}

	if len(runs.states) != 1 || runs.states[0] != repository.RunStateExtracting {
		t.Errorf("states = %v, want [EXTRACTING]", runs.states)
	}
}

func TestWorkflowResumesFromCheckpointedText(t *testing.T) {
	gen := &stubGenerator{response: validFeedback}
	runs := &fakeRunRepo{}
	notifier := &recordingNotifier{}
	w := newScreeningWorkflow(gen, floatPtr(72), runs, notifier)

	err := w.Run(context.Background(), repository.WorkflowRun{
		ID:         uuid.New(),
		State:      repository.RunStateScoring,
		Payload:    screeningPayload(t),
		Checkpoint: json.RawMessage(`{"resumeText":"checkpointed resume body"}`),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !strings.Contains(gen.lastReq.Prompt, "checkpointed resume body") {
		t.Error("model prompt did not use the checkpointed text")
	}
	want := []repository.RunState{repository.RunStatePersisting, repository.RunStateDone}
	if len(runs.states) != len(want) || runs.states[0] != want[0] || runs.states[1] != want[1] {
		t.Errorf("states = %v, want %v", runs.states, want)
	}
	if notifier.calls != 1 || notifier.status != applicant.StatusSelected {
		t.Errorf("notifier calls = %d status = %s, want 1 SELECTED", notifier.calls, notifier.status)
	}
}

func TestWorkflowSkipsModelWhenFeedbackCheckpointed(t *testing.T) {
	gen := &stubGenerator{err: &ai.InvocationError{Cause: context.DeadlineExceeded}}
	runs := &fakeRunRepo{}
	w := newScreeningWorkflow(gen, floatPtr(72), runs, nil)

	cp := json.RawMessage(`{"resumeText":"resume body","feedback":` + validFeedback + `}`)
	err := w.Run(context.Background(), repository.WorkflowRun{
		ID:         uuid.New(),
		State:      repository.RunStatePersisting,
		Payload:    screeningPayload(t),
		Checkpoint: cp,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if gen.lastReq.Prompt != "" {
		t.Error("model invoked despite checkpointed feedback")
	}
	if len(runs.states) != 1 || runs.states[0] != repository.RunStateDone {
		t.Errorf("states = %v, want [DONE]", runs.states)
	}
}
