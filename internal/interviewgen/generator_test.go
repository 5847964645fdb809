package interviewgen

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"hireflow/internal/ai"
)

type stubGenerator struct {
	response string
	err      error
	lastReq  ai.Request
}

func (s *stubGenerator) GenerateJSON(_ context.Context, req ai.Request) (string, error) {
	s.lastReq = req
	return s.response, s.err
}

func (s *stubGenerator) Close() error { return nil }

const validQuestions = `{
	"questions": [
		{"question": "Walk me through how you would design a rate limiter for a public API.", "category": "technical", "focusArea": "System design", "expectedDuration": "3-4 minutes"},
		{"question": "Tell me about a time you disagreed with a teammate about an architectural decision.", "category": "behavioral", "focusArea": "Collaboration"},
		{"question": "A production deploy doubles p99 latency. How do you find the cause?", "category": "problem-solving", "focusArea": "Debugging", "expectedDuration": "2-3 minutes"}
	]
}`

func TestPromptSubstitutesJobContext(t *testing.T) {
	p := Prompt(JobContext{
		Title:           "Backend Engineer",
		About:           "Owns the billing pipeline.",
		RequiredSkills:  []string{"Go", "Sql", "Docker"},
		ExperienceLevel: "3-4 YEARS",
		JobType:         "FULLTIME",
		DurationMinutes: 45,
	})

	assert.Contains(t, p, "a 45-minute interview")
	assert.Contains(t, p, "Job Title: Backend Engineer")
	assert.Contains(t, p, "Required Skills: Go, Sql, Docker")
	assert.Contains(t, p, "Experience Level: 3-4 YEARS")
	assert.Contains(t, p, "Job Type: FULLTIME")
	assert.NotContains(t, p, "{{")
}

func TestGenerateReturnsValidatedQuestions(t *testing.T) {
	gen := &stubGenerator{response: validQuestions}
	g := NewGenerator(gen, zap.NewNop())

	questions, err := g.Generate(context.Background(), JobContext{Title: "Backend Engineer", DurationMinutes: 30})
	require.NoError(t, err)
	require.Len(t, questions, 3)
	assert.Equal(t, "technical", questions[0].Category)
	assert.Equal(t, "Collaboration", questions[1].FocusArea)
	assert.Empty(t, questions[1].ExpectedDuration)

	assert.InDelta(t, 0.7, gen.lastReq.Temperature, 0.001)
	assert.Equal(t, int32(2000), gen.lastReq.MaxOutputTokens)
	assert.Contains(t, gen.lastReq.System, "expert interview question generator")
}

func TestGenerateRejectsMissingQuestionsKey(t *testing.T) {
	gen := &stubGenerator{response: `{"items": []}`}
	g := NewGenerator(gen, zap.NewNop())

	_, err := g.Generate(context.Background(), JobContext{})
	var outErr *ai.OutputError
	require.ErrorAs(t, err, &outErr)
	assert.Contains(t, strings.Join(outErr.Fields, " "), "Questions")
}

func TestGenerateRejectsEmptyQuestions(t *testing.T) {
	gen := &stubGenerator{response: `{"questions": []}`}
	g := NewGenerator(gen, zap.NewNop())

	_, err := g.Generate(context.Background(), JobContext{})
	var outErr *ai.OutputError
	require.ErrorAs(t, err, &outErr)
}

func TestGenerateEnumeratesEveryInvalidQuestion(t *testing.T) {
	bad := `{
		"questions": [
			{"question": "Too short", "category": "technical", "focusArea": "Go"},
			{"question": "A perfectly reasonable interview question about concurrency in Go services.", "category": "trivia", "focusArea": "Go"},
			{"question": "Another perfectly reasonable interview question about database indexing strategy.", "category": "technical", "focusArea": ""}
		]
	}`
	gen := &stubGenerator{response: bad}
	g := NewGenerator(gen, zap.NewNop())

	_, err := g.Generate(context.Background(), JobContext{})
	var outErr *ai.OutputError
	require.ErrorAs(t, err, &outErr)
	require.Len(t, outErr.Fields, 3)

	joined := strings.Join(outErr.Fields, " ")
	assert.Contains(t, joined, "Questions[0].Question")
	assert.Contains(t, joined, "Questions[1].Category")
	assert.Contains(t, joined, "Questions[2].FocusArea")
}

func TestGenerateRejectsMalformedJSON(t *testing.T) {
	gen := &stubGenerator{response: "Sure! Here are some questions:"}
	g := NewGenerator(gen, zap.NewNop())

	_, err := g.Generate(context.Background(), JobContext{})
	var outErr *ai.OutputError
	require.ErrorAs(t, err, &outErr)
	assert.Empty(t, outErr.Fields)
}
