package screening

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

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

const validFeedback = `{
	"overallScore": 72,
	"ATS": {"score": 70, "tips": [{"type": "good", "tip": "Solid keyword coverage"}]},
	"toneAndStyle": {"score": 75, "tips": [{"type": "improve", "tip": "Tighten phrasing", "explanation": "Several bullets run long."}]},
	"content": {"score": 68, "tips": [{"type": "good", "tip": "Quantified results", "explanation": "Impact numbers on most roles."}]},
	"structure": {"score": 80, "tips": [{"type": "good", "tip": "Clear sections", "explanation": "Standard ordering."}]},
	"skills": {"score": 66, "tips": [{"type": "improve", "tip": "Surface cloud skills", "explanation": "AWS appears only in prose."}]}
}`

func TestTruncateResume(t *testing.T) {
	short := strings.Repeat("a", 4000)
	assert.Equal(t, short, TruncateResume(short))

	long := strings.Repeat("b", 4001)
	got := TruncateResume(long)
	assert.Equal(t, strings.Repeat("b", 4000)+"...[truncated]", got)
	assert.Len(t, got, 4000+len("...[truncated]"))
}

func TestTruncateResumeKeepsRunesIntact(t *testing.T) {
	multibyte := strings.Repeat("a", 3999) + "é" + strings.Repeat("b", 100)
	got := TruncateResume(multibyte)

	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("a", 3999)+"é"+"...[truncated]", got)
	assert.Equal(t, 4000, utf8.RuneCountInString(strings.TrimSuffix(got, "...[truncated]")))

	wide := strings.Repeat("界", 4100)
	got = TruncateResume(wide)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("界", 4000)+"...[truncated]", got)
}

func TestInstructionsIncludesJobContext(t *testing.T) {
	s := Instructions("Platform Engineer", "Builds internal tooling.")
	assert.Contains(t, s, "Job: Platform Engineer")
	assert.Contains(t, s, "Description: Builds internal tooling.")
	assert.Contains(t, s, "interface Feedback")
	assert.Contains(t, s, "Return valid JSON only.")
}

func TestAnalyzeParsesFeedback(t *testing.T) {
	gen := &stubGenerator{response: validFeedback}
	a := NewAnalyzer(gen, zap.NewNop())

	fb, err := a.Analyze(context.Background(), "resume body", "Backend Engineer", "Go services")
	require.NoError(t, err)
	require.NotNil(t, fb.OverallScore)
	assert.InDelta(t, 72, *fb.OverallScore, 0.001)
	assert.Len(t, fb.ATS.Tips, 1)

	assert.Equal(t, float32(0), gen.lastReq.Temperature)
	assert.Equal(t, int32(2000), gen.lastReq.MaxOutputTokens)
	assert.True(t, strings.HasPrefix(gen.lastReq.Prompt, "Analyze this resume and provide feedback:\n\n"))
}

func TestAnalyzeSendsTruncatedResume(t *testing.T) {
	gen := &stubGenerator{response: validFeedback}
	a := NewAnalyzer(gen, zap.NewNop())

	_, err := a.Analyze(context.Background(), strings.Repeat("x", 5000), "Backend Engineer", "Go services")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(gen.lastReq.Prompt, "...[truncated]"))
	assert.NotContains(t, gen.lastReq.Prompt, strings.Repeat("x", 4001))
}

func TestAnalyzeMissingScoreIsNotAnError(t *testing.T) {
	noScore := strings.Replace(validFeedback, `"overallScore": 72,`, "", 1)
	gen := &stubGenerator{response: noScore}
	a := NewAnalyzer(gen, zap.NewNop())

	fb, err := a.Analyze(context.Background(), "resume body", "Backend Engineer", "Go services")
	require.NoError(t, err)
	assert.Nil(t, fb.OverallScore)
}

func TestAnalyzeRejectsMalformedJSON(t *testing.T) {
	gen := &stubGenerator{response: "the candidate looks great"}
	a := NewAnalyzer(gen, zap.NewNop())

	_, err := a.Analyze(context.Background(), "resume body", "Backend Engineer", "Go services")
	var outErr *ai.OutputError
	require.ErrorAs(t, err, &outErr)
	assert.Empty(t, outErr.Fields)
}

func TestAnalyzeEnumeratesInvalidFields(t *testing.T) {
	missingSections := `{"overallScore": 50, "ATS": {"score": 70, "tips": [{"type": "good", "tip": "ok"}]}}`
	gen := &stubGenerator{response: missingSections}
	a := NewAnalyzer(gen, zap.NewNop())

	_, err := a.Analyze(context.Background(), "resume body", "Backend Engineer", "Go services")
	var outErr *ai.OutputError
	require.ErrorAs(t, err, &outErr)

	joined := strings.Join(outErr.Fields, " ")
	for _, section := range []string{"ToneAndStyle", "Content", "Structure", "Skills"} {
		assert.Contains(t, joined, section)
	}
}

func TestAnalyzePropagatesInvocationError(t *testing.T) {
	cause := &ai.InvocationError{Cause: errors.New("rate limited")}
	gen := &stubGenerator{err: cause}
	a := NewAnalyzer(gen, zap.NewNop())

	_, err := a.Analyze(context.Background(), "resume body", "Backend Engineer", "Go services")
	var invErr *ai.InvocationError
	assert.ErrorAs(t, err, &invErr)
}
