package screening

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"hireflow/internal/ai"
	"hireflow/internal/domain/applicant"
)

const (
	maxResumeChars   = 4000
	truncationMarker = "...[truncated]"

	scoringTemperature     = 0.0
	scoringMaxOutputTokens = 2000
)

// TruncateResume caps the resume text sent to the model. Text longer than
// 4000 characters is cut at that boundary and suffixed with a literal
// truncation marker; shorter text passes through unchanged. The cut is
// made on a rune boundary so the prompt stays valid UTF-8.
func TruncateResume(text string) string {
	if len(text) <= maxResumeChars {
		return text
	}
	runes := 0
	for i := range text {
		if runes == maxResumeChars {
			return text[:i] + truncationMarker
		}
		runes++
	}
	return text
}

// Analyzer scores one resume against one opening.
type Analyzer struct {
	gen      ai.TextGenerator
	validate *validator.Validate
	logger   *zap.Logger
}

func NewAnalyzer(gen ai.TextGenerator, logger *zap.Logger) *Analyzer {
	return &Analyzer{
		gen:      gen,
		validate: validator.New(),
		logger:   logger,
	}
}

// Analyze sends the resume and rubric to the model and returns the parsed
// feedback. Invocation failures are returned as-is so callers can retry;
// a response that parses but fails validation comes back as an
// *ai.OutputError, which is also retriable because the model is free to
// produce well-formed output on the next attempt.
func (a *Analyzer) Analyze(ctx context.Context, resumeText, jobTitle, jobDescription string) (*applicant.Feedback, error) {
	truncated := TruncateResume(resumeText)

	raw, err := a.gen.GenerateJSON(ctx, ai.Request{
		System:          Instructions(jobTitle, jobDescription),
		Prompt:          "Analyze this resume and provide feedback:\n\n" + truncated,
		Temperature:     scoringTemperature,
		MaxOutputTokens: scoringMaxOutputTokens,
	})
	if err != nil {
		return nil, err
	}

	var fb applicant.Feedback
	if err := json.Unmarshal([]byte(ai.CleanJSONBlock(raw)), &fb); err != nil {
		a.logger.Warn("unparseable scoring response", zap.Error(err))
		return nil, &ai.OutputError{Cause: fmt.Errorf("parse feedback: %w", err)}
	}

	if err := a.validate.Struct(&fb); err != nil {
		var verrs validator.ValidationErrors
		fields := make([]string, 0)
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				fields = append(fields, fe.Namespace())
			}
		}
		a.logger.Warn("scoring response failed validation", zap.Strings("fields", fields))
		return nil, &ai.OutputError{Fields: fields, Cause: err}
	}

	return &fb, nil
}
