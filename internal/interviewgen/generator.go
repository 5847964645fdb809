package interviewgen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"hireflow/internal/ai"
	"hireflow/internal/domain/interview"
)

const (
	generationTemperature     = 0.7
	generationMaxOutputTokens = 2000
)

type questionsResponse struct {
	Questions []interview.Question `json:"questions" validate:"required,min=1,dive"`
}

// Generator produces the question set for one interview.
type Generator struct {
	gen      ai.TextGenerator
	validate *validator.Validate
	logger   *zap.Logger
}

func NewGenerator(gen ai.TextGenerator, logger *zap.Logger) *Generator {
	return &Generator{
		gen:      gen,
		validate: validator.New(),
		logger:   logger,
	}
}

// Generate asks the model for questions and validates the whole set.
// Validation rejects the entire response when any question fails, and the
// returned *ai.OutputError lists every failing field path, not just the
// first.
func (g *Generator) Generate(ctx context.Context, jc JobContext) ([]interview.Question, error) {
	raw, err := g.gen.GenerateJSON(ctx, ai.Request{
		System:          systemInstruction,
		Prompt:          Prompt(jc),
		Temperature:     generationTemperature,
		MaxOutputTokens: generationMaxOutputTokens,
	})
	if err != nil {
		return nil, err
	}

	var resp questionsResponse
	if err := json.Unmarshal([]byte(ai.CleanJSONBlock(raw)), &resp); err != nil {
		g.logger.Warn("unparseable question response", zap.Error(err))
		return nil, &ai.OutputError{Cause: fmt.Errorf("parse questions: %w", err)}
	}

	if err := g.validate.Struct(&resp); err != nil {
		var verrs validator.ValidationErrors
		fields := make([]string, 0)
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s: %s", fe.Namespace(), fe.Tag()))
			}
		}
		g.logger.Warn("question response failed validation", zap.Strings("fields", fields))
		return nil, &ai.OutputError{Fields: fields, Cause: err}
	}

	return resp.Questions, nil
}
