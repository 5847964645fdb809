package ai

import (
	"fmt"
	"strings"
)

// OutputError reports a response that arrived but could not be used:
// malformed JSON, or JSON that fails structural validation. Fields holds
// the paths of every failing field when validation produced them.
type OutputError struct {
	Fields []string
	Cause  error
}

func (e *OutputError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("model output invalid: %s", strings.Join(e.Fields, ", "))
	}
	if e.Cause != nil {
		return fmt.Sprintf("model output invalid: %v", e.Cause)
	}
	return "model output invalid"
}

func (e *OutputError) Unwrap() error { return e.Cause }
