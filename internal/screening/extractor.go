package screening

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ExtractionError means the uploaded file could not be turned into text.
// It is permanent: re-running the same bytes produces the same failure.
type ExtractionError struct {
	Cause error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("resume text extraction failed: %v", e.Cause)
}

func (e *ExtractionError) Unwrap() error { return e.Cause }

// ExtractText decodes a base64-encoded PDF and returns its plain text.
func ExtractText(fileBase64 string) (text string, err error) {
	raw, decErr := base64.StdEncoding.DecodeString(strings.TrimSpace(fileBase64))
	if decErr != nil {
		return "", &ExtractionError{Cause: fmt.Errorf("decode base64: %w", decErr)}
	}

	// The pdf package panics on some malformed documents instead of
	// returning an error.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = &ExtractionError{Cause: fmt.Errorf("parse pdf: %v", r)}
		}
	}()

	reader, rdErr := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if rdErr != nil {
		return "", &ExtractionError{Cause: fmt.Errorf("parse pdf: %w", rdErr)}
	}

	plain, txtErr := reader.GetPlainText()
	if txtErr != nil {
		return "", &ExtractionError{Cause: fmt.Errorf("extract text: %w", txtErr)}
	}

	var buf bytes.Buffer
	if _, cpErr := io.Copy(&buf, plain); cpErr != nil {
		return "", &ExtractionError{Cause: fmt.Errorf("read text: %w", cpErr)}
	}

	out := strings.TrimSpace(buf.String())
	if out == "" {
		return "", &ExtractionError{Cause: fmt.Errorf("document contains no extractable text")}
	}
	return out, nil
}
