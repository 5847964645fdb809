package dto

import "strings"

type AnalyzeResumeRequest struct {
	File           string `json:"file"`
	JobTitle       string `json:"jobTitle"`
	JobDescription string `json:"jobDescription"`
	UserID         string `json:"userId"`
	JobOpeningID   string `json:"jobOpeningId"`
}

// MissingFields lists every absent required field by its JSON name so the
// 400 response can name all of them at once.
func (r AnalyzeResumeRequest) MissingFields() []string {
	var missing []string
	for _, f := range []struct {
		name  string
		value string
	}{
		{"file", r.File},
		{"jobTitle", r.JobTitle},
		{"jobDescription", r.JobDescription},
		{"userId", r.UserID},
		{"jobOpeningId", r.JobOpeningID},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

type AnalyzeResumeResponse struct {
	RunID string `json:"runId"`
}
