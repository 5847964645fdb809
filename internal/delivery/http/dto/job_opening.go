package dto

import (
	"time"

	"github.com/google/uuid"

	"hireflow/internal/domain/job"
)

type CreateJobOpeningRequest struct {
	Title           string           `json:"title"`
	About           string           `json:"about"`
	RequiredSkills  []string         `json:"requiredSkills"`
	ExperienceLevel string           `json:"experienceLevel"`
	JobType         string           `json:"jobType"`
	SalaryRange     *job.SalaryRange `json:"salaryRange"`
	Currency        string           `json:"currency"`
	Department      string           `json:"department"`
	Location        string           `json:"location"`
}

type JobOpeningResponse struct {
	ID              uuid.UUID        `json:"id"`
	Title           string           `json:"title"`
	About           string           `json:"about"`
	RequiredSkills  []string         `json:"requiredSkills"`
	ExperienceLevel string           `json:"experienceLevel"`
	JobType         string           `json:"jobType"`
	SalaryRange     *job.SalaryRange `json:"salaryRange,omitempty"`
	Currency        string           `json:"currency"`
	CurrencySymbol  string           `json:"currencySymbol"`
	Department      string           `json:"department"`
	Location        string           `json:"location"`
	CreatedAt       time.Time        `json:"createdAt"`
}

type JobOpeningPageResponse struct {
	Openings []JobOpeningResponse `json:"openings"`
	Total    int                  `json:"total"`
	Page     int                  `json:"page"`
	PageSize int                  `json:"pageSize"`
}

func FromOpening(o job.Opening) JobOpeningResponse {
	return JobOpeningResponse{
		ID:              o.ID,
		Title:           o.Title,
		About:           o.About,
		RequiredSkills:  o.RequiredSkills,
		ExperienceLevel: o.ExperienceLevel,
		JobType:         string(o.Type),
		SalaryRange:     o.SalaryRange,
		Currency:        string(o.Currency),
		CurrencySymbol:  o.CurrencySymbol,
		Department:      o.Department,
		Location:        string(o.Location),
		CreatedAt:       o.CreatedAt,
	}
}

func FromOpenings(openings []job.Opening) []JobOpeningResponse {
	out := make([]JobOpeningResponse, 0, len(openings))
	for _, o := range openings {
		out = append(out, FromOpening(o))
	}
	return out
}
