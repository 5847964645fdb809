package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"hireflow/internal/domain/job"
	"hireflow/internal/repository"
)

const (
	defaultPage     = 1
	defaultPageSize = 10
	maxPageSize     = 100
)

// ListingCache is what the job listing path needs from Redis. All methods
// degrade to no-ops when the cache is unreachable.
type ListingCache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	InvalidateJobListings(ctx context.Context) error
	SetIfNotExists(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
}

type CreateOpeningInput struct {
	Title           string
	About           string
	RequiredSkills  []string
	ExperienceLevel string
	Type            job.Type
	SalaryRange     *job.SalaryRange
	Currency        job.Currency
	Department      string
	Location        job.Location
}

type OpeningPage struct {
	Openings []job.Opening `json:"openings"`
	Total    int           `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"pageSize"`
}

type JobOpeningUsecase interface {
	Create(ctx context.Context, recruiterID uuid.UUID, in CreateOpeningInput) (job.Opening, error)
	ListOwn(ctx context.Context, recruiterID uuid.UUID, search string, page, pageSize int) (OpeningPage, error)
	ListPublic(ctx context.Context, search string, page, pageSize int) (OpeningPage, error)
	Get(ctx context.Context, id uuid.UUID) (job.Opening, error)
}

type JobOpening struct {
	openings repository.JobOpeningRepository
	cache    ListingCache
	logger   *zap.Logger
}

func NewJobOpeningUsecase(openings repository.JobOpeningRepository, cache ListingCache, logger *zap.Logger) *JobOpening {
	return &JobOpening{openings: openings, cache: cache, logger: logger}
}

func (u *JobOpening) Create(ctx context.Context, recruiterID uuid.UUID, in CreateOpeningInput) (job.Opening, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.About = strings.TrimSpace(in.About)
	if in.Title == "" || in.About == "" || len(in.RequiredSkills) == 0 {
		return job.Opening{}, ErrInvalidInput
	}
	if in.SalaryRange != nil && in.SalaryRange.Min > in.SalaryRange.Max {
		return job.Opening{}, ErrInvalidInput
	}

	o := job.Opening{
		ID:              uuid.New(),
		Title:           in.Title,
		About:           in.About,
		RequiredSkills:  in.RequiredSkills,
		ExperienceLevel: in.ExperienceLevel,
		Type:            in.Type,
		SalaryRange:     in.SalaryRange,
		Currency:        in.Currency,
		CurrencySymbol:  job.SymbolFor(in.Currency),
		Department:      in.Department,
		Location:        in.Location,
		PostedBy:        recruiterID,
	}

	if err := u.openings.Create(ctx, o); err != nil {
		u.logger.Error("create job opening", zap.Error(err))
		return job.Opening{}, ErrInternal
	}

	if err := u.cache.InvalidateJobListings(ctx); err != nil {
		u.logger.Warn("invalidate listing cache", zap.Error(err))
	}

	created, err := u.openings.GetByID(ctx, o.ID)
	if err != nil {
		return job.Opening{}, ErrInternal
	}
	return created, nil
}

func (u *JobOpening) ListOwn(ctx context.Context, recruiterID uuid.UUID, search string, page, pageSize int) (OpeningPage, error) {
	page, pageSize = normalizePage(page, pageSize)

	openings, total, err := u.openings.List(ctx, repository.JobOpeningFilter{
		PostedBy: &recruiterID,
		Search:   strings.TrimSpace(search),
		Limit:    pageSize,
		Offset:   (page - 1) * pageSize,
	})
	if err != nil {
		u.logger.Error("list recruiter openings", zap.Error(err))
		return OpeningPage{}, ErrInternal
	}
	return OpeningPage{Openings: openings, Total: total, Page: page, PageSize: pageSize}, nil
}

func (u *JobOpening) ListPublic(ctx context.Context, search string, page, pageSize int) (OpeningPage, error) {
	page, pageSize = normalizePage(page, pageSize)
	search = strings.TrimSpace(search)

	key := listingCacheKey(search, page, pageSize)
	var cached OpeningPage
	if hit, err := u.cache.GetJSON(ctx, key, &cached); err == nil && hit {
		return cached, nil
	}

	openings, total, err := u.openings.List(ctx, repository.JobOpeningFilter{
		Search: search,
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
	})
	if err != nil {
		u.logger.Error("list public openings", zap.Error(err))
		return OpeningPage{}, ErrInternal
	}

	result := OpeningPage{Openings: openings, Total: total, Page: page, PageSize: pageSize}
	if err := u.cache.SetJSON(ctx, key, result, 0); err != nil {
		u.logger.Warn("cache listing page", zap.Error(err))
	}
	return result, nil
}

func (u *JobOpening) Get(ctx context.Context, id uuid.UUID) (job.Opening, error) {
	o, err := u.openings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrJobOpeningNotFound) {
			return job.Opening{}, ErrNotFound
		}
		u.logger.Error("get job opening", zap.Error(err))
		return job.Opening{}, ErrInternal
	}
	return o, nil
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = defaultPage
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

func listingCacheKey(search string, page, pageSize int) string {
	return fmt.Sprintf("jobs:list:p%d:n%d:q%s", page, pageSize, strings.ToLower(search))
}
