package repository

import (
	"context"
	"errors"
	"fmt"

	"hireflow/internal/database"
	"hireflow/internal/database/pgerror"
	"hireflow/internal/domain/job"

	"github.com/google/uuid"
)

var ErrJobOpeningNotFound = errors.New("job opening not found")

type JobOpeningFilter struct {
	PostedBy *uuid.UUID
	Search   string
	Limit    int
	Offset   int
}

type JobOpeningRepository interface {
	Create(ctx context.Context, o job.Opening) error
	GetByID(ctx context.Context, id uuid.UUID) (job.Opening, error)
	List(ctx context.Context, f JobOpeningFilter) ([]job.Opening, int, error)
}

type PostgresJobOpeningRepository struct {
	db database.DB
}

func NewPostgresJobOpeningRepository(db database.DB) *PostgresJobOpeningRepository {
	return &PostgresJobOpeningRepository{db: db}
}

const jobOpeningColumns = `id, title, about, required_skills, experience_level, job_type,
	salary_min, salary_max, currency, currency_symbol, department, location, posted_by, created_at`

func (r *PostgresJobOpeningRepository) Create(ctx context.Context, o job.Opening) error {
	var salaryMin, salaryMax *int64
	if o.SalaryRange != nil {
		salaryMin = &o.SalaryRange.Min
		salaryMax = &o.SalaryRange.Max
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO job_openings
			(id, title, about, required_skills, experience_level, job_type,
			 salary_min, salary_max, currency, currency_symbol, department, location, posted_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		o.ID, o.Title, o.About, o.RequiredSkills, o.ExperienceLevel, o.Type,
		salaryMin, salaryMax, o.Currency, o.CurrencySymbol, o.Department, o.Location, o.PostedBy,
	)
	return pgerror.Classify(err)
}

func (r *PostgresJobOpeningRepository) GetByID(ctx context.Context, id uuid.UUID) (job.Opening, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+jobOpeningColumns+` FROM job_openings WHERE id = $1`, id)

	o, err := scanJobOpening(row)
	if err != nil {
		if pgerror.IsNotFound(pgerror.Classify(err)) {
			return job.Opening{}, ErrJobOpeningNotFound
		}
		return job.Opening{}, pgerror.Classify(err)
	}
	return o, nil
}

func (r *PostgresJobOpeningRepository) List(ctx context.Context, f JobOpeningFilter) ([]job.Opening, int, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	where := ` WHERE 1=1`
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return placeholder(len(args))
	}

	if f.PostedBy != nil {
		where += ` AND posted_by = ` + arg(*f.PostedBy)
	}
	if f.Search != "" {
		p := arg("%" + f.Search + "%")
		where += ` AND (title ILIKE ` + p +
			` OR about ILIKE ` + p +
			` OR department ILIKE ` + p +
			` OR experience_level ILIKE ` + p + `)`
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM job_openings`+where, args...).Scan(&total); err != nil {
		return nil, 0, pgerror.Classify(err)
	}

	query := `SELECT ` + jobOpeningColumns + ` FROM job_openings` + where +
		` ORDER BY created_at DESC LIMIT ` + arg(limit) + ` OFFSET ` + arg(offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, pgerror.Classify(err)
	}
	defer rows.Close()

	out := make([]job.Opening, 0)
	for rows.Next() {
		o, err := scanJobOpening(rows)
		if err != nil {
			return nil, 0, pgerror.Classify(err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, pgerror.Classify(err)
	}
	return out, total, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanJobOpening(s scanner) (job.Opening, error) {
	var o job.Opening
	var salaryMin, salaryMax *int64
	if err := s.Scan(
		&o.ID, &o.Title, &o.About, &o.RequiredSkills, &o.ExperienceLevel, &o.Type,
		&salaryMin, &salaryMax, &o.Currency, &o.CurrencySymbol, &o.Department, &o.Location,
		&o.PostedBy, &o.CreatedAt,
	); err != nil {
		return job.Opening{}, err
	}
	if salaryMin != nil && salaryMax != nil {
		o.SalaryRange = &job.SalaryRange{Min: *salaryMin, Max: *salaryMax}
	}
	return o, nil
}

func placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}
