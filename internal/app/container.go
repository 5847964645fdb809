package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"hireflow/internal/ai"
	"hireflow/internal/config"
	"hireflow/internal/database"
	"hireflow/internal/database/migration"
	dbpostgres "hireflow/internal/database/postgres"
	"hireflow/internal/infrastructure/cache"
	"hireflow/internal/pkg/jwt"
	"hireflow/internal/repository"
)

// Container owns every shared dependency. Both binaries build one and
// pick the pieces they need.
type Container struct {
	Config config.Config
	Logger *zap.Logger

	DB    database.DB
	Cache *cache.Redis
	AI    ai.TextGenerator

	JWT jwt.Service

	Users      repository.UserRepository
	Openings   repository.JobOpeningRepository
	Applicants repository.ApplicantRepository
	Interviews repository.InterviewRepository
	Runs       repository.WorkflowRunRepository
}

func NewContainer(cfg config.Config, logger *zap.Logger) (*Container, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := dbpostgres.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	runner := migration.Runner{Dir: cfg.Database.MigrationsDir}
	if err := runner.Run(ctx, db.SQLDB()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	aiClient, err := ai.NewGeminiClient(ctx, cfg.AI.APIKey, cfg.AI.Model)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create ai client: %w", err)
	}

	c := &Container{
		Config: cfg,
		Logger: logger,
		DB:     db,
		Cache:  cache.NewRedis(cfg.Redis, logger),
		AI:     aiClient,
		JWT: jwt.NewHMACService(
			cfg.JWT.AccessSecret,
			cfg.JWT.RefreshSecret,
			cfg.JWT.AccessExpiresIn,
			cfg.JWT.RefreshExpiresIn,
		),
		Users:      repository.NewPostgresUserRepository(db),
		Openings:   repository.NewPostgresJobOpeningRepository(db),
		Applicants: repository.NewPostgresApplicantRepository(db),
		Interviews: repository.NewPostgresInterviewRepository(db),
		Runs:       repository.NewPostgresWorkflowRunRepository(db),
	}
	return c, nil
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	if c.AI != nil {
		_ = c.AI.Close()
	}
	if c.Cache != nil {
		_ = c.Cache.Close()
	}
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
