package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"hireflow/internal/app"
	"hireflow/internal/config"
	"hireflow/internal/interviewgen"
	"hireflow/internal/logger"
	"hireflow/internal/screening"
	"hireflow/internal/workflow"
	"hireflow/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.App.Environment)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	container, err := app.NewContainer(cfg, zl)
	if err != nil {
		zl.Fatal("failed to build container", zap.Error(err))
	}
	defer func() {
		if err := container.Close(); err != nil {
			zl.Warn("cleanup error", zap.Error(err))
		}
	}()

	notifier := ws.NewNotifier(ws.NewRelay(container.Cache))

	analyzer := screening.NewAnalyzer(container.AI, zl)
	decider := screening.NewDecider(container.DB, container.Applicants, container.Runs, cfg.Screening.SelectThreshold, zl)
	generator := interviewgen.NewGenerator(container.AI, zl)

	runner := workflow.NewRunner(container.Runs, zl, workflow.Options{
		Workers:         cfg.Workflow.Workers,
		PollInterval:    cfg.Workflow.PollInterval,
		ReclaimInterval: cfg.Workflow.ReclaimInterval,
		StaleAfter:      cfg.Workflow.StaleAfter,
	})
	runner.Register(screening.NewWorkflow(container.Runs, analyzer, decider, notifier, zl))
	runner.Register(interviewgen.NewWorkflow(container.Runs, container.Interviews, generator, notifier, zl))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	zl.Info("worker started", zap.Int("workers", cfg.Workflow.Workers))
	if err := runner.Run(ctx); err != nil {
		zl.Fatal("worker error", zap.Error(err))
	}
	zl.Info("worker stopped")
}
