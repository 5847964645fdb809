package app

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v3"

	"hireflow/internal/delivery/http/handler"
	"hireflow/internal/delivery/http/middleware"
	"hireflow/internal/delivery/http/routes"
	"hireflow/internal/usecase"
	"hireflow/internal/ws"
)

type App struct {
	Fiber *fiber.App
	Hub   *ws.Hub
}

// Bootstrap assembles the HTTP surface on top of a built container. The
// returned App owns the websocket hub; callers start it with Run.
func Bootstrap(c *Container) *App {
	f := fiber.New(fiber.Config{
		AppName: c.Config.App.AppName,
	})

	errMw := middleware.NewErrorMiddleware(c.Logger)
	accessMw := middleware.NewAccessLogMiddleware(c.Logger)
	f.Use(errMw.Middleware())
	f.Use(accessMw.Middleware())

	authUC := usecase.NewAuthUsecase(c.Users, c.JWT)
	jobsUC := usecase.NewJobOpeningUsecase(c.Openings, c.Cache, c.Logger)
	resumeUC := usecase.NewResumeUsecase(c.Openings, c.Runs, c.Config.Workflow.ScreeningMaxAttempts, c.Logger)
	interviewUC := usecase.NewInterviewUsecase(
		c.Openings,
		c.Interviews,
		c.Applicants,
		c.Runs,
		c.Cache,
		c.Config.Workflow.GenerationMaxAttempts,
		c.Logger,
	)

	hub := ws.NewHub(c.Logger)
	wsHandler := ws.NewHandler(hub, c.Logger)

	registry := routes.Registry{
		Health:    handler.NewHealthHandler(c.DB, c.Cache),
		Auth:      handler.NewAuthHandler(authUC),
		Jobs:      handler.NewJobsHandler(jobsUC),
		Resume:    handler.NewResumeHandler(resumeUC),
		Recruiter: handler.NewRecruiterHandler(jobsUC, interviewUC),
		Interview: handler.NewInterviewHandler(interviewUC),
		AuthMw:    middleware.NewAuthMiddleware(c.JWT),
		WS:        wsHandler.HandleWS,
	}
	registry.Register(f)

	return &App{Fiber: f, Hub: hub}
}

// Run starts the websocket hub. It blocks, so callers run it on its own
// goroutine.
func (a *App) Run() {
	a.Hub.Run()
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
