package routes

import (
	"github.com/gofiber/fiber/v3"

	"hireflow/internal/delivery/http/handler"
	"hireflow/internal/delivery/http/middleware"
	"hireflow/internal/domain/user"
)

// Registry wires pre-built handlers onto the app. Construction of the
// handlers themselves happens in the app container.
type Registry struct {
	Health    *handler.HealthHandler
	Auth      *handler.AuthHandler
	Jobs      *handler.JobsHandler
	Resume    *handler.ResumeHandler
	Recruiter *handler.RecruiterHandler
	Interview *handler.InterviewHandler

	AuthMw *middleware.AuthMiddleware
	WS     fiber.Handler
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	if r.Health != nil {
		r.Health.RegisterRoutes(app)
	}
	if r.WS != nil {
		app.Get("/ws", r.WS)
	}

	api := app.Group("/api")
	v1 := api.Group("/v1")

	if r.Auth != nil {
		r.Auth.RegisterRoutes(v1.Group("/auth"))
	}
	if r.Jobs != nil {
		r.Jobs.RegisterRoutes(v1)
	}
	if r.Resume != nil {
		r.Resume.RegisterRoutes(v1)
	}

	if r.AuthMw == nil {
		return
	}

	if r.Recruiter != nil {
		recruiter := v1.Group("/recruiter",
			r.AuthMw.Middleware(),
			r.AuthMw.RequireRole(user.RoleRecruiter),
		)
		r.Recruiter.RegisterRoutes(recruiter)
	}

	if r.Interview != nil {
		applicant := v1.Group("/applicant", r.AuthMw.Middleware())
		r.Interview.RegisterRoutes(applicant)
	}
}
