package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"

	"hireflow/internal/pkg/response"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db    Pinger
	cache Pinger
}

func NewHealthHandler(db, cache Pinger) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

func (h *HealthHandler) RegisterRoutes(app *fiber.App) {
	if app == nil {
		return
	}
	app.Get("/health", h.Health)
}

func (h *HealthHandler) Health(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{
		"database": "ok",
		"cache":    "ok",
	}
	status := fiber.StatusOK

	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			checks["database"] = err.Error()
			status = fiber.StatusServiceUnavailable
		}
	}
	// A dead cache degrades to bypass, so it never fails the check.
	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			checks["cache"] = "unavailable"
		}
	}

	if status != fiber.StatusOK {
		return response.Error(c, status, "unhealthy")
	}
	return response.Success(c, status, checks)
}
