package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"hireflow/internal/delivery/http/dto"
	"hireflow/internal/delivery/http/middleware"
	"hireflow/internal/pkg/response"
	"hireflow/internal/usecase"
)

// JobsHandler serves the public, unauthenticated listing endpoints.
type JobsHandler struct {
	uc usecase.JobOpeningUsecase
}

func NewJobsHandler(uc usecase.JobOpeningUsecase) *JobsHandler {
	return &JobsHandler{uc: uc}
}

func (h *JobsHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/jobs", h.List)
	r.Get("/jobs/:id", h.Get)
}

func (h *JobsHandler) List(c fiber.Ctx) error {
	page := queryInt(c, "page", 0)
	pageSize := queryInt(c, "pageSize", 0)

	result, err := h.uc.ListPublic(c.Context(), c.Query("search"), page, pageSize)
	if err != nil {
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, err)
	}

	return response.Success(c, fiber.StatusOK, dto.JobOpeningPageResponse{
		Openings: dto.FromOpenings(result.Openings),
		Total:    result.Total,
		Page:     result.Page,
		PageSize: result.PageSize,
	})
}

func (h *JobsHandler) Get(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid job opening id", err)
	}

	o, err := h.uc.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, usecase.ErrNotFound) {
			return middleware.NewAppError(fiber.StatusNotFound, "Job opening not found", err)
		}
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, err)
	}

	return response.Success(c, fiber.StatusOK, dto.FromOpening(o))
}

func queryInt(c fiber.Ctx, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
