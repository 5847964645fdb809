package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"hireflow/internal/delivery/http/dto"
	"hireflow/internal/delivery/http/middleware"
	"hireflow/internal/pkg/response"
	"hireflow/internal/usecase"
)

type ResumeHandler struct {
	uc usecase.ResumeUsecase
}

func NewResumeHandler(uc usecase.ResumeUsecase) *ResumeHandler {
	return &ResumeHandler{uc: uc}
}

func (h *ResumeHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Post("/resume/analyze", h.Analyze)
}

// Analyze accepts a base64 resume and enqueues the screening workflow.
// The response carries only the run id; scoring results arrive through the
// applicant records and WebSocket events.
func (h *ResumeHandler) Analyze(c fiber.Ctx) error {
	var req dto.AnalyzeResumeRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", err)
	}

	if missing := req.MissingFields(); len(missing) > 0 {
		return middleware.NewAppError(fiber.StatusBadRequest,
			"Missing required fields: "+strings.Join(missing, ", "), nil)
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid userId", err)
	}
	openingID, err := uuid.Parse(req.JobOpeningID)
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid jobOpeningId", err)
	}

	runID, err := h.uc.Analyze(c.Context(), usecase.AnalyzeResumeInput{
		File:           req.File,
		JobTitle:       req.JobTitle,
		JobDescription: req.JobDescription,
		UserID:         userID,
		JobOpeningID:   openingID,
	})
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidInput):
			return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", err)
		case errors.Is(err, usecase.ErrNotFound):
			return middleware.NewAppError(fiber.StatusNotFound, "Job opening not found", err)
		default:
			return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, err)
		}
	}

	return response.Success(c, fiber.StatusAccepted, dto.AnalyzeResumeResponse{RunID: runID.String()})
}
