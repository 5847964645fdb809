package handler

import (
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"hireflow/internal/delivery/http/dto"
	"hireflow/internal/delivery/http/middleware"
	"hireflow/internal/pkg/response"
	"hireflow/internal/usecase"
)

// InterviewHandler serves the applicant-facing interview endpoint. Access
// requires being shortlisted for the interview's opening.
type InterviewHandler struct {
	uc usecase.InterviewUsecase
}

func NewInterviewHandler(uc usecase.InterviewUsecase) *InterviewHandler {
	return &InterviewHandler{uc: uc}
}

func (h *InterviewHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Get("/interviews/:id", h.Get)
}

func (h *InterviewHandler) Get(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid interview id", err)
	}

	iv, err := h.uc.GetForApplicant(c.Context(), callerID(c), id)
	if err != nil {
		return mapInterviewError(err)
	}
	return response.Success(c, fiber.StatusOK, dto.FromInterview(iv))
}
