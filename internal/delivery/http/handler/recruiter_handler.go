package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"hireflow/internal/delivery/http/dto"
	"hireflow/internal/delivery/http/middleware"
	"hireflow/internal/domain/job"
	"hireflow/internal/pkg/response"
	"hireflow/internal/usecase"
)

// RecruiterHandler serves the authenticated recruiter dashboard: opening
// management, interview scheduling and applicant review.
type RecruiterHandler struct {
	openings   usecase.JobOpeningUsecase
	interviews usecase.InterviewUsecase
}

func NewRecruiterHandler(openings usecase.JobOpeningUsecase, interviews usecase.InterviewUsecase) *RecruiterHandler {
	return &RecruiterHandler{openings: openings, interviews: interviews}
}

func (h *RecruiterHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	r.Post("/openings", h.CreateOpening)
	r.Get("/openings", h.ListOpenings)
	r.Get("/openings/:id/applicants", h.ListApplicants)
	r.Get("/openings/:id/interviews", h.ListInterviews)
	r.Post("/interviews", h.GenerateQuestions)
	r.Get("/interviews/:id", h.GetInterview)
}

func (h *RecruiterHandler) CreateOpening(c fiber.Ctx) error {
	var req dto.CreateJobOpeningRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", err)
	}

	o, err := h.openings.Create(c.Context(), callerID(c), usecase.CreateOpeningInput{
		Title:           req.Title,
		About:           req.About,
		RequiredSkills:  req.RequiredSkills,
		ExperienceLevel: req.ExperienceLevel,
		Type:            job.Type(req.JobType),
		SalaryRange:     req.SalaryRange,
		Currency:        job.Currency(req.Currency),
		Department:      req.Department,
		Location:        job.Location(req.Location),
	})
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidInput) {
			return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", err)
		}
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, err)
	}

	return response.Success(c, fiber.StatusCreated, dto.FromOpening(o))
}

func (h *RecruiterHandler) ListOpenings(c fiber.Ctx) error {
	result, err := h.openings.ListOwn(c.Context(), callerID(c), c.Query("search"),
		queryInt(c, "page", 0), queryInt(c, "pageSize", 0))
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

func (h *RecruiterHandler) ListApplicants(c fiber.Ctx) error {
	openingID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid job opening id", err)
	}

	aps, err := h.interviews.ListApplicants(c.Context(), callerID(c), openingID)
	if err != nil {
		return mapInterviewError(err)
	}
	return response.Success(c, fiber.StatusOK, dto.FromApplicants(aps))
}

func (h *RecruiterHandler) ListInterviews(c fiber.Ctx) error {
	openingID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid job opening id", err)
	}

	ivs, err := h.interviews.ListByOpening(c.Context(), callerID(c), openingID)
	if err != nil {
		return mapInterviewError(err)
	}
	return response.Success(c, fiber.StatusOK, dto.FromInterviews(ivs))
}

// GenerateQuestions creates the interview row synchronously and queues
// the question generation. A second call for the same opening gets a 409
// while a non-failed interview exists.
func (h *RecruiterHandler) GenerateQuestions(c fiber.Ctx) error {
	var req dto.GenerateQuestionsRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", err)
	}

	openingID, err := uuid.Parse(req.JobOpeningID)
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid jobOpeningId", err)
	}
	if req.Duration < 1 {
		return middleware.NewAppError(fiber.StatusBadRequest, "Duration must be a positive number of minutes", nil)
	}

	iv, err := h.interviews.GenerateQuestions(c.Context(), callerID(c), usecase.GenerateQuestionsInput{
		JobOpeningID:    openingID,
		DurationMinutes: req.Duration,
		ExpiresAt:       req.ExpiresAt,
	})
	if err != nil {
		return mapInterviewError(err)
	}

	return response.Success(c, fiber.StatusAccepted, dto.FromInterview(iv))
}

func (h *RecruiterHandler) GetInterview(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid interview id", err)
	}

	iv, err := h.interviews.GetForRecruiter(c.Context(), callerID(c), id)
	if err != nil {
		return mapInterviewError(err)
	}
	return response.Success(c, fiber.StatusOK, dto.FromInterview(iv))
}

func callerID(c fiber.Ctx) uuid.UUID {
	id, _ := c.Locals(middleware.CtxUserIDKey).(uuid.UUID)
	return id
}

func mapInterviewError(err error) error {
	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", err)
	case errors.Is(err, usecase.ErrNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, response.MessageNotFound, err)
	case errors.Is(err, usecase.ErrAlreadyExists):
		return middleware.NewAppError(fiber.StatusConflict, "Interview already exists for this job opening", err)
	case errors.Is(err, usecase.ErrForbidden):
		return middleware.NewAppError(fiber.StatusForbidden, response.MessageForbidden, err)
	case errors.Is(err, usecase.ErrUnauthorized):
		return middleware.NewAppError(fiber.StatusUnauthorized, response.MessageUnauthorized, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, err)
	}
}
