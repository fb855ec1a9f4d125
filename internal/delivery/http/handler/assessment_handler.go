package handler

import (
	"errors"
	"strconv"

	"bilanpro/internal/delivery/http/dto"
	"bilanpro/internal/delivery/http/middleware"
	"bilanpro/internal/domain/user"
	"bilanpro/internal/pkg/response"
	"bilanpro/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type AssessmentHandler struct {
	uc     usecase.AssessmentUsecase
	authMw *middleware.AuthMiddleware
}

type createAssessmentRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"assessment_type"`
}

type saveStepRequest struct {
	Data map[string]any `json:"data"`
}

type autoSaveRequest struct {
	Step int            `json:"step"`
	Data map[string]any `json:"data"`
}

func NewAssessmentHandler(uc usecase.AssessmentUsecase, authMw *middleware.AuthMiddleware) *AssessmentHandler {
	return &AssessmentHandler{uc: uc, authMw: authMw}
}

func (h *AssessmentHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Post("", h.Create)
	r.Get("", h.List)
	r.Get("/:id", h.Get)
	r.Get("/:id/draft", h.GetDraft)
	r.Put("/:id/steps/:stepNumber", h.SaveStep)
	r.Post("/:id/auto-save", h.AutoSave)
	r.Get("/:id/progress", h.Progress)
	r.Post("/:id/submit", h.Submit)
	r.Post("/:id/archive", h.Archive)
	r.Post("/:id/competencies/extract", h.ExtractCompetencies)
	r.Get("/:id/competencies", h.ListCompetencies)

	consultant := h.authMw.RequireRole(string(user.RoleConsultant))
	r.Post("/:id/review", h.Review, consultant)
	r.Post("/:id/complete", h.Complete, consultant)
}

func (h *AssessmentHandler) Create(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req createAssessmentRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	a, draft, err := h.uc.CreateDraft(c.Context(), userID, usecase.CreateAssessmentInput{
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
	})
	if err != nil {
		return mapAssessmentUsecaseError(err)
	}

	data := map[string]any{
		"assessment": dto.NewAssessmentResponse(a),
		"draft":      dto.NewDraftResponse(draft),
	}
	return response.Success(c, fiber.StatusCreated, response.MessageOK, data)
}

func (h *AssessmentHandler) List(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	items, err := h.uc.List(c.Context(), userID)
	if err != nil {
		return mapAssessmentUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewAssessmentListResponse(items))
}

func (h *AssessmentHandler) Get(c fiber.Ctx) error {
	userID, id, err := currentUserAndAssessmentID(c)
	if err != nil {
		return err
	}

	a, err := h.uc.Get(c.Context(), userID, id)
	if err != nil {
		return mapAssessmentUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewAssessmentResponse(a))
}

func (h *AssessmentHandler) GetDraft(c fiber.Ctx) error {
	userID, id, err := currentUserAndAssessmentID(c)
	if err != nil {
		return err
	}

	draft, err := h.uc.GetDraft(c.Context(), userID, id)
	if err != nil {
		return mapAssessmentUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewDraftResponse(draft))
}

func (h *AssessmentHandler) SaveStep(c fiber.Ctx) error {
	userID, id, err := currentUserAndAssessmentID(c)
	if err != nil {
		return err
	}

	step, err := strconv.Atoi(c.Params("stepNumber"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Invalid step number", nil, err)
	}

	var req saveStepRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	a, err := h.uc.SaveStep(c.Context(), userID, id, step, req.Data)
	if err != nil {
		return mapAssessmentUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewAssessmentResponse(a))
}

func (h *AssessmentHandler) AutoSave(c fiber.Ctx) error {
	userID, id, err := currentUserAndAssessmentID(c)
	if err != nil {
		return err
	}

	var req autoSaveRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	draft, err := h.uc.AutoSave(c.Context(), userID, id, req.Step, req.Data)
	if err != nil {
		return mapAssessmentUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewDraftResponse(draft))
}

func (h *AssessmentHandler) Progress(c fiber.Ctx) error {
	userID, id, err := currentUserAndAssessmentID(c)
	if err != nil {
		return err
	}

	report, err := h.uc.Progress(c.Context(), userID, id)
	if err != nil {
		return mapAssessmentUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, report)
}

func (h *AssessmentHandler) Submit(c fiber.Ctx) error {
	userID, id, err := currentUserAndAssessmentID(c)
	if err != nil {
		return err
	}

	a, err := h.uc.Submit(c.Context(), userID, id)
	if err != nil {
		return mapAssessmentUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewAssessmentResponse(a))
}

func (h *AssessmentHandler) Review(c fiber.Ctx) error {
	userID, id, err := currentUserAndAssessmentID(c)
	if err != nil {
		return err
	}

	a, err := h.uc.Review(c.Context(), userID, id)
	if err != nil {
		return mapAssessmentUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewAssessmentResponse(a))
}

func (h *AssessmentHandler) Complete(c fiber.Ctx) error {
	userID, id, err := currentUserAndAssessmentID(c)
	if err != nil {
		return err
	}

	a, err := h.uc.Complete(c.Context(), userID, id)
	if err != nil {
		return mapAssessmentUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewAssessmentResponse(a))
}

func (h *AssessmentHandler) Archive(c fiber.Ctx) error {
	userID, id, err := currentUserAndAssessmentID(c)
	if err != nil {
		return err
	}

	a, err := h.uc.Archive(c.Context(), userID, id)
	if err != nil {
		return mapAssessmentUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewAssessmentResponse(a))
}

func (h *AssessmentHandler) ExtractCompetencies(c fiber.Ctx) error {
	userID, id, err := currentUserAndAssessmentID(c)
	if err != nil {
		return err
	}

	items, err := h.uc.ExtractCompetencies(c.Context(), userID, id)
	if err != nil {
		return mapAssessmentUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewCompetencyListResponse(items))
}

func (h *AssessmentHandler) ListCompetencies(c fiber.Ctx) error {
	userID, id, err := currentUserAndAssessmentID(c)
	if err != nil {
		return err
	}

	items, err := h.uc.ListCompetencies(c.Context(), userID, id)
	if err != nil {
		return mapAssessmentUsecaseError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewCompetencyListResponse(items))
}

func currentUserID(c fiber.Ctx) (uuid.UUID, error) {
	userID, ok := c.Locals(middleware.CtxUserIDKey).(uuid.UUID)
	if !ok {
		return uuid.Nil, middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}
	return userID, nil
}

func currentUserAndAssessmentID(c fiber.Ctx) (uuid.UUID, uuid.UUID, error) {
	userID, err := currentUserID(c)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, middleware.NewAppError(fiber.StatusBadRequest, "Invalid assessment id", nil, err)
	}
	return userID, id, nil
}

func mapAssessmentUsecaseError(err error) error {
	if err == nil {
		return nil
	}

	var vErr *usecase.ValidationError
	if errors.As(err, &vErr) {
		data := map[string]any{"valid": false, "errors": vErr.Messages}
		return middleware.NewAppError(fiber.StatusUnprocessableEntity, "Step validation failed", data, err)
	}

	var incErr *usecase.IncompleteError
	if errors.As(err, &incErr) {
		return middleware.NewAppError(fiber.StatusUnprocessableEntity, incErr.Error(), nil, err)
	}

	switch {
	case errors.Is(err, usecase.ErrAssessmentNotFound):
		return middleware.NewAppError(fiber.StatusNotFound, "Assessment not found", nil, err)
	case errors.Is(err, usecase.ErrNotOwner):
		return middleware.NewAppError(fiber.StatusForbidden, "Forbidden", nil, err)
	case errors.Is(err, usecase.ErrInvalidInput):
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	case errors.Is(err, usecase.ErrInvalidStatusTransition):
		return middleware.NewAppError(fiber.StatusConflict, "Invalid status transition", nil, err)
	default:
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
}
