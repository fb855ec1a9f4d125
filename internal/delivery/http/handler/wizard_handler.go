package handler

import (
	"bilanpro/internal/delivery/http/dto"
	"bilanpro/internal/delivery/http/middleware"
	"bilanpro/internal/domain/wizard"
	"bilanpro/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
)

// WizardHandler exposes stateless validation so the client can check a step
// or a competency list without touching any stored assessment.
type WizardHandler struct{}

type validateStepRequest struct {
	Step int            `json:"step"`
	Data map[string]any `json:"data"`
}

type validateCompetenciesRequest struct {
	Competencies []map[string]any `json:"competencies"`
}

func NewWizardHandler() *WizardHandler {
	return &WizardHandler{}
}

func (h *WizardHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Post("/step", h.ValidateStep)
	r.Post("/competencies", h.ValidateCompetencies)
}

func (h *WizardHandler) ValidateStep(c fiber.Ctx) error {
	var req validateStepRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	res := wizard.ValidateStep(req.Step, req.Data)
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.ValidationResponse{Valid: res.Valid, Errors: res.Errors})
}

func (h *WizardHandler) ValidateCompetencies(c fiber.Ctx) error {
	var req validateCompetenciesRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	res := wizard.ValidateCompetencies(req.Competencies)
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.ValidationResponse{Valid: res.Valid, Errors: res.Errors})
}
