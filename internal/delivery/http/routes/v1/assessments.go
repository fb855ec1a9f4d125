package v1

import (
	"bilanpro/internal/delivery/http/handler"

	"github.com/gofiber/fiber/v3"
)

func RegisterAssessments(r fiber.Router, assessmentHandler *handler.AssessmentHandler) {
	if r == nil {
		return
	}
	if assessmentHandler == nil {
		return
	}

	assessmentHandler.RegisterRoutes(r)
}

func RegisterWizard(r fiber.Router, wizardHandler *handler.WizardHandler) {
	if r == nil {
		return
	}
	if wizardHandler == nil {
		return
	}

	wizardHandler.RegisterRoutes(r)
}
