package v1

import (
	"bilanpro/internal/config"
	"bilanpro/internal/database"
	"bilanpro/internal/delivery/http/handler"
	"bilanpro/internal/delivery/http/middleware"
	"bilanpro/internal/pkg/jwt"
	"bilanpro/internal/repository"
	"bilanpro/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

func Register(r fiber.Router, cfg config.Config, db database.DB, cache usecase.ProgressCache, log *zap.Logger) {
	if r == nil {
		return
	}

	jwtSvc := jwt.NewHMACService(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessExpiresIn,
		cfg.JWT.RefreshExpiresIn,
	)

	authMw := middleware.NewAuthMiddleware(jwtSvc)

	userRepo := repository.NewPostgresUserRepository(db)
	assessmentRepo := repository.NewPostgresAssessmentRepository(db)
	draftRepo := repository.NewPostgresDraftRepository(db)
	answerRepo := repository.NewPostgresAnswerRepository(db)
	competencyRepo := repository.NewPostgresCompetencyRepository(db)

	authUC := usecase.NewAuthUsecase(userRepo, jwtSvc)
	userUC := usecase.NewUserUsecase(userRepo)
	assessmentUC := usecase.NewAssessmentService(
		assessmentRepo,
		draftRepo,
		answerRepo,
		competencyRepo,
		usecase.NewProgressCalculator(answerRepo, log),
		cache,
		log,
	)

	authHandler := handler.NewAuthHandler(authUC)
	userHandler := handler.NewUserHandler(userUC)
	assessmentHandler := handler.NewAssessmentHandler(assessmentUC, authMw)
	wizardHandler := handler.NewWizardHandler()

	authGroup := r.Group("/auth")
	authHandler.RegisterRoutes(authGroup)

	protected := r.Group("", authMw.Middleware())

	RegisterUsers(protected.Group("/users"), userHandler)
	RegisterAssessments(protected.Group("/assessments"), assessmentHandler)
	RegisterWizard(protected.Group("/validate"), wizardHandler)
}
