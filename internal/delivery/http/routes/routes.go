package routes

import (
	"bilanpro/internal/config"
	"bilanpro/internal/database"
	"bilanpro/internal/delivery/http/handler"
	"bilanpro/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

type Registry struct {
	cfg   config.Config
	db    database.DB
	cache usecase.ProgressCache
	log   *zap.Logger

	health *handler.HealthHandler
}

func NewRegistry(cfg config.Config, db database.DB, cache usecase.ProgressCache, log *zap.Logger) *Registry {
	return &Registry{
		cfg:    cfg,
		db:     db,
		cache:  cache,
		log:    log,
		health: handler.NewHealthHandler(db),
	}
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	r.registerHealth(app)
	r.registerAPI(app)
}

func (r *Registry) registerHealth(app *fiber.App) {
	r.health.RegisterRoutes(app)
}

func (r *Registry) registerAPI(app *fiber.App) {
	api := app.Group("/api")
	RegisterV1(api.Group("/v1"), r.cfg, r.db, r.cache, r.log)
}
