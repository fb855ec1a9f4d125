package routes

import (
	"bilanpro/internal/config"
	"bilanpro/internal/database"
	v1 "bilanpro/internal/delivery/http/routes/v1"
	"bilanpro/internal/usecase"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

func RegisterV1(r fiber.Router, cfg config.Config, db database.DB, cache usecase.ProgressCache, log *zap.Logger) {
	if r == nil {
		return
	}

	v1.Register(r, cfg, db, cache, log)
}
