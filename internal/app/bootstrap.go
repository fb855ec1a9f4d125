package app

import (
	"fmt"
	"strings"

	"bilanpro/internal/config"
	"bilanpro/internal/delivery/http/middleware"
	"bilanpro/internal/delivery/http/routes"
	"bilanpro/internal/infrastructure/cache"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

type App struct {
	Fiber *fiber.App
	Log   *zap.Logger
}

func New(cfg config.Config, c *Container, log *zap.Logger) *App {
	if log == nil {
		log = zap.NewNop()
	}

	f := fiber.New(fiber.Config{AppName: cfg.App.AppName})

	registerGlobalMiddleware(f, log)

	redisCache := cache.NewRedis(log)
	registry := routes.NewRegistry(cfg, c.DB, redisCache, log)
	registry.Register(f)

	return &App{Fiber: f, Log: log}
}

func Bootstrap(cfg config.Config, log *zap.Logger) (*App, func() error, error) {
	c, err := NewContainer(cfg)
	if err != nil {
		return nil, nil, err
	}

	app := New(cfg, c, log)
	return app, c.Close, nil
}

func registerGlobalMiddleware(app *fiber.App, log *zap.Logger) {
	if app == nil {
		return
	}

	app.Use(middleware.NewErrorMiddleware(log).Middleware())
	app.Use(middleware.NewAccessLogMiddleware(log).Middleware())
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
