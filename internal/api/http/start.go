package http

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/fx"

	"github.com/bajehapp/bajeh_backend/config"
	"github.com/bajehapp/bajeh_backend/internal/api/http/router"
	"github.com/bajehapp/bajeh_backend/internal/app"
)

func Start(cfg *config.Config, timeout time.Duration) {
	fx.New(
		fx.Supply(cfg),
		app.InfraModule,
		app.ServiceModule,
		app.WorkerModule,
		router.Module,
		Module,

		// invoking *fiber.App forces construction, which registers the
		// lifecycle hooks that listen and shut down
		fx.Invoke(func(*fiber.App) {}),

		fx.StopTimeout(timeout),
	).Run()
}
