package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/bajehapp/bajeh_backend/internal/api/http/handler"
	"github.com/bajehapp/bajeh_backend/pkg/authorize"
)

func (r *Router) registerEventRoutes(
	api fiber.Router,
	eh *handler.EventsHandler,
	callerRequired fiber.Handler,
	requirePerm func(authorize.Resource, authorize.Action) fiber.Handler,
) {
	api.Get("/events", eh.Stream, callerRequired, requirePerm(authorize.ResourceEvents, authorize.ActionRead))
}
