package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/bajehapp/bajeh_backend/internal/api/http/handler"
	"github.com/bajehapp/bajeh_backend/pkg/authorize"
)

func (r *Router) registerTicketRoutes(
	api fiber.Router,
	dh *handler.DispatchHandler,
	callerRequired fiber.Handler,
	requirePerm func(authorize.Resource, authorize.Action) fiber.Handler,
) {
	tickets := api.Group("/tickets", callerRequired)

	tickets.Get("/", dh.List, requirePerm(authorize.ResourceTicket, authorize.ActionList))
	tickets.Post("/", dh.Issue, requirePerm(authorize.ResourceTicket, authorize.ActionIssue))
	tickets.Get("/number/:number", dh.GetByNumber, requirePerm(authorize.ResourceTicket, authorize.ActionRead))

	t := tickets.Group("/:id")
	t.Get("/", dh.Get, requirePerm(authorize.ResourceTicket, authorize.ActionRead))
	t.Post("/call", dh.CallTicket, requirePerm(authorize.ResourceTicket, authorize.ActionCall))
	t.Post("/complete", dh.Complete, requirePerm(authorize.ResourceTicket, authorize.ActionComplete))
	t.Post("/cancel", dh.Cancel, requirePerm(authorize.ResourceTicket, authorize.ActionCancel))
	t.Patch("/status", dh.UpdateStatus, requirePerm(authorize.ResourceTicket, authorize.ActionUpdate))

	queue := api.Group("/queue", callerRequired)
	queue.Get("/", dh.Queue, requirePerm(authorize.ResourceQueue, authorize.ActionRead))
	queue.Post("/call-next", dh.CallNext, requirePerm(authorize.ResourceTicket, authorize.ActionCall))
}
