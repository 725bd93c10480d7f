package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/bajehapp/bajeh_backend/internal/api/http/handler"
	"github.com/bajehapp/bajeh_backend/pkg/authorize"
)

func (r *Router) registerBoardRoutes(
	api fiber.Router,
	bh *handler.BoardHandler,
	callerRequired fiber.Handler,
	requirePerm func(authorize.Resource, authorize.Action) fiber.Handler,
) {
	board := api.Group("/board", callerRequired)

	board.Get("/", bh.Snapshot, requirePerm(authorize.ResourceBoard, authorize.ActionRead))
	board.Put("/:name", bh.Update, requirePerm(authorize.ResourceBoard, authorize.ActionUpdate))
	board.Delete("/:name", bh.Remove, requirePerm(authorize.ResourceBoard, authorize.ActionManage))
}
