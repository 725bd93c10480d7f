package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/bajehapp/bajeh_backend/internal/api/http/middleware"
	"github.com/bajehapp/bajeh_backend/internal/service/board"
)

type BoardHandler struct {
	svc board.Service
}

func NewBoardHandler(svc board.Service) *BoardHandler {
	return &BoardHandler{svc: svc}
}

func mapBoardError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, board.ErrValidation):
		return badRequest(c, err.Error())
	case errors.Is(err, board.ErrNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, board.ErrUnauthorized):
		return forbidden(c)
	case errors.Is(err, board.ErrUnavailable):
		return badGateway(c, err.Error())
	default:
		return internalError(c)
	}
}

// GET /board
func (h *BoardHandler) Snapshot(c fiber.Ctx) error {
	points, err := h.svc.Snapshot(c.Context())
	if err != nil {
		return mapBoardError(c, err)
	}

	return ok(c, points)
}

// PUT /board/:name
func (h *BoardHandler) Update(c fiber.Ctx) error {
	caller, callerOK := middleware.CallerFromFiber(c)
	if !callerOK {
		return unauthorized(c)
	}

	var body struct {
		Status      string `json:"status"`
		QueueLength int    `json:"queue_length"`
		HasCash     bool   `json:"has_cash"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	point, err := h.svc.Update(c.Context(), board.UpdateRequest{
		Caller:      caller,
		Name:        c.Params("name"),
		Status:      board.PointStatus(body.Status),
		QueueLength: body.QueueLength,
		HasCash:     body.HasCash,
	})
	if err != nil {
		return mapBoardError(c, err)
	}

	return ok(c, point)
}

// DELETE /board/:name
func (h *BoardHandler) Remove(c fiber.Ctx) error {
	caller, callerOK := middleware.CallerFromFiber(c)
	if !callerOK {
		return unauthorized(c)
	}

	if err := h.svc.Remove(c.Context(), caller, c.Params("name")); err != nil {
		return mapBoardError(c, err)
	}

	return noContent(c)
}
