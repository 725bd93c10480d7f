package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/bajehapp/bajeh_backend/internal/api/http/middleware"
	"github.com/bajehapp/bajeh_backend/internal/service/dispatch"
	"github.com/bajehapp/bajeh_backend/internal/ticket"
)

type DispatchHandler struct {
	svc dispatch.Service
}

func NewDispatchHandler(svc dispatch.Service) *DispatchHandler {
	return &DispatchHandler{svc: svc}
}

func mapDispatchError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, dispatch.ErrValidation):
		return badRequest(c, err.Error())
	case errors.Is(err, dispatch.ErrNotFound):
		return notFound(c, err.Error())
	case errors.Is(err, dispatch.ErrUnauthorized):
		return forbidden(c)
	case errors.Is(err, dispatch.ErrInvalidTransition):
		return conflict(c, err.Error())
	case errors.Is(err, dispatch.ErrEmptyQueue):
		return notFound(c, err.Error())
	case errors.Is(err, dispatch.ErrAllocationConflict):
		return conflict(c, err.Error())
	default:
		return internalError(c)
	}
}

// POST /tickets
func (h *DispatchHandler) Issue(c fiber.Ctx) error {
	caller, callerOK := middleware.CallerFromFiber(c)
	if !callerOK {
		return unauthorized(c)
	}

	var body struct {
		ServiceType string `json:"service_type"`
		Notes       string `json:"notes"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if body.ServiceType == "" {
		return badRequest(c, "service_type is required")
	}

	t, err := h.svc.Issue(c.Context(), dispatch.IssueRequest{
		Caller:      caller,
		ServiceType: ticket.ServiceType(body.ServiceType),
		Notes:       body.Notes,
	})
	if err != nil {
		return mapDispatchError(c, err)
	}

	return created(c, t)
}

// POST /queue/call-next
func (h *DispatchHandler) CallNext(c fiber.Ctx) error {
	caller, callerOK := middleware.CallerFromFiber(c)
	if !callerOK {
		return unauthorized(c)
	}

	var body struct {
		Counter string `json:"counter"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	t, err := h.svc.CallNext(c.Context(), dispatch.CallNextRequest{
		Caller:  caller,
		Counter: body.Counter,
	})
	if err != nil {
		return mapDispatchError(c, err)
	}

	return ok(c, t)
}

// POST /tickets/:id/call
func (h *DispatchHandler) CallTicket(c fiber.Ctx) error {
	caller, callerOK := middleware.CallerFromFiber(c)
	if !callerOK {
		return unauthorized(c)
	}

	var body struct {
		Counter string `json:"counter"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	t, err := h.svc.CallTicket(c.Context(), dispatch.CallTicketRequest{
		Caller:   caller,
		TicketID: c.Params("id"),
		Counter:  body.Counter,
	})
	if err != nil {
		return mapDispatchError(c, err)
	}

	return ok(c, t)
}

// POST /tickets/:id/complete
func (h *DispatchHandler) Complete(c fiber.Ctx) error {
	caller, callerOK := middleware.CallerFromFiber(c)
	if !callerOK {
		return unauthorized(c)
	}

	t, err := h.svc.Complete(c.Context(), caller, c.Params("id"))
	if err != nil {
		return mapDispatchError(c, err)
	}

	return ok(c, t)
}

// POST /tickets/:id/cancel
func (h *DispatchHandler) Cancel(c fiber.Ctx) error {
	caller, callerOK := middleware.CallerFromFiber(c)
	if !callerOK {
		return unauthorized(c)
	}

	t, err := h.svc.Cancel(c.Context(), caller, c.Params("id"))
	if err != nil {
		return mapDispatchError(c, err)
	}

	return ok(c, t)
}

// PATCH /tickets/:id/status
func (h *DispatchHandler) UpdateStatus(c fiber.Ctx) error {
	caller, callerOK := middleware.CallerFromFiber(c)
	if !callerOK {
		return unauthorized(c)
	}

	var body struct {
		Status  string `json:"status"`
		Counter string `json:"counter"`
		Notes   string `json:"notes"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if body.Status == "" {
		return badRequest(c, "status is required")
	}

	t, err := h.svc.UpdateStatus(c.Context(), dispatch.UpdateStatusRequest{
		Caller:   caller,
		TicketID: c.Params("id"),
		Status:   ticket.Status(body.Status),
		Counter:  body.Counter,
		Notes:    body.Notes,
	})
	if err != nil {
		return mapDispatchError(c, err)
	}

	return ok(c, t)
}

// GET /tickets/:id
func (h *DispatchHandler) Get(c fiber.Ctx) error {
	caller, callerOK := middleware.CallerFromFiber(c)
	if !callerOK {
		return unauthorized(c)
	}

	t, err := h.svc.Get(c.Context(), caller, c.Params("id"))
	if err != nil {
		return mapDispatchError(c, err)
	}

	return ok(c, t)
}

// GET /tickets/number/:number
func (h *DispatchHandler) GetByNumber(c fiber.Ctx) error {
	caller, callerOK := middleware.CallerFromFiber(c)
	if !callerOK {
		return unauthorized(c)
	}

	t, err := h.svc.GetByNumber(c.Context(), caller, c.Params("number"))
	if err != nil {
		return mapDispatchError(c, err)
	}

	return ok(c, t)
}

// GET /tickets
func (h *DispatchHandler) List(c fiber.Ctx) error {
	caller, callerOK := middleware.CallerFromFiber(c)
	if !callerOK {
		return unauthorized(c)
	}

	var q struct {
		Status string `query:"status"`
		Limit  int    `query:"limit"`
	}
	if err := c.Bind().Query(&q); err != nil {
		return badRequest(c, "invalid query parameters")
	}

	req := dispatch.ListRequest{
		Caller: caller,
		Limit:  q.Limit,
	}
	if q.Status != "" {
		st := ticket.Status(q.Status)
		req.Status = &st
	}

	tickets, err := h.svc.List(c.Context(), req)
	if err != nil {
		return mapDispatchError(c, err)
	}

	return ok(c, tickets)
}

// GET /queue
func (h *DispatchHandler) Queue(c fiber.Ctx) error {
	caller, callerOK := middleware.CallerFromFiber(c)
	if !callerOK {
		return unauthorized(c)
	}

	entries, err := h.svc.QueueSnapshot(c.Context(), caller)
	if err != nil {
		return mapDispatchError(c, err)
	}

	return ok(c, entries)
}
