package handler

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/bajehapp/bajeh_backend/internal/api/http/middleware"
	"github.com/bajehapp/bajeh_backend/internal/fanout"
	"github.com/bajehapp/bajeh_backend/internal/identity"
)

const keepaliveInterval = 15 * time.Second

type EventsHandler struct {
	hub *fanout.Hub
}

func NewEventsHandler(hub *fanout.Hub) *EventsHandler {
	return &EventsHandler{hub: hub}
}

// audiencesFor maps a caller to the event audiences it may listen on.
// Staff consoles also receive admin-only traffic when the caller is an
// admin; customers only ever see their own ticket events.
func audiencesFor(a identity.Account) []fanout.Audience {
	switch a.Role {
	case identity.RoleAdmin:
		return []fanout.Audience{fanout.AudienceAdmin, fanout.AudienceStaff}
	case identity.RoleStaff:
		return []fanout.Audience{fanout.AudienceStaff}
	default:
		return []fanout.Audience{fanout.AudienceOwner(a.ID)}
	}
}

// GET /events, server-sent event stream.
func (h *EventsHandler) Stream(c fiber.Ctx) error {
	caller, callerOK := middleware.CallerFromFiber(c)
	if !callerOK {
		return unauthorized(c)
	}

	sub := h.hub.Subscribe(audiencesFor(caller)...)
	ctx := c.Context()

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	return c.SendStreamWriter(func(w *bufio.Writer) {
		defer h.hub.Unsubscribe(sub)

		keepalive := time.NewTicker(keepaliveInterval)
		defer keepalive.Stop()

		for {
			select {
			case ev, open := <-sub.Events():
				if !open {
					return
				}
				payload, err := json.Marshal(ev)
				if err != nil {
					continue
				}
				if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Kind, payload); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			case <-keepalive.C:
				// comment line keeps intermediaries from closing the stream
				if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					return
				}
			case <-ctx.Done():
				return
			}
		}
	})
}
