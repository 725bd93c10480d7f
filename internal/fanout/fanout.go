// Package fanout delivers ticket lifecycle events to the audiences that care
// about them: the staff console, the admin console, and the ticket's owner.
package fanout

import (
	"context"
	"time"

	"github.com/bajehapp/bajeh_backend/internal/ticket"
)

// EventKind names a lifecycle event on the wire.
type EventKind string

const (
	EventTicketIssued  EventKind = "ticket_issued"
	EventTicketCalled  EventKind = "ticket_called"
	EventTicketUpdated EventKind = "ticket_updated"
	EventBoardUpdated  EventKind = "board_updated"
)

// Audience identifies a delivery target. Staff and admin are broadcast
// rooms; owners get a private room keyed by account ID.
type Audience string

const (
	AudienceStaff Audience = "staff"
	AudienceAdmin Audience = "admin"
)

func AudienceOwner(ownerID string) Audience {
	return Audience("customer_" + ownerID)
}

// Event is one fan-out message. Ticket is nil for board events.
type Event struct {
	Kind      EventKind      `json:"event"`
	Ticket    *ticket.Ticket `json:"ticket,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Publisher pushes one event to a set of audiences. Implementations must
// not block dispatch: slow consumers are the publisher's problem.
type Publisher interface {
	Publish(ctx context.Context, ev Event, audiences ...Audience) error
}

// Multi fans one publish out to several publishers (in-process hub plus
// NATS, typically). The first error wins but every publisher still runs.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, ev Event, audiences ...Audience) error {
	var firstErr error
	for _, p := range m {
		if err := p.Publish(ctx, ev, audiences...); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Consoles is the broadcast audience pair for staff-facing events.
func Consoles() []Audience {
	return []Audience{AudienceStaff, AudienceAdmin}
}

// Everyone returns both consoles plus the ticket owner's private room, the
// audience set for ticket_updated events.
func Everyone(t *ticket.Ticket) []Audience {
	return []Audience{AudienceStaff, AudienceAdmin, AudienceOwner(t.OwnerID)}
}
