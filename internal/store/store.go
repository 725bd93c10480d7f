package store

import (
	"context"
	"errors"
	"time"

	"github.com/bajehapp/bajeh_backend/internal/ticket"
)

var (
	// ErrNotFound is returned when the referenced ticket does not exist.
	ErrNotFound = errors.New("ticket not found")

	// ErrDuplicateNumber is returned by Insert when another ticket already
	// holds the same number. It marks the losing side of a sequence
	// allocation race and is always retryable with a fresh sequence.
	ErrDuplicateNumber = errors.New("ticket number already taken")
)

// TicketStore is the durable record of every ticket ever issued. Tickets are
// never physically deleted; cancellation is a terminal status, not removal.
//
// Update is the atomic unit for all mutations: the mutator runs against the
// current row with writes to that ticket excluded, and an error from the
// mutator aborts the write and is returned unchanged. Writes to different
// tickets proceed in parallel.
type TicketStore interface {
	Insert(ctx context.Context, t *ticket.Ticket) error
	Get(ctx context.Context, id string) (*ticket.Ticket, error)
	GetByNumber(ctx context.Context, number string) (*ticket.Ticket, error)
	ListByStatus(ctx context.Context, status ticket.Status) ([]*ticket.Ticket, error)
	ListByOwner(ctx context.Context, ownerID string, status *ticket.Status, limit int) ([]*ticket.Ticket, error)

	// MaxSequenceForDate returns the highest sequence already committed for
	// tickets issued on the given day, 0 when none. The allocator derives
	// the next candidate from this; uniqueness is enforced by Insert, not
	// by any in-memory counter.
	MaxSequenceForDate(ctx context.Context, prefix string, day time.Time) (int, error)

	Update(ctx context.Context, id string, mutate func(*ticket.Ticket) error) (*ticket.Ticket, error)
}
