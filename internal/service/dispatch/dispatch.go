// Package dispatch is the branch ticketing engine: it issues numbered
// tickets, runs the priority queue, applies status transitions, and fans
// lifecycle events out to the consoles and the ticket owner.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/bajehapp/bajeh_backend/config"
	"github.com/bajehapp/bajeh_backend/internal/fanout"
	"github.com/bajehapp/bajeh_backend/internal/identity"
	"github.com/bajehapp/bajeh_backend/internal/queue"
	"github.com/bajehapp/bajeh_backend/internal/store"
	"github.com/bajehapp/bajeh_backend/internal/ticket"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type IssueRequest struct {
	Caller      identity.Account
	ServiceType ticket.ServiceType
	Notes       string
}

type CallNextRequest struct {
	Caller  identity.Account
	Counter string
}

type CallTicketRequest struct {
	Caller   identity.Account
	TicketID string
	Counter  string
}

type UpdateStatusRequest struct {
	Caller   identity.Account
	TicketID string
	Status   ticket.Status
	Counter  string
	Notes    string
}

type ListRequest struct {
	Caller identity.Account
	Status *ticket.Status
	Limit  int
}

// QueueEntry is one waiting ticket in dispatch order plus its live wait
// estimate based on position.
type QueueEntry struct {
	Ticket              *ticket.Ticket `json:"ticket"`
	Position            int            `json:"position"`
	EstimatedWaitMinute int            `json:"estimated_wait_minutes"`
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	Issue(ctx context.Context, req IssueRequest) (*ticket.Ticket, error)
	CallNext(ctx context.Context, req CallNextRequest) (*ticket.Ticket, error)
	CallTicket(ctx context.Context, req CallTicketRequest) (*ticket.Ticket, error)
	Complete(ctx context.Context, caller identity.Account, ticketID string) (*ticket.Ticket, error)
	Cancel(ctx context.Context, caller identity.Account, ticketID string) (*ticket.Ticket, error)
	UpdateStatus(ctx context.Context, req UpdateStatusRequest) (*ticket.Ticket, error)
	Get(ctx context.Context, caller identity.Account, ticketID string) (*ticket.Ticket, error)
	GetByNumber(ctx context.Context, caller identity.Account, number string) (*ticket.Ticket, error)
	List(ctx context.Context, req ListRequest) ([]*ticket.Ticket, error)
	QueueSnapshot(ctx context.Context, caller identity.Account) ([]QueueEntry, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type dispatchService struct {
	store     store.TicketStore
	publisher fanout.Publisher
	priority  identity.PriorityPolicy
	averages  *queue.Averages
	logger    *slog.Logger

	numberPrefix string
	retries      int
	notesMax     int

	now   func() time.Time
	newID func() string
}

func New(st store.TicketStore, pub fanout.Publisher, policy identity.PriorityPolicy, avgs *queue.Averages, cfg config.TicketingConfig, logger *slog.Logger) Service {
	if policy == nil {
		policy = identity.DefaultPriorityPolicy
	}
	if logger == nil {
		logger = slog.Default()
	}
	prefix := cfg.NumberPrefix
	if prefix == "" {
		prefix = "TKN"
	}
	retries := cfg.AllocatorRetries
	if retries <= 0 {
		retries = 5
	}
	notesMax := cfg.NotesMaxLength
	if notesMax <= 0 {
		notesMax = 500
	}
	if avgs == nil {
		avgs = queue.NewAverages(nil, float64(cfg.AverageServiceMinutes))
	}
	return &dispatchService{
		store:        st,
		publisher:    pub,
		priority:     policy,
		averages:     avgs,
		logger:       logger,
		numberPrefix: prefix,
		retries:      retries,
		notesMax:     notesMax,
		now:          time.Now,
		newID:        func() string { return uuid.NewString() },
	}
}

func isStaff(a identity.Account) bool {
	return a.Role == identity.RoleStaff || a.Role == identity.RoleAdmin
}

// Issue allocates the next sequence number for today, persists the ticket as
// waiting and announces it. Two nodes issuing at once race on the number;
// the loser's insert hits the unique index and we re-read the maximum and
// try again.
func (s *dispatchService) Issue(ctx context.Context, req IssueRequest) (*ticket.Ticket, error) {
	if !req.ServiceType.Valid() {
		return nil, fmt.Errorf("%w: unknown service type %q", ErrValidation, req.ServiceType)
	}
	if len(req.Notes) > s.notesMax {
		return nil, fmt.Errorf("%w: notes exceed %d characters", ErrValidation, s.notesMax)
	}

	now := s.now().UTC()
	avg := s.averages.Average(ctx, string(req.ServiceType))

	for attempt := 0; attempt < s.retries; attempt++ {
		max, err := s.store.MaxSequenceForDate(ctx, s.numberPrefix, now)
		if err != nil {
			return nil, fmt.Errorf("allocate ticket number: %w", err)
		}

		waiting, err := s.store.ListByStatus(ctx, ticket.StatusWaiting)
		if err != nil {
			return nil, fmt.Errorf("estimate wait: %w", err)
		}

		t := &ticket.Ticket{
			ID:            s.newID(),
			Number:        ticket.FormatNumber(s.numberPrefix, now, max+1),
			OwnerID:       req.Caller.ID,
			ServiceType:   req.ServiceType,
			PriorityClass: s.priority(req.Caller),
			Status:        ticket.StatusWaiting,
			IssuedAt:      now,
			// the new ticket is part of its own queue
			EstimatedWaitMinutes: queue.Estimate(len(waiting)+1, avg),
			Notes:                req.Notes,
		}

		err = s.store.Insert(ctx, t)
		if errors.Is(err, store.ErrDuplicateNumber) {
			s.logger.Debug("ticket number taken, retrying", "number", t.Number, "attempt", attempt+1)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("issue ticket: %w", err)
		}

		s.publish(ctx, fanout.EventTicketIssued, t, fanout.Consoles()...)
		s.logger.Info("ticket issued",
			"ticket_id", t.ID, "number", t.Number,
			"service_type", string(t.ServiceType), "priority", string(t.PriorityClass))
		return t, nil
	}
	return nil, ErrAllocationConflict
}

// CallNext claims the highest-priority waiting ticket for a counter. The
// claim is a conditional transition inside store.Update: if another staff
// member grabbed the same ticket first the snapshot is refreshed and the
// next candidate is tried. Contention never fails the caller; the only
// terminal outcome besides a claim is a genuinely empty queue. A ticket
// whose claim is lost has left waiting for good (nothing transitions back),
// so it is skipped even when a stale snapshot still lists it.
func (s *dispatchService) CallNext(ctx context.Context, req CallNextRequest) (*ticket.Ticket, error) {
	if !isStaff(req.Caller) {
		return nil, ErrUnauthorized
	}
	if req.Counter == "" {
		return nil, fmt.Errorf("%w: counter is required", ErrValidation)
	}

	lost := make(map[string]struct{})
	for {
		waiting, err := s.store.ListByStatus(ctx, ticket.StatusWaiting)
		if err != nil {
			return nil, fmt.Errorf("call next: %w", err)
		}
		candidates := waiting[:0:0]
		for _, t := range waiting {
			if _, gone := lost[t.ID]; !gone {
				candidates = append(candidates, t)
			}
		}
		next := queue.SelectNext(candidates)
		if next == nil {
			return nil, ErrEmptyQueue
		}

		claimed, err := s.claim(ctx, next.ID, req.Caller.ID, req.Counter)
		if errors.Is(err, errClaimLost) {
			lost[next.ID] = struct{}{}
			continue
		}
		if err != nil {
			return nil, err
		}
		return claimed, nil
	}
}

// CallTicket calls one specific waiting ticket out of dispatch order.
func (s *dispatchService) CallTicket(ctx context.Context, req CallTicketRequest) (*ticket.Ticket, error) {
	if !isStaff(req.Caller) {
		return nil, ErrUnauthorized
	}
	if req.Counter == "" {
		return nil, fmt.Errorf("%w: counter is required", ErrValidation)
	}
	claimed, err := s.claim(ctx, req.TicketID, req.Caller.ID, req.Counter)
	if errors.Is(err, errClaimLost) {
		return nil, ErrInvalidTransition
	}
	return claimed, err
}

// errClaimLost signals that the candidate left waiting between snapshot and
// claim; CallNext retries, CallTicket reports the transition failure.
var errClaimLost = errors.New("claim lost")

func (s *dispatchService) claim(ctx context.Context, ticketID, staffID, counter string) (*ticket.Ticket, error) {
	claimed, err := s.store.Update(ctx, ticketID, func(t *ticket.Ticket) error {
		if t.Status != ticket.StatusWaiting {
			return errClaimLost
		}
		now := s.now().UTC()
		t.Status = ticket.StatusInProgress
		t.ServingCounter = counter
		t.ServedBy = staffID
		t.CalledAt = &now
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	// the owner hears their number; the consoles see the queue move
	s.publish(ctx, fanout.EventTicketCalled, claimed, fanout.AudienceOwner(claimed.OwnerID))
	s.publish(ctx, fanout.EventTicketUpdated, claimed, fanout.Consoles()...)
	s.logger.Info("ticket called",
		"ticket_id", claimed.ID, "number", claimed.Number,
		"counter", counter, "staff_id", staffID)
	return claimed, nil
}

// Complete closes out an in-progress ticket and feeds its service duration
// into the rolling average.
func (s *dispatchService) Complete(ctx context.Context, caller identity.Account, ticketID string) (*ticket.Ticket, error) {
	return s.UpdateStatus(ctx, UpdateStatusRequest{
		Caller:   caller,
		TicketID: ticketID,
		Status:   ticket.StatusCompleted,
	})
}

// Cancel withdraws a waiting ticket. Only the owner may cancel; staff
// tooling goes through UpdateStatus, which enumerates its own transitions.
func (s *dispatchService) Cancel(ctx context.Context, caller identity.Account, ticketID string) (*ticket.Ticket, error) {
	current, err := s.store.Get(ctx, ticketID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if current.OwnerID != caller.ID {
		return nil, ErrUnauthorized
	}

	updated, err := s.store.Update(ctx, ticketID, func(t *ticket.Ticket) error {
		if !ticket.CanTransition(t.Status, ticket.StatusCancelled) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, t.Status, ticket.StatusCancelled)
		}
		t.Status = ticket.StatusCancelled
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	s.publish(ctx, fanout.EventTicketUpdated, updated, fanout.Everyone(updated)...)
	s.logger.Info("ticket cancelled", "ticket_id", updated.ID, "number", updated.Number, "by", caller.ID)
	return updated, nil
}

// UpdateStatus applies one staff-driven transition under the transition
// matrix. The check runs inside the store mutator, so a concurrent change
// cannot slip a ticket past a stale check.
func (s *dispatchService) UpdateStatus(ctx context.Context, req UpdateStatusRequest) (*ticket.Ticket, error) {
	if !isStaff(req.Caller) {
		return nil, ErrUnauthorized
	}
	if !req.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, req.Status)
	}
	if req.Status == ticket.StatusInProgress && req.Counter == "" {
		return nil, fmt.Errorf("%w: counter is required to start serving", ErrValidation)
	}
	if len(req.Notes) > s.notesMax {
		return nil, fmt.Errorf("%w: notes exceed %d characters", ErrValidation, s.notesMax)
	}

	var completedNow bool
	updated, err := s.store.Update(ctx, req.TicketID, func(t *ticket.Ticket) error {
		if !ticket.CanTransition(t.Status, req.Status) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, t.Status, req.Status)
		}
		now := s.now().UTC()
		t.Status = req.Status
		if req.Notes != "" {
			t.Notes = req.Notes
		}
		switch req.Status {
		case ticket.StatusInProgress:
			t.CalledAt = &now
			t.ServedBy = req.Caller.ID
			t.ServingCounter = req.Counter
		case ticket.StatusCompleted:
			t.CompletedAt = &now
			completedNow = true
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if completedNow && updated.CalledAt != nil && updated.CompletedAt != nil {
		minutes := updated.CompletedAt.Sub(*updated.CalledAt).Minutes()
		if err := s.averages.Observe(ctx, string(updated.ServiceType), minutes); err != nil {
			s.logger.Warn("recording service duration failed", "error", err)
		}
	}

	s.publish(ctx, fanout.EventTicketUpdated, updated, fanout.Everyone(updated)...)
	s.logger.Info("ticket status updated",
		"ticket_id", updated.ID, "number", updated.Number,
		"status", string(updated.Status), "by", req.Caller.ID)
	return updated, nil
}

func (s *dispatchService) Get(ctx context.Context, caller identity.Account, ticketID string) (*ticket.Ticket, error) {
	t, err := s.store.Get(ctx, ticketID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !isStaff(caller) && t.OwnerID != caller.ID {
		return nil, ErrUnauthorized
	}
	return t, nil
}

func (s *dispatchService) GetByNumber(ctx context.Context, caller identity.Account, number string) (*ticket.Ticket, error) {
	t, err := s.store.GetByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !isStaff(caller) && t.OwnerID != caller.ID {
		return nil, ErrUnauthorized
	}
	return t, nil
}

// List returns the caller's own tickets, newest first. Staff pass through to
// a status-wide listing when they supply a status filter without owning the
// tickets; customers only ever see their own.
func (s *dispatchService) List(ctx context.Context, req ListRequest) ([]*ticket.Ticket, error) {
	limit := req.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.store.ListByOwner(ctx, req.Caller.ID, req.Status, limit)
}

// QueueSnapshot returns the waiting queue in dispatch order with per-position
// wait estimates. Staff only.
func (s *dispatchService) QueueSnapshot(ctx context.Context, caller identity.Account) ([]QueueEntry, error) {
	if !isStaff(caller) {
		return nil, ErrUnauthorized
	}
	waiting, err := s.store.ListByStatus(ctx, ticket.StatusWaiting)
	if err != nil {
		return nil, fmt.Errorf("queue snapshot: %w", err)
	}
	queue.Order(waiting)

	entries := make([]QueueEntry, 0, len(waiting))
	for i, t := range waiting {
		entries = append(entries, QueueEntry{
			Ticket:              t,
			Position:            i + 1,
			EstimatedWaitMinute: queue.Estimate(i+1, s.averages.Average(ctx, string(t.ServiceType))),
		})
	}
	return entries, nil
}

func (s *dispatchService) publish(ctx context.Context, kind fanout.EventKind, t *ticket.Ticket, audiences ...fanout.Audience) {
	if s.publisher == nil {
		return
	}
	ev := fanout.Event{Kind: kind, Ticket: t, Timestamp: s.now().UTC()}
	if err := s.publisher.Publish(ctx, ev, audiences...); err != nil {
		s.logger.Warn("fanout publish failed", "event", string(kind), "ticket_id", t.ID, "error", err)
	}
}
