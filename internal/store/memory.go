package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/bajehapp/bajeh_backend/internal/ticket"
)

// Memory is an in-process TicketStore used in development and tests. A single
// mutex serializes all writes, which trivially satisfies the atomicity
// contract; reads hand out clones so callers cannot mutate stored state.
type Memory struct {
	mu        sync.RWMutex
	tickets   map[string]*ticket.Ticket
	byNumber  map[string]string // number -> id
}

func NewMemory() *Memory {
	return &Memory{
		tickets:  make(map[string]*ticket.Ticket),
		byNumber: make(map[string]string),
	}
}

func (m *Memory) Insert(ctx context.Context, t *ticket.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, taken := m.byNumber[t.Number]; taken {
		return ErrDuplicateNumber
	}
	m.tickets[t.ID] = t.Clone()
	m.byNumber[t.Number] = t.ID
	return nil
}

func (m *Memory) Get(ctx context.Context, id string) (*ticket.Ticket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.tickets[id]
	if !ok {
		return nil, ErrNotFound
	}
	return t.Clone(), nil
}

func (m *Memory) GetByNumber(ctx context.Context, number string) (*ticket.Ticket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byNumber[number]
	if !ok {
		return nil, ErrNotFound
	}
	return m.tickets[id].Clone(), nil
}

func (m *Memory) ListByStatus(ctx context.Context, status ticket.Status) ([]*ticket.Ticket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*ticket.Ticket
	for _, t := range m.tickets {
		if t.Status == status {
			out = append(out, t.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].IssuedAt.Equal(out[j].IssuedAt) {
			return out[i].IssuedAt.Before(out[j].IssuedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *Memory) ListByOwner(ctx context.Context, ownerID string, status *ticket.Status, limit int) ([]*ticket.Ticket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*ticket.Ticket
	for _, t := range m.tickets {
		if t.OwnerID != ownerID {
			continue
		}
		if status != nil && t.Status != *status {
			continue
		}
		out = append(out, t.Clone())
	}
	// newest first, the order a customer reads their history in
	sort.Slice(out, func(i, j int) bool {
		if !out[i].IssuedAt.Equal(out[j].IssuedAt) {
			return out[i].IssuedAt.After(out[j].IssuedAt)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) MaxSequenceForDate(ctx context.Context, prefix string, day time.Time) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	day = ticket.DayKey(day)
	max := 0
	for _, t := range m.tickets {
		d, seq, err := ticket.ParseNumber(prefix, t.Number)
		if err != nil {
			continue
		}
		if d.Equal(day) && seq > max {
			max = seq
		}
	}
	return max, nil
}

func (m *Memory) Update(ctx context.Context, id string, mutate func(*ticket.Ticket) error) (*ticket.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.tickets[id]
	if !ok {
		return nil, ErrNotFound
	}

	next := cur.Clone()
	if err := mutate(next); err != nil {
		return nil, err
	}
	m.tickets[id] = next
	return next.Clone(), nil
}
