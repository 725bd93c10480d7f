// Package queue holds the dispatch ordering rules: which waiting ticket is
// served next and how long a newly issued ticket can expect to wait.
package queue

import (
	"sort"

	"github.com/bajehapp/bajeh_backend/internal/ticket"
)

// SelectNext picks the ticket to serve from a waiting set. Higher priority
// class wins; within a class the earliest issued ticket wins; ID breaks the
// (unlikely) timestamp tie so the choice is deterministic. Returns nil when
// the set is empty.
func SelectNext(waiting []*ticket.Ticket) *ticket.Ticket {
	if len(waiting) == 0 {
		return nil
	}
	best := waiting[0]
	for _, t := range waiting[1:] {
		if less(t, best) {
			best = t
		}
	}
	return best
}

// Order sorts a waiting set in dispatch order, in place, and returns it.
// The head of the result is what SelectNext would pick.
func Order(waiting []*ticket.Ticket) []*ticket.Ticket {
	sort.SliceStable(waiting, func(i, j int) bool {
		return less(waiting[i], waiting[j])
	})
	return waiting
}

func less(a, b *ticket.Ticket) bool {
	ra, rb := a.PriorityClass.Rank(), b.PriorityClass.Rank()
	if ra != rb {
		return ra > rb
	}
	if !a.IssuedAt.Equal(b.IssuedAt) {
		return a.IssuedAt.Before(b.IssuedAt)
	}
	return a.ID < b.ID
}

// Estimate converts a queue depth into wait minutes. waitingCount includes
// the ticket being estimated for, so a ticket issued into an empty queue
// gets one service slot, not zero.
func Estimate(waitingCount int, avgServiceMinutes float64) int {
	if waitingCount <= 0 {
		return 0
	}
	m := float64(waitingCount) * avgServiceMinutes
	out := int(m)
	if float64(out) < m {
		out++
	}
	return out
}
