package queue

import (
	"testing"
	"time"

	"github.com/bajehapp/bajeh_backend/internal/ticket"
)

func wt(id string, prio ticket.PriorityClass, issuedAt time.Time) *ticket.Ticket {
	return &ticket.Ticket{
		ID:            id,
		PriorityClass: prio,
		Status:        ticket.StatusWaiting,
		IssuedAt:      issuedAt,
	}
}

func TestSelectNext(t *testing.T) {
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	t.Run("empty", func(t *testing.T) {
		if got := SelectNext(nil); got != nil {
			t.Fatalf("empty queue: got %v, want nil", got)
		}
	})

	t.Run("fifo within a class", func(t *testing.T) {
		got := SelectNext([]*ticket.Ticket{
			wt("b", ticket.PriorityNormal, base.Add(time.Minute)),
			wt("a", ticket.PriorityNormal, base),
		})
		if got.ID != "a" {
			t.Fatalf("got %s, want a", got.ID)
		}
	})

	t.Run("vip preempts older normal", func(t *testing.T) {
		got := SelectNext([]*ticket.Ticket{
			wt("old-normal", ticket.PriorityNormal, base),
			wt("vip", ticket.PriorityVIP, base.Add(time.Hour)),
			wt("elevated", ticket.PriorityElevated, base.Add(30*time.Minute)),
		})
		if got.ID != "vip" {
			t.Fatalf("got %s, want vip", got.ID)
		}
	})

	t.Run("elevated beats normal", func(t *testing.T) {
		got := SelectNext([]*ticket.Ticket{
			wt("normal", ticket.PriorityNormal, base),
			wt("elevated", ticket.PriorityElevated, base.Add(time.Hour)),
		})
		if got.ID != "elevated" {
			t.Fatalf("got %s, want elevated", got.ID)
		}
	})

	t.Run("id breaks exact timestamp ties", func(t *testing.T) {
		got := SelectNext([]*ticket.Ticket{
			wt("t2", ticket.PriorityNormal, base),
			wt("t1", ticket.PriorityNormal, base),
		})
		if got.ID != "t1" {
			t.Fatalf("got %s, want t1", got.ID)
		}
	})
}

func TestOrder(t *testing.T) {
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	got := Order([]*ticket.Ticket{
		wt("n1", ticket.PriorityNormal, base),
		wt("v1", ticket.PriorityVIP, base.Add(2*time.Hour)),
		wt("e1", ticket.PriorityElevated, base.Add(time.Hour)),
		wt("n2", ticket.PriorityNormal, base.Add(time.Minute)),
	})
	want := []string{"v1", "e1", "n1", "n2"}
	for i, w := range want {
		if got[i].ID != w {
			t.Fatalf("position %d: got %s, want %s", i, got[i].ID, w)
		}
	}
}

func TestEstimate(t *testing.T) {
	cases := []struct {
		name    string
		waiting int
		avg     float64
		want    int
	}{
		{"empty queue", 0, 5, 0},
		{"single ticket", 1, 5, 5},
		{"three deep", 3, 5, 15},
		{"fractional average rounds up", 2, 4.5, 9},
		{"sub-minute average rounds up", 3, 1.2, 4},
		{"negative count clamps", -2, 5, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Estimate(c.waiting, c.avg); got != c.want {
				t.Fatalf("Estimate(%d, %v) = %d, want %d", c.waiting, c.avg, got, c.want)
			}
		})
	}
}
