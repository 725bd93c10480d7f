package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bajehapp/bajeh_backend/config"
	"github.com/bajehapp/bajeh_backend/internal/fanout"
	"github.com/bajehapp/bajeh_backend/internal/identity"
	"github.com/bajehapp/bajeh_backend/internal/queue"
	"github.com/bajehapp/bajeh_backend/internal/store"
	"github.com/bajehapp/bajeh_backend/internal/ticket"
)

// capturePublisher records published events for assertions.
type capturePublisher struct {
	mu     sync.Mutex
	events []fanout.Event
	rooms  [][]fanout.Audience
}

func (p *capturePublisher) Publish(_ context.Context, ev fanout.Event, audiences ...fanout.Audience) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	p.rooms = append(p.rooms, audiences)
	return nil
}

func (p *capturePublisher) last(t *testing.T) (fanout.Event, []fanout.Audience) {
	t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.events) == 0 {
		t.Fatal("no events published")
	}
	return p.events[len(p.events)-1], p.rooms[len(p.rooms)-1]
}

func (p *capturePublisher) kinds() []fanout.EventKind {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]fanout.EventKind, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Kind)
	}
	return out
}

var (
	customer = identity.Account{ID: "cust-1", Role: identity.RoleCustomer}
	vip      = identity.Account{ID: "cust-vip", Role: identity.RoleCustomer, Flags: []string{"vip"}}
	senior   = identity.Account{ID: "cust-sr", Role: identity.RoleCustomer, Flags: []string{"senior_citizen"}}
	staff    = identity.Account{ID: "staff-1", Role: identity.RoleStaff}
	admin    = identity.Account{ID: "admin-1", Role: identity.RoleAdmin}
)

func newTestService(t *testing.T) (Service, *store.Memory, *capturePublisher) {
	t.Helper()
	mem := store.NewMemory()
	pub := &capturePublisher{}
	// generous retry budget so the concurrency tests never exhaust it
	svc := New(mem, pub, identity.DefaultPriorityPolicy, queue.NewAverages(nil, 5),
		config.TicketingConfig{NumberPrefix: "TKN", AllocatorRetries: 100, NotesMaxLength: 200}, nil)
	return svc, mem, pub
}

func issue(t *testing.T, svc Service, caller identity.Account, st ticket.ServiceType) *ticket.Ticket {
	t.Helper()
	tk, err := svc.Issue(context.Background(), IssueRequest{Caller: caller, ServiceType: st})
	if err != nil {
		t.Fatalf("issue for %s: %v", caller.ID, err)
	}
	return tk
}

func TestIssue(t *testing.T) {
	svc, _, pub := newTestService(t)
	ctx := context.Background()

	t.Run("first ticket of the day", func(t *testing.T) {
		tk := issue(t, svc, customer, ticket.ServiceCashDeposit)
		day, seq, err := ticket.ParseNumber("TKN", tk.Number)
		if err != nil || seq != 1 {
			t.Fatalf("number %q: day=%v seq=%d err=%v", tk.Number, day, seq, err)
		}
		if tk.Status != ticket.StatusWaiting {
			t.Fatalf("status = %s, want waiting", tk.Status)
		}
		if tk.PriorityClass != ticket.PriorityNormal {
			t.Fatalf("priority = %s, want normal", tk.PriorityClass)
		}
		// alone in the queue: one service slot
		if tk.EstimatedWaitMinutes != 5 {
			t.Fatalf("estimate = %d, want 5", tk.EstimatedWaitMinutes)
		}

		ev, rooms := pub.last(t)
		if ev.Kind != fanout.EventTicketIssued {
			t.Fatalf("event = %s, want ticket_issued", ev.Kind)
		}
		wantRooms := []fanout.Audience{fanout.AudienceStaff, fanout.AudienceAdmin}
		if fmt.Sprint(rooms) != fmt.Sprint(wantRooms) {
			t.Fatalf("rooms = %v, want %v", rooms, wantRooms)
		}
	})

	t.Run("sequence increments within the day", func(t *testing.T) {
		tk := issue(t, svc, customer, ticket.ServiceGeneralQuery)
		if _, seq, _ := ticket.ParseNumber("TKN", tk.Number); seq != 2 {
			t.Fatalf("number %q, want sequence 2", tk.Number)
		}
		// second in line
		if tk.EstimatedWaitMinutes != 10 {
			t.Fatalf("estimate = %d, want 10", tk.EstimatedWaitMinutes)
		}
	})

	t.Run("priority from account", func(t *testing.T) {
		if tk := issue(t, svc, vip, ticket.ServiceMeetGM); tk.PriorityClass != ticket.PriorityVIP {
			t.Fatalf("vip flag: got %s", tk.PriorityClass)
		}
		if tk := issue(t, svc, senior, ticket.ServiceGeneralQuery); tk.PriorityClass != ticket.PriorityElevated {
			t.Fatalf("senior flag: got %s", tk.PriorityClass)
		}
		if tk := issue(t, svc, admin, ticket.ServiceGeneralQuery); tk.PriorityClass != ticket.PriorityVIP {
			t.Fatalf("admin: got %s", tk.PriorityClass)
		}
	})

	t.Run("rejects unknown service type", func(t *testing.T) {
		_, err := svc.Issue(ctx, IssueRequest{Caller: customer, ServiceType: "haircut"})
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("got %v, want ErrValidation", err)
		}
	})

	t.Run("rejects oversized notes", func(t *testing.T) {
		long := make([]byte, 201)
		_, err := svc.Issue(ctx, IssueRequest{Caller: customer, ServiceType: ticket.ServiceGeneralQuery, Notes: string(long)})
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("got %v, want ErrValidation", err)
		}
	})
}

func TestIssueConcurrentNumbersUnique(t *testing.T) {
	svc, _, _ := newTestService(t)

	const n = 40
	var wg sync.WaitGroup
	numbers := make(chan string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tk, err := svc.Issue(context.Background(), IssueRequest{Caller: customer, ServiceType: ticket.ServiceGeneralQuery})
			if err != nil {
				t.Errorf("issue: %v", err)
				return
			}
			numbers <- tk.Number
		}()
	}
	wg.Wait()
	close(numbers)

	seen := make(map[string]bool)
	for num := range numbers {
		if seen[num] {
			t.Fatalf("duplicate number issued: %s", num)
		}
		seen[num] = true
	}
}

func TestCallNext(t *testing.T) {
	ctx := context.Background()

	t.Run("priority then fifo", func(t *testing.T) {
		svc, _, pub := newTestService(t)
		first := issue(t, svc, customer, ticket.ServiceCashDeposit)
		vt := issue(t, svc, vip, ticket.ServiceMeetGM)

		got, err := svc.CallNext(ctx, CallNextRequest{Caller: staff, Counter: "counter-2"})
		if err != nil {
			t.Fatalf("call next: %v", err)
		}
		if got.ID != vt.ID {
			t.Fatalf("called %s, want the vip ticket %s", got.ID, vt.ID)
		}
		if got.Status != ticket.StatusInProgress || got.ServingCounter != "counter-2" || got.ServedBy != "staff-1" {
			t.Fatalf("claim fields: %+v", got)
		}
		if got.CalledAt == nil {
			t.Fatal("CalledAt not set")
		}
		// the owner hears ticket_called, the consoles get ticket_updated
		pub.mu.Lock()
		n := len(pub.events)
		called, calledRooms := pub.events[n-2], pub.rooms[n-2]
		updated, updatedRooms := pub.events[n-1], pub.rooms[n-1]
		pub.mu.Unlock()
		if called.Kind != fanout.EventTicketCalled || fmt.Sprint(calledRooms) != fmt.Sprint([]fanout.Audience{fanout.AudienceOwner("cust-vip")}) {
			t.Fatalf("owner event: %s to %v", called.Kind, calledRooms)
		}
		if updated.Kind != fanout.EventTicketUpdated || fmt.Sprint(updatedRooms) != fmt.Sprint(fanout.Consoles()) {
			t.Fatalf("console event: %s to %v", updated.Kind, updatedRooms)
		}

		got, err = svc.CallNext(ctx, CallNextRequest{Caller: staff, Counter: "counter-2"})
		if err != nil || got.ID != first.ID {
			t.Fatalf("second call: %v %v, want %s", got, err, first.ID)
		}
	})

	t.Run("empty queue", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		if _, err := svc.CallNext(ctx, CallNextRequest{Caller: staff, Counter: "c1"}); !errors.Is(err, ErrEmptyQueue) {
			t.Fatalf("got %v, want ErrEmptyQueue", err)
		}
	})

	t.Run("customers may not call", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		issue(t, svc, customer, ticket.ServiceGeneralQuery)
		if _, err := svc.CallNext(ctx, CallNextRequest{Caller: customer, Counter: "c1"}); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("got %v, want ErrUnauthorized", err)
		}
	})

	t.Run("counter required", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		if _, err := svc.CallNext(ctx, CallNextRequest{Caller: staff}); !errors.Is(err, ErrValidation) {
			t.Fatalf("got %v, want ErrValidation", err)
		}
	})
}

func TestCallNextNoDoubleClaim(t *testing.T) {
	svc, _, _ := newTestService(t)
	const tickets = 10
	for i := 0; i < tickets; i++ {
		issue(t, svc, customer, ticket.ServiceGeneralQuery)
	}

	var wg sync.WaitGroup
	claimed := make(chan string, tickets)
	var empties int
	var mu sync.Mutex
	for i := 0; i < tickets; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tk, err := svc.CallNext(context.Background(), CallNextRequest{
				Caller:  staff,
				Counter: fmt.Sprintf("counter-%d", i),
			})
			if errors.Is(err, ErrEmptyQueue) {
				mu.Lock()
				empties++
				mu.Unlock()
				return
			}
			if err != nil {
				t.Errorf("call next: %v", err)
				return
			}
			claimed <- tk.ID
		}(i)
	}
	wg.Wait()
	close(claimed)

	seen := make(map[string]bool)
	for id := range claimed {
		if seen[id] {
			t.Fatalf("ticket %s claimed twice", id)
		}
		seen[id] = true
	}
	if len(seen)+empties != tickets {
		t.Fatalf("claimed %d + empty %d, want %d callers accounted for", len(seen), empties, tickets)
	}
}

// laggingStore serves every waiting-list read from the snapshot taken one
// read earlier, so callers keep seeing tickets that have already been
// claimed.
type laggingStore struct {
	*store.Memory
	mu     sync.Mutex
	primed bool
	stale  []*ticket.Ticket
}

func (s *laggingStore) ListByStatus(ctx context.Context, st ticket.Status) ([]*ticket.Ticket, error) {
	fresh, err := s.Memory.ListByStatus(ctx, st)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out, ok := s.stale, s.primed
	s.stale, s.primed = fresh, true
	if !ok {
		return fresh, nil
	}
	return out, nil
}

func TestCallNextSurvivesStaleSnapshots(t *testing.T) {
	ctx := context.Background()
	lag := &laggingStore{Memory: store.NewMemory()}
	pub := &capturePublisher{}
	// a single-attempt budget: contention must never consume it
	svc := New(lag, pub, identity.DefaultPriorityPolicy, queue.NewAverages(nil, 5),
		config.TicketingConfig{NumberPrefix: "TKN", AllocatorRetries: 1}, nil)

	other := identity.Account{ID: "cust-2", Role: identity.RoleCustomer}
	first := issue(t, svc, customer, ticket.ServiceGeneralQuery)
	second := issue(t, svc, other, ticket.ServiceGeneralQuery)

	claimed := make(map[string]bool)
	for i := 0; i < 2; i++ {
		got, err := svc.CallNext(ctx, CallNextRequest{Caller: staff, Counter: "c1"})
		if err != nil {
			t.Fatalf("call %d: %v", i+1, err)
		}
		if claimed[got.ID] {
			t.Fatalf("ticket %s claimed twice", got.ID)
		}
		claimed[got.ID] = true
	}
	if !claimed[first.ID] || !claimed[second.ID] {
		t.Fatalf("claimed %v, want both tickets", claimed)
	}

	// every lost claim retries against a fresher snapshot; only a genuinely
	// drained queue ends the loop
	if _, err := svc.CallNext(ctx, CallNextRequest{Caller: staff, Counter: "c1"}); !errors.Is(err, ErrEmptyQueue) {
		t.Fatalf("drained queue: got %v, want ErrEmptyQueue", err)
	}
}

func TestCallTicket(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	tk := issue(t, svc, customer, ticket.ServiceLoanApplication)

	got, err := svc.CallTicket(ctx, CallTicketRequest{Caller: staff, TicketID: tk.ID, Counter: "counter-5"})
	if err != nil {
		t.Fatalf("call ticket: %v", err)
	}
	if got.Status != ticket.StatusInProgress || got.ServingCounter != "counter-5" {
		t.Fatalf("got %+v", got)
	}

	// already in progress
	if _, err := svc.CallTicket(ctx, CallTicketRequest{Caller: staff, TicketID: tk.ID, Counter: "counter-6"}); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("second claim: got %v, want ErrInvalidTransition", err)
	}

	if _, err := svc.CallTicket(ctx, CallTicketRequest{Caller: staff, TicketID: "nope", Counter: "c"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing ticket: got %v, want ErrNotFound", err)
	}
}

func TestStatusTransitions(t *testing.T) {
	ctx := context.Background()

	t.Run("complete an in-progress ticket", func(t *testing.T) {
		svc, _, pub := newTestService(t)
		tk := issue(t, svc, customer, ticket.ServiceCashDeposit)
		if _, err := svc.CallTicket(ctx, CallTicketRequest{Caller: staff, TicketID: tk.ID, Counter: "c1"}); err != nil {
			t.Fatalf("call: %v", err)
		}

		done, err := svc.Complete(ctx, staff, tk.ID)
		if err != nil {
			t.Fatalf("complete: %v", err)
		}
		if done.Status != ticket.StatusCompleted || done.CompletedAt == nil {
			t.Fatalf("got %+v", done)
		}
		ev, rooms := pub.last(t)
		if ev.Kind != fanout.EventTicketUpdated {
			t.Fatalf("event = %s, want ticket_updated", ev.Kind)
		}
		if fmt.Sprint(rooms) != fmt.Sprint(fanout.Everyone(done)) {
			t.Fatalf("rooms = %v, want owner+consoles", rooms)
		}
	})

	t.Run("cannot complete a waiting ticket", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		tk := issue(t, svc, customer, ticket.ServiceCashDeposit)
		if _, err := svc.Complete(ctx, staff, tk.ID); !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("got %v, want ErrInvalidTransition", err)
		}
	})

	t.Run("terminal states are frozen", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		tk := issue(t, svc, customer, ticket.ServiceCashDeposit)
		if _, err := svc.Cancel(ctx, customer, tk.ID); err != nil {
			t.Fatalf("cancel: %v", err)
		}
		if _, err := svc.UpdateStatus(ctx, UpdateStatusRequest{Caller: staff, TicketID: tk.ID, Status: ticket.StatusInProgress, Counter: "c1"}); !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("revive cancelled: got %v, want ErrInvalidTransition", err)
		}
	})

	t.Run("staff start serving through a counter", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		tk := issue(t, svc, customer, ticket.ServiceCashDeposit)

		got, err := svc.UpdateStatus(ctx, UpdateStatusRequest{Caller: staff, TicketID: tk.ID, Status: ticket.StatusInProgress, Counter: "counter-7"})
		if err != nil {
			t.Fatalf("start serving: %v", err)
		}
		if got.ServingCounter != "counter-7" || got.ServedBy != staff.ID || got.CalledAt == nil {
			t.Fatalf("got %+v", got)
		}
	})

	t.Run("starting service requires a counter", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		tk := issue(t, svc, customer, ticket.ServiceCashDeposit)
		if _, err := svc.UpdateStatus(ctx, UpdateStatusRequest{Caller: staff, TicketID: tk.ID, Status: ticket.StatusInProgress}); !errors.Is(err, ErrValidation) {
			t.Fatalf("got %v, want ErrValidation", err)
		}
	})

	t.Run("customers cannot drive transitions", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		tk := issue(t, svc, customer, ticket.ServiceCashDeposit)
		if _, err := svc.UpdateStatus(ctx, UpdateStatusRequest{Caller: customer, TicketID: tk.ID, Status: ticket.StatusInProgress}); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("got %v, want ErrUnauthorized", err)
		}
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		tk := issue(t, svc, customer, ticket.ServiceCashDeposit)
		if _, err := svc.UpdateStatus(ctx, UpdateStatusRequest{Caller: staff, TicketID: tk.ID, Status: "teleported"}); !errors.Is(err, ErrValidation) {
			t.Fatalf("got %v, want ErrValidation", err)
		}
	})
}

func TestCancelOwnership(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	tk := issue(t, svc, customer, ticket.ServiceGeneralQuery)

	other := identity.Account{ID: "cust-2", Role: identity.RoleCustomer}
	if _, err := svc.Cancel(ctx, other, tk.ID); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("stranger cancel: got %v, want ErrUnauthorized", err)
	}

	// cancellation is strictly the owner's: staff and admin are refused too
	if _, err := svc.Cancel(ctx, staff, tk.ID); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("staff cancel: got %v, want ErrUnauthorized", err)
	}
	if _, err := svc.Cancel(ctx, admin, tk.ID); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("admin cancel: got %v, want ErrUnauthorized", err)
	}
	current, err := svc.Get(ctx, staff, tk.ID)
	if err != nil || current.Status != ticket.StatusWaiting {
		t.Fatalf("ticket after refused cancels: %v %v", current, err)
	}

	got, err := svc.Cancel(ctx, customer, tk.ID)
	if err != nil || got.Status != ticket.StatusCancelled {
		t.Fatalf("owner cancel: %v %v", got, err)
	}
}

func TestGetAndList(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	tk := issue(t, svc, customer, ticket.ServiceGeneralQuery)
	issue(t, svc, vip, ticket.ServiceMeetGM)

	t.Run("owner reads own ticket", func(t *testing.T) {
		got, err := svc.Get(ctx, customer, tk.ID)
		if err != nil || got.ID != tk.ID {
			t.Fatalf("get: %v %v", got, err)
		}
	})

	t.Run("stranger is refused", func(t *testing.T) {
		other := identity.Account{ID: "cust-9", Role: identity.RoleCustomer}
		if _, err := svc.Get(ctx, other, tk.ID); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("got %v, want ErrUnauthorized", err)
		}
		if _, err := svc.GetByNumber(ctx, other, tk.Number); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("by number: got %v, want ErrUnauthorized", err)
		}
	})

	t.Run("staff reads any ticket", func(t *testing.T) {
		if _, err := svc.Get(ctx, staff, tk.ID); err != nil {
			t.Fatalf("staff get: %v", err)
		}
		got, err := svc.GetByNumber(ctx, staff, tk.Number)
		if err != nil || got.ID != tk.ID {
			t.Fatalf("staff by number: %v %v", got, err)
		}
	})

	t.Run("list own tickets", func(t *testing.T) {
		mine, err := svc.List(ctx, ListRequest{Caller: customer})
		if err != nil || len(mine) != 1 || mine[0].ID != tk.ID {
			t.Fatalf("list: %v %v", mine, err)
		}
	})

	t.Run("missing id", func(t *testing.T) {
		if _, err := svc.Get(ctx, staff, "nope"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("got %v, want ErrNotFound", err)
		}
		if _, err := svc.GetByNumber(ctx, staff, "TKN19990101001"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("by number: got %v, want ErrNotFound", err)
		}
	})
}

func TestQueueSnapshot(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	n1 := issue(t, svc, customer, ticket.ServiceGeneralQuery)
	v1 := issue(t, svc, vip, ticket.ServiceMeetGM)
	e1 := issue(t, svc, senior, ticket.ServiceCashDeposit)

	entries, err := svc.QueueSnapshot(ctx, staff)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	wantOrder := []string{v1.ID, e1.ID, n1.ID}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	for i, want := range wantOrder {
		if entries[i].Ticket.ID != want {
			t.Fatalf("position %d: got %s, want %s", i+1, entries[i].Ticket.ID, want)
		}
		if entries[i].Position != i+1 {
			t.Fatalf("position field = %d, want %d", entries[i].Position, i+1)
		}
	}
	// estimates grow with position at 5 min/slot
	if entries[0].EstimatedWaitMinute != 5 || entries[2].EstimatedWaitMinute != 15 {
		t.Fatalf("estimates: %d, %d", entries[0].EstimatedWaitMinute, entries[2].EstimatedWaitMinute)
	}

	if _, err := svc.QueueSnapshot(ctx, customer); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("customer snapshot: got %v, want ErrUnauthorized", err)
	}
}

// Full counter-visit flow: issue, call, complete, with the event trail the
// consoles rely on.
func TestLifecycleEventTrail(t *testing.T) {
	ctx := context.Background()
	svc, _, pub := newTestService(t)

	tk := issue(t, svc, customer, ticket.ServiceCashDeposit)
	if _, err := svc.CallNext(ctx, CallNextRequest{Caller: staff, Counter: "counter-1"}); err != nil {
		t.Fatalf("call: %v", err)
	}
	if _, err := svc.Complete(ctx, staff, tk.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	want := []fanout.EventKind{
		fanout.EventTicketIssued,  // issue -> consoles
		fanout.EventTicketCalled,  // call -> owner
		fanout.EventTicketUpdated, // call -> consoles
		fanout.EventTicketUpdated, // complete -> everyone
	}
	got := pub.kinds()
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("event trail = %v, want %v", got, want)
	}
}

// Sequence restarts each day.
func TestDailySequenceReset(t *testing.T) {
	mem := store.NewMemory()
	pub := &capturePublisher{}
	svc := New(mem, pub, nil, queue.NewAverages(nil, 5),
		config.TicketingConfig{NumberPrefix: "TKN"}, nil).(*dispatchService)

	day1 := time.Date(2026, 3, 14, 16, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return day1 }
	a := issue(t, svc, customer, ticket.ServiceGeneralQuery)
	b := issue(t, svc, customer, ticket.ServiceGeneralQuery)

	svc.now = func() time.Time { return day1.AddDate(0, 0, 1) }
	c := issue(t, svc, customer, ticket.ServiceGeneralQuery)

	if a.Number != "TKN20260314001" || b.Number != "TKN20260314002" {
		t.Fatalf("day one numbers: %s, %s", a.Number, b.Number)
	}
	if c.Number != "TKN20260315001" {
		t.Fatalf("day two number = %s, want TKN20260315001", c.Number)
	}
}
