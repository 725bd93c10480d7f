package ticket

import "time"

// Status is the lifecycle state of a ticket.
type Status string

const (
	StatusWaiting    Status = "waiting"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusWaiting, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition may leave s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransition enumerates the ticket state machine:
// waiting → in_progress → completed, and waiting → cancelled.
// Everything else is rejected; transitions are never reversed.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusWaiting:
		return to == StatusInProgress || to == StatusCancelled
	case StatusInProgress:
		return to == StatusCompleted
	}
	return false
}

// ServiceType is the branch service a ticket is issued for.
type ServiceType string

const (
	ServiceCashDeposit     ServiceType = "cash_deposit"
	ServiceGeneralQuery    ServiceType = "general_query"
	ServiceLoanApplication ServiceType = "loan_application"
	ServiceMeetGM          ServiceType = "meet_gm"
)

func (s ServiceType) Valid() bool {
	switch s {
	case ServiceCashDeposit, ServiceGeneralQuery, ServiceLoanApplication, ServiceMeetGM:
		return true
	}
	return false
}

// PriorityClass ranks tickets in the waiting queue.
type PriorityClass string

const (
	PriorityNormal   PriorityClass = "normal"
	PriorityElevated PriorityClass = "elevated"
	PriorityVIP      PriorityClass = "vip"
)

func (p PriorityClass) Valid() bool {
	switch p {
	case PriorityNormal, PriorityElevated, PriorityVIP:
		return true
	}
	return false
}

// Rank returns the queue precedence of the class; higher is served first.
func (p PriorityClass) Rank() int {
	switch p {
	case PriorityVIP:
		return 2
	case PriorityElevated:
		return 1
	default:
		return 0
	}
}

// Ticket is a single service request tracked through its lifecycle.
// ID, Number, OwnerID, ServiceType and PriorityClass are immutable after
// creation; timestamps are set exactly once on the corresponding transition.
type Ticket struct {
	ID            string        `json:"id"`
	Number        string        `json:"number"`
	OwnerID       string        `json:"owner_id"`
	ServiceType   ServiceType   `json:"service_type"`
	PriorityClass PriorityClass `json:"priority_class"`
	Status        Status        `json:"status"`

	ServingCounter string `json:"serving_counter,omitempty"`
	ServedBy       string `json:"served_by,omitempty"`

	IssuedAt    time.Time  `json:"issued_at"`
	CalledAt    *time.Time `json:"called_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	EstimatedWaitMinutes int    `json:"estimated_wait_minutes"`
	Notes                string `json:"notes,omitempty"`
}

// Clone returns a deep copy so stores can hand out snapshots that callers
// may not mutate in place.
func (t *Ticket) Clone() *Ticket {
	if t == nil {
		return nil
	}
	cp := *t
	if t.CalledAt != nil {
		v := *t.CalledAt
		cp.CalledAt = &v
	}
	if t.CompletedAt != nil {
		v := *t.CompletedAt
		cp.CompletedAt = &v
	}
	return &cp
}
