// Package identity resolves callers against the bank's account directory.
// Bajeh does not run its own credential store; requests arrive with a caller
// reference already authenticated upstream, and the directory tells us who
// that reference belongs to and what role and flags the account carries.
package identity

import (
	"context"
	"errors"

	"github.com/bajehapp/bajeh_backend/internal/ticket"
)

var (
	ErrUnknownCaller = errors.New("identity: unknown caller")
	ErrUnavailable   = errors.New("identity: directory unavailable")
)

// Role is the coarse access tier the directory assigns an account.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleStaff    Role = "staff"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleStaff, RoleAdmin:
		return true
	}
	return false
}

// Account is a resolved directory entry. Flags carry bank-side attributes
// such as "vip" or "senior_citizen" that feed the priority policy.
type Account struct {
	ID    string   `json:"id"`
	Role  Role     `json:"role"`
	Flags []string `json:"flags"`

	// contact details, used for called-ticket notifications
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

func (a Account) HasFlag(name string) bool {
	for _, f := range a.Flags {
		if f == name {
			return true
		}
	}
	return false
}

// Directory looks up accounts in the bank's directory. Caller references
// are opaque tokens asserted by the upstream gateway and need not equal
// account ids; flows that start from a stored ticket rather than a request
// look the owner up by account id instead.
type Directory interface {
	ResolveCaller(ctx context.Context, callerRef string) (Account, error)
	ResolveAccount(ctx context.Context, accountID string) (Account, error)
}

// PriorityPolicy maps a resolved account to the priority class its tickets
// are issued with.
type PriorityPolicy func(Account) ticket.PriorityClass

// DefaultPriorityPolicy: admins and flagged VIPs queue as vip, senior
// citizens as elevated, everyone else as normal.
func DefaultPriorityPolicy(a Account) ticket.PriorityClass {
	if a.Role == RoleAdmin || a.HasFlag("vip") {
		return ticket.PriorityVIP
	}
	if a.HasFlag("senior_citizen") {
		return ticket.PriorityElevated
	}
	return ticket.PriorityNormal
}
