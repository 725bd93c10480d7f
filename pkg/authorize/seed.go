package authorize

import (
	"context"
	"log/slog"

	"github.com/bajehapp/bajeh_backend/internal/identity"
)

// SeedDefaultPolicies installs the baseline branch RBAC rules.
func SeedDefaultPolicies(ctx context.Context, auth IAuthorization) error {
	logger := slog.Default()

	policies := []PermissionPolicy{
		// Admin: everything, including RBAC changes.
		{RoleBranchAdmin, DomainBranch, WildcardResource, WildcardAction, EffectAllow},

		// Staff drive the queue and the board but never touch RBAC.
		{RoleBranchStaff, DomainBranch, ResourceTicket, ActionRead, EffectAllow},
		{RoleBranchStaff, DomainBranch, ResourceTicket, ActionList, EffectAllow},
		{RoleBranchStaff, DomainBranch, ResourceTicket, ActionIssue, EffectAllow},
		{RoleBranchStaff, DomainBranch, ResourceTicket, ActionCall, EffectAllow},
		{RoleBranchStaff, DomainBranch, ResourceTicket, ActionComplete, EffectAllow},
		{RoleBranchStaff, DomainBranch, ResourceTicket, ActionCancel, EffectAllow},
		{RoleBranchStaff, DomainBranch, ResourceTicket, ActionUpdate, EffectAllow},
		{RoleBranchStaff, DomainBranch, ResourceQueue, ActionRead, EffectAllow},
		{RoleBranchStaff, DomainBranch, ResourceQueue, ActionList, EffectAllow},
		{RoleBranchStaff, DomainBranch, ResourceBoard, ActionRead, EffectAllow},
		{RoleBranchStaff, DomainBranch, ResourceBoard, ActionUpdate, EffectAllow},
		{RoleBranchStaff, DomainBranch, ResourceEvents, ActionRead, EffectAllow},

		// Customers take tickets and watch their own; ownership checks live
		// in the dispatch service.
		{RoleBranchCustomer, DomainBranch, ResourceTicket, ActionIssue, EffectAllow},
		{RoleBranchCustomer, DomainBranch, ResourceTicket, ActionRead, EffectAllow},
		{RoleBranchCustomer, DomainBranch, ResourceTicket, ActionList, EffectAllow},
		{RoleBranchCustomer, DomainBranch, ResourceTicket, ActionCancel, EffectAllow},
		{RoleBranchCustomer, DomainBranch, ResourceBoard, ActionRead, EffectAllow},
		{RoleBranchCustomer, DomainBranch, ResourceEvents, ActionRead, EffectAllow},
	}

	for _, p := range policies {
		added, err := auth.AddPermission(ctx, p.Subject, p.Domain, p.Object, p.Action, p.Effect)
		if err != nil {
			logger.Error("failed to add policy", "policy", p, "error", err)
			return err
		}
		if added {
			logger.Debug("added policy",
				"role", p.Subject, "resource", p.Object, "action", p.Action)
		}
	}

	logger.Info("seeded default RBAC policies", "count", len(policies))
	return nil
}

// RoleForAccount maps a directory role to its policy subject.
func RoleForAccount(role identity.Role) (Role, bool) {
	switch role {
	case identity.RoleCustomer:
		return RoleBranchCustomer, true
	case identity.RoleStaff:
		return RoleBranchStaff, true
	case identity.RoleAdmin:
		return RoleBranchAdmin, true
	}
	return "", false
}

// EnsureAccountRole grants an account its branch role. Idempotent; called by
// the auth middleware the first time it sees an account.
func EnsureAccountRole(ctx context.Context, auth IAuthorization, account identity.Account) error {
	role, ok := RoleForAccount(account.Role)
	if !ok {
		return ErrInvalidArgs
	}
	_, err := auth.AddRoleForUserInDomain(ctx, GroupSubject(account.ID), role, DomainBranch)
	return err
}
