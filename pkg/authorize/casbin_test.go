package authorize

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	casbin "github.com/casbin/casbin/v2"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"

	"github.com/bajehapp/bajeh_backend/internal/identity"
)

// createTestEnforcer creates a file-backed Casbin enforcer for testing.
func createTestEnforcer(t *testing.T) *casbin.DistributedEnforcer {
	t.Helper()

	tmpDir := t.TempDir()

	modelPath := filepath.Join(tmpDir, "model.conf")
	modelContent := `[request_definition]
r = sub, dom, obj, act

[policy_definition]
p = sub, dom, obj, act, eft

[role_definition]
g = _, _, _

[policy_effect]
e = some(where (p.eft == allow)) && !some(where (p.eft == deny))

[matchers]
m = g(r.sub, p.sub, r.dom) && (p.dom == "*" || p.dom == r.dom) && (p.obj == "*" || p.obj == r.obj) && (p.act == "*" || p.act == r.act)
`
	if err := os.WriteFile(modelPath, []byte(modelContent), 0644); err != nil {
		t.Fatalf("failed to write model file: %v", err)
	}

	policyPath := filepath.Join(tmpDir, "policy.csv")
	if err := os.WriteFile(policyPath, []byte(""), 0644); err != nil {
		t.Fatalf("failed to write policy file: %v", err)
	}

	e, err := casbin.NewDistributedEnforcer(modelPath, fileadapter.NewAdapter(policyPath))
	if err != nil {
		t.Fatalf("failed to create enforcer: %v", err)
	}
	e.EnableAutoSave(false)
	e.EnableEnforce(true)
	return e
}

func seededAuth(t *testing.T) IAuthorization {
	t.Helper()
	auth, err := NewAuthorization(createTestEnforcer(t))
	if err != nil {
		t.Fatalf("new authorization: %v", err)
	}
	if err := SeedDefaultPolicies(context.Background(), auth); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return auth
}

func grant(t *testing.T, auth IAuthorization, accountID string, role Role) {
	t.Helper()
	if _, err := auth.AddRoleForUserInDomain(context.Background(), GroupSubject(accountID), role, DomainBranch); err != nil {
		t.Fatalf("grant %s to %s: %v", role, accountID, err)
	}
}

func TestNewAuthorization(t *testing.T) {
	t.Run("nil enforcer", func(t *testing.T) {
		if _, err := NewAuthorization(nil); err == nil {
			t.Error("expected error for nil enforcer")
		}
	})
	t.Run("valid enforcer", func(t *testing.T) {
		auth, err := NewAuthorization(createTestEnforcer(t))
		if err != nil || auth == nil {
			t.Fatalf("got %v, %v", auth, err)
		}
	})
}

func TestSeededPermissions(t *testing.T) {
	auth := seededAuth(t)
	ctx := context.Background()
	grant(t, auth, "cust-1", RoleBranchCustomer)
	grant(t, auth, "staff-1", RoleBranchStaff)
	grant(t, auth, "admin-1", RoleBranchAdmin)

	cases := []struct {
		name    string
		subject string
		object  Resource
		action  Action
		allow   bool
	}{
		{"customer issues a ticket", "cust-1", ResourceTicket, ActionIssue, true},
		{"customer cancels a ticket", "cust-1", ResourceTicket, ActionCancel, true},
		{"customer reads the board", "cust-1", ResourceBoard, ActionRead, true},
		{"customer cannot call", "cust-1", ResourceTicket, ActionCall, false},
		{"customer cannot see the queue", "cust-1", ResourceQueue, ActionList, false},
		{"customer cannot update the board", "cust-1", ResourceBoard, ActionUpdate, false},
		{"customer cannot grant roles", "cust-1", ResourceRBAC, ActionGrant, false},

		{"staff calls the next ticket", "staff-1", ResourceTicket, ActionCall, true},
		{"staff completes a ticket", "staff-1", ResourceTicket, ActionComplete, true},
		{"staff lists the queue", "staff-1", ResourceQueue, ActionList, true},
		{"staff updates the board", "staff-1", ResourceBoard, ActionUpdate, true},
		{"staff cannot grant roles", "staff-1", ResourceRBAC, ActionGrant, false},

		{"admin grants roles", "admin-1", ResourceRBAC, ActionGrant, true},
		{"admin manages the system", "admin-1", ResourceSystem, ActionManage, true},

		{"unknown account denied", "nobody", ResourceTicket, ActionIssue, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			allowed, err := auth.Enforce(ctx, GroupSubject(c.subject), DomainBranch, c.object, c.action)
			if err != nil {
				t.Fatalf("enforce: %v", err)
			}
			if allowed != c.allow {
				t.Fatalf("allowed=%v, want %v", allowed, c.allow)
			}
		})
	}
}

func TestEnforceGuardrails(t *testing.T) {
	auth := seededAuth(t)
	ctx := context.Background()

	if _, err := auth.Enforce(ctx, "", DomainBranch, ResourceTicket, ActionRead); !errors.Is(err, ErrInvalidArgs) {
		t.Fatalf("empty subject: got %v", err)
	}
	if _, err := auth.Enforce(ctx, "cust-1", "warehouse", ResourceTicket, ActionRead); !errors.Is(err, ErrInvalidArgs) {
		t.Fatalf("bad domain: got %v", err)
	}
	if _, err := auth.Enforce(ctx, "cust-1", DomainBranch, "spaceship", ActionRead); !errors.Is(err, ErrInvalidArgs) {
		t.Fatalf("unknown resource: got %v", err)
	}
	if _, err := auth.Enforce(ctx, "cust-1", DomainBranch, ResourceTicket, "launch"); !errors.Is(err, ErrInvalidArgs) {
		t.Fatalf("unknown action: got %v", err)
	}
}

func TestMustEnforce(t *testing.T) {
	auth := seededAuth(t)
	ctx := context.Background()
	grant(t, auth, "cust-1", RoleBranchCustomer)

	if err := auth.MustEnforce(ctx, "cust-1", DomainBranch, ResourceTicket, ActionIssue); err != nil {
		t.Fatalf("allowed path: %v", err)
	}
	if err := auth.MustEnforce(ctx, "cust-1", DomainBranch, ResourceTicket, ActionCall); !errors.Is(err, ErrForbidden) {
		t.Fatalf("denied path: got %v, want ErrForbidden", err)
	}
}

func TestRoleLifecycle(t *testing.T) {
	auth := seededAuth(t)
	ctx := context.Background()

	grant(t, auth, "staff-2", RoleBranchStaff)
	roles, err := auth.GetRolesForUserInDomain(ctx, "staff-2", DomainBranch)
	if err != nil || len(roles) != 1 || roles[0] != RoleBranchStaff {
		t.Fatalf("roles = %v, err = %v", roles, err)
	}

	if _, err := auth.RemoveRoleForUserInDomain(ctx, "staff-2", RoleBranchStaff, DomainBranch); err != nil {
		t.Fatalf("remove: %v", err)
	}
	allowed, _ := auth.Enforce(ctx, "staff-2", DomainBranch, ResourceTicket, ActionCall)
	if allowed {
		t.Fatal("revoked staff can still call")
	}

	if _, err := auth.AddRoleForUserInDomain(ctx, "x", "role:branch:wizard", DomainBranch); !errors.Is(err, ErrInvalidArgs) {
		t.Fatalf("unknown role: got %v", err)
	}
}

func TestEnsureAccountRole(t *testing.T) {
	auth := seededAuth(t)
	ctx := context.Background()

	acct := identity.Account{ID: "cust-7", Role: identity.RoleCustomer}
	if err := EnsureAccountRole(ctx, auth, acct); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	// idempotent
	if err := EnsureAccountRole(ctx, auth, acct); err != nil {
		t.Fatalf("ensure twice: %v", err)
	}

	allowed, err := auth.Enforce(ctx, "cust-7", DomainBranch, ResourceTicket, ActionIssue)
	if err != nil || !allowed {
		t.Fatalf("allowed=%v err=%v", allowed, err)
	}

	bad := identity.Account{ID: "x", Role: "wizard"}
	if err := EnsureAccountRole(ctx, auth, bad); !errors.Is(err, ErrInvalidArgs) {
		t.Fatalf("bad role: got %v", err)
	}
}

func TestAuditedAuthorizationDelegates(t *testing.T) {
	auth := seededAuth(t)
	audited := NewAuditedAuthorization(auth, nil)
	ctx := context.Background()

	grant(t, audited, "staff-9", RoleBranchStaff)
	if err := audited.MustEnforce(ctx, "staff-9", DomainBranch, ResourceQueue, ActionRead); err != nil {
		t.Fatalf("audited enforce: %v", err)
	}
	if err := audited.MustEnforce(ctx, "staff-9", DomainBranch, ResourceRBAC, ActionGrant); !errors.Is(err, ErrForbidden) {
		t.Fatalf("audited deny: got %v", err)
	}
}
