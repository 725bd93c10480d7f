package authorize

type Action string
type Resource string
type Role string
type Domain string

// ----------------------------
// Actions
// ----------------------------

const (
	ActionRead   Action = "read"
	ActionList   Action = "list"
	ActionUpdate Action = "update"

	// Ticket lifecycle actions
	ActionIssue    Action = "issue"
	ActionCall     Action = "call"
	ActionComplete Action = "complete"
	ActionCancel   Action = "cancel"

	// Power action: everything on a resource
	ActionManage Action = "manage"

	// RBAC-specific actions
	ActionGrant  Action = "grant"
	ActionRevoke Action = "revoke"
)

const WildcardAction Action = "*"

var KnownActions = map[Action]struct{}{
	ActionRead: {}, ActionList: {}, ActionUpdate: {},
	ActionIssue: {}, ActionCall: {}, ActionComplete: {}, ActionCancel: {},
	ActionManage: {},
	ActionGrant:  {}, ActionRevoke: {},
}

// ----------------------------
// Resources
// ----------------------------

const (
	WildcardResource Resource = "*"

	ResourceTicket Resource = "ticket"
	ResourceQueue  Resource = "queue"
	ResourceBoard  Resource = "board"
	ResourceEvents Resource = "events"

	// System / platform
	ResourceSystem Resource = "system"
	ResourceAudit  Resource = "audit"
	ResourceRBAC   Resource = "rbac"
)

var KnownResources = map[Resource]struct{}{
	ResourceTicket: {}, ResourceQueue: {}, ResourceBoard: {}, ResourceEvents: {},
	ResourceSystem: {}, ResourceAudit: {}, ResourceRBAC: {},
}

// ----------------------------
// Roles
// ----------------------------
//
// Policy subjects assigned to accounts via grouping policies. They mirror the
// directory roles one-to-one.

const (
	WildcardRole Role = "*"

	RoleBranchCustomer Role = "role:branch:customer"
	RoleBranchStaff    Role = "role:branch:staff"
	RoleBranchAdmin    Role = "role:branch:admin"
)

var KnownRoles = map[Role]struct{}{
	RoleBranchCustomer: {},
	RoleBranchStaff:    {},
	RoleBranchAdmin:    {},
}

// ----------------------------
// Domains
// ----------------------------
//
// A deployment serves one branch; "branch" is the only concrete domain.

const (
	DomainBranch   Domain = "branch"
	WildcardDomain Domain = "*"
)

// IsValidDomain checks whether d is a recognised domain string.
func IsValidDomain(d Domain) bool {
	return d == DomainBranch || d == WildcardDomain
}

// ----------------------------
// Casbin tuple helpers
// ----------------------------

type PolicyEffect string

const (
	EffectAllow PolicyEffect = "allow"
	EffectDeny  PolicyEffect = "deny"
)

// GroupSubject is the g.sub in Casbin: a concrete account id.
type GroupSubject string

// Grouping rows: g, account_id, role, domain
type GroupingPolicy struct {
	Subject GroupSubject
	Role    Role
	Domain  Domain
}

// Permission rows: p, role, domain, resource, action, eft
type PermissionPolicy struct {
	Subject Role
	Domain  Domain
	Object  Resource
	Action  Action
	Effect  PolicyEffect
}
