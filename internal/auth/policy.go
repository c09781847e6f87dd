// Package auth centralizes authorization decisions. Handlers and middleware
// never compare role strings directly — they ask Can(role, action).
package auth

// Action identifies something a user may attempt
type Action string

const (
	ActionTaskRead        Action = "tasks.read"
	ActionTaskWrite       Action = "tasks.write"
	ActionPlanningRead    Action = "planning.read"
	ActionPlanningWrite   Action = "planning.write"
	ActionMaturityRequest Action = "maturity.request"
	ActionMaturityReview  Action = "maturity.review"  // gestor step
	ActionMaturityApprove Action = "maturity.approve" // admin step + direct confirm
	ActionIndicatorRead   Action = "indicators.read"
	ActionIndicatorWrite  Action = "indicators.write"
	ActionUsersManage     Action = "users.manage"
	ActionCompanyManage   Action = "company.manage"
	ActionAuditRead       Action = "audit.read"
)

// rolePolicies maps each role to its allowed actions. Admin is intentionally
// not wildcarded: an action missing here is denied for everyone.
var rolePolicies = map[string]map[Action]bool{
	"admin": {
		ActionTaskRead:        true,
		ActionTaskWrite:       true,
		ActionPlanningRead:    true,
		ActionPlanningWrite:   true,
		ActionMaturityRequest: true,
		ActionMaturityReview:  true,
		ActionMaturityApprove: true,
		ActionIndicatorRead:   true,
		ActionIndicatorWrite:  true,
		ActionUsersManage:     true,
		ActionCompanyManage:   true,
		ActionAuditRead:       true,
	},
	"gestor": {
		ActionTaskRead:        true,
		ActionTaskWrite:       true,
		ActionPlanningRead:    true,
		ActionPlanningWrite:   true,
		ActionMaturityRequest: true,
		ActionMaturityReview:  true,
		ActionIndicatorRead:   true,
		ActionIndicatorWrite:  true,
		ActionAuditRead:       true,
	},
	"colaborador": {
		ActionTaskRead:      true,
		ActionTaskWrite:     true,
		ActionPlanningRead:  true,
		ActionIndicatorRead: true,
	},
}

// Can reports whether a role is allowed to perform an action.
// Unknown roles and unknown actions are denied.
func Can(role string, action Action) bool {
	perms, ok := rolePolicies[role]
	if !ok {
		return false
	}
	return perms[action]
}

// ValidRole reports whether the role name is one the policy knows about
func ValidRole(role string) bool {
	_, ok := rolePolicies[role]
	return ok
}
