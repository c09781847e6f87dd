package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanAdmin(t *testing.T) {
	for _, action := range []Action{
		ActionTaskRead, ActionTaskWrite,
		ActionPlanningRead, ActionPlanningWrite,
		ActionMaturityRequest, ActionMaturityReview, ActionMaturityApprove,
		ActionIndicatorRead, ActionIndicatorWrite,
		ActionUsersManage, ActionCompanyManage, ActionAuditRead,
	} {
		assert.True(t, Can("admin", action), "admin should be allowed %s", action)
	}
}

func TestCanGestor(t *testing.T) {
	assert.True(t, Can("gestor", ActionMaturityRequest))
	assert.True(t, Can("gestor", ActionMaturityReview))
	assert.True(t, Can("gestor", ActionPlanningWrite))
	assert.True(t, Can("gestor", ActionIndicatorWrite))
	assert.True(t, Can("gestor", ActionAuditRead))

	// Gestor may never finalize an approval or manage the tenant
	assert.False(t, Can("gestor", ActionMaturityApprove))
	assert.False(t, Can("gestor", ActionUsersManage))
	assert.False(t, Can("gestor", ActionCompanyManage))
}

func TestCanColaborador(t *testing.T) {
	assert.True(t, Can("colaborador", ActionTaskRead))
	assert.True(t, Can("colaborador", ActionTaskWrite))
	assert.True(t, Can("colaborador", ActionPlanningRead))
	assert.True(t, Can("colaborador", ActionIndicatorRead))

	assert.False(t, Can("colaborador", ActionPlanningWrite))
	assert.False(t, Can("colaborador", ActionMaturityRequest))
	assert.False(t, Can("colaborador", ActionMaturityReview))
	assert.False(t, Can("colaborador", ActionMaturityApprove))
	assert.False(t, Can("colaborador", ActionIndicatorWrite))
	assert.False(t, Can("colaborador", ActionAuditRead))
}

func TestCanUnknownRoleDenied(t *testing.T) {
	assert.False(t, Can("", ActionTaskRead))
	assert.False(t, Can("superadmin", ActionTaskRead))
	assert.False(t, Can("ADMIN", ActionTaskRead), "role names are case sensitive")
}

func TestCanUnknownActionDenied(t *testing.T) {
	assert.False(t, Can("admin", Action("billing.manage")))
}

func TestValidRole(t *testing.T) {
	assert.True(t, ValidRole("admin"))
	assert.True(t, ValidRole("gestor"))
	assert.True(t, ValidRole("colaborador"))
	assert.False(t, ValidRole("manager"))
	assert.False(t, ValidRole(""))
}
