package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientPermissions(t *testing.T) {
	assert.True(t, HasPermission(RoleClient, PermissionCreateProject))
	assert.True(t, HasPermission(RoleClient, PermissionResolveProposal))
	assert.True(t, HasPermission(RoleClient, PermissionDecideApplication))

	assert.False(t, HasPermission(RoleClient, PermissionApplyProject))
	assert.False(t, HasPermission(RoleClient, PermissionAcquireProject))
	assert.False(t, HasPermission(RoleClient, PermissionProposeStatus))
}

func TestFreelancerPermissions(t *testing.T) {
	assert.True(t, HasPermission(RoleFreelancer, PermissionApplyProject))
	assert.True(t, HasPermission(RoleFreelancer, PermissionAcquireProject))
	assert.True(t, HasPermission(RoleFreelancer, PermissionUpdateProgress))
	assert.True(t, HasPermission(RoleFreelancer, PermissionProposeStatus))

	assert.False(t, HasPermission(RoleFreelancer, PermissionCreateProject))
	assert.False(t, HasPermission(RoleFreelancer, PermissionDeleteProject))
	assert.False(t, HasPermission(RoleFreelancer, PermissionResolveProposal))
}

func TestUnknownRoleHasNothing(t *testing.T) {
	assert.False(t, HasPermission("admin", PermissionReadProject))
	assert.False(t, HasPermission("", PermissionReadProject))
}

func TestCheckPermission(t *testing.T) {
	require.NoError(t, CheckPermission(RoleClient, PermissionCreateProject))

	err := CheckPermission(RoleFreelancer, PermissionCreateProject)
	require.Error(t, err)

	var denied *PermissionDeniedError
	require.ErrorAs(t, err, &denied)
	assert.Equal(t, RoleFreelancer, denied.Role)
	assert.Equal(t, PermissionCreateProject, denied.Permission)
}

func TestValidRole(t *testing.T) {
	assert.True(t, ValidRole(RoleClient))
	assert.True(t, ValidRole(RoleFreelancer))
	assert.False(t, ValidRole("admin"))
}
