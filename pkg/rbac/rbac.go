package rbac

// Permissions gating HTTP routes. The lifecycle store re-checks ownership and
// role on every call; these only keep obviously wrong-role requests out early.
const (
	PermissionCreateProject     = "project:create"
	PermissionEditProject       = "project:edit"
	PermissionDeleteProject     = "project:delete"
	PermissionAssignProject     = "project:assign"
	PermissionReadProject       = "project:read"
	PermissionApplyProject      = "project:apply"
	PermissionAcquireProject    = "project:acquire"
	PermissionUpdateProgress    = "project:progress"
	PermissionProposeStatus     = "proposal:propose"
	PermissionResolveProposal   = "proposal:resolve"
	PermissionDecideApplication = "application:decide"
	PermissionReadApplication   = "application:read"
	PermissionReadNotification  = "notification:read"
)

// Roles as posted by the registration form.
const (
	RoleClient     = "client"
	RoleFreelancer = "freelancer"
)

var rolePermissions = map[string][]string{
	RoleClient: {
		PermissionCreateProject,
		PermissionEditProject,
		PermissionDeleteProject,
		PermissionAssignProject,
		PermissionReadProject,
		PermissionResolveProposal,
		PermissionDecideApplication,
		PermissionReadApplication,
		PermissionReadNotification,
	},
	RoleFreelancer: {
		PermissionReadProject,
		PermissionApplyProject,
		PermissionAcquireProject,
		PermissionUpdateProgress,
		PermissionProposeStatus,
		PermissionReadApplication,
		PermissionReadNotification,
	},
}

// HasPermission reports whether role grants permission.
func HasPermission(role string, permission string) bool {
	permissions, ok := rolePermissions[role]
	if !ok {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// CheckPermission is HasPermission returning a typed error for handlers.
func CheckPermission(role string, permission string) error {
	if !HasPermission(role, permission) {
		return &PermissionDeniedError{
			Role:       role,
			Permission: permission,
		}
	}
	return nil
}

// PermissionDeniedError signals that the role lacks the permission.
type PermissionDeniedError struct {
	Role       string
	Permission string
}

func (e *PermissionDeniedError) Error() string {
	return "insufficient permissions"
}

// ValidRole reports whether role is one the platform knows.
func ValidRole(role string) bool {
	_, ok := rolePermissions[role]
	return ok
}
