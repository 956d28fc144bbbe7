// Package authz is the authorization decision point: the static role to
// permission mapping and the route level policy evaluation. Checks are pure
// functions over an already authenticated user.
package authz

import (
	"github.com/devadeboye/mini-jira/internal/apperrors"
	"github.com/devadeboye/mini-jira/internal/models"
)

// Permission keys. Fine grained capability strings grouped by roles.
const (
	PermProjectCreate  = "project.create"
	PermProjectDelete  = "project.delete"
	PermSprintManage   = "sprint.manage"
	PermWorkItemManage = "workitem.manage"
	PermUserManage     = "user.manage"
	PermRoleManage     = "role.manage"
	PermSystemAdmin    = "system.admin"
)

var userPermissions = []string{
	PermProjectCreate,
	PermSprintManage,
	PermWorkItemManage,
}

var adminPermissions = append([]string{
	PermProjectDelete,
	PermUserManage,
	PermRoleManage,
	PermSystemAdmin,
}, userPermissions...)

// RolePermissions is the static role to permission set mapping.
// Admin's set is a strict superset of User's. There are no per user grants.
var RolePermissions = map[models.Role]map[string]struct{}{
	models.RoleUser:  permSet(userPermissions),
	models.RoleAdmin: permSet(adminPermissions),
}

func permSet(perms []string) map[string]struct{} {
	set := make(map[string]struct{}, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}

// HasPermission reports whether the role grants the permission.
// Unknown roles have no permissions at all.
func HasPermission(role models.Role, permission string) bool {
	perms, ok := RolePermissions[role]
	if !ok {
		return false
	}
	_, ok = perms[permission]
	return ok
}

// Policy is the declarative per route requirement. Zero value passes
// everything: absence of a requirement means the check is skipped.
type Policy struct {
	// Allow list of roles. Empty list allows any role
	Roles []models.Role

	// Every listed permission must be granted by the user's role
	Permissions []string
}

// Authorize evaluates the policy against the user. Both checks fail closed:
// a zero value user denies whenever the policy requires anything.
func Authorize(user models.User, policy Policy) error {
	if len(policy.Roles) > 0 {
		allowed := false
		for _, role := range policy.Roles {
			if user.Role == role && user.Role != "" {
				allowed = true
				break
			}
		}
		if !allowed {
			return apperrors.ErrPermissionDenied
		}
	}

	for _, perm := range policy.Permissions {
		if !HasPermission(user.Role, perm) {
			return apperrors.ErrPermissionDenied
		}
	}

	return nil
}
