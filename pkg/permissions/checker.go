// Package permissions maps reviewer roles to permission strings and checks
// them with wildcard support.
//
// Permission Format:
//   - "*" - Full access (all permissions)
//   - "resource.*" - All actions on a resource (e.g., "attendance.*")
//   - "resource.subresource.action" - Nested permission (e.g., "attendance.reconciliation.write")
package permissions

import (
	"strings"

	"github.com/rollcall/rollcall-backend/pkg/actor"
)

// Attendance permissions
const (
	ReconciliationRead  = "attendance.reconciliation.read"
	ReconciliationWrite = "attendance.reconciliation.write"
	ReportsExport       = "attendance.reports.export"
	EmployeesImport     = "attendance.employees.import"
)

// rolePermissions is the fixed role table. Roles not listed hold nothing.
var rolePermissions = map[string][]string{
	actor.RoleAdmin:   {"*"},
	actor.RoleSystem:  {"attendance.*"},
	actor.RoleManager: {"attendance.reconciliation.*", ReportsExport},
	actor.RoleViewer:  {ReconciliationRead, ReportsExport},
}

// HasPermission checks if the user's permissions include the required permission.
// Supports wildcard matching:
//   - "*" matches everything
//   - "attendance.*" matches "attendance.reconciliation.write", etc.
//   - Exact match for specific permissions
func HasPermission(userPerms []string, required string) bool {
	if required == "" {
		return true
	}

	for _, p := range userPerms {
		if p == "*" || p == required {
			return true
		}
		if strings.HasSuffix(p, ".*") {
			prefix := strings.TrimSuffix(p, ".*")
			if strings.HasPrefix(required, prefix+".") {
				return true
			}
		}
	}
	return false
}

// HasAnyPermission checks if the user has any of the required permissions.
func HasAnyPermission(userPerms []string, required []string) bool {
	for _, req := range required {
		if HasPermission(userPerms, req) {
			return true
		}
	}
	return false
}

// ForRole returns the permissions granted to a role.
func ForRole(role string) []string {
	return rolePermissions[strings.ToLower(strings.TrimSpace(role))]
}

// RoleHas reports whether a role holds the required permission.
func RoleHas(role, required string) bool {
	return HasPermission(ForRole(role), required)
}

// CanMutateReconciliation is the capability check consulted before any
// reconciliation mutation.
func CanMutateReconciliation(role string) bool {
	return RoleHas(role, ReconciliationWrite)
}
