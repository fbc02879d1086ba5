package models

import (
	"github.com/google/uuid"
)

// Permission is an atomic allowed-action token
type Permission string

const (
	PermissionBoxesRead         Permission = "boxes:read"
	PermissionBoxesWrite        Permission = "boxes:write"
	PermissionDoctorsRead       Permission = "doctors:read"
	PermissionDoctorsWrite      Permission = "doctors:write"
	PermissionAssignmentsRead   Permission = "assignments:read"
	PermissionAssignmentsWrite  Permission = "assignments:write"
	PermissionAppointmentsRead  Permission = "appointments:read"
	PermissionAppointmentsWrite Permission = "appointments:write"
	PermissionRBACWrite         Permission = "rbac:write"
	PermissionAuditRead         Permission = "audit:read"
)

// Role is a tenant-agnostic named bundle of permissions. The catalog is
// immutable; it is seeded into the permission store at startup.
type Role struct {
	Name        string       `json:"name"`
	Permissions []Permission `json:"permissions"`
}

// DefaultRoles is the built-in role catalog
var DefaultRoles = []Role{
	{
		Name: "admin",
		Permissions: []Permission{
			PermissionBoxesRead, PermissionBoxesWrite,
			PermissionDoctorsRead, PermissionDoctorsWrite,
			PermissionAssignmentsRead, PermissionAssignmentsWrite,
			PermissionAppointmentsRead, PermissionAppointmentsWrite,
			PermissionRBACWrite, PermissionAuditRead,
		},
	},
	{
		Name: "scheduler",
		Permissions: []Permission{
			PermissionBoxesRead, PermissionBoxesWrite,
			PermissionDoctorsRead, PermissionDoctorsWrite,
			PermissionAssignmentsRead, PermissionAssignmentsWrite,
			PermissionAppointmentsRead, PermissionAppointmentsWrite,
		},
	},
	{
		Name: "receptionist",
		Permissions: []Permission{
			PermissionBoxesRead, PermissionDoctorsRead,
			PermissionAssignmentsRead,
			PermissionAppointmentsRead, PermissionAppointmentsWrite,
		},
	},
	{
		Name: "viewer",
		Permissions: []Permission{
			PermissionBoxesRead, PermissionDoctorsRead,
			PermissionAssignmentsRead, PermissionAppointmentsRead,
		},
	},
}

// RoleBinding maps a (tenant, user) pair to a set of role names
type RoleBinding struct {
	TenantID uuid.UUID `json:"tenant_id"`
	UserID   uuid.UUID `json:"user_id"`
	Roles    []string  `json:"roles"`
}

// RoleBindingRequest assigns roles to a user within the caller's tenant
type RoleBindingRequest struct {
	UserID uuid.UUID `json:"user_id"`
	Roles  []string  `json:"roles"`
}
