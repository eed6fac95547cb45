// Copyright (c) 2026 Sekola. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

// # User Roles

// UserRole represents the authorization level granted to an account.
//
// Roles are not hierarchical: a teacher is not "more" than a parent, they
// simply see different slices of the same school. Route guards therefore
// work with explicit allowed-role sets instead of a numeric ladder.
type UserRole string

const (
	// Platform operator. The only role without a school binding.
	RoleSuperAdmin UserRole = "super_admin"

	// Manages a single school: its people, fees, and documents
	RoleSchoolAdmin UserRole = "school_admin"

	// Staff member linked to subjects within one school
	RoleTeacher UserRole = "teacher"

	// Enrolled pupil, sees only their own records
	RoleStudent UserRole = "student"

	// Guardian, sees records of their linked students only
	RoleParent UserRole = "parent"
)

// # Role Predicates

// IsValid reports whether the role is one of the five known roles.
func (r UserRole) IsValid() bool {
	switch r {
	case RoleSuperAdmin, RoleSchoolAdmin, RoleTeacher, RoleStudent, RoleParent:
		return true
	default:
		return false
	}
}

// RequiresSchool reports whether an account with this role must be bound to
// exactly one school. Every role except the platform super admin is
// school-scoped.
func (r UserRole) RequiresSchool() bool {
	return r != RoleSuperAdmin
}

// OneOf reports whether the role is contained in the given allowed set.
func (r UserRole) OneOf(allowed ...UserRole) bool {
	for _, a := range allowed {
		if r == a {
			return true
		}
	}
	return false
}
