// Copyright (c) 2026 Sekola. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package authz

import (
	"context"
	"fmt"

	"github.com/taibuivan/sekola/internal/platform/apperr"
	"github.com/taibuivan/sekola/internal/platform/sec"
)

// # Resources & Actions

// Resource names a protected resource family.
type Resource string

const (
	ResourceStudents   Resource = "students"
	ResourceTeachers   Resource = "teachers"
	ResourceParents    Resource = "parents"
	ResourceFees       Resource = "fees"
	ResourceAttendance Resource = "attendance records"
	ResourceExams      Resource = "exam results"
	ResourceDocuments  Resource = "documents"
	ResourceTickets    Resource = "support tickets"
	ResourceReports    Resource = "reports"
)

// Action names an operation on a resource family.
type Action string

const (
	ActionList   Action = "list"
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// # Scope Descriptor

// Scope is the predicate that bounds which records a query may touch.
//
// A service never builds a store query for a protected resource without first
// obtaining a Scope from the [Engine]. Exactly one visibility shape applies:
//
//   - Everything: no restriction (platform super admin).
//   - SchoolID set, StudentIDs nil: the whole school.
//   - StudentIDs non-nil: only records of those students within the school.
//   - Empty: a valid scope that matches nothing (parent without linked
//     students). List operations return an empty page without a store call.
type Scope struct {
	Everything bool
	SchoolID   string
	StudentIDs []string
	UserID     string // restricts to records created by this user (tickets)
	Empty      bool
}

// PermitRecord checks a single loaded record against the scope. It is used
// by get/update/delete paths after the record has been fetched.
//
// The tie-break policy applies: a record in another school is answered with
// NotFound (naming the given noun) so its existence never leaks, while a
// same-school relationship failure is Forbidden.
func (s Scope) PermitRecord(noun, schoolID, studentID string) error {
	if s.Everything {
		return nil
	}

	if schoolID != s.SchoolID {
		return apperr.NotFound(noun)
	}

	if s.Empty {
		return apperr.Forbidden(fmt.Sprintf("Access denied. This %s is outside your visibility", noun))
	}

	if s.StudentIDs != nil && studentID != "" {
		for _, id := range s.StudentIDs {
			if id == studentID {
				return nil
			}
		}
		return apperr.Forbidden(fmt.Sprintf("Access denied. This %s belongs to a student outside your visibility", noun))
	}

	return nil
}

// Target carries the explicit filter parameters a caller supplied, so the
// engine can verify them BEFORE any data is read. A filter naming an entity
// outside the caller's reach must deny, never silently return empty.
type Target struct {
	StudentID string
	ClassID   string
}

// # Rule Table

// operations maps (resource, action) to the set of roles permitted to attempt
// it. Absence means deny. Scope computation is shared across resources; only
// the allowed-role sets differ.
var operations = map[Resource]map[Action][]sec.UserRole{
	ResourceStudents: {
		ActionList:   {sec.RoleSuperAdmin, sec.RoleSchoolAdmin, sec.RoleTeacher, sec.RoleParent},
		ActionRead:   {sec.RoleSuperAdmin, sec.RoleSchoolAdmin, sec.RoleTeacher, sec.RoleStudent, sec.RoleParent},
		ActionCreate: {sec.RoleSuperAdmin, sec.RoleSchoolAdmin},
		ActionUpdate: {sec.RoleSuperAdmin, sec.RoleSchoolAdmin},
		ActionDelete: {sec.RoleSuperAdmin, sec.RoleSchoolAdmin},
	},
	ResourceTeachers: {
		ActionList:   {sec.RoleSuperAdmin, sec.RoleSchoolAdmin, sec.RoleTeacher},
		ActionRead:   {sec.RoleSuperAdmin, sec.RoleSchoolAdmin, sec.RoleTeacher},
		ActionCreate: {sec.RoleSuperAdmin, sec.RoleSchoolAdmin},
		ActionUpdate: {sec.RoleSuperAdmin, sec.RoleSchoolAdmin},
		ActionDelete: {sec.RoleSuperAdmin, sec.RoleSchoolAdmin},
	},
	ResourceParents: {
		ActionList:   {sec.RoleSuperAdmin, sec.RoleSchoolAdmin},
		ActionRead:   {sec.RoleSuperAdmin, sec.RoleSchoolAdmin},
		ActionCreate: {sec.RoleSuperAdmin, sec.RoleSchoolAdmin},
		ActionUpdate: {sec.RoleSuperAdmin, sec.RoleSchoolAdmin},
		ActionDelete: {sec.RoleSuperAdmin, sec.RoleSchoolAdmin},
	},
	ResourceFees: {
		ActionList:   {sec.RoleSuperAdmin, sec.RoleSchoolAdmin, sec.RoleTeacher, sec.RoleStudent, sec.RoleParent},
		ActionRead:   {sec.RoleSuperAdmin, sec.RoleSchoolAdmin, sec.RoleTeacher, sec.RoleStudent, sec.RoleParent},
		ActionCreate: {sec.RoleSuperAdmin, sec.RoleSchoolAdmin},
		ActionUpdate: {sec.RoleSuperAdmin, sec.RoleSchoolAdmin},
		ActionDelete: {sec.RoleSuperAdmin, sec.RoleSchoolAdmin},
	},
	ResourceAttendance: {
		ActionList:   {sec.RoleSuperAdmin, sec.RoleSchoolAdmin, sec.RoleTeacher, sec.RoleStudent, sec.RoleParent},
		ActionRead:   {sec.RoleSuperAdmin, sec.RoleSchoolAdmin, sec.RoleTeacher, sec.RoleStudent, sec.RoleParent},
		ActionCreate: {sec.RoleSuperAdmin, sec.RoleSchoolAdmin, sec.RoleTeacher},
		ActionUpdate: {sec.RoleSuperAdmin, sec.RoleSchoolAdmin, sec.RoleTeacher},
		ActionDelete: {sec.RoleSuperAdmin, sec.RoleSchoolAdmin},
	},
	ResourceExams: {
		ActionList:   {sec.RoleSuperAdmin, sec.RoleSchoolAdmin, sec.RoleTeacher, sec.RoleStudent, sec.RoleParent},
		ActionRead:   {sec.RoleSuperAdmin, sec.RoleSchoolAdmin, sec.RoleTeacher, sec.RoleStudent, sec.RoleParent},
		ActionCreate: {sec.RoleSuperAdmin, sec.RoleSchoolAdmin, sec.RoleTeacher},
		ActionUpdate: {sec.RoleSuperAdmin, sec.RoleSchoolAdmin, sec.RoleTeacher},
		ActionDelete: {sec.RoleSuperAdmin, sec.RoleSchoolAdmin},
	},
	ResourceDocuments: {
		ActionList:   {sec.RoleSuperAdmin, sec.RoleSchoolAdmin, sec.RoleTeacher, sec.RoleStudent, sec.RoleParent},
		ActionRead:   {sec.RoleSuperAdmin, sec.RoleSchoolAdmin, sec.RoleTeacher, sec.RoleStudent, sec.RoleParent},
		ActionCreate: {sec.RoleSuperAdmin, sec.RoleSchoolAdmin, sec.RoleTeacher},
		ActionUpdate: {sec.RoleSuperAdmin, sec.RoleSchoolAdmin, sec.RoleTeacher},
		ActionDelete: {sec.RoleSuperAdmin, sec.RoleSchoolAdmin},
	},
	ResourceTickets: {
		ActionList:   {sec.RoleSuperAdmin, sec.RoleSchoolAdmin, sec.RoleTeacher, sec.RoleStudent, sec.RoleParent},
		ActionRead:   {sec.RoleSuperAdmin, sec.RoleSchoolAdmin, sec.RoleTeacher, sec.RoleStudent, sec.RoleParent},
		ActionCreate: {sec.RoleSchoolAdmin, sec.RoleTeacher, sec.RoleStudent, sec.RoleParent},
		ActionUpdate: {sec.RoleSuperAdmin, sec.RoleSchoolAdmin},
		ActionDelete: {sec.RoleSuperAdmin, sec.RoleSchoolAdmin},
	},
	ResourceReports: {
		ActionRead: {sec.RoleSuperAdmin, sec.RoleSchoolAdmin, sec.RoleTeacher, sec.RoleStudent, sec.RoleParent},
	},
}

// # Engine

// Engine computes scope decisions. It is stateless apart from the resolver
// and safe for concurrent use.
type Engine struct {
	resolver Resolver
}

// NewEngine constructs a scope [Engine] backed by the given resolver.
func NewEngine(resolver Resolver) *Engine {
	return &Engine{resolver: resolver}
}

/*
ScopeFor decides whether the viewer may perform action on resource, and for
allowed read paths computes the scope predicate.

Decision order (identical shape for every resource):

 1. Role not in the allowed set → Forbidden.
 2. School-scoped role without a school binding → Forbidden. This guards
    against malformed identities, not normal flow.
 3. Compute the predicate by role, verifying any explicit filter target
    first. A filter naming an entity in another school is answered with
    NotFound so callers cannot distinguish "other school" from "absent";
    a same-school relationship failure (parent filtering a non-linked
    student) is Forbidden.

Returns:
  - Scope: the visibility predicate for ALLOW decisions
  - error: apperr Forbidden/NotFound for DENY decisions
*/
func (engine *Engine) ScopeFor(ctx context.Context, viewer Identity, resource Resource, action Action, target Target) (Scope, error) {

	// ── 1. Role gate ──────────────────────────────────────────────────────
	allowed, ok := operations[resource][action]
	if !ok || !viewer.Role.OneOf(allowed...) {
		return Scope{}, apperr.Forbidden(fmt.Sprintf("Your role is not permitted to %s %s", action, resource))
	}

	// ── 2. Tenant binding gate ────────────────────────────────────────────
	if viewer.Role.RequiresSchool() && viewer.SchoolID == "" {
		return Scope{}, apperr.Forbidden("Your account is not associated with a school")
	}

	// ── 3. Scope predicate by role ────────────────────────────────────────

	// Support tickets are creator-bound for everyone below school admin:
	// teachers, students, and parents see the tickets they raised, not the
	// school's. Admin visibility falls through to the school-wide rule.
	if resource == ResourceTickets && (action == ActionList || action == ActionRead) &&
		viewer.Role.OneOf(sec.RoleTeacher, sec.RoleStudent, sec.RoleParent) {
		return Scope{SchoolID: viewer.SchoolID, UserID: viewer.UserID}, nil
	}

	switch viewer.Role {

	case sec.RoleSuperAdmin:
		return Scope{Everything: true, StudentIDs: singleStudent(target)}, nil

	case sec.RoleSchoolAdmin, sec.RoleTeacher:
		return engine.schoolScope(ctx, viewer, target)

	case sec.RoleStudent:
		return engine.studentScope(ctx, viewer, resource, target)

	case sec.RoleParent:
		return engine.parentScope(ctx, viewer, resource, target)
	}

	return Scope{}, apperr.Forbidden("Unknown role")
}

// schoolScope bounds admins and teachers to their own school. Explicit filter
// targets are verified against the school before they narrow the scope, so a
// cross-school probe denies instead of silently returning nothing.
func (engine *Engine) schoolScope(ctx context.Context, viewer Identity, target Target) (Scope, error) {
	if target.StudentID != "" {
		school, err := engine.resolver.StudentSchool(ctx, target.StudentID)
		if err != nil {
			return Scope{}, apperr.NotFound("Student")
		}
		if school != viewer.SchoolID {
			// Cross-school ids are indistinguishable from absent ones.
			return Scope{}, apperr.NotFound("Student")
		}
	}

	if target.ClassID != "" {
		school, err := engine.resolver.ClassSchool(ctx, target.ClassID)
		if err != nil {
			return Scope{}, apperr.NotFound("Class")
		}
		if school != viewer.SchoolID {
			return Scope{}, apperr.NotFound("Class")
		}
	}

	return Scope{SchoolID: viewer.SchoolID, StudentIDs: singleStudent(target)}, nil
}

// studentScope pins a student caller to their own student record.
func (engine *Engine) studentScope(ctx context.Context, viewer Identity, resource Resource, target Target) (Scope, error) {
	self, err := engine.resolver.StudentSelf(ctx, viewer.UserID)
	if err != nil {
		return Scope{}, apperr.NotFound("Student profile")
	}

	if target.StudentID != "" && target.StudentID != self {
		return Scope{}, apperr.Forbidden(fmt.Sprintf("Access denied. You can only view your own %s", resource))
	}

	return Scope{SchoolID: viewer.SchoolID, StudentIDs: []string{self}}, nil
}

// parentScope bounds a parent caller to their linked students. No linked
// students is a valid empty scope; a filter naming a non-linked student is a
// relationship failure and therefore Forbidden.
func (engine *Engine) parentScope(ctx context.Context, viewer Identity, resource Resource, target Target) (Scope, error) {
	linked, err := engine.resolver.LinkedStudents(ctx, viewer.UserID)
	if err != nil {
		return Scope{}, apperr.NotFound("Parent profile")
	}

	if target.StudentID != "" {
		for _, id := range linked {
			if id == target.StudentID {
				return Scope{SchoolID: viewer.SchoolID, StudentIDs: []string{id}}, nil
			}
		}
		return Scope{}, apperr.Forbidden(fmt.Sprintf("Access denied. You can only view %s for your linked students", resource))
	}

	if len(linked) == 0 {
		return Scope{Empty: true, SchoolID: viewer.SchoolID}, nil
	}

	return Scope{SchoolID: viewer.SchoolID, StudentIDs: linked}, nil
}

// singleStudent narrows a scope to one student when the caller filtered by id.
func singleStudent(target Target) []string {
	if target.StudentID == "" {
		return nil
	}
	return []string{target.StudentID}
}
