// Copyright (c) 2026 Sekola. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package authz is the central authorization decision point of the platform.

Every resource service asks this package two questions before touching the
record store: "may this caller perform this operation at all?" and "which
subset of records may the caller see?". The answer to the second question is
a [Scope] descriptor that the service translates into its store query.

Architecture:

  - Identity: the authenticated caller, passed explicitly into every call.
  - Resolver: relationship lookups (own student record, linked students).
  - Engine: the (resource, action) rule table producing Scope or a deny.

Keeping every rule in one table makes the allowed-role set and scope rule for
each resource auditable in one place instead of scattered role conditionals.
*/
package authz

import "github.com/taibuivan/sekola/internal/platform/sec"

// Identity is the authenticated caller's context.
//
// It is produced at the HTTP edge from verified JWT claims and passed
// explicitly into every service and engine call. Nothing in the core ever
// re-derives identity from ambient state.
type Identity struct {
	// UserID is the account id of the caller.
	UserID string

	// Role is one of the five platform roles.
	Role sec.UserRole

	// SchoolID is the caller's school. Empty for platform super admins only.
	SchoolID string
}

// IdentityFromClaims builds an [Identity] from verified token claims.
func IdentityFromClaims(claims *sec.AuthClaims) Identity {
	return Identity{
		UserID:   claims.UserID,
		Role:     sec.UserRole(claims.Role),
		SchoolID: claims.SchoolID,
	}
}
