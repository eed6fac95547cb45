// Copyright (c) 2026 Sekola. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements the authentication layer for school accounts.

There is no self-registration: accounts are provisioned by administrators
together with their student, teacher, or parent profile, and the platform
super admin is seeded by migration. This package only authenticates those
accounts and manages their session lifecycle.

Architecture:

  - Service: Orchestrates login, refresh-token rotation, and password flows.
  - Repository: Abstracted interfaces for Postgres (accounts, sessions) and
    Redis (volatile reset tokens).
  - Security: Bcrypt password hashes and RSA-signed JWTs carrying the
    caller's role and school binding.
*/
package auth

import (
	"time"

	"github.com/taibuivan/sekola/internal/platform/sec"
)

// # Domain Entities

// User is a login account. Every student, teacher, parent, and school admin
// owns exactly one; the role and school binding recorded here become the JWT
// claims every authorization decision is built from.
type User struct {
	ID           string       `json:"id"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"` // Explicitly omitted from JSON for security.
	FullName     string       `json:"full_name"`
	Role         sec.UserRole `json:"role"`

	// SchoolID is empty only for the platform super admin.
	SchoolID string `json:"school_id,omitempty"`

	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Session represents an active refresh-token session.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	TokenHash string    `json:"-"` // Hashed value of the refresh token. Omitted for security.
	UserAgent string    `json:"user_agent"`
	IPAddress string    `json:"ip_address"`
	ExpiresAt time.Time `json:"expires_at"`
	IsRevoked bool      `json:"is_revoked"`
	CreatedAt time.Time `json:"created_at"`
}

// # Field Identifiers

// Global field names for validation and identity mapping in the authentication domain.
const (
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldToken           = "token"
	FieldCurrentPassword = "current_password"
	FieldNewPassword     = "new_password"
	FieldAccessToken     = "access_token"
	FieldTokenType       = "token_type"
	FieldExpiresIn       = "expires_in"
	FieldUser            = "user"
	FieldMessage         = "message"
)
