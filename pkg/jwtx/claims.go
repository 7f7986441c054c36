package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the identity claims embedded in every issued token. The token is
// self-contained: everything a caller needs to know about the bearer is here,
// nothing is looked up during verification.
type Claims struct {
	jwt.RegisteredClaims

	// UserID is the numeric id of the authenticated user.
	UserID int64 `json:"user_id"`

	// Username of the authenticated user.
	Username string `json:"username,omitempty"`

	// RoleID and RoleName of the user's role at issue time.
	RoleID   int64  `json:"role_id"`
	RoleName string `json:"role_name,omitempty"`

	// Superuser marks platform superusers that bypass permission checks.
	Superuser bool `json:"is_superuser,omitempty"`
}

// NewClaims builds claims for a user with issued-at now and expiry now+ttl.
func NewClaims(userID int64, username string, roleID int64, roleName string, superuser bool, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:    userID,
		Username:  username,
		RoleID:    roleID,
		RoleName:  roleName,
		Superuser: superuser,
	}
}
