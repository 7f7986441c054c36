package domain

import "time"

// DatabaseGrant records that a user was given access to a named database.
// Revocation flips IsActive rather than deleting the row, so the audit
// trail of who granted what survives.
type DatabaseGrant struct {
	ID        int64
	UserID    int64
	DBName    string
	GrantedBy int64 // user id of the admin who granted access
	GrantedAt time.Time
	IsActive  bool
}
