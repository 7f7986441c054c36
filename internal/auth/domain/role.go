package domain

import "time"

// Permission names a capability a role may carry. Unknown names are
// preserved in storage but evaluate to false.
const (
	PermissionChat      = "chat"
	PermissionExplore   = "explore"
	PermissionConstruct = "construct"
	PermissionAdmin     = "admin"
)

type Role struct {
	ID          int64
	Name        string
	Description string
	Permissions map[string]bool // Parsed from JSON storage
	CreatedAt   time.Time
}

// Has reports whether the role carries the named permission. A nil or
// partial permission map denies.
func (r Role) Has(permission string) bool {
	return r.Permissions[permission]
}
