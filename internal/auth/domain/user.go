package domain

import "time"

type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string // PBKDF2-HMAC-SHA256, hex encoded
	Salt         string // hex encoded random salt
	FullName     string
	AvatarURL    string
	RoleID       int64 // Foreign key to roles table
	IsActive     bool
	IsSuperuser  bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastLogin    *time.Time // nil until first successful login
}
