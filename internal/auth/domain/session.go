package domain

import "time"

type Session struct {
	ID        int64
	SessionID string // opaque URL-safe token handed to the client
	UserID    int64
	Token     string // JWT minted at login, carried inside the session
	UserAgent string
	IPAddress string
	CreatedAt time.Time
	ExpiresAt time.Time
	IsActive  bool
}

// ExpiredAt reports whether the session has expired as of now.
func (s Session) ExpiredAt(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
