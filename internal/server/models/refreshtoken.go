package models

import "time"

// RefreshToken is a server-stored session handle. Persistent tokens come
// from "remember me" logins and outlive the default session.
type RefreshToken struct {
	ID         string
	UserID     string
	Token      string
	Expires    time.Time
	Persistent bool
	CreatedAt  time.Time
}
