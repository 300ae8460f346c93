package domain

import "time"

// Role is a named group a user belongs to. Names are unique ignoring case and
// are copied into session tokens as role claims.
type Role struct {
	ID        string
	Name      string
	CreatedAt time.Time
}
