package domain

import (
	"strings"
	"time"
)

// User is the principal owned by the account store. Email is the natural
// key and is compared case-insensitively.
type User struct {
	ID           string
	Email        string
	UserName     string
	DisplayName  string
	PictureURL   string
	PhoneNumber  string
	PasswordHash string // argon2 encoded, empty for federated-only users
	// SecurityStamp changes whenever credentials change.
	SecurityStamp string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// HasPassword reports whether the user can sign in with a password.
func (u User) HasPassword() bool { return u.PasswordHash != "" }

// UserNameFromEmail derives the account user name from the local part of an
// email address.
func UserNameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}

// NormalizeEmail trims and lower-cases an address for lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
