package domain

import "time"

// AssertedIdentity is what a federated provider vouched for. It is never
// persisted as such.
type AssertedIdentity struct {
	Email     string
	Name      string
	Picture   string
	ExpiresAt time.Time
}

// AuthResult is returned by every flow that ends with a session token.
type AuthResult struct {
	DisplayName string
	Email       string
	PictureURL  string
	Token       string
}
