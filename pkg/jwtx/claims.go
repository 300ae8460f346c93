package jwtx

import (
	"encoding/json"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ResetTokenTTL is fixed and independent of the configured session lifetime.
const ResetTokenTTL = time.Hour

// Purpose discriminates what a signed token may be used for. Session tokens
// carry no purpose claim at all.
type Purpose string

const (
	PurposeSession Purpose = ""
	PurposeReset   Purpose = "reset"
)

// Profile is the convenience blob embedded in session tokens for clients.
type Profile struct {
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	PictureURL  string `json:"pictureUrl"`
}

// Claims is the single signed claim bag used by every token we issue. The
// shape of the custom fields is what separates a session token from a reset
// token.
type Claims struct {
	jwt.RegisteredClaims

	// GivenName is the display name of the user
	GivenName string `json:"given_name,omitempty"`

	// Email of the principal, present on every token
	Email string `json:"email,omitempty"`

	// Roles in the order the user store enumerates them
	Roles []string `json:"roles,omitempty"`

	// UserDetails is a serialized Profile
	UserDetails string `json:"userDetails,omitempty"`

	Purpose Purpose `json:"purpose,omitempty"`
}

// NewSessionClaims builds the claims for a session token.
func NewSessionClaims(
	profile Profile,
	roles []string,
	keys KeyConfig,
	ttl time.Duration,
	now time.Time,
) Claims {
	details, _ := json.Marshal(profile) // plain strings, cannot fail

	return Claims{
		RegisteredClaims: newRegistered(keys, ttl, now),
		GivenName:        profile.DisplayName,
		Email:            profile.Email,
		Roles:            roles,
		UserDetails:      string(details),
	}
}

// NewResetClaims builds the claims for a password reset token.
func NewResetClaims(email string, keys KeyConfig, now time.Time) Claims {
	return Claims{
		RegisteredClaims: newRegistered(keys, ResetTokenTTL, now),
		Email:            email,
		Purpose:          PurposeReset,
	}
}

func newRegistered(keys KeyConfig, ttl time.Duration, now time.Time) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Issuer:    keys.IssuerName(),
		Audience:  jwt.ClaimStrings{keys.AudienceName()},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

// Profile decodes the userDetails claim. Tokens without one yield a profile
// built from the plain claims.
func (c *Claims) Profile() Profile {
	var p Profile
	if c.UserDetails != "" && json.Unmarshal([]byte(c.UserDetails), &p) == nil {
		return p
	}
	return Profile{DisplayName: c.GivenName, Email: c.Email}
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidateAudience checks the expected audience is present.
func (c *Claims) ValidateAudience(expected string) error {
	if !slices.Contains(c.Audience, expected) {
		return ErrAudience
	}
	return nil
}

// ValidateExpiry accepts the token while now <= exp. There is no leeway.
func (c *Claims) ValidateExpiry(now time.Time) error {
	if c.ExpiresAt == nil || now.After(c.ExpiresAt.Time) {
		return ErrExpired
	}
	return nil
}

// ValidatePurpose requires an exact match. PurposeSession therefore rejects
// any token that carries a purpose claim.
func (c *Claims) ValidatePurpose(want Purpose) error {
	if c.Purpose != want {
		return ErrWrongPurpose
	}
	return nil
}
