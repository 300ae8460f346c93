package jwtx

import (
	"github.com/golang-jwt/jwt/v5"
)

// Signer is our interface for anything that can sign JWTs.
type Signer interface {
	Alg() string
	Sign(Claims) (string, error)
}

// HS256Signer signs claims with the shared secret.
type HS256Signer struct {
	keys KeyConfig
}

// NewSignerHS256 creates an HS256 signer, refusing incomplete key material.
func NewSignerHS256(keys KeyConfig) (*HS256Signer, error) {
	if err := keys.Validate(); err != nil {
		return nil, err
	}
	return &HS256Signer{keys: keys}, nil
}

func (s *HS256Signer) Alg() string { return jwt.SigningMethodHS256.Alg() }

func (s *HS256Signer) Sign(c Claims) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return tok.SignedString(s.keys.MaterialKey())
}
