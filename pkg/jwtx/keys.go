package jwtx

import (
	"errors"
	"fmt"
)

// MinSecretLength is the minimum HMAC-SHA256 secret size in bytes.
const MinSecretLength = 32

var ErrKeyConfig = errors.New("jwtx: incomplete key configuration")

// KeyConfig is the shared secret plus the issuer and audience every token is
// bound to. It is built once at startup and never mutated.
type KeyConfig struct {
	Secret   []byte
	Issuer   string
	Audience string
}

func (k KeyConfig) MaterialKey() []byte  { return k.Secret }
func (k KeyConfig) IssuerName() string   { return k.Issuer }
func (k KeyConfig) AudienceName() string { return k.Audience }

// Validate reports a missing or weak value.
func (k KeyConfig) Validate() error {
	switch {
	case len(k.Secret) == 0:
		return fmt.Errorf("%w: signing secret is empty", ErrKeyConfig)
	case len(k.Secret) < MinSecretLength:
		return fmt.Errorf("%w: signing secret must be at least %d bytes", ErrKeyConfig, MinSecretLength)
	case k.Issuer == "":
		return fmt.Errorf("%w: issuer is empty", ErrKeyConfig)
	case k.Audience == "":
		return fmt.Errorf("%w: audience is empty", ErrKeyConfig)
	}
	return nil
}
