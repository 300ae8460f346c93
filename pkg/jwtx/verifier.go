package jwtx

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier validates a JWT for a given purpose and gives you back the claims
// if it's legit.
type Verifier interface {
	Verify(token string, purpose Purpose) (Claims, error)
}

// HS256Verifier checks tokens produced by HS256Signer.
type HS256Verifier struct {
	keys   KeyConfig
	now    func() time.Time
	parser *jwt.Parser
}

type VerifierOption func(*HS256Verifier)

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) VerifierOption {
	return func(v *HS256Verifier) { v.now = now }
}

func NewVerifierHS256(keys KeyConfig, opts ...VerifierOption) *HS256Verifier {
	v := &HS256Verifier{
		keys: keys,
		now:  time.Now,
		// Registered claims are checked below against our own clock with
		// zero leeway, so the library must not do it first.
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithoutClaimsValidation(),
		),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify runs the checks in order: signature, issuer, audience, expiry and
// purpose. The first failure wins.
func (v *HS256Verifier) Verify(token string, purpose Purpose) (Claims, error) {
	if err := v.verifySignature(token); err != nil {
		return Claims{}, err
	}

	var c Claims
	if _, err := v.parser.ParseWithClaims(token, &c, v.keyFunc); err != nil {
		return Claims{}, invalid(CodeInvalidSignature, fmt.Errorf("%w: %w", ErrMalformed, err))
	}

	if err := c.ValidateIssuer(v.keys.IssuerName()); err != nil {
		return Claims{}, invalid(CodeInvalidIssuerOrAudience, err)
	}
	if err := c.ValidateAudience(v.keys.AudienceName()); err != nil {
		return Claims{}, invalid(CodeInvalidIssuerOrAudience, err)
	}
	if err := c.ValidateExpiry(v.now()); err != nil {
		return Claims{}, invalid(CodeExpired, err)
	}
	if err := c.ValidatePurpose(purpose); err != nil {
		return Claims{}, invalid(CodeWrongPurpose, err)
	}

	return c, nil
}

// verifySignature checks the HMAC over the raw header.payload bytes before
// anything in the payload is decoded.
func (v *HS256Verifier) verifySignature(token string) error {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return invalid(CodeInvalidSignature, ErrMalformed)
	}

	sig, err := v.parser.DecodeSegment(parts[2])
	if err != nil {
		return invalid(CodeInvalidSignature, fmt.Errorf("%w: %w", ErrMalformed, err))
	}

	err = jwt.SigningMethodHS256.Verify(parts[0]+"."+parts[1], sig, v.keys.MaterialKey())
	if err != nil {
		return invalid(CodeInvalidSignature, ErrInvalidSig)
	}
	return nil
}

func (v *HS256Verifier) keyFunc(*jwt.Token) (any, error) {
	return v.keys.MaterialKey(), nil
}
