package service

import (
	"time"

	"github.com/aussiebroadwan/qayimli/internal/accounts/domain"
	"github.com/aussiebroadwan/qayimli/pkg/jwtx"
)

// TokenService issues and validates the session and reset tokens. It holds
// only immutable configuration and is safe for concurrent use.
type TokenService struct {
	keys       jwtx.KeyConfig
	sessionTTL time.Duration
	now        func() time.Time

	signer   *jwtx.HS256Signer
	verifier *jwtx.HS256Verifier
}

// NewTokenService fails when the key configuration is incomplete. A nil now
// uses the wall clock.
func NewTokenService(keys jwtx.KeyConfig, sessionTTL time.Duration, now func() time.Time) (*TokenService, error) {
	signer, err := jwtx.NewSignerHS256(keys)
	if err != nil {
		return nil, err
	}
	if now == nil {
		now = time.Now
	}

	return &TokenService{
		keys:       keys,
		sessionTTL: sessionTTL,
		now:        now,
		signer:     signer,
		verifier:   jwtx.NewVerifierHS256(keys, jwtx.WithClock(now)),
	}, nil
}

// IssueSession mints a session token for an already authenticated user.
func (s *TokenService) IssueSession(u domain.User, roles []string) (string, error) {
	profile := jwtx.Profile{
		DisplayName: u.DisplayName,
		Email:       u.Email,
		PictureURL:  u.PictureURL,
	}
	return s.signer.Sign(jwtx.NewSessionClaims(profile, roles, s.keys, s.sessionTTL, s.now()))
}

// IssueReset mints a one hour password reset token.
func (s *TokenService) IssueReset(email string) (string, error) {
	return s.signer.Sign(jwtx.NewResetClaims(email, s.keys, s.now()))
}

// ValidateSession rejects reset tokens with jwtx.CodeWrongPurpose.
func (s *TokenService) ValidateSession(token string) (jwtx.Claims, error) {
	return s.verifier.Verify(token, jwtx.PurposeSession)
}

func (s *TokenService) ValidateReset(token string) (jwtx.Claims, error) {
	return s.verifier.Verify(token, jwtx.PurposeReset)
}

// Verifier exposes the session verifier for bearer authentication.
func (s *TokenService) Verifier() jwtx.Verifier { return s.verifier }
