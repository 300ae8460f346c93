package service

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"google.golang.org/api/idtoken"

	"github.com/aussiebroadwan/qayimli/internal/accounts/domain"
	"github.com/aussiebroadwan/qayimli/pkg/slogx"
)

var googleValidate = idtoken.Validate

// FederationError wraps every federated verification failure. Cause is safe
// to show to the end user.
type FederationError struct {
	Cause string
	Err   error
}

func (e *FederationError) Error() string { return "federated login failed: " + e.Cause }

func (e *FederationError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrFederationVerificationFailed}
	}
	return []error{ErrFederationVerificationFailed, e.Err}
}

// ProviderPayload is the verified content of a provider ID token.
type ProviderPayload struct {
	Subject       string
	Audience      string
	Email         string
	EmailVerified bool
	Name          string
	Picture       string
	ExpiresAt     time.Time
}

// IDTokenVerifier checks a provider token's signature, audience and expiry
// against the provider's published keys.
type IDTokenVerifier interface {
	Verify(ctx context.Context, token, audience string) (*ProviderPayload, error)
}

// GoogleIDTokenVerifier verifies Google ID tokens. Key fetching and rotation
// are handled by the idtoken package.
type GoogleIDTokenVerifier struct{}

func (GoogleIDTokenVerifier) Verify(ctx context.Context, token, audience string) (*ProviderPayload, error) {
	p, err := googleValidate(ctx, token, audience)
	if err != nil {
		return nil, err
	}
	return payloadFromGoogle(p), nil
}

func payloadFromGoogle(p *idtoken.Payload) *ProviderPayload {
	out := &ProviderPayload{
		Subject:   p.Subject,
		Audience:  p.Audience,
		ExpiresAt: time.Unix(p.Expires, 0).UTC(),
	}
	if email, ok := p.Claims["email"].(string); ok {
		out.Email = email
	}
	// Google sends a bool, some older tokens carry the string form.
	switch v := p.Claims["email_verified"].(type) {
	case bool:
		out.EmailVerified = v
	case string:
		out.EmailVerified = v == "true"
	}
	if name, ok := p.Claims["name"].(string); ok {
		out.Name = name
	}
	if picture, ok := p.Claims["picture"].(string); ok {
		out.Picture = picture
	}
	return out
}

// FederationService turns a provider token into an AssertedIdentity.
type FederationService struct {
	Verifier IDTokenVerifier
	// ClientID is this deployment's registered client id, the expected audience.
	ClientID string
}

func (s *FederationService) VerifyFederated(ctx context.Context, providerToken string) (domain.AssertedIdentity, error) {
	l := slogx.FromContext(ctx)

	if s == nil || s.Verifier == nil || s.ClientID == "" {
		return domain.AssertedIdentity{}, &FederationError{Cause: "federated login is not configured"}
	}
	if strings.TrimSpace(providerToken) == "" {
		return domain.AssertedIdentity{}, &FederationError{Cause: "missing provider token"}
	}

	p, err := s.Verifier.Verify(ctx, providerToken, s.ClientID)
	if err != nil {
		l.Warn("provider token rejected", "err", err)
		return domain.AssertedIdentity{}, &FederationError{Cause: describeProviderError(err), Err: err}
	}

	if p.Email == "" {
		return domain.AssertedIdentity{}, &FederationError{Cause: "provider token carries no email"}
	}
	if !p.EmailVerified {
		return domain.AssertedIdentity{}, &FederationError{Cause: "provider has not verified the email address"}
	}

	return domain.AssertedIdentity{
		Email:     domain.NormalizeEmail(p.Email),
		Name:      p.Name,
		Picture:   p.Picture,
		ExpiresAt: p.ExpiresAt,
	}, nil
}

// describeProviderError turns an idtoken failure into a short cause. The
// idtoken package only exposes these as formatted strings.
func describeProviderError(err error) string {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || errors.As(err, &netErr) {
		return "provider keys could not be fetched"
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "audience"):
		return "token was issued for a different client"
	case strings.Contains(msg, "expired"):
		return "token expired"
	case strings.Contains(msg, "signature"), strings.Contains(msg, "cert"):
		return "token signature could not be verified"
	case strings.Contains(msg, "segments"), strings.Contains(msg, "decod"), strings.Contains(msg, "unmarshal"):
		return "token is malformed"
	default:
		return "token rejected by provider"
	}
}
