package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/api/idtoken"
)

func TestFederationService_VerifyFederated(t *testing.T) {
	ctx := context.Background()
	exp := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		svc     *FederationService
		token   string
		wantErr bool
	}{
		{
			name:    "not configured",
			svc:     &FederationService{Verifier: &fakeVerifier{}},
			token:   "tok",
			wantErr: true,
		},
		{
			name:    "empty token",
			svc:     &FederationService{Verifier: &fakeVerifier{}, ClientID: "cid"},
			token:   "  ",
			wantErr: true,
		},
		{
			name: "missing email",
			svc: &FederationService{
				Verifier: &fakeVerifier{payload: &ProviderPayload{EmailVerified: true}},
				ClientID: "cid",
			},
			token:   "tok",
			wantErr: true,
		},
		{
			name: "verified",
			svc: &FederationService{
				Verifier: &fakeVerifier{payload: &ProviderPayload{
					Email: "A@B.com", EmailVerified: true, Name: "A", Picture: "p", ExpiresAt: exp,
				}},
				ClientID: "cid",
			},
			token: "tok",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := tt.svc.VerifyFederated(ctx, tt.token)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrFederationVerificationFailed)
				var fe *FederationError
				require.ErrorAs(t, err, &fe)
				require.NotEmpty(t, fe.Cause)
				return
			}
			require.NoError(t, err)
			require.Equal(t, "a@b.com", id.Email)
			require.Equal(t, "A", id.Name)
			require.Equal(t, "p", id.Picture)
			require.Equal(t, exp, id.ExpiresAt)
		})
	}
}

func TestGoogleIDTokenVerifier(t *testing.T) {
	orig := googleValidate
	t.Cleanup(func() { googleValidate = orig })

	t.Run("maps payload", func(t *testing.T) {
		googleValidate = func(_ context.Context, token, audience string) (*idtoken.Payload, error) {
			require.Equal(t, "tok", token)
			require.Equal(t, "cid", audience)
			return &idtoken.Payload{
				Subject:  "1234",
				Audience: "cid",
				Expires:  1746093600,
				Claims: map[string]any{
					"email":          "fed@example.com",
					"email_verified": true,
					"name":           "Fed",
					"picture":        "https://img.example.com/fed.png",
				},
			}, nil
		}

		p, err := GoogleIDTokenVerifier{}.Verify(context.Background(), "tok", "cid")
		require.NoError(t, err)
		require.Equal(t, "1234", p.Subject)
		require.Equal(t, "fed@example.com", p.Email)
		require.True(t, p.EmailVerified)
		require.Equal(t, "Fed", p.Name)
		require.Equal(t, time.Unix(1746093600, 0).UTC(), p.ExpiresAt)
	})

	t.Run("string email_verified", func(t *testing.T) {
		googleValidate = func(context.Context, string, string) (*idtoken.Payload, error) {
			return &idtoken.Payload{Claims: map[string]any{"email": "x@example.com", "email_verified": "false"}}, nil
		}

		p, err := GoogleIDTokenVerifier{}.Verify(context.Background(), "tok", "cid")
		require.NoError(t, err)
		require.False(t, p.EmailVerified)
	})

	t.Run("provider error", func(t *testing.T) {
		boom := errors.New("idtoken: audience provided does not match aud claim in the JWT")
		googleValidate = func(context.Context, string, string) (*idtoken.Payload, error) { return nil, boom }

		_, err := GoogleIDTokenVerifier{}.Verify(context.Background(), "tok", "cid")
		require.ErrorIs(t, err, boom)
	})
}

func TestDescribeProviderError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{errors.New("idtoken: audience provided does not match aud claim in the JWT"), "token was issued for a different client"},
		{errors.New("idtoken: token expired: now=1, expires=0"), "token expired"},
		{errors.New("idtoken: invalid token signature"), "token signature could not be verified"},
		{errors.New("idtoken: could not find matching cert keyId for the token provided"), "token signature could not be verified"},
		{errors.New("idtoken: invalid token, token must have three segments; found 2"), "token is malformed"},
		{fmt.Errorf("fetch certs: %w", context.DeadlineExceeded), "provider keys could not be fetched"},
		{errors.New("something else"), "token rejected by provider"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			require.Equal(t, tt.want, describeProviderError(tt.err))
		})
	}
}
