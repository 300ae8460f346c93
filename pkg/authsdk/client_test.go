package authsdk_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aussiebroadwan/qayimli/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

func TestClient_Login(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/accounts/login", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req authsdk.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		if req.Password != "correct-horse" {
			authsdk.ErrUnauthenticated.WriteError(w)
			return
		}
		_ = json.NewEncoder(w).Encode(authsdk.UserResponse{
			DisplayName: "Sara", Email: req.Email, Token: "tok",
		})
	}))
	t.Cleanup(srv.Close)

	c := authsdk.NewClient(srv.URL + "/")

	user, err := c.Login(context.Background(), authsdk.LoginRequest{Email: "sara@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	require.Equal(t, "tok", user.Token)
	require.Equal(t, "sara@example.com", user.Email)

	_, err = c.Login(context.Background(), authsdk.LoginRequest{Email: "sara@example.com", Password: "wrong"})
	var apiErr *authsdk.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	require.Equal(t, authsdk.ErrorCodeUnauthenticated, apiErr.Code)
}

func TestClient_BearerAndNoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/accounts/me":
			if r.Header.Get("Authorization") != "Bearer session-token" {
				authsdk.ErrUnauthenticated.With("missing bearer token").WriteError(w)
				return
			}
			_ = json.NewEncoder(w).Encode(authsdk.UserResponse{Email: "sara@example.com", Token: "fresh"})
		case "/v1/accounts/forgot-password":
			w.WriteHeader(http.StatusNoContent)
		case "/v1/accounts/email-exists":
			_ = json.NewEncoder(w).Encode(authsdk.EmailExistsResponse{Exists: r.URL.Query().Get("email") == "a+b@example.com"})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	ctx := context.Background()
	c := authsdk.NewClient(srv.URL)

	me, err := c.CurrentUser(ctx, "session-token")
	require.NoError(t, err)
	require.Equal(t, "fresh", me.Token)

	_, err = c.CurrentUser(ctx, "other")
	var apiErr *authsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "missing bearer token", apiErr.Description)

	require.NoError(t, c.ForgotPassword(ctx, "sara@example.com"))

	exists, err := c.EmailExists(ctx, "a+b@example.com")
	require.NoError(t, err)
	require.True(t, exists)

	// Non-JSON error bodies still become an APIError.
	_, err = c.Liveness(ctx)
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	require.Equal(t, authsdk.ErrorCodeServerError, apiErr.Code)
}

func TestAPIError_WriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	authsdk.ErrInvalidResetToken.WriteError(rec)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	require.JSONEq(t, `{"error":"invalid_reset_token","error_description":"invalid or expired reset token"}`, rec.Body.String())
}
