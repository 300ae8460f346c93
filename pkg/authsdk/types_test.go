package authsdk_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/aussiebroadwan/qayimli/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

func TestRegisterRequest_Validate(t *testing.T) {
	valid := authsdk.RegisterRequest{
		DisplayName: "Sara",
		Email:       "sara@example.com",
		Password:    "correct-horse",
		PictureURL:  "https://img.example.com/sara.png",
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*authsdk.RegisterRequest)
		field  string
	}{
		{"missing display name", func(r *authsdk.RegisterRequest) { r.DisplayName = "" }, "displayName"},
		{"bad email", func(r *authsdk.RegisterRequest) { r.Email = "not-an-email" }, "email"},
		{"short password", func(r *authsdk.RegisterRequest) { r.Password = "short" }, "password"},
		{"long password", func(r *authsdk.RegisterRequest) { r.Password = strings.Repeat("a", 129) }, "password"},
		{"bad picture url", func(r *authsdk.RegisterRequest) { r.PictureURL = "not a url" }, "pictureUrl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)

			fields := authsdk.FieldErrors(req.Validate())
			require.Contains(t, fields, tt.field)
		})
	}
}

func TestResetPasswordRequest_Validate(t *testing.T) {
	require.NoError(t, authsdk.ResetPasswordRequest{Token: "t", NewPassword: "battery-staple"}.Validate())

	fields := authsdk.FieldErrors(authsdk.ResetPasswordRequest{}.Validate())
	require.Contains(t, fields, "token")
	require.Contains(t, fields, "newPassword")
}

func TestAddress_Validate(t *testing.T) {
	a := authsdk.Address{FirstName: "Sara", LastName: "K", Street: "1 Main", City: "Riyadh", Country: "SA"}
	require.NoError(t, a.Validate())

	a.City = ""
	require.Contains(t, authsdk.FieldErrors(a.Validate()), "city")
}

func TestFieldErrors(t *testing.T) {
	require.Nil(t, authsdk.FieldErrors(nil))
	require.Equal(t, map[string]string{"body": "boom"}, authsdk.FieldErrors(errors.New("boom")))
}
