package authsdk

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// MinPasswordLength matches the server's password policy.
const MinPasswordLength = 8

type RegisterRequest struct {
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	PictureURL  string `json:"pictureUrl,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.DisplayName, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Email, validation.Required, validation.Length(3, 254), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(MinPasswordLength, 128)),
		validation.Field(&r.PictureURL, is.URL),
		validation.Field(&r.PhoneNumber, validation.Length(6, 20)),
	)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

// GoogleLoginRequest carries the ID token obtained by the front end from
// Google Sign-In.
type GoogleLoginRequest struct {
	IDToken string `json:"idToken"`
}

func (r GoogleLoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.IDToken, validation.Required),
	)
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

func (r ForgotPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

func (r ResetPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Required),
		validation.Field(&r.NewPassword, validation.Required, validation.Length(MinPasswordLength, 128)),
	)
}

// UserResponse is returned by every call that signs the user in.
type UserResponse struct {
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	PictureURL  string `json:"pictureUrl"`
	Token       string `json:"token"`
}

// UserProfile is a user looked up by email. It never carries a token.
type UserProfile struct {
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	UserName    string `json:"userName"`
	PictureURL  string `json:"pictureUrl"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

type Address struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Street    string `json:"street"`
	City      string `json:"city"`
	Country   string `json:"country"`
}

func (a Address) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.FirstName, validation.Required, validation.Length(1, 100)),
		validation.Field(&a.LastName, validation.Required, validation.Length(1, 100)),
		validation.Field(&a.Street, validation.Required, validation.Length(1, 200)),
		validation.Field(&a.City, validation.Required, validation.Length(1, 100)),
		validation.Field(&a.Country, validation.Required, validation.Length(2, 100)),
	)
}

type EmailExistsResponse struct {
	Exists bool `json:"exists"`
}

// HealthResponse is served by /livez and /readyz. Checks is only set on
// /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime,omitempty"`
	Version string        `json:"version,omitempty"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`
}

// FieldErrors flattens the error returned by a Validate method into
// field name to message. Other errors are reported under "body".
func FieldErrors(err error) map[string]string {
	if err == nil {
		return nil
	}

	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return map[string]string{"body": err.Error()}
	}

	out := make(map[string]string, len(verrs))
	for field, fe := range verrs {
		out[field] = fe.Error()
	}
	return out
}
