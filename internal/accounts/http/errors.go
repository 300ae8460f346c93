package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aussiebroadwan/qayimli/internal/accounts/service"
	"github.com/aussiebroadwan/qayimli/pkg/authsdk"
	"github.com/aussiebroadwan/qayimli/pkg/jwtx"
	"github.com/aussiebroadwan/qayimli/pkg/slogx"
)

const maxBodyBytes = 1 << 20

type validatable interface {
	Validate() error
}

// decodeJSON reads a JSON body into v and runs its Validate method.
func decodeJSON(w http.ResponseWriter, r *http.Request, v validatable) *authsdk.APIError {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return authsdk.ErrInvalidRequest.With("request body must be valid JSON")
	}

	if err := v.Validate(); err != nil {
		apiErr := authsdk.ErrInvalidRequest.With("one or more fields are invalid")
		apiErr.Fields = authsdk.FieldErrors(err)
		return apiErr
	}
	return nil
}

// writeServiceError maps a service error onto the API error body. Anything
// unrecognised is logged and reported as server_error.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	log := slogx.FromContext(r.Context())

	var fedErr *service.FederationError
	switch {
	case isResetTokenFailure(err):
		authsdk.ErrInvalidResetToken.WriteError(w)
	case errors.As(err, &fedErr):
		authsdk.ErrFederationFailed.With(fedErr.Cause).WriteError(w)
	case errors.Is(err, service.ErrUnauthenticated):
		authsdk.ErrUnauthenticated.WriteError(w)
	case errors.Is(err, service.ErrUserNotFound):
		authsdk.ErrNotFound.With("user not found").WriteError(w)
	case errors.Is(err, service.ErrAddressNotFound):
		authsdk.ErrNotFound.With("address not found").WriteError(w)
	case errors.Is(err, service.ErrEmailTaken):
		authsdk.ErrEmailTaken.WriteError(w)
	case errors.Is(err, service.ErrPasswordRejected):
		authsdk.ErrInvalidRequest.With("password does not meet requirements").WriteError(w)
	case errors.Is(err, service.ErrInvalidEmail):
		authsdk.ErrInvalidRequest.With("email is required").WriteError(w)
	default:
		log.Error("request failed", "err", err)
		authsdk.ErrServerError.WriteError(w)
	}
}

// isResetTokenFailure covers every way a reset token can be refused. The
// response never says which one it was.
func isResetTokenFailure(err error) bool {
	if _, ok := jwtx.CodeOf(err); ok {
		return true
	}
	return errors.Is(err, service.ErrInvalidResetToken)
}
