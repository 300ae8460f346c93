package service

import "errors"

var (
	// ErrUnauthenticated covers both an unknown email and a wrong password.
	ErrUnauthenticated   = errors.New("service: invalid email or password")
	ErrUserNotFound      = errors.New("service: user not found")
	ErrAddressNotFound   = errors.New("service: address not found")
	ErrInvalidEmail      = errors.New("service: email is required")
	ErrEmailTaken        = errors.New("service: email address is already in use")
	ErrPasswordRejected  = errors.New("service: password does not meet requirements")
	ErrInvalidResetToken = errors.New("service: reset token rejected")

	ErrFederationVerificationFailed = errors.New("service: federated token verification failed")
)
