package jwtx

import "errors"

var (
	ErrMalformed    = errors.New("jwtx: malformed token")
	ErrInvalidSig   = errors.New("jwtx: invalid signature")
	ErrIssuer       = errors.New("jwtx: issuer mismatch")
	ErrAudience     = errors.New("jwtx: audience mismatch")
	ErrExpired      = errors.New("jwtx: token expired")
	ErrWrongPurpose = errors.New("jwtx: wrong token purpose")
)

// ErrorCode is the kind of validation failure.
type ErrorCode string

const (
	CodeInvalidSignature        ErrorCode = "invalid_signature"
	CodeInvalidIssuerOrAudience ErrorCode = "invalid_issuer_or_audience"
	CodeExpired                 ErrorCode = "expired"
	CodeWrongPurpose            ErrorCode = "wrong_purpose"
)

// ValidationError is returned by verifiers for every rejected token. The
// wrapped sentinel stays reachable with errors.Is.
type ValidationError struct {
	Code ErrorCode
	Err  error
}

func (e *ValidationError) Error() string { return e.Err.Error() + " (" + string(e.Code) + ")" }
func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(code ErrorCode, err error) *ValidationError {
	return &ValidationError{Code: code, Err: err}
}

// CodeOf extracts the failure kind from err.
func CodeOf(err error) (ErrorCode, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Code, true
	}
	return "", false
}
