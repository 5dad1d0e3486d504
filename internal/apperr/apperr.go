// Package apperr implements the service's error taxonomy: Input, Credential,
// Proof, Resource and Configuration kinds, each with an HTTP status and an
// OAuth2 grant-error code disposition, per the error handling design.
package apperr

import (
	"net/http"

	"github.com/pkg/errors"
)

// Kind classifies an error into one of the taxonomy's five buckets.
type Kind string

const (
	KindInput         Kind = "input"
	KindCredential     Kind = "credential"
	KindProof          Kind = "proof"
	KindResource       Kind = "resource"
	KindConfiguration  Kind = "configuration"
)

// GrantError is the OAuth2 authorization-grant error code vocabulary.
type GrantError string

const (
	GrantInvalidRequest       GrantError = "invalid_request"
	GrantInvalidGrant         GrantError = "invalid_grant"
	GrantUnsupportedGrantType GrantError = "unsupported_grant_type"
	GrantUnsupportedResponse  GrantError = "unsupported_response_type"
	GrantAccessDenied         GrantError = "access_denied"
	GrantServerError          GrantError = "server_error"
)

// Error is an apperr-wrapped error carrying a taxonomy Kind, an HTTP status,
// an optional OAuth2 grant error code, and the wrapped cause (via pkg/errors
// so the stack trace and root cause remain inspectable in logs).
type Error struct {
	Kind        Kind
	Status      int
	Grant       GrantError
	Description string
	cause       error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Description + ": " + e.cause.Error()
	}
	return e.Description
}

func (e *Error) Unwrap() error { return e.cause }

// Cause returns the root cause, matching the pkg/errors convention used
// throughout this module's wrapping.
func (e *Error) Cause() error { return errors.Cause(e.cause) }

func newErr(kind Kind, status int, grant GrantError, desc string, cause error) *Error {
	return &Error{Kind: kind, Status: status, Grant: grant, Description: desc, cause: cause}
}

// Input wraps a malformed-request / unknown-client / bad-redirect-uri error.
func Input(desc string, cause error) *Error {
	return newErr(KindInput, http.StatusBadRequest, GrantInvalidRequest, desc, cause)
}

// InvalidGrant wraps an auth-code/token-exchange rejection.
func InvalidGrant(desc string, cause error) *Error {
	return newErr(KindResource, http.StatusBadRequest, GrantInvalidGrant, desc, cause)
}

// AccessDenied wraps a user-denied-consent rejection.
func AccessDenied(desc string, cause error) *Error {
	return newErr(KindInput, http.StatusOK, GrantAccessDenied, desc, cause)
}

// Credential wraps an expired/wrong-schema/signature-invalid/unknown-issuer
// error. Callers must never surface the cause to the client; it is logged
// only. The claim itself simply carries verified=false.
func Credential(desc string, cause error) *Error {
	return newErr(KindCredential, http.StatusOK, "", desc, cause)
}

// ProofFailed wraps a fatal proof-build failure (server_error disposition).
func ProofFailed(desc string, cause error) *Error {
	return newErr(KindProof, http.StatusInternalServerError, GrantServerError, desc, cause)
}

// NullifierReplay wraps a duplicate-nullifier rejection (invalid_grant).
func NullifierReplay(desc string, cause error) *Error {
	return newErr(KindProof, http.StatusBadRequest, GrantInvalidGrant, desc, cause)
}

// NotFound wraps a missing-resource error (proof not found, etc).
func NotFound(desc string, cause error) *Error {
	return newErr(KindResource, http.StatusNotFound, "", desc, cause)
}

// Unavailable wraps a dependency-unavailable error (db down on admin route).
func Unavailable(desc string, cause error) *Error {
	return newErr(KindResource, http.StatusServiceUnavailable, "", desc, cause)
}

// Configuration wraps a missing/invalid configuration error.
func Configuration(desc string, cause error) *Error {
	return newErr(KindConfiguration, http.StatusServiceUnavailable, "", desc, cause)
}

// ServerError wraps an unclassified internal failure.
func ServerError(desc string, cause error) *Error {
	return newErr(KindProof, http.StatusInternalServerError, GrantServerError, desc, cause)
}

// As reports whether err is (or wraps) an *Error, returning it if so.
func As(err error) (*Error, bool) {
	var target *Error
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}
