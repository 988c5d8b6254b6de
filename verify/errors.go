package verifykit

import "errors"

// Validation failure reasons. Every failed validation returns an error chain
// containing exactly one of these sentinels, so callers can branch with
// errors.Is while the message carries stage diagnostics. Key material is
// never included in messages.
var (
	ErrEmptyToken         = errors.New("token is empty")
	ErrMalformedToken     = errors.New("token is not a well-formed JWT")
	ErrMissingKeyID       = errors.New("token header has no kid")
	ErrKeyFetch           = errors.New("failed to fetch verification keys")
	ErrKeyNotFound        = errors.New("no verification key matches the token kid")
	ErrSignatureInvalid   = errors.New("token signature is invalid")
	ErrIssuerMismatch     = errors.New("token issuer mismatch")
	ErrTokenExpired       = errors.New("token is expired")
	ErrTokenNotYetValid   = errors.New("token is not yet valid")
	ErrMissingAuthHeader  = errors.New("authorization header is missing")
	ErrUnsupportedScheme  = errors.New("authorization scheme is not Bearer")
	ErrMissingBearerValue = errors.New("authorization header has no bearer value")
)

// IsValidationError reports whether err belongs to the validation taxonomy,
// as opposed to a caller contract violation such as a nil request.
func IsValidationError(err error) bool {
	for _, sentinel := range []error{
		ErrEmptyToken, ErrMalformedToken, ErrMissingKeyID, ErrKeyFetch,
		ErrKeyNotFound, ErrSignatureInvalid, ErrIssuerMismatch,
		ErrTokenExpired, ErrTokenNotYetValid, ErrMissingAuthHeader,
		ErrUnsupportedScheme, ErrMissingBearerValue,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
