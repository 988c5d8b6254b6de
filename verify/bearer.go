package verifykit

import (
	"fmt"
	"strings"
)

const bearerScheme = "Bearer"

// ExtractBearer parses an Authorization header value into the raw token.
// The scheme comparison is case-insensitive and surrounding whitespace is
// trimmed from the token; whitespace inside the token is left alone.
func ExtractBearer(header string) (string, error) {
	h := strings.TrimSpace(header)
	if h == "" {
		return "", ErrMissingAuthHeader
	}

	if len(h) < len(bearerScheme) || !strings.EqualFold(h[:len(bearerScheme)], bearerScheme) {
		scheme := strings.Fields(h)[0]
		return "", fmt.Errorf("%w: got %q", ErrUnsupportedScheme, scheme)
	}
	rest := h[len(bearerScheme):]
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		// "Bearerxyz" is some other scheme, not a sloppy bearer header.
		scheme := strings.Fields(h)[0]
		return "", fmt.Errorf("%w: got %q", ErrUnsupportedScheme, scheme)
	}

	token := strings.TrimSpace(rest)
	if token == "" {
		return "", ErrMissingBearerValue
	}
	return token, nil
}
