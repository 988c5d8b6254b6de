package authhttp

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-rails/tokenkit/jwks"
	testkit "github.com/open-rails/tokenkit/testing"
	verifykit "github.com/open-rails/tokenkit/verify"
)

func newValidator(t *testing.T, issuer *testkit.Issuer) *verifykit.Validator {
	t.Helper()
	v, err := verifykit.New(verifykit.Config{
		IssuerURL: issuer.URL(),
		JWKSURL:   issuer.JWKSURL(),
	}, verifykit.WithFetcher(jwks.NewFetcher(nil, jwks.WithInsecure())))
	require.NoError(t, err)
	return v
}

func TestMiddlewareAllowsValidToken(t *testing.T) {
	issuer := testkit.NewIssuer()
	defer issuer.Close()
	v := newValidator(t, issuer)

	var seen *verifykit.Payload
	handler := Middleware(v)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/things", nil)
	req.Header.Set("Authorization", "Bearer "+issuer.CreateToken("user-123"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "user-123", seen.Subject)
}

func TestMiddlewareRejectsMissingHeader(t *testing.T) {
	issuer := testkit.NewIssuer()
	defer issuer.Close()
	v := newValidator(t, issuer)

	called := false
	handler := Middleware(v)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/things", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "invalid_token")
	assert.False(t, called, "handler must not run for unauthenticated requests")
}

func TestMiddlewareRejectsExpiredToken(t *testing.T) {
	issuer := testkit.NewIssuer()
	defer issuer.Close()
	v := newValidator(t, issuer)

	handler := Middleware(v)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/things", nil)
	req.Header.Set("Authorization", "Bearer "+issuer.CreateExpiredToken("user-123"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestIdentityFromContextAbsent(t *testing.T) {
	_, ok := IdentityFromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	assert.False(t, ok)
}
