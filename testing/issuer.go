// Package testkit provides a mock identity provider for testing applications
// that verify tokens with tokenkit. It runs an HTTP server exposing a JWKS
// endpoint at the provider convention path and signs tokens that validate
// against those keys, so integration tests need no real auth server.
//
// Example usage:
//
//	issuer := testkit.NewIssuer()
//	defer issuer.Close()
//
//	v, _ := verifykit.New(verifykit.Config{
//		IssuerURL: issuer.URL(),
//		JWKSURL:   issuer.JWKSURL(),
//	}, verifykit.WithFetcher(jwks.NewFetcher(nil, jwks.WithInsecure())))
//
//	token := issuer.CreateToken("user-123")
package testkit

import (
	"net/http"
	"net/http/httptest"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/open-rails/tokenkit/jwks"
)

// JWKSPath mirrors the key set endpoint convention of the provider.
const JWKSPath = "/api/v1/oauth2/jwks"

// Issuer is a mock identity provider backed by httptest.
type Issuer struct {
	server *httptest.Server
	signer *RSASigner
}

// NewIssuer creates an issuer with a fresh RSA key pair and starts its JWKS
// server. Call Close when done.
func NewIssuer() *Issuer {
	return NewIssuerWithKID("test-key-1")
}

// NewIssuerWithKID creates an issuer whose signing key uses the given kid.
func NewIssuerWithKID(kid string) *Issuer {
	signer, err := NewRSASigner(2048, kid)
	if err != nil {
		panic("testkit: failed to create RSA signer: " + err.Error())
	}

	ti := &Issuer{signer: signer}

	mux := http.NewServeMux()
	mux.HandleFunc(JWKSPath, ti.handleJWKS)

	ti.server = httptest.NewServer(mux)
	return ti
}

// URL returns the issuer's base URL; tokens minted here carry it as iss.
func (ti *Issuer) URL() string { return ti.server.URL }

// JWKSURL returns the full URL of the key set endpoint.
func (ti *Issuer) JWKSURL() string { return ti.server.URL + JWKSPath }

// Signer exposes the underlying signer for suites that need raw key access.
func (ti *Issuer) Signer() *RSASigner { return ti.signer }

// Close shuts down the JWKS server.
func (ti *Issuer) Close() {
	if ti.server != nil {
		ti.server.Close()
	}
}

// handleJWKS serves the key set containing the public signing key.
func (ti *Issuer) handleJWKS(w http.ResponseWriter, r *http.Request) {
	key := jwks.FromRSAPublicKey(ti.signer.PublicKey(), ti.signer.KID(), ti.signer.Algorithm())
	jwks.Serve(w, r, jwks.KeySet{Keys: []jwks.Key{key}})
}

// CreateToken creates a signed token for subject with one hour of validity.
func (ti *Issuer) CreateToken(subject string) string {
	return ti.CreateTokenWithClaims(subject, nil)
}

// CreateTokenWithClaims creates a signed token, merging extraClaims over the
// standard set (iss, sub, exp, iat, jti). Extra claims win on collision.
func (ti *Issuer) CreateTokenWithClaims(subject string, extraClaims map[string]any) string {
	now := time.Now()

	claims := jwt.MapClaims{
		"sub": subject,
		"iss": ti.URL(),
		"exp": now.Add(time.Hour).Unix(),
		"iat": now.Unix(),
		"jti": uuid.NewString(),
	}
	for k, v := range extraClaims {
		claims[k] = v
	}

	token, err := ti.signer.Sign(claims)
	if err != nil {
		panic("testkit: failed to sign token: " + err.Error())
	}
	return token
}

// CreateTokenWithExpiry creates a signed token with a custom expiry time.
func (ti *Issuer) CreateTokenWithExpiry(subject string, expiry time.Time) string {
	return ti.CreateTokenWithClaims(subject, map[string]any{"exp": expiry.Unix()})
}

// CreateExpiredToken creates a token that expired an hour ago.
func (ti *Issuer) CreateExpiredToken(subject string) string {
	return ti.CreateTokenWithExpiry(subject, time.Now().Add(-time.Hour))
}
