package testkit

import (
	"crypto/rand"
	"crypto/rsa"

	jwt "github.com/golang-jwt/jwt/v5"
)

// RSASigner is a minimal in-memory RS256 signer for tests. The library under
// test only verifies tokens; signing lives here so suites can mint tokens
// that validate against the issuer's JWKS.
type RSASigner struct {
	key *rsa.PrivateKey
	kid string
}

func NewRSASigner(bits int, kid string) (*RSASigner, error) {
	if bits == 0 {
		bits = 2048
	}
	k, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, err
	}
	return &RSASigner{key: k, kid: kid}, nil
}

func (s *RSASigner) Algorithm() string           { return jwt.SigningMethodRS256.Alg() }
func (s *RSASigner) KID() string                 { return s.kid }
func (s *RSASigner) PublicKey() *rsa.PublicKey   { return &s.key.PublicKey }
func (s *RSASigner) PrivateKey() *rsa.PrivateKey { return s.key }

// Sign creates a signed JWT with the provided claims and this signer's kid.
func (s *RSASigner) Sign(claims jwt.MapClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = s.kid
	return token.SignedString(s.key)
}

// SignWithMethod signs claims with an arbitrary method and key, for suites
// exercising algorithm rejection.
func (s *RSASigner) SignWithMethod(method jwt.SigningMethod, key any, claims jwt.MapClaims) (string, error) {
	token := jwt.NewWithClaims(method, claims)
	token.Header["kid"] = s.kid
	return token.SignedString(key)
}
