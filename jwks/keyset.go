// Package jwks handles JSON Web Key Sets: encoding RSA public keys as JWKs,
// serving a key set over HTTP, and fetching/parsing a remote provider's set.
package jwks

import (
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"math/big"
	"net/http"
)

// Key holds the minimal JWK fields for an RSA public signature key.
type Key struct {
	Kty string `json:"kty"`
	Use string `json:"use,omitempty"`
	Kid string `json:"kid,omitempty"`
	Alg string `json:"alg,omitempty"`
	N   string `json:"n"` // base64url
	E   string `json:"e"` // base64url
}

// KeySet is an RFC 7517 key set document.
type KeySet struct {
	Keys []Key `json:"keys"`
}

// FromRSAPublicKey encodes an RSA public key as a signature-use JWK.
func FromRSAPublicKey(pub *rsa.PublicKey, kid, alg string) Key {
	return Key{
		Kty: "RSA",
		Use: "sig",
		Kid: kid,
		Alg: alg,
		N:   encodeBase64URL(pub.N),
		E:   encodeBase64URL(big.NewInt(int64(pub.E))),
	}
}

// MarshalWithETag renders the key set to JSON together with a strong ETag
// derived from the rendered bytes, so equal documents always produce equal
// tags.
func (ks KeySet) MarshalWithETag() ([]byte, string, error) {
	body, err := json.Marshal(ks)
	if err != nil {
		return nil, "", err
	}
	sum := sha256.Sum256(body)
	return body, `"` + hex.EncodeToString(sum[:]) + `"`, nil
}

// Serve writes the key set as JSON with revalidation headers. A request
// whose If-None-Match equals the current ETag gets 304 with no body.
func Serve(w http.ResponseWriter, r *http.Request, ks KeySet) {
	body, etag, err := ks.MarshalWithETag()
	if err != nil {
		http.Error(w, "failed to encode key set", http.StatusInternalServerError)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, max-age=300, must-revalidate")
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}

// encodeBase64URL renders a big integer in the unpadded base64url form JWK
// fields use. big.Int.Bytes is already minimal big-endian, so no leading
// zeros need stripping.
func encodeBase64URL(i *big.Int) string {
	return base64.RawURLEncoding.EncodeToString(i.Bytes())
}
