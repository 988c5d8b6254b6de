package verifykit

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	jwt "github.com/golang-jwt/jwt/v5"
)

// Payload is the typed result of a successful validation. Standard claims
// are exposed as fields; Claims additionally holds every claim present on
// the token, standard ones included, stringified by name.
type Payload struct {
	Issuer    string
	Subject   string
	Audiences []string // nil when the token carries no audience
	ExpiresAt *int64   // Unix seconds
	IssuedAt  *int64
	NotBefore *int64
	JWTID     string
	Claims    map[string]string
}

// buildPayload assembles a Payload from verified claims. Duplicate claim
// names have already collapsed to the last value during JSON decoding.
func buildPayload(claims jwt.MapClaims) *Payload {
	p := &Payload{Claims: make(map[string]string, len(claims))}

	if iss, err := claims.GetIssuer(); err == nil {
		p.Issuer = iss
	}
	if sub, err := claims.GetSubject(); err == nil {
		p.Subject = sub
	}
	if aud, err := claims.GetAudience(); err == nil && len(aud) > 0 {
		p.Audiences = aud
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		v := exp.Unix()
		p.ExpiresAt = &v
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		v := iat.Unix()
		p.IssuedAt = &v
	}
	if nbf, err := claims.GetNotBefore(); err == nil && nbf != nil {
		v := nbf.Unix()
		p.NotBefore = &v
	}
	if jti, ok := claims["jti"].(string); ok {
		p.JWTID = jti
	}

	for name, value := range claims {
		p.Claims[name] = stringifyClaim(value)
	}
	return p
}

// stringifyClaim renders a decoded JSON claim value as a string. Whole
// numbers print without a fractional part so Unix timestamps round-trip.
func stringifyClaim(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1e15 {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case nil:
		return ""
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		return string(b)
	}
}
