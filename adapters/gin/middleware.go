// Package authgin adapts the token validator to gin route handling.
package authgin

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	authhttp "github.com/open-rails/tokenkit/adapters/http"
	verifykit "github.com/open-rails/tokenkit/verify"
)

const identityKey = "tokenkit.identity"

// AuthRequired aborts with 401 unless the request carries a valid bearer
// token. On success the verified payload is stored on the gin context and on
// the request context, so both gin handlers and wrapped net/http handlers
// can read it.
func AuthRequired(v *verifykit.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, err := v.ValidateRequest(c.Request.Context(), c.Request)
		if err != nil {
			c.Header("WWW-Authenticate", fmt.Sprintf(
				"Bearer realm=%q, error=\"invalid_token\", error_description=%q",
				v.IssuerURL(), err.Error(),
			))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
			return
		}
		attach(c, payload)
		c.Next()
	}
}

// AuthOptional validates the bearer token when one is present but never
// rejects the request; without a valid token the handler simply sees an
// unauthenticated context.
func AuthOptional(v *verifykit.Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") != "" {
			if payload, err := v.ValidateRequest(c.Request.Context(), c.Request); err == nil {
				attach(c, payload)
			}
		}
		c.Next()
	}
}

// IdentityFromGin returns the verified payload set by AuthRequired or
// AuthOptional.
func IdentityFromGin(c *gin.Context) (*verifykit.Payload, bool) {
	if v, ok := c.Get(identityKey); ok {
		if p, ok2 := v.(*verifykit.Payload); ok2 {
			return p, true
		}
	}
	return nil, false
}

func attach(c *gin.Context, p *verifykit.Payload) {
	c.Set(identityKey, p)
	c.Request = c.Request.WithContext(authhttp.WithIdentity(c.Request.Context(), p))
}
