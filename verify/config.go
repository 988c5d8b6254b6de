package verifykit

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/open-rails/tokenkit/keycache"
)

const (
	// DefaultClockSkew is the leeway applied to exp and nbf checks.
	DefaultClockSkew = 5 * time.Minute

	// DefaultCacheMaxSize bounds the verification key cache.
	DefaultCacheMaxSize = keycache.DefaultMaxSize

	// jwksPath is the provider convention for the key set endpoint.
	jwksPath = "/api/v1/oauth2/jwks"
)

// Config describes one validator instance. It is read once by New and not
// consulted again afterwards.
type Config struct {
	// ProviderDomain is the identity provider's domain, e.g. "idp.example.com".
	// The expected issuer is derived as https://{ProviderDomain} and the key
	// set endpoint as https://{ProviderDomain}/api/v1/oauth2/jwks.
	ProviderDomain string

	// IssuerURL overrides the issuer derived from ProviderDomain.
	IssuerURL string

	// JWKSURL overrides the key set endpoint derived from ProviderDomain.
	JWKSURL string

	// ClockSkew is the allowed clock drift for temporal checks.
	// Zero or negative values fall back to DefaultClockSkew.
	ClockSkew time.Duration

	// CacheMaxSize bounds the key cache. Zero or negative values fall back
	// to DefaultCacheMaxSize.
	CacheMaxSize int

	// CacheTTL is the sliding expiry for cached keys. Zero disables
	// time-based expiry.
	CacheTTL time.Duration

	// HTTPClient is used for key set fetches when no custom fetcher is
	// installed. Nil means a default client with a 10s timeout.
	HTTPClient *http.Client
}

// normalize fills in defaults and derives the issuer and key set URLs.
// It fails fast on misconfiguration so broken setups never reach request
// handling.
func (c *Config) normalize() error {
	domain := strings.TrimSpace(c.ProviderDomain)
	domain = strings.TrimPrefix(domain, "https://")
	domain = strings.TrimSuffix(domain, "/")

	if domain == "" && (c.IssuerURL == "" || c.JWKSURL == "") {
		return errors.New("verify: provider domain is required (or set both IssuerURL and JWKSURL)")
	}
	if c.IssuerURL == "" {
		c.IssuerURL = fmt.Sprintf("https://%s", domain)
	}
	if c.JWKSURL == "" {
		c.JWKSURL = fmt.Sprintf("https://%s%s", domain, jwksPath)
	}
	if c.ClockSkew <= 0 {
		c.ClockSkew = DefaultClockSkew
	}
	if c.CacheMaxSize <= 0 {
		c.CacheMaxSize = DefaultCacheMaxSize
	}
	return nil
}
