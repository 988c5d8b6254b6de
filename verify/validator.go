// Package verifykit validates RS256-signed access tokens issued by a remote
// identity provider. A Validator resolves verification keys from the
// provider's JWKS endpoint through a bounded LRU cache, verifies the token
// signature, and applies issuer and lifetime checks with a configurable
// clock skew. Audience claims are deliberately never checked.
package verifykit

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"github.com/open-rails/tokenkit/jwks"
	"github.com/open-rails/tokenkit/keycache"
)

// Validator is the public entry point. Construct one per provider with New
// and share it across requests; the only mutable state is the internal key
// cache, which is safe for concurrent use.
type Validator struct {
	cfg      Config
	resolver *keyResolver
	log      logrus.FieldLogger
	now      func() time.Time
}

// Option customizes a Validator beyond its Config.
type Option func(*Validator)

// WithLogger installs a logger. The default is logrus.StandardLogger().
func WithLogger(log logrus.FieldLogger) Option {
	return func(v *Validator) {
		v.log = log
	}
}

// WithFetcher replaces the key set fetcher. Useful for tests or custom
// transports; the default fetches over HTTPS with a 10s timeout.
func WithFetcher(f KeySetFetcher) Option {
	return func(v *Validator) {
		v.resolver.fetcher = f
	}
}

// New builds a Validator from cfg. It returns an error for misconfiguration
// (e.g. no provider domain); such errors are a setup failure, not a
// per-request validation outcome.
func New(cfg Config, opts ...Option) (*Validator, error) {
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	v := &Validator{
		cfg: cfg,
		log: logrus.StandardLogger(),
		now: time.Now,
	}
	v.resolver = &keyResolver{
		cache:   keycache.New(cfg.CacheMaxSize, cfg.CacheTTL),
		fetcher: jwks.NewFetcher(cfg.HTTPClient),
		jwksURL: cfg.JWKSURL,
	}
	for _, opt := range opts {
		opt(v)
	}
	v.resolver.log = v.log
	return v, nil
}

// IssuerURL returns the issuer this validator expects tokens to carry.
func (v *Validator) IssuerURL() string { return v.cfg.IssuerURL }

// Validate runs the full pipeline over a raw token string:
// parse, key resolution, signature verification, issuer check, lifetime
// check, payload assembly. The first failing stage determines the returned
// error; see the package sentinels for the possible reasons.
func (v *Validator) Validate(ctx context.Context, raw string) (*Payload, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrEmptyToken
	}
	if strings.Count(raw, ".") != 2 {
		return nil, fmt.Errorf("%w: expected three dot-separated segments", ErrMalformedToken)
	}

	claims, err := v.verifySignature(ctx, raw)
	if err != nil {
		return nil, err
	}
	if err := v.checkIssuer(claims); err != nil {
		return nil, err
	}
	if err := v.checkLifetime(claims); err != nil {
		return nil, err
	}
	return buildPayload(claims), nil
}

// ValidateRequest reads the Authorization header from r, extracts the bearer
// token, and delegates to Validate. A nil request is a caller contract
// violation and returns an error outside the validation taxonomy.
func (v *Validator) ValidateRequest(ctx context.Context, r *http.Request) (*Payload, error) {
	if r == nil {
		return nil, errors.New("verify: nil request")
	}
	token, err := ExtractBearer(r.Header.Get("Authorization"))
	if err != nil {
		return nil, err
	}
	return v.Validate(ctx, token)
}

// verifySignature parses the token and cryptographically verifies it against
// the key named by its kid header. Only RS256 is accepted; claims validation
// is disabled here so issuer and lifetime checks run in pipeline order after
// the signature is established.
func (v *Validator) verifySignature(ctx context.Context, raw string) (jwt.MapClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	var resolveErr error
	token, err := parser.Parse(raw, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		key, err := v.resolver.resolve(ctx, kid)
		if err != nil {
			resolveErr = err
			return nil, err
		}
		return key, nil
	})
	if err != nil {
		switch {
		case resolveErr != nil:
			return nil, resolveErr
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
		default:
			return nil, fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
		}
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected claims type", ErrMalformedToken)
	}
	return claims, nil
}

func (v *Validator) checkIssuer(claims jwt.MapClaims) error {
	iss, err := claims.GetIssuer()
	if err != nil || iss != v.cfg.IssuerURL {
		return fmt.Errorf("%w: token issuer %q, expected %q", ErrIssuerMismatch, iss, v.cfg.IssuerURL)
	}
	return nil
}

// checkLifetime enforces exp and nbf with the configured clock skew.
// exp must lie after now-skew; nbf, when present, must lie before now+skew.
func (v *Validator) checkLifetime(claims jwt.MapClaims) error {
	now := v.now()

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return fmt.Errorf("%w: token carries no usable exp claim", ErrTokenExpired)
	}
	if !exp.Time.After(now.Add(-v.cfg.ClockSkew)) {
		return fmt.Errorf("%w: expired at %s", ErrTokenExpired, exp.Time.UTC().Format(time.RFC3339))
	}

	nbf, err := claims.GetNotBefore()
	if err != nil {
		return fmt.Errorf("%w: nbf claim is not a valid timestamp", ErrMalformedToken)
	}
	if nbf != nil && !nbf.Time.Before(now.Add(v.cfg.ClockSkew)) {
		return fmt.Errorf("%w: not valid before %s", ErrTokenNotYetValid, nbf.Time.UTC().Format(time.RFC3339))
	}
	return nil
}
