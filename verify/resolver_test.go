package verifykit

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"testing"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/open-rails/tokenkit/keycache"
)

// fakeFetcher serves a fixed key set and counts calls.
type fakeFetcher struct {
	set   jwk.Set
	err   error
	calls int
}

func (f *fakeFetcher) Fetch(_ context.Context, _ string) (jwk.Set, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.set, nil
}

func keySetOf(t *testing.T, kids ...string) jwk.Set {
	t.Helper()
	set := jwk.NewSet()
	for _, kid := range kids {
		priv, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)
		key, err := jwk.FromRaw(&priv.PublicKey)
		require.NoError(t, err)
		require.NoError(t, key.Set(jwk.KeyIDKey, kid))
		require.NoError(t, set.AddKey(key))
	}
	return set
}

func newTestResolver(f KeySetFetcher) *keyResolver {
	return &keyResolver{
		cache:   keycache.New(keycache.DefaultMaxSize, 0),
		fetcher: f,
		jwksURL: "https://idp.example.com/api/v1/oauth2/jwks",
		log:     logrus.New(),
	}
}

func TestResolveMissingKeyID(t *testing.T) {
	r := newTestResolver(&fakeFetcher{set: keySetOf(t, "a")})
	_, err := r.resolve(context.Background(), "")
	require.ErrorIs(t, err, ErrMissingKeyID)
}

func TestResolveCachesOnlyMatchingKey(t *testing.T) {
	f := &fakeFetcher{set: keySetOf(t, "x", "y", "z")}
	r := newTestResolver(f)

	key, err := r.resolve(context.Background(), "x")
	require.NoError(t, err)
	require.NotNil(t, key)

	// Only the requested kid was persisted; the rest of the document
	// was discarded, not cached speculatively.
	_, ok := r.cache.TryGet("x")
	require.True(t, ok)
	_, ok = r.cache.TryGet("y")
	require.False(t, ok)
	_, ok = r.cache.TryGet("z")
	require.False(t, ok)
}

func TestResolveCacheHitSkipsFetch(t *testing.T) {
	f := &fakeFetcher{set: keySetOf(t, "x")}
	r := newTestResolver(f)

	_, err := r.resolve(context.Background(), "x")
	require.NoError(t, err)
	_, err = r.resolve(context.Background(), "x")
	require.NoError(t, err)

	require.Equal(t, 1, f.calls, "second resolve must be served from cache")
}

func TestResolveKeyNotFound(t *testing.T) {
	r := newTestResolver(&fakeFetcher{set: keySetOf(t, "a", "b")})
	_, err := r.resolve(context.Background(), "nope")
	require.ErrorIs(t, err, ErrKeyNotFound)
	require.Contains(t, err.Error(), "nope")
}

func TestResolveFetchFailureWrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	r := newTestResolver(&fakeFetcher{err: cause})

	_, err := r.resolve(context.Background(), "x")
	require.ErrorIs(t, err, ErrKeyFetch)
	require.ErrorIs(t, err, cause)
}
