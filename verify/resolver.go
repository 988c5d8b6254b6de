package verifykit

import (
	"context"
	"crypto/rsa"
	"fmt"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/sirupsen/logrus"

	"github.com/open-rails/tokenkit/keycache"
)

// KeySetFetcher retrieves a provider's key set document. Implemented by
// jwks.Fetcher; tests substitute their own.
type KeySetFetcher interface {
	Fetch(ctx context.Context, url string) (jwk.Set, error)
}

// keyResolver performs cache-first key lookup. On a miss it fetches the full
// key set and caches only the entry that matched the requested kid; unrelated
// keys in the document are discarded.
//
// Concurrent misses for the same kid may each trigger a fetch. The last Put
// wins, which is harmless because each cache mutation is atomic.
type keyResolver struct {
	cache   *keycache.Cache
	fetcher KeySetFetcher
	jwksURL string
	log     logrus.FieldLogger
}

func (r *keyResolver) resolve(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	if kid == "" {
		return nil, ErrMissingKeyID
	}

	if key, ok := r.cache.TryGet(kid); ok {
		return key, nil
	}

	r.log.WithField("kid", kid).Debug("key cache miss, fetching key set")
	set, err := r.fetcher.Fetch(ctx, r.jwksURL)
	if err != nil {
		r.log.WithField("kid", kid).WithError(err).Warn("key set fetch failed")
		return nil, fmt.Errorf("%w: %w", ErrKeyFetch, err)
	}

	key, ok := set.LookupKeyID(kid)
	if !ok {
		return nil, fmt.Errorf("%w: kid %q", ErrKeyNotFound, kid)
	}
	var pub rsa.PublicKey
	if err := key.Raw(&pub); err != nil {
		return nil, fmt.Errorf("%w: materialize key %q: %w", ErrKeyFetch, kid, err)
	}

	r.cache.Put(kid, &pub)
	return &pub, nil
}
