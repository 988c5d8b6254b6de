package jwks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
)

// DefaultFetchTimeout bounds a key-set retrieval when the caller supplies no
// HTTP client of its own and no context deadline.
const DefaultFetchTimeout = 10 * time.Second

const maxKeySetBytes = 1 << 20 // cap response body reads at 1MB

// ErrPlaintextURL is returned when a key-set URL does not use https.
var ErrPlaintextURL = errors.New("jwks: key set URL must use https")

// Fetcher retrieves and parses a remote JWKS document. It performs a single
// GET per call with no retries; failures are reported to the caller.
type Fetcher struct {
	client   *http.Client
	insecure bool
}

// FetcherOpt configures a Fetcher.
type FetcherOpt func(*Fetcher)

// WithInsecure permits plain-http key set URLs. Intended for tests and local
// development against httptest servers only.
func WithInsecure() FetcherOpt {
	return func(f *Fetcher) {
		f.insecure = true
	}
}

// NewFetcher creates a Fetcher using the given HTTP client. If client is nil,
// a client with DefaultFetchTimeout is used.
func NewFetcher(client *http.Client, opts ...FetcherOpt) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: DefaultFetchTimeout}
	}
	f := &Fetcher{client: client}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch retrieves the key set document at rawURL and parses it.
// The URL must use https unless the Fetcher was built WithInsecure.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (jwk.Set, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("jwks: invalid key set URL: %w", err)
	}
	if u.Scheme != "https" && !f.insecure {
		return nil, fmt.Errorf("%w: got %q", ErrPlaintextURL, u.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("jwks: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("jwks: fetch key set: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("jwks: key set endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxKeySetBytes))
	if err != nil {
		return nil, fmt.Errorf("jwks: read key set response: %w", err)
	}

	set, err := jwk.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("jwks: parse key set: %w", err)
	}
	return set, nil
}
