// Package fetch retrieves chapter documents from municipal sources and
// reduces them to plain text. Sources are public servers, so requests
// are rate limited and responses are cached aggressively; a chapter's
// text changes rarely and re-fetching it on every ingestion run would
// be wasteful and impolite.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/sadiqawos/toronto2.0/internal/errors"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
const DefaultFetchTimeout = 30 * time.Second

// maxBodySize caps response bodies. Chapter documents run to a few
// hundred KB; anything beyond this is not a chapter.
const maxBodySize = 16 << 20

// Fetcher retrieves the plain text of a document at a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
	Close() error
}

// Ensure HTTPFetcher implements Fetcher at compile time.
var _ Fetcher = (*HTTPFetcher)(nil)

// HTTPFetcher fetches documents over HTTP, extracts their text, and
// caches results. Safe for concurrent use.
type HTTPFetcher struct {
	client    *http.Client
	limiter   *rate.Limiter
	cache     *Cache
	userAgent string
	timeout   time.Duration
}

// Option configures an HTTPFetcher.
type Option func(*HTTPFetcher)

// WithTimeout sets the timeout for HTTP requests.
func WithTimeout(d time.Duration) Option {
	return func(f *HTTPFetcher) {
		f.timeout = d
	}
}

// WithRateLimit caps outbound requests at rps requests per second with
// no bursting. Zero or negative disables limiting.
func WithRateLimit(rps float64) Option {
	return func(f *HTTPFetcher) {
		if rps > 0 {
			f.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithCache sets the response cache. Without one every Fetch hits the
// network.
func WithCache(c *Cache) Option {
	return func(f *HTTPFetcher) {
		f.cache = c
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *HTTPFetcher) {
		f.userAgent = ua
	}
}

// NewHTTPFetcher creates a fetcher with the given options.
func NewHTTPFetcher(opts ...Option) *HTTPFetcher {
	f := &HTTPFetcher{
		timeout:   DefaultFetchTimeout,
		userAgent: "bylaw-ingest/1.0",
	}
	for _, opt := range opts {
		opt(f)
	}
	f.client = &http.Client{Timeout: f.timeout}
	return f
}

// Fetch returns the extracted plain text for the document at url,
// serving from cache when possible.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	if f.cache != nil {
		if text, ok := f.cache.Get(url); ok {
			slog.Debug("fetch_cache_hit", slog.String("url", url))
			return text, nil
		}
	}

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	body, err := f.get(ctx, url)
	if err != nil {
		return "", err
	}

	text, err := ExtractText(body)
	if err != nil {
		return "", errors.New(errors.ErrCodeSourceUnreadable,
			fmt.Sprintf("extract text from %s", url), err)
	}

	if f.cache != nil {
		f.cache.Put(url, text)
	}
	slog.Debug("fetch_complete",
		slog.String("url", url),
		slog.Int("bytes", len(text)))
	return text, nil
}

func (f *HTTPFetcher) get(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", errors.New(errors.ErrCodeFetchFailed, fmt.Sprintf("build request for %s", url), err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", errors.New(errors.ErrCodeFetchFailed, fmt.Sprintf("fetch %s", url), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.AcquisitionError(
			fmt.Sprintf("fetch %s: HTTP %d", url, resp.StatusCode), resp.StatusCode, nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", errors.New(errors.ErrCodeFetchFailed, fmt.Sprintf("read %s", url), err)
	}
	return string(body), nil
}

// Close releases resources. The HTTP client needs no explicit cleanup.
func (f *HTTPFetcher) Close() error {
	return nil
}
