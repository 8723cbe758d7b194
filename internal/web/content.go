package web

import (
	"context"
	"strconv"
	"time"

	"github.com/jmgilman/go/errors"
	"github.com/sourcegraph/conc/pool"

	"github.com/paxxchal/alx-backend-storage/internal/cache"
	"github.com/paxxchal/alx-backend-storage/internal/logger"
)

// DefaultTTL is how long fetched content stays cached.
const DefaultTTL = 10 * time.Second

// FetchFunc retrieves the content at url.
type FetchFunc func(ctx context.Context, url string) (string, error)

// ContentCache caches fetched URL content with a TTL and counts every access.
//
// Content lives at "content:<url>" and the access count at "count:<url>".
// Check and populate are separate store operations: concurrent misses on the
// same URL may each fetch and write.
type ContentCache struct {
	kv    cache.KV
	fetch FetchFunc
	ttl   time.Duration
}

type Option func(*ContentCache)

// WithTTL sets how long content is served from the cache. Non-positive
// values keep the default.
func WithTTL(d time.Duration) Option {
	return func(c *ContentCache) {
		if d > 0 {
			c.ttl = d
		}
	}
}

func NewContentCache(kv cache.KV, fetch FetchFunc, opts ...Option) *ContentCache {
	c := &ContentCache{kv: kv, fetch: fetch, ttl: DefaultTTL}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func ContentKey(url string) string { return "content:" + url }

func CountKey(url string) string { return "count:" + url }

// Fetch returns the content at url, from the cache while it is fresh and from
// the fetch function otherwise. Every call counts as an access, including
// calls that fail. Failed fetches are not cached.
func (c *ContentCache) Fetch(ctx context.Context, url string) (string, error) {
	if url == "" {
		return "", errors.New(errors.CodeInvalidInput, "url is required")
	}
	if _, err := c.kv.Incr(ctx, CountKey(url)); err != nil {
		return "", err
	}

	cached, err := c.kv.Get(ctx, ContentKey(url))
	switch {
	case err == nil:
		logger.Debugf("content cache hit for %s", url)
		return string(cached), nil
	case !cache.IsMiss(err):
		return "", err
	}

	content, err := c.fetch(ctx, url)
	if err != nil {
		return "", errors.Wrapf(err, errors.CodeNetwork, "fetch %s", url)
	}
	if err := c.kv.SetEX(ctx, ContentKey(url), c.ttl, []byte(content)); err != nil {
		return "", err
	}
	logger.Debugf("cached %s for %s", url, c.ttl)
	return content, nil
}

// Count returns how many times url has been requested.
func (c *ContentCache) Count(ctx context.Context, url string) (int64, error) {
	n, err := c.kv.Get(ctx, CountKey(url))
	if cache.IsMiss(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	v, err := decodeCount(n)
	if err != nil {
		return 0, errors.Wrapf(err, errors.CodeInvalidInput, "access count for %s", url)
	}
	return v, nil
}

// FetchMany fetches urls with at most concurrency requests in flight.
// Results are in the order of urls. The first failure cancels the rest.
func (c *ContentCache) FetchMany(ctx context.Context, urls []string, concurrency int) ([]string, error) {
	if concurrency <= 0 {
		concurrency = 1
	}
	out := make([]string, len(urls))
	p := pool.New().WithMaxGoroutines(concurrency).WithContext(ctx).WithCancelOnError()
	for i, u := range urls {
		p.Go(func(ctx context.Context) error {
			content, err := c.Fetch(ctx, u)
			if err != nil {
				return err
			}
			out[i] = content
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeCount(b []byte) (int64, error) {
	return strconv.ParseInt(string(b), 10, 64)
}
