package web

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
)

const (
	RequestTimeout  = 20 * time.Second
	MaxResponseSize = 1 * 1024 * 1024 // 1MB
)

// Page is a fetched response body with the URL it was finally served from.
type Page struct {
	URL         string
	ContentType string
	Body        []byte
}

// Fetcher retrieves pages over HTTP. It is the fetch collaborator behind
// ContentCache and does no caching of its own.
type Fetcher struct {
	c *colly.Collector
}

func NewFetcher() *Fetcher {
	c := colly.NewCollector(
		colly.AllowURLRevisit(),
		colly.Async(false),
	)
	c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 2,
		Delay:       250 * time.Millisecond,
	})
	c.SetRequestTimeout(RequestTimeout)
	return &Fetcher{c: c}
}

// Get returns the body of rawURL as text. Its signature matches FetchFunc.
func (f *Fetcher) Get(ctx context.Context, rawURL string) (string, error) {
	p, err := f.Page(ctx, rawURL)
	if err != nil {
		return "", err
	}
	return string(p.Body), nil
}

// Page fetches rawURL. Only text responses are accepted; bodies larger than
// MaxResponseSize are trimmed.
func (f *Fetcher) Page(ctx context.Context, rawURL string) (*Page, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return nil, errors.New("url must start with http:// or https://")
	}

	// A clone shares limits and transport but gets its own callbacks, so
	// concurrent fetches do not see each other's responses.
	c := f.c.Clone()
	c.Context = ctx
	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", NextUserAgent())
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,text/plain;q=0.8,*/*;q=0.5")
		r.Headers.Set("Accept-Language", "en-US,en;q=0.9")
	})

	var page Page
	c.OnResponse(func(r *colly.Response) {
		page.URL = r.Request.URL.String()
		page.ContentType = r.Headers.Get("Content-Type")
		page.Body = append([]byte(nil), r.Body...)
	})

	if err := c.Visit(rawURL); err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if len(page.Body) == 0 {
		return nil, errors.New("empty response body")
	}
	if ct := strings.ToLower(page.ContentType); ct != "" && !strings.HasPrefix(ct, "text/") {
		return nil, errors.New("unsupported content type: binary files like images or PDFs are not supported")
	}
	if len(page.Body) > MaxResponseSize {
		page.Body = append(page.Body[:MaxResponseSize], []byte("... [response trimmed due to size]")...)
	}
	return &page, nil
}
