// Package images finds stock photos for generated posts. Pexels is the
// primary source, Pixabay the fallback, with results cached in storage.
package images

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"contentbot/internal/storage"
)

var (
	ErrNoResults     = errors.New("images: no results")
	ErrInvalidAPIKey = errors.New("images: invalid API key")
)

const DefaultCacheTTL = 48 * time.Hour

type Fetcher interface {
	Search(ctx context.Context, query string, n int) ([]string, error)
	Random(ctx context.Context) (string, error)
}

// Fallback asks the primary fetcher first and switches to the secondary
// when the primary fails or finds nothing.
type Fallback struct {
	primary   Fetcher
	secondary Fetcher
}

func NewFallback(primary, secondary Fetcher) *Fallback {
	return &Fallback{primary: primary, secondary: secondary}
}

func (f *Fallback) Search(ctx context.Context, query string, n int) ([]string, error) {
	urls, err := f.primary.Search(ctx, query, n)
	if err == nil && len(urls) > 0 {
		return urls, nil
	}
	if err != nil {
		log.Printf("Primary image provider failed for '%s', trying fallback: %v", query, err)
	} else {
		log.Printf("Primary image provider returned nothing for '%s', trying fallback", query)
	}

	urls, err = f.secondary.Search(ctx, query, n)
	if err != nil {
		return nil, err
	}
	if len(urls) == 0 {
		return nil, ErrNoResults
	}
	return urls, nil
}

func (f *Fallback) Random(ctx context.Context) (string, error) {
	url, err := f.primary.Random(ctx)
	if err == nil && url != "" {
		return url, nil
	}
	if err != nil {
		log.Printf("Primary image provider failed for random image, trying fallback: %v", err)
	}

	url, err = f.secondary.Random(ctx)
	if err != nil {
		return "", err
	}
	if url == "" {
		return "", ErrNoResults
	}
	return url, nil
}

// Cached wraps a Fetcher with the storage image cache. Random images
// are never cached.
type Cached struct {
	inner Fetcher
	store *storage.Storage
	ttl   time.Duration
}

func NewCached(inner Fetcher, store *storage.Storage, ttl time.Duration) *Cached {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cached{inner: inner, store: store, ttl: ttl}
}

func (c *Cached) Search(ctx context.Context, query string, n int) ([]string, error) {
	key := normalizeQuery(query)
	if urls, err := c.store.CachedImages(key, c.ttl); err == nil && len(urls) > 0 {
		log.Printf("Image cache hit for '%s'", key)
		if n < len(urls) {
			urls = urls[:n]
		}
		return urls, nil
	}

	urls, err := c.inner.Search(ctx, query, n)
	if err != nil {
		return nil, err
	}
	if len(urls) > 0 {
		if err := c.store.CacheImages(key, urls); err != nil {
			log.Printf("Could not cache images for '%s': %v", key, err)
		}
	}
	return urls, nil
}

func (c *Cached) Random(ctx context.Context) (string, error) {
	return c.inner.Random(ctx)
}

func normalizeQuery(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(query)), " ")
}
