package assets

import (
	"context"
	"log/slog"
	"path"
	"strings"

	lru "github.com/hashicorp/golang-lru"

	"github.com/gohye/catalogbot/catalogbot/catalog"
)

// URLResolver turns asset file names into public URLs. Resolved names are memoized until
// Purge, which the catalog manager calls after every reload.
type URLResolver struct {
	base    string
	checker ObjectChecker
	cache   *lru.Cache
}

// NewURLResolver builds a resolver rooted at base. checker may be nil, in which case every
// file is assumed to exist.
func NewURLResolver(base string, checker ObjectChecker, cacheSize int) *URLResolver {
	cache, _ := lru.New(max(cacheSize, 1))
	return &URLResolver{
		base:    strings.TrimRight(base, "/"),
		checker: checker,
		cache:   cache,
	}
}

func (r *URLResolver) key(server catalog.Server, kind, file string) string {
	return path.Join(string(server), kind, file)
}

// URL returns the public URL of file, or "" when the file is unknown or missing.
func (r *URLResolver) URL(ctx context.Context, server catalog.Server, kind, file string) string {
	if r == nil || file == "" {
		return ""
	}
	key := r.key(server, kind, file)
	if cached, ok := r.cache.Get(key); ok {
		return cached.(string)
	}

	url := r.base + "/" + key
	if r.checker != nil {
		exists, err := r.checker.Exists(ctx, key)
		if err != nil {
			slog.Warn("Asset lookup failed",
				slog.String("type", "sys"),
				slog.String("key", key),
				slog.Any("error", err))
			return ""
		}
		if !exists {
			url = ""
		}
	}
	r.cache.Add(key, url)
	return url
}

// Purge forgets every memoized URL.
func (r *URLResolver) Purge() {
	if r != nil {
		r.cache.Purge()
	}
}

// Len is the number of memoized URLs.
func (r *URLResolver) Len() int {
	if r == nil {
		return 0
	}
	return r.cache.Len()
}
