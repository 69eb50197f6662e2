package photoapi

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/markrai/seen-engine/pkg/asset"
)

// CachedSource puts a TTL cache in front of a Source, keyed by the full
// query signature. Two views opened with identical logical parameters
// share the cached page data instead of hitting the server twice; each
// still owns its own working set.
type CachedSource struct {
	inner Source
	cache *gocache.Cache
}

// NewCachedSource wraps inner with a cache holding entries for ttl.
func NewCachedSource(inner Source, ttl time.Duration) *CachedSource {
	return &CachedSource{
		inner: inner,
		cache: gocache.New(ttl, 2*ttl),
	}
}

// FetchPage returns the cached page for this exact query when present,
// fetching and caching it otherwise. Errors are never cached.
func (s *CachedSource) FetchPage(ctx context.Context, offset, limit int, spec asset.SortSpec, filter asset.FilterCriteria) (asset.Page, error) {
	key := pageKey(offset, limit, spec, filter)
	if v, ok := s.cache.Get(key); ok {
		return v.(asset.Page), nil
	}
	page, err := s.inner.FetchPage(ctx, offset, limit, spec, filter)
	if err != nil {
		return asset.Page{}, err
	}
	s.cache.SetDefault(key, page)
	return page, nil
}

// FetchByID is passed through uncached; detail views want the freshest
// record the server has.
func (s *CachedSource) FetchByID(ctx context.Context, id int64) (asset.Asset, error) {
	return s.inner.FetchByID(ctx, id)
}

// Invalidate drops every cached page. Called after deletions and on
// total-count resets, when any cached window may be stale.
func (s *CachedSource) Invalidate() {
	s.cache.Flush()
}

func pageKey(offset, limit int, spec asset.SortSpec, filter asset.FilterCriteria) string {
	return fmt.Sprintf("%d|%d|%s|%s|%s|%s|%s|%t|%s",
		offset, limit, spec.Field, spec.Order,
		filter.Type, filter.PersonID, filter.FolderPath, filter.Favorite, filter.Query)
}
