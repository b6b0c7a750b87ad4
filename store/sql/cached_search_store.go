package sqlstore

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/XandyNerd/BuscarLead/core"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
)

const searchCacheKeyPrefix = "buscarlead::search::v1"

// CachedSearchStore serves Get from a read-through cache and invalidates on
// every write that goes through it. Writes made by other processes are only
// observed once the cache TTL expires.
//
// Each id carries a version that is bumped after every write. A fill that
// raced with a write lands under the superseded version and is never read.
type CachedSearchStore struct {
	base       core.SearchStore
	cache      repositorycache.CacheService
	generation atomic.Uint64

	mu       sync.Mutex
	versions map[string]uint64
}

func NewCachedSearchStore(base core.SearchStore, cacheService repositorycache.CacheService) (*CachedSearchStore, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base search store is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: search cache service is required")
	}
	return &CachedSearchStore{base: base, cache: cacheService, versions: map[string]uint64{}}, nil
}

// SearchCacheKey returns buscarlead::search::v1::<generation>::<version>::<id>
// with the id URL-path escaped.
func SearchCacheKey(generation uint64, version uint64, id string) (string, error) {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return "", fmt.Errorf("sqlstore: search id is required")
	}
	return strings.Join([]string{
		searchCacheKeyPrefix,
		strconv.FormatUint(generation, 10),
		strconv.FormatUint(version, 10),
		url.PathEscape(trimmed),
	}, "::"), nil
}

func (s *CachedSearchStore) Create(ctx context.Context, in core.CreateSearchInput) (core.Search, error) {
	if err := s.ready(); err != nil {
		return core.Search{}, err
	}
	return s.base.Create(ctx, in)
}

func (s *CachedSearchStore) Get(ctx context.Context, id string) (core.Search, error) {
	if err := s.ready(); err != nil {
		return core.Search{}, err
	}
	cacheKey, err := s.cacheKey(id)
	if err != nil {
		return s.base.Get(ctx, id)
	}
	return repositorycache.GetOrFetch(ctx, s.cache, cacheKey, func(ctx context.Context) (core.Search, error) {
		return s.base.Get(ctx, strings.TrimSpace(id))
	})
}

func (s *CachedSearchStore) ListByOwner(ctx context.Context, ownerID string, limit int) ([]core.Search, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.base.ListByOwner(ctx, ownerID, limit)
}

func (s *CachedSearchStore) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	return s.base.CountByOwner(ctx, ownerID)
}

func (s *CachedSearchStore) ListIDs(ctx context.Context) ([]string, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.base.ListIDs(ctx)
}

func (s *CachedSearchStore) SetStatus(ctx context.Context, id string, status core.SearchStatus) error {
	if err := s.ready(); err != nil {
		return err
	}
	if err := s.base.SetStatus(ctx, id, status); err != nil {
		return err
	}
	return s.invalidate(ctx, id)
}

func (s *CachedSearchStore) SetCounters(ctx context.Context, id string, leadsCount int) error {
	if err := s.ready(); err != nil {
		return err
	}
	if err := s.base.SetCounters(ctx, id, leadsCount); err != nil {
		return err
	}
	return s.invalidate(ctx, id)
}

// DeleteAll moves every reader to a fresh key generation; entries of the old
// generation are left to expire.
func (s *CachedSearchStore) DeleteAll(ctx context.Context) (int, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	deleted, err := s.base.DeleteAll(ctx)
	s.mu.Lock()
	s.generation.Add(1)
	s.versions = map[string]uint64{}
	s.mu.Unlock()
	return deleted, err
}

func (s *CachedSearchStore) cacheKey(id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SearchCacheKey(s.generation.Load(), s.versions[strings.TrimSpace(id)], id)
}

// invalidate drops the cached entry and moves readers of id to a new
// version. It must run after the write reached the base store.
func (s *CachedSearchStore) invalidate(ctx context.Context, id string) error {
	stale, err := s.cacheKey(id)
	if err != nil {
		return nil
	}
	s.mu.Lock()
	s.versions[strings.TrimSpace(id)]++
	s.mu.Unlock()
	return s.cache.Delete(ctx, stale)
}

func (s *CachedSearchStore) ready() error {
	if s == nil || s.base == nil || s.cache == nil {
		return fmt.Errorf("sqlstore: cached search store is not configured")
	}
	return nil
}
