package sqlstore

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/XandyNerd/BuscarLead/core"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
)

type stubSearchStore struct {
	mu       sync.Mutex
	searches map[string]core.Search
	getCalls int
	afterGet func()
}

func newStubSearchStore(searches ...core.Search) *stubSearchStore {
	store := &stubSearchStore{searches: map[string]core.Search{}}
	for _, search := range searches {
		store.searches[search.ID] = search
	}
	return store
}

func (s *stubSearchStore) Create(_ context.Context, in core.CreateSearchInput) (core.Search, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	search := core.Search{ID: "created", OwnerID: in.OwnerID, Term: in.Term, City: in.City, Status: core.SearchStatusProcessing}
	s.searches[search.ID] = search
	return search, nil
}

func (s *stubSearchStore) Get(_ context.Context, id string) (core.Search, error) {
	s.mu.Lock()
	s.getCalls++
	search, ok := s.searches[id]
	afterGet := s.afterGet
	s.afterGet = nil
	s.mu.Unlock()
	if afterGet != nil {
		afterGet()
	}
	if !ok {
		return core.Search{}, core.ErrSearchNotFound
	}
	return search, nil
}

func (s *stubSearchStore) ListByOwner(context.Context, string, int) ([]core.Search, error) {
	return nil, nil
}

func (s *stubSearchStore) CountByOwner(context.Context, string) (int, error) { return 0, nil }

func (s *stubSearchStore) ListIDs(context.Context) ([]string, error) { return nil, nil }

func (s *stubSearchStore) SetStatus(_ context.Context, id string, status core.SearchStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	search := s.searches[id]
	search.Status = status
	s.searches[id] = search
	return nil
}

func (s *stubSearchStore) SetCounters(_ context.Context, id string, leadsCount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	search := s.searches[id]
	search.LeadsCount = leadsCount
	s.searches[id] = search
	return nil
}

func (s *stubSearchStore) DeleteAll(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := len(s.searches)
	s.searches = map[string]core.Search{}
	return count, nil
}

func (s *stubSearchStore) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getCalls
}

func TestCachedSearchStore_GetMissFetchThenHit(t *testing.T) {
	base := newStubSearchStore(core.Search{ID: "s1", OwnerID: "user_1", Status: core.SearchStatusProcessing})
	store, err := NewCachedSearchStore(base, newTestSearchCacheService(t))
	if err != nil {
		t.Fatalf("new cached store: %v", err)
	}

	if _, err := store.Get(context.Background(), "s1"); err != nil {
		t.Fatalf("first get: %v", err)
	}
	if _, err := store.Get(context.Background(), "s1"); err != nil {
		t.Fatalf("second get: %v", err)
	}
	if base.calls() != 1 {
		t.Fatalf("expected second get to be a cache hit, base calls=%d", base.calls())
	}
}

func TestCachedSearchStore_WritesInvalidate(t *testing.T) {
	base := newStubSearchStore(core.Search{ID: "s1", OwnerID: "user_1", Status: core.SearchStatusProcessing})
	store, err := NewCachedSearchStore(base, newTestSearchCacheService(t))
	if err != nil {
		t.Fatalf("new cached store: %v", err)
	}
	ctx := context.Background()
	if _, err := store.Get(ctx, "s1"); err != nil {
		t.Fatalf("prime: %v", err)
	}

	if err := store.SetCounters(ctx, "s1", 4); err != nil {
		t.Fatalf("set counters: %v", err)
	}
	if err := store.SetStatus(ctx, "s1", core.SearchStatusCompleted); err != nil {
		t.Fatalf("set status: %v", err)
	}
	search, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get after write: %v", err)
	}
	if search.Status != core.SearchStatusCompleted || search.LeadsCount != 4 {
		t.Fatalf("expected fresh search after invalidation, got %+v", search)
	}

	if _, err := store.DeleteAll(ctx); err != nil {
		t.Fatalf("delete all: %v", err)
	}
	if _, err := store.Get(ctx, "s1"); err == nil {
		t.Fatalf("expected deleted search to miss after generation bump")
	}
}

func TestCachedSearchStore_WriteDuringFillIsNotMasked(t *testing.T) {
	base := newStubSearchStore(core.Search{ID: "s1", OwnerID: "user_1", Status: core.SearchStatusProcessing})
	store, err := NewCachedSearchStore(base, newTestSearchCacheService(t))
	if err != nil {
		t.Fatalf("new cached store: %v", err)
	}
	ctx := context.Background()

	// The write lands after the fill read the row but before it is cached.
	base.afterGet = func() {
		if err := store.SetStatus(ctx, "s1", core.SearchStatusCompleted); err != nil {
			t.Errorf("set status during fill: %v", err)
		}
	}
	stale, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("racing get: %v", err)
	}
	if stale.Status != core.SearchStatusProcessing {
		t.Fatalf("expected the racing read to see the old row, got %+v", stale)
	}

	fresh, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get after write: %v", err)
	}
	if fresh.Status != core.SearchStatusCompleted {
		t.Fatalf("expected the racing fill to be superseded, got %+v", fresh)
	}
	if base.calls() != 2 {
		t.Fatalf("expected a refetch after the write, base calls=%d", base.calls())
	}
}

func TestSearchCacheKey(t *testing.T) {
	key, err := SearchCacheKey(3, 7, " a/b ")
	if err != nil {
		t.Fatalf("cache key: %v", err)
	}
	if key != "buscarlead::search::v1::3::7::a%2Fb" {
		t.Fatalf("unexpected cache key %q", key)
	}
	if !strings.HasPrefix(key, searchCacheKeyPrefix) {
		t.Fatalf("expected key prefix")
	}
	if _, err := SearchCacheKey(0, 0, " "); err == nil {
		t.Fatalf("expected empty id to fail")
	}
}

func newTestSearchCacheService(t *testing.T) repositorycache.CacheService {
	t.Helper()
	config := repositorycache.DefaultConfig()
	config.TTL = time.Minute
	service, err := repositorycache.NewCacheService(config)
	if err != nil {
		t.Fatalf("new cache service: %v", err)
	}
	return service
}
