package sqlstore

import (
	"fmt"

	"github.com/XandyNerd/BuscarLead/core"
	persistence "github.com/goliatone/go-persistence-bun"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"
)

// RepositoryFactory builds the search and lead stores over one bun database.
// It satisfies core.RepositoryStoreFactory so the service can build stores
// lazily from a persistence client.
type RepositoryFactory struct {
	db          *bun.DB
	searchCache repositorycache.CacheService

	searches core.SearchStore
	leads    *LeadStore
}

type FactoryOption func(*RepositoryFactory)

// WithSearchCache serves SearchStore().Get through cacheService.
func WithSearchCache(cacheService repositorycache.CacheService) FactoryOption {
	return func(f *RepositoryFactory) {
		f.searchCache = cacheService
	}
}

func NewRepositoryFactory(opts ...FactoryOption) *RepositoryFactory {
	factory := &RepositoryFactory{}
	for _, opt := range opts {
		if opt != nil {
			opt(factory)
		}
	}
	return factory
}

// NewRepositoryFactoryFromPersistence builds the stores eagerly. client may be
// a *persistence.Client or a *bun.DB.
func NewRepositoryFactoryFromPersistence(client any, opts ...FactoryOption) (*RepositoryFactory, error) {
	factory := NewRepositoryFactory(opts...)
	if _, err := factory.BuildStores(client); err != nil {
		return nil, err
	}
	return factory, nil
}

func (f *RepositoryFactory) BuildStores(persistenceClient any) (core.StoreProvider, error) {
	if f == nil {
		return nil, fmt.Errorf("sqlstore: repository factory is nil")
	}
	if f.searches != nil && f.leads != nil {
		return f, nil
	}
	if f.db == nil {
		db, err := resolveBunDB(persistenceClient)
		if err != nil {
			return nil, err
		}
		f.db = db
	}

	searches, err := NewSearchStore(f.db)
	if err != nil {
		return nil, err
	}
	leads, err := NewLeadStore(f.db)
	if err != nil {
		return nil, err
	}
	f.searches, f.leads = searches, leads
	if f.searchCache != nil {
		cached, err := NewCachedSearchStore(searches, f.searchCache)
		if err != nil {
			return nil, err
		}
		f.searches = cached
	}
	return f, nil
}

func (f *RepositoryFactory) SearchStore() core.SearchStore {
	if f == nil {
		return nil
	}
	return f.searches
}

func (f *RepositoryFactory) LeadStore() core.LeadStore {
	if f == nil || f.leads == nil {
		return nil
	}
	return f.leads
}

func (f *RepositoryFactory) DB() *bun.DB {
	if f == nil {
		return nil
	}
	return f.db
}

func resolveBunDB(candidate any) (*bun.DB, error) {
	switch typed := candidate.(type) {
	case nil:
		return nil, fmt.Errorf("sqlstore: persistence client is required")
	case *bun.DB:
		return typed, nil
	case *persistence.Client:
		if typed == nil || typed.DB() == nil {
			return nil, fmt.Errorf("sqlstore: persistence client has no bun db")
		}
		return typed.DB(), nil
	case interface{ DB() *bun.DB }:
		db := typed.DB()
		if db == nil {
			return nil, fmt.Errorf("sqlstore: persistence client returned nil bun db")
		}
		return db, nil
	default:
		return nil, fmt.Errorf("sqlstore: unsupported persistence client type %T", candidate)
	}
}
