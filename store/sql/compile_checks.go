package sqlstore

import "github.com/XandyNerd/BuscarLead/core"

var (
	_ core.SearchStore            = (*SearchStore)(nil)
	_ core.SearchStore            = (*CachedSearchStore)(nil)
	_ core.LeadStore              = (*LeadStore)(nil)
	_ core.StoreProvider          = (*RepositoryFactory)(nil)
	_ core.RepositoryStoreFactory = (*RepositoryFactory)(nil)
)
