package query

import (
	"github.com/XandyNerd/BuscarLead/core"
	gocmd "github.com/goliatone/go-command"
)

var (
	_ gocmd.Querier[GetSearchDetailMessage, core.SearchDetail] = (*GetSearchDetailQuery)(nil)
	_ gocmd.Querier[ListSearchesMessage, []core.Search]        = (*ListSearchesQuery)(nil)
	_ gocmd.Querier[ListLeadsMessage, []core.LeadWithSearch]   = (*ListLeadsQuery)(nil)
	_ gocmd.Querier[DashboardMessage, core.DashboardSummary]   = (*DashboardQuery)(nil)

	_ SearchReader = (*core.Service)(nil)
	_ LeadReader   = (*core.Service)(nil)
)
