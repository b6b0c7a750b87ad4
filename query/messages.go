package query

import (
	"strings"

	"github.com/XandyNerd/BuscarLead/core"
)

const (
	TypeGetSearchDetail = "buscarlead.query.search.detail"
	TypeListSearches    = "buscarlead.query.search.list"
	TypeListLeads       = "buscarlead.query.leads.list"
	TypeDashboard       = "buscarlead.query.dashboard"
)

type GetSearchDetailMessage struct {
	SearchID string
	OwnerID  string
}

func (GetSearchDetailMessage) Type() string { return TypeGetSearchDetail }

func (m GetSearchDetailMessage) Validate() error {
	if strings.TrimSpace(m.OwnerID) == "" {
		return core.NewValidationError("owner_id", "owner id is required")
	}
	if strings.TrimSpace(m.SearchID) == "" {
		return core.NewValidationError("search_id", "search id is required")
	}
	return nil
}

// ListSearchesMessage lists the owner's searches newest first. A zero limit
// uses the configured default.
type ListSearchesMessage struct {
	OwnerID string
	Limit   int
}

func (ListSearchesMessage) Type() string { return TypeListSearches }

func (m ListSearchesMessage) Validate() error {
	if strings.TrimSpace(m.OwnerID) == "" {
		return core.NewValidationError("owner_id", "owner id is required")
	}
	if m.Limit < 0 {
		return core.NewValidationError("limit", "limit must be >= 0")
	}
	return nil
}

type ListLeadsMessage struct {
	Filter core.LeadListFilter
}

func (ListLeadsMessage) Type() string { return TypeListLeads }

func (m ListLeadsMessage) Validate() error {
	if strings.TrimSpace(m.Filter.OwnerID) == "" {
		return core.NewValidationError("owner_id", "owner id is required")
	}
	if m.Filter.Limit < 0 {
		return core.NewValidationError("limit", "limit must be >= 0")
	}
	if m.Filter.Status != "" && !m.Filter.Status.Valid() {
		return core.NewValidationError("status", "status must be one of new, contacted, not_interested")
	}
	return nil
}

type DashboardMessage struct {
	OwnerID string
}

func (DashboardMessage) Type() string { return TypeDashboard }

func (m DashboardMessage) Validate() error {
	if strings.TrimSpace(m.OwnerID) == "" {
		return core.NewValidationError("owner_id", "owner id is required")
	}
	return nil
}
