package query

import (
	"context"

	"github.com/XandyNerd/BuscarLead/core"
)

type SearchReader interface {
	GetSearchDetail(ctx context.Context, id string, ownerID string) (core.SearchDetail, error)
	ListSearches(ctx context.Context, ownerID string, limit int) ([]core.Search, error)
	Dashboard(ctx context.Context, ownerID string) (core.DashboardSummary, error)
}

type LeadReader interface {
	ListLeads(ctx context.Context, filter core.LeadListFilter) ([]core.LeadWithSearch, error)
}

type GetSearchDetailQuery struct {
	reader SearchReader
}

func NewGetSearchDetailQuery(reader SearchReader) *GetSearchDetailQuery {
	return &GetSearchDetailQuery{reader: reader}
}

func (q *GetSearchDetailQuery) Query(ctx context.Context, msg GetSearchDetailMessage) (core.SearchDetail, error) {
	if q == nil || q.reader == nil {
		return core.SearchDetail{}, core.NewDependencyError("query: search reader is required")
	}
	return q.reader.GetSearchDetail(ctx, msg.SearchID, msg.OwnerID)
}

type ListSearchesQuery struct {
	reader SearchReader
}

func NewListSearchesQuery(reader SearchReader) *ListSearchesQuery {
	return &ListSearchesQuery{reader: reader}
}

func (q *ListSearchesQuery) Query(ctx context.Context, msg ListSearchesMessage) ([]core.Search, error) {
	if q == nil || q.reader == nil {
		return nil, core.NewDependencyError("query: search reader is required")
	}
	return q.reader.ListSearches(ctx, msg.OwnerID, msg.Limit)
}

type ListLeadsQuery struct {
	reader LeadReader
}

func NewListLeadsQuery(reader LeadReader) *ListLeadsQuery {
	return &ListLeadsQuery{reader: reader}
}

func (q *ListLeadsQuery) Query(ctx context.Context, msg ListLeadsMessage) ([]core.LeadWithSearch, error) {
	if q == nil || q.reader == nil {
		return nil, core.NewDependencyError("query: lead reader is required")
	}
	return q.reader.ListLeads(ctx, msg.Filter)
}

type DashboardQuery struct {
	reader SearchReader
}

func NewDashboardQuery(reader SearchReader) *DashboardQuery {
	return &DashboardQuery{reader: reader}
}

func (q *DashboardQuery) Query(ctx context.Context, msg DashboardMessage) (core.DashboardSummary, error) {
	if q == nil || q.reader == nil {
		return core.DashboardSummary{}, core.NewDependencyError("query: search reader is required")
	}
	return q.reader.Dashboard(ctx, msg.OwnerID)
}
