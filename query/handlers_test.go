package query

import (
	"context"
	"testing"

	"github.com/XandyNerd/BuscarLead/core"
	goerrors "github.com/goliatone/go-errors"
)

func TestSearchQueries_DelegateToReader(t *testing.T) {
	reader := &stubSearchReader{
		detail: core.SearchDetail{
			Search: core.Search{ID: "search_1", OwnerID: "user_1"},
			Leads:  []core.Lead{{ID: "lead_1"}},
		},
		searches: []core.Search{{ID: "search_2"}, {ID: "search_1"}},
		summary:  core.DashboardSummary{TotalSearches: 2, TotalLeads: 1},
	}

	detail, err := NewGetSearchDetailQuery(reader).Query(context.Background(), GetSearchDetailMessage{
		SearchID: "search_1",
		OwnerID:  "user_1",
	})
	if err != nil {
		t.Fatalf("query detail: %v", err)
	}
	if detail.Search.ID != "search_1" || len(detail.Leads) != 1 {
		t.Fatalf("unexpected detail: %#v", detail)
	}
	if reader.lastOwnerID != "user_1" || reader.lastSearchID != "search_1" {
		t.Fatalf("expected owner and search to be forwarded")
	}

	searches, err := NewListSearchesQuery(reader).Query(context.Background(), ListSearchesMessage{OwnerID: "user_1", Limit: 5})
	if err != nil {
		t.Fatalf("query list searches: %v", err)
	}
	if len(searches) != 2 || reader.lastLimit != 5 {
		t.Fatalf("unexpected searches %#v (limit %d)", searches, reader.lastLimit)
	}

	summary, err := NewDashboardQuery(reader).Query(context.Background(), DashboardMessage{OwnerID: "user_1"})
	if err != nil {
		t.Fatalf("query dashboard: %v", err)
	}
	if summary.TotalSearches != 2 || summary.TotalLeads != 1 {
		t.Fatalf("unexpected summary: %#v", summary)
	}
}

func TestListLeadsQuery_ForwardsFilter(t *testing.T) {
	reader := &stubLeadReader{
		leads: []core.LeadWithSearch{{Lead: core.Lead{ID: "lead_1"}, SearchTerm: "dentista", SearchCity: "Curitiba"}},
	}
	filter := core.LeadListFilter{OwnerID: "user_1", Status: core.LeadStatusContacted, Limit: 10}

	leads, err := NewListLeadsQuery(reader).Query(context.Background(), ListLeadsMessage{Filter: filter})
	if err != nil {
		t.Fatalf("query leads: %v", err)
	}
	if len(leads) != 1 || leads[0].SearchTerm != "dentista" {
		t.Fatalf("unexpected leads: %#v", leads)
	}
	if reader.lastFilter != filter {
		t.Fatalf("expected filter to be forwarded, got %#v", reader.lastFilter)
	}
}

func TestQueryMessages_ValidateReturnsRichError(t *testing.T) {
	messages := []interface{ Validate() error }{
		GetSearchDetailMessage{OwnerID: "user_1"},
		ListSearchesMessage{OwnerID: "user_1", Limit: -1},
		ListLeadsMessage{Filter: core.LeadListFilter{OwnerID: "user_1", Status: core.LeadStatus("archived")}},
		DashboardMessage{},
	}
	for _, msg := range messages {
		err := msg.Validate()
		if err == nil {
			t.Fatalf("expected validation error for %#v", msg)
		}
		var rich *goerrors.Error
		if !goerrors.As(err, &rich) {
			t.Fatalf("expected go-errors envelope, got %T", err)
		}
		if rich.TextCode != core.ServiceErrorBadInput {
			t.Fatalf("expected %q text code, got %q", core.ServiceErrorBadInput, rich.TextCode)
		}
	}

	if err := (ListLeadsMessage{Filter: core.LeadListFilter{OwnerID: "user_1"}}).Validate(); err != nil {
		t.Fatalf("expected empty status filter to be valid, got %v", err)
	}
}

func TestQuery_NilReaderReturnsRichError(t *testing.T) {
	var qry *ListLeadsQuery
	_, err := qry.Query(context.Background(), ListLeadsMessage{})
	if err == nil {
		t.Fatalf("expected dependency error")
	}
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryInternal {
		t.Fatalf("expected internal category, got %q", rich.Category)
	}
}

type stubSearchReader struct {
	detail   core.SearchDetail
	searches []core.Search
	summary  core.DashboardSummary

	lastSearchID string
	lastOwnerID  string
	lastLimit    int
}

func (s *stubSearchReader) GetSearchDetail(_ context.Context, id string, ownerID string) (core.SearchDetail, error) {
	s.lastSearchID = id
	s.lastOwnerID = ownerID
	return s.detail, nil
}

func (s *stubSearchReader) ListSearches(_ context.Context, ownerID string, limit int) ([]core.Search, error) {
	s.lastOwnerID = ownerID
	s.lastLimit = limit
	return s.searches, nil
}

func (s *stubSearchReader) Dashboard(_ context.Context, ownerID string) (core.DashboardSummary, error) {
	s.lastOwnerID = ownerID
	return s.summary, nil
}

type stubLeadReader struct {
	leads      []core.LeadWithSearch
	lastFilter core.LeadListFilter
}

func (s *stubLeadReader) ListLeads(_ context.Context, filter core.LeadListFilter) ([]core.LeadWithSearch, error) {
	s.lastFilter = filter
	return s.leads, nil
}
