package buscarlead

import (
	"context"
	"testing"

	"github.com/XandyNerd/BuscarLead/command"
	"github.com/XandyNerd/BuscarLead/core"
	"github.com/XandyNerd/BuscarLead/query"
	gocmd "github.com/goliatone/go-command"
)

func TestNewFacade_WiresCommandsAndQueries(t *testing.T) {
	facade, err := NewFacade(&stubFacadeService{})
	if err != nil {
		t.Fatalf("new facade: %v", err)
	}

	commands := facade.Commands()
	if commands.CreateSearch == nil || commands.IngestLeads == nil || commands.ResetAll == nil {
		t.Fatalf("expected command handlers to be wired")
	}
	queries := facade.Queries()
	if queries.GetSearchDetail == nil || queries.ListLeads == nil || queries.Dashboard == nil {
		t.Fatalf("expected query handlers to be wired")
	}
}

func TestFacade_CommandAndQueryDelegation(t *testing.T) {
	svc := &stubFacadeService{}
	facade, err := NewFacade(svc)
	if err != nil {
		t.Fatalf("new facade: %v", err)
	}

	collector := gocmd.NewResult[core.SetLeadStatusResult]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)
	if err := facade.Commands().SetLeadStatus.Execute(ctx, command.SetLeadStatusMessage{
		Request: core.SetLeadStatusRequest{LeadID: "lead_1", OwnerID: "user_1", Status: "contacted"},
	}); err != nil {
		t.Fatalf("execute set lead status: %v", err)
	}
	if svc.lastLeadStatus.LeadID != "lead_1" || svc.lastLeadStatus.Status != "contacted" {
		t.Fatalf("unexpected lead status delegation payload: %#v", svc.lastLeadStatus)
	}
	result, ok := collector.Load()
	if !ok || !result.Updated {
		t.Fatalf("expected stored update result, got %#v", result)
	}

	summary, err := facade.Queries().Dashboard.Query(context.Background(), query.DashboardMessage{OwnerID: "user_1"})
	if err != nil {
		t.Fatalf("query dashboard: %v", err)
	}
	if summary.TotalSearches != 1 || len(summary.RecentSearches) != 1 {
		t.Fatalf("unexpected dashboard result: %#v", summary)
	}
}

func TestFacade_ScheduleMaintenanceRequiresQueue(t *testing.T) {
	facade, err := NewFacade(&stubFacadeService{})
	if err != nil {
		t.Fatalf("new facade: %v", err)
	}
	msg := command.ScheduleMaintenanceMessage{JobID: core.JobIDDeduplicateLeads}
	if err := facade.Commands().ScheduleMaintenance.Execute(context.Background(), msg); err == nil {
		t.Fatalf("expected missing queue error")
	}

	queue := &stubFacadeQueue{}
	facade, err = NewFacade(&stubFacadeService{}, WithMaintenanceQueue(queue))
	if err != nil {
		t.Fatalf("new facade with queue: %v", err)
	}
	if err := facade.Commands().ScheduleMaintenance.Execute(context.Background(), msg); err != nil {
		t.Fatalf("schedule maintenance: %v", err)
	}
	if len(queue.jobs) != 1 || queue.jobs[0].JobID != core.JobIDDeduplicateLeads {
		t.Fatalf("unexpected queued jobs: %#v", queue.jobs)
	}
}

func TestNewFacade_RequiresService(t *testing.T) {
	facade, err := NewFacade(nil)
	if err == nil {
		t.Fatalf("expected nil service error")
	}
	if facade != nil {
		t.Fatalf("expected nil facade on error")
	}
}

type stubFacadeService struct {
	lastLeadStatus core.SetLeadStatusRequest
}

func (s *stubFacadeService) CreateSearch(_ context.Context, req core.CreateSearchRequest) (core.Search, error) {
	return core.Search{ID: "search_1", OwnerID: req.OwnerID, Status: core.SearchStatusProcessing}, nil
}

func (s *stubFacadeService) RepeatSearch(_ context.Context, req core.RepeatSearchRequest) (core.Search, error) {
	return core.Search{ID: req.SearchID, Status: core.SearchStatusProcessing}, nil
}

func (s *stubFacadeService) Ingest(_ context.Context, req core.IngestRequest) (core.IngestResult, error) {
	return core.IngestResult{SearchID: req.SearchID, Status: core.SearchStatusCompleted}, nil
}

func (s *stubFacadeService) SetLeadStatus(_ context.Context, req core.SetLeadStatusRequest) (core.SetLeadStatusResult, error) {
	s.lastLeadStatus = req
	return core.SetLeadStatusResult{LeadID: req.LeadID, Status: core.LeadStatus(req.Status), Updated: true}, nil
}

func (s *stubFacadeService) DeduplicateAll(context.Context) (core.DeduplicateResult, error) {
	return core.DeduplicateResult{}, nil
}

func (s *stubFacadeService) ResetAll(context.Context) (core.ResetResult, error) {
	return core.ResetResult{}, nil
}

func (s *stubFacadeService) GetSearchDetail(_ context.Context, id string, ownerID string) (core.SearchDetail, error) {
	return core.SearchDetail{Search: core.Search{ID: id, OwnerID: ownerID}}, nil
}

func (s *stubFacadeService) ListSearches(context.Context, string, int) ([]core.Search, error) {
	return []core.Search{{ID: "search_1"}}, nil
}

func (s *stubFacadeService) Dashboard(context.Context, string) (core.DashboardSummary, error) {
	return core.DashboardSummary{
		TotalSearches:  1,
		TotalLeads:     2,
		RecentSearches: []core.Search{{ID: "search_1"}},
	}, nil
}

func (s *stubFacadeService) ListLeads(context.Context, core.LeadListFilter) ([]core.LeadWithSearch, error) {
	return nil, nil
}

type stubFacadeQueue struct {
	jobs []*core.JobExecutionMessage
}

func (s *stubFacadeQueue) Enqueue(_ context.Context, msg *core.JobExecutionMessage) (core.JobReceipt, error) {
	s.jobs = append(s.jobs, msg)
	return core.JobReceipt{DispatchID: msg.CorrelationID}, nil
}

var _ CommandQueryService = (*stubFacadeService)(nil)
