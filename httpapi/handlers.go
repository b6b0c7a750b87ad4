package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/XandyNerd/BuscarLead/command"
	"github.com/XandyNerd/BuscarLead/core"
	"github.com/XandyNerd/BuscarLead/identity"
	"github.com/XandyNerd/BuscarLead/query"
	"github.com/go-chi/chi/v5"
	gocmd "github.com/goliatone/go-command"
)

type createSearchBody struct {
	Term string `json:"term"`
	City string `json:"city"`
}

type repeatSearchBody struct {
	SearchID string `json:"search_id"`
}

type leadStatusBody struct {
	LeadID string `json:"lead_id"`
	Status string `json:"status"`
}

func (s *Server) handleCreateSearch(w http.ResponseWriter, r *http.Request) {
	owner, _ := identity.OwnerFromContext(r.Context())
	var body createSearchBody
	if err := s.decodeBody(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	search, err := execute[command.CreateSearchMessage, core.Search](r.Context(), s.facade.Commands().CreateSearch, command.CreateSearchMessage{
		Request: core.CreateSearchRequest{
			OwnerID:        owner,
			Term:           body.Term,
			City:           body.City,
			RequestBaseURL: requestBaseURL(r),
		},
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": search.ID, "status": search.Status})
}

func (s *Server) handleRepeatSearch(w http.ResponseWriter, r *http.Request) {
	owner, _ := identity.OwnerFromContext(r.Context())
	searchID := chi.URLParam(r, "id")
	var body repeatSearchBody
	if err := s.decodeBody(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	if body.SearchID != "" && strings.TrimSpace(body.SearchID) != searchID {
		s.writeError(w, r, core.NewValidationError("search_id", "search_id does not match the path"))
		return
	}

	search, err := execute[command.RepeatSearchMessage, core.Search](r.Context(), s.facade.Commands().RepeatSearch, command.RepeatSearchMessage{
		Request: core.RepeatSearchRequest{
			SearchID:       searchID,
			OwnerID:        owner,
			RequestBaseURL: requestBaseURL(r),
		},
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "id": search.ID, "status": search.Status})
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	body, err := s.readBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	result, err := s.processor.Process(r.Context(), r.Header, body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"message":     result.Message(),
		"inserted":    result.Inserted,
		"leads_count": result.LeadsCount,
	})
}

func (s *Server) ingest(ctx context.Context, req core.IngestRequest) (core.IngestResult, error) {
	return execute[command.IngestLeadsMessage, core.IngestResult](ctx, s.facade.Commands().IngestLeads, command.IngestLeadsMessage{Request: req})
}

func (s *Server) handleSetLeadStatus(w http.ResponseWriter, r *http.Request) {
	owner, _ := identity.OwnerFromContext(r.Context())
	leadID := chi.URLParam(r, "id")
	var body leadStatusBody
	if err := s.decodeBody(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	if body.LeadID != "" && strings.TrimSpace(body.LeadID) != leadID {
		s.writeError(w, r, core.NewValidationError("lead_id", "lead_id does not match the path"))
		return
	}

	result, err := execute[command.SetLeadStatusMessage, core.SetLeadStatusResult](r.Context(), s.facade.Commands().SetLeadStatus, command.SetLeadStatusMessage{
		Request: core.SetLeadStatusRequest{LeadID: leadID, OwnerID: owner, Status: body.Status},
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "status": result.Status, "updated": result.Updated})
}

func (s *Server) handleCleanup(w http.ResponseWriter, r *http.Request) {
	result, err := execute[command.DeduplicateLeadsMessage, core.DeduplicateResult](r.Context(), s.facade.Commands().DeduplicateLeads, command.DeduplicateLeadsMessage{})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":                true,
		"duplicates_removed":     result.DuplicatesRemoved,
		"unique_leads_remaining": result.UniqueRemaining,
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	result, err := execute[command.ResetAllMessage, core.ResetResult](r.Context(), s.facade.Commands().ResetAll, command.ResetAllMessage{})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":          true,
		"leads_deleted":    result.LeadsDeleted,
		"searches_deleted": result.SearchesDeleted,
		"message":          "database reset successfully",
	})
}

func (s *Server) handleListSearches(w http.ResponseWriter, r *http.Request) {
	owner, _ := identity.OwnerFromContext(r.Context())
	searches, err := s.facade.Queries().ListSearches.Query(r.Context(), query.ListSearchesMessage{
		OwnerID: owner,
		Limit:   queryInt(r, "limit"),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"searches": searchViews(searches)})
}

func (s *Server) handleGetSearch(w http.ResponseWriter, r *http.Request) {
	owner, _ := identity.OwnerFromContext(r.Context())
	detail, err := s.facade.Queries().GetSearchDetail.Query(r.Context(), query.GetSearchDetailMessage{
		SearchID: chi.URLParam(r, "id"),
		OwnerID:  owner,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	leads := make([]leadView, 0, len(detail.Leads))
	for _, lead := range detail.Leads {
		leads = append(leads, newLeadView(lead, nil))
	}
	writeJSON(w, http.StatusOK, map[string]any{"search": newSearchView(detail.Search), "leads": leads})
}

func (s *Server) handleListLeads(w http.ResponseWriter, r *http.Request) {
	owner, _ := identity.OwnerFromContext(r.Context())
	leads, err := s.facade.Queries().ListLeads.Query(r.Context(), query.ListLeadsMessage{
		Filter: core.LeadListFilter{
			OwnerID:  owner,
			SearchID: strings.TrimSpace(r.URL.Query().Get("search_id")),
			Status:   core.LeadStatus(strings.TrimSpace(r.URL.Query().Get("status"))),
			Limit:    queryInt(r, "limit"),
		},
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	views := make([]leadView, 0, len(leads))
	for _, lead := range leads {
		views = append(views, newLeadView(lead.Lead, &searchRef{Term: lead.SearchTerm, City: lead.SearchCity}))
	}
	writeJSON(w, http.StatusOK, map[string]any{"leads": views})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	owner, _ := identity.OwnerFromContext(r.Context())
	summary, err := s.facade.Queries().Dashboard.Query(r.Context(), query.DashboardMessage{OwnerID: owner})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total_searches":  summary.TotalSearches,
		"total_leads":     summary.TotalLeads,
		"recent_searches": searchViews(summary.RecentSearches),
	})
}

// execute runs a command and returns the result it stored.
func execute[T any, R any](ctx context.Context, cmd gocmd.Commander[T], msg T) (R, error) {
	var zero R
	collector := gocmd.NewResult[R]()
	if err := cmd.Execute(gocmd.ContextWithResult(ctx, collector), msg); err != nil {
		return zero, err
	}
	out, _ := collector.Load()
	return out, nil
}

// queryInt returns 0 for a missing or malformed value so the service default
// applies.
func queryInt(r *http.Request, key string) int {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0
	}
	return value
}
