package core

import (
	"context"
	"strings"
	"time"
)

// SetLeadStatus changes a lead's triage status. The write is scoped to the
// caller, so a foreign or unknown lead is reported as a successful no-op.
func (s *Service) SetLeadStatus(ctx context.Context, req SetLeadStatusRequest) (result SetLeadStatusResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"lead_id":  req.LeadID,
		"owner_id": req.OwnerID,
		"status":   req.Status,
	}
	defer func() {
		fields["updated"] = result.Updated
		s.observeOperation(ctx, startedAt, opLeadStatusUpdate, err, fields)
	}()

	if err = s.requireStores(); err != nil {
		err = s.mapError(err)
		return SetLeadStatusResult{}, err
	}
	ownerID := strings.TrimSpace(req.OwnerID)
	if ownerID == "" {
		err = NewUnauthorizedError("core: owner identity is required")
		return SetLeadStatusResult{}, err
	}
	leadID := strings.TrimSpace(req.LeadID)
	if leadID == "" {
		err = NewValidationError("lead_id", "lead id is required")
		return SetLeadStatusResult{}, err
	}
	status, parseErr := ParseLeadStatus(req.Status)
	if parseErr != nil {
		err = NewValidationError("status", "status must be one of new, contacted, not_interested")
		return SetLeadStatusResult{}, err
	}

	updated, err := s.leadStore.UpdateStatus(ctx, leadID, ownerID, status)
	if err != nil {
		err = s.mapError(err)
		return SetLeadStatusResult{}, err
	}
	return SetLeadStatusResult{
		LeadID:  leadID,
		Status:  status,
		Updated: updated,
	}, nil
}

// ListLeads returns the caller's newest leads decorated with the term and
// city of the search that produced them.
func (s *Service) ListLeads(ctx context.Context, filter LeadListFilter) ([]LeadWithSearch, error) {
	if err := s.requireStores(); err != nil {
		return nil, s.mapError(err)
	}
	filter.OwnerID = strings.TrimSpace(filter.OwnerID)
	if filter.OwnerID == "" {
		return nil, NewUnauthorizedError("core: owner identity is required")
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, NewValidationError("status", "status must be one of new, contacted, not_interested")
	}
	if filter.Limit <= 0 || filter.Limit > s.config.Listing.LeadsLimit {
		filter.Limit = s.config.Listing.LeadsLimit
	}
	filter.SearchID = strings.TrimSpace(filter.SearchID)

	leads, err := s.leadStore.ListByOwner(ctx, filter)
	if err != nil {
		return nil, s.mapError(err)
	}

	searches := map[string]Search{}
	out := make([]LeadWithSearch, 0, len(leads))
	for _, lead := range leads {
		search, ok := searches[lead.SearchID]
		if !ok {
			fetched, getErr := s.searchStore.Get(ctx, lead.SearchID)
			if getErr != nil {
				s.logWarn(ctx, "lead search lookup failed", map[string]any{
					"search_id": lead.SearchID,
					"error":     getErr.Error(),
				})
			} else {
				search = fetched
			}
			searches[lead.SearchID] = search
		}
		out = append(out, LeadWithSearch{
			Lead:       lead,
			SearchTerm: search.Term,
			SearchCity: search.City,
		})
	}
	return out, nil
}
