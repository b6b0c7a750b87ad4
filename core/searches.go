package core

import (
	"context"
	"errors"
	"strings"
	"time"
)

func (s *Service) CreateSearch(ctx context.Context, req CreateSearchRequest) (search Search, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"owner_id": req.OwnerID}
	defer func() {
		if search.ID != "" {
			fields["search_id"] = search.ID
		}
		s.observeOperation(ctx, startedAt, opSearchCreate, err, fields)
	}()

	if err = s.requireStores(); err != nil {
		err = s.mapError(err)
		return Search{}, err
	}
	ownerID := strings.TrimSpace(req.OwnerID)
	if ownerID == "" {
		err = NewUnauthorizedError("core: owner identity is required")
		return Search{}, err
	}
	term := strings.TrimSpace(req.Term)
	if term == "" {
		err = NewValidationError("term", "term is required")
		return Search{}, err
	}
	city := strings.TrimSpace(req.City)
	if city == "" {
		err = NewValidationError("city", "city is required")
		return Search{}, err
	}

	search, err = s.searchStore.Create(ctx, CreateSearchInput{
		OwnerID: ownerID,
		Term:    term,
		City:    city,
	})
	if err != nil {
		err = s.mapError(err)
		return Search{}, err
	}

	if err = s.dispatch(ctx, search, CallbackURLResolveFlowCreate, req.RequestBaseURL); err != nil {
		search.Status = SearchStatusError
		return search, err
	}
	return search, nil
}

// GetSearch hides searches owned by someone else behind the same not-found
// error as missing ones.
func (s *Service) GetSearch(ctx context.Context, id string, ownerID string) (Search, error) {
	if err := s.requireStores(); err != nil {
		return Search{}, s.mapError(err)
	}
	return s.ownedSearch(ctx, id, ownerID)
}

func (s *Service) RepeatSearch(ctx context.Context, req RepeatSearchRequest) (search Search, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"search_id": req.SearchID,
		"owner_id":  req.OwnerID,
	}
	defer func() {
		s.observeOperation(ctx, startedAt, opSearchRepeat, err, fields)
	}()

	if err = s.requireStores(); err != nil {
		err = s.mapError(err)
		return Search{}, err
	}
	if strings.TrimSpace(req.OwnerID) == "" {
		err = NewUnauthorizedError("core: owner identity is required")
		return Search{}, err
	}
	search, err = s.ownedSearch(ctx, req.SearchID, req.OwnerID)
	if err != nil {
		return Search{}, err
	}

	deleted, err := s.leadStore.DeleteBySearch(ctx, search.ID)
	if err != nil {
		err = s.mapError(err)
		return Search{}, err
	}
	fields["leads_deleted"] = deleted

	if err = s.searchStore.SetCounters(ctx, search.ID, 0); err != nil {
		err = s.mapError(err)
		return Search{}, err
	}
	if err = s.searchStore.SetStatus(ctx, search.ID, SearchStatusProcessing); err != nil {
		err = s.mapError(err)
		return Search{}, err
	}
	search.LeadsCount = 0
	search.Status = SearchStatusProcessing

	// Old leads stay deleted when the trigger fails.
	if err = s.dispatch(ctx, search, CallbackURLResolveFlowRepeat, req.RequestBaseURL); err != nil {
		search.Status = SearchStatusError
		return search, err
	}
	return search, nil
}

func (s *Service) ListSearches(ctx context.Context, ownerID string, limit int) ([]Search, error) {
	if err := s.requireStores(); err != nil {
		return nil, s.mapError(err)
	}
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, NewUnauthorizedError("core: owner identity is required")
	}
	if limit <= 0 {
		limit = s.config.Listing.SearchesLimit
	}
	searches, err := s.searchStore.ListByOwner(ctx, ownerID, limit)
	if err != nil {
		return nil, s.mapError(err)
	}
	return searches, nil
}

func (s *Service) GetSearchDetail(ctx context.Context, id string, ownerID string) (SearchDetail, error) {
	search, err := s.GetSearch(ctx, id, ownerID)
	if err != nil {
		return SearchDetail{}, err
	}
	leads, err := s.leadStore.ListBySearch(ctx, search.ID)
	if err != nil {
		return SearchDetail{}, s.mapError(err)
	}
	return SearchDetail{Search: search, Leads: leads}, nil
}

func (s *Service) Dashboard(ctx context.Context, ownerID string) (DashboardSummary, error) {
	if err := s.requireStores(); err != nil {
		return DashboardSummary{}, s.mapError(err)
	}
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return DashboardSummary{}, NewUnauthorizedError("core: owner identity is required")
	}
	totalSearches, err := s.searchStore.CountByOwner(ctx, ownerID)
	if err != nil {
		return DashboardSummary{}, s.mapError(err)
	}
	totalLeads, err := s.leadStore.CountByOwner(ctx, ownerID)
	if err != nil {
		return DashboardSummary{}, s.mapError(err)
	}
	recent, err := s.searchStore.ListByOwner(ctx, ownerID, s.config.Listing.RecentSearches)
	if err != nil {
		return DashboardSummary{}, s.mapError(err)
	}
	return DashboardSummary{
		TotalSearches:  totalSearches,
		TotalLeads:     totalLeads,
		RecentSearches: recent,
	}, nil
}

func (s *Service) ownedSearch(ctx context.Context, id string, ownerID string) (Search, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Search{}, NewValidationError("search_id", "search id is required")
	}
	search, err := s.searchStore.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrSearchNotFound) {
			return Search{}, NewSearchNotFoundError(id)
		}
		return Search{}, s.mapError(err)
	}
	if search.OwnerID != strings.TrimSpace(ownerID) {
		return Search{}, NewSearchNotFoundError(id)
	}
	return search, nil
}

// dispatch starts the external workflow. Without a configured trigger the
// search simply stays processing. A failed dispatch is persisted as the
// search's error status before the error is returned.
func (s *Service) dispatch(
	ctx context.Context,
	search Search,
	flow CallbackURLResolveFlow,
	requestBaseURL string,
) error {
	if s.trigger == nil {
		return nil
	}
	callbackURL, err := s.callbackURLResolver.ResolveCallbackURL(ctx, CallbackURLResolveRequest{
		SearchID:       search.ID,
		Flow:           flow,
		RequestBaseURL: requestBaseURL,
	})
	if err == nil {
		triggerCtx, cancel := context.WithTimeout(ctx, s.config.TriggerTimeout())
		err = s.trigger.Trigger(triggerCtx, TriggerRequest{
			SearchID:    search.ID,
			Term:        search.Term,
			City:        search.City,
			CallbackURL: callbackURL,
		})
		cancel()
	}
	if err != nil {
		s.markSearchErrored(ctx, search.ID)
		return NewDispatchError(err, search.ID)
	}
	return nil
}

// markSearchErrored records the failure even when the request context is
// already cancelled; a failed write here is only logged.
func (s *Service) markSearchErrored(ctx context.Context, searchID string) {
	if statusErr := s.searchStore.SetStatus(context.WithoutCancel(ctx), searchID, SearchStatusError); statusErr != nil {
		s.logError(ctx, "search status update failed", map[string]any{
			"search_id": searchID,
			"status":    string(SearchStatusError),
			"error":     statusErr.Error(),
		})
	}
}
