package core

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

type memorySearchStore struct {
	mu        sync.Mutex
	next      int
	byID      map[string]Search
	statusLog []SearchStatus
	statusErr error
	getErr    error
}

func newMemorySearchStore() *memorySearchStore {
	return &memorySearchStore{byID: map[string]Search{}}
}

func (s *memorySearchStore) Create(_ context.Context, in CreateSearchInput) (Search, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	now := time.Now().UTC().Add(time.Duration(s.next) * time.Millisecond)
	search := Search{
		ID:        fmt.Sprintf("search_%d", s.next),
		OwnerID:   in.OwnerID,
		Term:      in.Term,
		City:      in.City,
		Status:    SearchStatusProcessing,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.byID[search.ID] = search
	return search, nil
}

func (s *memorySearchStore) Get(_ context.Context, id string) (Search, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return Search{}, s.getErr
	}
	search, ok := s.byID[id]
	if !ok {
		return Search{}, fmt.Errorf("memory store: %w", ErrSearchNotFound)
	}
	return search, nil
}

func (s *memorySearchStore) ListByOwner(_ context.Context, ownerID string, limit int) ([]Search, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []Search{}
	for _, search := range s.byID {
		if search.OwnerID == ownerID {
			out = append(out, search)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memorySearchStore) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	items, err := s.ListByOwner(ctx, ownerID, 0)
	return len(items), err
}

func (s *memorySearchStore) ListIDs(context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.byID))
	for id := range s.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *memorySearchStore) SetStatus(_ context.Context, id string, status SearchStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.statusErr != nil {
		return s.statusErr
	}
	search, ok := s.byID[id]
	if !ok {
		return nil
	}
	search.Status = status
	s.byID[id] = search
	s.statusLog = append(s.statusLog, status)
	return nil
}

func (s *memorySearchStore) SetCounters(_ context.Context, id string, leadsCount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	search, ok := s.byID[id]
	if !ok {
		return nil
	}
	search.LeadsCount = leadsCount
	s.byID[id] = search
	return nil
}

func (s *memorySearchStore) DeleteAll(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := len(s.byID)
	s.byID = map[string]Search{}
	return count, nil
}

func (s *memorySearchStore) get(id string) Search {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byID[id]
}

// memoryLeadStore enforces the (search_id, phone) uniqueness unless
// allowDuplicates is set, which lets tests seed legacy duplicate rows.
type memoryLeadStore struct {
	mu              sync.Mutex
	next            int
	leads           []Lead
	allowDuplicates bool
	insertErr       error
	deleteErrOnCall map[int]error
	deleteCalls     int
	deleteBatches   [][]string
}

func newMemoryLeadStore() *memoryLeadStore {
	return &memoryLeadStore{deleteErrOnCall: map[int]error{}}
}

func (s *memoryLeadStore) InsertBatch(_ context.Context, drafts []LeadDraft) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return 0, s.insertErr
	}
	inserted := 0
	for _, draft := range drafts {
		if !s.allowDuplicates && s.hasPhoneLocked(draft.SearchID, draft.Phone) {
			continue
		}
		s.next++
		s.leads = append(s.leads, Lead{
			ID:           fmt.Sprintf("lead_%04d", s.next),
			SearchID:     draft.SearchID,
			OwnerID:      draft.OwnerID,
			Name:         draft.Name,
			Phone:        draft.Phone,
			Address:      draft.Address,
			Neighborhood: draft.Neighborhood,
			City:         draft.City,
			Rating:       draft.Rating,
			Website:      draft.Website,
			Email1:       draft.Email1,
			Email2:       draft.Email2,
			PhotoURL:     draft.PhotoURL,
			Photos:       append([]string(nil), draft.Photos...),
			Status:       draft.Status,
			CreatedAt:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(s.next) * time.Second),
		})
		inserted++
	}
	return inserted, nil
}

func (s *memoryLeadStore) hasPhoneLocked(searchID string, phone string) bool {
	for _, lead := range s.leads {
		if lead.SearchID == searchID && lead.Phone == phone {
			return true
		}
	}
	return false
}

func (s *memoryLeadStore) ExistingPhones(_ context.Context, searchID string, phones []string) (map[string]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wanted := map[string]struct{}{}
	for _, phone := range phones {
		wanted[phone] = struct{}{}
	}
	out := map[string]struct{}{}
	for _, lead := range s.leads {
		if lead.SearchID != searchID {
			continue
		}
		if _, ok := wanted[lead.Phone]; ok {
			out[lead.Phone] = struct{}{}
		}
	}
	return out, nil
}

func (s *memoryLeadStore) CountBySearch(_ context.Context, searchID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, lead := range s.leads {
		if lead.SearchID == searchID {
			count++
		}
	}
	return count, nil
}

func (s *memoryLeadStore) CountByOwner(_ context.Context, ownerID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, lead := range s.leads {
		if lead.OwnerID == ownerID {
			count++
		}
	}
	return count, nil
}

func (s *memoryLeadStore) ListKeys(context.Context) ([]LeadKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]LeadKey, 0, len(s.leads))
	for _, lead := range s.leads {
		keys = append(keys, LeadKey{ID: lead.ID, SearchID: lead.SearchID, Phone: lead.Phone, CreatedAt: lead.CreatedAt})
	}
	return keys, nil
}

func (s *memoryLeadStore) ListBySearch(_ context.Context, searchID string) ([]Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []Lead{}
	for _, lead := range s.leads {
		if lead.SearchID == searchID {
			out = append(out, lead)
		}
	}
	return out, nil
}

func (s *memoryLeadStore) ListByOwner(_ context.Context, filter LeadListFilter) ([]Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []Lead{}
	for index := len(s.leads) - 1; index >= 0; index-- {
		lead := s.leads[index]
		if lead.OwnerID != filter.OwnerID {
			continue
		}
		if filter.SearchID != "" && lead.SearchID != filter.SearchID {
			continue
		}
		if filter.Status != "" && lead.Status != filter.Status {
			continue
		}
		out = append(out, lead)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (s *memoryLeadStore) UpdateStatus(_ context.Context, leadID string, ownerID string, status LeadStatus) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for index, lead := range s.leads {
		if lead.ID == leadID && lead.OwnerID == ownerID {
			s.leads[index].Status = status
			return true, nil
		}
	}
	return false, nil
}

func (s *memoryLeadStore) DeleteBySearch(_ context.Context, searchID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.leads[:0]
	deleted := 0
	for _, lead := range s.leads {
		if lead.SearchID == searchID {
			deleted++
			continue
		}
		kept = append(kept, lead)
	}
	s.leads = kept
	return deleted, nil
}

func (s *memoryLeadStore) DeleteByIDs(_ context.Context, ids []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteCalls++
	s.deleteBatches = append(s.deleteBatches, append([]string(nil), ids...))
	if err := s.deleteErrOnCall[s.deleteCalls]; err != nil {
		return 0, err
	}
	targets := map[string]struct{}{}
	for _, id := range ids {
		targets[id] = struct{}{}
	}
	kept := s.leads[:0]
	deleted := 0
	for _, lead := range s.leads {
		if _, ok := targets[lead.ID]; ok {
			deleted++
			continue
		}
		kept = append(kept, lead)
	}
	s.leads = kept
	return deleted, nil
}

func (s *memoryLeadStore) DeleteAll(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := len(s.leads)
	s.leads = nil
	return count, nil
}

func (s *memoryLeadStore) phones(searchID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []string{}
	for _, lead := range s.leads {
		if lead.SearchID == searchID {
			out = append(out, lead.Phone)
		}
	}
	return out
}

func (s *memoryLeadStore) lead(id string) (Lead, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, lead := range s.leads {
		if lead.ID == id {
			return lead, true
		}
	}
	return Lead{}, false
}

type stubTrigger struct {
	mu       sync.Mutex
	requests []TriggerRequest
	err      error
	onCall   func(TriggerRequest)
}

func (t *stubTrigger) Trigger(_ context.Context, req TriggerRequest) error {
	t.mu.Lock()
	t.requests = append(t.requests, req)
	onCall := t.onCall
	t.mu.Unlock()
	if onCall != nil {
		onCall(req)
	}
	return t.err
}

func (t *stubTrigger) calls() []TriggerRequest {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]TriggerRequest(nil), t.requests...)
}

type stubLoggerProvider struct {
	logger Logger
}

func (s stubLoggerProvider) GetLogger(string) Logger {
	return s.logger
}

type mapRawLoader struct {
	values map[string]any
}

func (l mapRawLoader) LoadRaw(context.Context) (map[string]any, error) {
	return l.values, nil
}

type testFixture struct {
	service  *Service
	searches *memorySearchStore
	leads    *memoryLeadStore
	trigger  *stubTrigger
}

func newTestFixture(opts ...Option) (*testFixture, error) {
	fixture := &testFixture{
		searches: newMemorySearchStore(),
		leads:    newMemoryLeadStore(),
		trigger:  &stubTrigger{},
	}
	base := []Option{
		WithSearchStore(fixture.searches),
		WithLeadStore(fixture.leads),
		WithScrapeTrigger(fixture.trigger),
		WithCallbackURLResolver(CallbackURLResolverFunc(func(_ context.Context, req CallbackURLResolveRequest) (string, error) {
			return strings.TrimSuffix(req.RequestBaseURL, "/") + DefaultCallbackPath, nil
		})),
	}
	svc, err := NewService(DefaultConfig(), append(base, opts...)...)
	if err != nil {
		return nil, err
	}
	fixture.service = svc
	return fixture, nil
}

func (f *testFixture) seedSearch(ownerID string, term string, city string) Search {
	search, _ := f.searches.Create(context.Background(), CreateSearchInput{OwnerID: ownerID, Term: term, City: city})
	return search
}

func record(fields ...any) RawRecord {
	out := RawRecord{}
	for index := 0; index+1 < len(fields); index += 2 {
		out[fields[index].(string)] = fields[index+1]
	}
	return out
}
