package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Ingest applies one webhook batch to a search. Re-delivering the same batch
// is safe: intra-batch and cross-batch duplicates are skipped, and the
// storage uniqueness on (search_id, phone) absorbs concurrent deliveries.
func (s *Service) Ingest(ctx context.Context, req IngestRequest) (result IngestResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"search_id": req.SearchID,
		"received":  len(req.Records),
	}
	defer func() {
		fields["inserted"] = result.Inserted
		fields["leads_count"] = result.LeadsCount
		s.observeOperation(ctx, startedAt, opIngest, err, fields)
	}()

	if err = s.requireStores(); err != nil {
		err = s.mapError(err)
		return IngestResult{}, err
	}
	searchID := strings.TrimSpace(req.SearchID)
	if searchID == "" {
		err = NewValidationError("search_id", "search_id is required")
		return IngestResult{}, err
	}
	if limit := s.config.Ingest.MaxRecords; limit > 0 && len(req.Records) > limit {
		err = NewValidationError("leads", fmt.Sprintf("batch exceeds %d records", limit))
		return IngestResult{}, err
	}

	search, err := s.searchStore.Get(ctx, searchID)
	if err != nil {
		if errors.Is(err, ErrSearchNotFound) {
			err = NewSearchNotFoundError(searchID)
			return IngestResult{}, err
		}
		err = s.mapError(err)
		return IngestResult{}, err
	}

	drafts := normalizeBatch(search, req.Records)
	fresh, err := s.withoutExistingPhones(ctx, searchID, drafts)
	if err != nil {
		err = s.mapError(err)
		return IngestResult{}, err
	}

	inserted := 0
	if len(fresh) > 0 {
		inserted, err = s.leadStore.InsertBatch(ctx, fresh)
		if err != nil {
			s.markSearchErrored(ctx, searchID)
			err = NewInsertionError(err, searchID)
			return IngestResult{}, err
		}
	}

	count, err := s.leadStore.CountBySearch(ctx, searchID)
	if err != nil {
		err = s.mapError(err)
		return IngestResult{}, err
	}
	if err = s.searchStore.SetCounters(ctx, searchID, count); err != nil {
		err = s.mapError(err)
		return IngestResult{}, err
	}
	if err = s.searchStore.SetStatus(ctx, searchID, SearchStatusCompleted); err != nil {
		err = s.mapError(err)
		return IngestResult{}, err
	}

	return IngestResult{
		SearchID:   searchID,
		Received:   len(req.Records),
		Accepted:   len(drafts),
		Skipped:    len(req.Records) - inserted,
		Inserted:   inserted,
		LeadsCount: count,
		Status:     SearchStatusCompleted,
	}, nil
}

// Message renders the summary returned to the workflow.
func (r IngestResult) Message() string {
	return fmt.Sprintf("%d new leads saved, %d leads on file.", r.Inserted, r.LeadsCount)
}

// normalizeBatch drops records without a phone and keeps only the first
// record per phone, in input order.
func normalizeBatch(search Search, records []RawRecord) []LeadDraft {
	seen := make(map[string]struct{}, len(records))
	drafts := make([]LeadDraft, 0, len(records))
	for _, record := range records {
		draft, ok := NormalizeRecord(record)
		if !ok {
			continue
		}
		if _, exists := seen[draft.Phone]; exists {
			continue
		}
		seen[draft.Phone] = struct{}{}
		draft.SearchID = search.ID
		draft.OwnerID = search.OwnerID
		drafts = append(drafts, draft)
	}
	return drafts
}

func (s *Service) withoutExistingPhones(ctx context.Context, searchID string, drafts []LeadDraft) ([]LeadDraft, error) {
	if len(drafts) == 0 {
		return nil, nil
	}
	phones := make([]string, 0, len(drafts))
	for _, draft := range drafts {
		phones = append(phones, draft.Phone)
	}
	existing, err := s.leadStore.ExistingPhones(ctx, searchID, phones)
	if err != nil {
		return nil, err
	}
	if len(existing) == 0 {
		return drafts, nil
	}
	fresh := make([]LeadDraft, 0, len(drafts))
	for _, draft := range drafts {
		if _, ok := existing[draft.Phone]; ok {
			continue
		}
		fresh = append(fresh, draft)
	}
	return fresh, nil
}
