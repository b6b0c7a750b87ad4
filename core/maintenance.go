package core

import (
	"context"
	"sort"
	"time"
)

// DeduplicateAll keeps the earliest lead per (search_id, phone), removes the
// rest in bounded batches and recounts every search. Each batch is its own
// unit of work; a failed batch is logged and the sweep moves on.
func (s *Service) DeduplicateAll(ctx context.Context) (result DeduplicateResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{}
	defer func() {
		fields["scanned"] = result.Scanned
		fields["duplicates_removed"] = result.DuplicatesRemoved
		fields["failed_batches"] = result.FailedBatches
		fields["searches_recounted"] = result.SearchesRecounted
		s.observeOperation(ctx, startedAt, opLeadsDeduplicate, err, fields)
	}()

	if err = s.requireStores(); err != nil {
		err = s.mapError(err)
		return DeduplicateResult{}, err
	}

	keys, err := s.leadStore.ListKeys(ctx)
	if err != nil {
		err = s.mapError(err)
		return DeduplicateResult{}, err
	}
	result.Scanned = len(keys)

	duplicates := duplicateLeadIDs(keys)
	batchSize := s.config.Maintenance.DeleteBatchSize
	if batchSize <= 0 {
		batchSize = DefaultDeleteBatchSize
	}
	for start := 0; start < len(duplicates); start += batchSize {
		if err = ctx.Err(); err != nil {
			return result, err
		}
		end := min(start+batchSize, len(duplicates))
		deleted, deleteErr := s.leadStore.DeleteByIDs(ctx, duplicates[start:end])
		if deleteErr != nil {
			result.FailedBatches++
			s.logWarn(ctx, "duplicate batch delete failed", map[string]any{
				"batch_start": start,
				"batch_size":  end - start,
				"error":       deleteErr.Error(),
			})
			continue
		}
		result.DuplicatesRemoved += deleted
	}
	result.UniqueRemaining = result.Scanned - result.DuplicatesRemoved

	recounted, err := s.recountSearches(ctx)
	result.SearchesRecounted = recounted
	if err != nil {
		err = s.mapError(err)
		return result, err
	}
	return result, nil
}

// ResetAll deletes every lead and then every search.
func (s *Service) ResetAll(ctx context.Context) (result ResetResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{}
	defer func() {
		fields["leads_deleted"] = result.LeadsDeleted
		fields["searches_deleted"] = result.SearchesDeleted
		s.observeOperation(ctx, startedAt, opResetAll, err, fields)
	}()

	if err = s.requireStores(); err != nil {
		err = s.mapError(err)
		return ResetResult{}, err
	}
	leadsDeleted, err := s.leadStore.DeleteAll(ctx)
	if err != nil {
		err = s.mapError(err)
		return ResetResult{}, err
	}
	result.LeadsDeleted = leadsDeleted

	searchesDeleted, err := s.searchStore.DeleteAll(ctx)
	if err != nil {
		err = s.mapError(err)
		return result, err
	}
	result.SearchesDeleted = searchesDeleted
	return result, nil
}

func (s *Service) recountSearches(ctx context.Context) (int, error) {
	ids, err := s.searchStore.ListIDs(ctx)
	if err != nil {
		return 0, err
	}
	recounted := 0
	for _, id := range ids {
		count, err := s.leadStore.CountBySearch(ctx, id)
		if err != nil {
			return recounted, err
		}
		if err := s.searchStore.SetCounters(ctx, id, count); err != nil {
			return recounted, err
		}
		recounted++
	}
	return recounted, nil
}

type dedupKey struct {
	searchID string
	phone    string
}

// duplicateLeadIDs returns the ids of every lead that is not the earliest of
// its (search_id, phone) group. Ties on created_at fall back to id order.
func duplicateLeadIDs(keys []LeadKey) []string {
	ordered := append([]LeadKey(nil), keys...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
		}
		return ordered[i].ID < ordered[j].ID
	})

	seen := make(map[dedupKey]struct{}, len(ordered))
	duplicates := make([]string, 0)
	for _, key := range ordered {
		group := dedupKey{searchID: key.SearchID, phone: key.Phone}
		if _, exists := seen[group]; exists {
			duplicates = append(duplicates, key.ID)
			continue
		}
		seen[group] = struct{}{}
	}
	return duplicates
}
