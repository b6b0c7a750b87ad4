package core

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func seedDuplicateLeads(t *testing.T, fixture *testFixture, searchID string, ownerID string, phones ...string) {
	t.Helper()
	fixture.leads.allowDuplicates = true
	defer func() { fixture.leads.allowDuplicates = false }()
	drafts := make([]LeadDraft, 0, len(phones))
	for _, phone := range phones {
		drafts = append(drafts, LeadDraft{SearchID: searchID, OwnerID: ownerID, Name: "Lead " + phone, Phone: phone, Status: LeadStatusNew})
	}
	if _, err := fixture.leads.InsertBatch(context.Background(), drafts); err != nil {
		t.Fatalf("seed duplicates: %v", err)
	}
}

func TestDeduplicateAll_KeepsEarliestAndRecounts(t *testing.T) {
	fixture, err := newTestFixture()
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	first := fixture.seedSearch("user_1", "dentista", "Curitiba")
	second := fixture.seedSearch("user_1", "padaria", "Recife")
	seedDuplicateLeads(t, fixture, first.ID, "user_1", "111", "111", "222", "111")
	seedDuplicateLeads(t, fixture, second.ID, "user_1", "111", "333", "333")
	earliest, _ := fixture.leads.ListBySearch(context.Background(), first.ID)

	result, err := fixture.service.DeduplicateAll(context.Background())
	if err != nil {
		t.Fatalf("dedupe: %v", err)
	}
	if result.Scanned != 7 || result.DuplicatesRemoved != 3 || result.UniqueRemaining != 4 {
		t.Fatalf("unexpected result %+v", result)
	}
	if result.SearchesRecounted != 2 {
		t.Fatalf("expected 2 searches recounted, got %d", result.SearchesRecounted)
	}
	if fixture.searches.get(first.ID).LeadsCount != 2 || fixture.searches.get(second.ID).LeadsCount != 2 {
		t.Fatalf("expected recounted totals")
	}
	if _, ok := fixture.leads.lead(earliest[0].ID); !ok {
		t.Fatalf("expected earliest lead to survive")
	}

	again, err := fixture.service.DeduplicateAll(context.Background())
	if err != nil {
		t.Fatalf("second dedupe: %v", err)
	}
	if again.DuplicatesRemoved != 0 || again.UniqueRemaining != 4 {
		t.Fatalf("expected idempotent sweep, got %+v", again)
	}
}

func TestDeduplicateAll_BatchesDeletesAndSkipsFailedBatch(t *testing.T) {
	fixture, err := newTestFixture()
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	search := fixture.seedSearch("user_1", "dentista", "Curitiba")
	phones := make([]string, 0, 250)
	for index := 0; index < 125; index++ {
		phone := fmt.Sprintf("%04d", index)
		phones = append(phones, phone, phone)
	}
	seedDuplicateLeads(t, fixture, search.ID, "user_1", phones...)
	fixture.leads.deleteErrOnCall[1] = errors.New("lock timeout")

	result, err := fixture.service.DeduplicateAll(context.Background())
	if err != nil {
		t.Fatalf("dedupe: %v", err)
	}
	if len(fixture.leads.deleteBatches) != 2 {
		t.Fatalf("expected 2 delete batches, got %d", len(fixture.leads.deleteBatches))
	}
	if len(fixture.leads.deleteBatches[0]) != DefaultDeleteBatchSize || len(fixture.leads.deleteBatches[1]) != 25 {
		t.Fatalf("unexpected batch sizes %d/%d", len(fixture.leads.deleteBatches[0]), len(fixture.leads.deleteBatches[1]))
	}
	if result.FailedBatches != 1 || result.DuplicatesRemoved != 25 {
		t.Fatalf("expected failed batch to be skipped, got %+v", result)
	}
	if fixture.searches.get(search.ID).LeadsCount != 225 {
		t.Fatalf("expected recount to reflect remaining rows, got %d", fixture.searches.get(search.ID).LeadsCount)
	}
}

func TestDuplicateLeadIDs_TieBreaksOnID(t *testing.T) {
	keys := []LeadKey{
		{ID: "b", SearchID: "s", Phone: "1"},
		{ID: "a", SearchID: "s", Phone: "1"},
		{ID: "c", SearchID: "s", Phone: "2"},
	}
	got := duplicateLeadIDs(keys)
	if len(got) != 1 || got[0] != "b" {
		t.Fatalf("expected only b to be removed, got %v", got)
	}
}

func TestResetAll_RemovesEverything(t *testing.T) {
	fixture, err := newTestFixture()
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	seedLeads(t, fixture, "user_1", "111", "222")
	seedLeads(t, fixture, "user_2", "333")

	result, err := fixture.service.ResetAll(context.Background())
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if result.LeadsDeleted != 3 || result.SearchesDeleted != 2 {
		t.Fatalf("unexpected reset result %+v", result)
	}
	ids, _ := fixture.searches.ListIDs(context.Background())
	if len(ids) != 0 {
		t.Fatalf("expected no searches left")
	}

	empty, err := fixture.service.ResetAll(context.Background())
	if err != nil {
		t.Fatalf("reset on empty store: %v", err)
	}
	if empty.LeadsDeleted != 0 || empty.SearchesDeleted != 0 {
		t.Fatalf("expected zero counts on empty store, got %+v", empty)
	}
}
