package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/XandyNerd/BuscarLead/core"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// existingPhonesChunk bounds the IN list of one existence query.
const existingPhonesChunk = 500

type LeadStore struct {
	db   *bun.DB
	repo repository.Repository[*leadRecord]
}

func NewLeadStore(db *bun.DB) (*LeadStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*leadRecord](db, leadHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid lead repository wiring: %w", err)
		}
	}
	return &LeadStore{db: db, repo: repo}, nil
}

// InsertBatch writes the drafts in one statement; rows that collide on
// (search_id, phone) are skipped by the database.
func (s *LeadStore) InsertBatch(ctx context.Context, drafts []core.LeadDraft) (int, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("sqlstore: lead store is not configured")
	}
	if len(drafts) == 0 {
		return 0, nil
	}
	now := time.Now().UTC()
	records := make([]*leadRecord, 0, len(drafts))
	for _, draft := range drafts {
		if strings.TrimSpace(draft.SearchID) == "" || strings.TrimSpace(draft.Phone) == "" {
			return 0, fmt.Errorf("sqlstore: lead search id and phone are required")
		}
		records = append(records, newLeadRecord(draft, now))
	}
	res, err := s.db.NewInsert().
		Model(&records).
		On("CONFLICT (search_id, phone) DO NOTHING").
		Returning("NULL").
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

func (s *LeadStore) ExistingPhones(ctx context.Context, searchID string, phones []string) (map[string]struct{}, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: lead store is not configured")
	}
	existing := map[string]struct{}{}
	for start := 0; start < len(phones); start += existingPhonesChunk {
		end := min(start+existingPhonesChunk, len(phones))
		var found []string
		err := s.db.NewSelect().
			Model((*leadRecord)(nil)).
			Column("phone").
			Where("search_id = ?", strings.TrimSpace(searchID)).
			Where("phone IN (?)", bun.In(phones[start:end])).
			Scan(ctx, &found)
		if err != nil {
			return nil, err
		}
		for _, phone := range found {
			existing[phone] = struct{}{}
		}
	}
	return existing, nil
}

func (s *LeadStore) CountBySearch(ctx context.Context, searchID string) (int, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("sqlstore: lead store is not configured")
	}
	return s.db.NewSelect().
		Model((*leadRecord)(nil)).
		Where("search_id = ?", strings.TrimSpace(searchID)).
		Count(ctx)
}

func (s *LeadStore) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("sqlstore: lead store is not configured")
	}
	return s.db.NewSelect().
		Model((*leadRecord)(nil)).
		Where("owner_id = ?", strings.TrimSpace(ownerID)).
		Count(ctx)
}

func (s *LeadStore) ListKeys(ctx context.Context) ([]core.LeadKey, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: lead store is not configured")
	}
	var records []leadKeyRecord
	err := s.db.NewSelect().
		Model(&records).
		OrderExpr("?TableAlias.created_at ASC, ?TableAlias.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	keys := make([]core.LeadKey, 0, len(records))
	for _, record := range records {
		keys = append(keys, core.LeadKey{
			ID:        record.ID,
			SearchID:  record.SearchID,
			Phone:     record.Phone,
			CreatedAt: record.CreatedAt,
		})
	}
	return keys, nil
}

func (s *LeadStore) ListBySearch(ctx context.Context, searchID string) ([]core.Lead, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: lead store is not configured")
	}
	var records []*leadRecord
	err := s.db.NewSelect().
		Model(&records).
		Where("?TableAlias.search_id = ?", strings.TrimSpace(searchID)).
		OrderExpr("?TableAlias.created_at ASC, ?TableAlias.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return leadsToDomain(records), nil
}

func (s *LeadStore) ListByOwner(ctx context.Context, filter core.LeadListFilter) ([]core.Lead, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: lead store is not configured")
	}
	selectors := []repository.SelectCriteria{
		repository.SelectBy("owner_id", "=", strings.TrimSpace(filter.OwnerID)),
		repository.OrderBy("created_at DESC"),
	}
	if searchID := strings.TrimSpace(filter.SearchID); searchID != "" {
		selectors = append(selectors, repository.SelectBy("search_id", "=", searchID))
	}
	if status := strings.TrimSpace(string(filter.Status)); status != "" {
		selectors = append(selectors, repository.SelectBy("status", "=", status))
	}
	if filter.Limit > 0 {
		selectors = append(selectors, repository.SelectPaginate(filter.Limit, 0))
	}
	records, _, err := s.repo.List(ctx, selectors...)
	if err != nil {
		return nil, err
	}
	return leadsToDomain(records), nil
}

// UpdateStatus only touches a lead owned by ownerID and reports whether a
// row matched.
func (s *LeadStore) UpdateStatus(ctx context.Context, leadID string, ownerID string, status core.LeadStatus) (bool, error) {
	if s == nil || s.db == nil {
		return false, fmt.Errorf("sqlstore: lead store is not configured")
	}
	if !status.Valid() {
		return false, fmt.Errorf("sqlstore: invalid lead status %q", status)
	}
	id, ok := parseRecordID(leadID)
	if !ok {
		return false, nil
	}
	res, err := s.db.NewUpdate().
		Model((*leadRecord)(nil)).
		Set("status = ?", string(status)).
		Where("id = ?", id).
		Where("owner_id = ?", strings.TrimSpace(ownerID)).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	affected, _ := res.RowsAffected()
	return affected > 0, nil
}

func (s *LeadStore) DeleteBySearch(ctx context.Context, searchID string) (int, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("sqlstore: lead store is not configured")
	}
	res, err := s.db.NewDelete().
		Model((*leadRecord)(nil)).
		Where("search_id = ?", strings.TrimSpace(searchID)).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	affected, _ := res.RowsAffected()
	return int(affected), nil
}

// DeleteByIDs removes one maintenance batch inside its own transaction.
func (s *LeadStore) DeleteByIDs(ctx context.Context, ids []string) (int, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("sqlstore: lead store is not configured")
	}
	if len(ids) == 0 {
		return 0, nil
	}
	deleted := 0
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewDelete().
			Model((*leadRecord)(nil)).
			Where("id IN (?)", bun.In(ids)).
			Exec(ctx)
		if err != nil {
			return err
		}
		affected, _ := res.RowsAffected()
		deleted = int(affected)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

func (s *LeadStore) DeleteAll(ctx context.Context) (int, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("sqlstore: lead store is not configured")
	}
	res, err := s.db.NewDelete().
		Model((*leadRecord)(nil)).
		Where("1 = 1").
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	affected, _ := res.RowsAffected()
	return int(affected), nil
}

func leadsToDomain(records []*leadRecord) []core.Lead {
	out := make([]core.Lead, 0, len(records))
	for _, record := range records {
		out = append(out, record.toDomain())
	}
	return out
}
