package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/XandyNerd/BuscarLead/core"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

type SearchStore struct {
	db   *bun.DB
	repo repository.Repository[*searchRecord]
}

func NewSearchStore(db *bun.DB) (*SearchStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*searchRecord](db, searchHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid search repository wiring: %w", err)
		}
	}
	return &SearchStore{db: db, repo: repo}, nil
}

func (s *SearchStore) Create(ctx context.Context, in core.CreateSearchInput) (core.Search, error) {
	if s == nil || s.repo == nil {
		return core.Search{}, fmt.Errorf("sqlstore: search store is not configured")
	}
	if strings.TrimSpace(in.OwnerID) == "" {
		return core.Search{}, fmt.Errorf("sqlstore: owner id is required")
	}
	if strings.TrimSpace(in.Term) == "" || strings.TrimSpace(in.City) == "" {
		return core.Search{}, fmt.Errorf("sqlstore: term and city are required")
	}
	created, err := s.repo.Create(ctx, newSearchRecord(in, time.Now().UTC()))
	if err != nil {
		return core.Search{}, err
	}
	return created.toDomain(), nil
}

func (s *SearchStore) Get(ctx context.Context, id string) (core.Search, error) {
	if s == nil || s.db == nil {
		return core.Search{}, fmt.Errorf("sqlstore: search store is not configured")
	}
	trimmedID, ok := parseRecordID(id)
	if !ok {
		return core.Search{}, core.ErrSearchNotFound
	}
	record := &searchRecord{}
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", trimmedID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Search{}, fmt.Errorf("sqlstore: search %q: %w", trimmedID, core.ErrSearchNotFound)
		}
		return core.Search{}, err
	}
	return record.toDomain(), nil
}

func (s *SearchStore) ListByOwner(ctx context.Context, ownerID string, limit int) ([]core.Search, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: search store is not configured")
	}
	selectors := []repository.SelectCriteria{
		repository.SelectBy("owner_id", "=", strings.TrimSpace(ownerID)),
		repository.OrderBy("created_at DESC"),
	}
	if limit > 0 {
		selectors = append(selectors, repository.SelectPaginate(limit, 0))
	}
	records, _, err := s.repo.List(ctx, selectors...)
	if err != nil {
		return nil, err
	}
	out := make([]core.Search, 0, len(records))
	for _, record := range records {
		out = append(out, record.toDomain())
	}
	return out, nil
}

func (s *SearchStore) CountByOwner(ctx context.Context, ownerID string) (int, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("sqlstore: search store is not configured")
	}
	return s.db.NewSelect().
		Model((*searchRecord)(nil)).
		Where("owner_id = ?", strings.TrimSpace(ownerID)).
		Count(ctx)
}

func (s *SearchStore) ListIDs(ctx context.Context) ([]string, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: search store is not configured")
	}
	var ids []string
	err := s.db.NewSelect().
		Model((*searchRecord)(nil)).
		Column("id").
		OrderExpr("created_at ASC, id ASC").
		Scan(ctx, &ids)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *SearchStore) SetStatus(ctx context.Context, id string, status core.SearchStatus) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: search store is not configured")
	}
	if !status.Valid() {
		return fmt.Errorf("sqlstore: invalid search status %q", status)
	}
	_, err := s.db.NewUpdate().
		Model((*searchRecord)(nil)).
		Set("status = ?", string(status)).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", strings.TrimSpace(id)).
		Exec(ctx)
	return err
}

func (s *SearchStore) SetCounters(ctx context.Context, id string, leadsCount int) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: search store is not configured")
	}
	if leadsCount < 0 {
		return fmt.Errorf("sqlstore: leads count must be >= 0")
	}
	_, err := s.db.NewUpdate().
		Model((*searchRecord)(nil)).
		Set("leads_count = ?", leadsCount).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", strings.TrimSpace(id)).
		Exec(ctx)
	return err
}

func (s *SearchStore) DeleteAll(ctx context.Context) (int, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("sqlstore: search store is not configured")
	}
	res, err := s.db.NewDelete().
		Model((*searchRecord)(nil)).
		Where("1 = 1").
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	affected, _ := res.RowsAffected()
	return int(affected), nil
}
