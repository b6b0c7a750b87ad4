package sqlstore

import (
	"strings"
	"time"

	"github.com/XandyNerd/BuscarLead/core"
	"github.com/google/uuid"
)

func newSearchRecord(in core.CreateSearchInput, now time.Time) *searchRecord {
	return &searchRecord{
		ID:         uuid.NewString(),
		OwnerID:    strings.TrimSpace(in.OwnerID),
		Term:       strings.TrimSpace(in.Term),
		City:       strings.TrimSpace(in.City),
		Status:     string(core.SearchStatusProcessing),
		LeadsCount: 0,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func (r *searchRecord) toDomain() core.Search {
	if r == nil {
		return core.Search{}
	}
	return core.Search{
		ID:         r.ID,
		OwnerID:    r.OwnerID,
		Term:       r.Term,
		City:       r.City,
		Status:     core.SearchStatus(r.Status),
		LeadsCount: r.LeadsCount,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

func newLeadRecord(draft core.LeadDraft, now time.Time) *leadRecord {
	status := draft.Status
	if status == "" {
		status = core.LeadStatusNew
	}
	photos := append([]string{}, draft.Photos...)
	return &leadRecord{
		ID:           uuid.NewString(),
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
		Photos:       photos,
		Status:       string(status),
		CreatedAt:    now,
	}
}

func (r *leadRecord) toDomain() core.Lead {
	if r == nil {
		return core.Lead{}
	}
	photos := r.Photos
	if photos == nil {
		photos = []string{}
	}
	return core.Lead{
		ID:           r.ID,
		SearchID:     r.SearchID,
		OwnerID:      r.OwnerID,
		Name:         r.Name,
		Phone:        r.Phone,
		Address:      r.Address,
		Neighborhood: r.Neighborhood,
		City:         r.City,
		Rating:       r.Rating,
		Website:      r.Website,
		Email1:       r.Email1,
		Email2:       r.Email2,
		PhotoURL:     r.PhotoURL,
		Photos:       photos,
		Status:       core.LeadStatus(r.Status),
		CreatedAt:    r.CreatedAt,
	}
}
