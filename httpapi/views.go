package httpapi

import (
	"time"

	"github.com/XandyNerd/BuscarLead/core"
)

type searchView struct {
	ID         string            `json:"id"`
	Term       string            `json:"term"`
	City       string            `json:"city"`
	Status     core.SearchStatus `json:"status"`
	LeadsCount int               `json:"leads_count"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

type searchRef struct {
	Term string `json:"term"`
	City string `json:"city"`
}

type leadView struct {
	ID           string          `json:"id"`
	SearchID     string          `json:"search_id"`
	Name         string          `json:"name"`
	Phone        string          `json:"phone"`
	Address      string          `json:"address"`
	Neighborhood string          `json:"neighborhood"`
	City         string          `json:"city"`
	Rating       *float64        `json:"rating"`
	Website      *string         `json:"website"`
	Email1       *string         `json:"email_1"`
	Email2       *string         `json:"email_2"`
	PhotoURL     *string         `json:"photo_url"`
	Photos       []string        `json:"photos"`
	Status       core.LeadStatus `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	Search       *searchRef      `json:"search,omitempty"`
}

func newSearchView(search core.Search) searchView {
	return searchView{
		ID:         search.ID,
		Term:       search.Term,
		City:       search.City,
		Status:     search.Status,
		LeadsCount: search.LeadsCount,
		CreatedAt:  search.CreatedAt,
		UpdatedAt:  search.UpdatedAt,
	}
}

func searchViews(searches []core.Search) []searchView {
	out := make([]searchView, 0, len(searches))
	for _, search := range searches {
		out = append(out, newSearchView(search))
	}
	return out
}

func newLeadView(lead core.Lead, search *searchRef) leadView {
	photos := lead.Photos
	if photos == nil {
		photos = []string{}
	}
	return leadView{
		ID:           lead.ID,
		SearchID:     lead.SearchID,
		Name:         lead.Name,
		Phone:        lead.Phone,
		Address:      lead.Address,
		Neighborhood: lead.Neighborhood,
		City:         lead.City,
		Rating:       lead.Rating,
		Website:      lead.Website,
		Email1:       lead.Email1,
		Email2:       lead.Email2,
		PhotoURL:     lead.PhotoURL,
		Photos:       photos,
		Status:       lead.Status,
		CreatedAt:    lead.CreatedAt,
		Search:       search,
	}
}
