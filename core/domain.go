package core

import (
	"fmt"
	"strings"
	"time"
)

type SearchStatus string

const (
	SearchStatusProcessing SearchStatus = "processing"
	SearchStatusCompleted  SearchStatus = "completed"
	SearchStatusError      SearchStatus = "error"
)

func (s SearchStatus) Valid() bool {
	switch s {
	case SearchStatusProcessing, SearchStatusCompleted, SearchStatusError:
		return true
	default:
		return false
	}
}

type LeadStatus string

const (
	LeadStatusNew           LeadStatus = "new"
	LeadStatusContacted     LeadStatus = "contacted"
	LeadStatusNotInterested LeadStatus = "not_interested"
)

func (s LeadStatus) Valid() bool {
	switch s {
	case LeadStatusNew, LeadStatusContacted, LeadStatusNotInterested:
		return true
	default:
		return false
	}
}

// ParseLeadStatus accepts only the enumerated triage values, compared after
// trimming surrounding whitespace.
func ParseLeadStatus(raw string) (LeadStatus, error) {
	status := LeadStatus(strings.TrimSpace(raw))
	if !status.Valid() {
		return "", fmt.Errorf("core: invalid lead status %q", raw)
	}
	return status, nil
}

type Search struct {
	ID         string
	OwnerID    string
	Term       string
	City       string
	Status     SearchStatus
	LeadsCount int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Lead struct {
	ID           string
	SearchID     string
	OwnerID      string
	Name         string
	Phone        string
	Address      string
	Neighborhood string
	City         string
	Rating       *float64
	Website      *string
	Email1       *string
	Email2       *string
	PhotoURL     *string
	Photos       []string
	Status       LeadStatus
	CreatedAt    time.Time
}

// LeadDraft is a normalized, alias-free lead awaiting insertion.
type LeadDraft struct {
	SearchID     string
	OwnerID      string
	Name         string
	Phone        string
	Address      string
	Neighborhood string
	City         string
	Rating       *float64
	Website      *string
	Email1       *string
	Email2       *string
	PhotoURL     *string
	Photos       []string
	Status       LeadStatus
}

// LeadKey is the projection scanned by the duplicate sweep.
type LeadKey struct {
	ID        string
	SearchID  string
	Phone     string
	CreatedAt time.Time
}

// RawRecord is one scraped business record exactly as the workflow sent it.
type RawRecord map[string]any

type CreateSearchInput struct {
	OwnerID string
	Term    string
	City    string
}

type CreateSearchRequest struct {
	OwnerID string
	Term    string
	City    string
	// RequestBaseURL is the scheme://host the request arrived on; it is only
	// used to derive the callback address when no public base url is set.
	RequestBaseURL string
}

type RepeatSearchRequest struct {
	SearchID       string
	OwnerID        string
	RequestBaseURL string
}

type TriggerRequest struct {
	SearchID    string `json:"search_id"`
	Term        string `json:"term"`
	City        string `json:"city"`
	CallbackURL string `json:"callback_url"`
}

type IngestRequest struct {
	SearchID string
	Records  []RawRecord
}

type IngestResult struct {
	SearchID   string
	Received   int
	Accepted   int
	Skipped    int
	Inserted   int
	LeadsCount int
	Status     SearchStatus
}

type SetLeadStatusRequest struct {
	LeadID  string
	OwnerID string
	Status  string
}

type SetLeadStatusResult struct {
	LeadID  string
	Status  LeadStatus
	Updated bool
}

type DeduplicateResult struct {
	Scanned           int
	DuplicatesRemoved int
	UniqueRemaining   int
	FailedBatches     int
	SearchesRecounted int
}

type ResetResult struct {
	LeadsDeleted    int
	SearchesDeleted int
}

type LeadListFilter struct {
	OwnerID  string
	SearchID string
	Status   LeadStatus
	Limit    int
}

type LeadWithSearch struct {
	Lead
	SearchTerm string
	SearchCity string
}

type SearchDetail struct {
	Search Search
	Leads  []Lead
}

type DashboardSummary struct {
	TotalSearches  int
	TotalLeads     int
	RecentSearches []Search
}
