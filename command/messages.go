package command

import (
	"strings"

	"github.com/XandyNerd/BuscarLead/core"
)

const (
	TypeCreateSearch     = "buscarlead.command.search.create"
	TypeRepeatSearch     = "buscarlead.command.search.repeat"
	TypeIngestLeads      = "buscarlead.command.leads.ingest"
	TypeSetLeadStatus    = "buscarlead.command.lead.set_status"
	TypeDeduplicateLeads = core.JobIDDeduplicateLeads
	TypeResetAll         = core.JobIDResetAll
	TypeScheduleJob      = "buscarlead.command.maintenance.schedule"
)

type CreateSearchMessage struct {
	Request core.CreateSearchRequest
}

func (CreateSearchMessage) Type() string { return TypeCreateSearch }

func (m CreateSearchMessage) Validate() error {
	if strings.TrimSpace(m.Request.OwnerID) == "" {
		return core.NewValidationError("owner_id", "owner id is required")
	}
	if strings.TrimSpace(m.Request.Term) == "" {
		return core.NewValidationError("term", "term is required")
	}
	if strings.TrimSpace(m.Request.City) == "" {
		return core.NewValidationError("city", "city is required")
	}
	return nil
}

type RepeatSearchMessage struct {
	Request core.RepeatSearchRequest
}

func (RepeatSearchMessage) Type() string { return TypeRepeatSearch }

func (m RepeatSearchMessage) Validate() error {
	if strings.TrimSpace(m.Request.OwnerID) == "" {
		return core.NewValidationError("owner_id", "owner id is required")
	}
	if strings.TrimSpace(m.Request.SearchID) == "" {
		return core.NewValidationError("search_id", "search id is required")
	}
	return nil
}

// IngestLeadsMessage carries one webhook batch. An empty batch is valid and
// completes the search.
type IngestLeadsMessage struct {
	Request core.IngestRequest
}

func (IngestLeadsMessage) Type() string { return TypeIngestLeads }

func (m IngestLeadsMessage) Validate() error {
	if strings.TrimSpace(m.Request.SearchID) == "" {
		return core.NewValidationError("search_id", "search id is required")
	}
	return nil
}

type SetLeadStatusMessage struct {
	Request core.SetLeadStatusRequest
}

func (SetLeadStatusMessage) Type() string { return TypeSetLeadStatus }

func (m SetLeadStatusMessage) Validate() error {
	if strings.TrimSpace(m.Request.OwnerID) == "" {
		return core.NewValidationError("owner_id", "owner id is required")
	}
	if strings.TrimSpace(m.Request.LeadID) == "" {
		return core.NewValidationError("lead_id", "lead id is required")
	}
	if _, err := core.ParseLeadStatus(m.Request.Status); err != nil {
		return core.NewValidationError("status", "status must be one of new, contacted, not_interested")
	}
	return nil
}

type DeduplicateLeadsMessage struct{}

func (DeduplicateLeadsMessage) Type() string { return TypeDeduplicateLeads }

type ResetAllMessage struct{}

func (ResetAllMessage) Type() string { return TypeResetAll }

// ScheduleMaintenanceMessage asks the background worker to run a
// maintenance job instead of running it inline. Requests sharing a
// correlation id collapse while one is still queued.
type ScheduleMaintenanceMessage struct {
	JobID         string
	CorrelationID string
}

func (ScheduleMaintenanceMessage) Type() string { return TypeScheduleJob }

func (m ScheduleMaintenanceMessage) Validate() error {
	if strings.TrimSpace(m.JobID) == "" {
		return core.NewValidationError("job_id", "job id is required")
	}
	if !core.IsMaintenanceJob(m.JobID) {
		return core.NewValidationError("job_id", "unknown maintenance job")
	}
	return nil
}
