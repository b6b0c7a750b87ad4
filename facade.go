package buscarlead

import (
	"fmt"

	"github.com/XandyNerd/BuscarLead/command"
	"github.com/XandyNerd/BuscarLead/core"
	"github.com/XandyNerd/BuscarLead/query"
)

type CommandQueryService interface {
	command.MutatingService
	query.SearchReader
	query.LeadReader
}

type Commands struct {
	CreateSearch        *command.CreateSearchCommand
	RepeatSearch        *command.RepeatSearchCommand
	IngestLeads         *command.IngestLeadsCommand
	SetLeadStatus       *command.SetLeadStatusCommand
	DeduplicateLeads    *command.DeduplicateLeadsCommand
	ResetAll            *command.ResetAllCommand
	ScheduleMaintenance *command.ScheduleMaintenanceCommand
}

type Queries struct {
	GetSearchDetail *query.GetSearchDetailQuery
	ListSearches    *query.ListSearchesQuery
	ListLeads       *query.ListLeadsQuery
	Dashboard       *query.DashboardQuery
}

type Facade struct {
	service  CommandQueryService
	commands Commands
	queries  Queries
}

type FacadeOption func(*facadeOptions)

type facadeOptions struct {
	maintenanceQueue core.JobEnqueuer
}

// WithMaintenanceQueue enables Commands().ScheduleMaintenance. Without it the
// command reports a dependency error.
func WithMaintenanceQueue(enqueuer core.JobEnqueuer) FacadeOption {
	return func(options *facadeOptions) {
		options.maintenanceQueue = enqueuer
	}
}

func NewFacade(service CommandQueryService, opts ...FacadeOption) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("buscarlead: command/query service is required")
	}
	cfg := facadeOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	facade := &Facade{service: service}
	facade.commands = Commands{
		CreateSearch:        command.NewCreateSearchCommand(service),
		RepeatSearch:        command.NewRepeatSearchCommand(service),
		IngestLeads:         command.NewIngestLeadsCommand(service),
		SetLeadStatus:       command.NewSetLeadStatusCommand(service),
		DeduplicateLeads:    command.NewDeduplicateLeadsCommand(service),
		ResetAll:            command.NewResetAllCommand(service),
		ScheduleMaintenance: command.NewScheduleMaintenanceCommand(cfg.maintenanceQueue),
	}
	facade.queries = Queries{
		GetSearchDetail: query.NewGetSearchDetailQuery(service),
		ListSearches:    query.NewListSearchesQuery(service),
		ListLeads:       query.NewListLeadsQuery(service),
		Dashboard:       query.NewDashboardQuery(service),
	}

	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Service() CommandQueryService {
	if f == nil {
		return nil
	}
	return f.service
}
