package command

import (
	"github.com/XandyNerd/BuscarLead/core"
	gocmd "github.com/goliatone/go-command"
)

var (
	_ gocmd.Commander[CreateSearchMessage]        = (*CreateSearchCommand)(nil)
	_ gocmd.Commander[RepeatSearchMessage]        = (*RepeatSearchCommand)(nil)
	_ gocmd.Commander[IngestLeadsMessage]         = (*IngestLeadsCommand)(nil)
	_ gocmd.Commander[SetLeadStatusMessage]       = (*SetLeadStatusCommand)(nil)
	_ gocmd.Commander[DeduplicateLeadsMessage]    = (*DeduplicateLeadsCommand)(nil)
	_ gocmd.Commander[ResetAllMessage]            = (*ResetAllCommand)(nil)
	_ gocmd.Commander[ScheduleMaintenanceMessage] = (*ScheduleMaintenanceCommand)(nil)

	_ MutatingService = (*core.Service)(nil)
)
