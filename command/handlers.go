package command

import (
	"context"

	"github.com/XandyNerd/BuscarLead/core"
	gocmd "github.com/goliatone/go-command"
)

type MutatingService interface {
	CreateSearch(ctx context.Context, req core.CreateSearchRequest) (core.Search, error)
	RepeatSearch(ctx context.Context, req core.RepeatSearchRequest) (core.Search, error)
	Ingest(ctx context.Context, req core.IngestRequest) (core.IngestResult, error)
	SetLeadStatus(ctx context.Context, req core.SetLeadStatusRequest) (core.SetLeadStatusResult, error)
	DeduplicateAll(ctx context.Context) (core.DeduplicateResult, error)
	ResetAll(ctx context.Context) (core.ResetResult, error)
}

type CreateSearchCommand struct {
	service MutatingService
}

func NewCreateSearchCommand(service MutatingService) *CreateSearchCommand {
	return &CreateSearchCommand{service: service}
}

func (c *CreateSearchCommand) Execute(ctx context.Context, msg CreateSearchMessage) error {
	if c == nil || c.service == nil {
		return core.NewDependencyError("command: search service is required")
	}
	out, err := c.service.CreateSearch(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type RepeatSearchCommand struct {
	service MutatingService
}

func NewRepeatSearchCommand(service MutatingService) *RepeatSearchCommand {
	return &RepeatSearchCommand{service: service}
}

func (c *RepeatSearchCommand) Execute(ctx context.Context, msg RepeatSearchMessage) error {
	if c == nil || c.service == nil {
		return core.NewDependencyError("command: search service is required")
	}
	out, err := c.service.RepeatSearch(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type IngestLeadsCommand struct {
	service MutatingService
}

func NewIngestLeadsCommand(service MutatingService) *IngestLeadsCommand {
	return &IngestLeadsCommand{service: service}
}

func (c *IngestLeadsCommand) Execute(ctx context.Context, msg IngestLeadsMessage) error {
	if c == nil || c.service == nil {
		return core.NewDependencyError("command: ingestion service is required")
	}
	out, err := c.service.Ingest(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type SetLeadStatusCommand struct {
	service MutatingService
}

func NewSetLeadStatusCommand(service MutatingService) *SetLeadStatusCommand {
	return &SetLeadStatusCommand{service: service}
}

func (c *SetLeadStatusCommand) Execute(ctx context.Context, msg SetLeadStatusMessage) error {
	if c == nil || c.service == nil {
		return core.NewDependencyError("command: lead service is required")
	}
	out, err := c.service.SetLeadStatus(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type DeduplicateLeadsCommand struct {
	service MutatingService
}

func NewDeduplicateLeadsCommand(service MutatingService) *DeduplicateLeadsCommand {
	return &DeduplicateLeadsCommand{service: service}
}

func (c *DeduplicateLeadsCommand) Execute(ctx context.Context, _ DeduplicateLeadsMessage) error {
	if c == nil || c.service == nil {
		return core.NewDependencyError("command: maintenance service is required")
	}
	out, err := c.service.DeduplicateAll(ctx)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type ResetAllCommand struct {
	service MutatingService
}

func NewResetAllCommand(service MutatingService) *ResetAllCommand {
	return &ResetAllCommand{service: service}
}

func (c *ResetAllCommand) Execute(ctx context.Context, _ ResetAllMessage) error {
	if c == nil || c.service == nil {
		return core.NewDependencyError("command: maintenance service is required")
	}
	out, err := c.service.ResetAll(ctx)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type ScheduleMaintenanceCommand struct {
	enqueuer core.JobEnqueuer
}

func NewScheduleMaintenanceCommand(enqueuer core.JobEnqueuer) *ScheduleMaintenanceCommand {
	return &ScheduleMaintenanceCommand{enqueuer: enqueuer}
}

func (c *ScheduleMaintenanceCommand) Execute(ctx context.Context, msg ScheduleMaintenanceMessage) error {
	if c == nil || c.enqueuer == nil {
		return core.NewDependencyError("command: maintenance queue is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	receipt, err := c.enqueuer.Enqueue(ctx, core.NewMaintenanceJobMessage(msg.JobID, msg.CorrelationID))
	if err != nil {
		return err
	}
	storeResult(ctx, receipt)
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
