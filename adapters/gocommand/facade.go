package gocommand

import (
	"fmt"

	buscarlead "github.com/XandyNerd/BuscarLead"
	"github.com/goliatone/go-command"
	commanddispatcher "github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
)

// Registration holds the dispatcher subscriptions created for a facade.
type Registration struct {
	subscriptions []commanddispatcher.Subscription
}

func (r *Registration) Len() int {
	if r == nil {
		return 0
	}
	return len(r.subscriptions)
}

// Unsubscribe removes every handler registered for the facade.
func (r *Registration) Unsubscribe() {
	if r == nil {
		return
	}
	for _, subscription := range r.subscriptions {
		if subscription != nil {
			subscription.Unsubscribe()
		}
	}
	r.subscriptions = nil
}

// RegisterFacade registers and subscribes every facade command and query so
// they can be reached through Dispatch and Query.
func RegisterFacade(
	adapter *RegistryAdapter,
	facade *buscarlead.Facade,
	runnerOpts ...runner.Option,
) (*Registration, error) {
	if err := adapter.ready(); err != nil {
		return nil, err
	}
	if facade == nil {
		return nil, fmt.Errorf("gocommand: facade is required")
	}

	reg := &Registration{}
	commands := facade.Commands()
	queries := facade.Queries()
	steps := []func() error{
		func() error { return registerCommand(reg, adapter, commands.CreateSearch, runnerOpts) },
		func() error { return registerCommand(reg, adapter, commands.RepeatSearch, runnerOpts) },
		func() error { return registerCommand(reg, adapter, commands.IngestLeads, runnerOpts) },
		func() error { return registerCommand(reg, adapter, commands.SetLeadStatus, runnerOpts) },
		func() error { return registerCommand(reg, adapter, commands.DeduplicateLeads, runnerOpts) },
		func() error { return registerCommand(reg, adapter, commands.ResetAll, runnerOpts) },
		func() error { return registerCommand(reg, adapter, commands.ScheduleMaintenance, runnerOpts) },
		func() error { return registerQuery(reg, adapter, queries.GetSearchDetail, runnerOpts) },
		func() error { return registerQuery(reg, adapter, queries.ListSearches, runnerOpts) },
		func() error { return registerQuery(reg, adapter, queries.ListLeads, runnerOpts) },
		func() error { return registerQuery(reg, adapter, queries.Dashboard, runnerOpts) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			reg.Unsubscribe()
			return nil, err
		}
	}
	return reg, nil
}

func registerCommand[T any](
	reg *Registration,
	adapter *RegistryAdapter,
	cmd command.Commander[T],
	runnerOpts []runner.Option,
) error {
	subscription, err := RegisterAndSubscribe(adapter, cmd, runnerOpts...)
	if err != nil {
		return err
	}
	reg.subscriptions = append(reg.subscriptions, subscription)
	return nil
}

func registerQuery[T any, R any](
	reg *Registration,
	adapter *RegistryAdapter,
	qry command.Querier[T, R],
	runnerOpts []runner.Option,
) error {
	subscription, err := RegisterAndSubscribeQuery(adapter, qry, runnerOpts...)
	if err != nil {
		return err
	}
	reg.subscriptions = append(reg.subscriptions, subscription)
	return nil
}
