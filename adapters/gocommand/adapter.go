package gocommand

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/goliatone/go-command"
	commanddispatcher "github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
	jobqueuecommand "github.com/goliatone/go-job/queue/command"
)

const (
	// MessageNamespace prefixes every BuscarLead command and query type.
	MessageNamespace = "buscarlead."
	// QueueResolverKey is the resolver key used when none is given.
	QueueResolverKey = "queue"
)

var errRegistryNotConfigured = errors.New("gocommand: registry is not configured")

// ValidateMessageContract checks that msg carries a namespaced Type() and
// passes its own Validate(), if it has one.
func ValidateMessageContract(msg any) error {
	m, ok := msg.(command.Message)
	if !ok {
		return fmt.Errorf("gocommand: %T must implement Type() string", msg)
	}
	messageType := strings.TrimSpace(m.Type())
	if messageType == "" {
		return fmt.Errorf("gocommand: message type is required")
	}
	if !strings.HasPrefix(messageType, MessageNamespace) {
		return fmt.Errorf("gocommand: message type %q is outside the %q namespace", messageType, MessageNamespace)
	}
	return command.ValidateMessage(msg)
}

// RegistryAdapter owns the go-command registry the facade handlers are
// registered on.
type RegistryAdapter struct {
	registry *command.Registry
}

func NewRegistryAdapter(registry *command.Registry) *RegistryAdapter {
	if registry == nil {
		registry = command.NewRegistry()
	}
	return &RegistryAdapter{registry: registry}
}

func (a *RegistryAdapter) ready() error {
	if a == nil || a.registry == nil {
		return errRegistryNotConfigured
	}
	return nil
}

func (a *RegistryAdapter) RegisterCommand(cmd any) error {
	if err := a.ready(); err != nil {
		return err
	}
	return a.registry.RegisterCommand(cmd)
}

// RegisterQuery shares the command table; go-command keys both by message type.
func (a *RegistryAdapter) RegisterQuery(qry any) error {
	return a.RegisterCommand(qry)
}

func (a *RegistryAdapter) AddResolver(key string, resolver command.Resolver) error {
	if err := a.ready(); err != nil {
		return err
	}
	return a.registry.AddResolver(strings.TrimSpace(key), resolver)
}

// AddQueueResolver mirrors registered commands into queueRegistry so go-job
// workers can execute them. Handlers without an Execute method, such as
// queries, are skipped. When messageTypes is non-empty only those commands
// are mirrored. An empty key uses QueueResolverKey.
func (a *RegistryAdapter) AddQueueResolver(key string, queueRegistry *jobqueuecommand.Registry, messageTypes ...string) error {
	if queueRegistry == nil {
		return fmt.Errorf("gocommand: queue registry is required")
	}
	if strings.TrimSpace(key) == "" {
		key = QueueResolverKey
	}
	allowed := make(map[string]struct{}, len(messageTypes))
	for _, messageType := range messageTypes {
		if messageType = strings.TrimSpace(messageType); messageType != "" {
			allowed[messageType] = struct{}{}
		}
	}
	mirror := jobqueuecommand.QueueResolver(queueRegistry)
	return a.AddResolver(key, func(cmd any, meta command.CommandMeta, registry *command.Registry) error {
		if !hasExecute(cmd) {
			return nil
		}
		if len(allowed) > 0 {
			if _, ok := allowed[meta.MessageType]; !ok {
				return nil
			}
		}
		return mirror(cmd, meta, registry)
	})
}

func hasExecute(cmd any) bool {
	if cmd == nil {
		return false
	}
	return reflect.ValueOf(cmd).MethodByName("Execute").IsValid()
}

func (a *RegistryAdapter) HasResolver(key string) bool {
	return a.ready() == nil && a.registry.HasResolver(strings.TrimSpace(key))
}

func (a *RegistryAdapter) Initialize() error {
	if err := a.ready(); err != nil {
		return err
	}
	return a.registry.Initialize()
}

// Dispatch validates msg and runs the subscribed command handler.
func Dispatch[T any](ctx context.Context, msg T) error {
	if err := ValidateMessageContract(msg); err != nil {
		return err
	}
	return commanddispatcher.Dispatch(ctx, msg)
}

// Query validates msg and runs the subscribed query handler.
func Query[T any, R any](ctx context.Context, msg T) (R, error) {
	if err := ValidateMessageContract(msg); err != nil {
		var zero R
		return zero, err
	}
	return commanddispatcher.Query[T, R](ctx, msg)
}

func RegisterAndSubscribe[T any](
	adapter *RegistryAdapter,
	cmd command.Commander[T],
	runnerOpts ...runner.Option,
) (commanddispatcher.Subscription, error) {
	if cmd == nil {
		return nil, fmt.Errorf("gocommand: command is required")
	}
	return bind(adapter, cmd, func() commanddispatcher.Subscription {
		return commanddispatcher.SubscribeCommand(cmd, runnerOpts...)
	})
}

func RegisterAndSubscribeQuery[T any, R any](
	adapter *RegistryAdapter,
	qry command.Querier[T, R],
	runnerOpts ...runner.Option,
) (commanddispatcher.Subscription, error) {
	if qry == nil {
		return nil, fmt.Errorf("gocommand: query is required")
	}
	return bind(adapter, qry, func() commanddispatcher.Subscription {
		return commanddispatcher.SubscribeQuery(qry, runnerOpts...)
	})
}

// bind subscribes handler and registers it; the subscription is dropped when
// registration fails.
func bind(
	adapter *RegistryAdapter,
	handler any,
	subscribe func() commanddispatcher.Subscription,
) (commanddispatcher.Subscription, error) {
	if err := adapter.ready(); err != nil {
		return nil, err
	}
	subscription := subscribe()
	if err := adapter.RegisterCommand(handler); err != nil {
		if subscription != nil {
			subscription.Unsubscribe()
		}
		return nil, err
	}
	return subscription, nil
}
