package gojob

import (
	"context"
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/XandyNerd/BuscarLead/core"

	goerrors "github.com/goliatone/go-errors"
	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-job/queue"
	jobqueuecommand "github.com/goliatone/go-job/queue/command"
	"github.com/goliatone/go-job/queue/worker"
	glog "github.com/goliatone/go-logger/glog"
)

const (
	defaultRetryInterval = 500 * time.Millisecond
	defaultRetryMaxDelay = 30 * time.Second
)

// RetryPolicy bounds maintenance retries; a job that keeps failing ends in
// the dead letter queue instead of looping. Errors caused by the request
// itself are dead lettered on the first attempt.
type RetryPolicy struct {
	MaxAttempts int
	Interval    time.Duration
	MaxDelay    time.Duration
}

func (p RetryPolicy) Decide(attempt int, err error) queue.NackOptions {
	if isPermanent(err) {
		return queue.NackOptions{
			Disposition: queue.NackDispositionDeadLetter,
			Reason:      err.Error(),
		}
	}
	return p.backoff().Decide(attempt, err)
}

func (p RetryPolicy) backoff() worker.DefaultRetryPolicy {
	interval := p.Interval
	if interval <= 0 {
		interval = defaultRetryInterval
	}
	maxDelay := p.MaxDelay
	if maxDelay <= 0 {
		maxDelay = defaultRetryMaxDelay
	}
	return worker.DefaultRetryPolicy{
		MaxAttempts: p.MaxAttempts,
		Backoff: worker.BackoffConfig{
			Strategy:    worker.BackoffExponential,
			Interval:    interval,
			MaxInterval: maxDelay,
		},
	}
}

func isPermanent(err error) bool {
	if err == nil {
		return false
	}
	for _, category := range []goerrors.Category{
		goerrors.CategoryBadInput,
		goerrors.CategoryValidation,
		goerrors.CategoryNotFound,
	} {
		if goerrors.HasCategory(err, category) {
			return true
		}
	}
	return false
}

// ToExecutionMessage maps a job request to the go-job message the queue
// command registry builds for it.
func ToExecutionMessage(msg *core.JobExecutionMessage) *job.ExecutionMessage {
	if msg == nil {
		return nil
	}
	jobID := strings.TrimSpace(msg.JobID)
	return &job.ExecutionMessage{
		JobID:       jobID,
		ScriptPath:  jobID,
		Parameters:  copyAnyMap(msg.Parameters),
		ExecutionID: strings.TrimSpace(msg.CorrelationID),
		DedupPolicy: job.DedupPolicyIgnore,
	}
}

func FromExecutionMessage(msg *job.ExecutionMessage) *core.JobExecutionMessage {
	if msg == nil {
		return nil
	}
	return &core.JobExecutionMessage{
		JobID:         strings.TrimSpace(msg.JobID),
		Parameters:    copyAnyMap(msg.Parameters),
		CorrelationID: strings.TrimSpace(msg.ExecutionID),
	}
}

// EnqueuerAdapter enqueues jobs through the go-job queue command registry, so
// only command types mirrored into the registry can be scheduled.
type EnqueuerAdapter struct {
	enqueuer queue.Enqueuer
	registry *jobqueuecommand.Registry
}

func NewEnqueuerAdapter(enqueuer queue.Enqueuer, registry *jobqueuecommand.Registry) *EnqueuerAdapter {
	return &EnqueuerAdapter{enqueuer: enqueuer, registry: registry}
}

func (a *EnqueuerAdapter) Enqueue(ctx context.Context, msg *core.JobExecutionMessage) (core.JobReceipt, error) {
	if a == nil || a.enqueuer == nil || a.registry == nil {
		return core.JobReceipt{}, fmt.Errorf("gojob: enqueuer is not configured")
	}
	if msg == nil {
		return core.JobReceipt{}, fmt.Errorf("gojob: execution message is required")
	}
	receipt, err := jobqueuecommand.EnqueueWithOptions(
		ctx,
		a.enqueuer,
		a.registry,
		strings.TrimSpace(msg.JobID),
		copyAnyMap(msg.Parameters),
		jobqueuecommand.EnqueueOptions{CorrelationID: strings.TrimSpace(msg.CorrelationID)},
	)
	if err != nil {
		return core.JobReceipt{}, err
	}
	return core.JobReceipt{DispatchID: receipt.DispatchID, EnqueuedAt: receipt.EnqueuedAt}, nil
}

// WorkerHookAdapter exposes a maintenance hook as a go-job worker hook.
type WorkerHookAdapter struct {
	hook core.JobWorkerHook
}

func NewWorkerHookAdapter(hook core.JobWorkerHook) *WorkerHookAdapter {
	return &WorkerHookAdapter{hook: hook}
}

func (a *WorkerHookAdapter) OnStart(ctx context.Context, event worker.Event) {
	if a == nil || a.hook == nil {
		return
	}
	a.hook.OnStart(ctx, mapWorkerEvent(event))
}

func (a *WorkerHookAdapter) OnSuccess(ctx context.Context, event worker.Event) {
	if a == nil || a.hook == nil {
		return
	}
	a.hook.OnSuccess(ctx, mapWorkerEvent(event))
}

func (a *WorkerHookAdapter) OnFailure(ctx context.Context, event worker.Event) {
	if a == nil || a.hook == nil {
		return
	}
	a.hook.OnFailure(ctx, mapWorkerEvent(event))
}

func (a *WorkerHookAdapter) OnRetry(ctx context.Context, event worker.Event) {
	if a == nil || a.hook == nil {
		return
	}
	a.hook.OnRetry(ctx, mapWorkerEvent(event))
}

func mapWorkerEvent(event worker.Event) core.JobWorkerEvent {
	msg := event.Message
	if msg == nil && event.Delivery != nil {
		msg = event.Delivery.Message()
	}
	return core.JobWorkerEvent{
		Message:   FromExecutionMessage(msg),
		Attempt:   event.Attempt,
		Delay:     event.Delay,
		Err:       event.Err,
		StartedAt: event.StartedAt,
		Duration:  event.Duration,
	}
}

func copyAnyMap(in map[string]any) map[string]any {
	if in == nil {
		return map[string]any{}
	}
	return maps.Clone(in)
}

// LoggingHook reports maintenance worker events as structured log lines.
type LoggingHook struct {
	logger glog.Logger
}

func NewLoggingHook(logger glog.Logger) *LoggingHook {
	return &LoggingHook{logger: logger}
}

func (h *LoggingHook) OnStart(_ context.Context, event core.JobWorkerEvent) {
	h.log("debug", "maintenance job started", event)
}

func (h *LoggingHook) OnSuccess(_ context.Context, event core.JobWorkerEvent) {
	h.log("info", "maintenance job succeeded", event)
}

func (h *LoggingHook) OnFailure(_ context.Context, event core.JobWorkerEvent) {
	h.log("error", "maintenance job failed", event)
}

func (h *LoggingHook) OnRetry(_ context.Context, event core.JobWorkerEvent) {
	h.log("warn", "maintenance job scheduled for retry", event)
}

func (h *LoggingHook) log(level string, message string, event core.JobWorkerEvent) {
	if h == nil || h.logger == nil {
		return
	}
	args := []any{"attempt", event.Attempt, "duration_ms", event.Duration.Milliseconds()}
	if event.Message != nil {
		args = append(args, "job_id", event.Message.JobID, "correlation_id", event.Message.CorrelationID)
	}
	if event.Delay > 0 {
		args = append(args, "delay_ms", event.Delay.Milliseconds())
	}
	if event.Err != nil {
		args = append(args, "error", event.Err.Error())
	}
	switch level {
	case "error":
		h.logger.Error(message, args...)
	case "warn":
		h.logger.Warn(message, args...)
	case "debug":
		h.logger.Debug(message, args...)
	default:
		h.logger.Info(message, args...)
	}
}

var (
	_ core.JobEnqueuer   = (*EnqueuerAdapter)(nil)
	_ core.JobWorkerHook = (*LoggingHook)(nil)
	_ worker.Hook        = (*WorkerHookAdapter)(nil)
	_ worker.RetryPolicy = RetryPolicy{}
)
