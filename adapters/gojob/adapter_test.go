package gojob

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/XandyNerd/BuscarLead/core"

	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-job/queue"
	jobqueuecommand "github.com/goliatone/go-job/queue/command"
	"github.com/goliatone/go-job/queue/worker"
	glog "github.com/goliatone/go-logger/glog"
)

func TestMessageMappingRoundTrip(t *testing.T) {
	original := &core.JobExecutionMessage{
		JobID:         core.JobIDDeduplicateLeads,
		Parameters:    map[string]any{"requested_by": "scheduler"},
		CorrelationID: "dedupe-2026-10-15",
	}

	converted := ToExecutionMessage(original)
	if converted == nil {
		t.Fatalf("expected converted message")
	}
	if converted.ScriptPath != core.JobIDDeduplicateLeads {
		t.Fatalf("expected script path to follow the job id, got %q", converted.ScriptPath)
	}
	if converted.DedupPolicy != job.DedupPolicyIgnore {
		t.Fatalf("expected ignore dedup policy, got %q", converted.DedupPolicy)
	}
	roundTrip := FromExecutionMessage(converted)
	if roundTrip.JobID != original.JobID {
		t.Fatalf("expected job id %q, got %q", original.JobID, roundTrip.JobID)
	}
	if roundTrip.CorrelationID != original.CorrelationID {
		t.Fatalf("expected correlation id %q, got %q", original.CorrelationID, roundTrip.CorrelationID)
	}
	if roundTrip.Parameters["requested_by"] != "scheduler" {
		t.Fatalf("expected parameters to survive mapping")
	}
}

func TestEnqueuerAdapterUsesQueueRegistry(t *testing.T) {
	ctx := context.Background()
	registry := newMaintenanceRegistry(t, map[string]jobqueuecommand.HandlerFunc{
		core.JobIDResetAll: func(context.Context, map[string]any) error { return nil },
	})
	enqueuer := &stubQueueEnqueuer{}
	adapter := NewEnqueuerAdapter(enqueuer, registry)

	receipt, err := adapter.Enqueue(ctx, core.NewMaintenanceJobMessage(core.JobIDResetAll, "reset-1"))
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if receipt.DispatchID != "dispatch-1" {
		t.Fatalf("expected queue receipt, got %+v", receipt)
	}
	last := enqueuer.last
	if last == nil || last.JobID != core.JobIDResetAll || last.ScriptPath != core.JobIDResetAll {
		t.Fatalf("unexpected go-job message %#v", last)
	}
	if last.ExecutionID != "reset-1" || last.DedupPolicy != job.DedupPolicyIgnore {
		t.Fatalf("expected correlation as execution id with ignore policy, got %#v", last)
	}

	if _, err := adapter.Enqueue(ctx, core.NewMaintenanceJobMessage(core.JobIDDeduplicateLeads, "")); err == nil {
		t.Fatalf("expected unregistered job to be rejected")
	}
	if len(enqueuer.calls) != 1 {
		t.Fatalf("expected rejected job not to reach the queue, got %d calls", len(enqueuer.calls))
	}
}

func TestRetryPolicyDecide(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 3, Interval: time.Second, MaxDelay: 3 * time.Second}
	transient := errors.New("database locked")

	first := policy.Decide(1, transient)
	if first.Disposition != queue.NackDispositionRetry || first.Delay != time.Second {
		t.Fatalf("expected first retry after the base interval, got %+v", first)
	}
	second := policy.Decide(2, transient)
	if second.Disposition != queue.NackDispositionRetry || second.Delay != 2*time.Second {
		t.Fatalf("expected exponential delay, got %+v", second)
	}
	last := policy.Decide(3, transient)
	if last.Disposition != queue.NackDispositionDeadLetter || last.Reason != "database locked" {
		t.Fatalf("expected dead letter once attempts are exhausted, got %+v", last)
	}

	capped := RetryPolicy{MaxAttempts: 10, Interval: time.Second, MaxDelay: 3 * time.Second}.Decide(5, transient)
	if capped.Delay != 3*time.Second {
		t.Fatalf("expected delay capped at max delay, got %s", capped.Delay)
	}

	invalid := policy.Decide(1, core.NewValidationError("job_id", "unknown maintenance job"))
	if invalid.Disposition != queue.NackDispositionDeadLetter {
		t.Fatalf("expected validation failure to dead letter on first attempt, got %+v", invalid)
	}
	terminal := policy.Decide(1, job.NewTerminalError(job.TerminalErrorCodeStaleStateMismatch, "stale", transient))
	if terminal.Disposition != queue.NackDispositionDeadLetter {
		t.Fatalf("expected terminal error to dead letter, got %+v", terminal)
	}
}

func TestWorkerHookAdapterMapsEvents(t *testing.T) {
	hook := &recordingJobHook{}
	adapter := NewWorkerHookAdapter(hook)
	delivery := &stubQueueDelivery{msg: ToExecutionMessage(core.NewMaintenanceJobMessage(core.JobIDDeduplicateLeads, "hourly"))}

	adapter.OnRetry(context.Background(), worker.Event{
		Delivery: delivery,
		Attempt:  2,
		Delay:    time.Second,
		Err:      errors.New("database locked"),
	})
	events := hook.snapshot()
	if len(events) != 1 || events[0].name != "retry" {
		t.Fatalf("expected one retry event, got %#v", events)
	}
	event := events[0].event
	if event.Message == nil || event.Message.JobID != core.JobIDDeduplicateLeads || event.Message.CorrelationID != "hourly" {
		t.Fatalf("expected message taken from the delivery, got %#v", event.Message)
	}
	if event.Attempt != 2 || event.Delay != time.Second || event.Err == nil {
		t.Fatalf("unexpected mapped event %#v", event)
	}

	var nilAdapter *WorkerHookAdapter
	nilAdapter.OnStart(context.Background(), worker.Event{})
	NewWorkerHookAdapter(nil).OnSuccess(context.Background(), worker.Event{})
}

func TestNilAdaptersReturnErrors(t *testing.T) {
	ctx := context.Background()
	var enqueuer *EnqueuerAdapter
	if _, err := enqueuer.Enqueue(ctx, &core.JobExecutionMessage{JobID: core.JobIDResetAll}); err == nil {
		t.Fatalf("expected error for unconfigured enqueuer")
	}
	if _, err := NewEnqueuerAdapter(&stubQueueEnqueuer{}, nil).Enqueue(ctx, &core.JobExecutionMessage{JobID: core.JobIDResetAll}); err == nil {
		t.Fatalf("expected error without a queue registry")
	}
	if _, err := NewEnqueuerAdapter(&stubQueueEnqueuer{}, jobqueuecommand.NewRegistry()).Enqueue(ctx, nil); err == nil {
		t.Fatalf("expected error for nil message")
	}
}

func TestLoggingHookWritesStructuredFields(t *testing.T) {
	logger := &recordingLogger{}
	hook := NewLoggingHook(logger)

	hook.OnFailure(context.Background(), core.JobWorkerEvent{
		Message:  &core.JobExecutionMessage{JobID: core.JobIDDeduplicateLeads, CorrelationID: "dedupe-1"},
		Attempt:  3,
		Err:      errors.New("database locked"),
		Duration: 40 * time.Millisecond,
	})
	if logger.level != "error" || logger.msg != "maintenance job failed" {
		t.Fatalf("unexpected log call %s %q", logger.level, logger.msg)
	}
	fields := map[any]any{}
	for i := 0; i+1 < len(logger.args); i += 2 {
		fields[logger.args[i]] = logger.args[i+1]
	}
	if fields["job_id"] != core.JobIDDeduplicateLeads || fields["correlation_id"] != "dedupe-1" {
		t.Fatalf("unexpected message fields %#v", fields)
	}
	if fields["error"] != "database locked" || fields["attempt"] != 3 {
		t.Fatalf("unexpected fields %#v", fields)
	}

	var nilHook *LoggingHook
	nilHook.OnSuccess(context.Background(), core.JobWorkerEvent{})
}

func newMaintenanceRegistry(t *testing.T, handlers map[string]jobqueuecommand.HandlerFunc) *jobqueuecommand.Registry {
	t.Helper()
	registry := jobqueuecommand.NewRegistry()
	for id, handler := range handlers {
		if err := registry.Register(jobqueuecommand.Entry{ID: id, MessageType: id, Handler: handler}); err != nil {
			t.Fatalf("register %s: %v", id, err)
		}
	}
	return registry
}

type stubQueueEnqueuer struct {
	calls []*job.ExecutionMessage
	last  *job.ExecutionMessage
}

func (s *stubQueueEnqueuer) Enqueue(_ context.Context, msg *job.ExecutionMessage) (queue.EnqueueReceipt, error) {
	s.calls = append(s.calls, msg)
	s.last = msg
	return queue.EnqueueReceipt{DispatchID: "dispatch-1", EnqueuedAt: time.Now()}, nil
}

type stubQueueDelivery struct {
	msg      *job.ExecutionMessage
	acked    bool
	nackOpts queue.NackOptions
}

func (s *stubQueueDelivery) Message() *job.ExecutionMessage {
	return s.msg
}

func (s *stubQueueDelivery) Ack(context.Context) error {
	s.acked = true
	return nil
}

func (s *stubQueueDelivery) Nack(_ context.Context, opts queue.NackOptions) error {
	s.nackOpts = opts
	return nil
}

type recordedJobEvent struct {
	name  string
	event core.JobWorkerEvent
}

type recordingJobHook struct {
	mu     sync.Mutex
	events []recordedJobEvent
}

func (h *recordingJobHook) add(name string, event core.JobWorkerEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, recordedJobEvent{name: name, event: event})
}

func (h *recordingJobHook) snapshot() []recordedJobEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]recordedJobEvent(nil), h.events...)
}

func (h *recordingJobHook) count(name string) int {
	total := 0
	for _, recorded := range h.snapshot() {
		if recorded.name == name {
			total++
		}
	}
	return total
}

func (h *recordingJobHook) OnStart(_ context.Context, event core.JobWorkerEvent) {
	h.add("start", event)
}

func (h *recordingJobHook) OnSuccess(_ context.Context, event core.JobWorkerEvent) {
	h.add("success", event)
}

func (h *recordingJobHook) OnFailure(_ context.Context, event core.JobWorkerEvent) {
	h.add("failure", event)
}

func (h *recordingJobHook) OnRetry(_ context.Context, event core.JobWorkerEvent) {
	h.add("retry", event)
}

type recordingLogger struct {
	level string
	msg   string
	args  []any
}

func (l *recordingLogger) record(level, msg string, args []any) {
	l.level, l.msg, l.args = level, msg, append([]any(nil), args...)
}

func (l *recordingLogger) Trace(msg string, args ...any) { l.record("trace", msg, args) }
func (l *recordingLogger) Debug(msg string, args ...any) { l.record("debug", msg, args) }
func (l *recordingLogger) Info(msg string, args ...any)  { l.record("info", msg, args) }
func (l *recordingLogger) Warn(msg string, args ...any)  { l.record("warn", msg, args) }
func (l *recordingLogger) Error(msg string, args ...any) { l.record("error", msg, args) }
func (l *recordingLogger) Fatal(msg string, args ...any) { l.record("fatal", msg, args) }

func (l *recordingLogger) WithContext(context.Context) glog.Logger {
	return l
}
