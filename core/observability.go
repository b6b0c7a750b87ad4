package core

import (
	"context"
	"sort"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// operation names a service call in logs ("<op> succeeded") and metrics
// ("buscarlead.<op>.total").
type operation string

const (
	opIngest           operation = "ingest"
	opSearchCreate     operation = "search_create"
	opSearchRepeat     operation = "search_repeat"
	opLeadStatusUpdate operation = "lead_status_update"
	opLeadsDeduplicate operation = "leads_deduplicate"
	opResetAll         operation = "reset_all"
)

// leadVolumeFields are the result fields that count lead rows written or
// removed; each one feeds the buscarlead.leads.<field> counter.
var leadVolumeFields = []string{"inserted", "duplicates_removed", "leads_deleted"}

type logLevel int

const (
	levelInfo logLevel = iota
	levelWarn
	levelError
)

type NopMetricsRecorder struct{}

func (NopMetricsRecorder) IncCounter(context.Context, string, int64, map[string]string) {}

func (NopMetricsRecorder) ObserveHistogram(context.Context, string, float64, map[string]string) {}

// observeOperation logs and measures one service call. Metric tags stay
// low-cardinality; ids only travel in log fields. Bad input is logged as a
// warning since the caller, not the service, is at fault.
func (s *Service) observeOperation(ctx context.Context, startedAt time.Time, op operation, err error, fields map[string]any) {
	if s == nil {
		return
	}
	elapsed := time.Since(startedAt)
	status := "success"
	if err != nil {
		status = "failure"
	}

	logFields := cloneFields(fields)
	logFields["event_type"] = string(op)
	logFields["status"] = status
	logFields["duration_ms"] = elapsed.Milliseconds()

	tags := map[string]string{"operation": string(op), "status": status}
	s.recordCounter(ctx, "buscarlead."+string(op)+".total", 1, tags)
	s.recordHistogram(ctx, "buscarlead."+string(op)+".duration_ms", float64(elapsed.Milliseconds()), tags)
	for _, key := range leadVolumeFields {
		if n, ok := fields[key].(int); ok && n > 0 {
			s.recordCounter(ctx, "buscarlead.leads."+key, int64(n), map[string]string{"operation": string(op)})
		}
	}

	if err == nil {
		s.log(ctx, levelInfo, string(op)+" succeeded", logFields)
		return
	}
	logFields["error"] = err.Error()
	level := levelError
	if mapped := serviceErrorMapper(err); mapped != nil {
		logFields["error_code"] = mapped.TextCode
		if mapped.Category == goerrors.CategoryValidation || mapped.Category == goerrors.CategoryBadInput {
			level = levelWarn
		}
	}
	s.log(ctx, level, string(op)+" failed", logFields)
}

func (s *Service) logWarn(ctx context.Context, message string, fields map[string]any) {
	s.log(ctx, levelWarn, message, fields)
}

func (s *Service) logError(ctx context.Context, message string, fields map[string]any) {
	s.log(ctx, levelError, message, fields)
}

func (s *Service) log(ctx context.Context, level logLevel, message string, fields map[string]any) {
	if s == nil || s.logger == nil {
		return
	}
	logger := s.logger
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	if fieldsLogger, ok := logger.(FieldsLogger); ok {
		logger = fieldsLogger.WithFields(cloneFields(fields))
	}
	write := logger.Info
	switch level {
	case levelWarn:
		write = logger.Warn
	case levelError:
		write = logger.Error
	}
	write(message, flattenFields(fields)...)
}

func (s *Service) recordCounter(ctx context.Context, name string, value int64, tags map[string]string) {
	if s == nil || s.metricsRecorder == nil {
		return
	}
	s.metricsRecorder.IncCounter(ctx, strings.TrimSpace(name), value, tags)
}

func (s *Service) recordHistogram(ctx context.Context, name string, value float64, tags map[string]string) {
	if s == nil || s.metricsRecorder == nil {
		return
	}
	s.metricsRecorder.ObserveHistogram(ctx, strings.TrimSpace(name), value, tags)
}

func cloneFields(fields map[string]any) map[string]any {
	copied := make(map[string]any, len(fields)+4)
	for key, value := range fields {
		copied[key] = value
	}
	return copied
}

// flattenFields turns fields into sorted key/value args.
func flattenFields(fields map[string]any) []any {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	args := make([]any, 0, len(keys)*2)
	for _, key := range keys {
		args = append(args, key, fields[key])
	}
	return args
}
