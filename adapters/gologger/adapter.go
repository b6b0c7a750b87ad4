package gologger

import (
	job "github.com/goliatone/go-job"
	glog "github.com/goliatone/go-logger/glog"
)

const (
	// ServiceLoggerName names the logger used by request handling.
	ServiceLoggerName = "buscarlead"
	// WorkerLoggerName names the logger used by the maintenance worker.
	WorkerLoggerName = "buscarlead.maintenance"
)

// Resolve uses deterministic precedence provider > logger > nop.
func Resolve(name string, provider glog.LoggerProvider, logger glog.Logger) (glog.LoggerProvider, glog.Logger) {
	if name == "" {
		name = ServiceLoggerName
	}
	return glog.Resolve(name, provider, logger)
}

func ToJobProvider(provider glog.LoggerProvider) job.LoggerProvider {
	if provider == nil {
		return nil
	}
	return job.GoLoggerProvider(provider)
}

func ToJobLogger(logger glog.Logger) job.Logger {
	if logger == nil {
		return nil
	}
	return job.GoLogger(logger)
}

// ResolveForJob resolves the glog pair and returns the matching go-job bridges.
func ResolveForJob(
	name string,
	provider glog.LoggerProvider,
	logger glog.Logger,
) (glog.LoggerProvider, glog.Logger, job.LoggerProvider, job.Logger) {
	resolvedProvider, resolvedLogger := Resolve(name, provider, logger)
	return resolvedProvider, resolvedLogger, ToJobProvider(resolvedProvider), ToJobLogger(resolvedLogger)
}

// ResolveWorker returns the maintenance worker logger, derived from the
// service provider when one is configured.
func ResolveWorker(provider glog.LoggerProvider, logger glog.Logger) glog.Logger {
	if provider != nil {
		return glog.Ensure(provider.GetLogger(WorkerLoggerName))
	}
	_, resolved := Resolve(WorkerLoggerName, nil, logger)
	return resolved
}
