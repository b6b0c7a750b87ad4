package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	buscarlead "github.com/XandyNerd/BuscarLead"
	"github.com/XandyNerd/BuscarLead/adapters/gocommand"
	"github.com/XandyNerd/BuscarLead/adapters/gojob"
	"github.com/XandyNerd/BuscarLead/adapters/gologger"
	leadcommand "github.com/XandyNerd/BuscarLead/command"
	"github.com/XandyNerd/BuscarLead/core"
	"github.com/XandyNerd/BuscarLead/httpapi"
	"github.com/XandyNerd/BuscarLead/identity"
	sqlstore "github.com/XandyNerd/BuscarLead/store/sql"
	"github.com/XandyNerd/BuscarLead/transport"
	"github.com/XandyNerd/BuscarLead/webhooks"
	"github.com/goliatone/go-command"
	jobqueuecommand "github.com/goliatone/go-job/queue/command"
	"github.com/goliatone/go-job/queue/worker"
	glog "github.com/goliatone/go-logger/glog"
	persistence "github.com/goliatone/go-persistence-bun"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
)

const (
	scheduledDedupeKey = "scheduled-dedupe"
	maxRetryDelay      = 5 * time.Minute
)

var maintenanceJobIDs = []string{core.JobIDDeduplicateLeads, core.JobIDResetAll}

type app struct {
	cfg           core.Config
	daemon        daemonConfig
	logger        glog.Logger
	provider      glog.LoggerProvider
	client        *persistence.Client
	service       *buscarlead.Service
	facade        *buscarlead.Facade
	queue         *gojob.MemoryQueue
	queueRegistry *jobqueuecommand.Registry
	registration  *gocommand.Registration
	server        *httpapi.Server
}

func buildApp(ctx context.Context, s *settings, provider glog.LoggerProvider) (*app, error) {
	if s == nil {
		return nil, fmt.Errorf("leadsd: settings are required")
	}
	if provider == nil {
		provider = newLogger(nil, s.Daemon.Log)
	}
	provider, logger := gologger.Resolve(gologger.ServiceLoggerName, provider, nil)

	a := &app{cfg: s.Service, daemon: s.Daemon, logger: logger, provider: provider}
	var err error
	if a.client, err = openPersistence(ctx, a.daemon.Database); err != nil {
		return nil, err
	}
	if err := a.wire(); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func (a *app) wire() error {
	var factoryOpts []sqlstore.FactoryOption
	if a.cfg.Cache.SearchTTLSeconds > 0 {
		cacheConfig := repositorycache.DefaultConfig()
		cacheConfig.TTL = a.cfg.SearchCacheTTL()
		cacheService, err := repositorycache.NewCacheService(cacheConfig)
		if err != nil {
			return fmt.Errorf("leadsd: search cache: %w", err)
		}
		factoryOpts = append(factoryOpts, sqlstore.WithSearchCache(cacheService))
	}
	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(a.client, factoryOpts...)
	if err != nil {
		return err
	}

	opts := []buscarlead.Option{
		buscarlead.WithLoggerProvider(a.provider),
		buscarlead.WithSearchStore(factory.SearchStore()),
		buscarlead.WithLeadStore(factory.LeadStore()),
	}
	if a.cfg.Trigger.URL != "" {
		adapter := transport.NewRESTAdapter(&http.Client{Timeout: a.cfg.TriggerTimeout()})
		opts = append(opts, buscarlead.WithScrapeTrigger(transport.NewWebhookTrigger(a.cfg.Trigger.URL, adapter)))
	} else {
		a.logger.Warn("scrape trigger url is not set; new searches stay in processing")
	}
	if a.service, err = buscarlead.NewService(a.cfg, opts...); err != nil {
		return err
	}

	a.queue = gojob.NewMemoryQueue(a.daemon.Queue.Capacity)
	a.queueRegistry = jobqueuecommand.NewRegistry()
	a.facade, err = buscarlead.NewFacade(a.service, buscarlead.WithMaintenanceQueue(gojob.NewEnqueuerAdapter(a.queue, a.queueRegistry)))
	if err != nil {
		return err
	}

	registry := gocommand.NewRegistryAdapter(command.NewRegistry())
	if err := registry.AddQueueResolver(gocommand.QueueResolverKey, a.queueRegistry, maintenanceJobIDs...); err != nil {
		return err
	}
	if a.registration, err = gocommand.RegisterFacade(registry, a.facade); err != nil {
		return err
	}
	if err := registry.Initialize(); err != nil {
		return err
	}

	if a.daemon.Webhook.Secret == "" {
		a.logger.Warn("webhook secret is not set; webhook and admin requests will be rejected")
	}
	a.server, err = httpapi.NewServer(
		a.facade,
		identity.NewHeaderResolver(a.daemon.Identity.Header),
		webhooks.NewSharedSecretVerifier(a.daemon.Webhook.Header, a.daemon.Webhook.Secret),
		httpapi.Config{MaxBodyBytes: a.daemon.HTTP.MaxBodyBytes, AccessLog: a.daemon.HTTP.AccessLog},
		httpapi.WithLogger(a.logger),
	)
	return err
}

func (a *app) retryPolicy() gojob.RetryPolicy {
	return gojob.RetryPolicy{
		MaxAttempts: a.daemon.Queue.MaxAttempts,
		MaxDelay:    maxRetryDelay,
	}
}

// startWorker starts a go-job worker draining the maintenance queue with
// the commands mirrored into the queue registry.
func (a *app) startWorker(ctx context.Context) (*worker.Worker, error) {
	logger := gologger.ResolveWorker(a.provider, nil)
	return jobqueuecommand.StartLocalWorker(ctx, a.queue, a.queueRegistry, jobqueuecommand.LocalWorkerConfig{
		IDs: maintenanceJobIDs,
		WorkerOptions: []worker.Option{
			worker.WithConcurrency(1),
			worker.WithRetryPolicy(a.retryPolicy()),
			worker.WithHooks(gojob.NewWorkerHookAdapter(gojob.NewLoggingHook(logger))),
			worker.WithLogger(gologger.ToJobLogger(logger)),
		},
	})
}

// runWorker runs the maintenance worker until ctx is done, then waits for
// the job in flight to settle.
func (a *app) runWorker(ctx context.Context) error {
	w, err := a.startWorker(ctx)
	if err != nil {
		return err
	}
	<-ctx.Done()
	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return w.Stop(stopCtx)
}

// runScheduler enqueues a dedupe job on every tick. A tick is dropped while
// the previous scheduled job is still pending.
func (a *app) runScheduler(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := a.scheduleDedupe(ctx); err != nil {
				a.logger.Error("schedule dedupe failed", "error", err.Error())
			}
		}
	}
}

func (a *app) scheduleDedupe(ctx context.Context) error {
	return gocommand.Dispatch(ctx, leadcommand.ScheduleMaintenanceMessage{
		JobID:         core.JobIDDeduplicateLeads,
		CorrelationID: scheduledDedupeKey,
	})
}

func (a *app) close() {
	if a == nil {
		return
	}
	if a.registration != nil {
		a.registration.Unsubscribe()
	}
	if a.client != nil {
		if err := a.client.Close(); err != nil {
			a.logger.Warn("close database failed", "error", err.Error())
		}
	}
}
