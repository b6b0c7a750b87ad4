package core

import (
	"context"
	"errors"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

var (
	ErrSearchNotFound = errors.New("core: search not found")
	ErrLeadNotFound   = errors.New("core: lead not found")
)

type SearchStore interface {
	Create(ctx context.Context, in CreateSearchInput) (Search, error)
	// Get returns ErrSearchNotFound (possibly wrapped) for unknown ids.
	Get(ctx context.Context, id string) (Search, error)
	ListByOwner(ctx context.Context, ownerID string, limit int) ([]Search, error)
	CountByOwner(ctx context.Context, ownerID string) (int, error)
	ListIDs(ctx context.Context) ([]string, error)
	SetStatus(ctx context.Context, id string, status SearchStatus) error
	SetCounters(ctx context.Context, id string, leadsCount int) error
	DeleteAll(ctx context.Context) (int, error)
}

type LeadStore interface {
	// InsertBatch ignores rows conflicting on (search_id, phone) and reports
	// how many rows were actually written.
	InsertBatch(ctx context.Context, drafts []LeadDraft) (int, error)
	ExistingPhones(ctx context.Context, searchID string, phones []string) (map[string]struct{}, error)
	CountBySearch(ctx context.Context, searchID string) (int, error)
	CountByOwner(ctx context.Context, ownerID string) (int, error)
	ListKeys(ctx context.Context) ([]LeadKey, error)
	ListBySearch(ctx context.Context, searchID string) ([]Lead, error)
	ListByOwner(ctx context.Context, filter LeadListFilter) ([]Lead, error)
	UpdateStatus(ctx context.Context, leadID string, ownerID string, status LeadStatus) (bool, error)
	DeleteBySearch(ctx context.Context, searchID string) (int, error)
	DeleteByIDs(ctx context.Context, ids []string) (int, error)
	DeleteAll(ctx context.Context) (int, error)
}

type StoreProvider interface {
	SearchStore() SearchStore
	LeadStore() LeadStore
}

type RepositoryStoreFactory interface {
	BuildStores(persistenceClient any) (StoreProvider, error)
}

// ScrapeTrigger starts the external scraping workflow for one search.
type ScrapeTrigger interface {
	Trigger(ctx context.Context, req TriggerRequest) error
}

type CallbackURLResolveFlow string

const (
	CallbackURLResolveFlowCreate CallbackURLResolveFlow = "create"
	CallbackURLResolveFlowRepeat CallbackURLResolveFlow = "repeat"
)

type CallbackURLResolveRequest struct {
	SearchID       string
	Flow           CallbackURLResolveFlow
	RequestBaseURL string
}

type CallbackURLResolver interface {
	ResolveCallbackURL(ctx context.Context, req CallbackURLResolveRequest) (string, error)
}

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

// JobExecutionMessage names a background job by the command type that runs
// it. Messages sharing a correlation id collapse while one is pending.
type JobExecutionMessage struct {
	JobID         string
	Parameters    map[string]any
	CorrelationID string
}

type JobReceipt struct {
	DispatchID string
	EnqueuedAt time.Time
}

type JobEnqueuer interface {
	Enqueue(ctx context.Context, msg *JobExecutionMessage) (JobReceipt, error)
}

type JobWorkerHook interface {
	OnStart(ctx context.Context, event JobWorkerEvent)
	OnSuccess(ctx context.Context, event JobWorkerEvent)
	OnFailure(ctx context.Context, event JobWorkerEvent)
	OnRetry(ctx context.Context, event JobWorkerEvent)
}

type JobWorkerEvent struct {
	Message   *JobExecutionMessage
	Attempt   int
	Delay     time.Duration
	Err       error
	StartedAt time.Time
	Duration  time.Duration
}
