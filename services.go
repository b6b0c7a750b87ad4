package buscarlead

import "github.com/XandyNerd/BuscarLead/core"

type Config = core.Config

type Option = core.Option

type Service = core.Service

type ServiceDependencies = core.ServiceDependencies

type Search = core.Search
type SearchStatus = core.SearchStatus
type Lead = core.Lead
type LeadStatus = core.LeadStatus
type RawRecord = core.RawRecord
type SearchStore = core.SearchStore
type LeadStore = core.LeadStore
type ScrapeTrigger = core.ScrapeTrigger
type CallbackURLResolver = core.CallbackURLResolver

type CreateSearchRequest = core.CreateSearchRequest

type RepeatSearchRequest = core.RepeatSearchRequest

type IngestRequest = core.IngestRequest

type SetLeadStatusRequest = core.SetLeadStatusRequest

var (
	WithLogger              = core.WithLogger
	WithLoggerProvider      = core.WithLoggerProvider
	WithMetricsRecorder     = core.WithMetricsRecorder
	WithErrorFactory        = core.WithErrorFactory
	WithErrorMapper         = core.WithErrorMapper
	WithPersistenceClient   = core.WithPersistenceClient
	WithRepositoryFactory   = core.WithRepositoryFactory
	WithConfigProvider      = core.WithConfigProvider
	WithOptionsResolver     = core.WithOptionsResolver
	WithSearchStore         = core.WithSearchStore
	WithLeadStore           = core.WithLeadStore
	WithScrapeTrigger       = core.WithScrapeTrigger
	WithCallbackURLResolver = core.WithCallbackURLResolver
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	return core.NewService(cfg, opts...)
}

func Setup(cfg Config, opts ...Option) (*Service, error) {
	return core.Setup(cfg, opts...)
}
