package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-config/cfgx"
	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
	opts "github.com/goliatone/go-options"
)

type ErrorFactory func(message string, category ...goerrors.Category) *goerrors.Error

type ErrorMapper func(err error) *goerrors.Error

type ConfigProvider interface {
	Load(ctx context.Context, defaults Config) (Config, error)
}

type RawConfigLoader interface {
	LoadRaw(ctx context.Context) (map[string]any, error)
}

type OptionsResolver interface {
	Resolve(defaults Config, loaded Config, runtime Config) (Config, error)
}

type serviceBuilder struct {
	runtimeConfig       Config
	logger              Logger
	explicitLogger      bool
	loggerProvider      LoggerProvider
	metricsRecorder     MetricsRecorder
	errorFactory        ErrorFactory
	errorMapper         ErrorMapper
	persistenceClient   any
	repositoryFactory   any
	configProvider      ConfigProvider
	optionsResolver     OptionsResolver
	searchStore         SearchStore
	leadStore           LeadStore
	trigger             ScrapeTrigger
	callbackURLResolver CallbackURLResolver
}

type Option func(*serviceBuilder)

func WithLogger(logger Logger) Option {
	return func(b *serviceBuilder) {
		b.logger = logger
		b.explicitLogger = logger != nil
	}
}

func WithLoggerProvider(provider LoggerProvider) Option {
	return func(b *serviceBuilder) {
		b.loggerProvider = provider
	}
}

func WithMetricsRecorder(recorder MetricsRecorder) Option {
	return func(b *serviceBuilder) {
		b.metricsRecorder = recorder
	}
}

func WithErrorFactory(factory ErrorFactory) Option {
	return func(b *serviceBuilder) {
		b.errorFactory = factory
	}
}

func WithErrorMapper(mapper ErrorMapper) Option {
	return func(b *serviceBuilder) {
		b.errorMapper = mapper
	}
}

func WithPersistenceClient(client any) Option {
	return func(b *serviceBuilder) {
		b.persistenceClient = client
	}
}

func WithRepositoryFactory(factory any) Option {
	return func(b *serviceBuilder) {
		b.repositoryFactory = factory
	}
}

func WithConfigProvider(provider ConfigProvider) Option {
	return func(b *serviceBuilder) {
		b.configProvider = provider
	}
}

func WithOptionsResolver(resolver OptionsResolver) Option {
	return func(b *serviceBuilder) {
		b.optionsResolver = resolver
	}
}

func WithSearchStore(store SearchStore) Option {
	return func(b *serviceBuilder) {
		b.searchStore = store
	}
}

func WithLeadStore(store LeadStore) Option {
	return func(b *serviceBuilder) {
		b.leadStore = store
	}
}

func WithScrapeTrigger(trigger ScrapeTrigger) Option {
	return func(b *serviceBuilder) {
		b.trigger = trigger
	}
}

func WithCallbackURLResolver(resolver CallbackURLResolver) Option {
	return func(b *serviceBuilder) {
		b.callbackURLResolver = resolver
	}
}

func defaultServiceBuilder(runtime Config) serviceBuilder {
	loggerProvider, logger := glog.Resolve("buscarlead", nil, nil)
	return serviceBuilder{
		runtimeConfig:   runtime,
		loggerProvider:  loggerProvider,
		logger:          logger,
		metricsRecorder: NopMetricsRecorder{},
		errorFactory:    goerrors.New,
		errorMapper:     defaultErrorMapper,
		configProvider:  NewCfgxConfigProvider(nil),
		optionsResolver: GoOptionsResolver{},
	}
}

func defaultErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}
	return serviceErrorMapper(err)
}

type StaticRawConfigLoader struct {
	Values map[string]any
}

func (l StaticRawConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	if len(l.Values) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(l.Values))
	for key, value := range l.Values {
		out[key] = value
	}
	return out, nil
}

type CfgxConfigProvider struct {
	Loader RawConfigLoader
}

func NewCfgxConfigProvider(loader RawConfigLoader) *CfgxConfigProvider {
	return &CfgxConfigProvider{Loader: loader}
}

func (p *CfgxConfigProvider) Load(ctx context.Context, defaults Config) (Config, error) {
	if p == nil {
		return defaults, nil
	}
	loader := p.Loader
	if loader == nil {
		loader = StaticRawConfigLoader{}
	}
	raw, err := loader.LoadRaw(ctx)
	if err != nil {
		return Config{}, err
	}
	return buildConfig(raw, defaults)
}

func buildConfig(raw map[string]any, defaults Config) (Config, error) {
	return cfgx.Build[Config](raw,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
}

// GoOptionsResolver merges defaults, loaded config, and runtime overrides
// with go-options. Higher priority layers win key by key.
type GoOptionsResolver struct{}

func (GoOptionsResolver) Resolve(defaults Config, loaded Config, runtime Config) (Config, error) {
	base := configToLayerMap(defaults)
	stack, err := opts.NewStack(
		opts.NewLayer(opts.NewScope("defaults", 0), base, opts.WithSnapshotID[map[string]any]("defaults")),
		opts.NewLayer(opts.NewScope("config", 10), layerOverrides(loaded, base), opts.WithSnapshotID[map[string]any]("config")),
		opts.NewLayer(opts.NewScope("runtime", 20), layerOverrides(runtime, base), opts.WithSnapshotID[map[string]any]("runtime")),
	)
	if err != nil {
		return Config{}, fmt.Errorf("core: options stack build failed: %w", err)
	}
	merged, err := stack.Merge()
	if err != nil {
		return Config{}, fmt.Errorf("core: options merge failed: %w", err)
	}
	return buildConfig(merged.Value, defaults)
}

// layerOverrides keeps the values of cfg that are set and differ from base.
// A runtime Config built from DefaultConfig() therefore never masks a value
// loaded from the environment.
func layerOverrides(cfg Config, base map[string]any) map[string]any {
	return diffLayer(configToLayerMap(cfg), base)
}

func diffLayer(values map[string]any, base map[string]any) map[string]any {
	out := map[string]any{}
	for key, value := range values {
		if nested, ok := value.(map[string]any); ok {
			baseNested, _ := base[key].(map[string]any)
			if section := diffLayer(nested, baseNested); len(section) > 0 {
				out[key] = section
			}
			continue
		}
		if isUnset(value) || value == base[key] {
			continue
		}
		out[key] = value
	}
	return out
}

func isUnset(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case int:
		return v == 0
	case string:
		return strings.TrimSpace(v) == ""
	default:
		return false
	}
}

func configToLayerMap(cfg Config) map[string]any {
	return map[string]any{
		"service_name": cfg.ServiceName,
		"ingest": map[string]any{
			"max_records": cfg.Ingest.MaxRecords,
		},
		"maintenance": map[string]any{
			"delete_batch_size":       cfg.Maintenance.DeleteBatchSize,
			"dedupe_interval_seconds": cfg.Maintenance.DedupeIntervalSeconds,
		},
		"trigger": map[string]any{
			"url":               cfg.Trigger.URL,
			"timeout_ms":        cfg.Trigger.TimeoutMS,
			"callback_path":     cfg.Trigger.CallbackPath,
			"public_base_url":   cfg.Trigger.PublicBaseURL,
			"localhost_rewrite": cfg.Trigger.LocalhostRewrite,
		},
		"listing": map[string]any{
			"leads_limit":     cfg.Listing.LeadsLimit,
			"searches_limit":  cfg.Listing.SearchesLimit,
			"recent_searches": cfg.Listing.RecentSearches,
		},
		"cache": map[string]any{
			"search_ttl_seconds": cfg.Cache.SearchTTLSeconds,
		},
	}
}
