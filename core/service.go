package core

import (
	"context"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
)

type Service struct {
	config              Config
	logger              Logger
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

type ServiceDependencies struct {
	Logger              Logger
	LoggerProvider      LoggerProvider
	MetricsRecorder     MetricsRecorder
	ErrorFactory        ErrorFactory
	ErrorMapper         ErrorMapper
	PersistenceClient   any
	RepositoryFactory   any
	ConfigProvider      ConfigProvider
	OptionsResolver     OptionsResolver
	SearchStore         SearchStore
	LeadStore           LeadStore
	ScrapeTrigger       ScrapeTrigger
	CallbackURLResolver CallbackURLResolver
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	builder := defaultServiceBuilder(cfg)
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve("buscarlead", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if builder.explicitLogger {
		logger = builder.logger
	}
	if provider != nil && !builder.explicitLogger {
		if named := provider.GetLogger("buscarlead"); named != nil {
			logger = glog.Ensure(named)
		}
	}

	if builder.errorFactory == nil {
		builder.errorFactory = goerrors.New
	}
	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.errorMapper == nil {
		builder.errorMapper = defaultErrorMapper
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	if (builder.searchStore == nil || builder.leadStore == nil) && builder.repositoryFactory != nil {
		var stores StoreProvider
		if storeFactory, ok := builder.repositoryFactory.(RepositoryStoreFactory); ok {
			built, buildErr := storeFactory.BuildStores(builder.persistenceClient)
			if buildErr != nil {
				return nil, mapBuildError(builder.errorMapper, buildErr)
			}
			stores = built
		} else if provided, ok := builder.repositoryFactory.(StoreProvider); ok {
			stores = provided
		}
		if stores != nil {
			if builder.searchStore == nil {
				builder.searchStore = stores.SearchStore()
			}
			if builder.leadStore == nil {
				builder.leadStore = stores.LeadStore()
			}
		}
	}
	if builder.callbackURLResolver == nil {
		builder.callbackURLResolver = NewConfigCallbackURLResolver(finalConfig.Trigger)
	}

	return &Service{
		config:              finalConfig,
		logger:              logger,
		loggerProvider:      provider,
		metricsRecorder:     builder.metricsRecorder,
		errorFactory:        builder.errorFactory,
		errorMapper:         builder.errorMapper,
		persistenceClient:   builder.persistenceClient,
		repositoryFactory:   builder.repositoryFactory,
		configProvider:      builder.configProvider,
		optionsResolver:     builder.optionsResolver,
		searchStore:         builder.searchStore,
		leadStore:           builder.leadStore,
		trigger:             builder.trigger,
		callbackURLResolver: builder.callbackURLResolver,
	}, nil
}

func Setup(cfg Config, opts ...Option) (*Service, error) {
	return NewService(cfg, opts...)
}

func mapBuildError(mapper ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	if mapper == nil {
		return err
	}
	mapped := mapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

func (s *Service) Config() Config {
	if s == nil {
		return Config{}
	}
	return s.config
}

func (s *Service) Dependencies() ServiceDependencies {
	if s == nil {
		return ServiceDependencies{}
	}
	return ServiceDependencies{
		Logger:              s.logger,
		LoggerProvider:      s.loggerProvider,
		MetricsRecorder:     s.metricsRecorder,
		ErrorFactory:        s.errorFactory,
		ErrorMapper:         s.errorMapper,
		PersistenceClient:   s.persistenceClient,
		RepositoryFactory:   s.repositoryFactory,
		ConfigProvider:      s.configProvider,
		OptionsResolver:     s.optionsResolver,
		SearchStore:         s.searchStore,
		LeadStore:           s.leadStore,
		ScrapeTrigger:       s.trigger,
		CallbackURLResolver: s.callbackURLResolver,
	}
}

func (s *Service) mapError(err error) error {
	if err == nil {
		return nil
	}
	if s == nil || s.errorMapper == nil {
		return err
	}
	mapped := s.errorMapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

func (s *Service) requireStores() error {
	if s == nil {
		return fmt.Errorf("core: service is nil")
	}
	if s.searchStore == nil {
		return goerrors.New("core: search store is required", goerrors.CategoryInternal).
			WithTextCode(ServiceErrorInternal)
	}
	if s.leadStore == nil {
		return goerrors.New("core: lead store is required", goerrors.CategoryInternal).
			WithTextCode(ServiceErrorInternal)
	}
	return nil
}
