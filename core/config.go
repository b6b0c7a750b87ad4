package core

import (
	"fmt"
	"strings"
	"time"
)

const (
	DefaultMaxIngestRecords      = 5000
	DefaultDeleteBatchSize       = 100
	DefaultTriggerTimeoutMS      = 10000
	DefaultCallbackPath          = "/webhooks/ingest"
	DefaultLocalhostRewrite      = "host.docker.internal"
	DefaultLeadsListLimit        = 100
	DefaultSearchesListLimit     = 20
	DefaultRecentSearchesLimit   = 5
	DefaultSearchCacheTTLSeconds = 60
)

type IngestConfig struct {
	MaxRecords int `koanf:"max_records" mapstructure:"max_records"`
}

type MaintenanceConfig struct {
	DeleteBatchSize       int `koanf:"delete_batch_size" mapstructure:"delete_batch_size"`
	DedupeIntervalSeconds int `koanf:"dedupe_interval_seconds" mapstructure:"dedupe_interval_seconds"`
}

type TriggerConfig struct {
	URL              string `koanf:"url" mapstructure:"url"`
	TimeoutMS        int    `koanf:"timeout_ms" mapstructure:"timeout_ms"`
	CallbackPath     string `koanf:"callback_path" mapstructure:"callback_path"`
	PublicBaseURL    string `koanf:"public_base_url" mapstructure:"public_base_url"`
	LocalhostRewrite string `koanf:"localhost_rewrite" mapstructure:"localhost_rewrite"`
}

type ListingConfig struct {
	LeadsLimit     int `koanf:"leads_limit" mapstructure:"leads_limit"`
	SearchesLimit  int `koanf:"searches_limit" mapstructure:"searches_limit"`
	RecentSearches int `koanf:"recent_searches" mapstructure:"recent_searches"`
}

type CacheConfig struct {
	SearchTTLSeconds int `koanf:"search_ttl_seconds" mapstructure:"search_ttl_seconds"`
}

type Config struct {
	ServiceName string            `koanf:"service_name" mapstructure:"service_name"`
	Ingest      IngestConfig      `koanf:"ingest" mapstructure:"ingest"`
	Maintenance MaintenanceConfig `koanf:"maintenance" mapstructure:"maintenance"`
	Trigger     TriggerConfig     `koanf:"trigger" mapstructure:"trigger"`
	Listing     ListingConfig     `koanf:"listing" mapstructure:"listing"`
	Cache       CacheConfig       `koanf:"cache" mapstructure:"cache"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: "buscarlead",
		Ingest: IngestConfig{
			MaxRecords: DefaultMaxIngestRecords,
		},
		Maintenance: MaintenanceConfig{
			DeleteBatchSize: DefaultDeleteBatchSize,
		},
		Trigger: TriggerConfig{
			TimeoutMS:        DefaultTriggerTimeoutMS,
			CallbackPath:     DefaultCallbackPath,
			LocalhostRewrite: DefaultLocalhostRewrite,
		},
		Listing: ListingConfig{
			LeadsLimit:     DefaultLeadsListLimit,
			SearchesLimit:  DefaultSearchesListLimit,
			RecentSearches: DefaultRecentSearchesLimit,
		},
		Cache: CacheConfig{
			SearchTTLSeconds: DefaultSearchCacheTTLSeconds,
		},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if c.Ingest.MaxRecords <= 0 {
		return fmt.Errorf("core: ingest.max_records must be > 0")
	}
	if c.Maintenance.DeleteBatchSize <= 0 {
		return fmt.Errorf("core: maintenance.delete_batch_size must be > 0")
	}
	if c.Maintenance.DedupeIntervalSeconds < 0 {
		return fmt.Errorf("core: maintenance.dedupe_interval_seconds must be >= 0")
	}
	if c.Trigger.TimeoutMS <= 0 {
		return fmt.Errorf("core: trigger.timeout_ms must be > 0")
	}
	if !strings.HasPrefix(strings.TrimSpace(c.Trigger.CallbackPath), "/") {
		return fmt.Errorf("core: trigger.callback_path must start with /")
	}
	if c.Listing.LeadsLimit <= 0 || c.Listing.SearchesLimit <= 0 || c.Listing.RecentSearches <= 0 {
		return fmt.Errorf("core: listing limits must be > 0")
	}
	if c.Cache.SearchTTLSeconds < 0 {
		return fmt.Errorf("core: cache.search_ttl_seconds must be >= 0")
	}
	return nil
}

func (c Config) TriggerTimeout() time.Duration {
	return time.Duration(c.Trigger.TimeoutMS) * time.Millisecond
}

func (c Config) DedupeInterval() time.Duration {
	return time.Duration(c.Maintenance.DedupeIntervalSeconds) * time.Second
}

func (c Config) SearchCacheTTL() time.Duration {
	return time.Duration(c.Cache.SearchTTLSeconds) * time.Second
}
