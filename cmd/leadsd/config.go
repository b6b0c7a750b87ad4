package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/XandyNerd/BuscarLead/core"
	"github.com/XandyNerd/BuscarLead/identity"
	"github.com/XandyNerd/BuscarLead/webhooks"
	"github.com/goliatone/go-config/config"
	glog "github.com/goliatone/go-logger/glog"
)

const (
	envPrefix    = "BUSCARLEAD_"
	envDelimiter = "__"
)

// legacyEnvAliases maps the unprefixed variables older deployments set onto
// config paths. Prefixed variables take precedence over them.
var legacyEnvAliases = map[string]string{
	"WEBHOOK_SECRET":  "webhook.secret",
	"N8N_WEBHOOK_URL": "trigger.url",
	"DATABASE_URL":    "database.dsn",
}

// settings is the full process configuration. Both halves decode from the
// same flat key space, so BUSCARLEAD_INGEST__MAX_RECORDS and
// BUSCARLEAD_QUEUE__CAPACITY sit side by side.
type settings struct {
	Service core.Config  `koanf:",squash" mapstructure:",squash"`
	Daemon  daemonConfig `koanf:",squash" mapstructure:",squash"`
}

func defaultSettings() *settings {
	return &settings{Service: core.DefaultConfig(), Daemon: defaultDaemonConfig()}
}

func (s *settings) Validate() error {
	if err := s.Service.Validate(); err != nil {
		return err
	}
	return s.Daemon.Validate()
}

// loadSettings reads settings from the environment. Nested keys are joined
// with a double underscore: BUSCARLEAD_TRIGGER__CALLBACK_PATH sets
// trigger.callback_path.
func loadSettings(ctx context.Context) (*settings, error) {
	container := config.New(defaultSettings()).
		WithProvider(
			config.DefaultValuesProvider[*settings](legacyEnv(os.LookupEnv)),
			config.EnvProvider[*settings](envPrefix, envDelimiter),
		)
	if err := container.Load(ctx); err != nil {
		return nil, fmt.Errorf("leadsd: config: %w", err)
	}
	return container.Raw(), nil
}

func legacyEnv(lookup func(string) (string, bool)) map[string]any {
	values := map[string]any{}
	for name, path := range legacyEnvAliases {
		value, ok := lookup(name)
		if !ok || strings.TrimSpace(value) == "" {
			continue
		}
		values[path] = value
	}
	return values
}

type httpConfig struct {
	Addr         string `koanf:"addr" mapstructure:"addr"`
	MaxBodyBytes int64  `koanf:"max_body_bytes" mapstructure:"max_body_bytes"`
	AccessLog    bool   `koanf:"access_log" mapstructure:"access_log"`
}

type databaseConfig struct {
	Driver string `koanf:"driver" mapstructure:"driver"`
	DSN    string `koanf:"dsn" mapstructure:"dsn"`
	Debug  bool   `koanf:"debug" mapstructure:"debug"`
}

type webhookConfig struct {
	Secret string `koanf:"secret" mapstructure:"secret"`
	Header string `koanf:"header" mapstructure:"header"`
}

type identityConfig struct {
	Header string `koanf:"header" mapstructure:"header"`
}

type queueConfig struct {
	Capacity    int `koanf:"capacity" mapstructure:"capacity"`
	MaxAttempts int `koanf:"max_attempts" mapstructure:"max_attempts"`
}

type logConfig struct {
	Level  string `koanf:"level" mapstructure:"level"`
	Format string `koanf:"format" mapstructure:"format"`
}

// daemonConfig holds the process settings that sit outside core.Config.
type daemonConfig struct {
	HTTP     httpConfig     `koanf:"http" mapstructure:"http"`
	Database databaseConfig `koanf:"database" mapstructure:"database"`
	Webhook  webhookConfig  `koanf:"webhook" mapstructure:"webhook"`
	Identity identityConfig `koanf:"identity" mapstructure:"identity"`
	Queue    queueConfig    `koanf:"queue" mapstructure:"queue"`
	Log      logConfig      `koanf:"log" mapstructure:"log"`
}

func defaultDaemonConfig() daemonConfig {
	return daemonConfig{
		HTTP: httpConfig{
			Addr:         ":3000",
			MaxBodyBytes: 5 << 20,
			AccessLog:    true,
		},
		Database: databaseConfig{
			Driver: driverSQLite,
			DSN:    "file:buscarlead.db?cache=shared&_foreign_keys=on",
		},
		Webhook: webhookConfig{
			Header: webhooks.DefaultSecretHeader,
		},
		Identity: identityConfig{
			Header: identity.DefaultOwnerHeader,
		},
		Queue: queueConfig{
			Capacity:    64,
			MaxAttempts: 5,
		},
		Log: logConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

func (c *daemonConfig) Validate() error {
	if strings.TrimSpace(c.HTTP.Addr) == "" {
		return fmt.Errorf("leadsd: http.addr is required")
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		return fmt.Errorf("leadsd: http.max_body_bytes must be > 0")
	}
	switch c.Database.Driver {
	case driverSQLite, driverPostgres:
	default:
		return fmt.Errorf("leadsd: database.driver must be %q or %q", driverSQLite, driverPostgres)
	}
	if strings.TrimSpace(c.Database.DSN) == "" {
		return fmt.Errorf("leadsd: database.dsn is required")
	}
	if strings.TrimSpace(c.Webhook.Header) == "" {
		return fmt.Errorf("leadsd: webhook.header is required")
	}
	if strings.TrimSpace(c.Identity.Header) == "" {
		return fmt.Errorf("leadsd: identity.header is required")
	}
	if c.Queue.Capacity <= 0 || c.Queue.MaxAttempts <= 0 {
		return fmt.Errorf("leadsd: queue.capacity and queue.max_attempts must be > 0")
	}
	switch strings.ToLower(c.Log.Level) {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("leadsd: log.level %q is not supported", c.Log.Level)
	}
	switch c.Log.Format {
	case glog.LoggerTypeJSON, glog.LoggerTypeConsole, glog.LoggerTypePretty:
	default:
		return fmt.Errorf("leadsd: log.format must be json, console or pretty")
	}
	return nil
}

const (
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
)
