package config

import (
	"fmt"

	"github.com/kbukum/remotekit/httpclient"
	"github.com/kbukum/remotekit/logger"
	"github.com/kbukum/remotekit/observability"
	"github.com/kbukum/remotekit/validation"
)

// ServiceName names the config and env files LoadConfig searches for.
const ServiceName = "remotekit"

// AppConfig is the complete remotekit configuration.
//
//	name: remotekit
//	logging:
//	  level: debug
//	http:
//	  base_uri: https://api.example.com
//	  auth: {type: bearer, token: secret}
//	ssh:
//	  host: 10.0.0.5
//	  identity_files: [~/.ssh/deploy]
//	jsonrpc:
//	  endpoint: https://zabbix.example.com/api_jsonrpc.php
//	tracing:
//	  enabled: true
//	  endpoint: otel-collector:4318
type AppConfig struct {
	Name    string            `yaml:"name" mapstructure:"name"`
	Logging logger.Config     `yaml:"logging" mapstructure:"logging"`
	HTTP    httpclient.Config `yaml:"http" mapstructure:"http"`
	SSH     SSHConfig         `yaml:"ssh" mapstructure:"ssh"`
	JSONRPC JSONRPCConfig     `yaml:"jsonrpc" mapstructure:"jsonrpc"`
	Tracing TracingConfig     `yaml:"tracing" mapstructure:"tracing"`
}

// JSONRPCConfig configures the JSON-RPC client.
type JSONRPCConfig struct {
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint" validate:"omitempty,url"`
	// Auth is sent verbatim as the envelope's auth member. Empty sends null.
	Auth string `yaml:"auth" mapstructure:"auth"`
}

// TracingConfig switches span export on.
type TracingConfig struct {
	Enabled                    bool `yaml:"enabled" mapstructure:"enabled"`
	observability.TracerConfig `yaml:",inline" mapstructure:",squash"`
}

// Load reads the configuration, applies defaults and validates it. An empty
// path searches the standard locations.
func Load(path string, opts ...LoaderOption) (*AppConfig, error) {
	if path != "" {
		opts = append(opts, WithConfigFile(path))
	}
	var cfg AppConfig
	if err := LoadConfig(ServiceName, &cfg, opts...); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyDefaults fills in unset values.
func (c *AppConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = ServiceName
	}
	if c.Logging.ServiceName == "" {
		c.Logging.ServiceName = c.Name
	}
	c.Logging.ApplyDefaults()
	c.SSH.ApplyDefaults()

	defaults := observability.DefaultTracerConfig(c.Name)
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = defaults.ServiceName
	}
	if c.Tracing.Endpoint == "" {
		c.Tracing.Endpoint = defaults.Endpoint
		c.Tracing.Insecure = defaults.Insecure
	}
	if c.Tracing.SampleRate == 0 {
		c.Tracing.SampleRate = defaults.SampleRate
	}
}

// Validate checks every section and reports the first failure.
func (c *AppConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("config.name is required")
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	if err := c.HTTP.Validate(); err != nil {
		return fmt.Errorf("config.http: %w", err)
	}
	if err := validation.Validate(&c.SSH); err != nil {
		return fmt.Errorf("config.ssh: %w", err)
	}
	if err := validation.Validate(&c.JSONRPC); err != nil {
		return fmt.Errorf("config.jsonrpc: %w", err)
	}
	if err := validation.Validate(&c.Tracing.TracerConfig); err != nil {
		return fmt.Errorf("config.tracing: %w", err)
	}
	return nil
}
