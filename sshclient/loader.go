package sshclient

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kbukum/remotekit/logger"
	"github.com/kbukum/remotekit/validation"
)

// ConfigLoader reads a Config from a YAML file. Failures are logged and
// reported as a nil Config.
type ConfigLoader struct {
	path string
	log  *logger.Logger
}

// LoaderOption configures a ConfigLoader.
type LoaderOption func(*ConfigLoader)

// WithLoaderLogger sets the logger failures are reported to.
func WithLoaderLogger(l *logger.Logger) LoaderOption {
	return func(c *ConfigLoader) { c.log = l }
}

// NewConfigLoader creates a loader for the file at path.
func NewConfigLoader(path string, opts ...LoaderOption) *ConfigLoader {
	c := &ConfigLoader{path: path, log: logger.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Path returns the file the loader reads.
func (c *ConfigLoader) Path() string { return c.path }

// Load reads and decodes the file. Unknown keys, a missing options list and
// blank options are rejected.
func (c *ConfigLoader) Load() *Config {
	if _, err := os.Stat(c.path); stderrors.Is(err, fs.ErrNotExist) {
		c.log.Error(fmt.Sprintf("The config file '%s' does not exist.", c.path))
		return nil
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		c.log.Error(fmt.Sprintf("Unable to read the config file '%s'.", c.path), logger.ErrorFields("read", err))
		return nil
	}

	cfg, err := decodeConfig(data)
	if err != nil {
		c.log.Error(fmt.Sprintf("Unable to deserialize the config file '%s'.", c.path), logger.ErrorFields("decode", err))
		return nil
	}
	return cfg
}

func decodeConfig(data []byte) (*Config, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, err
	}
	if err := validation.Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
