package sshclient

// Config holds extra ssh -o options loaded from a YAML file:
//
//	options:
//	  - ServerAliveInterval=30
//	  - ServerAliveCountMax=4
type Config struct {
	Options []string `yaml:"options" mapstructure:"options" validate:"required,dive,notblank"`
}

// NewConfig creates a Config with the given options.
func NewConfig(options ...string) *Config {
	return &Config{Options: append([]string{}, options...)}
}

// AddOption appends option and returns c.
func (c *Config) AddOption(option string) *Config {
	c.Options = append(c.Options, option)
	return c
}
