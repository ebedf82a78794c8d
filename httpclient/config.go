package httpclient

import (
	"time"

	"github.com/kbukum/remotekit/errors"
	"github.com/kbukum/remotekit/validation"
)

// AuthConfig selects the auth variant from configuration.
type AuthConfig struct {
	// Type is one of "", "none", "basic" or "bearer". Empty leaves auth unset.
	Type     string `yaml:"type" mapstructure:"type" validate:"omitempty,oneof=none basic bearer"`
	Username string `yaml:"username" mapstructure:"username" validate:"required_if=Type basic"`
	Password string `yaml:"password" mapstructure:"password"`
	Token    string `yaml:"token" mapstructure:"token" validate:"required_if=Type bearer"`
}

// Auth returns the configured variant, or nil when Type is empty.
func (c AuthConfig) Auth() Auth {
	switch c.Type {
	case "none":
		return NoAuth{}
	case "basic":
		return Basic(c.Username, c.Password)
	case "bearer":
		return Bearer(c.Token)
	default:
		return nil
	}
}

// Config is the file/env representation of an Adapter.
type Config struct {
	BaseURI      string        `yaml:"base_uri" mapstructure:"base_uri" validate:"omitempty,url"`
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`
	Verify       bool          `yaml:"verify" mapstructure:"verify"`
	ThrowOnError bool          `yaml:"throw_on_error" mapstructure:"throw_on_error"`
	// Headers are "Name: Value" lines.
	Headers []string   `yaml:"headers" mapstructure:"headers" validate:"dive,notblank,contains=:"`
	Resolve []string   `yaml:"resolve" mapstructure:"resolve" validate:"dive,resolve"`
	Auth    AuthConfig `yaml:"auth" mapstructure:"auth"`
	TLS     *TLSConfig `yaml:"tls" mapstructure:"tls"`
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	if err := c.TLS.Validate(); err != nil {
		return errors.Validation(err.Error())
	}
	return nil
}

// Options converts the configuration into adapter options. A transport built
// from TLS is included.
func (c *Config) Options() []Option {
	opts := []Option{
		WithBaseURI(c.BaseURI),
		WithTimeout(c.Timeout),
		WithVerify(c.Verify),
		WithThrowOnError(c.ThrowOnError),
		WithTransport(NewNetTransport(NetTransportConfig{TLS: c.TLS})),
	}
	if auth := c.Auth.Auth(); auth != nil {
		opts = append(opts, WithAuth(auth))
	}

	headers := make([]Header, 0, len(c.Headers))
	for _, line := range c.Headers {
		if h, ok := ParseHeader(line); ok {
			headers = append(headers, h)
		}
	}
	if len(headers) > 0 {
		opts = append(opts, WithHeaders(headers...))
	}

	if len(c.Resolve) > 0 {
		opts = append(opts, WithStrictResolve(c.Resolve...))
	}
	return opts
}
