package config

import (
	"time"

	"github.com/kbukum/remotekit/errors"
	"github.com/kbukum/remotekit/logger"
	"github.com/kbukum/remotekit/sshclient"
)

// SSHConfig is the file/env representation of an sshclient.Adapter.
type SSHConfig struct {
	Host           string `yaml:"host" mapstructure:"host" validate:"omitempty,hostname_rfc1123|ip"`
	User           string `yaml:"user" mapstructure:"user" validate:"omitempty,notblank"`
	HostKeyPolicy  string `yaml:"host_key_policy" mapstructure:"host_key_policy" validate:"omitempty,oneof=lenient strict"`
	KnownHostsFile string `yaml:"known_hosts_file" mapstructure:"known_hosts_file"`
	ControlPath    string `yaml:"control_path" mapstructure:"control_path"`
	// ConfigFile is passed to ssh with -F.
	ConfigFile    string   `yaml:"config_file" mapstructure:"config_file"`
	IdentityFiles []string `yaml:"identity_files" mapstructure:"identity_files" validate:"dive,notblank"`
	JumpHosts     []string `yaml:"jump_hosts" mapstructure:"jump_hosts" validate:"dive,notblank"`
	Options       []string `yaml:"options" mapstructure:"options" validate:"dive,notblank"`
	// OptionsFile is a YAML file with an options list, read with
	// sshclient.ConfigLoader.
	OptionsFile string `yaml:"options_file" mapstructure:"options_file"`
	// Timeout is the connect timeout. Zero keeps the adapter default.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`
}

// ApplyDefaults fills in the user and host key policy.
func (c *SSHConfig) ApplyDefaults() {
	if c.User == "" {
		c.User = sshclient.DefaultUser
	}
	if c.HostKeyPolicy == "" {
		c.HostKeyPolicy = sshclient.HostKeyLenient.String()
	}
}

// NewAdapter builds an adapter from the configuration. extra options are
// applied after the configured ones.
func (c *SSHConfig) NewAdapter(log *logger.Logger, extra ...sshclient.Option) (*sshclient.Adapter, error) {
	policy, err := sshclient.ParseHostKeyPolicy(c.HostKeyPolicy)
	if err != nil {
		return nil, err
	}

	opts := []sshclient.Option{
		sshclient.WithLogger(log),
		sshclient.WithHost(c.Host),
		sshclient.WithHostKeyPolicy(policy),
		sshclient.WithKnownHostsFile(c.KnownHostsFile),
	}
	if c.User != "" {
		opts = append(opts, sshclient.WithUser(c.User))
	}
	if c.ControlPath != "" {
		opts = append(opts, sshclient.WithControlPath(c.ControlPath))
	}
	a, err := sshclient.New(append(opts, extra...)...)
	if err != nil {
		return nil, err
	}

	if c.Timeout > 0 {
		a.SetTimeout(c.Timeout)
	}
	if c.ConfigFile != "" {
		a.AddConfigFile(c.ConfigFile)
	}
	for _, jump := range c.JumpHosts {
		a.AddJump(jump)
	}
	for _, id := range c.IdentityFiles {
		a.AddIdentityFile(id)
	}
	for _, opt := range c.Options {
		a.AddOption(opt)
	}
	if c.OptionsFile != "" {
		loaded := sshclient.NewConfigLoader(c.OptionsFile, sshclient.WithLoaderLogger(log)).Load()
		if loaded == nil {
			return nil, errors.ResourceUnavailable(c.OptionsFile, "unable to load ssh options file")
		}
		a.ApplyConfig(loaded)
	}
	return a, nil
}
