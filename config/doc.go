// Package config loads remotekit configuration.
//
// Values come from a YAML file (remotekit.yml, config/remotekit.yml or
// ~/.config/remotekit/config.yml unless a path is given), then an optional
// .env file, then REMOTEKIT_* environment variables:
//
//	cfg, err := config.Load("")
//	// REMOTEKIT_SSH_HOST=10.0.0.5 overrides ssh.host
//
// LoadConfig works with any struct carrying mapstructure tags.
package config
