package httpclient

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
)

// TLSConfig holds optional TLS material for NetTransport. Certificate
// verification itself is switched per request by Options.Verify.
type TLSConfig struct {
	// CAFile is the path to a PEM bundle used to verify servers.
	CAFile string `yaml:"ca_file" mapstructure:"ca_file"`
	// CertFile is the client certificate (mTLS).
	CertFile string `yaml:"cert_file" mapstructure:"cert_file"`
	// KeyFile is the client key (mTLS).
	KeyFile string `yaml:"key_file" mapstructure:"key_file"`
	// ServerName overrides the name used for SNI and verification.
	ServerName string `yaml:"server_name" mapstructure:"server_name"`
	// MinVersion defaults to TLS 1.2.
	MinVersion uint16 `yaml:"min_version" mapstructure:"min_version"`
}

// Validate checks that the TLS configuration is consistent.
func (c *TLSConfig) Validate() error {
	if c == nil {
		return nil
	}
	if (c.CertFile != "") != (c.KeyFile != "") {
		return fmt.Errorf("httpclient/tls: both cert_file and key_file must be provided together")
	}
	return nil
}

// build returns a fresh *tls.Config. A nil receiver yields the defaults.
func (c *TLSConfig) build(verify bool) (*tls.Config, error) {
	cfg := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: !verify, //nolint:gosec // verification is opt-in per adapter
	}
	if c == nil {
		return cfg, nil
	}
	if c.MinVersion != 0 {
		cfg.MinVersion = c.MinVersion
	}
	cfg.ServerName = c.ServerName

	if c.CAFile != "" {
		ca, err := os.ReadFile(c.CAFile)
		if err != nil {
			return nil, fmt.Errorf("httpclient/tls: failed to read CA file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(ca) {
			return nil, fmt.Errorf("httpclient/tls: failed to parse CA certificate")
		}
		cfg.RootCAs = pool
	}

	if c.CertFile != "" && c.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(c.CertFile, c.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("httpclient/tls: failed to load client certificate: %w", err)
		}
		cfg.Certificates = []tls.Certificate{cert}
	}
	return cfg, nil
}
