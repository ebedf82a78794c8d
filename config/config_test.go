package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/remotekit/errors"
	"github.com/kbukum/remotekit/logger"
	"github.com/kbukum/remotekit/sshclient"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

const sampleYAML = `
name: ops
logging:
  level: debug
  format: json
http:
  base_uri: https://api.example.com
  timeout: 5s
  verify: true
  headers:
    - "X-Requested-By: ops"
  resolve:
    - api.example.com:443:10.0.0.1
  auth:
    type: bearer
    token: secret
ssh:
  host: 10.0.0.5
  user: deploy
  host_key_policy: strict
  identity_files: [/keys/deploy]
  jump_hosts: [bastion]
  options: [ServerAliveInterval=30]
  timeout: 10s
jsonrpc:
  endpoint: https://zabbix.example.com/api_jsonrpc.php
  auth: token-123
tracing:
  enabled: true
  endpoint: collector:4318
  sample_rate: 0.5
`

func TestLoad(t *testing.T) {
	path := writeFile(t, t.TempDir(), "remotekit.yml", sampleYAML)

	cfg, err := Load(path, WithEnvFile("/nonexistent/.env"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Name != "ops" {
		t.Errorf("expected name 'ops', got %q", cfg.Name)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.ServiceName != "ops" {
		t.Errorf("unexpected logging config: %+v", cfg.Logging)
	}
	if cfg.HTTP.Timeout != 5*time.Second || !cfg.HTTP.Verify {
		t.Errorf("unexpected http config: %+v", cfg.HTTP)
	}
	if len(cfg.HTTP.Resolve) != 1 || cfg.HTTP.Resolve[0] != "api.example.com:443:10.0.0.1" {
		t.Errorf("unexpected resolve list: %v", cfg.HTTP.Resolve)
	}
	if cfg.HTTP.Auth.Type != "bearer" || cfg.HTTP.Auth.Token != "secret" {
		t.Errorf("unexpected http auth: %+v", cfg.HTTP.Auth)
	}
	if cfg.SSH.Host != "10.0.0.5" || cfg.SSH.User != "deploy" || cfg.SSH.Timeout != 10*time.Second {
		t.Errorf("unexpected ssh config: %+v", cfg.SSH)
	}
	if cfg.JSONRPC.Auth != "token-123" {
		t.Errorf("expected jsonrpc auth, got %q", cfg.JSONRPC.Auth)
	}
	if !cfg.Tracing.Enabled || cfg.Tracing.Endpoint != "collector:4318" || cfg.Tracing.SampleRate != 0.5 {
		t.Errorf("unexpected tracing config: %+v", cfg.Tracing)
	}
	if cfg.Tracing.ServiceName != "ops" {
		t.Errorf("expected tracing service name 'ops', got %q", cfg.Tracing.ServiceName)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "remotekit.yml", sampleYAML)
	t.Setenv("REMOTEKIT_SSH_HOST", "10.9.9.9")
	t.Setenv("REMOTEKIT_HTTP_THROW_ON_ERROR", "true")
	t.Setenv("REMOTEKIT_SSH_KNOWN_HOSTS_FILE", "/etc/ssh/known")
	t.Setenv("REMOTEKIT_HTTP_AUTH_TOKEN", "from-env")
	t.Setenv("OTHER_SSH_HOST", "ignored")

	cfg, err := Load(path, WithEnvFile("/nonexistent/.env"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.SSH.Host != "10.9.9.9" {
		t.Errorf("expected env host, got %q", cfg.SSH.Host)
	}
	if !cfg.HTTP.ThrowOnError {
		t.Error("expected throw_on_error from env")
	}
	if cfg.SSH.KnownHostsFile != "/etc/ssh/known" {
		t.Errorf("expected known hosts from env, got %q", cfg.SSH.KnownHostsFile)
	}
	if cfg.HTTP.Auth.Token != "from-env" {
		t.Errorf("expected token from env, got %q", cfg.HTTP.Auth.Token)
	}
	if cfg.SSH.User != "deploy" {
		t.Errorf("file values must survive, got user %q", cfg.SSH.User)
	}
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "remotekit.yml", "name: ops\n")
	envPath := writeFile(t, dir, ".env", "REMOTEKIT_JSONRPC_ENDPOINT=http://rpc.local/api\n")
	t.Cleanup(func() { os.Unsetenv("REMOTEKIT_JSONRPC_ENDPOINT") })

	cfg, err := Load(path, WithEnvFile(envPath))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.JSONRPC.Endpoint != "http://rpc.local/api" {
		t.Errorf("expected endpoint from .env, got %q", cfg.JSONRPC.Endpoint)
	}
}

func TestLoad_Defaults(t *testing.T) {
	path := writeFile(t, t.TempDir(), "remotekit.yml", "{}\n")

	cfg, err := Load(path, WithEnvFile("/nonexistent/.env"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Name != ServiceName {
		t.Errorf("expected default name, got %q", cfg.Name)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected info level, got %q", cfg.Logging.Level)
	}
	if cfg.SSH.User != sshclient.DefaultUser || cfg.SSH.HostKeyPolicy != "lenient" {
		t.Errorf("unexpected ssh defaults: %+v", cfg.SSH)
	}
	if cfg.Tracing.Enabled {
		t.Error("tracing must be off by default")
	}
	if cfg.Tracing.Endpoint != "localhost:4318" || cfg.Tracing.SampleRate != 1.0 {
		t.Errorf("unexpected tracing defaults: %+v", cfg.Tracing)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load("/nonexistent/remotekit.yml")
	if !errors.HasCode(err, errors.ErrCodeResourceUnavailable) {
		t.Fatalf("expected resource unavailable, got %v", err)
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "remotekit.yml", "ssh: [unterminated\n")
	if _, err := Load(path, WithEnvFile("/nonexistent/.env")); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

func TestAppConfigValidate(t *testing.T) {
	valid := func() AppConfig {
		c := AppConfig{}
		c.ApplyDefaults()
		return c
	}

	tests := []struct {
		name   string
		mutate func(*AppConfig)
		errMsg string
	}{
		{"valid", func(*AppConfig) {}, ""},
		{"bad log level", func(c *AppConfig) { c.Logging.Level = "loud" }, "config.logging"},
		{"bad resolve", func(c *AppConfig) { c.HTTP.Resolve = []string{"nope"} }, "config.http"},
		{"bearer without token", func(c *AppConfig) { c.HTTP.Auth.Type = "bearer" }, "config.http"},
		{"bad host key policy", func(c *AppConfig) { c.SSH.HostKeyPolicy = "maybe" }, "host_key_policy"},
		{"blank identity", func(c *AppConfig) { c.SSH.IdentityFiles = []string{" "} }, "config.ssh"},
		{"bad endpoint", func(c *AppConfig) { c.JSONRPC.Endpoint = "not a url" }, "config.jsonrpc"},
		{"bad sample rate", func(c *AppConfig) { c.Tracing.SampleRate = 2 }, "config.tracing"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.errMsg == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.errMsg) {
				t.Errorf("expected error containing %q, got %q", tc.errMsg, err.Error())
			}
		})
	}
}

func TestSSHConfigNewAdapter(t *testing.T) {
	dir := t.TempDir()
	optionsFile := writeFile(t, dir, "ssh.yml", "options:\n  - Compression=yes\n")

	c := SSHConfig{
		Host:          "10.0.0.5",
		User:          "deploy",
		ControlPath:   "/tmp/cp-%C",
		ConfigFile:    "/etc/ssh/custom",
		JumpHosts:     []string{"bastion"},
		IdentityFiles: []string{"/keys/id"},
		Options:       []string{"ServerAliveInterval=30"},
		OptionsFile:   optionsFile,
		Timeout:       15 * time.Second,
	}
	c.ApplyDefaults()

	a, err := c.NewAdapter(logger.Nop())
	if err != nil {
		t.Fatalf("NewAdapter failed: %v", err)
	}
	if a.Host() != "10.0.0.5" || a.User() != "deploy" {
		t.Errorf("unexpected target %s@%s", a.User(), a.Host())
	}
	if d, set := a.Timeout(); !set || d != 15*time.Second {
		t.Errorf("expected 15s timeout, got %v (set=%v)", d, set)
	}

	got := strings.Join(a.Options(), " ")
	for _, want := range []string{
		"-o ControlPath=/tmp/cp-%C",
		"-o StrictHostKeyChecking=no",
		"-F /etc/ssh/custom",
		"-J bastion",
		"-i /keys/id",
		"-o ServerAliveInterval=30",
		"-o Compression=yes",
		"-o ConnectTimeout=15",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("options %q missing %q", got, want)
		}
	}
}

func TestSSHConfigNewAdapter_Errors(t *testing.T) {
	c := SSHConfig{HostKeyPolicy: "maybe"}
	if _, err := c.NewAdapter(logger.Nop()); err == nil {
		t.Error("expected error for unknown policy")
	}

	c = SSHConfig{OptionsFile: filepath.Join(t.TempDir(), "absent.yml")}
	_, err := c.NewAdapter(logger.Nop())
	if !errors.HasCode(err, errors.ErrCodeResourceUnavailable) {
		t.Errorf("expected resource unavailable, got %v", err)
	}
}

func TestConfigResolverWithMockFS(t *testing.T) {
	fs := &mockFS{files: map[string]bool{
		"./config/remotekit.yml": true,
		"./config/.env":          true,
	}}
	resolver := &Resolver{FileSystem: fs}
	files := resolver.ResolveFiles("remotekit", LoaderConfig{})
	if files.ConfigFile != "./config/remotekit.yml" {
		t.Errorf("expected ./config/remotekit.yml, got %q", files.ConfigFile)
	}
	if files.EnvFile != "./config/.env" {
		t.Errorf("expected ./config/.env, got %q", files.EnvFile)
	}
}

func TestConfigResolverHomeDir(t *testing.T) {
	fs := &mockFS{files: map[string]bool{
		filepath.Join("/home/ops", ".config", "remotekit", "config.yml"): true,
	}}
	files := (&Resolver{FileSystem: fs}).ResolveFiles("remotekit", LoaderConfig{})
	if files.ConfigFile != "/home/ops/.config/remotekit/config.yml" {
		t.Errorf("unexpected config file %q", files.ConfigFile)
	}
	if files.EnvFile != "" {
		t.Errorf("expected no env file, got %q", files.EnvFile)
	}
}

func TestConfigResolverExplicitPaths(t *testing.T) {
	files := (&Resolver{FileSystem: &mockFS{}}).ResolveFiles("remotekit", LoaderConfig{
		ConfigFile: "/etc/remotekit.yml",
		EnvFile:    "/etc/remotekit.env",
	})
	if files.ConfigFile != "/etc/remotekit.yml" || files.EnvFile != "/etc/remotekit.env" {
		t.Errorf("explicit paths must win, got %+v", files)
	}
}

type mockFS struct {
	files map[string]bool
}

func (m *mockFS) Exists(path string) bool  { return m.files[path] }
func (m *mockFS) LoadEnv(path string) error { return nil }
func (m *mockFS) HomeDir() (string, error)  { return "/home/ops", nil }

func TestGenerateEnvKeyVariants(t *testing.T) {
	variants := generateEnvKeyVariants("HTTP_TLS_CA_FILE")
	for _, want := range []string{"http_tls_ca_file", "http.tls.ca.file", "http.tls.ca_file", "http.tls_ca_file"} {
		found := false
		for _, v := range variants {
			if v == want {
				found = true
			}
		}
		if !found {
			t.Errorf("variants %v missing %q", variants, want)
		}
	}
	if got := generateEnvKeyVariants("NAME"); len(got) != 1 || got[0] != "name" {
		t.Errorf("unexpected variants for single key: %v", got)
	}
}

func TestKeysOf(t *testing.T) {
	keys := keysOf(reflect.TypeOf(&AppConfig{}), "")
	for _, want := range []string{
		"name",
		"logging.level",
		"http.base_uri",
		"http.auth.token",
		"http.tls.ca_file",
		"ssh.known_hosts_file",
		"jsonrpc.endpoint",
		"tracing.enabled",
		"tracing.sample_rate",
	} {
		if !keys[want] {
			t.Errorf("missing key %q", want)
		}
	}
	if keys["http.auth"] || keys["tracing.tracerconfig.endpoint"] {
		t.Error("struct sections and squashed fields must not be leaf keys")
	}
}

func TestWithOptions(t *testing.T) {
	var lc LoaderConfig
	WithFileSystem(&mockFS{})(&lc)
	WithConfigFile("/path/to/config.yml")(&lc)
	WithEnvFile("/path/to/.env")(&lc)
	WithEnvPrefix("OPS")(&lc)
	if lc.FileSystem == nil || lc.ConfigFile != "/path/to/config.yml" || lc.EnvFile != "/path/to/.env" || lc.EnvPrefix != "OPS" {
		t.Errorf("unexpected loader config: %+v", lc)
	}
}
