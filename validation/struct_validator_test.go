package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/remotekit/errors"
)

type sshSection struct {
	Host    string   `yaml:"host" validate:"required"`
	Options []string `yaml:"options" validate:"dive,notblank"`
}

type appSection struct {
	Endpoint string      `yaml:"endpoint" validate:"omitempty,url"`
	Resolve  []string    `yaml:"resolve" validate:"dive,resolve"`
	SSH      *sshSection `yaml:"ssh"`
}

func TestValidate_Valid(t *testing.T) {
	cfg := appSection{
		Endpoint: "https://rpc.example.com/api",
		Resolve:  []string{"h.com:443:1.2.3.4", "v6.example.com:8443:[::1]"},
		SSH:      &sshSection{Host: "10.0.0.1", Options: []string{"ServerAliveInterval=30"}},
	}
	assert.NoError(t, Validate(cfg))
}

func TestValidate_ReportsFieldPaths(t *testing.T) {
	cfg := appSection{
		Endpoint: "not a url",
		Resolve:  []string{"h.com:443:1.2.3.4", "h.com:https:1.2.3.4"},
		SSH:      &sshSection{Options: []string{"  "}},
	}

	err := Validate(cfg)
	require.Error(t, err)

	appErr, ok := errors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeInvalidInput, appErr.Code)

	fields, ok := appErr.Details["fields"].([]FieldError)
	require.True(t, ok)

	byField := map[string]string{}
	for _, f := range fields {
		byField[f.Field] = f.Message
	}
	assert.Equal(t, "must be a valid URL", byField["endpoint"])
	assert.Equal(t, "must have the form host:port:ip", byField["resolve[1]"])
	assert.Equal(t, "is required", byField["ssh.host"])
	assert.Equal(t, "is required", byField["ssh.options[0]"])
}

func TestIsResolveEntry(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"h.com:443:1.2.3.4", true},
		{"me.hostname.tld:443:192.168.100.1", true},
		{"h.com:443:::1", true},
		{"h.com:443:[2001:db8::1]", true},
		{"h.com:443", false},
		{":443:1.2.3.4", false},
		{"h.com:0:1.2.3.4", false},
		{"h.com:70000:1.2.3.4", false},
		{"h.com:443:not-an-ip", false},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, IsResolveEntry(tc.in))
		})
	}
}

func TestToSnakeCase(t *testing.T) {
	assert.Equal(t, "base_uri", toSnakeCase("BaseUri"))
	assert.Equal(t, "control_path", toSnakeCase("ControlPath"))
	assert.Equal(t, "host", toSnakeCase("Host"))
}
