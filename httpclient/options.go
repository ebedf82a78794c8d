package httpclient

import (
	"context"
	"io"
	"time"
)

// BasicCredentials are handed to the transport's basic-auth mechanism.
type BasicCredentials struct {
	Username string
	Password string
}

// ResolveOverrides pins connections to fixed addresses. Each entry has the
// form "host:port:ip". A non-nil value with no entries is still an override.
type ResolveOverrides struct {
	Entries []string
}

// Options is the per-call bundle an Adapter hands to its Transport. It is
// built fresh for every request and never shared.
type Options struct {
	Basic            *BasicCredentials
	Headers          map[string]string
	Verify           bool
	Timeout          time.Duration
	ThrowOnHTTPError bool

	// Body is a raw request body. At most one of Body and FormParams is set.
	Body       io.Reader
	FormParams []FormField

	// Resolve is nil when no override was configured.
	Resolve *ResolveOverrides
}

// Transport performs a single HTTP exchange.
type Transport interface {
	Do(ctx context.Context, method, url string, opts Options) (*Response, error)
}
