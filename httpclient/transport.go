package httpclient

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"golang.org/x/net/http2"

	"github.com/kbukum/remotekit/observability"
)

// NetTransportConfig configures NetTransport.
type NetTransportConfig struct {
	// TLS supplies optional CA and client certificate material.
	TLS *TLSConfig
	// DialTimeout bounds connection setup. Defaults to 30s.
	DialTimeout time.Duration
}

// NetTransport is the net/http backed Transport. It keeps one *http.Client per
// distinct (verify, resolve) combination so connection pools are reused.
type NetTransport struct {
	config NetTransportConfig

	mu      sync.Mutex
	clients map[string]*http.Client
}

var _ Transport = (*NetTransport)(nil)

// NewNetTransport creates a NetTransport.
func NewNetTransport(cfg NetTransportConfig) *NetTransport {
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 30 * time.Second
	}
	return &NetTransport{config: cfg, clients: make(map[string]*http.Client)}
}

// Do sends one request built from opts.
func (t *NetTransport) Do(ctx context.Context, method, url string, opts Options) (*Response, error) {
	client, err := t.clientFor(opts.Verify, opts.Resolve)
	if err != nil {
		return nil, err
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	ctx, span := observability.StartClientSpan(ctx, observability.SpanHTTPRequest,
		observability.AttrHTTPMethod.String(method),
		observability.AttrHTTPURL.String(url),
	)
	resp, err := t.roundTrip(ctx, client, method, url, opts)
	if resp != nil {
		span.SetAttributes(observability.AttrHTTPStatus.Int(resp.StatusCode))
	}
	observability.EndSpan(span, err)
	return resp, err
}

func (t *NetTransport) roundTrip(ctx context.Context, client *http.Client, method, url string, opts Options) (*Response, error) {
	body, contentType := requestBody(opts)

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, NewValidationError(fmt.Sprintf("create request: %v", err))
	}

	for k, v := range opts.Headers {
		if strings.EqualFold(k, "Host") {
			req.Host = v
			continue
		}
		req.Header.Set(k, v)
	}
	if contentType != "" && req.Header.Get(HeaderContentType) == "" {
		req.Header.Set(HeaderContentType, contentType)
	}
	if opts.Basic != nil {
		req.SetBasicAuth(opts.Basic.Username, opts.Basic.Password)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, NewTimeoutError(err)
		}
		return nil, NewConnectionError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return nil, NewTimeoutError(err)
		}
		return nil, NewConnectionError(fmt.Errorf("read response body: %w", err))
	}
	if len(data) == 0 {
		data = nil
	}

	result := &Response{
		StatusCode: resp.StatusCode,
		Headers:    flattenHeaders(resp.Header),
		Body:       data,
	}

	if opts.ThrowOnHTTPError {
		if classErr := ClassifyStatusCode(resp.StatusCode, data); classErr != nil {
			return result, classErr
		}
	}
	return result, nil
}

// CloseIdleConnections closes idle connections of every cached client.
func (t *NetTransport) CloseIdleConnections() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, c := range t.clients {
		c.CloseIdleConnections()
	}
}

func (t *NetTransport) clientFor(verify bool, resolve *ResolveOverrides) (*http.Client, error) {
	key := clientKey(verify, resolve)

	t.mu.Lock()
	defer t.mu.Unlock()

	if c, ok := t.clients[key]; ok {
		return c, nil
	}
	c, err := t.newClient(verify, resolve)
	if err != nil {
		return nil, err
	}
	t.clients[key] = c
	return c, nil
}

func (t *NetTransport) newClient(verify bool, resolve *ResolveOverrides) (*http.Client, error) {
	tlsCfg, err := t.config.TLS.build(verify)
	if err != nil {
		return nil, NewValidationError(err.Error())
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = tlsCfg

	dialer := &net.Dialer{Timeout: t.config.DialTimeout, KeepAlive: 30 * time.Second}
	transport.DialContext = dialer.DialContext
	if resolve != nil {
		pins, err := parseResolveEntries(resolve.Entries)
		if err != nil {
			return nil, err
		}
		transport.DialContext = pinnedDialer(dialer.DialContext, pins)
	}

	if _, err := http2.ConfigureTransports(transport); err != nil {
		return nil, NewValidationError(fmt.Sprintf("configure http2: %v", err))
	}

	return &http.Client{Transport: transport}, nil
}

func clientKey(verify bool, resolve *ResolveOverrides) string {
	if resolve == nil {
		return fmt.Sprintf("verify=%t", verify)
	}
	return fmt.Sprintf("verify=%t|resolve=%s", verify, strings.Join(resolve.Entries, ","))
}

func requestBody(opts Options) (io.Reader, string) {
	if opts.Body != nil {
		return opts.Body, ""
	}
	if opts.FormParams != nil {
		return strings.NewReader(EncodeForm(opts.FormParams)), string(ContentTypeXWWWFormURLEncoded)
	}
	return nil, ""
}

// flattenHeaders converts multi-value headers to single-value.
func flattenHeaders(h http.Header) map[string]string {
	result := make(map[string]string, len(h))
	for k, v := range h {
		if len(v) > 0 {
			result[k] = v[0]
		}
	}
	return result
}
