package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/remotekit/errors"
	"github.com/kbukum/remotekit/logger"
)

// ErrBodyConflict is returned by Post and Put when both form parameters and
// a JSON body are given.
var ErrBodyConflict = errors.Precondition("The body must be provided as parameters or JSON. Not both.")

// Adapter is a configurable HTTP client. Configuration is mutable and guarded
// by a lock; every request works from a snapshot taken when it starts.
type Adapter struct {
	transport Transport
	log       *logger.Logger

	mu            sync.RWMutex
	headers       []Header
	auth          Auth
	timeout       time.Duration
	verify        bool
	baseURI       string
	throwOnError  bool
	strictResolve []string
	resolveSet    bool
}

// Option configures an Adapter at construction.
type Option func(*Adapter)

// WithTransport sets the transport. Defaults to a NetTransport.
func WithTransport(t Transport) Option {
	return func(a *Adapter) { a.transport = t }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *logger.Logger) Option {
	return func(a *Adapter) { a.log = l }
}

// WithBaseURI sets the prefix concatenated to every request URI.
func WithBaseURI(uri string) Option {
	return func(a *Adapter) { a.baseURI = uri }
}

// WithTimeout sets the per-request timeout. Zero means unbounded.
func WithTimeout(d time.Duration) Option {
	return func(a *Adapter) { a.timeout = d }
}

// WithVerify enables TLS certificate verification.
func WithVerify(verify bool) Option {
	return func(a *Adapter) { a.verify = verify }
}

// WithThrowOnError makes responses with status >= 400 return an *Error.
func WithThrowOnError(throw bool) Option {
	return func(a *Adapter) { a.throwOnError = throw }
}

// WithAuth sets the authentication variant.
func WithAuth(auth Auth) Option {
	return func(a *Adapter) { a.auth = auth }
}

// WithHeaders sets the initial persistent headers.
func WithHeaders(headers ...Header) Option {
	return func(a *Adapter) { a.headers = append([]Header(nil), headers...) }
}

// WithStrictResolve sets the initial strict-resolve list.
func WithStrictResolve(entries ...string) Option {
	return func(a *Adapter) {
		a.strictResolve = append([]string{}, entries...)
		a.resolveSet = true
	}
}

// New creates an Adapter. Without options it has no headers and no auth,
// an unbounded timeout, TLS verification off and throw-on-error off.
func New(opts ...Option) *Adapter {
	a := &Adapter{}
	for _, opt := range opts {
		opt(a)
	}
	if a.transport == nil {
		a.transport = NewNetTransport(NetTransportConfig{})
	}
	if a.log == nil {
		a.log = logger.GetGlobalLogger()
	}
	a.log = a.log.WithComponent("httpclient")
	return a
}

// snapshot is the immutable per-call copy of the adapter configuration.
type snapshot struct {
	headers       []Header
	auth          Auth
	timeout       time.Duration
	verify        bool
	baseURI       string
	throwOnError  bool
	strictResolve []string
	resolveSet    bool
}

func (a *Adapter) snapshot() snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return snapshot{
		headers:       append([]Header(nil), a.headers...),
		auth:          a.auth,
		timeout:       a.timeout,
		verify:        a.verify,
		baseURI:       a.baseURI,
		throwOnError:  a.throwOnError,
		strictResolve: append([]string{}, a.strictResolve...),
		resolveSet:    a.resolveSet,
	}
}

// buildOptions assembles the transport options. Bearer auth seeds the header
// map first so an explicit Authorization header replaces it. Names are
// canonicalized so headers differing only in case collapse to the last one.
func buildOptions(s snapshot) Options {
	var opts Options
	headers := make(map[string]string, len(s.headers)+1)

	switch auth := s.auth.(type) {
	case BasicAuth:
		opts.Basic = &BasicCredentials{Username: auth.Username, Password: auth.Password}
	case BearerAuth:
		headers[HeaderAuthorization] = "Bearer " + auth.Token
	case NoAuth, nil:
	}

	for _, h := range s.headers {
		headers[http.CanonicalHeaderKey(h.Name)] = h.Value
	}

	opts.Verify = s.verify
	opts.Timeout = s.timeout
	opts.Headers = headers
	opts.ThrowOnHTTPError = s.throwOnError

	if s.resolveSet {
		opts.Resolve = &ResolveOverrides{Entries: s.strictResolve}
	}
	return opts
}

func resolveURL(baseURI, uri string) string {
	if baseURI == "" {
		return uri
	}
	return baseURI + uri
}

// Get sends a GET request.
func (a *Adapter) Get(ctx context.Context, uri string) (*Response, error) {
	s := a.snapshot()
	return a.do(ctx, http.MethodGet, resolveURL(s.baseURI, uri), buildOptions(s))
}

// Delete sends a DELETE request.
func (a *Adapter) Delete(ctx context.Context, uri string) (*Response, error) {
	s := a.snapshot()
	return a.do(ctx, http.MethodDelete, resolveURL(s.baseURI, uri), buildOptions(s))
}

// Post sends a POST request whose body is either the form parameters or the
// raw JSON string, never both.
func (a *Adapter) Post(ctx context.Context, uri string, params []Parameter, json *string) (*Response, error) {
	return a.send(ctx, http.MethodPost, uri, params, json)
}

// Put sends a PUT request. The body rules are those of Post.
func (a *Adapter) Put(ctx context.Context, uri string, params []Parameter, json *string) (*Response, error) {
	return a.send(ctx, http.MethodPut, uri, params, json)
}

func (a *Adapter) send(ctx context.Context, method, uri string, params []Parameter, json *string) (*Response, error) {
	if len(params) > 0 && json != nil {
		return nil, ErrBodyConflict
	}

	s := a.snapshot()
	opts := buildOptions(s)
	if json != nil {
		opts.Body = strings.NewReader(*json)
	} else {
		opts.FormParams = FormFields(params)
	}
	return a.do(ctx, method, resolveURL(s.baseURI, uri), opts)
}

// Upload streams the file at path as the body of a POST request.
func (a *Adapter) Upload(ctx context.Context, uri, path string) (*Response, error) {
	return a.sendFile(ctx, http.MethodPost, uri, path)
}

// Replace streams the file at path as the body of a PUT request.
func (a *Adapter) Replace(ctx context.Context, uri, path string) (*Response, error) {
	return a.sendFile(ctx, http.MethodPut, uri, path)
}

func (a *Adapter) sendFile(ctx context.Context, method, uri, path string) (*Response, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.ResourceUnavailable(path, fmt.Sprintf("Unable to open the file '%s'.", path)).WithCause(err)
	}
	defer func() { _ = f.Close() }()

	s := a.snapshot()
	opts := buildOptions(s)
	opts.Body = f
	return a.do(ctx, method, resolveURL(s.baseURI, uri), opts)
}

func (a *Adapter) do(ctx context.Context, method, url string, opts Options) (*Response, error) {
	log := a.log.WithFields(logger.Fields(
		logger.FieldRequestID, uuid.NewString(),
		logger.FieldMethod, method,
		logger.FieldURL, url,
	))
	log.Debug("sending request")

	start := time.Now()
	resp, err := a.transport.Do(ctx, method, url, opts)
	if err != nil {
		log.WithError(err).Debug("request failed", logger.DurationFields("http", time.Since(start)))
		return resp, err
	}

	log.Debug("request completed",
		logger.DurationFields("http", time.Since(start)),
		logger.Fields(logger.FieldStatus, resp.StatusCode),
	)
	return resp, nil
}

// --- headers ---

// AddHeader appends h. Headers with the same name are not deduplicated.
func (a *Adapter) AddHeader(h Header) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.headers = append(a.headers, h)
}

// RemoveHeader removes every header equal to h in both name and value.
func (a *Adapter) RemoveHeader(h Header) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.headers = withoutHeader(a.headers, func(x Header) bool { return x == h })
}

// RemoveHeaderByName removes every header called name.
func (a *Adapter) RemoveHeaderByName(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.headers = withoutHeader(a.headers, func(x Header) bool { return x.Name == name })
}

// SetHeaders replaces the header list.
func (a *Adapter) SetHeaders(headers []Header) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.headers = append([]Header(nil), headers...)
}

// Headers returns a copy of the header list in insertion order.
func (a *Adapter) Headers() []Header {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]Header{}, a.headers...)
}

// --- strict resolve ---

// AddStrictResolve appends "host:port:ip" to the strict-resolve list, making
// the list present if it was not.
func (a *Adapter) AddStrictResolve(host string, port int, ip string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.strictResolve = append(a.strictResolve, FormatResolveEntry(host, port, ip))
	a.resolveSet = true
}

// SetStrictResolveList replaces the list. A nil or empty list is still
// present and emits an empty override.
func (a *Adapter) SetStrictResolveList(entries []string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.strictResolve = append([]string{}, entries...)
	a.resolveSet = true
}

// ClearStrictResolveList makes the list absent again.
func (a *Adapter) ClearStrictResolveList() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.strictResolve = nil
	a.resolveSet = false
}

// StrictResolveList returns a copy of the list and whether it is present.
func (a *Adapter) StrictResolveList() ([]string, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if !a.resolveSet {
		return nil, false
	}
	return append([]string{}, a.strictResolve...), true
}

// --- accessors ---

func (a *Adapter) BaseURI() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.baseURI
}

func (a *Adapter) SetBaseURI(uri string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.baseURI = uri
}

func (a *Adapter) Timeout() time.Duration {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.timeout
}

func (a *Adapter) SetTimeout(d time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.timeout = d
}

func (a *Adapter) Verify() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.verify
}

func (a *Adapter) SetVerify(verify bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.verify = verify
}

// Authorization returns the configured auth, or nil.
func (a *Adapter) Authorization() Auth {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.auth
}

// SetAuthorization sets the auth variant. nil clears it.
func (a *Adapter) SetAuthorization(auth Auth) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.auth = auth
}

// IsAuthorized reports whether any auth, NoAuth included, is configured.
func (a *Adapter) IsAuthorized() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.auth != nil
}

func (a *Adapter) ThrowOnError() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.throwOnError
}

func (a *Adapter) SetThrowOnError(throw bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.throwOnError = throw
}
