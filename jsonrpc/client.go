package jsonrpc

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kbukum/remotekit/errors"
	"github.com/kbukum/remotekit/httpclient"
	"github.com/kbukum/remotekit/logger"
	"github.com/kbukum/remotekit/observability"
	"github.com/kbukum/remotekit/util"
)

// Version is the protocol version sent in every envelope.
const Version = "2.0"

var (
	// ErrEndpointNotSet is returned by Call before any request is made.
	ErrEndpointNotSet = errors.Precondition("The JSON-RPC endpoint not set.")
	// ErrNoResponse is returned when the server answered without a body.
	ErrNoResponse = errors.Protocol("No JSON-RPC response received.")
)

// HTTPAdapter is the part of httpclient.Adapter the client needs.
type HTTPAdapter interface {
	AddHeader(h httpclient.Header)
	Post(ctx context.Context, uri string, params []httpclient.Parameter, json *string) (*httpclient.Response, error)
}

// Client sends JSON-RPC 2.0 calls. It is safe for concurrent use.
type Client struct {
	http HTTPAdapter
	log  *logger.Logger

	mu       sync.RWMutex
	endpoint *string
	auth     any
}

// Option configures a Client.
type Option func(*Client)

// WithEndpoint sets the URI calls are posted to.
func WithEndpoint(endpoint string) Option {
	return func(c *Client) { c.endpoint = &endpoint }
}

// WithAuth sets the value sent as the envelope's auth member.
func WithAuth(auth any) Option {
	return func(c *Client) { c.auth = auth }
}

// WithLogger sets the client logger.
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New creates a Client on top of http and marks http's requests as JSON.
func New(http HTTPAdapter, opts ...Option) *Client {
	c := &Client{http: http, log: logger.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.WithComponent("jsonrpc")
	http.AddHeader(httpclient.ContentTypeHeader(httpclient.ContentTypeJSON))
	return c
}

// SetEndpoint sets the URI calls are posted to.
func (c *Client) SetEndpoint(endpoint string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endpoint = &endpoint
}

// Endpoint returns the configured endpoint and whether one is set.
func (c *Client) Endpoint() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return util.Deref(c.endpoint), c.endpoint != nil
}

// SetAuth sets the value sent as the envelope's auth member. It is opaque to
// the client and sent as-is.
func (c *Client) SetAuth(auth any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.auth = auth
}

// Auth returns the configured auth value.
func (c *Client) Auth() any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.auth
}

type envelope struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
	ID      string `json:"id"`
	Auth    any    `json:"auth"`
}

// Call posts method with params to the endpoint and decodes the response.
// Nil params are sent as an empty array. A JSON-RPC error reported by the
// server is not a Call error; inspect Response.IsSuccessful.
func (c *Client) Call(ctx context.Context, method string, params any) (res *Response, err error) {
	c.mu.RLock()
	endpoint, auth := c.endpoint, c.auth
	c.mu.RUnlock()

	if endpoint == nil {
		return nil, ErrEndpointNotSet
	}
	if isNil(params) {
		params = []any{}
	}

	payload, err := json.Marshal(envelope{
		JSONRPC: Version,
		Method:  method,
		Params:  params,
		ID:      nextID(),
		Auth:    auth,
	})
	if err != nil {
		return nil, errors.Encoding("Invalid JSON-RPC payload.", err)
	}
	body := string(payload)

	ctx, span := observability.StartClientSpan(ctx, observability.SpanRPCCall,
		observability.AttrRPCMethod.String(method))
	defer func() { observability.EndSpan(span, err) }()

	c.log.Debug("jsonrpc call", logger.Fields(logger.FieldMethod, method, logger.FieldURL, *endpoint))

	resp, err := c.http.Post(ctx, *endpoint, nil, &body)
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccessful() {
		return nil, errors.Protocol(fmt.Sprintf("JSON-RPC responded with %d: '%s'", resp.StatusCode, resp.Body)).
			WithDetail("status", resp.StatusCode)
	}
	if !resp.HasBody() {
		return nil, ErrNoResponse
	}

	res, perr := parseResponse(resp.Body)
	if perr != nil {
		return nil, errors.Protocol("Invalid JSON-RPC response.").WithCause(perr)
	}
	if !res.IsSuccessful() {
		c.log.Debug("jsonrpc error response", logger.Fields(
			logger.FieldMethod, method, "rpc_code", res.Error.Code, "rpc_message", res.Error.Message))
	}
	return res, nil
}

var lastID atomic.Int64

// nextID returns a decimal id derived from the wall clock that is strictly
// greater than every id issued before it in this process.
func nextID() string {
	for {
		prev := lastID.Load()
		next := time.Now().UnixNano()
		if next <= prev {
			next = prev + 1
		}
		if lastID.CompareAndSwap(prev, next) {
			return strconv.FormatInt(next, 10)
		}
	}
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
