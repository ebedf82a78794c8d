package httpclient

import (
	"context"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/remotekit/errors"
	"github.com/kbukum/remotekit/logger"
	"github.com/kbukum/remotekit/util"
)

type recordedCall struct {
	Method string
	URL    string
	Opts   Options
	Body   string
}

// fakeTransport records every call and answers with a fixed response.
type fakeTransport struct {
	mu    sync.Mutex
	calls []recordedCall
	resp  *Response
	err   error
}

func (f *fakeTransport) Do(_ context.Context, method, url string, opts Options) (*Response, error) {
	call := recordedCall{Method: method, URL: url, Opts: opts}
	if opts.Body != nil {
		data, _ := io.ReadAll(opts.Body)
		call.Body = string(data)
	}
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	if f.resp != nil {
		return f.resp, nil
	}
	return &Response{StatusCode: 200}, nil
}

func (f *fakeTransport) last(t *testing.T) recordedCall {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.calls, "transport was not called")
	return f.calls[len(f.calls)-1]
}

func newTestAdapter(opts ...Option) (*Adapter, *fakeTransport) {
	ft := &fakeTransport{}
	opts = append([]Option{WithTransport(ft), WithLogger(logger.Nop())}, opts...)
	return New(opts...), ft
}

func TestNew_Defaults(t *testing.T) {
	a, _ := newTestAdapter()

	assert.Empty(t, a.Headers())
	assert.Nil(t, a.Authorization())
	assert.False(t, a.IsAuthorized())
	assert.Zero(t, a.Timeout())
	assert.False(t, a.Verify())
	assert.Empty(t, a.BaseURI())
	assert.False(t, a.ThrowOnError())
	_, present := a.StrictResolveList()
	assert.False(t, present)
}

func TestBuildOptions_BearerSeedsAuthorization(t *testing.T) {
	a, ft := newTestAdapter(WithAuth(Bearer("TOKEN123")))

	_, err := a.Get(context.Background(), "/x")
	require.NoError(t, err)

	opts := ft.last(t).Opts
	assert.Equal(t, "Bearer TOKEN123", opts.Headers["Authorization"])
	assert.Nil(t, opts.Basic)
}

func TestBuildOptions_ExplicitAuthorizationWinsOverBearer(t *testing.T) {
	a, ft := newTestAdapter(WithAuth(Bearer("TOKEN123")))
	a.AddHeader(Header{Name: "Authorization", Value: "Basic xyz"})

	_, err := a.Get(context.Background(), "/x")
	require.NoError(t, err)

	assert.Equal(t, "Basic xyz", ft.last(t).Opts.Headers["Authorization"])
}

func TestBuildOptions_HeaderNamesAreCaseInsensitive(t *testing.T) {
	a, ft := newTestAdapter(WithAuth(Bearer("TOKEN123")))
	a.AddHeader(Header{Name: "authorization", Value: "Basic xyz"})
	a.AddHeader(Header{Name: "x-team", Value: "ops"})
	a.AddHeader(Header{Name: "X-TEAM", Value: "dev"})

	_, err := a.Get(context.Background(), "/x")
	require.NoError(t, err)

	headers := ft.last(t).Opts.Headers
	assert.Equal(t, map[string]string{"Authorization": "Basic xyz", "X-Team": "dev"}, headers)
}

func TestBuildOptions_BasicGoesToCredentials(t *testing.T) {
	a, ft := newTestAdapter(WithAuth(Basic("u", "p")))

	_, err := a.Get(context.Background(), "/x")
	require.NoError(t, err)

	opts := ft.last(t).Opts
	require.NotNil(t, opts.Basic)
	assert.Equal(t, BasicCredentials{Username: "u", Password: "p"}, *opts.Basic)
	_, hasAuthHeader := opts.Headers["Authorization"]
	assert.False(t, hasAuthHeader)
}

func TestBuildOptions_NoAuthIsAuthorizedButSendsNothing(t *testing.T) {
	a, ft := newTestAdapter(WithAuth(NoAuth{}))
	assert.True(t, a.IsAuthorized())

	_, err := a.Get(context.Background(), "/x")
	require.NoError(t, err)

	opts := ft.last(t).Opts
	assert.Nil(t, opts.Basic)
	assert.Empty(t, opts.Headers)

	a.SetAuthorization(nil)
	assert.False(t, a.IsAuthorized())
}

func TestBuildOptions_LaterHeaderWithSameNameWins(t *testing.T) {
	a, ft := newTestAdapter()
	a.AddHeader(Header{Name: "X-A", Value: "1"})
	a.AddHeader(Header{Name: "X-A", Value: "2"})

	_, err := a.Get(context.Background(), "/x")
	require.NoError(t, err)

	assert.Equal(t, "2", ft.last(t).Opts.Headers["X-A"])
	// Both entries stay in the persistent list.
	assert.Len(t, a.Headers(), 2)
}

func TestBuildOptions_CarriesFlags(t *testing.T) {
	a, ft := newTestAdapter(WithTimeout(5*time.Second), WithVerify(true), WithThrowOnError(true))

	_, err := a.Delete(context.Background(), "/x")
	require.NoError(t, err)

	call := ft.last(t)
	assert.Equal(t, "DELETE", call.Method)
	assert.Equal(t, 5*time.Second, call.Opts.Timeout)
	assert.True(t, call.Opts.Verify)
	assert.True(t, call.Opts.ThrowOnHTTPError)
}

func TestStrictResolve_TriState(t *testing.T) {
	a, ft := newTestAdapter()
	ctx := context.Background()

	_, err := a.Get(ctx, "/absent")
	require.NoError(t, err)
	assert.Nil(t, ft.last(t).Opts.Resolve, "absent list emits no override")

	a.SetStrictResolveList(nil)
	list, present := a.StrictResolveList()
	assert.True(t, present)
	assert.Empty(t, list)

	_, err = a.Get(ctx, "/empty")
	require.NoError(t, err)
	require.NotNil(t, ft.last(t).Opts.Resolve, "present-empty list still emits an override")
	assert.Empty(t, ft.last(t).Opts.Resolve.Entries)

	a.AddStrictResolve("h.com", 443, "1.2.3.4")
	_, err = a.Get(ctx, "/set")
	require.NoError(t, err)
	assert.Equal(t, []string{"h.com:443:1.2.3.4"}, ft.last(t).Opts.Resolve.Entries)

	a.ClearStrictResolveList()
	_, err = a.Get(ctx, "/cleared")
	require.NoError(t, err)
	assert.Nil(t, ft.last(t).Opts.Resolve)
}

func TestAddStrictResolve_AppendsInOrder(t *testing.T) {
	a, _ := newTestAdapter()

	a.AddStrictResolve("h.com", 443, "1.2.3.4")
	list, present := a.StrictResolveList()
	assert.True(t, present)
	assert.Equal(t, []string{"h.com:443:1.2.3.4"}, list)

	a.AddStrictResolve("h.com", 443, "1.2.3.4")
	a.AddStrictResolve("g.com", 80, "5.6.7.8")
	list, _ = a.StrictResolveList()
	assert.Equal(t, []string{"h.com:443:1.2.3.4", "h.com:443:1.2.3.4", "g.com:80:5.6.7.8"}, list)
}

func TestStrictResolveList_ReturnsCopy(t *testing.T) {
	a, _ := newTestAdapter(WithStrictResolve("h.com:443:1.2.3.4"))

	list, _ := a.StrictResolveList()
	list[0] = "mutated"

	again, _ := a.StrictResolveList()
	assert.Equal(t, "h.com:443:1.2.3.4", again[0])
}

func TestPost_BothBodyFormsIsPrecondition(t *testing.T) {
	a, ft := newTestAdapter()

	_, err := a.Post(context.Background(), "/x", []Parameter{Param("a", "1")}, util.Ptr(`{"a":1}`))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodePrecondition))
	assert.Equal(t, "The body must be provided as parameters or JSON. Not both.", err.(*errors.AppError).Message)
	assert.Empty(t, ft.calls, "transport must not be called")

	_, err = a.Put(context.Background(), "/x", []Parameter{Param("a", "1")}, util.Ptr(""))
	assert.ErrorIs(t, err, ErrBodyConflict)
}

func TestPost_FormParams(t *testing.T) {
	a, ft := newTestAdapter()

	_, err := a.Post(context.Background(), "/form", []Parameter{
		Param("a", "1"), Param("flag", true), Param("skip", nil), Param("a", "2"),
	}, nil)
	require.NoError(t, err)

	call := ft.last(t)
	assert.Equal(t, "POST", call.Method)
	assert.Nil(t, call.Opts.Body)
	assert.Equal(t, []FormField{{Name: "a", Value: "2"}, {Name: "flag", Value: "1"}}, call.Opts.FormParams)
}

func TestPut_JSONBody(t *testing.T) {
	a, ft := newTestAdapter(WithAuth(Bearer("t")))

	_, err := a.Put(context.Background(), "/json", nil, util.Ptr(`{"k":"v"}`))
	require.NoError(t, err)

	call := ft.last(t)
	assert.Equal(t, "PUT", call.Method)
	assert.Equal(t, `{"k":"v"}`, call.Body)
	assert.Nil(t, call.Opts.FormParams)
	assert.Equal(t, "Bearer t", call.Opts.Headers["Authorization"])
}

func TestBaseURI_PlainConcatenation(t *testing.T) {
	a, ft := newTestAdapter()
	ctx := context.Background()

	_, _ = a.Get(ctx, "http://example.com/a")
	assert.Equal(t, "http://example.com/a", ft.last(t).URL)

	a.SetBaseURI("http://example.com/api")
	_, _ = a.Get(ctx, "/v1/items")
	assert.Equal(t, "http://example.com/api/v1/items", ft.last(t).URL)

	_, _ = a.Get(ctx, "v1")
	assert.Equal(t, "http://example.com/apiv1", ft.last(t).URL)
}

func TestUpload_MissingFile(t *testing.T) {
	a, ft := newTestAdapter()
	missing := filepath.Join(t.TempDir(), "missing.bin")

	_, err := a.Upload(context.Background(), "/up", missing)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeResourceUnavailable))
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Empty(t, ft.calls)
}

func TestUploadAndReplace_StreamFile(t *testing.T) {
	a, ft := newTestAdapter()
	path := filepath.Join(t.TempDir(), "payload.txt")
	require.NoError(t, os.WriteFile(path, []byte("file contents"), 0o600))

	_, err := a.Upload(context.Background(), "/up", path)
	require.NoError(t, err)
	assert.Equal(t, "POST", ft.last(t).Method)
	assert.Equal(t, "file contents", ft.last(t).Body)

	_, err = a.Replace(context.Background(), "/up", path)
	require.NoError(t, err)
	assert.Equal(t, "PUT", ft.last(t).Method)
	assert.Equal(t, "file contents", ft.last(t).Body)
}

func TestTransportErrorPropagatesUnchanged(t *testing.T) {
	a, ft := newTestAdapter()
	ft.err = NewConnectionError(stderrors.New("dial tcp: connection refused"))

	_, err := a.Get(context.Background(), "/x")
	assert.Same(t, ft.err, err)
}

func TestHeaders_RemoveSemantics(t *testing.T) {
	a, _ := newTestAdapter()
	a.SetHeaders([]Header{
		{Name: "A", Value: "1"},
		{Name: "B", Value: "1"},
		{Name: "A", Value: "2"},
		{Name: "C", Value: "3"},
		{Name: "A", Value: "1"},
	})

	a.RemoveHeader(Header{Name: "A", Value: "1"})
	assert.Equal(t, []Header{{"B", "1"}, {"A", "2"}, {"C", "3"}}, a.Headers())

	a.RemoveHeaderByName("A")
	assert.Equal(t, []Header{{"B", "1"}, {"C", "3"}}, a.Headers())

	a.RemoveHeaderByName("missing")
	assert.Equal(t, []Header{{"B", "1"}, {"C", "3"}}, a.Headers())
}

func TestHeaders_ReturnsCopy(t *testing.T) {
	a, _ := newTestAdapter(WithHeaders(AcceptJSON()))
	h := a.Headers()
	h[0].Value = "mutated"
	assert.Equal(t, "application/json", a.Headers()[0].Value)
}

func TestAdapter_ConcurrentConfigureAndCall(t *testing.T) {
	a, ft := newTestAdapter()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			a.AddHeader(Header{Name: "X", Value: "v"})
			a.AddStrictResolve("h", 1, "1.1.1.1")
		}()
		go func() {
			defer wg.Done()
			_, _ = a.Get(context.Background(), "/x")
		}()
	}
	wg.Wait()
	assert.Len(t, ft.calls, 20)
	assert.Len(t, a.Headers(), 20)
}
