// Package httpclient provides a configurable HTTP adapter.
//
// An Adapter holds mutable configuration (headers, auth, timeout, TLS
// verification, base URI, throw-on-error, strict DNS resolve overrides). Each
// request snapshots that configuration into an Options bundle and hands it to
// a Transport. NetTransport is the net/http implementation.
//
// # Basic Usage
//
//	a := httpclient.New(
//	    httpclient.WithBaseURI("https://api.example.com"),
//	    httpclient.WithAuth(httpclient.Bearer("my-token")),
//	)
//	a.AddHeader(httpclient.AcceptJSON())
//
//	resp, err := a.Get(ctx, "/users/123")
//
// # Strict Resolve
//
// Requests can be pinned to an address without touching DNS:
//
//	a.AddStrictResolve("api.example.com", 443, "10.0.0.7")
package httpclient
