// Package jsonrpc is a minimal JSON-RPC 2.0 client that posts envelopes
// through an httpclient-shaped adapter.
//
// Transport failures and JSON-RPC errors are separate channels: Call returns
// an error only when no usable response came back. A server-side failure is
// a successful Call whose Response carries an Error.
//
//	c := jsonrpc.New(httpclient.New(), jsonrpc.WithEndpoint("https://zabbix.local/api_jsonrpc.php"))
//	res, err := c.Call(ctx, "host.get", map[string]any{"output": "extend"})
//	if err == nil && !res.IsSuccessful() {
//		log.Println(res.Error)
//	}
package jsonrpc
