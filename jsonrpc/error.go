package jsonrpc

import (
	"encoding/json"
	"fmt"
)

// Error codes reserved by JSON-RPC 2.0.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// Error is the error member of a JSON-RPC response.
type Error struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Error implements the error interface so callers may return it directly.
func (e *Error) Error() string {
	return fmt.Sprintf("jsonrpc: %d %s", e.Code, e.Message)
}

// HasData reports whether the server attached additional data.
func (e *Error) HasData() bool {
	return len(e.Data) > 0 && string(e.Data) != "null"
}

// DecodeData unmarshals the error data into v.
func (e *Error) DecodeData(v any) error {
	if !e.HasData() {
		return fmt.Errorf("jsonrpc: error has no data")
	}
	return json.Unmarshal(e.Data, v)
}

// IsServerError reports whether the code is in the implementation-defined
// server error range.
func (e *Error) IsServerError() bool {
	return e.Code >= -32099 && e.Code <= -32000
}
