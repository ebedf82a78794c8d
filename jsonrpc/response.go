package jsonrpc

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Response is a decoded JSON-RPC response.
type Response struct {
	// ID echoes the request id. Numeric ids are kept in their textual form.
	// Nil when the server sent null or omitted it.
	ID *string
	// Result is the raw result member.
	Result json.RawMessage
	// Error is set when the server reported a failure.
	Error *Error
}

// IsSuccessful reports whether the response carries no error.
func (r *Response) IsSuccessful() bool {
	return r.Error == nil
}

// DecodeResult unmarshals the result into v.
func (r *Response) DecodeResult(v any) error {
	if len(r.Result) == 0 {
		return fmt.Errorf("jsonrpc: response has no result")
	}
	return json.Unmarshal(r.Result, v)
}

// MarshalJSON encodes the response in its JSON-RPC 2.0 wire shape. The id is
// written as a string, or null when absent.
func (r Response) MarshalJSON() ([]byte, error) {
	out := struct {
		JSONRPC string          `json:"jsonrpc"`
		ID      *string         `json:"id"`
		Result  json.RawMessage `json:"result,omitempty"`
		Error   *Error          `json:"error,omitempty"`
	}{JSONRPC: Version, ID: r.ID, Error: r.Error}
	if r.Error == nil {
		out.Result = r.Result
		if len(out.Result) == 0 {
			out.Result = json.RawMessage("null")
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a wire response with the same checks Call applies.
func (r *Response) UnmarshalJSON(data []byte) error {
	parsed, err := parseResponse(data)
	if err != nil {
		return fmt.Errorf("jsonrpc: %w", err)
	}
	*r = *parsed
	return nil
}

type wireResponse struct {
	ID     json.RawMessage `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *Error          `json:"error"`
}

// parseResponse decodes body into a Response. The body must be a JSON object
// with a result or an error member of the right shape.
func parseResponse(body []byte) (*Response, error) {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(body, &members); err != nil || members == nil {
		return nil, fmt.Errorf("response is not a JSON object")
	}
	_, hasResult := members["result"]
	_, hasError := members["error"]
	if !hasResult && !hasError {
		return nil, fmt.Errorf("response has neither result nor error")
	}

	var wire wireResponse
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, err
	}
	id, err := parseID(wire.ID)
	if err != nil {
		return nil, err
	}
	return &Response{ID: id, Result: wire.Result, Error: wire.Error}, nil
}

func parseID(raw json.RawMessage) (*string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return &s, nil
	default:
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, fmt.Errorf("id must be a string, number or null")
		}
		s := n.String()
		return &s, nil
	}
}
