package httpclient

import (
	"encoding/json"
	"fmt"
)

// Response is the normalized result of an HTTP request.
type Response struct {
	// StatusCode is the HTTP status code.
	StatusCode int
	// Headers are the response headers, first value per name.
	Headers map[string]string
	// Body is the raw response body. Nil means the response had no body.
	Body []byte
}

// IsSuccessful reports whether the status code is below 400.
func (r *Response) IsSuccessful() bool {
	return r.StatusCode < 400
}

// HasBody reports whether a body was received.
func (r *Response) HasBody() bool {
	return r.Body != nil
}

// ParseJSON decodes the body as generic JSON. It returns (nil, nil) when
// there is no body.
func (r *Response) ParseJSON() (any, error) {
	if r.Body == nil {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(r.Body, &v); err != nil {
		return nil, fmt.Errorf("httpclient: response body is not valid JSON: %w", err)
	}
	return v, nil
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	if r.Body == nil {
		return fmt.Errorf("httpclient: response has no body")
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("httpclient: decode response body: %w", err)
	}
	return nil
}
