package transport

import (
	"encoding/json"
	"fmt"
)

// APIError is the only failure type the transport lets out. StatusCode 0
// means the request never produced an HTTP response (network error, timeout,
// encoding failure).
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("request failed: %s", e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// IsAuth reports whether the error is an authentication failure.
func (e *APIError) IsAuth() bool {
	return e.StatusCode == 401 || e.StatusCode == 403
}

// IsNetwork reports whether the request never reached the server.
func (e *APIError) IsNetwork() bool {
	return e.StatusCode == 0
}

func networkError(err error) *APIError {
	return &APIError{StatusCode: 0, Message: err.Error()}
}

// statusError builds an APIError from a non-2xx response, pulling a
// human-readable message out of the common backend error body shapes.
func statusError(status int, body []byte) *APIError {
	return &APIError{
		StatusCode: status,
		Message:    messageFromBody(body, status),
		Body:       body,
	}
}

func messageFromBody(body []byte, status int) string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err == nil {
		for _, key := range []string{"detail", "message", "error"} {
			raw, ok := fields[key]
			if !ok {
				continue
			}
			var s string
			if err := json.Unmarshal(raw, &s); err == nil && s != "" {
				return s
			}
		}
	}
	return fmt.Sprintf("request failed with status %d", status)
}
