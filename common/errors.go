package common

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// ErrorKind classifies a failed Splitwise call.
type ErrorKind string

const (
	KindConnection     ErrorKind = "connection"
	KindTimeout        ErrorKind = "timeout"
	KindCanceled       ErrorKind = "canceled"
	KindAuthentication ErrorKind = "authentication"
	KindAuthorization  ErrorKind = "authorization"
	KindNotFound       ErrorKind = "not_found"
	KindValidation     ErrorKind = "validation"
	KindRateLimit      ErrorKind = "rate_limit"
	KindServerError    ErrorKind = "server_error"
	KindAPIError       ErrorKind = "api_error"
)

// APIError is an upstream failure: a non-2xx status, a 200 carrying an
// error payload, or a transport failure (StatusCode 0).
type APIError struct {
	Message    string
	StatusCode int
	Kind       ErrorKind
	Details    map[string]any
	Err        error
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// RateLimitError is returned for HTTP 429. RetryAfter is in seconds, 0 if the
// server did not say.
type RateLimitError struct {
	APIError
	RetryAfter int
}

// Unwrap exposes the embedded APIError to errors.As.
func (e *RateLimitError) Unwrap() error {
	return &e.APIError
}

// ValidationError reports a bad tool argument. Field may be empty when the
// problem spans several arguments.
type ValidationError struct {
	Message string
	Field   string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...), Field: field}
}

// ErrorForStatus turns a failed response into a typed error.
func ErrorForStatus(status int, body []byte) error {
	msg := messageFromBody(body)

	switch status {
	case http.StatusUnauthorized:
		return &APIError{Message: "Authentication failed: " + msg, StatusCode: status, Kind: KindAuthentication}
	case http.StatusForbidden:
		return &APIError{Message: "Authorization denied: " + msg, StatusCode: status, Kind: KindAuthorization}
	case http.StatusNotFound:
		return &APIError{Message: "Not found: " + msg, StatusCode: status, Kind: KindNotFound}
	case http.StatusBadRequest:
		return &APIError{Message: "Validation error: " + msg, StatusCode: status, Kind: KindValidation}
	case http.StatusTooManyRequests:
		return &RateLimitError{
			APIError:   APIError{Message: "Rate limited: " + msg, StatusCode: status, Kind: KindRateLimit},
			RetryAfter: retryAfterFromBody(body),
		}
	default:
		return &APIError{Message: fmt.Sprintf("API error (%d): %s", status, msg), StatusCode: status, Kind: KindServerError}
	}
}

// messageFromBody prefers "error", then the joined "errors", then the raw text.
func messageFromBody(body []byte) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil || payload == nil {
		return strings.TrimSpace(string(body))
	}
	if s, ok := payload["error"].(string); ok && s != "" {
		return s
	}
	if s := ExtractErrors(payload["errors"]); s != "" {
		return s
	}
	return strings.TrimSpace(string(body))
}

func retryAfterFromBody(body []byte) int {
	var payload struct {
		RetryAfter json.Number `json:"retry_after"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return 0
	}
	n, err := payload.RetryAfter.Int64()
	if err != nil {
		return 0
	}
	return int(n)
}

// ExtractErrors flattens the various shapes Splitwise uses for "errors" into
// one comma-separated string. It returns "" when there is nothing to report.
func ExtractErrors(errs any) string {
	switch v := errs.(type) {
	case nil:
		return ""
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var parts []string
		for _, k := range keys {
			parts = append(parts, flattenErrorValues(v[k])...)
		}
		return strings.Join(parts, ", ")
	case []any:
		return strings.Join(flattenErrorValues(v), ", ")
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func flattenErrorValues(v any) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case []any:
		var out []string
		for _, item := range t {
			out = append(out, flattenErrorValues(item)...)
		}
		return out
	case string:
		return []string{t}
	default:
		return []string{fmt.Sprint(t)}
	}
}
