package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
)

const maxErrorBodyBytes int64 = 2048

func NewErr(url string, code int, msg string) error {
	return &ExternalAPIError{URL: url, StatusCode: code, Message: msg}
}

// NewHTTPErr builds an error from an unexpected response. Only the beginning of the body is kept as message.
func NewHTTPErr(url string, resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	if err != nil {
		return NewErr(url, resp.StatusCode, fmt.Sprintf("failed to read response body due to %v", err))
	}

	return NewErr(url, resp.StatusCode, string(body))
}

// ExternalAPIError is returned whenever a remote source answers with an unexpected status code.
type ExternalAPIError struct {
	URL        string
	Message    string
	StatusCode int
}

func (e *ExternalAPIError) Error() string {
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}

	return fmt.Sprintf("%d: %s (URL: %s)", e.StatusCode, msg, e.URL)
}

// Is matches any other ExternalAPIError with the same status code.
func (e *ExternalAPIError) Is(target error) bool {
	var t *ExternalAPIError
	if !errors.As(target, &t) {
		return false
	}

	return e.StatusCode == t.StatusCode
}

// IsStatusCode reports whether err wraps an ExternalAPIError with one of the given status codes.
func IsStatusCode(err error, statusCode ...int) bool {
	var apiErr *ExternalAPIError
	if len(statusCode) == 0 || !errors.As(err, &apiErr) {
		return false
	}

	return slices.Contains(statusCode, apiErr.StatusCode)
}
