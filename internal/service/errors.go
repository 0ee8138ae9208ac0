package service

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	// ErrUnauthorized matches 401 and 403 responses.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound matches 404 responses.
	ErrNotFound = errors.New("not found")
)

// APIError is a non-2xx response from the remote service.
type APIError struct {
	StatusCode int

	// Detail is the server's "detail" message, if any.
	Detail string

	// Fields holds per-field validation messages, if any.
	Fields map[string][]string
}

func (e *APIError) Error() string {
	if reason := e.Reason(); reason != "" {
		return reason
	}
	return fmt.Sprintf("remote error: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// Reason returns the human readable message the server supplied:
// the detail message if present, otherwise the first field message
// in key order. Empty if the server supplied neither.
func (e *APIError) Reason() string {
	if e.Detail != "" {
		return e.Detail
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		msgs := e.Fields[k]
		if len(msgs) == 0 {
			continue
		}
		if k == "non_field_errors" {
			return msgs[0]
		}
		return fmt.Sprintf("%s: %s", k, strings.Join(msgs, " "))
	}
	return ""
}

// Is reports whether the status code matches one of the sentinel errors.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// Reason extracts the server-supplied message from err, if it carries one.
func Reason(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Reason()
	}
	return ""
}
