package apiclient

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies a failed call to the storefront API.
type Kind string

const (
	KindNetwork      Kind = "network"
	KindTimeout      Kind = "timeout"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindNotFound     Kind = "not_found"
	KindServer       Kind = "server"
	KindHTTP         Kind = "http"
	KindShape        Kind = "shape"
)

// APIError is returned for every failed call.
type APIError struct {
	Kind     Kind
	Method   string
	Path     string
	Status   int
	Message  string
	Resource string
	Err      error
}

func (e *APIError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s: %s", e.Method, e.Path, e.Kind)
	if e.Status != 0 {
		fmt.Fprintf(&b, " (status %d)", e.Status)
	}
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *APIError) Unwrap() error { return e.Err }

// UserMessage renders the error the way the console shows it to an operator.
func (e *APIError) UserMessage() string {
	label := e.Resource
	if label == "" {
		label = "data"
	}
	switch e.Kind {
	case KindUnauthorized:
		return "Session expired. Please login again."
	case KindForbidden:
		return fmt.Sprintf("Access denied. You don't have permission to view %s.", label)
	case KindNotFound:
		return fmt.Sprintf("%s API endpoint not found.", capitalize(label))
	case KindServer:
		return "Server error. Please try again later."
	case KindTimeout:
		return "API server not responding. The request was aborted."
	case KindNetwork:
		return "API server offline. Cannot connect to server."
	case KindShape:
		return "Unexpected response from server."
	default:
		return e.ServerMessage(fmt.Sprintf("HTTP error! status: %d", e.Status))
	}
}

// ServerMessage returns the message the API sent, or fallback when it sent none.
func (e *APIError) ServerMessage(fallback string) string {
	if e.Message != "" {
		return e.Message
	}
	return fallback
}

func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized:
		return KindUnauthorized
	case status == http.StatusForbidden:
		return KindForbidden
	case status == http.StatusNotFound:
		return KindNotFound
	case status >= 500:
		return KindServer
	default:
		return KindHTTP
	}
}

// KindOf returns the kind of an API error, or "" for other errors.
func KindOf(err error) Kind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return ""
}

// IsUnauthorized reports whether err is a 401 from the API.
func IsUnauthorized(err error) bool {
	return KindOf(err) == KindUnauthorized
}

// UserMessage renders any error for display.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.UserMessage()
	}
	return err.Error()
}

// MessageOr prefers the server-supplied message, used where the original
// surfaced the API's own wording (modal saves, sign-in).
func MessageOr(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Kind {
		case KindNetwork, KindTimeout, KindUnauthorized, KindServer:
			if apiErr.Message == "" {
				return apiErr.UserMessage()
			}
		}
		return apiErr.ServerMessage(fallback)
	}
	if err != nil {
		return err.Error()
	}
	return fallback
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
