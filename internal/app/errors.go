package app

import (
	"errors"
	"strings"
)

// ErrNotFound and related errors describe validation and runtime failures.
var (
	ErrNotFound         = errors.New("not found")
	ErrNetwork          = errors.New("network error")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrNoBoard          = errors.New("no board loaded")
	ErrNoPendingDelete  = errors.New("no pending delete")
	ErrColumnNotOnBoard = errors.New("column not on board")
)

// ErrorKind tags a remote failure at the collaborator boundary.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindNetwork
	KindNotFound
	KindUnauthorized
)

// String returns the stable kind label.
func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "unknown"
	}
}

// APIError is the tagged failure produced by remote adapters.
type APIError struct {
	Kind    ErrorKind
	Status  int
	Message string
	Err     error
}

// Error returns the most specific message available.
func (e *APIError) Error() string {
	if e == nil {
		return ""
	}
	if msg := strings.TrimSpace(e.Message); msg != "" {
		return msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String()
}

// Unwrap exposes the transport error.
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinels so callers can use errors.Is.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNetwork:
		return e.Kind == KindNetwork
	case ErrNotFound:
		return e.Kind == KindNotFound
	case ErrUnauthorized:
		return e.Kind == KindUnauthorized
	}
	return false
}

// KindOf classifies any error into an ErrorKind.
func KindOf(err error) ErrorKind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	switch {
	case errors.Is(err, ErrNetwork):
		return KindNetwork
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	default:
		return KindUnknown
	}
}

// Message converts err into a human-readable line: the server message first,
// then the transport message, then the error string.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if msg := strings.TrimSpace(apiErr.Message); msg != "" {
			return msg
		}
		if apiErr.Err != nil {
			if msg := strings.TrimSpace(apiErr.Err.Error()); msg != "" {
				return msg
			}
		}
	}
	return err.Error()
}
