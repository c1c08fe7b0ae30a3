// Package backend defines the vocabulary shared by the game core and the
// services it talks to: error kinds, job statuses and layer filters.
package backend

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrQuery means a backend response was malformed or lacked a field the
	// game depends on.
	ErrQuery = errors.New("backend query error")
	// ErrUnavailable means the backend could not be reached or answered with
	// a transport-level failure.
	ErrUnavailable = errors.New("backend unavailable")
	// ErrJobFailed means an analysis job ended in a terminal, unsuccessful
	// status.
	ErrJobFailed = errors.New("analysis job failed")
)

// ServiceError is the structured error document a service may return in
// place of a result.
type ServiceError struct {
	Code    int
	Message string
	Details []string
}

func (e *ServiceError) Error() string {
	s := fmt.Sprintf("service error %d: %s", e.Code, e.Message)
	if len(e.Details) > 0 {
		s += " (" + strings.Join(e.Details, "; ") + ")"
	}
	return s
}

// Is makes a ServiceError match ErrQuery.
func (e *ServiceError) Is(target error) bool {
	return target == ErrQuery
}

// QueryErrorf builds an error wrapping ErrQuery.
func QueryErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrQuery, fmt.Sprintf(format, args...))
}

// Unavailable wraps a transport failure so that it matches ErrUnavailable.
func Unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrUnavailable, op, err)
}
