package catalog

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by sources when the catalog document does not exist.
var ErrNotFound = errors.New("catalog document not found")

// LoadError reports a failed catalog load. Op is one of fetch, parse or
// validate.
type LoadError struct {
	Source string
	Op     string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("catalog %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("catalog %s %s: %v", e.Op, e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// StatusError is a non-success HTTP response from the catalog server.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.Code)
}
