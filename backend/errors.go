package backend

import (
	"errors"
	"fmt"
)

// ErrNoData marks a ReadLast against a backend that holds no records and
// reports that as a failure rather than returning empty bytes.
var ErrNoData = errors.New("no data")

// OpError wraps a transport or storage fault from an underlying client.
// It distinguishes backend faults from the runner's validation failures.
type OpError struct {
	Backend string
	Op      string
	Err     error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Backend, e.Op, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

// opErr wraps err as an OpError, passing nil through unchanged.
func opErr(backend, op string, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Backend: backend, Op: op, Err: err}
}
