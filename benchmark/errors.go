package benchmark

import (
	"errors"
	"fmt"
)

// ErrInsufficientDisk aborts a session before any run starts when the
// workload would not fit in local free space.
var ErrInsufficientDisk = errors.New("insufficient disk space")

// ValidationError reports a correctness failure: a read-back blob that
// differs from what was written, or a batch read returning the wrong
// record count. It is fatal, and deliberately a different type from
// backend.OpError — a transport fault and a wrong answer must stay
// distinguishable, since a wrong answer makes every timing number
// meaningless.
type ValidationError struct {
	Backend string
	Reason  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Backend, e.Reason)
}
