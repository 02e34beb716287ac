package assistant

import (
	"errors"
	"fmt"
)

// ErrProfileNotFound aborts a turn before any completion call is made: the
// caller could not be resolved to an active member.
var ErrProfileNotFound = errors.New("member profile not found")

// CompletionError wraps a failure of the external completion service. It is
// the only error class that aborts a whole turn.
type CompletionError struct {
	Phase string // "initial" or "followup"
	Err   error
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("completion service failed (%s call): %v", e.Phase, e.Err)
}

func (e *CompletionError) Unwrap() error { return e.Err }
