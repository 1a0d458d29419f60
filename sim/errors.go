package sim

import (
	"fmt"
)

// An InternalError reports a broken internal invariant of the simulator.
// It is never caused by a simulated loss or corruption.
type InternalError struct {
	Op  string
	Msg string
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal consistency failure in %s: %s", e.Op, e.Msg)
}

// Panicf panics with an *InternalError. The simulation driver recovers such
// panics and returns them from Run.
func Panicf(op string, format string, args ...any) {
	panic(&InternalError{Op: op, Msg: fmt.Sprintf(format, args...)})
}

// A Warning reports a non-fatal misuse of a simulator service, such as
// stopping a timer that is not running.
type Warning struct {
	Entity EntityID
	Msg    string
}

func (w Warning) String() string {
	return fmt.Sprintf("Warning: %s (entity %s)", w.Msg, w.Entity)
}
