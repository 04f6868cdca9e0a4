package frame

import (
	"fmt"

	"github.com/QuangTung97/pframe/internal/logger"
)

// Error describes an unrecoverable allocator fault such as a double free.
// Faults are raised with panic and must never be recovered to keep running.
type Error struct {
	// The module where the fault occurred.
	Module string

	// The fault message
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("[%s] %s", e.Module, e.Message)
}

// Fault logs the invariant violation and panics with an *Error. Calls to Fault
// never return.
func Fault(module string, format string, args ...interface{}) {
	err := &Error{
		Module:  module,
		Message: fmt.Sprintf(format, args...),
	}
	logger.L.Error("unrecoverable error", "module", module, "message", err.Message)
	panic(err)
}
