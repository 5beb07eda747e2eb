package microcontroller

import (
	"errors"
	"fmt"
)

// EmitReason classifies an emit failure
type EmitReason int

const (
	// InvalidInMemoryValue means the model holds something the format cannot express
	InvalidInMemoryValue EmitReason = iota
)

var errUnknownKind = errors.New("unknown component kind")

// ErrInvalidInMemoryValue matches every *EmitError with errors.Is
var ErrInvalidInMemoryValue = errors.New("invalid in-memory value")

func (r EmitReason) String() string {
	if r == InvalidInMemoryValue {
		return ErrInvalidInMemoryValue.Error()
	}
	return fmt.Sprintf("emit reason %d", int(r))
}

// EmitError reports a model value that cannot be written. It only occurs
// after the caller changed the model into something the format cannot hold.
type EmitError struct {
	Reason EmitReason
	Path   string // where in the model, e.g. "component 3 attribute ct"
	Err    error
}

func (e *EmitError) Error() string {
	return fmt.Sprintf("microcontroller: %s: %s: %v", e.Reason, e.Path, e.Err)
}

func (e *EmitError) Unwrap() error { return e.Err }

func (e *EmitError) Is(target error) bool {
	return e.Reason == InvalidInMemoryValue && target == ErrInvalidInMemoryValue
}

func invalid(path string, format string, args ...any) *EmitError {
	return &EmitError{Reason: InvalidInMemoryValue, Path: path, Err: fmt.Errorf(format, args...)}
}

// ValidationError is one failed check reported by Validate
type ValidationError struct {
	Rule    string // short rule name, e.g. "size"
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("microcontroller: %s: %s", e.Rule, e.Message)
}
