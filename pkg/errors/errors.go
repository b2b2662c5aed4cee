// Package errors provides structured error handling for the Loom runtime.
package errors

import (
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindComposition indicates a failure reported by a composable.
	KindComposition
	// KindContext indicates a missing context value.
	KindContext
	// KindPanic indicates a recovered panic.
	KindPanic
	// KindHook indicates a violation of the hook-slot discipline.
	KindHook
)

func (k ErrorKind) String() string {
	switch k {
	case KindComposition:
		return "composition"
	case KindContext:
		return "context"
	case KindPanic:
		return "panic"
	case KindHook:
		return "hook"
	default:
		return "unknown"
	}
}

// CompositionError represents a failure during a composition pass.
// It is produced when a composable reports an error or panics, and
// propagates toward the root unless absorbed by a catch boundary.
type CompositionError struct {
	// Composable is the type name of the composable that failed.
	Composable string
	// Err is the underlying error (nil for panics).
	Err error
	// Recovered is the panic value (nil for regular errors).
	Recovered any
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *CompositionError) Error() string {
	if e.Recovered != nil {
		return fmt.Sprintf("panic in %s.Compose(): %v", e.Composable, e.Recovered)
	}
	if e.Err != nil {
		return fmt.Sprintf("error in %s.Compose(): %v", e.Composable, e.Err)
	}
	return fmt.Sprintf("unknown error in %s.Compose()", e.Composable)
}

func (e *CompositionError) Unwrap() error {
	return e.Err
}

// ContextError reports a context lookup that found no ancestor provider.
// It is recoverable: the composable may substitute a default value.
type ContextError struct {
	// Type is the name of the requested context value type.
	Type string
}

func (e *ContextError) Error() string {
	return fmt.Sprintf("context value not found for type %s", e.Type)
}

// PanicError represents a recovered panic outside a composable body,
// such as in an effect or a local task.
type PanicError struct {
	// Op is the operation that panicked (e.g., "compose.runEffects").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// HookError reports a violation of the positional hook-slot discipline:
// a scope used a different number or order of hooks between recompositions.
// This is a programmer error, not a recoverable condition; the runtime
// panics with a HookError rather than silently corrupting state.
type HookError struct {
	// Composable is the type name of the offending composable.
	Composable string
	// Slot is the hook-slot index at which the mismatch was detected.
	Slot int
	// Want describes the stored slot contents.
	Want string
	// Got describes the attempted access.
	Got string
}

func (e *HookError) Error() string {
	if e.Want != "" {
		return fmt.Sprintf("hook slot %d of %s: expected %s, got %s (hooks must run in the same order on every recomposition)",
			e.Slot, e.Composable, e.Want, e.Got)
	}
	return fmt.Sprintf("hook slot %d of %s: %s (hooks must run in the same order on every recomposition)",
		e.Slot, e.Composable, e.Got)
}

// ErrorHandler receives errors reported by the runtime.
type ErrorHandler interface {
	// HandleError is called when a composition error occurs.
	HandleError(err *CompositionError)
	// HandlePanic is called when a panic is recovered outside composition.
	HandlePanic(err *PanicError)
}
