// Package errors provides error wrapping with slog annotations and source locations.
//
// It re-exports the standard library helpers so that callers only need one
// errors import.
package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
)

// annotatedError carries a message, structured annotations, and the source
// location where the error was wrapped.
type annotatedError struct {
	msg    string
	cause  error
	attrs  []slog.Attr
	source string
}

// Error implements the error interface.
func (e *annotatedError) Error() string {
	if e.cause == nil {
		return e.msg
	}
	return e.msg + ": " + e.cause.Error()
}

// Unwrap exposes the cause for errors.Is and errors.As traversal.
func (e *annotatedError) Unwrap() error {
	return e.cause
}

// NewSentinel creates an error intended to be used as a package-level sentinel
// checked with [Is]. It carries no annotations or source location.
func NewSentinel(msg string) error {
	return errors.New(msg)
}

// New creates a new error. It is a re-export of the standard library errors.New.
func New(msg string) error {
	return errors.New(msg)
}

// Wrap annotates err with a message and optional [slog.Attr] values and
// records the caller's source location. The attributes surface in logs through
// [SlogError].
func Wrap(err error, msg string, attrs ...slog.Attr) error {
	return &annotatedError{
		msg:    msg,
		cause:  err,
		attrs:  attrs,
		source: callerSource(2), //nolint:mnd // skip Wrap and runtime.Callers.
	}
}

// callerSource resolves the file:line of the caller skipping the given number of frames.
func callerSource(skip int) string {
	var pcs [1]uintptr
	if runtime.Callers(skip+1, pcs[:]) == 0 {
		return ""
	}
	frame, _ := runtime.CallersFrames(pcs[:]).Next()
	file := frame.File
	if idx := strings.LastIndexByte(file, '/'); idx != -1 {
		file = file[idx+1:]
	}
	return fmt.Sprintf("%s:%d", file, frame.Line)
}

// SlogError converts an error into a [slog.Attr] group containing the error
// message, the annotations collected from every [Wrap] in the chain, and the
// source location of the innermost wrap.
func SlogError(err error) slog.Attr {
	if err == nil {
		return slog.Attr{Key: "error", Value: slog.StringValue("<nil>")}
	}

	var (
		annotations []slog.Attr
		source      string
	)
	for unwrapped := err; unwrapped != nil; unwrapped = Unwrap(unwrapped) {
		if annotated, ok := unwrapped.(*annotatedError); ok {
			annotations = append(annotations, annotated.attrs...)
			if source == "" {
				source = annotated.source
			}
		}
	}

	groupAttrs := []any{slog.String("message", err.Error())}
	if source != "" {
		groupAttrs = append(groupAttrs, slog.String("source", source))
	}
	if len(annotations) > 0 {
		annotationArgs := make([]any, 0, len(annotations))
		for _, attr := range annotations {
			annotationArgs = append(annotationArgs, attr)
		}
		groupAttrs = append(groupAttrs, slog.Group("annotations", annotationArgs...))
	}

	return slog.Group("error", groupAttrs...)
}

// DecoratePanic converts a recovered panic value into an error whose source
// points at the panicking frame rather than the recovery site. It is meant to
// be called directly from a deferred recover handler.
func DecoratePanic(recovered any) error {
	if recovered == nil {
		return nil
	}

	var pcs [32]uintptr
	n := runtime.Callers(2, pcs[:]) //nolint:mnd // skip Callers and DecoratePanic.
	frames := runtime.CallersFrames(pcs[:n])
	source := ""
	for {
		frame, more := frames.Next()
		if !strings.HasPrefix(frame.Function, "runtime.") && frame.File != "" {
			file := frame.File
			if idx := strings.LastIndexByte(file, '/'); idx != -1 {
				file = file[idx+1:]
			}
			source = fmt.Sprintf("%s:%d", file, frame.Line)
			break
		}
		if !more {
			break
		}
	}

	return &annotatedError{
		msg:    fmt.Sprintf("panic: %v", recovered),
		cause:  nil,
		attrs:  nil,
		source: source,
	}
}

// Is reports whether any error in err's chain matches target. Re-export of errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target. Re-export of errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// Unwrap returns the result of calling the Unwrap method on err. Re-export of errors.Unwrap.
func Unwrap(err error) error {
	return errors.Unwrap(err)
}

// Join wraps the given errors into a single error. Re-export of errors.Join.
func Join(errs ...error) error {
	return errors.Join(errs...)
}
