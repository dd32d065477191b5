package pod

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for programmatic error handling.
// Use errors.Is() to check for these error types.
var (
	// ErrNoConverter indicates no registered resolver matched a type.
	ErrNoConverter = errors.New("no converter for type")

	// ErrFormat indicates an unknown or invalid format argument.
	ErrFormat = errors.New("invalid format")

	// ErrBounds indicates a length exceeded its declared maximum.
	ErrBounds = errors.New("length exceeds maximum")

	// ErrShortBuffer indicates the input ended before a read completed.
	ErrShortBuffer = errors.New("buffer exhausted")

	// ErrResidualData indicates a checked unpack left unconsumed bytes.
	ErrResidualData = errors.New("unused trailing bytes")

	// ErrNoTag indicates a tagged type was reached without a negotiated
	// tag width (pass-through at the top of the call tree).
	ErrNoTag = errors.New("no tag width negotiated")

	// ErrValue indicates a value does not match its declared type.
	ErrValue = errors.New("value does not match type")

	// ErrInvalidTag indicates a pod struct tag has an invalid format or value.
	ErrInvalidTag = errors.New("invalid pod tag")
)

// PathError enriches a failure from a nested pack or unpack step with the
// chain of field names and enclosing type names from the failure site up
// to the root, plus the declared type of the offending field.
type PathError struct {
	Err  error    // underlying cause
	Op   string   // "pack" or "unpack"
	Path []string // innermost first: field, enclosing type, field, ...
	Type string   // declared type of the failing field
}

func (e *PathError) Error() string {
	loc := make([]string, len(e.Path))
	for i, p := range e.Path {
		loc[len(e.Path)-1-i] = p
	}
	if e.Type != "" {
		return fmt.Sprintf("%s %s (%s): %v", e.Op, strings.Join(loc, "."), e.Type, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, strings.Join(loc, "."), e.Err)
}

func (e *PathError) Unwrap() error {
	return e.Err
}

// push records one more enclosing level as the error bubbles up.
func (e *PathError) push(field, enclosing string) {
	e.Path = append(e.Path, field, enclosing)
}

// BoundsError reports a length that exceeded its declared maximum, on
// either pack or unpack.
type BoundsError struct {
	Type string // type whose bound was violated
	Len  int    // offending length
	Max  int    // declared maximum
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("%s: length %d exceeds maximum %d", e.Type, e.Len, e.Max)
}

func (e *BoundsError) Unwrap() error {
	return ErrBounds
}

// ResidualError reports unconsumed bytes after a checked unpack.
type ResidualError struct {
	Remaining int
}

func (e *ResidualError) Error() string {
	return fmt.Sprintf("%s: %d bytes left after decode", ErrResidualData.Error(), e.Remaining)
}

func (e *ResidualError) Unwrap() error {
	return ErrResidualData
}

// wrapPath attaches (field, enclosing) context to err. An error that is
// already a PathError accumulates the new level; anything else becomes the
// innermost entry of a fresh path.
func wrapPath(op string, err error, field, enclosing, declared string) error {
	var pe *PathError
	if errors.As(err, &pe) {
		pe.push(field, enclosing)
		return err
	}
	return &PathError{
		Err:  err,
		Op:   op,
		Path: []string{field, enclosing},
		Type: declared,
	}
}
