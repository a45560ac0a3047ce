// Package errortypes defines the error taxonomy shared by the compiler
// packages, and an interface for errors that carry a file position.
package errortypes

import (
	"errors"
	"fmt"
	"strings"
)

// ErrFilePos extends the error interface to add details on the file position where the error occurred.
type ErrFilePos interface {
	error
	File() string
	Line() int
	Col() int
}

// Kind classifies an error by how callers are expected to recover from it.
type Kind int

const (
	// ParseError is malformed template or expression syntax. It is fatal for
	// the offending unit; best-effort passes treat it as a skip.
	ParseError Kind = iota + 1

	// ResolutionError is a reference (directive, local, pipe, token) that
	// could not be matched.
	ResolutionError

	// ConfigurationError is missing or invalid project configuration. It aborts
	// the entire run.
	ConfigurationError

	// IOError is a file that could not be read or written. The file is skipped.
	IOError
)

func (k Kind) String() string {
	switch k {
	case ParseError:
		return "parse error"
	case ResolutionError:
		return "resolution error"
	case ConfigurationError:
		return "configuration error"
	case IOError:
		return "io error"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is a classified error, optionally positioned in a file.
// LineNum and ColNum are 1-based; zero means unknown.
type Error struct {
	Kind    Kind
	Path    string
	LineNum int
	ColNum  int
	Msg     string
	Err     error // underlying cause, if any
}

var _ ErrFilePos = &Error{}

// New creates an unpositioned error of the given kind.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Newf creates an error of the given kind at the given file position.
func Newf(kind Kind, file string, line, col int, format string, args ...interface{}) *Error {
	return &Error{
		Kind:    kind,
		Path:    file,
		LineNum: line,
		ColNum:  col,
		Msg:     fmt.Sprintf(format, args...),
	}
}

// Wrap classifies err under the given kind, keeping it as the cause.
func Wrap(kind Kind, file string, err error) *Error {
	return &Error{Kind: kind, Path: file, Msg: err.Error(), Err: err}
}

// NewErrFilePosf creates an error conforming to the ErrFilePos interface.
func NewErrFilePosf(file string, line, col int, format string, args ...interface{}) error {
	return Newf(ParseError, file, line, col, format, args...)
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Path != "" {
		b.WriteString(e.Path)
		if e.LineNum > 0 {
			fmt.Fprintf(&b, "@%d:%d", e.LineNum, e.ColNum)
		}
		b.WriteString(": ")
	}
	b.WriteString(e.Msg)
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }
func (e *Error) File() string  { return e.Path }

// Line returns the 1-based line of the error, or 0 if unknown.
func (e *Error) Line() int { return e.LineNum }

// Col returns the 1-based column of the error, or 0 if unknown.
func (e *Error) Col() int { return e.ColNum }

// IsErrFilePos identifies whethere or not the root cause of the provided error is of the ErrFilePos type.
// Wrapped errors are unwrapped via the Cause() function.
func IsErrFilePos(err error) bool {
	return ToErrFilePos(err) != nil
}

// ToErrFilePos converts the input error to an ErrFilePos if possible, or nil if not.
// If IsErrFilePos returns true, this will not return nil.
func ToErrFilePos(err error) ErrFilePos {
	if err == nil {
		return nil
	}
	err = rootCause(err)
	var out ErrFilePos
	if errors.As(err, &out) {
		return out
	}
	return nil
}

// Is reports whether err, or any error it wraps, is an *Error of the given kind.
// A List matches if any of its members match.
func Is(err error, kind Kind) bool {
	var list List
	if errors.As(err, &list) {
		for _, e := range list {
			if Is(e, kind) {
				return true
			}
		}
		return false
	}
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

func rootCause(err error) error {
	type causer interface {
		Cause() error
	}

	for {
		if e, ok := err.(causer); ok {
			err = e.Cause()
		} else {
			return err
		}
	}
}
