// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
)

// ErrorKind classifies export failures.
type ErrorKind int

const (
	// NotFound: the input file does not exist.
	NotFound ErrorKind = iota + 1
	// ParseError: the input is not well-formed JSON or has the wrong shape.
	ParseError
	// MissingData: the document has no marks, or marks is empty.
	MissingData
	// ImageWriteFailed: an image payload could not be decoded or written.
	ImageWriteFailed
	// TimestampInvalid: a note key does not match YYYYMMDDHHMMSS.
	TimestampInvalid
	// NoteInvalid: a note record is not an object or has no id.
	NoteInvalid
)

func (k ErrorKind) String() string {
	switch k {
	case NotFound:
		return "not found"
	case ParseError:
		return "parse error"
	case MissingData:
		return "missing data"
	case ImageWriteFailed:
		return "image write failed"
	case TimestampInvalid:
		return "invalid timestamp"
	case NoteInvalid:
		return "invalid note"
	default:
		return fmt.Sprintf("error kind %d", int(k))
	}
}

// Error is a classified export error. Subject names the file, image, or note
// key the error concerns.
type Error struct {
	Kind    ErrorKind
	Subject string
	Err     error
}

func (e *Error) Error() string {
	switch e.Kind {
	case NotFound:
		return fmt.Sprintf("input file '%s' not found", e.Subject)
	case ParseError:
		return fmt.Sprintf("invalid JSON file %s: %v", e.Subject, e.Err)
	case MissingData:
		return fmt.Sprintf("no 'marks' data found in %s", e.Subject)
	case ImageWriteFailed:
		return fmt.Sprintf("saving image %s: %v", e.Subject, e.Err)
	case TimestampInvalid:
		return fmt.Sprintf("invalid timestamp key %q: %v", e.Subject, e.Err)
	}
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Subject)
	}
	return fmt.Sprintf("%s %s: %v", e.Kind, e.Subject, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so callers can test
// errors.Is(err, &types.Error{Kind: types.NotFound}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain, or zero.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
