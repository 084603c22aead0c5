package service

import (
	"errors"
	"fmt"
)

// Kind classifies a service failure.
type Kind int

const (
	// KindInvalidRequest covers malformed input, missing fields, a duplicate
	// code on create and an unknown code on update/delete. It is the
	// caller's fault and is never logged as a server fault.
	KindInvalidRequest Kind = iota + 1

	// KindDatabaseError covers every storage failure not classified above.
	KindDatabaseError
)

func (k Kind) String() string {
	switch k {
	case KindInvalidRequest:
		return "INVALID_REQUEST"
	case KindDatabaseError:
		return "DATABASE_ERROR"
	default:
		return "UNKNOWN"
	}
}

// Sentinels for the INVALID_REQUEST subcases the HTTP binding maps to a
// distinct status code.
var (
	ErrAlreadyExists = errors.New("mechanic already exists")
	ErrInvalidCode   = errors.New("invalid mechanic code")
)

// Error is the only error type returned by Service. Message is safe to
// show to clients; Err is the cause and is kept for logs and errors.Is.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of err, or 0 if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func invalid(msg string) *Error {
	return &Error{Kind: KindInvalidRequest, Message: msg}
}

func invalidErr(msg string, sentinel error) *Error {
	return &Error{Kind: KindInvalidRequest, Message: msg, Err: sentinel}
}

func dbError(msg string, cause error) *Error {
	return &Error{Kind: KindDatabaseError, Message: msg, Err: cause}
}
