// File: api/errors.go
// Author: momentics <momentics@gmail.com>
//
// Common error taxonomy for the ioplane I/O object layer.
//
// The layer distinguishes four families of failure:
//   - argument validation (detected before any transport is touched)
//   - not-supported (operation outside a backend's capability set)
//   - transport/peer failure (terminal for the object)
//   - would-block (transport has no data/room; wait and retry is the
//     caller's decision)
//
// Short transfers are success, never errors.

package api

import (
	"errors"
	"fmt"
)

// Sentinel errors used across the library.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotSupported    = errors.New("operation not supported")
	ErrPeerClosed      = errors.New("peer closed")
	ErrWouldBlock      = errors.New("operation would block")
	ErrNotConnected    = errors.New("socket not connected")
	ErrBadState        = errors.New("object in wrong state")
	ErrOutOfRange      = errors.New("offset out of range")
	ErrStorageInUse    = errors.New("storage already holds an object")
)

// ErrorCode classifies error conditions for callers that switch on
// class rather than identity.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeInvalidArgument
	ErrCodeNotSupported
	ErrCodePeerClosed
	ErrCodeWouldBlock
	ErrCodeNotConnected
	ErrCodeBadState
	ErrCodeOutOfRange
	ErrCodeInternal
)

// CodeOf maps an error to its taxonomy code. Wrapped errors are
// unwrapped with errors.Is.
func CodeOf(err error) ErrorCode {
	switch {
	case err == nil:
		return ErrCodeOK
	case errors.Is(err, ErrInvalidArgument):
		return ErrCodeInvalidArgument
	case errors.Is(err, ErrNotSupported):
		return ErrCodeNotSupported
	case errors.Is(err, ErrPeerClosed):
		return ErrCodePeerClosed
	case errors.Is(err, ErrWouldBlock):
		return ErrCodeWouldBlock
	case errors.Is(err, ErrNotConnected):
		return ErrCodeNotConnected
	case errors.Is(err, ErrBadState):
		return ErrCodeBadState
	case errors.Is(err, ErrOutOfRange):
		return ErrCodeOutOfRange
	default:
		return ErrCodeInternal
	}
}

// FromCode maps a taxonomy code back to its sentinel error. Used by
// protocol clients reconstructing errors from wire status codes.
func FromCode(code ErrorCode) error {
	switch code {
	case ErrCodeOK:
		return nil
	case ErrCodeInvalidArgument:
		return ErrInvalidArgument
	case ErrCodeNotSupported:
		return ErrNotSupported
	case ErrCodePeerClosed:
		return ErrPeerClosed
	case ErrCodeWouldBlock:
		return ErrWouldBlock
	case ErrCodeNotConnected:
		return ErrNotConnected
	case ErrCodeBadState:
		return ErrBadState
	case ErrCodeOutOfRange:
		return ErrOutOfRange
	default:
		return NewError(code, "remote failure")
	}
}

// Error is a structured error carrying a code and optional context.
type Error struct {
	Code    ErrorCode
	Message string
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Context) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (context: %+v)", e.Message, e.Context)
}

// NewError creates a new structured error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}
