/*************************************************************************
 * Copyright 2017 Gravwell, Inc. All rights reserved.
 * Contact: <legal@gravwell.io>
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

// Package oerr defines the error taxonomy (§7) shared by every layer of
// the client: wire codec, record serializers, query builder, connection,
// and façade. Keeping it in its own package (rather than the root
// package) lets the lower layers (wire, record, query) construct typed
// errors without importing the façade; the façade returns these same
// types and does not re-export them.
package oerr

import (
	"errors"
	"fmt"
)

// Kind is the error taxonomy every façade call can return. Callers
// branch on it with errors.Is against the Err* sentinels or by reading
// the Error.Kind field.
type Kind int

const (
	// NotConnected covers connection state machine violations and socket
	// failures. Its payload may carry the decoded server exception list.
	NotConnected Kind = iota
	// ProfileNotMatch covers encode-time missing argument map keys and
	// decode-time truncated buffers.
	ProfileNotMatch
	// WrongType covers a builder/serializer handed an object whose
	// declared base is not Vertex or Edge.
	WrongType
	// Serialization covers malformed textual records, invalid binary
	// record offsets, and class-name lookup failures.
	Serialization
	// TypeNotFound covers a value that cannot be mapped to any binary
	// type tag during encode.
	TypeNotFound
	// SqlCommand covers illegal query builder constructions.
	SqlCommand
)

func (k Kind) String() string {
	switch k {
	case NotConnected:
		return "NotConnected"
	case ProfileNotMatch:
		return "ProfileNotMatch"
	case WrongType:
		return "WrongType"
	case Serialization:
		return "Serialization"
	case TypeNotFound:
		return "TypeNotFound"
	case SqlCommand:
		return "SqlCommand"
	}
	return "Unknown"
}

// ServerException is one exception tuple decoded from an error response.
type ServerException struct {
	Class   string
	Message string
}

// Error is the concrete error type returned by every façade call. Wrap it
// with errors.As to recover the Kind and, for NotConnected, the decoded
// server exception list.
type Error struct {
	Kind       Kind
	Msg        string
	Exceptions []ServerException
	Cause      error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if len(e.Exceptions) > 0 {
		return fmt.Sprintf("%s: %s (%d server exceptions, first: %s: %s)", e.Kind, e.Msg, len(e.Exceptions), e.Exceptions[0].Class, e.Exceptions[0].Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds an Error of the given kind wrapping cause.
func New(k Kind, msg string, cause error) *Error {
	return &Error{Kind: k, Msg: msg, Cause: cause}
}

// Newf builds an Error of the given kind with a formatted message.
func Newf(k Kind, cause error, f string, args ...interface{}) *Error {
	return &Error{Kind: k, Msg: fmt.Sprintf(f, args...), Cause: cause}
}

// sentinel values usable with errors.Is for callers that don't care about
// the message, the same exported Err* sentinel convention as
// ingest/auth.go's ErrFailedAuth.
var (
	ErrNotConnected     = &Error{Kind: NotConnected, Msg: "not connected"}
	ErrProfileNotMatch  = &Error{Kind: ProfileNotMatch, Msg: "profile mismatch"}
	ErrWrongType        = &Error{Kind: WrongType, Msg: "wrong entity base type"}
	ErrSerialization    = &Error{Kind: Serialization, Msg: "serialization error"}
	ErrTypeNotFound     = &Error{Kind: TypeNotFound, Msg: "type not found"}
	ErrSQLCommand       = &Error{Kind: SqlCommand, Msg: "illegal query construction"}
)

// Is lets errors.Is(err, ErrNotConnected) succeed for any *Error sharing
// the same Kind, regardless of message/cause, matching how callers are
// expected to branch on error taxonomy rather than exact text.
func (e *Error) Is(target error) bool {
	var te *Error
	if errors.As(target, &te) {
		return te.Kind == e.Kind
	}
	return false
}
