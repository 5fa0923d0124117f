package events

import (
	"errors"
	"fmt"
)

// Kind classifies a request failure.
type Kind int

const (
	Unauthenticated Kind = iota + 1
	Unauthorized
	MissingBody
	MalformedEncoding
	MalformedJSON
	MissingRequiredField
	InvalidField
	SourceMismatch
	BadQueryParameter
	InternalStoreError
)

var kindNames = map[Kind]string{
	Unauthenticated:      "unauthenticated",
	Unauthorized:         "unauthorized",
	MissingBody:          "missing_body",
	MalformedEncoding:    "malformed_encoding",
	MalformedJSON:        "malformed_json",
	MissingRequiredField: "missing_required_field",
	InvalidField:         "invalid_field",
	SourceMismatch:       "source_mismatch",
	BadQueryParameter:    "bad_query_parameter",
	InternalStoreError:   "internal_store_error",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ClientFault reports whether failures of this kind are the caller's fault.
func (k Kind) ClientFault() bool {
	return k != InternalStoreError
}

// Error is a classified request failure. Reason is safe to return to the
// caller; Err carries internal detail and is only ever logged.
type Error struct {
	Kind   Kind
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Kind.String() + ": " + e.Reason + ": " + e.Err.Error()
	}
	return e.Kind.String() + ": " + e.Reason
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, reason string, err error) *Error {
	return &Error{Kind: kind, Reason: reason, Err: err}
}

func storeError(err error) *Error {
	return newError(InternalStoreError, internalErrorReason, err)
}

// KindOf returns the kind of err, or InternalStoreError for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return InternalStoreError
}

const (
	reasonNoAuthHeader  = "No Authorization header"
	reasonNoSource      = "Not authorized to submit events for any src"
	reasonMissingBody   = "Missing event body"
	reasonSrcMismatch   = "Unauthorized src"
	reasonBadTsDay      = "Bad ts_day query string arg"
	internalErrorReason = "Internal Error"
)
