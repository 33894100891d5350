package service

import (
	"errors"
	"fmt"
)

// Kind groups error codes into the classes the transport maps onto
// status codes.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	}
	return "internal"
}

// Machine readable error codes.
const (
	CodeMissingField               = "MISSING_FIELD"
	CodeInvalidItemKind            = "INVALID_ITEM_KIND"
	CodeInvalidDateFormat          = "INVALID_DATE_FORMAT"
	CodeInvalidDateRange           = "INVALID_DATE_RANGE"
	CodePastDate                   = "PAST_DATE"
	CodeInvalidGuestCount          = "INVALID_GUEST_COUNT"
	CodeInvalidStatus              = "INVALID_STATUS"
	CodeItemNotFound               = "ITEM_NOT_FOUND"
	CodeUserNotFound               = "USER_NOT_FOUND"
	CodeReservationNotFound        = "RESERVATION_NOT_FOUND"
	CodeCapacityExceeded           = "CAPACITY_EXCEEDED"
	CodeItemAlreadyReserved        = "ITEM_ALREADY_RESERVED"
	CodeItemTemporarilyUnavailable = "ITEM_TEMPORARILY_UNAVAILABLE"
	CodeInternal                   = "INTERNAL"
)

// Error is the typed failure returned by every reservation operation.
// Message is safe to show to API clients; Err carries the underlying
// cause and is only logged.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Invalid builds a validation failure.
func Invalid(code, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: fmt.Sprintf(format, args...)}
}

func notFound(code, format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: fmt.Sprintf(format, args...)}
}

func conflict(code, format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: fmt.Sprintf(format, args...)}
}

// internal wraps a storage failure with the operation it interrupted.
// Typed errors and nil pass through unchanged.
func internal(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	return &Error{Kind: KindInternal, Code: CodeInternal, Message: "failed to " + op, Err: err}
}

// AsError extracts the typed error, if any.
func AsError(err error) (*Error, bool) {
	var se *Error
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// KindOf reports the class of err.  Untyped errors are internal.
func KindOf(err error) Kind {
	if se, ok := AsError(err); ok {
		return se.Kind
	}
	return KindInternal
}

// IsKind reports whether err is a typed error of the given kind.
func IsKind(err error, k Kind) bool {
	se, ok := AsError(err)
	return ok && se.Kind == k
}

// CodeOf returns the machine readable code of err, INTERNAL for untyped errors.
func CodeOf(err error) string {
	if se, ok := AsError(err); ok {
		return se.Code
	}
	return CodeInternal
}
