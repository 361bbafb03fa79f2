package dsl

import (
	"errors"
	"fmt"
)

// Kind categorizes validation and evaluation failures.
type Kind string

const (
	// KindInvalidJSON indicates the input is not parseable JSON.
	KindInvalidJSON Kind = "INVALID_JSON"

	// KindSchema indicates a missing, extra or mistyped field.
	KindSchema Kind = "SCHEMA"

	// KindUnknownSecurity indicates the document's security symbol did not resolve.
	KindUnknownSecurity Kind = "UNKNOWN_SECURITY"

	// KindUnknownAttribute indicates a referenced attribute name did not resolve.
	KindUnknownAttribute Kind = "UNKNOWN_ATTRIBUTE"

	// KindMissingFact indicates no fact exists for the (attribute, security) pair.
	KindMissingFact Kind = "MISSING_FACT"

	// KindUnexpected is the catch-all for anything not otherwise classified.
	KindUnexpected Kind = "UNEXPECTED"
)

// Error codes (E200-E299), stable across releases.
const (
	ErrCodeInvalidJSON      = "E201"
	ErrCodeSchema           = "E202"
	ErrCodeUnknownSecurity  = "E203"
	ErrCodeUnknownAttribute = "E204"
	ErrCodeMissingFact      = "E205"
	ErrCodeUnexpected       = "E206"
)

// Fixed diagnostic messages.
const (
	MsgInvalidJSON = "Invalid JSON."
	MsgUnexpected  = "Something was wrong executing the DSL."
)

// Error is a validation or evaluation failure.
//
// Message is the human-readable diagnostic and is returned verbatim by
// Error(). Key carries the field, symbol or attribute name that failed, when
// there is one. Err is the underlying cause for InvalidJSON and Unexpected.
type Error struct {
	Kind    Kind
	Message string
	Key     string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// Code returns the stable error code for the kind.
func (e *Error) Code() string {
	switch e.Kind {
	case KindInvalidJSON:
		return ErrCodeInvalidJSON
	case KindSchema:
		return ErrCodeSchema
	case KindUnknownSecurity:
		return ErrCodeUnknownSecurity
	case KindUnknownAttribute:
		return ErrCodeUnknownAttribute
	case KindMissingFact:
		return ErrCodeMissingFact
	default:
		return ErrCodeUnexpected
	}
}

// KindOf returns the kind of a dsl error, or KindUnexpected for any other
// non-nil error. It returns "" for nil.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnexpected
}

// IsKind reports whether err is a dsl error of the given kind.
// Uses errors.As to handle wrapped errors.
func IsKind(err error, kind Kind) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind == kind
	}
	return false
}

// NewInvalidJSONError wraps a parse failure.
func NewInvalidJSONError(cause error) *Error {
	return &Error{Kind: KindInvalidJSON, Message: MsgInvalidJSON, Err: cause}
}

// NewSchemaError reports a structural problem with the named field.
func NewSchemaError(field, message string) *Error {
	return &Error{Kind: KindSchema, Message: message, Key: field}
}

// NewUnknownSecurityError reports an unresolvable security symbol.
func NewUnknownSecurityError(symbol string) *Error {
	return &Error{
		Kind:    KindUnknownSecurity,
		Message: fmt.Sprintf("Security (%s) could not be found.", symbol),
		Key:     symbol,
	}
}

// NewUnknownAttributeError reports an unresolvable attribute name.
func NewUnknownAttributeError(name string) *Error {
	return &Error{
		Kind:    KindUnknownAttribute,
		Message: fmt.Sprintf("Attribute (%s) could not be found.", name),
		Key:     name,
	}
}

// NewMissingFactError reports an attribute with no value for the security.
func NewMissingFactError(name string) *Error {
	return &Error{
		Kind:    KindMissingFact,
		Message: fmt.Sprintf("Value not found for %s.", name),
		Key:     name,
	}
}

// NewUnexpectedError wraps any unclassified failure behind the fixed
// catch-all message.
func NewUnexpectedError(cause error) *Error {
	return &Error{Kind: KindUnexpected, Message: MsgUnexpected, Err: cause}
}
