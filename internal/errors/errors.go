// Package errors provides the structured error taxonomy shared by the card
// model, the zone registry and the controller.
package errors

import "fmt"

// Kind separates caller mistakes from malformed input data.
type Kind string

const (
	// KindConfiguration covers unknown zone, card, pile or ruleset names.
	KindConfiguration Kind = "configuration"
	// KindDataFormat covers malformed serialized state.
	KindDataFormat Kind = "data_format"
)

// Code is a machine-readable error code.
type Code string

const (
	CodeUnknownZone    Code = "UNKNOWN_ZONE"
	CodeUnknownPile    Code = "UNKNOWN_PILE"
	CodeUnknownRuleset Code = "UNKNOWN_RULESET"
	CodeInvalidCard    Code = "INVALID_CARD"
	CodeInvalidLayout  Code = "INVALID_LAYOUT"
	CodeNoActiveGame   Code = "NO_ACTIVE_GAME"
	CodeBadSelection   Code = "BAD_SELECTION"
	CodeMalformedState Code = "MALFORMED_STATE"
	CodeBadScript      Code = "BAD_SCRIPT"
)

// Error is the domain error type with structured metadata.
type Error struct {
	Kind     Kind              // Taxonomy bucket
	Code     Code              // Machine-readable error code
	Message  string            // Internal message (for logs)
	Metadata map[string]string // Additional context
	Cause    error             // Wrapped underlying error
}

// ErrConfiguration matches every configuration error through errors.Is.
var ErrConfiguration = &Error{Kind: KindConfiguration}

// ErrDataFormat matches every data format error through errors.Is.
var ErrDataFormat = &Error{Kind: KindDataFormat}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches by code when the target carries one, otherwise by kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Code != "" {
		return e.Code == t.Code
	}
	return t.Kind != "" && e.Kind == t.Kind
}

// Configuration creates a configuration error.
func Configuration(code Code, message string, metadata map[string]string) *Error {
	return &Error{
		Kind:     KindConfiguration,
		Code:     code,
		Message:  message,
		Metadata: metadata,
	}
}

// Wrap creates a configuration error with an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{
		Kind:    KindConfiguration,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// DataFormat creates a data format error wrapping cause, which may be nil.
func DataFormat(message string, cause error) *Error {
	return &Error{
		Kind:    KindDataFormat,
		Code:    CodeMalformedState,
		Message: message,
		Cause:   cause,
	}
}

// CodeOf returns the code of the first *Error in err's chain.
func CodeOf(err error) Code {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Code
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return ""
		}
		err = u.Unwrap()
	}
	return ""
}
