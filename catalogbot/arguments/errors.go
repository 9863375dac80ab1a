package arguments

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies user-facing query errors.
type Kind string

const (
	KindUnknownArgument    Kind = "UNKNOWN_ARGUMENT"
	KindRepeatedSingle     Kind = "REPEATED_SINGLE"
	KindDisallowedOperator Kind = "DISALLOWED_OPERATOR"
	KindListNotAllowed     Kind = "LIST_NOT_ALLOWED"
	KindConverterFailure   Kind = "CONVERTER_FAILURE"
	KindInvalidSortField   Kind = "INVALID_SORT_FIELD"
	KindStartNotFound      Kind = "START_NOT_FOUND"
	KindNoResults          Kind = "NO_RESULTS"
)

// ArgumentError is the single error type the transport shows to users verbatim.
type ArgumentError struct {
	Kind    Kind
	Message string
	// Tokens are the offending query tokens, when the error is about specific ones.
	Tokens []string
	Err    error
}

func (e *ArgumentError) Error() string {
	return e.Message
}

func (e *ArgumentError) Unwrap() error {
	return e.Err
}

// Is matches any ArgumentError of the same kind, so the Err* values work with errors.Is.
func (e *ArgumentError) Is(target error) bool {
	t, ok := target.(*ArgumentError)
	return ok && t.Kind == e.Kind
}

var (
	ErrUnknownArgument    = &ArgumentError{Kind: KindUnknownArgument}
	ErrRepeatedSingle     = &ArgumentError{Kind: KindRepeatedSingle}
	ErrDisallowedOperator = &ArgumentError{Kind: KindDisallowedOperator}
	ErrListNotAllowed     = &ArgumentError{Kind: KindListNotAllowed}
	ErrConverterFailure   = &ArgumentError{Kind: KindConverterFailure}
	ErrInvalidSortField   = &ArgumentError{Kind: KindInvalidSortField}
	ErrStartNotFound      = &ArgumentError{Kind: KindStartNotFound}
	ErrNoResults          = &ArgumentError{Kind: KindNoResults}
)

// AsArgumentError unwraps err into an ArgumentError.
func AsArgumentError(err error) (*ArgumentError, bool) {
	var argErr *ArgumentError
	if errors.As(err, &argErr) {
		return argErr, true
	}
	return nil, false
}

func UnknownArgument(tokens ...string) *ArgumentError {
	return &ArgumentError{
		Kind:    KindUnknownArgument,
		Message: "Unknown arguments: " + strings.Join(tokens, ", "),
		Tokens:  tokens,
	}
}

func UnknownValue(name, value string) *ArgumentError {
	return &ArgumentError{
		Kind:    KindUnknownArgument,
		Message: fmt.Sprintf("Unknown value for %s: %s", name, value),
		Tokens:  []string{value},
	}
}

func RepeatedSingle(name string) *ArgumentError {
	return &ArgumentError{
		Kind:    KindRepeatedSingle,
		Message: fmt.Sprintf("Argument %s can only be given once", name),
		Tokens:  []string{name},
	}
}

func DisallowedOperator(name string, op Operator, allowed []Operator) *ArgumentError {
	names := make([]string, len(allowed))
	for i, a := range allowed {
		names[i] = string(a)
	}
	return &ArgumentError{
		Kind:    KindDisallowedOperator,
		Message: fmt.Sprintf("Operator %s is not allowed for %s (allowed: %s)", op, name, strings.Join(names, " ")),
		Tokens:  []string{name},
	}
}

func ListNotAllowed(name string) *ArgumentError {
	return &ArgumentError{
		Kind:    KindListNotAllowed,
		Message: fmt.Sprintf("Argument %s does not accept a list of values", name),
		Tokens:  []string{name},
	}
}

func ConverterFailure(name, value string, err error) *ArgumentError {
	return &ArgumentError{
		Kind:    KindConverterFailure,
		Message: fmt.Sprintf("Invalid value for %s: %s", name, value),
		Tokens:  []string{value},
		Err:     err,
	}
}

func InvalidSortField(name string) *ArgumentError {
	return &ArgumentError{
		Kind:    KindInvalidSortField,
		Message: fmt.Sprintf("Unknown sort or display field: %s", name),
		Tokens:  []string{name},
	}
}

func StartNotFound(value string) *ArgumentError {
	return &ArgumentError{
		Kind:    KindStartNotFound,
		Message: fmt.Sprintf("Could not find %s in the results", value),
		Tokens:  []string{value},
	}
}

func StartWithText() *ArgumentError {
	return &ArgumentError{
		Kind:    KindStartNotFound,
		Message: "start cannot be combined with a search text",
		Tokens:  []string{"start"},
	}
}

func NoResults() *ArgumentError {
	return &ArgumentError{
		Kind:    KindNoResults,
		Message: "No results found.",
	}
}
