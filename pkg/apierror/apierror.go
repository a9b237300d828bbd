// Package apierror defines the single error type shared by the FPDS client
// packages. Failures are discriminated by Kind, not by Go type.
package apierror

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an FPDS client failure.
type Kind string

const (
	// KindValidation is bad caller input, raised before any request is made.
	KindValidation Kind = "validation"

	// KindRequest is a non-2xx HTTP response.
	KindRequest Kind = "request"

	// KindNetwork is a timeout or connection failure.
	KindNetwork Kind = "network"

	// KindParse is an empty or malformed XML payload.
	KindParse Kind = "parse"
)

// Error is the tagged error returned by the client, normalizer and validator.
// Only the fields relevant to Kind are populated.
type Error struct {
	Kind    Kind
	Message string

	// Request and Network
	URL        string
	StatusCode int

	// Validation
	Parameter   string
	Suggestions []string

	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "fpds %s error", e.Kind)

	switch e.Kind {
	case KindRequest:
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	case KindValidation:
		if e.Parameter != "" {
			fmt.Fprintf(&b, " (parameter %s)", e.Parameter)
		}
	}

	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if len(e.Suggestions) > 0 {
		fmt.Fprintf(&b, " (try: %s)", strings.Join(e.Suggestions, "; "))
	}
	return b.String()
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Validation builds a KindValidation error for the named parameter.
func Validation(parameter, message string, suggestions ...string) *Error {
	return &Error{
		Kind:        KindValidation,
		Parameter:   parameter,
		Message:     message,
		Suggestions: suggestions,
	}
}

// Request builds a KindRequest error for a non-2xx response.
func Request(url string, statusCode int, message string) *Error {
	return &Error{
		Kind:       KindRequest,
		URL:        url,
		StatusCode: statusCode,
		Message:    message,
	}
}

// Network builds a KindNetwork error wrapping the transport failure.
func Network(url string, err error) *Error {
	return &Error{
		Kind:    KindNetwork,
		URL:     url,
		Message: "request failed",
		Err:     err,
	}
}

// Parse builds a KindParse error.
func Parse(message string, err error) *Error {
	return &Error{
		Kind:    KindParse,
		Message: message,
		Err:     err,
	}
}

// KindOf returns the Kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries an *Error of the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// StatusCode returns the HTTP status of a KindRequest error, or 0.
func StatusCode(err error) int {
	var e *Error
	if errors.As(err, &e) && e.Kind == KindRequest {
		return e.StatusCode
	}
	return 0
}
