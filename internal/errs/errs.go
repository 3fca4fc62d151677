// Package errs defines the closed set of domain failures surfaced by the
// lookup service: NotFound, UpstreamUnavailable and Validation.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies which variant of the taxonomy an Error belongs to.
type Kind int

const (
	// KindUnknown is never attached to an *Error; KindOf returns it for foreign errors.
	KindUnknown Kind = iota
	KindNotFound
	KindUpstreamUnavailable
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindUpstreamUnavailable:
		return "upstream_unavailable"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// Error is the single domain error type. Only the fields relevant to Kind are set.
type Error struct {
	Kind Kind

	// Identifier is the entity that upstream confirmed absent (NotFound).
	Identifier string

	// StatusCode is the upstream HTTP status, 0 for transport failures (UpstreamUnavailable).
	StatusCode int

	// Message is a human readable summary.
	Message string

	// Fields holds the individual field failures (Validation).
	Fields []string

	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindNotFound:
		return fmt.Sprintf("pokemon with identifier %q not found", e.Identifier)
	case KindValidation:
		if len(e.Fields) == 0 {
			return e.Message
		}
		return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.Fields, "; "))
	default:
		if e.Err != nil {
			return fmt.Sprintf("upstream unavailable: %s: %v", e.Message, e.Err)
		}
		return "upstream unavailable: " + e.Message
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NotFound reports that upstream confirmed the identifier does not exist.
func NotFound(identifier string) *Error {
	return &Error{Kind: KindNotFound, Identifier: identifier, Message: "pokemon not found"}
}

// Unavailable reports a transport failure or a non-404 upstream status.
func Unavailable(message string, statusCode int, cause error) *Error {
	return &Error{Kind: KindUpstreamUnavailable, Message: message, StatusCode: statusCode, Err: cause}
}

// Validation reports caller input that failed local constraints.
func Validation(message string, fields ...string) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// As extracts the *Error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

func IsValidation(err error) bool {
	return KindOf(err) == KindValidation
}

func IsUnavailable(err error) bool {
	return KindOf(err) == KindUpstreamUnavailable
}
