// Package apierrors defines the error taxonomy shared by the gateway and its
// callers. Every failure that crosses the gateway boundary carries exactly one
// Kind plus a human-readable message; raw transport and parse errors stay
// wrapped underneath.
package apierrors

import "errors"

// Kind classifies a gateway failure.
type Kind string

const (
	// KindValidation flags malformed or missing input caught before any
	// network call is made.
	KindValidation Kind = "validation"

	// KindAuthentication flags a rejected credential or token. The gateway
	// clears the session before surfacing this kind.
	KindAuthentication Kind = "authentication"

	// KindAuthorization flags a valid token used for a disallowed
	// operation. The session is kept.
	KindAuthorization Kind = "authorization"

	// KindTransport flags a request that never reached the backend.
	KindTransport Kind = "transport"

	// KindMalformedResponse flags a reachable backend whose response body
	// could not be parsed or is missing required fields.
	KindMalformedResponse Kind = "malformed_response"

	// KindBackendDomain flags a domain-level failure the backend reported
	// explicitly, e.g. an image the classifier rejected.
	KindBackendDomain Kind = "backend_domain"
)

// Error pairs a taxonomy Kind with a message suitable for display. The
// wrapped cause, when present, is for logs only.
type Error struct {
	Kind    Kind
	Message string
	err     error
}

func (e *Error) Error() string {
	if e.err != nil {
		return e.Message + ": " + e.err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.err }

// New builds a taxonomy error with no underlying cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches a taxonomy kind and message to an underlying cause.
func Wrap(err error, kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, err: err}
}

// KindOf extracts the taxonomy kind from err, or "" when err carries none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// HasKind reports whether err carries the given taxonomy kind.
func HasKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// MessageOf returns the display message from err, falling back to the plain
// error string for errors outside the taxonomy.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
