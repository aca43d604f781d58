package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/dimitrije/fleetdesk/internal/accessclient"
)

type ErrorKind string

const (
	KindAuthTokenMissing ErrorKind = "auth_token_missing"
	KindTransport        ErrorKind = "transport"
	KindServer           ErrorKind = "server"
	KindInvalidOperation ErrorKind = "invalid_operation"
)

// ErrClosed is returned by operations invoked after Close.
var ErrClosed = errors.New("access store is closed")

const (
	msgAuthMissing    = "You are not logged in. Please log in again."
	msgTransport      = "Could not reach the server"
	msgFieldsRequired = "All fields are required"
	msgNoSelection    = "No team member selected"
	msgOwnerRemove    = "The team owner cannot be removed"
	msgOwnerEdit      = "The team owner's privileges cannot be changed"

	msgFetchFailed    = "Failed to fetch team members"
	msgRegisterFailed = "Registration failed"
	msgRemoveFailed   = "Failed to remove team member"
	msgUpdateFailed   = "Failed to update privileges"

	msgRegistered = "Team member registered successfully! Verification email sent."
	msgRemoved    = "Team member removed successfully"
	msgUpdated    = "Privileges updated successfully"
)

// Error is the outcome of a failed store operation. Message is the text the
// store surfaced to consumers.
type Error struct {
	Kind    ErrorKind
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

func invalidOperation(op, message string) *Error {
	return &Error{Kind: KindInvalidOperation, Op: op, Message: message}
}

// classify turns a team API failure into an *Error, preferring the server's
// detail text over fallback.
func classify(op string, err error, fallback string) *Error {
	var apiErr *accessclient.APIError
	switch {
	case errors.As(err, &apiErr):
		message := apiErr.Detail
		if message == "" {
			message = fallback
		}
		return &Error{Kind: KindServer, Op: op, Status: apiErr.Status, Message: message, Err: err}
	case errors.Is(err, accessclient.ErrTransport),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return &Error{Kind: KindTransport, Op: op, Message: msgTransport, Err: err}
	default:
		return &Error{Kind: KindServer, Op: op, Message: fallback, Err: err}
	}
}
