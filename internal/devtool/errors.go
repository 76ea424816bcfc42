package devtool

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Error represents a failure in the connection machinery itself: discovery,
// dialing, the socket, or the correlation layer. Faults raised by code that
// ran inside the host are RemoteFault, not Error.
type Error struct {
	// Code identifies the failure category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

// ErrorCode categorizes connection errors.
type ErrorCode string

const (
	// ErrCodeNoTargetFound indicates discovery returned no attachable page.
	ErrCodeNoTargetFound ErrorCode = "NO_TARGET_FOUND"

	// ErrCodeConnectTimeout indicates discovery or the socket handshake
	// exceeded the connect deadline.
	ErrCodeConnectTimeout ErrorCode = "CONNECT_TIMEOUT"

	// ErrCodeTransport indicates a socket read, write, or dial failure.
	ErrCodeTransport ErrorCode = "TRANSPORT_ERROR"

	// ErrCodeRequestTimeout indicates no reply arrived within the
	// per-request deadline.
	ErrCodeRequestTimeout ErrorCode = "REQUEST_TIMEOUT"

	// ErrCodeNotConnected indicates a send was attempted on a connection
	// that is already closed.
	ErrCodeNotConnected ErrorCode = "NOT_CONNECTED"

	// ErrCodeConnectionClosed indicates the connection went away while a
	// reply was still pending.
	ErrCodeConnectionClosed ErrorCode = "CONNECTION_CLOSED"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause to errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// HasCode returns true if err is (or wraps) an Error with the given code.
func HasCode(err error, code ErrorCode) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// IsNoTargetFound returns true if discovery found no attachable page.
func IsNoTargetFound(err error) bool {
	return HasCode(err, ErrCodeNoTargetFound)
}

// IsTimeout returns true for either timeout category.
func IsTimeout(err error) bool {
	return HasCode(err, ErrCodeConnectTimeout) || HasCode(err, ErrCodeRequestTimeout)
}

// RemoteFault represents an exception thrown by code evaluated inside the
// host. The connection stays usable after a RemoteFault.
type RemoteFault struct {
	// Message is the thrown value when it was a string, otherwise the
	// host's description of the exception.
	Message string

	// Raw is the host's full result payload, kept for diagnostics.
	Raw json.RawMessage
}

// Error implements the error interface.
func (e *RemoteFault) Error() string {
	return "remote fault: " + e.Message
}

// IsRemoteFault returns true if the error is an exception raised inside the
// host. Uses errors.As to handle wrapped errors.
func IsRemoteFault(err error) bool {
	var rf *RemoteFault
	return errors.As(err, &rf)
}
