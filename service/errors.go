package service

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a NamingError.
type ErrorKind string

const (
	// KindApplication means the request was rejected: by the server (non-200 result code) or,
	// with CodeClientInvalidParam, by argument checks before anything is sent.
	KindApplication ErrorKind = "application"
	// KindProtocol means the server answered with a response of the wrong kind (client/server skew).
	KindProtocol ErrorKind = "protocol"
	// KindRemote covers every transport, serialization or timeout failure.
	KindRemote ErrorKind = "remote"
)

// Error codes set by the client; application errors carry the server's code instead.
const (
	CodeClientInvalidParam = -400
	CodeClientDisconnect   = -401
	CodeServerError        = 500
)

const msgInvalidResponse = "server returned invalid response"

// ErrClientClosed is the Inner error of every operation attempted after NamingProxy.Close.
var ErrClientClosed = errors.New("naming client is closed")

// NamingError is the single error type returned by the naming proxy operations.
type NamingError struct {
	// Kind is the failure class (application, protocol, remote).
	Kind ErrorKind
	// Code is the server error code for application errors, a client code otherwise.
	Code int
	// Message is a human-readable message.
	Message string
	// Inner is the original cause, kept for diagnostics.
	Inner error
}

// NewApplicationError wraps a server rejection with the server's error code and message.
func NewApplicationError(code int, message string) *NamingError {
	return &NamingError{Kind: KindApplication, Code: code, Message: message}
}

// NewProtocolError reports a response whose kind does not match the request.
func NewProtocolError(message string) *NamingError {
	return &NamingError{Kind: KindProtocol, Code: CodeServerError, Message: message}
}

// NewRemoteError wraps any other failure; a *NamingError inner is returned unchanged so errors are never double wrapped.
func NewRemoteError(code int, message string, inner error) *NamingError {
	if ne := ToNamingError(inner); ne != nil {
		return ne
	}
	return &NamingError{Kind: KindRemote, Code: code, Message: message, Inner: inner}
}

func (e *NamingError) Error() string {
	if e.Inner != nil {
		return fmt.Sprintf("%s error %d: %s: %v", e.Kind, e.Code, e.Message, e.Inner)
	}
	return fmt.Sprintf("%s error %d: %s", e.Kind, e.Code, e.Message)
}

// Unwrap returns the original cause.
func (e *NamingError) Unwrap() error {
	return e.Inner
}

// ToNamingError returns the *NamingError in err's chain, or nil.
func ToNamingError(err error) *NamingError {
	var e *NamingError
	if errors.As(err, &e) {
		return e
	}
	return nil
}

// ErrorCode returns the code of the NamingError in err's chain, or 0.
func ErrorCode(err error) int {
	if e := ToNamingError(err); e != nil {
		return e.Code
	}
	return 0
}

func isKind(err error, kind ErrorKind) bool {
	e := ToNamingError(err)
	return e != nil && e.Kind == kind
}

func IsApplicationError(err error) bool {
	return isKind(err, KindApplication)
}

func IsProtocolError(err error) bool {
	return isKind(err, KindProtocol)
}

func IsRemoteError(err error) bool {
	return isKind(err, KindRemote)
}
