package common

import (
	"errors"
	"fmt"
)

// Sentinel errors used to classify gateway failures. Every error returned by a
// channel client matches one of them through errors.Is. A Viber error built from
// a non-2xx response matches both ErrDomain and ErrHTTPStatus.
var (
	ErrTransport  = errors.New("transport error")
	ErrHTTPStatus = errors.New("unsuccessful http status")
	ErrDomain     = errors.New("gateway error")
	ErrProtocol   = errors.New("unexpected gateway response")
)

// TransportError reports a connection level failure: DNS, connect, timeout,
// cancellation or a broken response stream.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// WrapTransport annotates err as a transport failure unless it already is one.
func WrapTransport(op string, err error) error {
	if err == nil {
		return &TransportError{Op: op, Err: ErrTransport}
	}
	var te *TransportError
	if errors.As(err, &te) {
		return err
	}
	return &TransportError{Op: op, Err: err}
}

// HTTPStatusError reports a response outside the 2xx range.
type HTTPStatusError struct {
	StatusCode int
	StatusText string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("request failed, response code: %d (%s)", e.StatusCode, e.StatusText)
}

func (e *HTTPStatusError) Is(target error) bool { return target == ErrHTTPStatus }

// ProtocolError reports a response body that did not have the shape expected
// for the operation.
type ProtocolError struct {
	Op     string
	Reason string
	// Body holds the offending response, truncated to DefaultRawBodyLimit.
	Body string
	Err  error
}

// NewProtocolError builds a ProtocolError keeping a truncated copy of body.
func NewProtocolError(op, reason, body string, cause error) *ProtocolError {
	return &ProtocolError{
		Op:     op,
		Reason: reason,
		Body:   TruncateRaw(body, DefaultRawBodyLimit),
		Err:    cause,
	}
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid response to %s: %s: %v", e.Op, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid response to %s: %s", e.Op, e.Reason)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

func (e *ProtocolError) Is(target error) bool { return target == ErrProtocol }

// Classify names the class of err for logs.
func Classify(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTransport):
		return "transport"
	case errors.Is(err, ErrDomain):
		return "domain"
	case errors.Is(err, ErrHTTPStatus):
		return "http_status"
	case errors.Is(err, ErrProtocol):
		return "protocol"
	default:
		return "unknown"
	}
}
