package celenium

import (
	"errors"
	"fmt"
)

// Error kinds reported by Kind.
const (
	KindTransport = "transport"
	KindUpstream  = "upstream"
	KindData      = "data"
	KindUnknown   = "unknown"
)

const maxBodySnippet = 256

// ErrNotFound matches any StatusError carrying a 404.
var ErrNotFound = errors.New("not found")

// TransportError is returned when the request never produced a response
// (dial failure, timeout, cancelled context).
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: request failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Op, e.StatusCode, e.Body)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == 404
}

// DecodeError is returned when a 2xx response body is malformed or is missing
// fields the caller depends on.
type DecodeError struct {
	Op   string
	Err  error
	Body string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: malformed response: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Kind classifies err as a transport, upstream or data failure.
func Kind(err error) string {
	var (
		transportErr *TransportError
		statusErr    *StatusError
		decodeErr    *DecodeError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &transportErr):
		return KindTransport
	case errors.As(err, &statusErr):
		return KindUpstream
	case errors.As(err, &decodeErr):
		return KindData
	default:
		return KindUnknown
	}
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	return 0
}

// ResponseBody returns the (truncated) response body carried by err, if any.
func ResponseBody(err error) string {
	var (
		statusErr *StatusError
		decodeErr *DecodeError
	)
	switch {
	case errors.As(err, &statusErr):
		return statusErr.Body
	case errors.As(err, &decodeErr):
		return decodeErr.Body
	}
	return ""
}

func snippet(body []byte) string {
	if len(body) > maxBodySnippet {
		body = body[:maxBodySnippet]
	}
	return string(body)
}
