package gateway

import "errors"

var (
	// ErrTransport wraps any failure to reach the model or read its reply.
	ErrTransport = errors.New("transport failure")
	// ErrMalformedResponse means the reply did not match the declared schema.
	ErrMalformedResponse = errors.New("malformed response")
	ErrEmptyInput        = errors.New("no project input")
	ErrUnsupportedKind   = errors.New("unsupported analysis kind")
)
