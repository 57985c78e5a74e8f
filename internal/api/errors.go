package api

import "errors"

// Fetch failure kinds. Every error returned by Client wraps exactly one of them.
var (
	// ErrRemoteUnavailable covers DNS, connect, TLS handshake, certificate
	// verification, timeouts and non-2xx upstream statuses.
	ErrRemoteUnavailable = errors.New("remote unavailable")
	// ErrMalformedResponse means the exchange succeeded but the body did not
	// have the expected shape.
	ErrMalformedResponse = errors.New("malformed response")
)
