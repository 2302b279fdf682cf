package errs

import "errors"

var (
	// ErrInvalid marks requests the caller can fix, such as a missing
	// question. Handlers map it to 400.
	ErrInvalid = errors.New("invalid request")
	// ErrUnavailable marks a dependency that is not configured, such as a
	// provider without an api key. Handlers map it to 500 "ai not configured".
	ErrUnavailable = errors.New("service not configured")
)
