// Package clients provides the instrumented HTTP client used to reach the
// remote quote source.
package clients

import "errors"

// Infrastructure failures. The ACL layer translates them into domain errors.
var (
	// ErrCircuitOpen is returned while the circuit breaker blocks requests.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrMaxRetriesExceeded wraps the last error once every attempt failed.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")

	// ErrBodyNotReplayable is returned when a retry needs a body that cannot be rewound.
	ErrBodyNotReplayable = errors.New("request body cannot be replayed")
)
