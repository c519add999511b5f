package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConnected indicates an operation that requires an established
	// connection was attempted without one.
	ErrNotConnected = errors.New("not connected to companion service")

	// ErrAuthExpired indicates the session was rejected twice in a row, even
	// after a renewal attempt.
	ErrAuthExpired = errors.New("session expired")
)

// ServerError carries the error message from a success:false envelope. It is
// surfaced to the caller for display and never retried automatically.
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server rejected request: %s", e.Message)
}
