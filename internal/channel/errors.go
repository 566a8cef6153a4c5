// internal/channel/errors.go
package channel

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport matches every *TransportError.
	ErrTransport = errors.New("channel: transport error")

	// ErrInvalidOperation matches every *InvalidOperationError.
	ErrInvalidOperation = errors.New("channel: invalid operation")
)

// TransportError is a connection, timeout or framing failure that survived
// the reconnect-and-retry attempt.
type TransportError struct {
	Op      string // "read" or "write"
	Address uint16
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s register %d: %v", e.Op, e.Address, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// InvalidOperationError rejects a request before any I/O.
type InvalidOperationError struct {
	Item   string
	Reason string
}

func (e *InvalidOperationError) Error() string {
	return fmt.Sprintf("item %q: %s", e.Item, e.Reason)
}

func (e *InvalidOperationError) Is(target error) bool { return target == ErrInvalidOperation }
