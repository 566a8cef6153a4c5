// internal/item/errors.go
package item

import (
	"errors"
	"fmt"
)

var (
	// ErrDecode matches every *DecodeError.
	ErrDecode = errors.New("item: decode failed")
	// ErrEncode matches every *EncodeError.
	ErrEncode = errors.New("item: encode failed")
)

// DecodeError reports a raw value that has no engineering meaning for an item.
type DecodeError struct {
	Item   string
	Raw    int
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("item %q: decode raw=%d: %s", e.Item, e.Raw, e.Reason)
}

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

// EncodeError reports an engineering value that cannot be turned into a raw register value.
type EncodeError struct {
	Item   string
	Value  any
	Reason string
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("item %q: encode value=%v: %s", e.Item, e.Value, e.Reason)
}

func (e *EncodeError) Is(target error) bool { return target == ErrEncode }
