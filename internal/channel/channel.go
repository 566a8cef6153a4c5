// internal/channel/channel.go
package channel

import (
	"context"
	"log"

	"github.com/tamzrod/wbb-modbus/internal/item"
)

// Transport is the device connection shared by every channel.
// Implementations serialize calls; one transaction is in flight at a time.
type Transport interface {
	ReadInputRegister(addr uint16) (uint16, error)
	ReadHoldingRegister(addr uint16) (uint16, error)
	WriteRegister(addr, value uint16) error

	// Reconnect drops and re-opens the connection. It must be idempotent.
	Reconnect() error
}

// Device sentinel codes.
const (
	tempNoSensor     = -32768 // also 0x8000 garbage after sign extension
	tempBrokenSensor = -32767
	percentInvalid   = 65535
)

// Channel performs single register transactions for items.
// It holds no per-transaction state and is safe for concurrent use as long
// as the transport is.
type Channel struct {
	tr  Transport
	log *log.Logger
}

// New binds a channel to a transport. A nil logger uses log.Default().
func New(tr Transport, logger *log.Logger) *Channel {
	if logger == nil {
		logger = log.Default()
	}
	return &Channel{tr: tr, log: logger}
}

// Read issues one read for it and classifies device sentinels.
// invalid=true is not an error. Temperature registers are signed.
func (c *Channel) Read(ctx context.Context, it *item.Item) (raw int, invalid bool, err error) {
	read := c.tr.ReadInputRegister
	if it.Kind.Holding() {
		read = c.tr.ReadHoldingRegister
	}

	v, err := c.do(ctx, "read", it.Address, func() (uint16, error) { return read(it.Address) })
	if err != nil {
		return 0, false, err
	}

	raw, invalid = classify(it.Format, v)
	return raw, invalid, nil
}

// ReadAux reads an auxiliary temperature input register of a derived item.
// Sentinels yield an empty Raw.
func (c *Channel) ReadAux(ctx context.Context, addr uint16) (item.Raw, error) {
	v, err := c.do(ctx, "read", addr, func() (uint16, error) { return c.tr.ReadInputRegister(addr) })
	if err != nil {
		return item.Raw{}, err
	}

	raw, invalid := classify(item.FormatTemperature, v)
	if invalid {
		return item.Raw{}, nil
	}
	return item.Some(raw), nil
}

// Write issues one write of raw to it. Items whose kind does not permit
// writes are rejected before any I/O.
func (c *Channel) Write(ctx context.Context, it *item.Item, raw int) error {
	if !it.Kind.Writable() {
		return &InvalidOperationError{Item: it.Name, Reason: "kind " + it.Kind.String() + " is read-only"}
	}
	if raw < -32768 || raw > 65535 {
		return &item.EncodeError{Item: it.Name, Value: raw, Reason: "does not fit a 16-bit register"}
	}

	_, err := c.do(ctx, "write", it.Address, func() (uint16, error) {
		return 0, c.tr.WriteRegister(it.Address, uint16(raw))
	})
	return err
}

// Fetch reads, decodes and stores one direct item.
// A sentinel stores nil and marks the item invalid. A decode error leaves the
// item untouched and is returned as is.
func (c *Channel) Fetch(ctx context.Context, it *item.Item) (changed bool, err error) {
	raw, invalid, err := c.Read(ctx, it)
	if err != nil {
		return false, err
	}
	if invalid {
		return it.Store(nil, true), nil
	}

	v, err := it.Decode(raw)
	if err != nil {
		return false, err
	}
	return it.Store(v, false), nil
}

// do runs fn, and on failure reconnects once and retries.
// The context is checked before every attempt.
func (c *Channel) do(ctx context.Context, op string, addr uint16, fn func() (uint16, error)) (uint16, error) {
	if err := ctx.Err(); err != nil {
		return 0, &TransportError{Op: op, Address: addr, Err: err}
	}

	v, err := fn()
	if err == nil {
		return v, nil
	}

	c.log.Printf("channel: %s failed, reconnecting (addr=%d): %v", op, addr, err)

	if rerr := c.tr.Reconnect(); rerr != nil {
		return 0, &TransportError{Op: op, Address: addr, Err: rerr}
	}
	if cerr := ctx.Err(); cerr != nil {
		return 0, &TransportError{Op: op, Address: addr, Err: cerr}
	}

	v, err = fn()
	if err != nil {
		return 0, &TransportError{Op: op, Address: addr, Err: err}
	}
	return v, nil
}

func classify(f item.Format, v uint16) (raw int, invalid bool) {
	switch f {
	case item.FormatTemperature:
		raw = int(int16(v))
		return raw, raw == tempNoSensor || raw == tempBrokenSensor
	case item.FormatPercentage:
		raw = int(v)
		return raw, raw == percentInvalid
	default:
		return int(v), false
	}
}
