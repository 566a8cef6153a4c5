// internal/transport/transport.go
package transport

import (
	"errors"
	"fmt"
	"time"
)

// Driver is one serialized connection to the heat pump.
// It satisfies channel.Transport.
type Driver interface {
	ReadInputRegister(addr uint16) (uint16, error)
	ReadHoldingRegister(addr uint16) (uint16, error)
	WriteRegister(addr, value uint16) error

	Connect() error
	Reconnect() error
	Close() error
}

// Serial line settings for RTU mode.
type Serial struct {
	BaudRate int
	DataBits int
	Parity   string // "N", "E" or "O"
	StopBits int
}

// Config selects and parameterizes a driver.
type Config struct {
	Driver   string // "goburrow" (default) or "simonvetter"
	Mode     string // "tcp" or "rtu"
	Endpoint string // host:port for tcp, device path for rtu
	UnitID   uint8
	Timeout  time.Duration
	Serial   Serial
}

// ExceptionError is a Modbus exception response from the device.
type ExceptionError struct {
	FunctionCode  byte
	ExceptionCode byte
}

func (e *ExceptionError) Error() string {
	return fmt.Sprintf("modbus exception: fc=%d code=%d", e.FunctionCode, e.ExceptionCode)
}

// Code exposes the exception code to status reporting.
func (e *ExceptionError) Code() uint16 { return uint16(e.ExceptionCode) }

// New creates a driver without connecting. Call Connect to fail fast.
func New(cfg Config) (Driver, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("transport: endpoint required")
	}
	switch cfg.Mode {
	case "tcp", "rtu":
	default:
		return nil, fmt.Errorf("transport: unsupported mode %q", cfg.Mode)
	}

	switch cfg.Driver {
	case "", "goburrow":
		return newGoburrow(cfg), nil
	case "simonvetter":
		return newSimonvetter(cfg)
	default:
		return nil, fmt.Errorf("transport: unknown driver %q", cfg.Driver)
	}
}

// ---- helpers ----

// unpackRegister returns the first big-endian register of a response.
func unpackRegister(data []byte) (uint16, error) {
	if len(data) < 2 {
		return 0, fmt.Errorf("modbus: short register payload (%d bytes)", len(data))
	}
	return uint16(data[0])<<8 | uint16(data[1]), nil
}
