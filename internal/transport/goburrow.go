// internal/transport/goburrow.go
package transport

import (
	"errors"
	"sync"

	"github.com/goburrow/modbus"
)

// handler is the part of the goburrow TCP and RTU handlers we drive.
type handler interface {
	modbus.ClientHandler
	Connect() error
	Close() error
}

// GoburrowClient is a single connection through github.com/goburrow/modbus.
// It serializes requests: the fieldbus is half-duplex.
type GoburrowClient struct {
	mu      sync.Mutex
	handler handler
	client  modbus.Client
}

func newGoburrow(cfg Config) *GoburrowClient {
	var h handler
	if cfg.Mode == "rtu" {
		rh := modbus.NewRTUClientHandler(cfg.Endpoint)
		rh.BaudRate = orDefault(cfg.Serial.BaudRate, 19200)
		rh.DataBits = orDefault(cfg.Serial.DataBits, 8)
		rh.StopBits = orDefault(cfg.Serial.StopBits, 1)
		rh.Parity = cfg.Serial.Parity
		if rh.Parity == "" {
			rh.Parity = "E"
		}
		rh.SlaveId = cfg.UnitID
		rh.Timeout = cfg.Timeout
		h = rh
	} else {
		th := modbus.NewTCPClientHandler(cfg.Endpoint)
		th.SlaveId = cfg.UnitID
		th.Timeout = cfg.Timeout
		h = th
	}

	return &GoburrowClient{
		handler: h,
		client:  modbus.NewClient(h),
	}
}

func (c *GoburrowClient) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handler.Connect()
}

// Reconnect closes and re-opens the connection. Close errors are ignored:
// the connection is usually already broken.
func (c *GoburrowClient) Reconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.handler.Close()
	return c.handler.Connect()
}

func (c *GoburrowClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handler.Close()
}

func (c *GoburrowClient) ReadInputRegister(addr uint16) (uint16, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	b, err := c.client.ReadInputRegisters(addr, 1)
	if err != nil {
		return 0, goburrowError(err)
	}
	return unpackRegister(b)
}

func (c *GoburrowClient) ReadHoldingRegister(addr uint16) (uint16, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	b, err := c.client.ReadHoldingRegisters(addr, 1)
	if err != nil {
		return 0, goburrowError(err)
	}
	return unpackRegister(b)
}

func (c *GoburrowClient) WriteRegister(addr, value uint16) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.client.WriteSingleRegister(addr, value)
	return goburrowError(err)
}

func goburrowError(err error) error {
	var me *modbus.ModbusError
	if errors.As(err, &me) {
		return &ExceptionError{FunctionCode: me.FunctionCode, ExceptionCode: me.ExceptionCode}
	}
	return err
}

func orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}
