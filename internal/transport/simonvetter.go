// internal/transport/simonvetter.go
package transport

import (
	"errors"
	"fmt"
	"sync"

	"github.com/simonvetter/modbus"
)

// SimonvetterClient is a single connection through github.com/simonvetter/modbus.
type SimonvetterClient struct {
	mu     sync.Mutex
	client *modbus.ModbusClient
}

func newSimonvetter(cfg Config) (*SimonvetterClient, error) {
	mc := &modbus.ClientConfiguration{
		URL:     "tcp://" + cfg.Endpoint,
		Timeout: cfg.Timeout,
	}
	if cfg.Mode == "rtu" {
		parity, err := simonvetterParity(cfg.Serial.Parity)
		if err != nil {
			return nil, err
		}
		mc.URL = "rtu://" + cfg.Endpoint
		mc.Speed = uint(orDefault(cfg.Serial.BaudRate, 19200))
		mc.DataBits = uint(orDefault(cfg.Serial.DataBits, 8))
		mc.StopBits = uint(orDefault(cfg.Serial.StopBits, 1))
		mc.Parity = parity
	}

	client, err := modbus.NewClient(mc)
	if err != nil {
		return nil, err
	}
	if err := client.SetUnitId(cfg.UnitID); err != nil {
		return nil, err
	}
	return &SimonvetterClient{client: client}, nil
}

func (c *SimonvetterClient) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.client.Open()
}

func (c *SimonvetterClient) Reconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.client.Close()
	return c.client.Open()
}

func (c *SimonvetterClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.client.Close()
}

func (c *SimonvetterClient) ReadInputRegister(addr uint16) (uint16, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, err := c.client.ReadRegister(addr, modbus.INPUT_REGISTER)
	return v, simonvetterError(err, 4)
}

func (c *SimonvetterClient) ReadHoldingRegister(addr uint16) (uint16, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, err := c.client.ReadRegister(addr, modbus.HOLDING_REGISTER)
	return v, simonvetterError(err, 3)
}

func (c *SimonvetterClient) WriteRegister(addr, value uint16) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return simonvetterError(c.client.WriteRegister(addr, value), 6)
}

var simonvetterExceptions = []struct {
	err  error
	code byte
}{
	{modbus.ErrIllegalFunction, 1},
	{modbus.ErrIllegalDataAddress, 2},
	{modbus.ErrIllegalDataValue, 3},
	{modbus.ErrServerDeviceFailure, 4},
	{modbus.ErrAcknowledge, 5},
	{modbus.ErrServerDeviceBusy, 6},
	{modbus.ErrMemoryParityError, 8},
	{modbus.ErrGWPathUnavailable, 10},
	{modbus.ErrGWTargetFailedToRespond, 11},
}

// simonvetterError maps the library's exception sentinels to ExceptionError.
func simonvetterError(err error, fc byte) error {
	if err == nil {
		return nil
	}
	for _, e := range simonvetterExceptions {
		if errors.Is(err, e.err) {
			return &ExceptionError{FunctionCode: fc, ExceptionCode: e.code}
		}
	}
	return err
}

func simonvetterParity(p string) (uint, error) {
	switch p {
	case "", "E":
		return modbus.PARITY_EVEN, nil
	case "N":
		return modbus.PARITY_NONE, nil
	case "O":
		return modbus.PARITY_ODD, nil
	default:
		return 0, fmt.Errorf("transport: unsupported parity %q", p)
	}
}
