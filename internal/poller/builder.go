// internal/poller/builder.go
package poller

import (
	"log"

	cfg "github.com/tamzrod/wbb-modbus/internal/config"
	"github.com/tamzrod/wbb-modbus/internal/item"
	"github.com/tamzrod/wbb-modbus/internal/transport"
)

// Build constructs a Poller and wires the transport lifecycle.
// The connection is opened once to fail fast at startup; later failures are
// handled by the channel's reconnect.
// The returned closer releases the connection.
func Build(c *cfg.Config, items []*item.Item, logger *log.Logger) (*Poller, func() error, error) {
	drv, err := transport.New(transport.Config{
		Driver:   c.Source.Driver,
		Mode:     c.Source.Mode,
		Endpoint: c.Source.Endpoint,
		UnitID:   c.Source.UnitID,
		Timeout:  c.Source.Timeout(),
		Serial: transport.Serial{
			BaudRate: c.Source.Serial.BaudRate,
			DataBits: c.Source.Serial.DataBits,
			Parity:   c.Source.Serial.Parity,
			StopBits: c.Source.Serial.StopBits,
		},
	})
	if err != nil {
		return nil, nil, err
	}

	if err := drv.Connect(); err != nil {
		return nil, nil, err
	}

	p, err := New(
		Config{
			Interval:     c.Poll.Interval(),
			CycleTimeout: c.Poll.CycleTimeout(),
			Groups:       c.HeatingCircuits.Groups(),
		},
		items,
		drv,
		logger,
	)
	if err != nil {
		_ = drv.Close()
		return nil, nil, err
	}

	return p, drv.Close, nil
}
