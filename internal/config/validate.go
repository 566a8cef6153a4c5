// internal/config/validate.go
package config

import (
	"errors"
	"fmt"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
// Zero values that Normalize fills in are accepted.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config: nil")
	}

	// ------------------------------------------------------------
	// DEVICE
	// ------------------------------------------------------------

	for _, s := range []string{cfg.Device.Name, cfg.Device.Prefix, cfg.Device.Postfix} {
		for i := 0; i < len(s); i++ {
			if s[i] > 0x7F {
				return fmt.Errorf("device naming %q must contain ASCII characters only", s)
			}
		}
	}

	// ------------------------------------------------------------
	// SOURCE
	// ------------------------------------------------------------

	src := cfg.Source
	if src.Endpoint == "" {
		return errors.New("source.endpoint is required")
	}
	switch src.Driver {
	case "", "goburrow", "simonvetter":
	default:
		return fmt.Errorf("source.driver %q: expected goburrow or simonvetter", src.Driver)
	}
	switch src.Mode {
	case "", "tcp", "rtu":
	default:
		return fmt.Errorf("source.mode %q: expected tcp or rtu", src.Mode)
	}
	if src.TimeoutMs < 0 {
		return fmt.Errorf("source.timeout_ms must be >= 0, got %d", src.TimeoutMs)
	}
	switch src.Serial.Parity {
	case "", "N", "E", "O":
	default:
		return fmt.Errorf("source.serial.parity %q: expected N, E or O", src.Serial.Parity)
	}
	if src.Serial.BaudRate < 0 || src.Serial.DataBits < 0 || src.Serial.StopBits < 0 {
		return errors.New("source.serial values must be >= 0")
	}

	// ------------------------------------------------------------
	// POLL
	// ------------------------------------------------------------

	p := cfg.Poll
	if p.IntervalMs < 0 {
		return fmt.Errorf("poll.interval_ms must be >= 0, got %d", p.IntervalMs)
	}
	if p.CycleTimeoutMs < 0 {
		return fmt.Errorf("poll.cycle_timeout_ms must be >= 0, got %d", p.CycleTimeoutMs)
	}
	interval := p.IntervalMs
	if interval == 0 {
		interval = DefaultIntervalMs
	}
	if p.CycleTimeoutMs > interval {
		return fmt.Errorf(
			"poll.cycle_timeout_ms (%d) exceeds poll.interval_ms (%d)",
			p.CycleTimeoutMs,
			interval,
		)
	}

	seen := make(map[string]struct{}, len(p.Observe))
	for _, name := range p.Observe {
		if name == "" {
			return errors.New("poll.observe: empty item name")
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("poll.observe: duplicate item %q", name)
		}
		seen[name] = struct{}{}
	}

	// ------------------------------------------------------------
	// OUTPUTS
	// ------------------------------------------------------------

	if cfg.Metrics.Listen != "" && cfg.Metrics.Listen == cfg.HTTP.Listen {
		return fmt.Errorf("metrics.listen and http.listen both use %q", cfg.Metrics.Listen)
	}

	return nil
}
