// internal/config/normalize.go
package config

import "time"

// Defaults applied by Normalize.
const (
	DefaultIntervalMs     = 30000
	DefaultCycleTimeoutMs = 10000
	DefaultTimeoutMs      = 3000
	DefaultUnitID         = 1
	DefaultPrefix         = "weishaupt_wbb"
	DefaultMetricsPath    = "/metrics"
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Device.Prefix == "" {
		cfg.Device.Prefix = DefaultPrefix
	}

	s := &cfg.Source
	if s.Driver == "" {
		s.Driver = "goburrow"
	}
	if s.Mode == "" {
		s.Mode = "tcp"
	}
	if s.UnitID == 0 {
		s.UnitID = DefaultUnitID
	}
	if s.TimeoutMs == 0 {
		s.TimeoutMs = DefaultTimeoutMs
	}
	if s.Mode == "rtu" {
		if s.Serial.BaudRate == 0 {
			s.Serial.BaudRate = 19200
		}
		if s.Serial.DataBits == 0 {
			s.Serial.DataBits = 8
		}
		if s.Serial.Parity == "" {
			s.Serial.Parity = "E"
		}
		if s.Serial.StopBits == 0 {
			s.Serial.StopBits = 1
		}
	}

	if cfg.Poll.IntervalMs == 0 {
		cfg.Poll.IntervalMs = DefaultIntervalMs
	}
	if cfg.Poll.CycleTimeoutMs == 0 {
		cfg.Poll.CycleTimeoutMs = DefaultCycleTimeoutMs
		if cfg.Poll.CycleTimeoutMs > cfg.Poll.IntervalMs {
			cfg.Poll.CycleTimeoutMs = cfg.Poll.IntervalMs
		}
	}

	if cfg.Metrics.Listen != "" && cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
}

// Interval returns the poll interval as a duration.
func (p PollConfig) Interval() time.Duration {
	return time.Duration(p.IntervalMs) * time.Millisecond
}

// CycleTimeout returns the per-cycle deadline as a duration.
func (p PollConfig) CycleTimeout() time.Duration {
	return time.Duration(p.CycleTimeoutMs) * time.Millisecond
}

// Timeout returns the transport timeout as a duration.
func (s SourceConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutMs) * time.Millisecond
}
