// internal/config/config.go
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tamzrod/wbb-modbus/internal/item"
)

type Config struct {
	Device          DeviceConfig          `yaml:"device"`
	Source          SourceConfig          `yaml:"source"`
	Poll            PollConfig            `yaml:"poll"`
	HeatingCircuits HeatingCircuitsConfig `yaml:"heating_circuits"`
	Curve           CurveConfig           `yaml:"curve"`
	Metrics         MetricsConfig         `yaml:"metrics"`
	HTTP            HTTPConfig            `yaml:"http"`
}

// ---- DEVICE ----

// DeviceConfig names the heat pump. Prefix and Postfix decorate the
// device label so several heat pumps can share one metrics backend.
type DeviceConfig struct {
	Name    string `yaml:"name"`
	Prefix  string `yaml:"prefix"`
	Postfix string `yaml:"postfix"`
}

// Label returns prefix + name + postfix, joined by underscores.
func (d DeviceConfig) Label() string {
	s := d.Prefix
	for _, part := range []string{d.Name, d.Postfix} {
		if part == "" {
			continue
		}
		if s != "" {
			s += "_"
		}
		s += part
	}
	return s
}

// ---- SOURCE ----

type SourceConfig struct {
	Driver    string       `yaml:"driver"` // goburrow | simonvetter
	Mode      string       `yaml:"mode"`   // tcp | rtu
	Endpoint  string       `yaml:"endpoint"`
	UnitID    uint8        `yaml:"unit_id"`
	TimeoutMs int          `yaml:"timeout_ms"`
	Serial    SerialConfig `yaml:"serial"`
}

type SerialConfig struct {
	BaudRate int    `yaml:"baud_rate"`
	DataBits int    `yaml:"data_bits"`
	Parity   string `yaml:"parity"`
	StopBits int    `yaml:"stop_bits"`
}

// ---- POLL ----

type PollConfig struct {
	IntervalMs     int `yaml:"interval_ms"`
	CycleTimeoutMs int `yaml:"cycle_timeout_ms"`

	// Observe narrows steady-state cycles to these item names.
	// Empty polls the whole catalogue every cycle.
	Observe []string `yaml:"observe"`
}

// ---- HEATING CIRCUITS ----

// HeatingCircuitsConfig enables the optional heating circuits.
// Circuit 1 is always present.
type HeatingCircuitsConfig struct {
	HK2 bool `yaml:"hk2"`
	HK3 bool `yaml:"hk3"`
	HK4 bool `yaml:"hk4"`
	HK5 bool `yaml:"hk5"`
}

// Groups maps each optional circuit group to its flag.
func (h HeatingCircuitsConfig) Groups() map[item.Group]bool {
	return map[item.Group]bool{
		item.GroupHeatingCircuit2: h.HK2,
		item.GroupHeatingCircuit3: h.HK3,
		item.GroupHeatingCircuit4: h.HK4,
		item.GroupHeatingCircuit5: h.HK5,
	}
}

// ---- CURVE ----

// CurveConfig points at the power curve file. Empty uses the built-in curve.
type CurveConfig struct {
	File string `yaml:"file"`
}

// ---- OUTPUTS ----

type MetricsConfig struct {
	Listen string `yaml:"listen"`
	Path   string `yaml:"path"`
}

type HTTPConfig struct {
	Listen string `yaml:"listen"`
}

// Load reads a yaml (or json) config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
