// internal/item/types.go
package item

// Format is the semantic unit of a register value.
// It selects the decode strategy and the presentation unit.
type Format uint8

const (
	FormatUnknown Format = iota
	FormatTemperature
	FormatEnergy
	FormatPower
	FormatPercentage
	FormatNumber
	FormatStatus
	FormatVolumeFlow
	FormatCurve
	FormatTimeMinutes
	FormatTimeHours
)

var formatNames = map[Format]string{
	FormatUnknown:     "unknown",
	FormatTemperature: "temperature",
	FormatEnergy:      "energy",
	FormatPower:       "power",
	FormatPercentage:  "percentage",
	FormatNumber:      "number",
	FormatStatus:      "status",
	FormatVolumeFlow:  "volume_flow",
	FormatCurve:       "curve",
	FormatTimeMinutes: "time_min",
	FormatTimeHours:   "time_h",
}

func (f Format) String() string {
	if s, ok := formatNames[f]; ok {
		return s
	}
	return "unknown"
}

// Unit returns the presentation unit. Status and dimensionless formats have none.
func (f Format) Unit() string {
	switch f {
	case FormatTemperature:
		return "°C"
	case FormatEnergy:
		return "kWh"
	case FormatPower:
		return "W"
	case FormatPercentage:
		return "%"
	case FormatVolumeFlow:
		return "m³/h"
	case FormatTimeMinutes:
		return "min"
	case FormatTimeHours:
		return "h"
	case FormatUnknown:
		return "?"
	default:
		return ""
	}
}

// StateClass mirrors how a host should aggregate the value.
// Energy counters only ever grow; everything numeric else is a measurement.
func (f Format) StateClass() string {
	switch f {
	case FormatEnergy:
		return "total_increasing"
	case FormatTemperature, FormatPower, FormatPercentage,
		FormatTimeHours, FormatTimeMinutes, FormatUnknown:
		return "measurement"
	default:
		return ""
	}
}

// Enumerated reports whether values are symbolic keys instead of scaled numbers.
func (f Format) Enumerated() bool { return f == FormatStatus }

// Kind is the read/write capability and computation strategy of an item.
type Kind uint8

const (
	KindSensor     Kind = iota // read-only numeric or status
	KindSensorCalc             // read-only, derived from auxiliary registers and a curve map
	KindSelect                 // read/write enum
	KindNumber                 // read/write numeric
	KindNumberRO               // read-only numeric
)

var kindNames = map[Kind]string{
	KindSensor:     "sensor",
	KindSensorCalc: "sensor_calc",
	KindSelect:     "select",
	KindNumber:     "number",
	KindNumberRO:   "number_ro",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "invalid"
}

// Writable reports whether the device accepts writes for this kind.
func (k Kind) Writable() bool { return k == KindSelect || k == KindNumber }

// Derived reports whether the item needs auxiliary registers.
func (k Kind) Derived() bool { return k == KindSensorCalc }

// Holding reports whether the item lives in the holding register table.
// Sensors are served from input registers.
func (k Kind) Holding() bool { return k.Writable() || k == KindNumberRO }

// Group is the functional device group an item belongs to.
type Group uint8

const (
	GroupUnknown Group = iota
	GroupSystem
	GroupHeatPump
	GroupHotWater
	GroupHeatingCircuit1
	GroupHeatingCircuit2
	GroupHeatingCircuit3
	GroupHeatingCircuit4
	GroupHeatingCircuit5
	GroupSecondHeatGenerator
	GroupStatistics
	GroupInputsOutputs
)

var groupNames = map[Group]string{
	GroupUnknown:             "unknown",
	GroupSystem:              "system",
	GroupHeatPump:            "heat_pump",
	GroupHotWater:            "hot_water",
	GroupHeatingCircuit1:     "heating_circuit",
	GroupHeatingCircuit2:     "heating_circuit2",
	GroupHeatingCircuit3:     "heating_circuit3",
	GroupHeatingCircuit4:     "heating_circuit4",
	GroupHeatingCircuit5:     "heating_circuit5",
	GroupSecondHeatGenerator: "second_heat_generator",
	GroupStatistics:          "statistics",
	GroupInputsOutputs:       "inputs_outputs",
}

func (g Group) String() string {
	if s, ok := groupNames[g]; ok {
		return s
	}
	return "unknown"
}

// HeatingCircuit returns the group of heating circuit n (1..5).
func HeatingCircuit(n int) Group {
	if n < 1 || n > 5 {
		return GroupUnknown
	}
	return GroupHeatingCircuit1 + Group(n-1)
}
