// internal/item/catalogue.go
package item

import "fmt"

// ---- scaling presets ----

var (
	tempStd      = &Scaling{Min: -60, Max: 100, Step: 0.1, Divider: 10}
	tempHotWater = &Scaling{Min: 30, Max: 60, Step: 0.5, Divider: 10}
	tempRoom     = &Scaling{Min: 5, Max: 30, Step: 0.5, Divider: 10}
	tempFlow     = &Scaling{Min: 20, Max: 65, Step: 0.5, Divider: 10}
	tempHeatLim  = &Scaling{Min: 0, Max: 35, Step: 0.5, Divider: 10}
	percentStd   = &Scaling{Min: 0, Max: 100, Step: 1, Divider: 1}
	energyStd    = &Scaling{Min: 0, Max: 65535, Step: 1, Divider: 1}
	powerStd     = &Scaling{Min: 0, Max: 100, Step: 1, Divider: 1}
	numberStd    = &Scaling{Min: 0, Max: 65535, Step: 1, Divider: 1}
	curveSlope   = &Scaling{Min: 0.1, Max: 3.5, Step: 0.05, Divider: 100}
	timeMinutes  = &Scaling{Min: 0, Max: 240, Step: 1, Divider: 1}
	timeHours    = &Scaling{Min: 0, Max: 65535, Step: 1, Divider: 1}
	volumeFlow   = &Scaling{Min: 0, Max: 10, Step: 0.1, Divider: 10}
	pushDuration = &Scaling{Min: 0, Max: 240, Step: 5, Divider: 1}
)

// ---- enum tables ----

var (
	operatingDisplay = MustEnumTable(
		EnumEntry{0, "undefined"},
		EnumEntry{1, "relay_test"},
		EnumEntry{3, "heating"},
		EnumEntry{4, "cooling"},
		EnumEntry{5, "hot_water"},
		EnumEntry{6, "pool"},
		EnumEntry{7, "defrost"},
		EnumEntry{8, "passive_cooling"},
		EnumEntry{9, "external_heat_source"},
		EnumEntry{10, "standby"},
		EnumEntry{11, "blocked_by_utility"},
		EnumEntry{17, "start_up"},
		EnumEntry{19, "pump_forerun"},
		EnumEntry{20, "pump_overrun"},
		EnumEntry{23, "blocked_by_error"},
	)

	errorFree = MustEnumTable(
		EnumEntry{0, "error_present"},
		EnumEntry{1, "no_error"},
	)

	systemMode = MustEnumTable(
		EnumEntry{0, "automatic"},
		EnumEntry{1, "heating"},
		EnumEntry{2, "cooling"},
		EnumEntry{3, "summer"},
		EnumEntry{4, "standby"},
		EnumEntry{5, "second_heat_generator"},
	)

	heatPumpOperation = MustEnumTable(
		EnumEntry{0, "undefined"},
		EnumEntry{1, "off"},
		EnumEntry{2, "heating"},
		EnumEntry{3, "pool"},
		EnumEntry{4, "hot_water"},
		EnumEntry{5, "cooling"},
		EnumEntry{10, "defrost"},
		EnumEntry{11, "flow_monitoring"},
		EnumEntry{24, "delayed_start"},
		EnumEntry{30, "blocked"},
	)

	heatPumpFault = MustEnumTable(
		EnumEntry{0, "off"},
		EnumEntry{1, "on"},
	)

	heatPumpConfig = MustEnumTable(
		EnumEntry{0, "off"},
		EnumEntry{1, "automatic"},
		EnumEntry{2, "manual"},
	)

	hotWaterConfig = MustEnumTable(
		EnumEntry{0, "off"},
		EnumEntry{1, "automatic"},
		EnumEntry{2, "program_1"},
		EnumEntry{3, "program_2"},
	)

	hotWaterPush = MustEnumTable(
		EnumEntry{0, "off"},
		EnumEntry{5, "on"},
	)

	circuitConfig = MustEnumTable(
		EnumEntry{0, "off"},
		EnumEntry{1, "room_sensor"},
		EnumEntry{2, "room_unit"},
		EnumEntry{3, "weather_compensated"},
	)

	circuitMode = MustEnumTable(
		EnumEntry{0, "automatic"},
		EnumEntry{1, "comfort"},
		EnumEntry{2, "normal"},
		EnumEntry{3, "reduced"},
		EnumEntry{4, "standby"},
	)

	secondGeneratorStatus = MustEnumTable(
		EnumEntry{0, "off"},
		EnumEntry{1, "on"},
		EnumEntry{2, "blocked"},
	)

	secondGeneratorConfig = MustEnumTable(
		EnumEntry{0, "off"},
		EnumEntry{1, "heating_and_hot_water"},
		EnumEntry{2, "heating_only"},
		EnumEntry{3, "hot_water_only"},
	)

	relayState = MustEnumTable(
		EnumEntry{0, "off"},
		EnumEntry{1, "on"},
	)
)

// Register addresses of the auxiliary inputs of the derived heating power item.
const (
	AddrOutdoorTemperature      uint16 = 30001
	AddrAirIntakeTemperature    uint16 = 30002
	AddrPowerRequest            uint16 = 33103
	AddrHeatPumpFlowTemperature uint16 = 33104
)

// Catalogue returns the static definition table of a WBB heat pump.
func Catalogue() []Def {
	defs := []Def{
		// ---- system ----
		{Address: AddrOutdoorTemperature, Name: "outdoor_temperature", Format: FormatTemperature, Kind: KindSensor, Group: GroupSystem, Scaling: tempStd},
		{Address: AddrAirIntakeTemperature, Name: "air_intake_temperature", Format: FormatTemperature, Kind: KindSensor, Group: GroupSystem, Scaling: tempStd},
		{Address: 30003, Name: "error_code", Format: FormatNumber, Kind: KindSensor, Group: GroupSystem, Scaling: numberStd},
		{Address: 30004, Name: "warning_code", Format: FormatNumber, Kind: KindSensor, Group: GroupSystem, Scaling: numberStd},
		{Address: 30005, Name: "error_free", Format: FormatStatus, Kind: KindSensor, Group: GroupSystem, Enum: errorFree},
		{Address: 30006, Name: "operating_display", Format: FormatStatus, Kind: KindSensor, Group: GroupSystem, Enum: operatingDisplay},
		{Address: 40001, Name: "system_operating_mode", Format: FormatStatus, Kind: KindSelect, Group: GroupSystem, Enum: systemMode},

		// ---- heat pump ----
		{Address: 33101, Name: "heat_pump_operation", Format: FormatStatus, Kind: KindSensor, Group: GroupHeatPump, Enum: heatPumpOperation},
		{Address: 33102, Name: "heat_pump_fault", Format: FormatStatus, Kind: KindSensor, Group: GroupHeatPump, Enum: heatPumpFault},
		{Address: AddrPowerRequest, Name: "power_request", Format: FormatPercentage, Kind: KindSensor, Group: GroupHeatPump, Scaling: percentStd},
		{Address: AddrHeatPumpFlowTemperature, Name: "heat_pump_flow_temperature", Format: FormatTemperature, Kind: KindSensor, Group: GroupHeatPump, Scaling: tempStd},
		{Address: 33105, Name: "heat_pump_return_temperature", Format: FormatTemperature, Kind: KindSensor, Group: GroupHeatPump, Scaling: tempStd},
		{Address: 33106, Name: "volume_flow", Format: FormatVolumeFlow, Kind: KindSensor, Group: GroupHeatPump, Scaling: volumeFlow},
		{
			Address: AddrPowerRequest,
			Name:    "heating_power",
			Format:  FormatPower,
			Kind:    KindSensorCalc,
			Group:   GroupHeatPump,
			Scaling: powerStd,
			Aux: &AuxRegisters{
				X:  AddrAirIntakeTemperature,
				X2: AddrOutdoorTemperature,
				Y:  AddrHeatPumpFlowTemperature,
			},
		},
		{Address: 43101, Name: "heat_pump_configuration", Format: FormatStatus, Kind: KindSelect, Group: GroupHeatPump, Enum: heatPumpConfig},
		{Address: 43102, Name: "heat_pump_standby_delay", Format: FormatTimeMinutes, Kind: KindNumber, Group: GroupHeatPump, Scaling: timeMinutes},
		{Address: 43103, Name: "heat_pump_manual_power", Format: FormatPercentage, Kind: KindNumber, Group: GroupHeatPump, Scaling: percentStd},

		// ---- hot water ----
		{Address: 32101, Name: "hot_water_target_temperature", Format: FormatTemperature, Kind: KindSensor, Group: GroupHotWater, Scaling: tempStd},
		{Address: 32102, Name: "hot_water_temperature", Format: FormatTemperature, Kind: KindSensor, Group: GroupHotWater, Scaling: tempStd},
		{Address: 42101, Name: "hot_water_configuration", Format: FormatStatus, Kind: KindSelect, Group: GroupHotWater, Enum: hotWaterConfig},
		{Address: 42102, Name: "hot_water_push", Format: FormatStatus, Kind: KindSelect, Group: GroupHotWater, Enum: hotWaterPush},
		{Address: 42103, Name: "hot_water_normal_temperature", Format: FormatTemperature, Kind: KindNumber, Group: GroupHotWater, Scaling: tempHotWater},
		{Address: 42104, Name: "hot_water_reduced_temperature", Format: FormatTemperature, Kind: KindNumber, Group: GroupHotWater, Scaling: tempHotWater},
		{Address: 42105, Name: "hot_water_push_duration", Format: FormatTimeMinutes, Kind: KindNumberRO, Group: GroupHotWater, Scaling: pushDuration},

		// ---- second heat generator ----
		{Address: 34101, Name: "second_generator_status", Format: FormatStatus, Kind: KindSensor, Group: GroupSecondHeatGenerator, Enum: secondGeneratorStatus},
		{Address: 34102, Name: "second_generator_operating_hours", Format: FormatTimeHours, Kind: KindSensor, Group: GroupSecondHeatGenerator, Scaling: timeHours},
		{Address: 44101, Name: "second_generator_configuration", Format: FormatStatus, Kind: KindSelect, Group: GroupSecondHeatGenerator, Enum: secondGeneratorConfig},
		{Address: 44102, Name: "second_generator_bivalence_temperature", Format: FormatTemperature, Kind: KindNumber, Group: GroupSecondHeatGenerator, Scaling: tempStd},

		// ---- statistics ----
		{Address: 36101, Name: "total_energy_today", Format: FormatEnergy, Kind: KindSensor, Group: GroupStatistics, Scaling: energyStd},
		{Address: 36102, Name: "total_energy_yesterday", Format: FormatEnergy, Kind: KindSensor, Group: GroupStatistics, Scaling: energyStd},
		{Address: 36103, Name: "total_energy_month", Format: FormatEnergy, Kind: KindSensor, Group: GroupStatistics, Scaling: energyStd},
		{Address: 36104, Name: "total_energy_year", Format: FormatEnergy, Kind: KindSensor, Group: GroupStatistics, Scaling: energyStd},
		{Address: 36201, Name: "heating_energy_today", Format: FormatEnergy, Kind: KindSensor, Group: GroupStatistics, Scaling: energyStd},
		{Address: 36301, Name: "hot_water_energy_today", Format: FormatEnergy, Kind: KindSensor, Group: GroupStatistics, Scaling: energyStd},
		{Address: 36701, Name: "compressor_operating_hours", Format: FormatTimeHours, Kind: KindSensor, Group: GroupStatistics, Scaling: timeHours},

		// ---- inputs / outputs ----
		{Address: 35101, Name: "output_circulation_pump", Format: FormatStatus, Kind: KindSensor, Group: GroupInputsOutputs, Enum: relayState},
		{Address: 35102, Name: "output_heating_pump", Format: FormatStatus, Kind: KindSensor, Group: GroupInputsOutputs, Enum: relayState},
		{Address: 35103, Name: "input_utility_lock", Format: FormatStatus, Kind: KindSensor, Group: GroupInputsOutputs, Enum: relayState},
	}

	for n := 1; n <= 5; n++ {
		defs = append(defs, heatingCircuitDefs(n)...)
	}

	return defs
}

// heatingCircuitDefs returns the registers of heating circuit n.
// Circuit blocks are 100 registers apart.
func heatingCircuitDefs(n int) []Def {
	g := HeatingCircuit(n)
	in := uint16(31001 + n*100)
	hold := uint16(41001 + n*100)
	name := func(s string) string { return fmt.Sprintf("hk%d_%s", n, s) }

	return []Def{
		{Address: in, Name: name("room_temperature"), Format: FormatTemperature, Kind: KindSensor, Group: g, Scaling: tempStd},
		{Address: in + 1, Name: name("room_target_temperature"), Format: FormatTemperature, Kind: KindSensor, Group: g, Scaling: tempStd},
		{Address: in + 2, Name: name("room_humidity"), Format: FormatPercentage, Kind: KindSensor, Group: g, Scaling: percentStd},
		{Address: in + 3, Name: name("flow_target_temperature"), Format: FormatTemperature, Kind: KindSensor, Group: g, Scaling: tempStd},
		{Address: in + 4, Name: name("flow_temperature"), Format: FormatTemperature, Kind: KindSensor, Group: g, Scaling: tempStd},
		{Address: hold, Name: name("configuration"), Format: FormatStatus, Kind: KindSelect, Group: g, Enum: circuitConfig},
		{Address: hold + 1, Name: name("operating_mode"), Format: FormatStatus, Kind: KindSelect, Group: g, Enum: circuitMode},
		{Address: hold + 4, Name: name("comfort_temperature"), Format: FormatTemperature, Kind: KindNumber, Group: g, Scaling: tempRoom},
		{Address: hold + 5, Name: name("normal_temperature"), Format: FormatTemperature, Kind: KindNumber, Group: g, Scaling: tempRoom},
		{Address: hold + 6, Name: name("reduced_temperature"), Format: FormatTemperature, Kind: KindNumber, Group: g, Scaling: tempRoom},
		{Address: hold + 7, Name: name("heating_curve"), Format: FormatCurve, Kind: KindNumber, Group: g, Scaling: curveSlope},
		{Address: hold + 8, Name: name("summer_winter_switch"), Format: FormatTemperature, Kind: KindNumber, Group: g, Scaling: tempHeatLim},
		{Address: hold + 10, Name: name("flow_max_temperature"), Format: FormatTemperature, Kind: KindNumberRO, Group: g, Scaling: tempFlow},
	}
}
