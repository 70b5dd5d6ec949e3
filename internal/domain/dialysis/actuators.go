package dialysis

// PeltierStatus describes what the Peltier temperature element is doing.
type PeltierStatus string

const (
	// PeltierOff means the element is idle.
	PeltierOff PeltierStatus = "OFF"
	// PeltierAdjusting means the element is correcting dialysate temperature.
	PeltierAdjusting PeltierStatus = "ADJUSTING"
	// PeltierSafetyOff means the element was forced off by a critical state.
	PeltierSafetyOff PeltierStatus = "OFF (Safety)"
)

// AlarmStatus describes the audible alarm.
type AlarmStatus string

const (
	// AlarmSilent means no alarm sounds.
	AlarmSilent AlarmStatus = "SILENT"
	// AlarmBeep is the intermittent warning tone.
	AlarmBeep AlarmStatus = "BEEP (Warning)"
	// AlarmSiren is the continuous critical siren.
	AlarmSiren AlarmStatus = "SIREN (CRITICAL)"
)

// Operator messages shown on the info line.
const (
	InfoSystemReady  = "System Ready"
	InfoSystemReset  = "SYSTEM RESET. Going to IDLE."
	InfoIdle         = "Standby. Waiting for Start..."
	InfoNormal       = "Therapy Running Normally."
	InfoFlowWarn     = "Adjusting Pump Speed..."
	InfoTempWarn     = "Stabilizing Temperature..."
	InfoO2Warn       = "Increasing Oxygen Flow..."
	InfoCondWarn     = "Correcting Dialysate Mix..."
	InfoTempCrit     = "DANGER! Temp Critical. System Locked."
	InfoPressFail    = "DANGER! Pressure Occlusion. System Locked."
	InfoAirDetect    = "EMERGENCY! Air Bubble Detected. System Locked."
	InfoUnknownState = "UNKNOWN STATE. System Locked."
)

// Actuators is the output snapshot of one control cycle.
type Actuators struct {
	// PumpOn drives the blood pump.
	PumpOn bool `json:"pump_on"`
	// SafetyClampClosed blocks the venous line when true.
	SafetyClampClosed bool `json:"safety_clamp_closed"`
	// Peltier is the temperature element status.
	Peltier PeltierStatus `json:"peltier_status"`
	// Alarm is the audible alarm status.
	Alarm AlarmStatus `json:"alarm_status"`
	// Info is the operator message.
	Info string `json:"info_message"`
}

// InitialActuators returns the power-on actuator snapshot, before any cycle
// has been evaluated.
func InitialActuators() Actuators {
	return Actuators{
		Peltier: PeltierOff,
		Alarm:   AlarmSilent,
		Info:    InfoSystemReady,
	}
}

//nolint:gochecknoglobals // State to output table.
var outputTable = map[MachineState]Actuators{
	StateIdle: {
		Peltier: PeltierOff,
		Alarm:   AlarmSilent,
		Info:    InfoIdle,
	},
	StateNormal: {
		PumpOn:  true,
		Peltier: PeltierOff,
		Alarm:   AlarmSilent,
		Info:    InfoNormal,
	},
	StateFlowWarn: {
		PumpOn:  true,
		Peltier: PeltierOff,
		Alarm:   AlarmBeep,
		Info:    InfoFlowWarn,
	},
	StateTempWarn: {
		PumpOn:  true,
		Peltier: PeltierAdjusting,
		Alarm:   AlarmBeep,
		Info:    InfoTempWarn,
	},
	StateO2Warn: {
		PumpOn:  true,
		Peltier: PeltierOff,
		Alarm:   AlarmBeep,
		Info:    InfoO2Warn,
	},
	StateCondWarn: {
		PumpOn:  true,
		Peltier: PeltierOff,
		Alarm:   AlarmBeep,
		Info:    InfoCondWarn,
	},
	StateTempCrit: {
		SafetyClampClosed: true,
		Peltier:           PeltierSafetyOff,
		Alarm:             AlarmSiren,
		Info:              InfoTempCrit,
	},
	StatePressFail: {
		SafetyClampClosed: true,
		Peltier:           PeltierOff,
		Alarm:             AlarmSiren,
		Info:              InfoPressFail,
	},
	StateAirDetect: {
		SafetyClampClosed: true,
		Peltier:           PeltierOff,
		Alarm:             AlarmSiren,
		Info:              InfoAirDetect,
	},
}

// Outputs derives the actuator snapshot for a state. It depends on the state
// alone. A state outside the enum gets a locked fail-safe row.
func Outputs(state MachineState) Actuators {
	if out, ok := outputTable[state]; ok {
		return out
	}

	return Actuators{
		SafetyClampClosed: true,
		Peltier:           PeltierSafetyOff,
		Alarm:             AlarmSiren,
		Info:              InfoUnknownState,
	}
}
