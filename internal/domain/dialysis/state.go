package dialysis

import (
	"errors"
	"fmt"
	"strings"
)

// MachineState is the active safety state. Values are ordered by severity:
// every state at or above StateTempCrit is critical.
type MachineState int

const (
	// StateIdle is the standby state before therapy starts.
	StateIdle MachineState = iota
	// StateNormal means therapy is running without findings.
	StateNormal
	// StateFlowWarn means the blood flow sensor reports a warning.
	StateFlowWarn
	// StateTempWarn means the dialysate temperature reports a warning.
	StateTempWarn
	// StateO2Warn means the patient SpO2 probe reports hypoxia.
	StateO2Warn
	// StateCondWarn means the dialysate conductivity reports a warning.
	StateCondWarn
	// StateTempCrit is the latched critical temperature state.
	StateTempCrit
	// StatePressFail is the latched pressure occlusion state.
	StatePressFail
	// StateAirDetect is the latched air-in-line state.
	StateAirDetect

	stateCount
)

// ErrUnknownState is returned when a state name cannot be parsed.
var ErrUnknownState = errors.New("unknown machine state")

//nolint:gochecknoglobals // Lookup tables for a closed enum.
var stateNames = [stateCount]string{
	StateIdle:      "IDLE",
	StateNormal:    "NORMAL",
	StateFlowWarn:  "FLOW_WARN",
	StateTempWarn:  "TEMP_WARN",
	StateO2Warn:    "O2_WARN",
	StateCondWarn:  "COND_WARN",
	StateTempCrit:  "TEMP_CRIT",
	StatePressFail: "PRESS_FAIL",
	StateAirDetect: "AIR_DETECT",
}

// States returns every machine state in severity order.
func States() []MachineState {
	states := make([]MachineState, 0, stateCount)
	for s := StateIdle; s < stateCount; s++ {
		states = append(states, s)
	}

	return states
}

// Valid reports whether s is one of the defined states.
func (s MachineState) Valid() bool {
	return s >= StateIdle && s < stateCount
}

// String returns the upper-case state name, e.g. "TEMP_CRIT".
func (s MachineState) String() string {
	if !s.Valid() {
		return fmt.Sprintf("MachineState(%d)", int(s))
	}

	return stateNames[s]
}

// Code returns the short panel code of the state ("S0" .. "S8").
func (s MachineState) Code() string {
	return fmt.Sprintf("S%d", int(s))
}

// IsCritical reports whether s is one of the latching fatal states.
func (s MachineState) IsCritical() bool {
	return s >= StateTempCrit && s < stateCount
}

// Tier returns the severity class of the state.
func (s MachineState) Tier() Tier {
	switch {
	case s == StateIdle:
		return TierIdle
	case s == StateNormal:
		return TierNominal
	case s.IsCritical():
		return TierCritical
	default:
		return TierWarning
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s MachineState) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownState, int(s))
	}

	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *MachineState) UnmarshalText(text []byte) error {
	parsed, err := ParseMachineState(string(text))
	if err != nil {
		return err
	}

	*s = parsed

	return nil
}

// ParseMachineState accepts a state name ("temp_crit", "TEMP_CRIT") or its
// panel code ("S6").
func ParseMachineState(value string) (MachineState, error) {
	normalized := strings.ToUpper(strings.TrimSpace(value))

	for _, s := range States() {
		if normalized == s.String() || normalized == s.Code() {
			return s, nil
		}
	}

	return StateIdle, fmt.Errorf("%w: %q", ErrUnknownState, value)
}

// Tier groups states by severity for hosts that colour or branch on it.
type Tier string

const (
	// TierIdle covers StateIdle.
	TierIdle Tier = "idle"
	// TierNominal covers StateNormal.
	TierNominal Tier = "nominal"
	// TierWarning covers the four non-fatal warning states.
	TierWarning Tier = "warning"
	// TierCritical covers the latched fatal states.
	TierCritical Tier = "critical"
)
