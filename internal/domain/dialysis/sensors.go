package dialysis

import (
	"errors"
	"fmt"
)

// Severity is the tri-state code reported by the flow, temperature, pressure
// and conductivity sensors.
type Severity uint8

const (
	// SeverityNormal is code 0.
	SeverityNormal Severity = iota
	// SeverityWarning is code 1.
	SeverityWarning
	// SeverityCritical is code 2.
	SeverityCritical
)

// ErrInvalidSeverity is returned for raw sensor codes outside {0, 1, 2}.
var ErrInvalidSeverity = errors.New("invalid severity code")

// ParseSeverityCode validates a raw sensor code.
//
// The evaluator itself never rejects a code: a Severity holding any other
// value simply matches neither warning nor critical. Hosts should validate
// codes with this function before injecting them.
func ParseSeverityCode(code int) (Severity, error) {
	switch code {
	case int(SeverityNormal), int(SeverityWarning), int(SeverityCritical):
		return Severity(code), nil
	default:
		return SeverityNormal, fmt.Errorf("%w: %d", ErrInvalidSeverity, code)
	}
}

// String returns "normal", "warning" or "critical".
func (s Severity) String() string {
	switch s {
	case SeverityNormal:
		return "normal"
	case SeverityWarning:
		return "warning"
	case SeverityCritical:
		return "critical"
	default:
		return fmt.Sprintf("Severity(%d)", uint8(s))
	}
}

// Sensors is the input snapshot of one control cycle.
type Sensors struct {
	// Flow is the blood flow code.
	Flow Severity `json:"flow_code"`
	// Temp is the dialysate temperature code.
	Temp Severity `json:"temp_code"`
	// Press is the extracorporeal pressure code.
	Press Severity `json:"press_code"`
	// Cond is the dialysate conductivity code.
	Cond Severity `json:"cond_code"`
	// SpO2Hypoxia is set when the oxygen saturation probe reports hypoxia.
	SpO2Hypoxia bool `json:"spo2_hypoxia"`
	// AirBubble is set when the air detector trips. Always fatal.
	AirBubble bool `json:"air_bubble"`

	// StartCmd requests therapy start from Idle.
	StartCmd bool `json:"start_cmd"`
	// ResetCmd unlocks a critical state and returns to Idle.
	ResetCmd bool `json:"reset_cmd"`
	// StopCmd stops therapy from Normal or a warning state.
	StopCmd bool `json:"stop_cmd"`
}

// Reset applies the reset contract: every sensor reading and the start and
// reset commands are cleared. StopCmd is left untouched.
func (s Sensors) Reset() Sensors {
	return Sensors{StopCmd: s.StopCmd}
}

// ClearCommands returns s with the three one-shot command flags cleared.
func (s Sensors) ClearCommands() Sensors {
	s.StartCmd = false
	s.ResetCmd = false
	s.StopCmd = false

	return s
}
