package driver

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lilycand/eldig/internal/domain/dialysis"
)

// PanelCommand is one operator action on the sensor injection panel.
type PanelCommand string

const (
	// CommandTick evaluates a cycle without injecting anything.
	CommandTick PanelCommand = "tick"
	// CommandStart sets the start command.
	CommandStart PanelCommand = "start"
	// CommandAirBubble trips the air detector.
	CommandAirBubble PanelCommand = "air_bubble"
	// CommandPressureFail sets the pressure code to critical.
	CommandPressureFail PanelCommand = "pressure_fail"
	// CommandTempCritical sets the temperature code to critical.
	CommandTempCritical PanelCommand = "temp_critical"
	// CommandTempWarning sets the temperature code to warning.
	CommandTempWarning PanelCommand = "temp_warning"
	// CommandFlowWarning sets the flow code to warning.
	CommandFlowWarning PanelCommand = "flow_warning"
	// CommandHypoxia sets the SpO2 hypoxia flag.
	CommandHypoxia PanelCommand = "hypoxia"
	// CommandCondWarning sets the conductivity code to warning.
	CommandCondWarning PanelCommand = "cond_warning"
	// CommandClearSensors applies the sensor reset contract.
	CommandClearSensors PanelCommand = "clear_sensors"
	// CommandStop sets the stop command.
	CommandStop PanelCommand = "stop"
	// CommandReset sets the reset command.
	CommandReset PanelCommand = "reset"
)

// ErrUnknownCommand is returned for unknown panel keys or names.
var ErrUnknownCommand = errors.New("unknown panel command")

// MenuEntry describes one line of the injection menu.
type MenuEntry struct {
	// Key is what the operator types.
	Key string
	// Command is the injected action.
	Command PanelCommand
	// Label is the menu text.
	Label string
}

// Menu returns the injection panel in display order.
func Menu() []MenuEntry {
	return []MenuEntry{
		{Key: "1", Command: CommandStart, Label: "START Machine"},
		{Key: "2", Command: CommandAirBubble, Label: "Simulate: AIR BUBBLE (Fatal)"},
		{Key: "3", Command: CommandPressureFail, Label: "Simulate: PRESSURE FAIL (Fatal)"},
		{Key: "4", Command: CommandTempCritical, Label: "Simulate: TEMP CRITICAL (Fatal)"},
		{Key: "5", Command: CommandTempWarning, Label: "Simulate: Temp Warning (Minor)"},
		{Key: "6", Command: CommandFlowWarning, Label: "Simulate: Flow Warning (Minor)"},
		{Key: "8", Command: CommandHypoxia, Label: "Simulate: SpO2 Hypoxia (Minor)"},
		{Key: "c", Command: CommandCondWarning, Label: "Simulate: Conductivity Warning (Minor)"},
		{Key: "7", Command: CommandClearSensors, Label: "Clear Sensors (Normal Condition)"},
		{Key: "9", Command: CommandStop, Label: "STOP Machine"},
		{Key: "0", Command: CommandReset, Label: "RESET SYSTEM (Unlock Critical)"},
		{Key: "t", Command: CommandTick, Label: "Tick (evaluate without input)"},
	}
}

// ParsePanelCommand accepts a menu key ("3") or a command name ("pressure_fail").
func ParsePanelCommand(input string) (PanelCommand, error) {
	normalized := strings.ToLower(strings.TrimSpace(input))

	for _, entry := range Menu() {
		if normalized == entry.Key || normalized == string(entry.Command) {
			return entry.Command, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownCommand, input)
}

// Inject applies the command to the held sensor snapshot. Command flags of
// the previous cycle must already be cleared.
func (c PanelCommand) Inject(sensors dialysis.Sensors) (dialysis.Sensors, error) {
	switch c {
	case CommandTick:
	case CommandStart:
		sensors.StartCmd = true
	case CommandAirBubble:
		sensors.AirBubble = true
	case CommandPressureFail:
		sensors.Press = dialysis.SeverityCritical
	case CommandTempCritical:
		sensors.Temp = dialysis.SeverityCritical
	case CommandTempWarning:
		sensors.Temp = dialysis.SeverityWarning
	case CommandFlowWarning:
		sensors.Flow = dialysis.SeverityWarning
	case CommandHypoxia:
		sensors.SpO2Hypoxia = true
	case CommandCondWarning:
		sensors.Cond = dialysis.SeverityWarning
	case CommandClearSensors:
		sensors = sensors.Reset()
	case CommandStop:
		sensors.StopCmd = true
	case CommandReset:
		sensors.ResetCmd = true
	default:
		return sensors, fmt.Errorf("%w: %q", ErrUnknownCommand, string(c))
	}

	return sensors, nil
}
