package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/lilycand/eldig/internal/domain/dialysis"
	"github.com/lilycand/eldig/internal/service/driver"
)

// ErrInvalidScenario wraps every validation failure.
var ErrInvalidScenario = errors.New("invalid scenario")

// Scenario is a validated sequence of cycles.
type Scenario struct {
	// Name is a human-readable title.
	Name string
	// CanonicalResetOutputs selects the controller reset-path policy.
	CanonicalResetOutputs bool
	// Steps run in order, one cycle each.
	Steps []Step
}

// Step is one cycle. Exactly one of Command and Sensors is set.
type Step struct {
	// Name labels the step in reports. Defaults to "step N".
	Name string
	// Command is the panel command to apply.
	Command driver.PanelCommand
	// Sensors is the explicit snapshot to evaluate.
	Sensors *dialysis.Sensors
	// Expect holds the checks made after the cycle.
	Expect Expectation
}

// document is the YAML layout of a scenario file.
type document struct {
	Name                  string         `yaml:"name"`
	CanonicalResetOutputs bool           `yaml:"canonical_reset_outputs"`
	Steps                 []stepDocument `yaml:"steps"`
}

type stepDocument struct {
	Name    string               `yaml:"name"`
	Command string               `yaml:"command"`
	Sensors *sensorsDocument     `yaml:"sensors"`
	Expect  *expectationDocument `yaml:"expect"`
}

// sensorsDocument carries raw codes so they can be validated.
type sensorsDocument struct {
	FlowCode    int  `yaml:"flow_code"`
	TempCode    int  `yaml:"temp_code"`
	PressCode   int  `yaml:"press_code"`
	CondCode    int  `yaml:"cond_code"`
	SpO2Hypoxia bool `yaml:"spo2_hypoxia"`
	AirBubble   bool `yaml:"air_bubble"`
	StartCmd    bool `yaml:"start_cmd"`
	ResetCmd    bool `yaml:"reset_cmd"`
	StopCmd     bool `yaml:"stop_cmd"`
}

type expectationDocument struct {
	State       string  `yaml:"state"`
	PumpOn      *bool   `yaml:"pump_on"`
	ClampClosed *bool   `yaml:"clamp_closed"`
	Peltier     *string `yaml:"peltier"`
	Alarm       *string `yaml:"alarm"`
	Info        *string `yaml:"info"`
}

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	return Parse(data)
}

// Parse decodes and validates a scenario. Unknown keys are rejected.
func Parse(data []byte) (*Scenario, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var doc document
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidScenario)
		}

		return nil, fmt.Errorf("%w: %w", ErrInvalidScenario, err)
	}

	if len(doc.Steps) == 0 {
		return nil, fmt.Errorf("%w: no steps", ErrInvalidScenario)
	}

	result := &Scenario{
		Name:                  doc.Name,
		CanonicalResetOutputs: doc.CanonicalResetOutputs,
		Steps:                 make([]Step, 0, len(doc.Steps)),
	}

	for i, raw := range doc.Steps {
		step, err := compileStep(i, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: step %d: %w", ErrInvalidScenario, i+1, err)
		}

		result.Steps = append(result.Steps, step)
	}

	return result, nil
}

// errStepKind is returned when a step sets both or neither of command and sensors.
var errStepKind = errors.New("exactly one of command and sensors must be set")

func compileStep(index int, raw stepDocument) (Step, error) {
	step := Step{
		Name: raw.Name,
	}

	if step.Name == "" {
		step.Name = fmt.Sprintf("step %d", index+1)
	}

	if (raw.Command == "") == (raw.Sensors == nil) {
		return step, errStepKind
	}

	if raw.Command != "" {
		cmd, err := driver.ParsePanelCommand(raw.Command)
		if err != nil {
			return step, err
		}

		step.Command = cmd
	} else {
		sensors, err := raw.Sensors.toSensors()
		if err != nil {
			return step, err
		}

		step.Sensors = &sensors
	}

	if raw.Expect != nil {
		expect, err := raw.Expect.compile()
		if err != nil {
			return step, err
		}

		step.Expect = expect
	}

	return step, nil
}

func (s *sensorsDocument) toSensors() (dialysis.Sensors, error) {
	sensors := dialysis.Sensors{
		SpO2Hypoxia: s.SpO2Hypoxia,
		AirBubble:   s.AirBubble,
		StartCmd:    s.StartCmd,
		ResetCmd:    s.ResetCmd,
		StopCmd:     s.StopCmd,
	}

	var err error

	if sensors.Flow, err = parseCode("flow_code", s.FlowCode); err != nil {
		return dialysis.Sensors{}, err
	}

	if sensors.Temp, err = parseCode("temp_code", s.TempCode); err != nil {
		return dialysis.Sensors{}, err
	}

	if sensors.Press, err = parseCode("press_code", s.PressCode); err != nil {
		return dialysis.Sensors{}, err
	}

	if sensors.Cond, err = parseCode("cond_code", s.CondCode); err != nil {
		return dialysis.Sensors{}, err
	}

	return sensors, nil
}

// parseCode validates one raw sensor code.
func parseCode(field string, code int) (dialysis.Severity, error) {
	severity, err := dialysis.ParseSeverityCode(code)
	if err != nil {
		return severity, fmt.Errorf("%s: %w", field, err)
	}

	return severity, nil
}

func (e *expectationDocument) compile() (Expectation, error) {
	expect := Expectation{
		PumpOn:      e.PumpOn,
		ClampClosed: e.ClampClosed,
		Info:        e.Info,
	}

	if e.State != "" {
		state, err := dialysis.ParseMachineState(e.State)
		if err != nil {
			return expect, err
		}

		expect.State = &state
	}

	if e.Peltier != nil {
		peltier := dialysis.PeltierStatus(*e.Peltier)
		expect.Peltier = &peltier
	}

	if e.Alarm != nil {
		alarm := dialysis.AlarmStatus(*e.Alarm)
		expect.Alarm = &alarm
	}

	return expect, nil
}
