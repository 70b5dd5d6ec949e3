package dialysis

// Stage names the evaluator stage that decided a cycle.
type Stage string

const (
	// StageReset means ResetCmd forced the machine to Idle.
	StageReset Stage = "reset"
	// StageLatched means a critical state held regardless of sensors.
	StageLatched Stage = "latched"
	// StageFatalOverride means a fatal sensor condition selected a critical state.
	StageFatalOverride Stage = "fatal_override"
	// StageResolution means the normal/warning resolution selected the state.
	StageResolution Stage = "resolution"
)

// Cycle is the result of evaluating one sensor snapshot.
type Cycle struct {
	// From is the state before the cycle.
	From MachineState
	// To is the state after the cycle.
	To MachineState
	// Stage is the stage that decided To.
	Stage Stage
	// Sensors is the sensor snapshot after the cycle. On the reset path it
	// has been cleared by Sensors.Reset; otherwise it equals the input.
	Sensors Sensors
	// Actuators is the actuator snapshot after the cycle.
	Actuators Actuators
}

// Changed reports whether the cycle moved the machine to another state.
func (c Cycle) Changed() bool {
	return c.From != c.To
}

// EvaluateOptions tunes Evaluate.
type EvaluateOptions struct {
	// CanonicalResetOutputs derives the Idle outputs on the reset path
	// before overwriting the info message. When false the previous
	// actuators are kept and only the info message changes.
	CanonicalResetOutputs bool
}

// Evaluate runs one control cycle. previous is the actuator snapshot of the
// preceding cycle; it is only consulted on the reset path.
//
// Stages run in order and the first match wins: reset, critical latch,
// fatal override, normal/warning resolution. Outputs are then derived from
// the resulting state, except on the reset path.
func Evaluate(state MachineState, sensors Sensors, previous Actuators, opts EvaluateOptions) Cycle {
	cycle := Cycle{
		From:    state,
		To:      state,
		Sensors: sensors,
	}

	if sensors.ResetCmd {
		cycle.To = StateIdle
		cycle.Stage = StageReset
		cycle.Sensors = sensors.Reset()

		cycle.Actuators = previous
		if opts.CanonicalResetOutputs {
			cycle.Actuators = Outputs(StateIdle)
		}

		cycle.Actuators.Info = InfoSystemReset

		return cycle
	}

	switch {
	case state.IsCritical():
		cycle.Stage = StageLatched
	case sensors.AirBubble:
		cycle.To, cycle.Stage = StateAirDetect, StageFatalOverride
	case sensors.Press == SeverityCritical:
		cycle.To, cycle.Stage = StatePressFail, StageFatalOverride
	case sensors.Temp == SeverityCritical:
		cycle.To, cycle.Stage = StateTempCrit, StageFatalOverride
	default:
		cycle.To, cycle.Stage = resolve(state, sensors), StageResolution
	}

	cycle.Actuators = Outputs(cycle.To)

	return cycle
}

// resolve picks the next non-fatal state.
func resolve(state MachineState, sensors Sensors) MachineState {
	switch state {
	case StateIdle:
		if sensors.StartCmd {
			return StateNormal
		}

		return StateIdle
	case StateNormal, StateFlowWarn, StateTempWarn, StateO2Warn, StateCondWarn:
		switch {
		case sensors.StopCmd:
			return StateIdle
		case sensors.Flow == SeverityWarning:
			return StateFlowWarn
		case sensors.Temp == SeverityWarning:
			return StateTempWarn
		case sensors.SpO2Hypoxia:
			return StateO2Warn
		case sensors.Cond == SeverityWarning:
			return StateCondWarn
		default:
			return StateNormal
		}
	case StateTempCrit, StatePressFail, StateAirDetect:
		return state
	default:
		return state
	}
}
