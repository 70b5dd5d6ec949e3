package dialysis

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestController_Scenarios walks the documented scenarios on one controller.
func TestController_Scenarios(t *testing.T) {
	t.Parallel()

	c := NewController()
	require.Equal(t, StateIdle, c.CurrentState())
	require.Equal(t, InitialActuators(), c.Actuators())

	// Idle + start -> Normal.
	cycle := c.Evaluate(Sensors{StartCmd: true})
	require.Equal(t, StateNormal, cycle.To)
	require.True(t, cycle.Actuators.PumpOn)
	require.Equal(t, AlarmSilent, cycle.Actuators.Alarm)

	// Normal + temp critical -> TempCrit.
	cycle = c.Evaluate(Sensors{Temp: SeverityCritical})
	require.Equal(t, StateTempCrit, cycle.To)
	require.False(t, cycle.Actuators.PumpOn)
	require.True(t, cycle.Actuators.SafetyClampClosed)
	require.Equal(t, AlarmSiren, cycle.Actuators.Alarm)

	// Sensors back to normal, latch holds.
	cycle = c.Evaluate(Sensors{})
	require.Equal(t, StateTempCrit, c.CurrentState())
	require.Equal(t, StageLatched, cycle.Stage)
	require.Equal(t, Outputs(StateTempCrit), c.Actuators())

	// Reset -> Idle with stale critical outputs and the reset message.
	cycle = c.Evaluate(Sensors{ResetCmd: true, Temp: SeverityCritical})
	require.Equal(t, StateIdle, c.CurrentState())
	require.Equal(t, InfoSystemReset, c.Actuators().Info)
	require.True(t, c.Actuators().SafetyClampClosed)
	require.Equal(t, Sensors{}, cycle.Sensors)

	// The next cycle re-derives the Idle row.
	c.Evaluate(cycle.Sensors)
	require.Equal(t, Outputs(StateIdle), c.Actuators())
}

// TestController_CanonicalReset checks the option reaches Evaluate.
func TestController_CanonicalReset(t *testing.T) {
	t.Parallel()

	c := NewController(WithCanonicalResetOutputs())
	c.Evaluate(Sensors{AirBubble: true})
	require.Equal(t, StateAirDetect, c.CurrentState())

	c.Evaluate(Sensors{ResetCmd: true})
	require.Equal(t, StateIdle, c.CurrentState())
	require.False(t, c.Actuators().SafetyClampClosed)
	require.Equal(t, AlarmSilent, c.Actuators().Alarm)
	require.Equal(t, InfoSystemReset, c.Actuators().Info)
}

// TestController_ResetSensors keeps StopCmd.
func TestController_ResetSensors(t *testing.T) {
	t.Parallel()

	c := NewController()
	got := c.ResetSensors(Sensors{AirBubble: true, StopCmd: true, StartCmd: true})
	require.Equal(t, Sensors{StopCmd: true}, got)
}
