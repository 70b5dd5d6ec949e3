package scenario

import (
	"fmt"

	"github.com/lilycand/eldig/internal/domain/dialysis"
	"github.com/lilycand/eldig/internal/service/driver"
)

// Expectation lists optional checks on a cycle result. Nil fields are not
// checked.
type Expectation struct {
	State       *dialysis.MachineState
	PumpOn      *bool
	ClampClosed *bool
	Peltier     *dialysis.PeltierStatus
	Alarm       *dialysis.AlarmStatus
	Info        *string
}

// Check compares the snapshot with the expectation and describes every
// mismatch.
func (e Expectation) Check(snapshot driver.Snapshot) []string {
	var mismatches []string

	mismatch := func(field string, want, got any) {
		mismatches = append(mismatches, fmt.Sprintf("%s: want %v, got %v", field, want, got))
	}

	if e.State != nil && *e.State != snapshot.State {
		mismatch("state", *e.State, snapshot.State)
	}

	if e.PumpOn != nil && *e.PumpOn != snapshot.Actuators.PumpOn {
		mismatch("pump_on", *e.PumpOn, snapshot.Actuators.PumpOn)
	}

	if e.ClampClosed != nil && *e.ClampClosed != snapshot.Actuators.SafetyClampClosed {
		mismatch("clamp_closed", *e.ClampClosed, snapshot.Actuators.SafetyClampClosed)
	}

	if e.Peltier != nil && *e.Peltier != snapshot.Actuators.Peltier {
		mismatch("peltier", *e.Peltier, snapshot.Actuators.Peltier)
	}

	if e.Alarm != nil && *e.Alarm != snapshot.Actuators.Alarm {
		mismatch("alarm", *e.Alarm, snapshot.Actuators.Alarm)
	}

	if e.Info != nil && *e.Info != snapshot.Actuators.Info {
		mismatch("info", *e.Info, snapshot.Actuators.Info)
	}

	return mismatches
}
