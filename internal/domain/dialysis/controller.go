package dialysis

// Controller owns the machine state between control cycles.
//
// A Controller is not safe for concurrent use; hosts that drive it from more
// than one goroutine must serialize calls.
type Controller struct {
	// state is the active machine state.
	state MachineState
	// actuators is the actuator snapshot of the last cycle.
	actuators Actuators
	// opts is forwarded to Evaluate.
	opts EvaluateOptions
}

// Option configures a Controller.
type Option func(*Controller)

// WithCanonicalResetOutputs makes the reset path derive the Idle outputs
// instead of keeping the previous actuator snapshot.
func WithCanonicalResetOutputs() Option {
	return func(c *Controller) {
		c.opts.CanonicalResetOutputs = true
	}
}

// NewController returns a controller in StateIdle with power-on actuators.
func NewController(opts ...Option) *Controller {
	c := &Controller{
		state:     StateIdle,
		actuators: InitialActuators(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Evaluate runs one control cycle against the owned state.
func (c *Controller) Evaluate(sensors Sensors) Cycle {
	cycle := Evaluate(c.state, sensors, c.actuators, c.opts)

	c.state = cycle.To
	c.actuators = cycle.Actuators

	return cycle
}

// CurrentState returns the latched state.
func (c *Controller) CurrentState() MachineState {
	return c.state
}

// Actuators returns the actuator snapshot of the last cycle.
func (c *Controller) Actuators() Actuators {
	return c.actuators
}

// ResetSensors applies the reset contract to sensors.
func (c *Controller) ResetSensors(sensors Sensors) Sensors {
	return sensors.Reset()
}
