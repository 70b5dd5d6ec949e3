package driver

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lilycand/eldig/internal/domain/dialysis"
	"github.com/lilycand/eldig/internal/logger"
)

// Snapshot is a read-only view of the driver after a cycle.
type Snapshot struct {
	// SessionID identifies the driver instance.
	SessionID string `json:"session_id"`
	// Cycles is the number of evaluated cycles.
	Cycles uint64 `json:"cycles"`
	// State is the active machine state.
	State dialysis.MachineState `json:"state"`
	// Tier is the severity class of State.
	Tier dialysis.Tier `json:"tier"`
	// Stage is the evaluator stage that decided the last cycle.
	Stage dialysis.Stage `json:"stage,omitempty"`
	// Sensors is the held sensor snapshot.
	Sensors dialysis.Sensors `json:"sensors"`
	// Actuators is the actuator snapshot of the last cycle.
	Actuators dialysis.Actuators `json:"actuators"`
	// UpdatedAt is when the last cycle ran, or when the driver was created.
	UpdatedAt time.Time `json:"updated_at"`
}

// Observer is notified after every cycle.
type Observer interface {
	ObserveCycle(ctx context.Context, snapshot Snapshot, cycle dialysis.Cycle)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, snapshot Snapshot, cycle dialysis.Cycle)

// ObserveCycle calls f.
func (f ObserverFunc) ObserveCycle(ctx context.Context, snapshot Snapshot, cycle dialysis.Cycle) {
	f(ctx, snapshot, cycle)
}

// Driver owns one controller and the sensor snapshot held between cycles.
type Driver struct {
	// controller is the safety state machine.
	controller *dialysis.Controller
	// observers are notified after each cycle, in registration order.
	observers []Observer
	// now returns the current time.
	now func() time.Time

	// cycleMu serializes whole cycles, observers included.
	cycleMu sync.Mutex
	// mu guards the fields below.
	mu sync.RWMutex
	// sensors is the held sensor snapshot.
	sensors dialysis.Sensors
	// snapshot is the view published after the last cycle.
	snapshot Snapshot
}

// Option configures a Driver.
type Option func(*Driver)

// WithObservers registers cycle observers.
func WithObservers(observers ...Observer) Option {
	return func(d *Driver) {
		d.observers = append(d.observers, observers...)
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(d *Driver) {
		if now != nil {
			d.now = now
		}
	}
}

// WithControllerOptions forwards options to the controller.
func WithControllerOptions(opts ...dialysis.Option) Option {
	return func(d *Driver) {
		d.controller = dialysis.NewController(opts...)
	}
}

// New creates a driver with a fresh controller in Idle.
func New(opts ...Option) *Driver {
	d := &Driver{
		controller: dialysis.NewController(),
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(d)
	}

	d.snapshot = Snapshot{
		SessionID: uuid.NewString(),
		State:     d.controller.CurrentState(),
		Tier:      d.controller.CurrentState().Tier(),
		Actuators: d.controller.Actuators(),
		UpdatedAt: d.now(),
	}

	return d
}

// Apply runs one cycle for an operator panel command. Command flags from the
// previous cycle are cleared before the command is injected.
func (d *Driver) Apply(ctx context.Context, cmd PanelCommand) (Snapshot, error) {
	d.cycleMu.Lock()
	defer d.cycleMu.Unlock()

	d.mu.RLock()
	held := d.sensors
	d.mu.RUnlock()

	sensors, err := cmd.Inject(held.ClearCommands())
	if err != nil {
		return d.Snapshot(), err
	}

	snapshot, cycle := d.evaluate(sensors)

	d.publish(logger.WithKV(ctx, "command", string(cmd)), snapshot, cycle)

	return snapshot, nil
}

// Step runs one cycle for an explicitly composed sensor snapshot.
func (d *Driver) Step(ctx context.Context, sensors dialysis.Sensors) Snapshot {
	d.cycleMu.Lock()
	defer d.cycleMu.Unlock()

	snapshot, cycle := d.evaluate(sensors)

	d.publish(ctx, snapshot, cycle)

	return snapshot
}

// Snapshot returns the view published after the last cycle.
func (d *Driver) Snapshot() Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.snapshot
}

// SessionID returns the driver's session identifier.
func (d *Driver) SessionID() string {
	return d.Snapshot().SessionID
}

// evaluate runs the controller and stores the result. d.cycleMu must be held.
func (d *Driver) evaluate(sensors dialysis.Sensors) (Snapshot, dialysis.Cycle) {
	cycle := d.controller.Evaluate(sensors)

	d.mu.Lock()
	defer d.mu.Unlock()

	d.sensors = cycle.Sensors
	d.snapshot = Snapshot{
		SessionID: d.snapshot.SessionID,
		Cycles:    d.snapshot.Cycles + 1,
		State:     cycle.To,
		Tier:      cycle.To.Tier(),
		Stage:     cycle.Stage,
		Sensors:   cycle.Sensors,
		Actuators: cycle.Actuators,
		UpdatedAt: d.now(),
	}

	return d.snapshot, cycle
}

// publish logs the cycle and notifies observers. d.cycleMu must be held.
func (d *Driver) publish(ctx context.Context, snapshot Snapshot, cycle dialysis.Cycle) {
	ctx = logger.WithKV(ctx, "session_id", snapshot.SessionID, "cycle", snapshot.Cycles)

	switch {
	case cycle.Stage == dialysis.StageReset:
		logger.InfoKV(ctx, "System reset", "from", cycle.From.String())
	case cycle.Changed() && cycle.To.IsCritical():
		logger.WarnKV(ctx, "Critical state latched",
			"from", cycle.From.String(),
			"to", cycle.To.String(),
			"info", cycle.Actuators.Info,
		)
	case cycle.Changed():
		logger.InfoKV(ctx, "State changed",
			"from", cycle.From.String(),
			"to", cycle.To.String(),
			"stage", string(cycle.Stage),
		)
	default:
		logger.DebugKV(ctx, "Cycle evaluated", "state", cycle.To.String(), "stage", string(cycle.Stage))
	}

	for _, observer := range d.observers {
		observer.ObserveCycle(ctx, snapshot, cycle)
	}
}
