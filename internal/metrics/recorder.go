package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lilycand/eldig/internal/domain/dialysis"
	"github.com/lilycand/eldig/internal/service/driver"
)

// Namespace prefixes every metric name.
const Namespace = "eldig"

// Recorder turns driver cycles into Prometheus metrics.
type Recorder struct {
	// cycles counts evaluated cycles by deciding stage.
	cycles *prometheus.CounterVec
	// transitions counts state changes by source and target state.
	transitions *prometheus.CounterVec
	// state is 1 for the active state and 0 for every other state.
	state *prometheus.GaugeVec
	// criticalEntries counts entries into each critical state.
	criticalEntries *prometheus.CounterVec
}

var _ driver.Observer = (*Recorder)(nil)

// NewRecorder creates the collectors and registers them with reg.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "cycles_total",
			Help:      "Evaluated control cycles by deciding stage.",
		}, []string{"stage"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "transitions_total",
			Help:      "Machine state changes by source and target state.",
		}, []string{"from", "to"}),
		state: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "machine_state",
			Help:      "1 for the active machine state, 0 otherwise.",
		}, []string{"state"}),
		criticalEntries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "critical_entries_total",
			Help:      "Entries into latched critical states.",
		}, []string{"state"}),
	}

	for _, c := range []prometheus.Collector{r.cycles, r.transitions, r.state, r.criticalEntries} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register collector: %w", err)
		}
	}

	r.setState(dialysis.StateIdle)

	return r, nil
}

// ObserveCycle implements driver.Observer.
func (r *Recorder) ObserveCycle(_ context.Context, _ driver.Snapshot, cycle dialysis.Cycle) {
	r.cycles.WithLabelValues(string(cycle.Stage)).Inc()

	if !cycle.Changed() {
		return
	}

	r.transitions.WithLabelValues(cycle.From.String(), cycle.To.String()).Inc()
	r.setState(cycle.To)

	if cycle.To.IsCritical() {
		r.criticalEntries.WithLabelValues(cycle.To.String()).Inc()
	}
}

// setState marks active as the only active state.
func (r *Recorder) setState(active dialysis.MachineState) {
	for _, s := range dialysis.States() {
		value := 0.0
		if s == active {
			value = 1
		}

		r.state.WithLabelValues(s.String()).Set(value)
	}
}
