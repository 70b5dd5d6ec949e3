package replay

import (
	"context"
	"errors"
	"fmt"

	"github.com/lilycand/eldig/internal/domain/dialysis"
	"github.com/lilycand/eldig/internal/logger"
	"github.com/lilycand/eldig/internal/scenario"
	"github.com/lilycand/eldig/internal/service/driver"
)

// ErrExpectation is returned when at least one step missed its expectation.
var ErrExpectation = errors.New("scenario expectations not met")

// StepResult is the outcome of one scenario step.
type StepResult struct {
	// Name is the step label.
	Name string
	// Snapshot is the driver view after the step.
	Snapshot driver.Snapshot
	// Mismatches lists failed expectations.
	Mismatches []string
}

// Report summarises a replay.
type Report struct {
	// Scenario is the scenario name.
	Scenario string
	// Steps holds one result per step, in order.
	Steps []StepResult
}

// Failed returns the number of steps with mismatches.
func (r *Report) Failed() int {
	failed := 0

	for _, step := range r.Steps {
		if len(step.Mismatches) > 0 {
			failed++
		}
	}

	return failed
}

// Run replays sc. Extra driver options (observers, clock) are applied after
// the scenario's own controller options. The report is returned even when
// expectations fail, together with ErrExpectation.
func Run(ctx context.Context, sc *scenario.Scenario, opts ...driver.Option) (*Report, error) {
	ctx = logger.WithName(ctx, "replay")

	var controllerOptions []dialysis.Option
	if sc.CanonicalResetOutputs {
		controllerOptions = append(controllerOptions, dialysis.WithCanonicalResetOutputs())
	}

	d := driver.New(append([]driver.Option{driver.WithControllerOptions(controllerOptions...)}, opts...)...)

	report := &Report{
		Scenario: sc.Name,
		Steps:    make([]StepResult, 0, len(sc.Steps)),
	}

	logger.InfoKV(ctx, "Replaying scenario", "scenario", sc.Name, "steps", len(sc.Steps), "session_id", d.SessionID())

	for _, step := range sc.Steps {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		var snapshot driver.Snapshot

		if step.Sensors != nil {
			snapshot = d.Step(ctx, *step.Sensors)
		} else {
			var err error

			snapshot, err = d.Apply(ctx, step.Command)
			if err != nil {
				return report, fmt.Errorf("%s: %w", step.Name, err)
			}
		}

		result := StepResult{
			Name:       step.Name,
			Snapshot:   snapshot,
			Mismatches: step.Expect.Check(snapshot),
		}

		if len(result.Mismatches) > 0 {
			logger.ErrorKV(ctx, "Expectation failed", "step", step.Name, "mismatches", result.Mismatches)
		}

		report.Steps = append(report.Steps, result)
	}

	if failed := report.Failed(); failed > 0 {
		return report, fmt.Errorf("%w: %d of %d steps", ErrExpectation, failed, len(report.Steps))
	}

	logger.InfoKV(ctx, "Scenario passed", "scenario", sc.Name)

	return report, nil
}
