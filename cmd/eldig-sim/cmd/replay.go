package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lilycand/eldig/internal/scenario"
	"github.com/lilycand/eldig/internal/service/replay"
)

// replayCmd runs a scenario file.
var replayCmd = &cobra.Command{
	Use:   "replay <scenario.yaml>",
	Short: "Replay a scripted scenario and check its expectations.",
	Long: `Run every step of a YAML scenario through a fresh machine.

Steps either name a panel command (start, air_bubble, reset, ...) or give an
explicit sensor snapshot. Optional expectations are checked after each step;
the command fails when any of them is not met.`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		cfg, err := loadSettings()
		if err != nil {
			return err
		}

		sc, err := scenario.Load(args[0])
		if err != nil {
			return err
		}

		sc.CanonicalResetOutputs = sc.CanonicalResetOutputs || cfg.CanonicalResetOutputs

		report, err := replay.Run(ctx, sc)
		if report != nil {
			printReport(cmd.OutOrStdout(), report)
		}

		return err
	},
}

// printReport writes one line per step and a summary.
func printReport(w io.Writer, report *replay.Report) {
	for i, step := range report.Steps {
		verdict := "PASS"
		if len(step.Mismatches) > 0 {
			verdict = "FAIL"
		}

		_, _ = fmt.Fprintf(w, "%3d %s %-24s %s (%s)\n", i+1, verdict, step.Name, step.Snapshot.State, step.Snapshot.State.Code())

		for _, mismatch := range step.Mismatches {
			_, _ = fmt.Fprintf(w, "      %s\n", mismatch)
		}
	}

	name := report.Scenario
	if strings.TrimSpace(name) == "" {
		name = "scenario"
	}

	_, _ = fmt.Fprintf(w, "%s: %d steps, %d failed\n", name, len(report.Steps), report.Failed())
}
