package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/lilycand/eldig/internal/service/watcher"
)

var (
	// watchInterval overrides the polling interval from the settings.
	watchInterval time.Duration
	// watchOnce prints a single status and exits.
	watchOnce bool

	// watchCmd polls a running monitor.
	watchCmd = &cobra.Command{
		Use:   "watch [monitor-address]",
		Short: "Poll a running simulator's gRPC monitor.",
		Long: `Poll the read-only gRPC monitor of a running simulator and log every
change of machine state, tier or health.

The monitor address can be provided as argument or loaded from the settings
(watch.address, then monitor.grpc_address).`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			if _, err := loadSettings(); err != nil {
				return err
			}

			var address string
			if len(args) > 0 {
				address = args[0]
			}

			return watcher.Run(ctx, &watcher.Options{
				ConfigPath: configPath,
				Address:    address,
				Interval:   watchInterval,
				Once:       watchOnce,
				Output:     cmd.OutOrStdout(),
			})
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	watchCmd.Flags().DurationVarP(&watchInterval, "interval", "i", 0, "polling interval (overrides settings)")
	watchCmd.Flags().BoolVar(&watchOnce, "once", false, "print the current status and exit")
}
