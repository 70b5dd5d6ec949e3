package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/lilycand/eldig/internal/config"
	"github.com/lilycand/eldig/internal/logger"
	"github.com/lilycand/eldig/internal/service/simulator"
	"github.com/lilycand/eldig/internal/version"
)

var (
	// configPath stores the path to the configuration YAML file.
	configPath string
	// logLevel overrides the log level from the settings.
	logLevel string
	// noColor disables ANSI styling of console output.
	noColor bool

	// rootCmd runs the interactive simulator.
	rootCmd = &cobra.Command{
		Use:   "eldig-sim",
		Short: "Interactive hemodialysis safety controller simulator.",
		Long: `Console simulator of the hemodialysis safety state machine.

Each key from the sensor injection panel evaluates exactly one control cycle
and re-renders the machine status. Critical states stay latched until the
RESET command. Press Enter to evaluate a cycle without injecting anything and
q to quit.

When monitor addresses are configured, a read-only gRPC monitor (with the
standard health service) and an HTTP endpoint serving /status, /healthz and
/metrics run for the duration of the session.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()

			cfg, err := loadSettings()
			if err != nil {
				return err
			}

			return simulator.Run(ctx, &simulator.Options{
				Config: cfg,
				Input:  cmd.InOrStdin(),
				Output: cmd.OutOrStdout(),
				Color:  useColor(),
			})
		},
	}
)

// Execute runs the eldig-sim CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		logger.Error(context.Background(), err)
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "path to configuration file (default "+config.DefaultConfigFilename+")")
	flags.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error (overrides settings)")
	flags.BoolVar(&noColor, "no-color", false, "disable colored console output")

	rootCmd.AddCommand(replayCmd, watchCmd, configCmd)
}

// signalContext returns a context canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
}

// loadSettings reads the settings and applies the effective log level.
func loadSettings() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	level := cfg.LogLevel
	if logLevel != "" {
		level = logLevel
	}

	parsed, ok := logger.ParseLogLevel(level)
	if !ok {
		return nil, fmt.Errorf("unknown log level %q", level)
	}

	logger.SetLevel(parsed)

	return cfg, nil
}

// useColor reports whether console output should be styled.
func useColor() bool {
	return !noColor && termenv.EnvColorProfile() != termenv.Ascii
}
