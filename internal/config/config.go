package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lilycand/eldig/internal/logger"
)

// Config holds the settings shared by the eldig-sim commands.
type Config struct {
	// LogLevel is the minimum log level ("debug", "info", "warn", "error").
	LogLevel string `yaml:"log_level"`
	// CanonicalResetOutputs derives the Idle actuator row on the reset
	// path instead of keeping the previous snapshot.
	CanonicalResetOutputs bool `yaml:"canonical_reset_outputs"`
	// Monitor configures the read-only monitoring endpoints.
	Monitor Monitor `yaml:"monitor"`
	// Watch configures the remote status poller.
	Watch Watch `yaml:"watch"`
}

// Monitor holds the listen addresses of the monitoring endpoints. Empty
// addresses disable the corresponding endpoint.
type Monitor struct {
	// GRPCAddress is the listen address of the gRPC monitor and health service.
	GRPCAddress string `yaml:"grpc_address"`
	// HTTPAddress is the listen address of the HTTP status and metrics endpoint.
	HTTPAddress string `yaml:"http_address"`
	// Timeout bounds individual monitor RPCs made by clients.
	Timeout time.Duration `yaml:"timeout"`
}

// Watch configures the watcher.
type Watch struct {
	// Address is the gRPC monitor address to poll.
	Address string `yaml:"address"`
	// Interval is the delay between polls.
	Interval time.Duration `yaml:"interval"`
}

const (
	// DefaultConfigFilename is the default settings filename.
	DefaultConfigFilename = "eldig-settings.yaml"

	// DefaultTimeout is the default duration of monitor calls.
	DefaultTimeout = 5 * time.Second

	// DefaultWatchInterval is the default delay between watcher polls.
	DefaultWatchInterval = 2 * time.Second

	// DefaultFilePermissions is the permission of files written by Save.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errUnknownLogLevel is returned for unparsable log levels.
	errUnknownLogLevel = errors.New("unknown log level")
	// errNegativeDuration is returned for negative timeouts or intervals.
	errNegativeDuration = errors.New("duration must not be negative")
)

// Default returns the settings used when no file exists.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Monitor: Monitor{
			Timeout: DefaultTimeout,
		},
		Watch: Watch{
			Interval: DefaultWatchInterval,
		},
	}
}

// Load reads settings from path and validates them. An empty path means the
// default filename; when that default file does not exist, Default is
// returned. A missing file named explicitly is an error.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}

		return nil, fmt.Errorf("read settings: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(contents, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes settings to path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the settings and fills in defaults for unset values.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if _, ok := logger.ParseLogLevel(cfg.LogLevel); !ok {
		return fmt.Errorf("%w: %q", errUnknownLogLevel, cfg.LogLevel)
	}

	if cfg.Monitor.Timeout < 0 || cfg.Watch.Interval < 0 {
		return errNegativeDuration
	}

	if cfg.Monitor.Timeout == 0 {
		cfg.Monitor.Timeout = DefaultTimeout
	}

	if cfg.Watch.Interval == 0 {
		cfg.Watch.Interval = DefaultWatchInterval
	}

	for name, address := range map[string]string{
		"monitor gRPC address": cfg.Monitor.GRPCAddress,
		"monitor HTTP address": cfg.Monitor.HTTPAddress,
		"watch address":        cfg.Watch.Address,
	} {
		if address == "" {
			continue
		}

		if _, _, err := net.SplitHostPort(address); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, address, err)
		}
	}

	return nil
}
