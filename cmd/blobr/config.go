package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/blobr/blobr/pkg/celenium"
	"github.com/blobr/blobr/pkg/errorlog"
	"github.com/blobr/blobr/pkg/monitor"
)

const (
	outputDashboard = "dashboard"
	outputLog       = "log"
)

var (
	ErrInvalidInterval = errors.New("invalid interval: must be greater than 0")
	ErrInvalidWindow   = errors.New("invalid window: must be greater than 0")
	ErrInvalidOutput   = errors.New("invalid output: must be 'dashboard' or 'log'")
	ErrInvalidPort     = errors.New("invalid metrics port: must be between 0 and 65535")
	ErrInvalidScale    = errors.New("invalid fill rate scale: must be 'fraction' or 'percent'")
)

// Config holds all configuration for the watch command
type Config struct {
	// Application settings
	Verbose bool
	Output  string
	LogFile string

	// Monitor settings
	Network  string
	Filter   string
	Interval time.Duration
	Window   int

	// FillScale is the unit Celenium reports fill_rate in.
	FillScale monitor.FillScale

	// Data source settings
	Celenium celenium.Config

	// Error log settings
	ErrorLogPath string

	// Metrics settings
	MetricsHost string
	MetricsPort int
	Environment string
	Region      string
}

// MetricsAddr returns the formatted metrics address
func (c *Config) MetricsAddr() string {
	return fmt.Sprintf("%s:%d", c.MetricsHost, c.MetricsPort)
}

// MetricsEnabled reports whether the metrics server should be started.
func (c *Config) MetricsEnabled() bool {
	return c.MetricsPort > 0
}

// Dashboard reports whether the terminal dashboard owns stdout.
func (c *Config) Dashboard() bool {
	return c.Output == outputDashboard
}

// ProcessLogPath is where the process logger writes. Empty means stderr.
func (c *Config) ProcessLogPath() string {
	if c.Dashboard() {
		return c.LogFile
	}
	return ""
}

// EngineConfig returns the monitor engine settings.
func (c *Config) EngineConfig() monitor.Config {
	return monitor.Config{
		Interval:  c.Interval,
		Window:    c.Window,
		Filter:    monitor.NewFilter(c.Filter),
		FillScale: c.FillScale,
	}
}

// Validate checks the configuration for values the monitor cannot run with.
func (c *Config) Validate() error {
	if c.Interval <= 0 {
		return ErrInvalidInterval
	}
	if c.Window <= 0 {
		return ErrInvalidWindow
	}
	if c.Output != outputDashboard && c.Output != outputLog {
		return ErrInvalidOutput
	}
	if c.MetricsPort < 0 || c.MetricsPort > 65535 {
		return ErrInvalidPort
	}
	if c.Celenium.BaseURL == "" {
		return fmt.Errorf("no API base URL for network %q", c.Network)
	}
	return nil
}

// buildConfig builds a Config from CLI context flags
func buildConfig(c *cli.Context) (*Config, error) {
	chCfg, err := celenium.LoadConfig()
	if err != nil {
		return nil, err
	}
	network := strings.ToLower(strings.TrimSpace(c.String("network")))
	chCfg, err = chCfg.WithNetwork(network)
	if err != nil {
		return nil, err
	}

	fillScale, err := monitor.ParseFillScale(strings.TrimSpace(c.String("fill-rate-scale")))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidScale, c.String("fill-rate-scale"))
	}

	errorLogPath := c.String("error-log")
	if errorLogPath == "" {
		errorLogPath = errorlog.DefaultPath(time.Now())
	}

	cfg := &Config{
		Verbose:      c.Bool("verbose"),
		Output:       strings.ToLower(c.String("output")),
		LogFile:      c.String("log-file"),
		Network:      network,
		Filter:       c.String("filter"),
		Interval:     time.Duration(c.Int64("interval")) * time.Millisecond,
		Window:       c.Int("window"),
		FillScale:    fillScale,
		Celenium:     chCfg,
		ErrorLogPath: errorLogPath,
		MetricsHost:  c.String("metrics-host"),
		MetricsPort:  c.Int("metrics-port"),
		Environment:  c.String("environment"),
		Region:       c.String("region"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
