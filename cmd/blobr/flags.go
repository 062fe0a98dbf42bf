package main

import (
	"github.com/urfave/cli/v2"

	"github.com/blobr/blobr/pkg/celenium"
	"github.com/blobr/blobr/pkg/monitor"
)

// watchFlags returns all CLI flags for the watch command
func watchFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Enable verbose logging",
			EnvVars: []string{"VERBOSE"},
			Value:   false,
		},
		&cli.StringFlag{
			Name:    "network",
			Aliases: []string{"n"},
			Usage:   "The network to watch (mainnet, mocha or arabica)",
			EnvVars: []string{"BLOBR_NETWORK"},
			Value:   celenium.DefaultNetwork,
		},
		&cli.StringFlag{
			Name:    "filter",
			Aliases: []string{"f"},
			Usage:   "Only display blobs whose namespace ID contains this string (case-insensitive)",
			EnvVars: []string{"BLOBR_FILTER"},
		},
		&cli.Int64Flag{
			Name:    "interval",
			Aliases: []string{"i"},
			Usage:   "Polling interval in milliseconds",
			EnvVars: []string{"BLOBR_INTERVAL"},
			Value:   monitor.DefaultInterval.Milliseconds(),
		},
		&cli.IntFlag{
			Name:    "window",
			Aliases: []string{"w"},
			Usage:   "Number of latest blocks requested per poll",
			EnvVars: []string{"BLOBR_WINDOW"},
			Value:   monitor.DefaultWindow,
		},
		&cli.StringFlag{
			Name:    "fill-rate-scale",
			Usage:   "Unit of the API fill_rate value: fraction (0..1) or percent (0..100)",
			EnvVars: []string{"BLOBR_FILL_RATE_SCALE"},
			Value:   monitor.FillScaleFraction.String(),
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Where events are shown: dashboard or log",
			EnvVars: []string{"BLOBR_OUTPUT"},
			Value:   outputDashboard,
		},
		&cli.StringFlag{
			Name:    "error-log",
			Usage:   "The file error records are appended to (default: blobr-errors-<unix time>.log)",
			EnvVars: []string{"BLOBR_ERROR_LOG"},
		},
		&cli.StringFlag{
			Name:    "log-file",
			Usage:   "The file process logs are written to while the dashboard owns the terminal",
			EnvVars: []string{"BLOBR_LOG_FILE"},
			Value:   "blobr.log",
		},
		&cli.StringFlag{
			Name:    "metrics-host",
			Usage:   "The host to listen on for metrics server",
			EnvVars: []string{"METRICS_HOST"},
			Value:   "",
		},
		&cli.IntFlag{
			Name:    "metrics-port",
			Usage:   "The port to listen on for metrics server (0 disables it)",
			EnvVars: []string{"METRICS_PORT"},
			Value:   0,
		},
		&cli.StringFlag{
			Name:    "environment",
			Usage:   "Deployment environment label for metrics (e.g., 'production', 'staging')",
			EnvVars: []string{"ENVIRONMENT"},
		},
		&cli.StringFlag{
			Name:    "region",
			Usage:   "Cloud region label for metrics (e.g., 'us-east-1')",
			EnvVars: []string{"REGION"},
		},
	}
}
