package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/blobr/blobr/pkg/celenium"
	"github.com/blobr/blobr/pkg/dashboard"
	"github.com/blobr/blobr/pkg/errorlog"
	"github.com/blobr/blobr/pkg/metrics"
	"github.com/blobr/blobr/pkg/monitor"
	"github.com/blobr/blobr/pkg/utils"
)

// healthMaxIntervals is how many intervals may pass without a completed cycle
// before /health reports unhealthy.
const healthMaxIntervals = 3

func watch(c *cli.Context) error {
	// Build configuration from CLI flags
	cfg, err := buildConfig(c)
	if err != nil {
		return fmt.Errorf("failed to build config: %w", err)
	}

	sugar, err := utils.NewSugaredLogger(cfg.Verbose, cfg.ProcessLogPath())
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer sugar.Desugar().Sync() //nolint:errcheck // best-effort flush; ignore sync errors

	sugar.Infow("config",
		"verbose", cfg.Verbose,
		"network", cfg.Network,
		"baseURL", cfg.Celenium.BaseURL,
		"filter", cfg.Filter,
		"interval", cfg.Interval,
		"window", cfg.Window,
		"fillScale", cfg.FillScale,
		"output", cfg.Output,
		"errorLog", cfg.ErrorLogPath,
		"requestTimeout", cfg.Celenium.Timeout,
		"metricsHost", cfg.MetricsHost,
		"metricsPort", cfg.MetricsPort,
		"environment", cfg.Environment,
		"region", cfg.Region,
	)

	// Initialize Prometheus metrics with labels for multi-instance filtering
	registry := prometheus.NewRegistry()
	m, err := metrics.NewWithLabels(registry, metrics.Labels{
		Network:     cfg.Network,
		Environment: cfg.Environment,
		Region:      cfg.Region,
	})
	if err != nil {
		return fmt.Errorf("failed to create metrics: %w", err)
	}

	client, err := celenium.New(cfg.Celenium)
	if err != nil {
		return fmt.Errorf("failed to create celenium client: %w", err)
	}

	errLog, err := errorlog.New(cfg.ErrorLogPath)
	if err != nil {
		return fmt.Errorf("failed to open error log: %w", err)
	}
	defer func() {
		if err := errLog.Close(); err != nil {
			sugar.Warnw("failed to close error log", "error", err)
		}
	}()

	var (
		sink  monitor.Sink
		board *dashboard.Dashboard
	)
	if cfg.Dashboard() {
		board = dashboard.New(cfg.Network, dashboard.WithErrorRecorder(errLog))
		sink = board
	} else {
		sink = utils.MultiSink{utils.NewLogSink(sugar), recorderSink{errLog}}
	}

	engine, err := monitor.NewEngine(sugar, monitor.NewInstrumentedSource(client, m), sink, cfg.EngineConfig(), m)
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return engine.Run(gctx)
	})
	if board != nil {
		g.Go(func() error {
			return board.Run(gctx, dashboard.DefaultRefresh)
		})
	}

	var metricsServer *metrics.Server
	if cfg.MetricsEnabled() {
		maxAge := healthMaxIntervals * cfg.Interval
		metricsServer = metrics.NewServer(cfg.MetricsAddr(), registry, metrics.WithHealthCheck(func() error {
			return engine.Healthy(maxAge)
		}))
		metricsErrCh := metricsServer.Start()
		if cfg.MetricsHost == "" {
			sugar.Infof("metrics server listening on http://0.0.0.0:%d/metrics", cfg.MetricsPort)
		} else {
			sugar.Infof("metrics server listening on http://%s/metrics", cfg.MetricsAddr())
		}
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return nil
			case err := <-metricsErrCh:
				if err != nil {
					return fmt.Errorf("metrics server failed: %w", err)
				}
				return nil
			}
		})
	}

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		sugar.Infow("exiting due to context cancellation")
		err = nil
	} else if err != nil {
		sugar.Errorw("run failed", "error", err)
	}

	if metricsServer != nil {
		shutdownMetrics(sugar, metricsServer)
	}

	st := engine.State()
	sugar.Infow("shutdown complete",
		"lastProcessedHeight", st.LastProcessedHeight,
		"totalBlocks", st.TotalBlocks,
		"totalBlobs", st.TotalBlobs,
		"errorsRecorded", errLog.Count(),
	)
	return err
}

// Gracefully shutdown metrics server
func shutdownMetrics(sugar *zap.SugaredLogger, s *metrics.Server) {
	sugar.Info("shutting down metrics server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		sugar.Warnw("metrics server shutdown error", "error", err)
	}
}

// recorderSink persists error events and ignores everything else. The
// dashboard records errors itself; headless runs use this instead.
type recorderSink struct {
	rec dashboard.ErrorRecorder
}

func (recorderSink) OnBlockSummary(monitor.BlockSummary) {}
func (recorderSink) OnBlobSummary(celenium.Blob) {}
func (recorderSink) OnStatsSnapshot(monitor.StatsSnapshot) {}
func (recorderSink) OnRollupList([]celenium.Rollup) {}
func (recorderSink) ClearBlobDisplay() {}

func (s recorderSink) OnError(context string, cause error) {
	s.rec.Record(context, cause)
}
