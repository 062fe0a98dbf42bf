package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/blobr/blobr/pkg/celenium"
	"github.com/blobr/blobr/pkg/metrics"
	"go.uber.org/zap"
)

// DefaultInterval is the default time between two cycles.
const DefaultInterval = 7 * time.Second

var (
	ErrInvalidLogger   = errors.New("invalid logger: must not be nil")
	ErrInvalidSource   = errors.New("invalid source: must not be nil")
	ErrInvalidSink     = errors.New("invalid sink: must not be nil")
	ErrInvalidInterval = errors.New("invalid interval: must be greater than 0")
	ErrInvalidWindow   = errors.New("invalid window: must be greater than 0")
)

type Config struct {
	Interval  time.Duration
	Window    int
	Filter    Filter
	FillScale FillScale
}

// Engine owns the aggregation State and drives one cycle per interval.
type Engine struct {
	sugar   *zap.SugaredLogger
	src     Source
	sink    Sink
	cfg     Config
	metrics *metrics.Metrics

	// mu guards state and lastCycle for readers outside the run loop. Cycles
	// themselves are never concurrent.
	mu        sync.RWMutex
	state     State
	lastCycle time.Time
}

// NewEngine creates an engine. m may be nil.
func NewEngine(sugar *zap.SugaredLogger, src Source, sink Sink, cfg Config, m *metrics.Metrics) (*Engine, error) {
	if sugar == nil {
		return nil, ErrInvalidLogger
	}
	if src == nil {
		return nil, ErrInvalidSource
	}
	if sink == nil {
		return nil, ErrInvalidSink
	}
	if cfg.Interval <= 0 {
		return nil, ErrInvalidInterval
	}
	if cfg.Window <= 0 {
		return nil, ErrInvalidWindow
	}

	return &Engine{
		sugar:   sugar,
		src:     src,
		sink:    sink,
		cfg:     cfg,
		metrics: m,
	}, nil
}

// State returns a copy of the current aggregation state.
func (e *Engine) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// LastCycle returns when the most recent cycle completed, or the zero time.
func (e *Engine) LastCycle() time.Time {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lastCycle
}

// Healthy reports an error when no cycle has completed within maxAge.
func (e *Engine) Healthy(maxAge time.Duration) error {
	last := e.LastCycle()
	if last.IsZero() {
		return errors.New("no cycle completed yet")
	}
	if age := time.Since(last); age > maxAge {
		return fmt.Errorf("last cycle completed %s ago", age.Truncate(time.Second))
	}
	return nil
}

// Prime fetches the rollup list once so the sink has something to show
// before the first cycle finishes.
func (e *Engine) Prime(ctx context.Context) []Event {
	ctx = context.WithoutCancel(ctx)
	st := e.State()

	var events []Event
	rollups, err := e.src.Rollups(ctx)
	if err != nil {
		events = append(events, ErrorEvent{Op: celenium.OpRollups, Err: err})
	} else {
		st.ActiveRollups = len(rollups)
		events = append(events, RollupsEvent{Rollups: rollups})
	}
	events = append(events, StatsEvent{Stats: st.Snapshot()})

	e.mu.Lock()
	e.state = st
	e.mu.Unlock()

	e.deliver(events)
	e.account(events)
	e.metrics.UpdateState(st.LastProcessedHeight, st.ActiveRollups)
	return events
}

// Cycle runs a single cycle to completion, delivers its events and returns
// them. Cancellation of ctx does not interrupt a cycle in progress.
func (e *Engine) Cycle(ctx context.Context) []Event {
	start := time.Now()
	prev := e.State()

	next, events := RunCycle(context.WithoutCancel(ctx), e.src, prev, CycleOptions{
		Window:    e.cfg.Window,
		Filter:    e.cfg.Filter,
		FillScale: e.cfg.FillScale,
	})

	e.mu.Lock()
	e.state = next
	e.lastCycle = time.Now()
	e.mu.Unlock()

	e.deliver(events)

	if skipped := skippedBlocks(prev.LastProcessedHeight, events); skipped > 0 {
		e.metrics.AddSkippedBlocks(skipped)
		e.sugar.Warnw("blocks skipped: gap since last cycle exceeds window",
			"skipped", skipped,
			"lastProcessedHeight", prev.LastProcessedHeight,
			"window", e.cfg.Window,
		)
	}

	displayed, failed := e.account(events)

	elapsed := time.Since(start)
	newBlocks := next.TotalBlocks - prev.TotalBlocks
	e.metrics.RecordCycle(elapsed.Seconds(), newBlocks, next.TotalBlobs-prev.TotalBlobs, uint64(displayed))
	e.metrics.UpdateState(next.LastProcessedHeight, next.ActiveRollups)

	e.sugar.Debugw("cycle complete",
		"newBlocks", newBlocks,
		"blobsDisplayed", displayed,
		"errors", failed,
		"lastProcessedHeight", next.LastProcessedHeight,
		"totalBlocks", next.TotalBlocks,
		"totalBlobs", next.TotalBlobs,
		"duration", elapsed,
	)
	return events
}

// Run primes the sink, runs a cycle immediately and then one per interval
// until ctx is cancelled. It returns nil on cancellation.
func (e *Engine) Run(ctx context.Context) error {
	e.sugar.Infow("monitor started",
		"interval", e.cfg.Interval,
		"window", e.cfg.Window,
		"filter", e.cfg.Filter.String(),
		"fill_scale", e.cfg.FillScale.String(),
	)

	e.Prime(ctx)
	if ctx.Err() != nil {
		return nil
	}
	e.Cycle(ctx)

	t := time.NewTicker(e.cfg.Interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return e.stopped()
		case <-t.C:
			// A tick may already be pending when a slow cycle returns after
			// cancellation; select picks among ready cases at random.
			if ctx.Err() != nil {
				return e.stopped()
			}
			e.Cycle(ctx)
		}
	}
}

func (e *Engine) stopped() error {
	st := e.State()
	e.sugar.Infow("monitor stopped",
		"lastProcessedHeight", st.LastProcessedHeight,
		"totalBlocks", st.TotalBlocks,
		"totalBlobs", st.TotalBlobs,
	)
	return nil
}

// account logs and counts every error event and returns how many blob
// summaries and errors events holds.
func (e *Engine) account(events []Event) (displayed, failed int) {
	for _, ev := range events {
		switch ev := ev.(type) {
		case BlobEvent:
			displayed++
		case ErrorEvent:
			failed++
			kind := celenium.Kind(ev.Err)
			e.metrics.IncError(ev.Op, kind)
			e.sugar.Warnw("fetch error",
				"op", ev.Op,
				"kind", kind,
				"context", ev.Context(),
				"error", ev.Err,
			)
		}
	}
	return displayed, failed
}

// skippedBlocks returns how many heights lie between lastProcessed and the
// lowest height this cycle touched. Nothing is reported before the first
// processed block.
func skippedBlocks(lastProcessed uint64, events []Event) uint64 {
	if lastProcessed == 0 {
		return 0
	}
	var lowest uint64
	for _, ev := range events {
		var h uint64
		switch ev := ev.(type) {
		case BlockEvent:
			h = ev.Block.Height
		case ErrorEvent:
			if ev.Op != celenium.OpBlockStats || !ev.HasHeight {
				continue
			}
			h = ev.Height
		default:
			continue
		}
		if lowest == 0 || h < lowest {
			lowest = h
		}
	}
	if lowest <= lastProcessed+1 {
		return 0
	}
	return lowest - lastProcessed - 1
}

func (e *Engine) deliver(events []Event) {
	Dispatch(e.sink, events)
}
