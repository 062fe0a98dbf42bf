package monitor

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/blobr/blobr/pkg/celenium"
)

// Sink consumes display events. It has no way to feed anything back into the
// engine.
type Sink interface {
	OnBlockSummary(BlockSummary)
	OnBlobSummary(celenium.Blob)
	OnStatsSnapshot(StatsSnapshot)
	OnRollupList([]celenium.Rollup)
	OnError(context string, cause error)
	// ClearBlobDisplay is called once per cycle before that cycle's blob summaries.
	ClearBlobDisplay()
}

// Event is a single display event produced by a cycle.
type Event interface {
	Deliver(Sink)
}

// Dispatch forwards events to sink in order.
func Dispatch(sink Sink, events []Event) {
	for _, ev := range events {
		ev.Deliver(sink)
	}
}

// BlockSummary is a processed block together with its stats.
type BlockSummary struct {
	Height    uint64
	Time      time.Time
	Stats     celenium.BlockStats
	FillScale FillScale // how Stats.FillRate is expressed upstream
}

// FillScale is the unit of the upstream fill_rate value.
type FillScale int

const (
	FillScaleFraction FillScale = iota // 0..1, the Celenium default
	FillScalePercent                   // 0..100
)

var ErrUnknownFillScale = errors.New("unknown fill rate scale: must be 'fraction' or 'percent'")

// ParseFillScale parses "fraction" or "percent".
func ParseFillScale(s string) (FillScale, error) {
	switch strings.ToLower(s) {
	case "fraction":
		return FillScaleFraction, nil
	case "percent":
		return FillScalePercent, nil
	}
	return 0, ErrUnknownFillScale
}

func (s FillScale) String() string {
	if s == FillScalePercent {
		return "percent"
	}
	return "fraction"
}

// FillPercent returns the block fill rate as a percentage, converting from
// FillScale. ok is false when the upstream value is missing or not a number.
func (b BlockSummary) FillPercent() (pct float64, ok bool) {
	raw := strings.TrimSpace(b.Stats.FillRate)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, false
	}
	if b.FillScale == FillScalePercent {
		return v, true
	}
	return v * 100, true
}

// GasUtilization returns gas used as a percentage of the gas limit, or 0 when
// the limit is unknown.
func (b BlockSummary) GasUtilization() float64 {
	if b.Stats.GasLimit <= 0 {
		return 0
	}
	return float64(b.Stats.GasUsed) / float64(b.Stats.GasLimit) * 100
}

// StatsSnapshot is the aggregate view emitted at the end of every cycle.
// AverageBlobsPerBlock is 0 when TotalBlocks is 0; use HasAverage to tell the
// sentinel from a real zero.
type StatsSnapshot struct {
	TotalBlocks          uint64
	TotalBlobs           uint64
	ActiveRollups        int
	AverageBlobsPerBlock float64
}

func (s StatsSnapshot) HasAverage() bool { return s.TotalBlocks > 0 }

type BlockEvent struct{ Block BlockSummary }

func (e BlockEvent) Deliver(s Sink) { s.OnBlockSummary(e.Block) }

type BlobEvent struct{ Blob celenium.Blob }

func (e BlobEvent) Deliver(s Sink) { s.OnBlobSummary(e.Blob) }

type StatsEvent struct{ Stats StatsSnapshot }

func (e StatsEvent) Deliver(s Sink) { s.OnStatsSnapshot(e.Stats) }

// RollupsEvent replaces the displayed rollup list wholesale.
type RollupsEvent struct{ Rollups []celenium.Rollup }

func (e RollupsEvent) Deliver(s Sink) { s.OnRollupList(e.Rollups) }

type ClearBlobsEvent struct{}

func (ClearBlobsEvent) Deliver(s Sink) { s.ClearBlobDisplay() }

// ErrorEvent reports one failed fetch. Height is only meaningful when
// HasHeight is set.
type ErrorEvent struct {
	Op        string
	Height    uint64
	HasHeight bool
	Err       error
}

// Context describes the failed operation for the operator.
func (e ErrorEvent) Context() string {
	switch {
	case e.Op == celenium.OpLatestBlocks:
		return "failed to fetch blocks"
	case e.Op == celenium.OpRollups:
		return "failed to fetch rollups list"
	case e.Op == celenium.OpBlockBlobs && e.HasHeight:
		return fmt.Sprintf("failed to fetch blobs for block %d", e.Height)
	case e.HasHeight:
		return fmt.Sprintf("failed to process block %d", e.Height)
	default:
		return "failed to " + strings.ReplaceAll(e.Op, "_", " ")
	}
}

func (e ErrorEvent) Deliver(s Sink) { s.OnError(e.Context(), e.Err) }
