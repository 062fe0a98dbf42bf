package monitor

import (
	"context"
	"slices"

	"github.com/blobr/blobr/pkg/celenium"
)

// DefaultWindow is the number of latest blocks requested per cycle.
const DefaultWindow = 5

type CycleOptions struct {
	Window    int
	Filter    Filter
	FillScale FillScale
}

// RunCycle performs one poll pass starting from st and returns the new state
// together with the events to deliver, in delivery order. Failures never
// abort the whole cycle; each one becomes a single ErrorEvent.
func RunCycle(ctx context.Context, src Source, st State, opts CycleOptions) (State, []Event) {
	window := opts.Window
	if window <= 0 {
		window = DefaultWindow
	}

	latest, err := src.LatestBlocks(ctx, window)
	if err != nil {
		return st, []Event{ErrorEvent{Op: celenium.OpLatestBlocks, Err: err}}
	}

	events := []Event{ClearBlobsEvent{}}
	for _, b := range newBlocks(latest, st.LastProcessedHeight) {
		events = processBlock(ctx, src, &st, b, opts, events)
	}

	rollups, err := src.Rollups(ctx)
	if err != nil {
		events = append(events, ErrorEvent{Op: celenium.OpRollups, Err: err})
	} else {
		st.ActiveRollups = len(rollups)
		events = append(events, RollupsEvent{Rollups: rollups})
	}

	return st, append(events, StatsEvent{Stats: st.Snapshot()})
}

func processBlock(ctx context.Context, src Source, st *State, b celenium.Block, opts CycleOptions, events []Event) []Event {
	// The height is consumed whatever happens below so an unfetchable block
	// is not retried on every cycle.
	defer st.advance(b.Height)

	stats, err := src.BlockStats(ctx, b.Height)
	if err != nil {
		return append(events, ErrorEvent{Op: celenium.OpBlockStats, Height: b.Height, HasHeight: true, Err: err})
	}

	st.fold(stats.BlobsCount)
	events = append(events, BlockEvent{Block: BlockSummary{
		Height:    b.Height,
		Time:      b.Time,
		Stats:     stats,
		FillScale: opts.FillScale,
	}})

	if stats.BlobsCount <= 0 {
		return events
	}

	blobs, err := src.BlockBlobs(ctx, b.Height)
	if err != nil {
		return append(events, ErrorEvent{Op: celenium.OpBlockBlobs, Height: b.Height, HasHeight: true, Err: err})
	}
	for _, blob := range blobs {
		if opts.Filter.Match(blob) {
			events = append(events, BlobEvent{Blob: blob})
		}
	}
	return events
}

// newBlocks returns the blocks above lastProcessed, one per height, in
// ascending height order.
func newBlocks(blocks []celenium.Block, lastProcessed uint64) []celenium.Block {
	seen := make(map[uint64]struct{}, len(blocks))
	out := make([]celenium.Block, 0, len(blocks))
	for _, b := range blocks {
		if b.Height <= lastProcessed {
			continue
		}
		if _, ok := seen[b.Height]; ok {
			continue
		}
		seen[b.Height] = struct{}{}
		out = append(out, b)
	}
	slices.SortFunc(out, func(a, b celenium.Block) int {
		switch {
		case a.Height < b.Height:
			return -1
		case a.Height > b.Height:
			return 1
		}
		return 0
	})
	return out
}
