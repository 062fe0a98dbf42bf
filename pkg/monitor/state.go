package monitor

// State is the engine's running aggregation. The zero value is the initial
// state: nothing processed, LastProcessedHeight 0.
type State struct {
	TotalBlocks         uint64 // blocks whose stats were folded in
	TotalBlobs          uint64 // sum of stats blob counts, independent of any display filter
	LastProcessedHeight uint64 // never decreases
	ActiveRollups       int    // size of the last successfully fetched rollup list
}

// AverageBlobsPerBlock returns TotalBlobs/TotalBlocks, or 0 when no block
// has been processed yet.
func (s State) AverageBlobsPerBlock() float64 {
	if s.TotalBlocks == 0 {
		return 0
	}
	return float64(s.TotalBlobs) / float64(s.TotalBlocks)
}

// Snapshot returns the stats snapshot for the current totals.
func (s State) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		TotalBlocks:          s.TotalBlocks,
		TotalBlobs:           s.TotalBlobs,
		ActiveRollups:        s.ActiveRollups,
		AverageBlobsPerBlock: s.AverageBlobsPerBlock(),
	}
}

func (s *State) advance(height uint64) {
	if height > s.LastProcessedHeight {
		s.LastProcessedHeight = height
	}
}

func (s *State) fold(blobsCount int64) {
	s.TotalBlocks++
	if blobsCount > 0 {
		s.TotalBlobs += uint64(blobsCount)
	}
}
