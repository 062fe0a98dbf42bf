package monitor

import (
	"context"
	"time"

	"github.com/blobr/blobr/pkg/celenium"
	"github.com/blobr/blobr/pkg/metrics"
)

// Source is the read-only view of the ledger the engine polls.
// *celenium.Client implements it.
type Source interface {
	LatestBlocks(ctx context.Context, limit int) ([]celenium.Block, error)
	BlockStats(ctx context.Context, height uint64) (celenium.BlockStats, error)
	BlockBlobs(ctx context.Context, height uint64) ([]celenium.Blob, error)
	Rollups(ctx context.Context) ([]celenium.Rollup, error)
}

var _ Source = (*celenium.Client)(nil)

// InstrumentedSource records call counts, latency and in-flight calls for
// every request made through the wrapped Source.
type InstrumentedSource struct {
	src     Source
	metrics *metrics.Metrics
}

// NewInstrumentedSource wraps src. A nil m is allowed and records nothing.
func NewInstrumentedSource(src Source, m *metrics.Metrics) *InstrumentedSource {
	return &InstrumentedSource{src: src, metrics: m}
}

func (s *InstrumentedSource) LatestBlocks(ctx context.Context, limit int) ([]celenium.Block, error) {
	done := s.track(celenium.OpLatestBlocks)
	blocks, err := s.src.LatestBlocks(ctx, limit)
	done(err)
	return blocks, err
}

func (s *InstrumentedSource) BlockStats(ctx context.Context, height uint64) (celenium.BlockStats, error) {
	done := s.track(celenium.OpBlockStats)
	stats, err := s.src.BlockStats(ctx, height)
	done(err)
	return stats, err
}

func (s *InstrumentedSource) BlockBlobs(ctx context.Context, height uint64) ([]celenium.Blob, error) {
	done := s.track(celenium.OpBlockBlobs)
	blobs, err := s.src.BlockBlobs(ctx, height)
	done(err)
	return blobs, err
}

func (s *InstrumentedSource) Rollups(ctx context.Context) ([]celenium.Rollup, error) {
	done := s.track(celenium.OpRollups)
	rollups, err := s.src.Rollups(ctx)
	done(err)
	return rollups, err
}

func (s *InstrumentedSource) track(op string) func(error) {
	start := time.Now()
	s.metrics.IncAPIInFlight()
	return func(err error) {
		s.metrics.DecAPIInFlight()
		s.metrics.RecordAPICall(op, err, time.Since(start).Seconds())
	}
}
