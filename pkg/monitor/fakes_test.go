package monitor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/blobr/blobr/pkg/celenium"
	"github.com/stretchr/testify/mock"
)

var errBoom = errors.New("boom")

// fakeSource serves canned responses keyed by height and records every call.
type fakeSource struct {
	mu         sync.Mutex
	latest     []celenium.Block
	latestErr  error
	stats      map[uint64]celenium.BlockStats
	statsErr   map[uint64]error
	blobs      map[uint64][]celenium.Blob
	blobsErr   map[uint64]error
	rollups    []celenium.Rollup
	rollupsErr error
	calls      []string
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		stats:    make(map[uint64]celenium.BlockStats),
		statsErr: make(map[uint64]error),
		blobs:    make(map[uint64][]celenium.Blob),
		blobsErr: make(map[uint64]error),
	}
}

func (f *fakeSource) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeSource) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeSource) LatestBlocks(_ context.Context, _ int) ([]celenium.Block, error) {
	f.record(celenium.OpLatestBlocks)
	if f.latestErr != nil {
		return nil, f.latestErr
	}
	return f.latest, nil
}

func (f *fakeSource) BlockStats(_ context.Context, h uint64) (celenium.BlockStats, error) {
	f.record(celenium.OpBlockStats)
	if err := f.statsErr[h]; err != nil {
		return celenium.BlockStats{}, err
	}
	return f.stats[h], nil
}

func (f *fakeSource) BlockBlobs(_ context.Context, h uint64) ([]celenium.Blob, error) {
	f.record(celenium.OpBlockBlobs)
	if err := f.blobsErr[h]; err != nil {
		return nil, err
	}
	return f.blobs[h], nil
}

func (f *fakeSource) Rollups(_ context.Context) ([]celenium.Rollup, error) {
	f.record(celenium.OpRollups)
	if f.rollupsErr != nil {
		return nil, f.rollupsErr
	}
	return f.rollups, nil
}

// withBlocks returns blocks at heights in the order given, which is how the
// API returns them (descending).
func withBlocks(heights ...uint64) []celenium.Block {
	out := make([]celenium.Block, 0, len(heights))
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	for _, h := range heights {
		out = append(out, celenium.Block{Height: h, Time: base.Add(time.Duration(h) * 12 * time.Second)})
	}
	return out
}

func blobWithNamespace(id string) celenium.Blob {
	if id == "" {
		return celenium.Blob{Size: 10}
	}
	return celenium.Blob{Namespace: &celenium.Namespace{NamespaceID: id}, Size: 10}
}

// recordingSink keeps every delivered call as a flat list of records.
type recordingSink struct {
	mu      sync.Mutex
	records []sinkRecord
}

type sinkRecord struct {
	kind    string
	block   BlockSummary
	blob    celenium.Blob
	stats   StatsSnapshot
	rollups []celenium.Rollup
	context string
	err     error
}

func (s *recordingSink) add(r sinkRecord) {
	s.mu.Lock()
	s.records = append(s.records, r)
	s.mu.Unlock()
}

func (s *recordingSink) OnBlockSummary(b BlockSummary) { s.add(sinkRecord{kind: "block", block: b}) }
func (s *recordingSink) OnBlobSummary(b celenium.Blob) { s.add(sinkRecord{kind: "blob", blob: b}) }
func (s *recordingSink) OnStatsSnapshot(st StatsSnapshot) {
	s.add(sinkRecord{kind: "stats", stats: st})
}
func (s *recordingSink) OnRollupList(r []celenium.Rollup) { s.add(sinkRecord{kind: "rollups", rollups: r}) }
func (s *recordingSink) OnError(ctx string, err error) {
	s.add(sinkRecord{kind: "error", context: ctx, err: err})
}
func (s *recordingSink) ClearBlobDisplay() { s.add(sinkRecord{kind: "clear"}) }

func (s *recordingSink) Records() []sinkRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sinkRecord(nil), s.records...)
}

func (s *recordingSink) Kinds() []string {
	var kinds []string
	for _, r := range s.Records() {
		kinds = append(kinds, r.kind)
	}
	return kinds
}

// mockSource is a testify mock for call-level expectations.
type mockSource struct {
	mock.Mock
}

func (m *mockSource) LatestBlocks(ctx context.Context, limit int) ([]celenium.Block, error) {
	args := m.Called(ctx, limit)
	if v := args.Get(0); v != nil {
		return v.([]celenium.Block), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSource) BlockStats(ctx context.Context, h uint64) (celenium.BlockStats, error) {
	args := m.Called(ctx, h)
	return args.Get(0).(celenium.BlockStats), args.Error(1)
}

func (m *mockSource) BlockBlobs(ctx context.Context, h uint64) ([]celenium.Blob, error) {
	args := m.Called(ctx, h)
	if v := args.Get(0); v != nil {
		return v.([]celenium.Blob), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSource) Rollups(ctx context.Context) ([]celenium.Rollup, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.([]celenium.Rollup), args.Error(1)
	}
	return nil, args.Error(1)
}

func blockHeights(events []Event) []uint64 {
	var out []uint64
	for _, ev := range events {
		if b, ok := ev.(BlockEvent); ok {
			out = append(out, b.Block.Height)
		}
	}
	return out
}

func errorEvents(events []Event) []ErrorEvent {
	var out []ErrorEvent
	for _, ev := range events {
		if e, ok := ev.(ErrorEvent); ok {
			out = append(out, e)
		}
	}
	return out
}

func lastStats(events []Event) (StatsSnapshot, bool) {
	for i := len(events) - 1; i >= 0; i-- {
		if s, ok := events[i].(StatsEvent); ok {
			return s.Stats, true
		}
	}
	return StatsSnapshot{}, false
}
