package utils

import (
	"github.com/blobr/blobr/pkg/celenium"
	"github.com/blobr/blobr/pkg/monitor"
	"go.uber.org/zap"
)

// LogSink renders monitor events as structured log lines. It is the display
// used when no terminal dashboard is attached.
type LogSink struct {
	sugar *zap.SugaredLogger
}

var _ monitor.Sink = (*LogSink)(nil)

func NewLogSink(sugar *zap.SugaredLogger) *LogSink {
	return &LogSink{sugar: sugar}
}

func (s *LogSink) OnBlockSummary(b monitor.BlockSummary) {
	kv := []any{
		"height", b.Height,
		"time", b.Time,
		"blobs", b.Stats.BlobsCount,
		"blobsSize", b.Stats.BlobsSize,
		"bytesInBlock", b.Stats.BytesInBlock,
		"gasUtilization", b.GasUtilization(),
		"events", b.Stats.EventsCount,
		"txs", b.Stats.TxCount,
	}
	if fill, ok := b.FillPercent(); ok {
		kv = append(kv, "fillPercent", fill)
	}
	s.sugar.Infow("block", kv...)
}

func (s *LogSink) OnBlobSummary(b celenium.Blob) {
	kv := []any{
		"height", b.Height,
		"namespace", b.NamespaceID(),
		"size", b.Size,
		"contentType", b.ContentType,
		"commitment", b.Commitment,
	}
	if b.Namespace != nil && b.Namespace.Name != "" {
		kv = append(kv, "namespaceName", b.Namespace.Name)
	}
	if b.Rollup != nil {
		kv = append(kv, "rollup", b.Rollup.Name)
	}
	if b.Signer != nil {
		kv = append(kv, "signer", b.Signer.Hash)
	}
	s.sugar.Infow("blob", kv...)
}

func (s *LogSink) OnStatsSnapshot(st monitor.StatsSnapshot) {
	kv := []any{
		"totalBlocks", st.TotalBlocks,
		"totalBlobs", st.TotalBlobs,
		"activeRollups", st.ActiveRollups,
	}
	if st.HasAverage() {
		kv = append(kv, "avgBlobsPerBlock", st.AverageBlobsPerBlock)
	}
	s.sugar.Infow("stats", kv...)
}

func (s *LogSink) OnRollupList(rollups []celenium.Rollup) {
	names := make([]string, 0, len(rollups))
	for _, r := range rollups {
		names = append(names, r.Name)
	}
	s.sugar.Infow("rollups", "count", len(rollups), "names", names)
}

func (s *LogSink) OnError(context string, cause error) {
	s.sugar.Errorw(context, "error", cause, "kind", celenium.Kind(cause))
}

func (s *LogSink) ClearBlobDisplay() {}

// MultiSink forwards every event to each of its sinks in order.
type MultiSink []monitor.Sink

var _ monitor.Sink = MultiSink(nil)

func (m MultiSink) OnBlockSummary(b monitor.BlockSummary) {
	for _, s := range m {
		s.OnBlockSummary(b)
	}
}

func (m MultiSink) OnBlobSummary(b celenium.Blob) {
	for _, s := range m {
		s.OnBlobSummary(b)
	}
}

func (m MultiSink) OnStatsSnapshot(st monitor.StatsSnapshot) {
	for _, s := range m {
		s.OnStatsSnapshot(st)
	}
}

func (m MultiSink) OnRollupList(r []celenium.Rollup) {
	for _, s := range m {
		s.OnRollupList(r)
	}
}

func (m MultiSink) OnError(context string, cause error) {
	for _, s := range m {
		s.OnError(context, cause)
	}
}

func (m MultiSink) ClearBlobDisplay() {
	for _, s := range m {
		s.ClearBlobDisplay()
	}
}
