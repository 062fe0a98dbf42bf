package dashboard

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/blobr/blobr/pkg/celenium"
	"github.com/blobr/blobr/pkg/monitor"
	"github.com/pterm/pterm"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	pterm.DisableStyling()
	pterm.SetDefaultOutput(os.Stderr)
	os.Exit(m.Run())
}

type fakeRecorder struct {
	mu       sync.Mutex
	contexts []string
}

func (f *fakeRecorder) Record(context string, _ error) {
	f.mu.Lock()
	f.contexts = append(f.contexts, context)
	f.mu.Unlock()
}

func (f *fakeRecorder) Path() string { return "/tmp/blobr-errors-1.log" }

func block(h uint64) monitor.BlockSummary {
	return monitor.BlockSummary{
		Height: h,
		Time:   time.Unix(1717243200, 0),
		Stats:  celenium.BlockStats{BlobsCount: 2, BlobsSize: 2048, FillRate: "0.25", TxCount: 5},
	}
}

func TestDashboard_RenderEmpty(t *testing.T) {
	t.Parallel()

	out := New("mainnet").Render()
	for _, section := range []string{"Recent Blocks", "Recent Blobs", "Statistics", "Active Rollups", "Errors"} {
		require.Contains(t, out, section)
	}
	require.Contains(t, out, "network: mainnet")
	require.Contains(t, out, "Loading...")
}

func TestDashboard_RenderEvents(t *testing.T) {
	t.Parallel()

	d := New("mocha")
	monitor.Dispatch(d, []monitor.Event{
		monitor.ClearBlobsEvent{},
		monitor.BlockEvent{Block: block(100)},
		monitor.BlobEvent{Blob: celenium.Blob{
			Namespace: &celenium.Namespace{NamespaceID: "ab", Name: "eclipse"},
			Size:      1536,
		}},
		monitor.RollupsEvent{Rollups: []celenium.Rollup{{ID: 1, Name: "Eclipse", Stack: "SVM"}}},
		monitor.StatsEvent{Stats: monitor.StatsSnapshot{TotalBlocks: 1, TotalBlobs: 2, ActiveRollups: 1, AverageBlobsPerBlock: 2}},
	})

	out := d.Render()
	require.Contains(t, out, "Block #100")
	require.Contains(t, out, "Blobs: 2")
	require.Contains(t, out, "Size: 2.00 KB")
	require.Contains(t, out, "Fill: 25.0%")
	require.Contains(t, out, "TXs: 5")
	require.Contains(t, out, "NS: eclipse")
	require.Contains(t, out, "Rollup: Unknown Rollup")
	require.Contains(t, out, "Size: 1.50 KB")
	require.Contains(t, out, "Eclipse - SVM")
	require.Contains(t, out, "Average Blobs/Block: 2.00")
	require.NotContains(t, out, "Loading...")
}

func TestDashboard_ClearBlobDisplay(t *testing.T) {
	t.Parallel()

	d := New("mainnet")
	d.OnBlobSummary(celenium.Blob{Namespace: &celenium.Namespace{Name: "first-cycle"}})
	require.Contains(t, d.Render(), "first-cycle")

	d.ClearBlobDisplay()
	d.OnBlobSummary(celenium.Blob{Namespace: &celenium.Namespace{Name: "second-cycle"}})

	out := d.Render()
	require.NotContains(t, out, "first-cycle")
	require.Contains(t, out, "second-cycle")
}

func TestDashboard_BoundedBuffers(t *testing.T) {
	t.Parallel()

	d := New("mainnet", WithLimits(2, 2, 1, 1))
	for h := uint64(1); h <= 5; h++ {
		d.OnBlockSummary(block(h))
	}
	d.OnRollupList([]celenium.Rollup{{Name: "A"}, {Name: "B"}, {Name: "C"}})
	d.OnError("failed to fetch blocks", errors.New("first"))
	d.OnError("failed to fetch rollups list", errors.New("second"))

	out := d.Render()
	require.NotContains(t, out, "Block #3")
	require.Contains(t, out, "Block #4")
	require.Contains(t, out, "Block #5")
	require.Contains(t, out, "... and 2 more")
	require.NotContains(t, out, "Error: first")
	require.Contains(t, out, "Error: second")
}

func TestDashboard_ErrorsForwardedToRecorder(t *testing.T) {
	t.Parallel()

	rec := &fakeRecorder{}
	d := New("mainnet", WithErrorRecorder(rec))

	d.OnError("failed to process block 101", errors.New("boom"))

	require.Equal(t, []string{"failed to process block 101"}, rec.contexts)
	out := d.Render()
	require.Contains(t, out, "failed to process block 101")
	require.Contains(t, out, "Error: boom")
	require.Contains(t, out, "Full error log: /tmp/blobr-errors-1.log")
}

func TestDashboard_RollupListReplaced(t *testing.T) {
	t.Parallel()

	d := New("mainnet")
	d.OnRollupList([]celenium.Rollup{{Name: "Old"}})
	d.OnRollupList([]celenium.Rollup{{Name: "New"}})

	out := d.Render()
	require.NotContains(t, out, "Old")
	require.Contains(t, out, "New")
}

func TestDashboard_ConcurrentEvents(t *testing.T) {
	t.Parallel()

	d := New("mainnet")
	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			d.OnBlockSummary(block(uint64(i + 1)))
			d.OnError(fmt.Sprintf("failed to process block %d", i), errors.New("x"))
		}()
		go func() {
			defer wg.Done()
			_ = d.Render()
		}()
	}
	wg.Wait()
	require.Contains(t, d.Render(), "Block #")
}

func TestDashboard_RunStopsOnCancel(t *testing.T) {
	t.Parallel()

	d := New("mainnet")
	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() {
		done <- d.Run(ctx, 5*time.Millisecond)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
